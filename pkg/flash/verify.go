package flash

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DefaultChunkSize is the read size used while hashing a device. Any size
// produces the same digest.
const DefaultChunkSize = 128

// Verify hashes at most byteCount bytes from r with MD5 and compares the hex
// digest with expected. A read that yields no data ends the stream early;
// that is not an error, the digest of what was read is compared instead.
func Verify(r io.Reader, expected string, byteCount int64, chunkSize int) (bool, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	h := md5.New()
	buf := make([]byte, chunkSize)
	left := byteCount
	for left > 0 {
		size := int64(chunkSize)
		if left < size {
			size = left
		}
		n, err := r.Read(buf[:size])
		if n > 0 {
			h.Write(buf[:n])
			left -= int64(n)
		}
		if err == io.EOF || (n == 0 && err == nil) {
			break
		}
		if err != nil {
			return false, fmt.Errorf("read after %d bytes: %w", byteCount-left, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)) == expected, nil
}

// VerifyDevice opens path and runs Verify over it.
func VerifyDevice(path, expected string, byteCount int64, chunkSize int) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("verify: %w", err)
	}
	defer f.Close()

	ok, err := Verify(f, expected, byteCount, chunkSize)
	if err != nil {
		return false, fmt.Errorf("verify %s: %w", path, err)
	}
	return ok, nil
}
