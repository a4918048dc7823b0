package flash

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// SidecarSuffix is appended to the image path to find its digest file.
const SidecarSuffix = ".md5sum"

// ErrEmptyDigest is returned when the sidecar file holds no digest.
var ErrEmptyDigest = errors.New("digest file is empty")

// Image is the artifact written to every card: the image itself and the
// MD5 recorded next to it.
type Image struct {
	Path   string
	Size   int64
	Digest string
}

// SidecarPath returns the digest file path for an image.
func SidecarPath(image string) string {
	return image + SidecarSuffix
}

// LoadImage reads the image size from disk and the expected digest from the
// first whitespace-separated token of the sidecar, as md5sum writes it.
func LoadImage(path string) (Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Image{}, fmt.Errorf("image: %w", err)
	}

	sidecar := SidecarPath(path)
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return Image{}, fmt.Errorf("image digest: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return Image{}, fmt.Errorf("image digest %s: %w", sidecar, ErrEmptyDigest)
	}

	return Image{
		Path:   path,
		Size:   info.Size(),
		Digest: fields[0],
	}, nil
}
