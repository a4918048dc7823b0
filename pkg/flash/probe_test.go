package flash

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeFileInfo struct {
	mode os.FileMode
}

func (f fakeFileInfo) Name() string       { return "sda1" }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() os.FileMode  { return f.mode }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f fakeFileInfo) Sys() any           { return nil }

func TestDeviceExists_MissingPath(t *testing.T) {
	if DeviceExists(filepath.Join(t.TempDir(), "nope")) {
		t.Fatalf("expected false for a missing path")
	}
}

func TestDeviceExists_RegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if DeviceExists(path) {
		t.Fatalf("expected false for a regular file")
	}
}

func TestBlockProber_Modes(t *testing.T) {
	cases := []struct {
		name string
		mode os.FileMode
		want bool
	}{
		{"block device", os.ModeDevice | 0o660, true},
		{"char device", os.ModeDevice | os.ModeCharDevice | 0o660, false},
		{"directory", os.ModeDir | 0o755, false},
		{"regular", 0o644, false},
	}

	for _, tc := range cases {
		p := BlockProber{Stat: func(string) (os.FileInfo, error) {
			return fakeFileInfo{mode: tc.mode}, nil
		}}
		if got := p.Exists("/dev/sda1"); got != tc.want {
			t.Fatalf("%s: Exists = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBlockProber_StatError(t *testing.T) {
	p := BlockProber{Stat: func(string) (os.FileInfo, error) {
		return nil, os.ErrPermission
	}}
	if p.Exists("/dev/sda1") {
		t.Fatalf("expected false on stat error")
	}
}
