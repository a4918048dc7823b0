package flash

import "os"

// Prober reports whether a device path is currently present.
type Prober interface {
	Exists(path string) bool
}

// BlockProber is a Prober that stats the path and accepts only block
// devices. Stat defaults to os.Stat.
type BlockProber struct {
	Stat func(name string) (os.FileInfo, error)
}

// Exists never fails: any stat error, or a path that is not a block device,
// reports false.
func (p BlockProber) Exists(path string) bool {
	stat := p.Stat
	if stat == nil {
		stat = os.Stat
	}
	info, err := stat(path)
	if err != nil {
		return false
	}
	return isBlockDevice(info.Mode())
}

// DeviceExists reports whether path is an existing block device.
func DeviceExists(path string) bool {
	return BlockProber{}.Exists(path)
}

func isBlockDevice(mode os.FileMode) bool {
	return mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0
}
