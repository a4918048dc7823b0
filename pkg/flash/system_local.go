package flash

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

var readMounts = func() ([]byte, error) {
	return os.ReadFile("/proc/self/mounts")
}

// bootDisk returns the disk backing the root filesystem, e.g. /dev/mmcblk0
// for a root on /dev/mmcblk0p2.
func bootDisk() (string, error) {
	data, err := readMounts()
	if err != nil {
		return "", err
	}
	dev, err := parseRootDevice(string(data))
	if err != nil {
		return "", err
	}
	return baseDiskFromDevice(dev), nil
}

// parseRootDevice parses the content of /proc/self/mounts and returns the
// device mounted at "/".
func parseRootDevice(mounts string) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(mounts))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[1] == "/" {
			return fields[0], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", errors.New("root mount not found")
}

// baseDiskFromDevice takes a device like "/dev/mmcblk0p2" or "/dev/sda1"
// and returns the base disk device path ("/dev/mmcblk0" or "/dev/sda").
func baseDiskFromDevice(dev string) string {
	if !strings.HasPrefix(dev, "/dev/") || !looksLikePartition(dev) {
		return dev
	}

	s := strings.TrimRightFunc(dev, func(r rune) bool { return r >= '0' && r <= '9' })

	// mmcblk0p2 and nvme0n1p2 keep a 'p' between disk and partition number.
	if strings.HasSuffix(s, "p") && (strings.Contains(s, "mmcblk") || strings.Contains(s, "nvme")) {
		s = s[:len(s)-1]
	}
	return s
}
