package flash

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

var (
	// RequiredTools must be on PATH: a flash cannot succeed without them.
	RequiredTools = []string{"dd", "sync"}

	// OptionalTools only back best-effort steps.
	OptionalTools = []string{"udisks"}
)

var (
	lookPath = exec.LookPath
	geteuid  = os.Geteuid
)

// CheckPrerequisites ensures the station runs as root and the commands of
// the flash sequence are available before the first card is written.
func CheckPrerequisites() error {
	if geteuid() != 0 {
		return fmt.Errorf("sdflash must run as root (use sudo) because it writes raw block devices")
	}

	var missing []string
	for _, cmd := range RequiredTools {
		if _, err := lookPath(cmd); err != nil {
			missing = append(missing, cmd)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required commands: %s", strings.Join(missing, ", "))
	}

	for _, cmd := range OptionalTools {
		if _, err := lookPath(cmd); err != nil {
			glog.Warningf("%s not found; unmounting before each flash will fail and be skipped", cmd)
		}
	}
	return nil
}

// ValidateTarget refuses targets that would overwrite the running system
// or that do not name a whole disk and one of its partitions.
func ValidateTarget(t Target) error {
	disk := ensureDevPrefix(t.Disk)
	part := ensureDevPrefix(t.Partition)

	if disk == "" || part == "" {
		return fmt.Errorf("target disk and partition are required")
	}
	if looksLikePartition(disk) {
		return fmt.Errorf("target %s looks like a partition; the image must be written to a whole disk (e.g. sda, mmcblk0)", disk)
	}
	if baseDiskFromDevice(part) != disk {
		return fmt.Errorf("partition %s does not belong to disk %s", part, disk)
	}

	if boot, err := bootDisk(); err == nil && sameDisk(boot, disk) {
		return fmt.Errorf("refusing to flash %s: it is the boot disk. Pick another disk to avoid wiping the running system", disk)
	}
	return nil
}

func sameDisk(a, b string) bool {
	baseA := baseDiskFromDevice(ensureDevPrefix(a))
	baseB := baseDiskFromDevice(ensureDevPrefix(b))
	return baseA == baseB
}

// looksLikePartition returns true if the given /dev name appears to be a
// partition (e.g. /dev/sda1, /dev/mmcblk0p1).
func looksLikePartition(dev string) bool {
	name := strings.TrimPrefix(dev, "/dev/")

	if strings.HasPrefix(name, "mmcblk") || strings.HasPrefix(name, "nvme") {
		if idx := strings.LastIndex(name, "p"); idx != -1 && idx < len(name)-1 {
			if _, err := strconv.Atoi(name[idx+1:]); err == nil {
				return true
			}
		}
		return false
	}

	if len(name) == 0 {
		return false
	}
	last := name[len(name)-1]
	return last >= '0' && last <= '9'
}

func ensureDevPrefix(name string) string {
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "/dev/") {
		return name
	}
	return "/dev/" + name
}
