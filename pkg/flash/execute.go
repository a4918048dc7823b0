package flash

import (
	"fmt"
	"strings"
)

// Operations performed through a Runner.
const (
	OpUnmount = "unmount"
	OpCopy    = "copy-image"
	OpSync    = "sync"
)

// CopyBlockSize is the dd block size used for the raw copy.
const CopyBlockSize = "4M"

// Target names the card being flashed: the whole disk written by the raw
// copy and the partition that is probed and unmounted.
type Target struct {
	Disk      string
	Partition string
}

func (t Target) String() string {
	return fmt.Sprintf("%s (partition %s)", t.Disk, t.Partition)
}

// ExecutionStep is one external command of the flash sequence. It is both
// structured (for automation) and has a human-readable description.
type ExecutionStep struct {
	Operation   string
	Args        []string
	Description string

	// BestEffort steps may fail without aborting the flash.
	BestEffort bool
}

func (s ExecutionStep) String() string {
	return strings.Join(s.Args, " ")
}

// Runner abstracts how execution steps are performed.
type Runner interface {
	Run(step ExecutionStep) error
}

// UnmountStep releases the auto-mounted partition before the copy.
func UnmountStep(partition string) ExecutionStep {
	return ExecutionStep{
		Operation:   OpUnmount,
		Args:        []string{"udisks", "--unmount", partition},
		Description: fmt.Sprintf("unmount %s", partition),
		BestEffort:  true,
	}
}

// CopyStep writes the whole image onto the raw disk.
func CopyStep(image, disk string) ExecutionStep {
	return ExecutionStep{
		Operation:   OpCopy,
		Args:        []string{"dd", "if=" + image, "of=" + disk, "bs=" + CopyBlockSize},
		Description: fmt.Sprintf("copy %s to %s", image, disk),
	}
}

// SyncStep flushes OS write buffers.
func SyncStep() ExecutionStep {
	return ExecutionStep{
		Operation:   OpSync,
		Args:        []string{"sync"},
		Description: "flush write buffers",
	}
}

// BuildFlashSteps returns the external commands of one flash, in order.
func BuildFlashSteps(image string, target Target) []ExecutionStep {
	return []ExecutionStep{
		UnmountStep(target.Partition),
		CopyStep(image, target.Disk),
		SyncStep(),
	}
}

// runStep runs step and wraps its error with the operation name. Failures
// of best-effort steps are logged and swallowed by the caller instead.
func runStep(r Runner, step ExecutionStep) error {
	if err := r.Run(step); err != nil {
		return fmt.Errorf("%s: %w", step.Operation, err)
	}
	return nil
}
