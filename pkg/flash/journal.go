package flash

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Outcome of a flash attempt.
type Outcome string

const (
	OutcomeVerified Outcome = "verified"
	OutcomeMismatch Outcome = "mismatch"
	OutcomeFailed   Outcome = "failed"
)

// Attempt describes one run of Flasher.Flash.
type Attempt struct {
	ID       uuid.UUID
	Started  time.Time
	Finished time.Time
	Image    string
	Disk     string
	Outcome  Outcome
	Err      error
}

// AppendJournal appends a human-readable record of a to the file at path,
// creating it with a header when needed.
func AppendJournal(path string, a Attempt) error {
	f, openErr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if openErr != nil {
		return openErr
	}
	defer f.Close()

	info, statErr := f.Stat()
	if statErr == nil && info.Size() == 0 {
		header := "# sdflash journal - one section per flash attempt. Newest entries are at the bottom.\n\n"
		if _, err := f.WriteString(header); err != nil {
			return err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== %s %s ===\n", a.ID, a.Started.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "image: %s\n", a.Image)
	fmt.Fprintf(&b, "disk: %s\n", a.Disk)
	if !a.Finished.IsZero() {
		fmt.Fprintf(&b, "duration: %s\n", a.Finished.Sub(a.Started).Round(time.Millisecond))
	}

	switch {
	case a.Err != nil:
		fmt.Fprintf(&b, "result: FAILED: %v\n\n", a.Err)
	case a.Outcome == OutcomeVerified:
		fmt.Fprintf(&b, "result: VERIFIED\n\n")
	case a.Outcome == OutcomeMismatch:
		fmt.Fprintf(&b, "result: MISMATCH\n\n")
	default:
		fmt.Fprintf(&b, "result: %s\n\n", strings.ToUpper(string(a.Outcome)))
	}

	_, writeErr := f.WriteString(b.String())
	return writeErr
}
