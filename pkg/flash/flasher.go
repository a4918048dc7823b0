package flash

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/woliveiras/sdflash/pkg/indicator"
)

// LED is the part of the indicator the flasher drives.
type LED interface {
	SetColor(indicator.Color) error
}

// Flasher writes Image onto Target and reports the outcome on the LED.
type Flasher struct {
	Image  string
	Target Target
	Runner Runner
	Prober Prober

	// PollInterval is the wait between removal checks. Defaults to 1s.
	PollInterval time.Duration

	// ChunkSize is the read size while verifying. Defaults to DefaultChunkSize.
	ChunkSize int

	// MarkFailures turns the LED red when the copy, sync or verification
	// fails with an error. Without it the LED stays yellow.
	MarkFailures bool

	// Journal, when set, receives one record per attempt.
	Journal string
}

// Flash runs one attempt:
//  1. unmount the partition (best effort)
//  2. LED yellow
//  3. raw copy of the image onto the disk
//  4. sync
//  5. load image size and expected digest
//  6. verify the disk contents
//  7. LED green on match, red on mismatch
//  8. wait until the card is removed
//  9. LED blue
//
// Errors from steps 3 to 8 abort the attempt and are returned. Unmount and
// LED failures are only logged. Nothing is cleaned up on failure.
func (f *Flasher) Flash(ctx context.Context, led LED) (err error) {
	att := Attempt{
		ID:      uuid.New(),
		Started: time.Now(),
		Image:   f.Image,
		Disk:    f.Target.Disk,
		Outcome: OutcomeFailed,
	}
	glog.Infof("attempt %s: flashing %s onto %s", att.ID, f.Image, f.Target)

	defer func() {
		att.Finished = time.Now()
		att.Err = err
		if f.Journal == "" {
			return
		}
		if jerr := AppendJournal(f.Journal, att); jerr != nil {
			glog.Warningf("attempt %s: cannot write journal %s: %v", att.ID, f.Journal, jerr)
		}
	}()

	glog.V(1).Infof("attempt %s: unmounting %s...", att.ID, f.Target.Partition)
	if uerr := f.Runner.Run(UnmountStep(f.Target.Partition)); uerr != nil {
		glog.Warningf("attempt %s: failed to unmount %s: %v", att.ID, f.Target.Partition, uerr)
	}

	f.setColor(att.ID, led, indicator.Yellow)

	ok, err := f.writeAndVerify(att.ID)
	if err != nil {
		if f.MarkFailures {
			f.setColor(att.ID, led, indicator.Red)
		}
		return err
	}

	color := indicator.Green
	att.Outcome = OutcomeVerified
	if !ok {
		color = indicator.Red
		att.Outcome = OutcomeMismatch
		glog.Warningf("attempt %s: checksum mismatch on %s", att.ID, f.Target.Disk)
	}
	f.setColor(att.ID, led, color)

	if err := f.waitForRemoval(ctx, att.ID); err != nil {
		return err
	}
	glog.Infof("attempt %s: SD card removed.", att.ID)
	f.setColor(att.ID, led, indicator.Blue)
	return nil
}

// setColor updates the LED. The LED only reports status, so a failed write
// is logged and the attempt goes on.
func (f *Flasher) setColor(id uuid.UUID, led LED, c indicator.Color) {
	glog.Infof("attempt %s: setting LED to %s...", id, c)
	if err := led.SetColor(c); err != nil {
		glog.Warningf("attempt %s: cannot set LED to %s: %v", id, c, err)
	}
}

func (f *Flasher) writeAndVerify(id uuid.UUID) (bool, error) {
	glog.Infof("attempt %s: running copy...", id)
	if err := runStep(f.Runner, CopyStep(f.Image, f.Target.Disk)); err != nil {
		return false, err
	}

	glog.Infof("attempt %s: running sync...", id)
	if err := runStep(f.Runner, SyncStep()); err != nil {
		return false, err
	}

	img, err := LoadImage(f.Image)
	if err != nil {
		return false, err
	}

	glog.Infof("attempt %s: verifying %d bytes of %s against %s", id, img.Size, f.Target.Disk, img.Digest)
	return VerifyDevice(f.Target.Disk, img.Digest, img.Size, f.ChunkSize)
}

func (f *Flasher) waitForRemoval(ctx context.Context, id uuid.UUID) error {
	interval := f.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	prober := f.Prober
	if prober == nil {
		prober = BlockProber{}
	}

	for prober.Exists(f.Target.Partition) {
		glog.Infof("attempt %s: SD card still plugged in. Waiting %s...", id, interval)
		if err := sleepCtx(ctx, interval); err != nil {
			return err
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
