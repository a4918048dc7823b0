package station

import (
	"context"
	"errors"
	"io"
	"runtime/debug"
	"time"

	"github.com/golang/glog"

	"github.com/woliveiras/sdflash/pkg/flash"
)

// Flasher performs one flash attempt.
type Flasher interface {
	Flash(ctx context.Context, led flash.LED) error
}

// Controller is the poll loop. It is idle until Prober sees Device or Force
// is set, then runs Flasher once and goes back to idle.
type Controller struct {
	Device  string
	Prober  flash.Prober
	Flasher Flasher
	LED     flash.LED
	Force   *ForceFlag

	// PollInterval is the idle wait between polls. Defaults to 1s.
	PollInterval time.Duration

	// Dial, when set, reconnects the indicator after its link is lost.
	// Without it the station keeps flashing with a dead LED.
	Dial Dialer

	// ConnectRetry is the wait between reconnect attempts. Defaults to 10s.
	ConnectRetry time.Duration

	// MaxIterations bounds the number of polls; 0 means forever.
	MaxIterations int
}

// linkCloser is implemented by indicators that can lose their link, such as
// *indicator.Client.
type linkCloser interface {
	Done() <-chan struct{}
}

// Run polls until ctx ends or MaxIterations polls have been made. Flash
// failures are logged and never end the loop.
func (c *Controller) Run(ctx context.Context) error {
	glog.Infof("Ready to begin flashing SD cards.")

	for i := 0; c.MaxIterations == 0 || i < c.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.ensureLink(ctx); err != nil {
			return err
		}
		if c.Step(ctx) {
			continue
		}
		glog.V(1).Infof("No SD card detected. Waiting %s...", c.interval())
		if err := sleepCtx(ctx, c.interval()); err != nil {
			return err
		}
	}
	return nil
}

// Step performs a single poll and reports whether a flash was attempted.
// The force flag is cleared before the flash starts.
func (c *Controller) Step(ctx context.Context) bool {
	present := c.prober().Exists(c.Device)
	forced := c.Force != nil && c.Force.Consume()
	if !present && !forced {
		return false
	}

	if forced {
		glog.Infof("Forced flash requested.")
	} else {
		glog.V(1).Infof("SD card detected at %s.", c.Device)
	}
	c.attempt(ctx)
	return true
}

func (c *Controller) attempt(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("Failed to flash SD card: panic: %v\n%s", r, debug.Stack())
		}
	}()

	err := c.Flasher.Flash(ctx, c.LED)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		glog.Infof("Flash interrupted: %v", err)
	default:
		glog.Errorf("Failed to flash SD card: %v", err)
	}
}

// ensureLink redials the indicator when its link has gone away. It blocks
// until the device answers again or ctx ends.
func (c *Controller) ensureLink(ctx context.Context) error {
	if c.Dial == nil || !linkLost(c.LED) {
		return nil
	}
	glog.Warningf("Lost connection to indicator. Reconnecting...")
	if cl, ok := c.LED.(io.Closer); ok {
		cl.Close()
	}
	retry := c.ConnectRetry
	if retry <= 0 {
		retry = 10 * time.Second
	}
	dev, err := Connect(ctx, c.Dial, retry, c.Force)
	if err != nil {
		return err
	}
	c.LED = dev
	glog.Infof("Reconnected to indicator.")
	return nil
}

func linkLost(led flash.LED) bool {
	lc, ok := led.(linkCloser)
	if !ok {
		return false
	}
	select {
	case <-lc.Done():
		return true
	default:
		return false
	}
}

func (c *Controller) prober() flash.Prober {
	if c.Prober == nil {
		return flash.BlockProber{}
	}
	return c.Prober
}

func (c *Controller) interval() time.Duration {
	if c.PollInterval <= 0 {
		return time.Second
	}
	return c.PollInterval
}
