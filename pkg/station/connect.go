package station

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/woliveiras/sdflash/pkg/indicator"
)

// Dialer opens a connection to the indicator device.
type Dialer func() (indicator.Device, error)

// Connect blocks until the indicator is reachable, retrying every retry.
// A connection only counts once the LED is set to blue; the button handler
// is then registered to set force. Connect returns early only when ctx ends.
func Connect(ctx context.Context, dial Dialer, retry time.Duration, force *ForceFlag) (indicator.Device, error) {
	for {
		dev, err := setup(dial, force)
		if err == nil {
			return dev, nil
		}
		glog.Warningf("Could not connect to indicator: %v. Waiting for %s...", err, retry)
		if err := sleepCtx(ctx, retry); err != nil {
			return nil, err
		}
	}
}

func setup(dial Dialer, force *ForceFlag) (indicator.Device, error) {
	dev, err := dial()
	if err != nil {
		return nil, err
	}
	if err := dev.SetColor(indicator.Blue); err != nil {
		if c, ok := dev.(io.Closer); ok {
			c.Close()
		}
		return nil, err
	}
	dev.OnButton(ButtonHandler(force))
	return dev, nil
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
