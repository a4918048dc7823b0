package station

import (
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/woliveiras/sdflash/pkg/indicator"
)

// ForceButton is the indicator button that forces a flash.
const ForceButton = 1

// ForceFlag is a one-shot trigger. The button handler sets it from the
// indicator's reader goroutine; the poll loop consumes it.
type ForceFlag struct {
	v atomic.Bool
}

// Set arms the trigger; repeated presses coalesce.
func (f *ForceFlag) Set() { f.v.Store(true) }

func (f *ForceFlag) isSet() bool { return f.v.Load() }

// Consume clears the flag and reports whether it was set.
func (f *ForceFlag) Consume() bool { return f.v.Swap(false) }

// ButtonHandler sets f when ForceButton is pressed.
func ButtonHandler(f *ForceFlag) indicator.ButtonHandler {
	return func(ev indicator.ButtonEvent) {
		if !ev.Pressed(ForceButton) {
			return
		}
		glog.Infof("Button %d pressed at %d; forcing a flash.", ev.Button, ev.Timestamp)
		f.Set()
	}
}
