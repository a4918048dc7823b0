package indicator

import "fmt"

// Color is an RGB value for the indicator LED.
type Color struct {
	R, G, B uint8
}

var (
	Red    = Color{R: 255}
	Green  = Color{G: 255}
	Blue   = Color{B: 255}
	Yellow = Color{R: 255, G: 255}
)

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	}
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// ButtonEvent is a single button transition reported by the device.
// State is 1 when the button went down and 0 when it was released.
type ButtonEvent struct {
	Button    int
	State     int
	Timestamp int64 // device clock, milliseconds
}

// Pressed reports whether the event is the press of the given button.
func (e ButtonEvent) Pressed(button int) bool {
	return e.Button == button && e.State == 1
}

// ButtonHandler receives button events.
type ButtonHandler func(ButtonEvent)

// Device is the capability surface the flashing station needs from an
// indicator: set the LED and subscribe to buttons.
type Device interface {
	SetColor(Color) error
	OnButton(ButtonHandler)
}
