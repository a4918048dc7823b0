package indicator

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	cmdHello  = "HELLO"
	cmdLED    = "LED"
	msgReady  = "READY"
	msgButton = "BTN"
)

type message struct {
	kind   string
	button ButtonEvent
	args   []string
}

func encodeColor(c Color) string {
	return fmt.Sprintf("%s %d %d %d\n", cmdLED, c.R, c.G, c.B)
}

// parseLine decodes one line received from the device. Unknown message kinds
// are returned as-is so the caller can decide to ignore them.
func parseLine(line string) (message, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return message{}, fmt.Errorf("empty line")
	}

	switch fields[0] {
	case msgReady:
		return message{kind: msgReady, args: fields[1:]}, nil
	case msgButton:
		if len(fields) != 4 {
			return message{}, fmt.Errorf("malformed button event %q: want 3 fields, got %d", line, len(fields)-1)
		}
		button, err := strconv.Atoi(fields[1])
		if err != nil {
			return message{}, fmt.Errorf("malformed button id %q: %w", fields[1], err)
		}
		state, err := strconv.Atoi(fields[2])
		if err != nil {
			return message{}, fmt.Errorf("malformed button state %q: %w", fields[2], err)
		}
		ts, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return message{}, fmt.Errorf("malformed button timestamp %q: %w", fields[3], err)
		}
		return message{
			kind:   msgButton,
			button: ButtonEvent{Button: button, State: state, Timestamp: ts},
		}, nil
	default:
		return message{kind: fields[0], args: fields[1:]}, nil
	}
}
