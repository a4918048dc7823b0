package indicator

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// AutoPort makes Dial pick the first USB serial port on the host.
const AutoPort = "auto"

// ErrNoPort is returned by Dial(AutoPort) when no USB serial port exists.
var ErrNoPort = errors.New("indicator: no USB serial port found")

var (
	listPorts = enumerator.GetDetailedPortsList
	openPort  = serial.Open
)

// Dial opens the named serial port (or discovers one for AutoPort) and
// returns a connected Client.
func Dial(name string, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	portName, err := resolvePort(name)
	if err != nil {
		return nil, err
	}

	port, err := openPort(portName, &serial.Mode{BaudRate: cfg.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("indicator: open %s: %w", portName, err)
	}
	// Drop whatever the device printed before we attached.
	if err := port.ResetInputBuffer(); err != nil {
		glog.V(1).Infof("indicator: reset input buffer of %s: %v", portName, err)
	}

	c, err := NewClient(port, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", portName, err)
	}
	return c, nil
}

func resolvePort(name string) (string, error) {
	if name != AutoPort {
		return name, nil
	}

	ports, err := listPorts()
	if err != nil {
		return "", fmt.Errorf("indicator: list serial ports: %w", err)
	}
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		glog.V(1).Infof("indicator: using %s (VID/PID %s/%s, product %q)", p.Name, p.VID, p.PID, p.Product)
		return p.Name, nil
	}
	return "", ErrNoPort
}
