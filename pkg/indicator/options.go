package indicator

import "time"

// Config holds the indicator link configuration.
type Config struct {
	// BaudRate of the serial line. Ignored by NewClient.
	BaudRate int

	// HandshakeTimeout bounds the wait for the device's READY line.
	HandshakeTimeout time.Duration
}

func defaultConfig() Config {
	return Config{
		BaudRate:         115200,
		HandshakeTimeout: 3 * time.Second,
	}
}

// Option is a functional option for Dial and NewClient.
type Option func(*Config)

// WithBaudRate sets the serial baud rate. Non-positive values are ignored.
func WithBaudRate(baud int) Option {
	return func(c *Config) {
		if baud > 0 {
			c.BaudRate = baud
		}
	}
}

// WithHandshakeTimeout sets how long to wait for the device to answer HELLO.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.HandshakeTimeout = timeout
		}
	}
}
