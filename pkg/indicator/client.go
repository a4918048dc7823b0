package indicator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
)

var (
	// ErrHandshakeTimeout is returned when the device does not answer HELLO
	// in time.
	ErrHandshakeTimeout = errors.New("indicator: handshake timed out")

	// ErrClosed is returned when the link to the device is gone.
	ErrClosed = errors.New("indicator: link closed")
)

// maxLineLen bounds a single protocol line; longer lines are dropped.
const maxLineLen = 4096

// Client is a Device reached over a byte stream, normally a serial port.
//
// LED writes are serialized so lines never interleave; button events are
// dispatched from a single reader goroutine.
type Client struct {
	port io.ReadWriteCloser
	info string

	wmu sync.Mutex

	hmu     sync.Mutex
	handler ButtonHandler

	ready     chan string
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient starts the reader on port and performs the HELLO/READY
// handshake. On failure the port is closed.
func NewClient(port io.ReadWriteCloser, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Client{
		port:  port,
		ready: make(chan string, 1),
		done:  make(chan struct{}),
	}
	go c.readLoop()

	if err := c.writeLine(cmdHello + "\n"); err != nil {
		c.Close()
		return nil, fmt.Errorf("indicator: send hello: %w", err)
	}

	timer := time.NewTimer(cfg.HandshakeTimeout)
	defer timer.Stop()

	select {
	case info := <-c.ready:
		c.info = info
		return c, nil
	case <-c.done:
		c.Close()
		return nil, fmt.Errorf("indicator: handshake: %w", ErrClosed)
	case <-timer.C:
		c.Close()
		return nil, ErrHandshakeTimeout
	}
}

// Info returns whatever the device reported after READY, usually a firmware
// or serial identifier. It may be empty.
func (c *Client) Info() string {
	return c.info
}

// SetColor sends an LED command. It does not wait for an acknowledgment.
func (c *Client) SetColor(col Color) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	if err := c.writeLine(encodeColor(col)); err != nil {
		return fmt.Errorf("indicator: set color %s: %w", col, err)
	}
	return nil
}

// Done is closed once the link to the device is gone. A closed link does
// not come back; dial a new Client instead.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// OnButton registers h as the button handler, replacing any previous one.
// Events that arrive while no handler is registered are dropped.
func (c *Client) OnButton(h ButtonHandler) {
	c.hmu.Lock()
	c.handler = h
	c.hmu.Unlock()
}

// Close closes the underlying port. The reader goroutine exits once the
// pending read fails.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.port.Close()
	})
	return err
}

func (c *Client) writeLine(line string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := io.WriteString(c.port, line)
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)

	r := bufio.NewReaderSize(c.port, maxLineLen)
	for {
		raw, err := readLine(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				glog.V(1).Infof("indicator: link closed")
				return
			}
			glog.Warningf("indicator: reader stopped: %v", err)
			return
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		msg, err := parseLine(line)
		if err != nil {
			glog.Warningf("indicator: ignoring line: %v", err)
			continue
		}
		switch msg.kind {
		case msgReady:
			select {
			case c.ready <- strings.Join(msg.args, " "):
			default:
			}
		case msgButton:
			c.dispatch(msg.button)
		default:
			glog.V(1).Infof("indicator: ignoring %s message", msg.kind)
		}
	}
}

// readLine returns the next line without its terminator. Lines that do not
// fit in the reader's buffer are discarded whole.
func readLine(r *bufio.Reader) (string, error) {
	for {
		buf, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		if !isPrefix {
			return string(buf), nil
		}
		glog.Warningf("indicator: dropping line longer than %d bytes", maxLineLen)
		for isPrefix {
			if _, isPrefix, err = r.ReadLine(); err != nil {
				return "", err
			}
		}
	}
}

func (c *Client) dispatch(ev ButtonEvent) {
	c.hmu.Lock()
	h := c.handler
	c.hmu.Unlock()

	if h == nil {
		glog.V(1).Infof("indicator: no handler for button %d state %d", ev.Button, ev.State)
		return
	}
	h(ev)
}
