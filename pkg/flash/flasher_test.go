package flash

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/woliveiras/sdflash/pkg/indicator"
)

type recordingLED struct {
	mu     sync.Mutex
	colors []indicator.Color
}

func (l *recordingLED) SetColor(c indicator.Color) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colors = append(l.colors, c)
	return nil
}

func (l *recordingLED) seen() []indicator.Color {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]indicator.Color(nil), l.colors...)
}

type fakeRunner struct {
	ran   []string
	fails map[string]error
}

func (r *fakeRunner) Run(step ExecutionStep) error {
	r.ran = append(r.ran, step.Operation)
	return r.fails[step.Operation]
}

// removalProber reports the card present for the first `present` checks.
type removalProber struct {
	present int
	checks  int
}

func (p *removalProber) Exists(string) bool {
	p.checks++
	return p.checks <= p.present
}

type station struct {
	flasher *Flasher
	runner  *fakeRunner
	prober  *removalProber
	led     *recordingLED
}

// newStation lays out a 1024-byte zero image with its digest and a fake
// raw disk holding diskData.
func newStation(t *testing.T, diskData []byte) *station {
	t.Helper()
	dir := t.TempDir()

	image := make([]byte, 1024)
	imagePath := filepath.Join(dir, "card.img")
	if err := os.WriteFile(imagePath, image, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	if err := os.WriteFile(SidecarPath(imagePath), []byte(md5Hex(image)+"  card.img\n"), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	diskPath := filepath.Join(dir, "sda")
	if err := os.WriteFile(diskPath, diskData, 0o644); err != nil {
		t.Fatalf("write disk: %v", err)
	}

	s := &station{
		runner: &fakeRunner{fails: map[string]error{}},
		prober: &removalProber{present: 2},
		led:    &recordingLED{},
	}
	s.flasher = &Flasher{
		Image:        imagePath,
		Target:       Target{Disk: diskPath, Partition: filepath.Join(dir, "sda1")},
		Runner:       s.runner,
		Prober:       s.prober,
		PollInterval: time.Millisecond,
	}
	return s
}

func assertColors(t *testing.T, got []indicator.Color, want ...indicator.Color) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LED sequence = %v, want %v", got, want)
	}
}

func TestFlash_VerifiedCard(t *testing.T) {
	s := newStation(t, make([]byte, 1024))

	if err := s.flasher.Flash(context.Background(), s.led); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertColors(t, s.led.seen(), indicator.Yellow, indicator.Green, indicator.Blue)
	if !reflect.DeepEqual(s.runner.ran, []string{OpUnmount, OpCopy, OpSync}) {
		t.Fatalf("unexpected steps: %v", s.runner.ran)
	}
	if s.prober.checks != 3 {
		t.Fatalf("expected removal to be polled until the card left, got %d checks", s.prober.checks)
	}
}

func TestFlash_CorruptedCard(t *testing.T) {
	disk := make([]byte, 1024)
	disk[512] ^= 0x08
	s := newStation(t, disk)

	if err := s.flasher.Flash(context.Background(), s.led); err != nil {
		t.Fatalf("a mismatch is reported on the LED, not as an error: %v", err)
	}
	assertColors(t, s.led.seen(), indicator.Yellow, indicator.Red, indicator.Blue)
}

func TestFlash_UnmountFailureIsSwallowed(t *testing.T) {
	s := newStation(t, make([]byte, 1024))
	s.runner.fails[OpUnmount] = errors.New("not mounted")

	if err := s.flasher.Flash(context.Background(), s.led); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertColors(t, s.led.seen(), indicator.Yellow, indicator.Green, indicator.Blue)
}

func TestFlash_CopyFailureAborts(t *testing.T) {
	s := newStation(t, make([]byte, 1024))
	boom := errors.New("exit status 1")
	s.runner.fails[OpCopy] = boom

	err := s.flasher.Flash(context.Background(), s.led)
	if !errors.Is(err, boom) {
		t.Fatalf("expected copy error, got %v", err)
	}
	if !strings.Contains(err.Error(), OpCopy) {
		t.Fatalf("expected error to name the failed operation, got %v", err)
	}
	if !reflect.DeepEqual(s.runner.ran, []string{OpUnmount, OpCopy}) {
		t.Fatalf("sync must not run after a failed copy, ran %v", s.runner.ran)
	}
	assertColors(t, s.led.seen(), indicator.Yellow)
	if s.prober.checks != 0 {
		t.Fatalf("failed attempt must not wait for removal")
	}
}

func TestFlash_SyncFailureMarkedRed(t *testing.T) {
	s := newStation(t, make([]byte, 1024))
	s.flasher.MarkFailures = true
	s.runner.fails[OpSync] = errors.New("exit status 1")

	if err := s.flasher.Flash(context.Background(), s.led); err == nil {
		t.Fatalf("expected sync error")
	}
	assertColors(t, s.led.seen(), indicator.Yellow, indicator.Red)
}

func TestFlash_MissingSidecarAborts(t *testing.T) {
	s := newStation(t, make([]byte, 1024))
	if err := os.Remove(SidecarPath(s.flasher.Image)); err != nil {
		t.Fatalf("remove sidecar: %v", err)
	}

	if err := s.flasher.Flash(context.Background(), s.led); err == nil {
		t.Fatalf("expected error for a missing digest file")
	}
	assertColors(t, s.led.seen(), indicator.Yellow)
}

func TestFlash_RemovalWaitHonorsCancel(t *testing.T) {
	s := newStation(t, make([]byte, 1024))
	s.prober.present = 1 << 30
	s.flasher.PollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.flasher.Flash(ctx, s.led) }()

	// Wait until the green result is shown, then stop.
	deadline := time.Now().Add(2 * time.Second)
	for len(s.led.seen()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("flash never reached the removal wait")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("flash did not stop after cancel")
	}
	assertColors(t, s.led.seen(), indicator.Yellow, indicator.Green)
}

func TestFlash_WritesJournal(t *testing.T) {
	s := newStation(t, make([]byte, 1024))
	s.flasher.Journal = filepath.Join(t.TempDir(), "sdflash.journal")

	if err := s.flasher.Flash(context.Background(), s.led); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.runner.fails[OpCopy] = errors.New("exit status 1")
	_ = s.flasher.Flash(context.Background(), &recordingLED{})

	data, err := os.ReadFile(s.flasher.Journal)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "result: VERIFIED") || !strings.Contains(text, "result: FAILED") {
		t.Fatalf("journal missing expected results:\n%s", text)
	}
	if n := strings.Count(text, "=== "); n != 2 {
		t.Fatalf("expected 2 journal entries, got %d:\n%s", n, text)
	}
	if !bytes.HasPrefix(data, []byte("# sdflash journal")) {
		t.Fatalf("journal missing header:\n%s", text)
	}
}

type deadLED struct{ calls int }

func (l *deadLED) SetColor(indicator.Color) error {
	l.calls++
	return indicator.ErrClosed
}

func TestFlash_LostIndicatorStillWritesCard(t *testing.T) {
	s := newStation(t, make([]byte, 1024))
	led := &deadLED{}

	if err := s.flasher.Flash(context.Background(), led); err != nil {
		t.Fatalf("LED failures must not abort the attempt: %v", err)
	}
	if !reflect.DeepEqual(s.runner.ran, []string{OpUnmount, OpCopy, OpSync}) {
		t.Fatalf("expected the full write, got steps %v", s.runner.ran)
	}
	if led.calls != 3 {
		t.Fatalf("expected yellow, result and blue to be attempted, got %d writes", led.calls)
	}
}
