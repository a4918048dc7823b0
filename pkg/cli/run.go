package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/woliveiras/sdflash/pkg/flash"
	"github.com/woliveiras/sdflash/pkg/indicator"
	"github.com/woliveiras/sdflash/pkg/station"
)

// UI abstracts the operator-facing output so it can be captured in tests.
// Operational messages go through glog instead.
type UI interface {
	Println(a ...any)
	Printf(format string, a ...any)
}

type stdUI struct {
	out io.Writer
}

// NewStdUI returns a UI backed by stdout.
func NewStdUI() UI {
	return &stdUI{out: os.Stdout}
}

func (u *stdUI) Println(a ...any) {
	fmt.Fprintln(u.out, a...)
}

func (u *stdUI) Printf(format string, a ...any) {
	fmt.Fprintf(u.out, format, a...)
}

// Run is the main entrypoint for the CLI. It blocks until ctx is cancelled;
// cancellation is a normal stop and returns nil.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, NewStdUI(), serialDialer)
}

func serialDialer(opts Options) station.Dialer {
	return func() (indicator.Device, error) {
		c, err := indicator.Dial(opts.Indicator, indicator.WithBaudRate(opts.Baud))
		if err != nil {
			return nil, err
		}
		glog.Infof("Connected to indicator %s %s", opts.Indicator, c.Info())
		return c, nil
	}
}

// run is the internal implementation that allows injecting the UI and the
// indicator dialer.
func run(ctx context.Context, args []string, ui UI, dial func(Options) station.Dialer) error {
	if len(args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	opts, rest, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %v", rest)
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	target := opts.target()
	if err := flash.ValidateTarget(target); err != nil {
		return err
	}
	if _, err := os.Stat(opts.Image); err != nil {
		glog.Warningf("image %s is not readable yet; every flash will fail until it is: %v", opts.Image, err)
	}

	var runner flash.Runner = flash.NewCommandRunner()
	if opts.DryRun {
		runner = flash.NewNoopRunner()
		ui.Println("Dry run: the following commands are logged, not executed:")
		for _, step := range flash.BuildFlashSteps(opts.Image, target) {
			ui.Printf("  - %s: %s\n", step.Description, step)
		}
	} else if err := flash.CheckPrerequisites(); err != nil {
		return err
	}

	force := &station.ForceFlag{}
	dialer := dial(opts)
	dev, err := station.Connect(ctx, dialer, opts.ConnectRetry, force)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	prober := flash.BlockProber{}
	ctrl := &station.Controller{
		Device: target.Partition,
		Prober: prober,
		Flasher: &flash.Flasher{
			Image:        opts.Image,
			Target:       target,
			Runner:       runner,
			Prober:       prober,
			PollInterval: opts.PollInterval,
			ChunkSize:    opts.ChunkSize,
			MarkFailures: opts.MarkFailures,
			Journal:      opts.Journal,
		},
		LED:          dev,
		Force:        force,
		PollInterval: opts.PollInterval,
		Dial:         dialer,
		ConnectRetry: opts.ConnectRetry,
	}
	if err := ctrl.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	glog.Infof("Station stopped.")
	return nil
}
