package cli

import (
	"flag"
	"fmt"
	"time"

	"github.com/woliveiras/sdflash/pkg/flash"
	"github.com/woliveiras/sdflash/pkg/indicator"
)

const (
	DefaultImage     = "barobo-odroid-20160913.img"
	DefaultDisk      = "/dev/sda"
	DefaultPartition = "/dev/sda1"
)

// Options holds the configuration of a station run.
type Options struct {
	Image        string
	Disk         string
	Partition    string
	Indicator    string
	Baud         int
	PollInterval time.Duration
	ConnectRetry time.Duration
	ChunkSize    int
	Journal      string
	MarkFailures bool
	DryRun       bool
}

// Validate rejects options the station cannot run with.
func (o Options) Validate() error {
	switch {
	case o.Image == "":
		return fmt.Errorf("image path is required")
	case o.Disk == "" || o.Partition == "":
		return fmt.Errorf("target disk and partition are required")
	case o.Indicator == "":
		return fmt.Errorf("indicator port is required (use %q to discover it)", indicator.AutoPort)
	case o.Baud <= 0:
		return fmt.Errorf("baud rate must be positive, got %d", o.Baud)
	case o.PollInterval <= 0:
		return fmt.Errorf("poll interval must be positive, got %s", o.PollInterval)
	case o.ConnectRetry <= 0:
		return fmt.Errorf("connect retry interval must be positive, got %s", o.ConnectRetry)
	case o.ChunkSize <= 0:
		return fmt.Errorf("chunk size must be positive, got %d", o.ChunkSize)
	}
	return nil
}

func (o Options) target() flash.Target {
	return flash.Target{Disk: o.Disk, Partition: o.Partition}
}

// parseFlags parses command-line flags into Options and returns the
// remaining non-flag arguments. glog's flags are accepted as well.
func parseFlags(args []string) (Options, []string, error) {
	fs := flag.NewFlagSet("sdflash", flag.ContinueOnError)
	flag.CommandLine.VisitAll(func(f *flag.Flag) {
		fs.Var(f.Value, f.Name, f.Usage)
	})
	// The station runs under a supervisor; log to stderr unless told otherwise.
	_ = fs.Set("logtostderr", "true")

	var opts Options
	fs.StringVar(&opts.Image, "image", DefaultImage, "image file to write; its digest is read from <image>"+flash.SidecarSuffix)
	fs.StringVar(&opts.Disk, "disk", DefaultDisk, "raw disk the image is written to")
	fs.StringVar(&opts.Partition, "partition", DefaultPartition, "partition probed for card presence and unmounted before writing")
	fs.StringVar(&opts.Indicator, "indicator", indicator.AutoPort, "serial port of the indicator device, or \"auto\"")
	fs.IntVar(&opts.Baud, "baud", 115200, "indicator serial baud rate")
	fs.DurationVar(&opts.PollInterval, "poll", time.Second, "wait between card presence checks")
	fs.DurationVar(&opts.ConnectRetry, "connect-retry", 10*time.Second, "wait between indicator connection attempts")
	fs.IntVar(&opts.ChunkSize, "chunk-size", flash.DefaultChunkSize, "read size used while verifying")
	fs.StringVar(&opts.Journal, "journal", "", "append a record of every flash attempt to this file")
	fs.BoolVar(&opts.MarkFailures, "mark-failures", false, "turn the LED red when copy, sync or verification fails")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "log the commands instead of executing them")

	if err := fs.Parse(args[1:]); err != nil {
		return Options{}, nil, err
	}
	return opts, fs.Args(), nil
}
