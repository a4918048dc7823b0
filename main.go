package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	"github.com/woliveiras/sdflash/pkg/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer glog.Flush()

	if err := cli.Run(ctx, os.Args); err != nil {
		glog.Exitf("sdflash: %v", err)
	}
}
