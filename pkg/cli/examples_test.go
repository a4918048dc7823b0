package cli_test

import (
	"context"
	"fmt"

	"github.com/woliveiras/sdflash/pkg/cli"
)

func ExampleNewStdUI() {
	ui := cli.NewStdUI()
	fmt.Printf("%T\n", ui)
	// Output: *cli.stdUI
}

func ExampleRun_help() {
	// Calling Run with an empty args slice returns a deterministic error.
	var args []string
	if err := cli.Run(context.Background(), args); err != nil {
		fmt.Println("error:", err)
	}
	// Output: error: no arguments provided
}
