package flash

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/golang/glog"
)

// CommandRunner executes ExecutionStep values by invoking the step's
// command directly (no shell). Commands and their output are logged.
//
// Commands run without a context: a raw copy or sync is never cut short.
type CommandRunner struct{}

func NewCommandRunner() *CommandRunner { return &CommandRunner{} }

func (r *CommandRunner) Run(step ExecutionStep) error {
	if len(step.Args) == 0 {
		return fmt.Errorf("%s: empty command", step.Operation)
	}
	return runCommand(step.Args)
}

var commandExec = func(args []string) ([]byte, error) {
	return exec.Command(args[0], args[1:]...).CombinedOutput()
}

func runCommand(args []string) error {
	glog.Infof("EXEC: %s", strings.Join(args, " "))
	out, err := commandExec(args)
	if len(out) > 0 {
		glog.Infof("OUTPUT: %s", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}
