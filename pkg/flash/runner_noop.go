package flash

import "github.com/golang/glog"

// NoopRunner logs steps but does not execute any system commands. Useful
// for rehearsing the station without touching disks.
type NoopRunner struct{}

func NewNoopRunner() *NoopRunner { return &NoopRunner{} }

func (n *NoopRunner) Run(step ExecutionStep) error {
	glog.Infof("NOOP: %s (%s)", step.Operation, step)
	return nil
}
