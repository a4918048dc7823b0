// Package flash contains the core of the flashing station: probing for the
// target block device, running the raw copy and sync commands, verifying
// the written image against its MD5 sidecar, and walking the indicator LED
// through in-progress, result and idle colors.
//
// External commands go through the Runner interface so the sequence can be
// rehearsed with NoopRunner or driven by fakes in tests.
package flash
