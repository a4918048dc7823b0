// Package indicator talks to the status indicator device: a small robot or
// board with a tri-color LED and push buttons, attached over a serial line.
//
// The link carries newline-terminated ASCII lines. The host sends
//
//	HELLO
//	LED <r> <g> <b>
//
// and the device answers HELLO with "READY [info]" and reports button
// transitions as
//
//	BTN <button> <state> <timestamp-ms>
//
// LED writes are fire-and-forget. Button events are delivered to the
// registered ButtonHandler from the client's reader goroutine, so handlers
// must be safe to call concurrently with the rest of the program.
package indicator
