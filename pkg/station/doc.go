// Package station runs the unattended flashing loop: it connects to the
// indicator device, then polls for an inserted card or a forced trigger from
// the indicator's button, and hands each trigger to a flash.Flasher inside an
// error boundary so a failed card never stops the station.
package station
