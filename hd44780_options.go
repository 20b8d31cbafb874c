/*
Copyright 2024 Tim St. Pierre
Options for HD44780 character display
*/
package hd44780

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Opts struct {
	// Register select and enable pin names
	RS string
	E  string
	// Data pin names, D4 first
	Data [4]string
	// How many lines does the display have (1 to 4)
	Rows uint8
	// 5x10 dots font, only honoured on single line displays
	LargeFont bool

	// Open resolves pin names, OpenPin if nil
	Open PinOpener
	// Notify receives lifecycle events. It runs on the queue goroutine, so
	// calling a Dev method from it blocks the queue forever.
	Notify func(Event)
	// Sleep waits between bus steps, time.Sleep if nil
	Sleep func(time.Duration)
	// Logger defaults to the logrus standard logger
	Logger log.FieldLogger
}

var DefaultOpts = Opts{
	RS:   "GPIO25",
	E:    "GPIO24",
	Data: [4]string{"GPIO23", "GPIO17", "GPIO18", "GPIO22"},
	Rows: 1,
}

func (o *Opts) rows() uint8 {
	if o.Rows == 0 {
		return 1
	}
	return o.Rows
}

func (o *Opts) sleep() func(time.Duration) {
	if o.Sleep == nil {
		return time.Sleep
	}
	return o.Sleep
}

func (o *Opts) logger() log.FieldLogger {
	if o.Logger == nil {
		return log.StandardLogger()
	}
	return o.Logger
}

// validate checks the geometry only; pin names are checked by validatePins.
func (o *Opts) validate() error {
	if r := o.rows(); r > 4 {
		return fmt.Errorf("hd44780: %d rows not supported by device", r)
	}
	return nil
}

func (o *Opts) validatePins() error {
	seen := map[string]string{}
	check := func(role, name string) error {
		if name == "" {
			return fmt.Errorf("hd44780: %s pin is not configured", role)
		}
		if other, ok := seen[name]; ok {
			return fmt.Errorf("hd44780: %s and %s share pin %s", other, role, name)
		}
		seen[name] = role
		return nil
	}
	errs := []error{check("RS", o.RS), check("E", o.E)}
	for i, name := range o.Data {
		errs = append(errs, check(dataRoles[i], name))
	}
	return errors.Join(errs...)
}
