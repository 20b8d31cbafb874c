/*
Copyright 2024 Tim St. Pierre
Power-on handshake bringing the controller into 4-bit mode
*/
package hd44780

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

type initState int

const (
	statePoweredUnknown initState = iota
	stateWoken1
	stateWoken2
	stateWoken3
	stateFourBitMode
	stateFunctionSet
	stateEntryConfigured
	stateCleared
	stateReady
	stateClosed
)

var stateNames = [...]string{
	"PoweredUnknown", "Woken1", "Woken2", "Woken3", "FourBitMode",
	"FunctionSet", "EntryConfigured", "Cleared", "Ready", "Closed",
}

func (s initState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

const (
	powerOnDelay = 15 * time.Millisecond
	// Clear and home run for 1.52ms.
	clearDelay = 1520 * time.Microsecond
)

// The controller may be in 8-bit mode, in 4-bit mode or half way through a
// 4-bit byte. Three 0x3 nibbles put it in 8-bit mode whatever it was, 0x2 then
// switches to 4-bit.
var wakeSequence = []struct {
	nibble byte
	delay  time.Duration
	next   initState
}{
	{0x03, 4100 * time.Microsecond, stateWoken1},
	{0x03, 160 * time.Microsecond, stateWoken2},
	{0x03, 160 * time.Microsecond, stateWoken3},
	{0x02, 0, stateFourBitMode},
}

func (d *Dev) functionSet() byte {
	option := byte(CMD_Function_Set)
	if d.rows > 1 {
		option |= OPT_2_Lines
	}
	if d.rows == 1 && d.largeFont {
		option |= OPT_5x10_Dots
	}
	return option
}

// initialize runs the handshake. It is always the first job on the queue.
func (d *Dev) initialize() error {
	if err := d.bus.write("RS", d.bus.rs, gpio.Low); err != nil {
		return err
	}
	if err := d.bus.write("E", d.bus.e, gpio.Low); err != nil {
		return err
	}
	for i, p := range d.bus.data {
		if err := d.bus.write(dataRoles[i], p, gpio.Low); err != nil {
			return err
		}
	}
	d.sleep(powerOnDelay)
	for _, w := range wakeSequence {
		if err := d.bus.writeNibble(w.nibble); err != nil {
			return err
		}
		if w.delay > 0 {
			d.sleep(w.delay)
		}
		d.setState(w.next)
	}

	for _, c := range []byte{d.functionSet(), CMD_Cursor_Display_Shift} {
		if err := d.command(c); err != nil {
			return err
		}
	}
	d.setState(stateFunctionSet)

	for _, c := range []byte{d.displayControl, d.displayMode} {
		if err := d.command(c); err != nil {
			return err
		}
	}
	d.setState(stateEntryConfigured)

	if err := d.clear(); err != nil {
		return err
	}
	d.setState(stateCleared)

	d.setState(stateReady)
	d.log.Info("Controller ready")
	d.notify(Event{Kind: EventReady})
	return nil
}

func (d *Dev) setState(s initState) {
	d.log.Debugf("State %s -> %s", d.state, s)
	d.state = s
}
