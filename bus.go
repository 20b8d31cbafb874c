/*
Copyright 2024 Tim St. Pierre
4-bit bus: nibble writes, enable strobe and byte framing
*/
package hd44780

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

type mode bool

const (
	modeCommand mode = false
	modeData    mode = true
)

func (m mode) String() string {
	if m == modeData {
		return "data"
	}
	return "command"
}

const (
	// tPW is 230ns in the datasheet; sleeps shorter than this are not
	// reliable anyway.
	enablePulse = 1 * time.Microsecond
	// Most instructions take 37µs once latched.
	enableSettle = 50 * time.Microsecond
)

var dataRoles = [4]string{"D4", "D5", "D6", "D7"}

// nibbleBus owns the RS, E and D4-D7 lines.
type nibbleBus struct {
	rs, e DigitalOutput
	data  [4]DigitalOutput
	sleep func(time.Duration)
	log   log.FieldLogger
}

func (b *nibbleBus) write(role string, p DigitalOutput, l gpio.Level) error {
	if err := p.Write(l); err != nil {
		return &PinFault{Pin: role, Op: "write", Err: err}
	}
	return nil
}

// writeNibble puts v on D4-D7, bit 0 on D4, and latches it.
func (b *nibbleBus) writeNibble(v byte) error {
	if v > 0x0F {
		return fmt.Errorf("%w: nibble %#x", ErrInvalidValue, v)
	}
	for i, p := range b.data {
		if err := b.write(dataRoles[i], p, v&(1<<i) != 0); err != nil {
			return err
		}
	}
	return b.strobe()
}

func (b *nibbleBus) strobe() error {
	if err := b.write("E", b.e, gpio.High); err != nil {
		return err
	}
	b.sleep(enablePulse)
	if err := b.write("E", b.e, gpio.Low); err != nil {
		return err
	}
	b.sleep(enableSettle)
	return nil
}

// send frames one byte, high nibble first.
func (b *nibbleBus) send(v byte, m mode) error {
	b.log.Debugf("Writing %s %08b %#02x", m, v, v)
	if err := b.write("RS", b.rs, gpio.Level(m)); err != nil {
		return err
	}
	if err := b.writeNibble(v >> 4); err != nil {
		return err
	}
	return b.writeNibble(v & 0x0F)
}

// close releases every line once, E and RS last.
func (b *nibbleBus) close() error {
	var errs []error
	release := func(role string, p DigitalOutput) {
		if p == nil {
			return
		}
		if err := p.Close(); err != nil {
			errs = append(errs, &PinFault{Pin: role, Op: "close", Err: err})
		}
	}
	for i := range b.data {
		release(dataRoles[i], b.data[i])
		b.data[i] = nil
	}
	release("E", b.e)
	release("RS", b.rs)
	b.e, b.rs = nil, nil
	return errors.Join(errs...)
}
