/*
Copyright 2024 Tim St. Pierre
Errors reported by the HD44780 driver
*/
package hd44780

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidValue is returned when a value that does not fit the bus
	// reaches the framing layer, e.g. a nibble wider than 4 bits.
	ErrInvalidValue = errors.New("hd44780: invalid value")
	// ErrNotReady is returned for operations issued before initialization
	// completed or after Close.
	ErrNotReady = errors.New("hd44780: controller not ready")
)

// PinFault wraps an error returned by the GPIO backend.
type PinFault struct {
	Pin string // role, e.g. "RS", "E", "D4"
	Op  string // "open", "write" or "close"
	Err error
}

func (p *PinFault) Error() string {
	return fmt.Sprintf("hd44780: %s pin %s: %v", p.Op, p.Pin, p.Err)
}

func (p *PinFault) Unwrap() error {
	return p.Err
}
