/*
Copyright 2024 Tim St. Pierre
GPIO lines used to drive the controller
*/
package hd44780

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// DigitalOutput is a single GPIO line driven by the controller.
type DigitalOutput interface {
	Write(l gpio.Level) error
	Close() error
}

// PinOpener opens the named line in output mode.
type PinOpener func(name string) (DigitalOutput, error)

// OpenPin looks the pin up in the periph registry and drives it low. host.Init
// must have been called before.
func OpenPin(name string) (DigitalOutput, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no such pin %q", name)
	}
	return NewOutput(p)
}

// NewOutput adapts an already resolved periph pin. The pin is driven low.
func NewOutput(p gpio.PinOut) (DigitalOutput, error) {
	if err := p.Out(gpio.Low); err != nil {
		return nil, err
	}
	return &gpioOutput{p: p}, nil
}

type gpioOutput struct {
	p gpio.PinOut
}

func (g *gpioOutput) Write(l gpio.Level) error {
	return g.p.Out(l)
}

// Close leaves the line low and halts it.
func (g *gpioOutput) Close() error {
	if err := g.p.Out(gpio.Low); err != nil {
		return err
	}
	return g.p.Halt()
}

func (g *gpioOutput) String() string {
	return g.p.String()
}
