/*
Copyright 2024 Tim St. Pierre
Controls an HD44780 character LCD wired to GPIO pins in 4-bit mode
*/

// Package hd44780 drives HD44780 compatible character LCDs over RS, E and
// D4-D7 GPIO lines. The R/W line must be tied low: the bus is write only so
// every wait is a fixed delay rather than a busy flag poll.
//
// Every operation goes through a FIFO queue served by one goroutine, so the
// GPIO sequences of concurrent callers never interleave.
package hd44780

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
)

const (
	// Commands
	CMD_Clear_Display        = 0x01
	CMD_Return_Home          = 0x02
	CMD_Entry_Mode           = 0x04
	CMD_Display_Control      = 0x08
	CMD_Cursor_Display_Shift = 0x10
	CMD_Function_Set         = 0x20
	CMD_DDRAM_Set            = 0x80

	// Options
	OPT_Increment      = 0x02 // CMD_Entry_Mode
	OPT_Cursor_Shift   = 0x01 // CMD_Entry_Mode
	OPT_Enable_Display = 0x04 // CMD_Display_Control
	OPT_Enable_Cursor  = 0x02 // CMD_Display_Control
	OPT_Enable_Blink   = 0x01 // CMD_Display_Control
	OPT_Display_Shift  = 0x08 // CMD_Cursor_Display_Shift
	OPT_Shift_Right    = 0x04 // CMD_Cursor_Display_Shift 0 = Left
	OPT_2_Lines        = 0x08 // CMD_Function_Set 0 = 1 line
	OPT_5x10_Dots      = 0x04 // CMD_Function_Set 0 = 5x7 dots

	// DDRAM holds 80 characters whatever the geometry.
	ddramSize = 80
)

// Row start addresses. Rows 3 and 4 continue rows 1 and 2 at +0x10, which is
// where 16x4 modules put them.
var rowOffsets = [4]byte{0x00, 0x40, 0x10, 0x50}

type Dev struct {
	name      string
	bus       nibbleBus
	queue     *opQueue
	state     initState
	rows      uint8
	largeFont bool
	// Last values written to the controller
	displayControl byte
	displayMode    byte

	sleep  func(time.Duration)
	notify func(Event)
	log    log.FieldLogger
}

func (d *Dev) String() string {
	return fmt.Sprintf("hd44780{%s}", d.name)
}

// New opens the pins named in opts and initializes the display.
//
// Use default options if nil is used.
func New(opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := opts.validatePins(); err != nil {
		return nil, err
	}
	open := opts.Open
	if open == nil {
		open = OpenPin
	}

	b := nibbleBus{}
	roles := append([]string{"RS", "E"}, dataRoles[:]...)
	names := append([]string{opts.RS, opts.E}, opts.Data[:]...)
	outs := make([]DigitalOutput, 0, len(roles))
	for i, name := range names {
		p, err := open(name)
		if err == nil && p == nil {
			err = ErrInvalidValue
		}
		if err != nil {
			for j := range outs {
				outs[j].Close()
			}
			return nil, &PinFault{Pin: roles[i], Op: "open", Err: err}
		}
		outs = append(outs, p)
	}
	b.rs, b.e = outs[0], outs[1]
	copy(b.data[:], outs[2:])
	return makeDev(b, fmt.Sprintf("rs=%s e=%s rows=%d", opts.RS, opts.E, opts.rows()), opts)
}

// NewWithPins initializes a display on already opened lines. The Dev owns
// them from then on and releases them in Close. If a line is nil nothing is
// touched and the caller keeps the others.
func NewWithPins(rs, e DigitalOutput, data [4]DigitalOutput, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := checkLines(rs, e, data); err != nil {
		return nil, err
	}
	b := nibbleBus{rs: rs, e: e, data: data}
	return makeDev(b, fmt.Sprintf("rows=%d", opts.rows()), opts)
}

func checkLines(rs, e DigitalOutput, data [4]DigitalOutput) error {
	lines := append([]DigitalOutput{rs, e}, data[:]...)
	roles := append([]string{"RS", "E"}, dataRoles[:]...)
	for i, p := range lines {
		if p == nil {
			return &PinFault{Pin: roles[i], Op: "open", Err: ErrInvalidValue}
		}
	}
	return nil
}

func makeDev(b nibbleBus, name string, opts *Opts) (*Dev, error) {
	d := &Dev{
		name:           name,
		bus:            b,
		queue:          newOpQueue(),
		rows:           opts.rows(),
		largeFont:      opts.LargeFont,
		displayControl: CMD_Display_Control | OPT_Enable_Display,
		displayMode:    CMD_Entry_Mode | OPT_Increment,
		sleep:          opts.sleep(),
		notify:         opts.Notify,
	}
	if d.notify == nil {
		d.notify = func(Event) {}
	}
	d.log = opts.logger().WithField("lcd", d.name)
	d.bus.sleep = d.sleep
	d.bus.log = d.log
	go d.queue.run(d.exec)

	if err := <-d.queue.submit(Op{name: "init", run: (*Dev).initialize}); err != nil {
		if cerr := d.Close(); cerr != nil {
			d.log.WithError(cerr).Warn("Releasing pins")
		}
		return nil, fmt.Errorf("hd44780: init: %w", err)
	}
	return d, nil
}

// exec runs on the queue goroutine only.
func (d *Dev) exec(op Op) error {
	var err error
	if op.needsReady && d.state != stateReady {
		err = ErrNotReady
	} else {
		err = op.run(d)
	}
	if err != nil {
		d.log.WithError(err).Warnf("%s failed", op)
		d.notify(Event{Kind: EventError, Op: op.name, Err: err})
	}
	return err
}

// Go queues op and returns without waiting. The channel receives the result
// once op and everything queued before it have run.
func (d *Dev) Go(op Op) <-chan error {
	if op.run == nil {
		return failed(fmt.Errorf("%w: empty operation", ErrInvalidValue))
	}
	if d.queue == nil {
		return failed(ErrNotReady)
	}
	return d.queue.submit(op)
}

func failed(err error) <-chan error {
	res := make(chan error, 1)
	res <- err
	return res
}

func (d *Dev) do(op Op) error {
	return <-d.Go(op)
}

// Close waits for queued operations and releases every pin. Later operations
// fail with ErrNotReady.
func (d *Dev) Close() error {
	return d.do(OpClose())
}

// Halt clears the screen and switches the display off. Pins stay open.
func (d *Dev) Halt() error {
	if err := d.Clear(); err != nil {
		return err
	}
	return d.NoDisplay()
}

func (d *Dev) Clear() error { return d.do(OpClear()) }
func (d *Dev) Home() error { return d.do(OpHome()) }
func (d *Dev) Display() error { return d.do(OpDisplay(true)) }
func (d *Dev) NoDisplay() error { return d.do(OpDisplay(false)) }
func (d *Dev) Cursor() error { return d.do(OpCursor(true)) }
func (d *Dev) NoCursor() error { return d.do(OpCursor(false)) }
func (d *Dev) Blink() error { return d.do(OpBlink(true)) }
func (d *Dev) NoBlink() error { return d.do(OpBlink(false)) }
func (d *Dev) ScrollDisplayLeft() error { return d.do(OpScroll(false)) }
func (d *Dev) ScrollDisplayRight() error { return d.do(OpScroll(true)) }
func (d *Dev) LeftToRight() error { return d.do(OpLeftToRight(true)) }
func (d *Dev) RightToLeft() error { return d.do(OpLeftToRight(false)) }
func (d *Dev) Autoscroll() error { return d.do(OpAutoscroll(true)) }
func (d *Dev) NoAutoscroll() error { return d.do(OpAutoscroll(false)) }
func (d *Dev) Command(b byte) error { return d.do(OpCommand(b)) }
func (d *Dev) Print(text string) error { return d.do(OpPrint(text)) }
func (d *Dev) SetCursor(col, row uint8) error { return d.do(OpSetCursor(col, row)) }

// Write sends buf as character data. Unlike Print nothing is skipped.
func (d *Dev) Write(buf []byte) (int, error) {
	var n int
	err := d.do(ready("write", func(d *Dev) error {
		for _, c := range buf {
			if err := d.bus.send(c, modeData); err != nil {
				return err
			}
			n++
		}
		return nil
	}))
	return n, err
}

// DisplayControl returns the display control byte as last written.
func (d *Dev) DisplayControl() (byte, error) {
	var v byte
	err := d.do(ready("display control", func(d *Dev) error {
		v = d.displayControl
		return nil
	}))
	return v, err
}

// DisplayMode returns the entry mode byte as last written.
func (d *Dev) DisplayMode() (byte, error) {
	var v byte
	err := d.do(ready("display mode", func(d *Dev) error {
		v = d.displayMode
		return nil
	}))
	return v, err
}

func (d *Dev) command(b byte) error {
	return d.bus.send(b, modeCommand)
}

// clear is shared with the init handshake and raises no event.
func (d *Dev) clear() error {
	if err := d.command(CMD_Clear_Display); err != nil {
		return err
	}
	d.sleep(clearDelay)
	return nil
}

func (d *Dev) writeDisplayControl(bit byte, on bool) error {
	return d.writeRegister(&d.displayControl, bit, on)
}

func (d *Dev) writeEntryMode(bit byte, on bool) error {
	return d.writeRegister(&d.displayMode, bit, on)
}

// writeRegister sends reg with bit set or cleared and keeps it only once the
// controller has it.
func (d *Dev) writeRegister(reg *byte, bit byte, on bool) error {
	option := *reg &^ bit
	if on {
		option |= bit
	}
	if err := d.command(option); err != nil {
		return err
	}
	*reg = option
	return nil
}

// printStart is the index Print starts sending from. Anything more than one
// full DDRAM before the end would be overwritten by wrap-around anyway.
func printStart(n int) int {
	if fills := n / ddramSize; fills > 1 {
		return (fills - 1) * ddramSize
	}
	return 0
}

var _ conn.Resource = &Dev{}
