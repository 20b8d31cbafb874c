/*
Copyright 2024 Tim St. Pierre
Queueable display operations
*/
package hd44780

import "fmt"

func ready(name string, run func(d *Dev) error) Op {
	return Op{name: name, run: run, needsReady: true}
}

// OpClose drains the queue and releases the pins.
func OpClose() Op {
	return Op{name: "close", closing: true, run: func(d *Dev) error {
		if d.state == stateClosed {
			return ErrNotReady
		}
		d.setState(stateClosed)
		return d.bus.close()
	}}
}

// OpClear clears the display and returns the cursor home.
func OpClear() Op {
	return ready("clear", func(d *Dev) error {
		if err := d.clear(); err != nil {
			return err
		}
		d.notify(Event{Kind: EventClear})
		return nil
	})
}

// OpHome returns the cursor home and undoes any display shift.
func OpHome() Op {
	return ready("home", func(d *Dev) error {
		if err := d.command(CMD_Return_Home); err != nil {
			return err
		}
		d.sleep(clearDelay)
		d.notify(Event{Kind: EventHome})
		return nil
	})
}

// OpSetCursor moves the cursor. Rows past the last one are clamped to it.
func OpSetCursor(col, row uint8) Op {
	return ready("set cursor", func(d *Dev) error {
		r := row
		if r >= d.rows {
			r = d.rows - 1
		}
		addr := int(col) + int(rowOffsets[r])
		if addr >= CMD_DDRAM_Set {
			return fmt.Errorf("%w: column %d on row %d", ErrInvalidValue, col, r)
		}
		return d.command(CMD_DDRAM_Set | byte(addr))
	})
}

// OpDisplay switches the whole display on or off. DDRAM is kept.
func OpDisplay(on bool) Op {
	return ready("display", func(d *Dev) error {
		return d.writeDisplayControl(OPT_Enable_Display, on)
	})
}

// OpCursor shows or hides the underline cursor.
func OpCursor(on bool) Op {
	return ready("cursor", func(d *Dev) error {
		return d.writeDisplayControl(OPT_Enable_Cursor, on)
	})
}

// OpBlink turns blinking of the cursor cell on or off.
func OpBlink(on bool) Op {
	return ready("blink", func(d *Dev) error {
		return d.writeDisplayControl(OPT_Enable_Blink, on)
	})
}

// OpScroll shifts the whole display one position, right if right is set.
func OpScroll(right bool) Op {
	return ready("scroll", func(d *Dev) error {
		option := byte(CMD_Cursor_Display_Shift | OPT_Display_Shift)
		if right {
			option |= OPT_Shift_Right
		}
		return d.command(option)
	})
}

// OpLeftToRight sets the entry direction, right to left if on is false.
func OpLeftToRight(on bool) Op {
	return ready("direction", func(d *Dev) error {
		return d.writeEntryMode(OPT_Increment, on)
	})
}

// OpAutoscroll shifts the display instead of the cursor on each character.
func OpAutoscroll(on bool) Op {
	return ready("autoscroll", func(d *Dev) error {
		return d.writeEntryMode(OPT_Cursor_Shift, on)
	})
}

// OpCommand sends a raw instruction byte.
func OpCommand(b byte) Op {
	return ready("command", func(d *Dev) error {
		return d.command(b)
	})
}

// OpPrint sends the bytes of text as character codes, unmodified. Text longer
// than two DDRAM lengths is cut down to what the display would keep.
func OpPrint(text string) Op {
	return ready("print", func(d *Dev) error {
		for i := printStart(len(text)); i < len(text); i++ {
			if err := d.bus.send(text[i], modeData); err != nil {
				return err
			}
		}
		d.notify(Event{Kind: EventPrinted, Text: text})
		return nil
	})
}
