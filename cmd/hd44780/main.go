/*
Copyright 2024 Tim St. Pierre
Prints to an HD44780 display wired to GPIO, or drives it interactively
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
	log "github.com/sirupsen/logrus"
	"periph.io/x/host/v3"

	"github.com/tstpierre-tc/hd44780"
)

var (
	rs          = flag.String("rs", hd44780.DefaultOpts.RS, "Register select pin")
	e           = flag.String("e", hd44780.DefaultOpts.E, "Enable pin")
	d4          = flag.String("d4", hd44780.DefaultOpts.Data[0], "D4 pin")
	d5          = flag.String("d5", hd44780.DefaultOpts.Data[1], "D5 pin")
	d6          = flag.String("d6", hd44780.DefaultOpts.Data[2], "D6 pin")
	d7          = flag.String("d7", hd44780.DefaultOpts.Data[3], "D7 pin")
	rows        = flag.Uint("rows", 2, "Number of display lines (1-4)")
	largeFont   = flag.Bool("large-font", false, "Use the 5x10 font (single line displays)")
	interactive = flag.Bool("i", false, "Read commands from stdin")
	verbose     = flag.Bool("v", false, "Log every byte sent")
)

func main() {
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *rows > 4 {
		log.Fatalf("-rows %d out of range", *rows)
	}
	if _, err := host.Init(); err != nil {
		log.Fatalln("Unable to initialize periph:", err)
	}

	lcd, err := hd44780.New(&hd44780.Opts{
		RS:        *rs,
		E:         *e,
		Data:      [4]string{*d4, *d5, *d6, *d7},
		Rows:      uint8(*rows),
		LargeFont: *largeFont,
		Notify: func(ev hd44780.Event) {
			if ev.Kind != hd44780.EventError {
				log.Debugf("Event %s", ev.Kind)
			}
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := lcd.Close(); err != nil {
			log.Warn(err)
		}
	}()
	log.Infof("Opened %s", lcd)

	for i, arg := range flag.Args() {
		if i > 0 {
			if err := lcd.SetCursor(0, uint8(i)); err != nil {
				log.Error(err)
				return
			}
		}
		if err := lcd.Print(arg); err != nil {
			log.Error(err)
			return
		}
	}
	if *interactive {
		repl(lcd)
	}
}

func repl(lcd *hd44780.Dev) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" || args[0] == "q" {
			return
		}
		if err := run(lcd, args[0], args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

// toggles maps on/off commands to their operations.
var toggles = map[string]func(bool) hd44780.Op{
	"display":     hd44780.OpDisplay,
	"cursor-show": hd44780.OpCursor,
	"blink":       hd44780.OpBlink,
	"autoscroll":  hd44780.OpAutoscroll,
}

func run(lcd *hd44780.Dev, cmd string, args []string) error {
	if op, ok := toggles[cmd]; ok {
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return fmt.Errorf("usage: %s on|off", cmd)
		}
		return <-lcd.Go(op(args[0] == "on"))
	}
	switch cmd {
	case "help", "?":
		printHelp()
		return nil
	case "print":
		return lcd.Print(strings.Join(args, " "))
	case "clear":
		return lcd.Clear()
	case "home":
		return lcd.Home()
	case "cursor":
		if len(args) != 2 {
			return fmt.Errorf("usage: cursor col row")
		}
		col, err := strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			return err
		}
		row, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			return err
		}
		return lcd.SetCursor(uint8(col), uint8(row))
	case "scroll":
		if len(args) != 1 || (args[0] != "left" && args[0] != "right") {
			return fmt.Errorf("usage: scroll left|right")
		}
		return <-lcd.Go(hd44780.OpScroll(args[0] == "right"))
	case "direction":
		if len(args) != 1 || (args[0] != "ltr" && args[0] != "rtl") {
			return fmt.Errorf("usage: direction ltr|rtl")
		}
		return <-lcd.Go(hd44780.OpLeftToRight(args[0] == "ltr"))
	case "raw":
		if len(args) != 1 {
			return fmt.Errorf("usage: raw byte")
		}
		b, err := strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			return err
		}
		return lcd.Command(byte(b))
	}
	return fmt.Errorf("unknown command %q, try help", cmd)
}

func printHelp() {
	fmt.Println(`Commands:
  print TEXT...            print text at the cursor
  clear | home
  cursor COL ROW           move the cursor
  display on|off
  cursor-show on|off
  blink on|off
  autoscroll on|off
  scroll left|right
  direction ltr|rtl
  raw BYTE                 send an instruction byte, e.g. raw 0x40
  quit`)
}
