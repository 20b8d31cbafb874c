/*
Copyright 2024 Tim St. Pierre
*/
package hd44780

import (
	"errors"
	"strings"
	"testing"
)

func TestOptsValidation(t *testing.T) {
	pins := func(o Opts) Opts {
		o.RS, o.E, o.Data = "RS", "E", [4]string{"D4", "D5", "D6", "D7"}
		return o
	}
	tests := []struct {
		name    string
		opts    Opts
		wantErr string
	}{
		{"defaults", DefaultOpts, ""},
		{"zero rows means one", pins(Opts{}), ""},
		{"four rows", pins(Opts{Rows: 4}), ""},
		{"five rows", pins(Opts{Rows: 5}), "5 rows"},
		{"missing E", Opts{RS: "RS", Data: [4]string{"D4", "D5", "D6", "D7"}}, "E pin is not configured"},
		{"missing D6", Opts{RS: "RS", E: "E", Data: [4]string{"D4", "D5", "", "D7"}}, "D6 pin is not configured"},
		{"shared pin", Opts{RS: "RS", E: "E", Data: [4]string{"D4", "RS", "D6", "D7"}}, "RS and D5 share pin RS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if err == nil {
				err = tt.opts.validatePins()
			}
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewOpensPins(t *testing.T) {
	tr := newTranscript()
	p := newTestPins(tr)
	byName := map[string]DigitalOutput{"GPIO25": p.rs, "GPIO24": p.e}
	for i, name := range DefaultOpts.Data {
		byName[name] = p.data[i]
	}
	var opened []string
	opts := DefaultOpts
	opts.Rows = 2
	opts.Sleep = tr.sleep
	opts.Logger = quietLogger()
	opts.Open = func(name string) (DigitalOutput, error) {
		opened = append(opened, name)
		return byName[name], nil
	}
	d, err := New(&opts)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if len(opened) != 6 {
		t.Errorf("opened %v", opened)
	}
	if got, want := d.String(), "hd44780{rs=GPIO25 e=GPIO24 rows=2}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if len(tr.nibbles()) == 0 {
		t.Error("init did not run")
	}
}

func TestNewOpenFailure(t *testing.T) {
	tr := newTranscript()
	p := newTestPins(tr)
	boom := errors.New("no such pin")
	opts := DefaultOpts
	opts.Logger = quietLogger()
	opts.Open = func(name string) (DigitalOutput, error) {
		switch name {
		case opts.RS:
			return p.rs, nil
		case opts.E:
			return p.e, nil
		}
		return nil, boom
	}
	_, err := New(&opts)
	var pf *PinFault
	if !errors.As(err, &pf) || pf.Pin != "D4" || pf.Op != "open" || !errors.Is(err, boom) {
		t.Fatalf("New() = %v, want D4 open fault", err)
	}
	if tr.closed["RS"] != 1 || tr.closed["E"] != 1 {
		t.Errorf("opened pins not released: %v", tr.closed)
	}
}

func TestNewRejectsBadOpts(t *testing.T) {
	if _, err := New(&Opts{Rows: 2}); err == nil {
		t.Error("New() without pins succeeded")
	}
	if _, err := NewWithPins(nil, nil, [4]DigitalOutput{}, &Opts{Rows: 7}); err == nil {
		t.Error("NewWithPins() with 7 rows succeeded")
	}
}

func TestNewRejectsNilOpenedPin(t *testing.T) {
	tr := newTranscript()
	p := newTestPins(tr)
	opts := DefaultOpts
	opts.Logger = quietLogger()
	opts.Open = func(name string) (DigitalOutput, error) {
		switch name {
		case opts.RS:
			return p.rs, nil
		case opts.E:
			return p.e, nil
		}
		return nil, nil
	}
	_, err := New(&opts)
	var pf *PinFault
	if !errors.As(err, &pf) || pf.Pin != "D4" || !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("New() = %v, want invalid D4", err)
	}
	if tr.closed["RS"] != 1 || tr.closed["E"] != 1 {
		t.Errorf("opened pins not released: %v", tr.closed)
	}
}
