/*
Copyright 2024 Tim St. Pierre
Recording GPIO fakes shared by the tests
*/
package hd44780

import (
	"io"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// nibble is what the controller latched on a rising edge of E.
type nibble struct {
	rs gpio.Level
	v  byte
}

// frame is a full byte made of two nibbles.
type frame struct {
	m mode
	b byte
}

type entry struct {
	latched *nibble
	sleep   time.Duration
}

type transcript struct {
	mu     sync.Mutex
	levels map[string]gpio.Level
	log    []entry
	closed map[string]int
	fail   map[string]error
}

func newTranscript() *transcript {
	return &transcript{
		levels: map[string]gpio.Level{},
		closed: map[string]int{},
		fail:   map[string]error{},
	}
}

func (t *transcript) sleep(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = append(t.log, entry{sleep: d})
}

func (t *transcript) failWrites(role string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		delete(t.fail, role)
		return
	}
	t.fail[role] = err
}

func (t *transcript) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = nil
}

func (t *transcript) entries() []entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]entry(nil), t.log...)
}

func (t *transcript) nibbles() []nibble {
	var out []nibble
	for _, e := range t.entries() {
		if e.latched != nil {
			out = append(out, *e.latched)
		}
	}
	return out
}

// frames pairs up nibbles, skipping the first skip single-nibble writes.
func (t *transcript) frames(tb testing.TB, skip int) []frame {
	tb.Helper()
	n := t.nibbles()[skip:]
	if len(n)%2 != 0 {
		tb.Fatalf("odd number of nibbles: %d", len(n))
	}
	var out []frame
	for i := 0; i < len(n); i += 2 {
		if n[i].rs != n[i+1].rs {
			tb.Fatalf("RS changed inside frame %d", i/2)
		}
		out = append(out, frame{m: mode(n[i].rs), b: n[i].v<<4 | n[i+1].v})
	}
	return out
}

type recordingPin struct {
	*gpiotest.Pin
	role string
	t    *transcript
}

func (p *recordingPin) Write(l gpio.Level) error {
	t := p.t
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail[p.role]; err != nil {
		return err
	}
	if err := p.Out(l); err != nil {
		return err
	}
	if p.role == "E" && l == gpio.High && t.levels["E"] == gpio.Low {
		var v byte
		for i, role := range dataRoles {
			if t.levels[role] {
				v |= 1 << i
			}
		}
		t.log = append(t.log, entry{latched: &nibble{rs: t.levels["RS"], v: v}})
	}
	t.levels[p.role] = l
	return nil
}

func (p *recordingPin) Close() error {
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	p.t.closed[p.role]++
	return p.Halt()
}

type testPins struct {
	rs, e *recordingPin
	data  [4]DigitalOutput
}

func newTestPins(t *transcript) testPins {
	mk := func(role string, num int) *recordingPin {
		return &recordingPin{Pin: &gpiotest.Pin{N: role, Num: num}, role: role, t: t}
	}
	p := testPins{rs: mk("RS", 25), e: mk("E", 24)}
	for i, role := range dataRoles {
		p.data[i] = mk(role, 17+i)
	}
	return p
}

func quietLogger() log.FieldLogger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestDev returns an initialized Dev on recording pins with an empty
// transcript.
func newTestDev(tb testing.TB, opts Opts) (*Dev, *transcript) {
	tb.Helper()
	tr := newTranscript()
	p := newTestPins(tr)
	opts.Sleep = tr.sleep
	opts.Logger = quietLogger()
	d, err := NewWithPins(p.rs, p.e, p.data, &opts)
	if err != nil {
		tb.Fatalf("NewWithPins() = %v", err)
	}
	tb.Cleanup(func() { d.Close() })
	tr.reset()
	return d, tr
}
