/*
Copyright 2024 Tim St. Pierre
Lifecycle events
*/
package hd44780

// EventKind tells which moment an Event reports.
type EventKind int

const (
	EventReady EventKind = iota
	EventPrinted
	EventClear
	EventHome
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventPrinted:
		return "printed"
	case EventClear:
		return "clear"
	case EventHome:
		return "home"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event reports an observable moment. Text is set for EventPrinted, Op and Err
// for EventError.
type Event struct {
	Kind EventKind
	Text string
	Op   string
	Err  error
}
