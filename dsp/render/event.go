package render

import (
	"fmt"

	"github.com/cwbudde/algo-render/dsp/kernel"
)

// EventKind tags the payload of an Event.
type EventKind uint8

const (
	// EventParameter sets a parameter at Time.
	EventParameter EventKind = iota
	// EventParameterRamp glides a parameter to Value over RampFrames starting at Time.
	EventParameterRamp
	// EventMIDI delivers a MIDI message at Time.
	EventMIDI
)

// String returns the kind name.
func (k EventKind) String() string {
	switch k {
	case EventParameter:
		return "parameter"
	case EventParameterRamp:
		return "ramp"
	case EventMIDI:
		return "midi"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is one timestamped control event. Time is an absolute sample
// count on the renderer's timeline.
type Event struct {
	Time       int64
	Kind       EventKind
	Address    kernel.Address
	Value      float64
	RampFrames int
	MIDI       kernel.MIDIMessage
}

// ParameterEvent returns an immediate parameter change at time.
func ParameterEvent(time int64, addr kernel.Address, value float64) Event {
	return Event{Time: time, Kind: EventParameter, Address: addr, Value: value}
}

// RampEvent returns a parameter ramp starting at time.
func RampEvent(time int64, addr kernel.Address, target float64, frames int) Event {
	return Event{Time: time, Kind: EventParameterRamp, Address: addr, Value: target, RampFrames: frames}
}

// MIDIEvent returns a MIDI event at time.
func MIDIEvent(time int64, msg kernel.MIDIMessage) Event {
	return Event{Time: time, Kind: EventMIDI, MIDI: msg}
}
