package control

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-render/dsp/core"
	"github.com/cwbudde/algo-render/dsp/kernel"
	"github.com/cwbudde/algo-render/dsp/render"
)

// ErrInvalidMessage is returned for messages that cannot become events.
var ErrInvalidMessage = errors.New("control: invalid message")

// Message is the JSON payload on every control subject.
type Message struct {
	Param   string  `json:"param,omitempty"`
	Address *uint32 `json:"address,omitempty"`
	Value   float64 `json:"value"`
	RampMs  float64 `json:"ramp_ms,omitempty"`
	DelayMs float64 `json:"delay_ms,omitempty"`
	MIDI    []uint8 `json:"midi,omitempty"`
	Command string  `json:"command,omitempty"`
}

// Resolver maps parameter names to addresses. *kernel.ParamTable
// satisfies it.
type Resolver interface {
	Lookup(name string) (kernel.Address, bool)
}

func msToFrames(ms, sampleRate float64) (int64, error) {
	frames := core.SecondsToFrames(ms/1000, sampleRate)
	if frames < 0 {
		return 0, fmt.Errorf("%w: duration %f ms", ErrInvalidMessage, ms)
	}
	return frames, nil
}

// paramEvent builds a parameter or ramp event at now plus the message delay.
func (m Message) paramEvent(now int64, sampleRate float64, params Resolver) (render.Event, error) {
	var addr kernel.Address
	switch {
	case m.Address != nil:
		addr = kernel.Address(*m.Address)
	case m.Param != "" && params != nil:
		a, ok := params.Lookup(m.Param)
		if !ok {
			return render.Event{}, fmt.Errorf("%w: unknown parameter %q", ErrInvalidMessage, m.Param)
		}
		addr = a
	default:
		return render.Event{}, fmt.Errorf("%w: no parameter", ErrInvalidMessage)
	}

	if !core.IsFinite(m.Value) {
		return render.Event{}, fmt.Errorf("%w: value %f", ErrInvalidMessage, m.Value)
	}

	delay, err := msToFrames(m.DelayMs, sampleRate)
	if err != nil {
		return render.Event{}, err
	}
	ramp, err := msToFrames(m.RampMs, sampleRate)
	if err != nil {
		return render.Event{}, err
	}

	if ramp > 0 {
		return render.RampEvent(now+delay, addr, m.Value, int(ramp)), nil
	}
	return render.ParameterEvent(now+delay, addr, m.Value), nil
}

// midiEvent builds a MIDI event at now plus the message delay.
func (m Message) midiEvent(now int64, sampleRate float64) (render.Event, error) {
	if len(m.MIDI) == 0 || len(m.MIDI) > 3 {
		return render.Event{}, fmt.Errorf("%w: midi message of %d bytes", ErrInvalidMessage, len(m.MIDI))
	}
	if m.MIDI[0] < 0x80 {
		return render.Event{}, fmt.Errorf("%w: status byte 0x%02x", ErrInvalidMessage, m.MIDI[0])
	}

	delay, err := msToFrames(m.DelayMs, sampleRate)
	if err != nil {
		return render.Event{}, err
	}

	msg := kernel.MIDIMessage{Status: m.MIDI[0]}
	if len(m.MIDI) > 1 {
		msg.Data1 = m.MIDI[1] & 0x7f
	}
	if len(m.MIDI) > 2 {
		msg.Data2 = m.MIDI[2] & 0x7f
	}
	return render.MIDIEvent(now+delay, msg), nil
}
