package offline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/cwbudde/algo-render/dsp/core"
	"github.com/cwbudde/algo-render/dsp/kernel"
	"github.com/cwbudde/algo-render/dsp/render"
)

// ErrInvalidScript is returned for malformed event scripts.
var ErrInvalidScript = errors.New("offline: invalid script")

// Script is a JSON automation file:
//
//	{
//	  "effect": "chorus",
//	  "params": {"modDepth": 0.5},
//	  "events": [
//	    {"time": 0.5, "param": "dryWetMix", "value": 1, "ramp": 0.25},
//	    {"frame": 44100, "address": 0, "value": 3},
//	    {"time": 1.0, "midi": [176, 1, 64]}
//	  ]
//	}
//
// Event times are seconds unless frame is given. Ramps are seconds.
type Script struct {
	Effect string             `json:"effect,omitempty"`
	Params map[string]float64 `json:"params,omitempty"`
	Events []ScriptEvent      `json:"events"`
}

// ScriptEvent is one automation point.
type ScriptEvent struct {
	Time    float64 `json:"time,omitempty"`
	Frame   *int64  `json:"frame,omitempty"`
	Param   string  `json:"param,omitempty"`
	Address *uint32 `json:"address,omitempty"`
	Value   float64 `json:"value"`
	Ramp    float64 `json:"ramp,omitempty"`
	MIDI    []uint8 `json:"midi,omitempty"`
}

// ParamResolver maps parameter names to addresses.
type ParamResolver interface {
	Lookup(name string) (kernel.Address, bool)
}

// ParseScript decodes a script and rejects unknown fields.
func ParseScript(r io.Reader) (*Script, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	return &s, nil
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	return ParseScript(f)
}

// Apply sets the script's initial parameters on k.
func (s *Script) Apply(k kernel.Kernel, params ParamResolver) error {
	for name, value := range s.Params {
		addr, ok := params.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: unknown parameter %q", ErrInvalidScript, name)
		}
		k.SetParameter(addr, value)
	}
	return nil
}

// RenderEvents converts the script to render events at sampleRate,
// sorted by time with file order kept for equal times.
func (s *Script) RenderEvents(sampleRate float64, params ParamResolver) ([]render.Event, error) {
	events := make([]render.Event, 0, len(s.Events))
	for i, se := range s.Events {
		e, err := se.toEvent(sampleRate, params)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, e)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
	return events, nil
}

func (se ScriptEvent) toEvent(sampleRate float64, params ParamResolver) (render.Event, error) {
	at := core.SecondsToFrames(se.Time, sampleRate)
	if se.Frame != nil {
		at = *se.Frame
	}
	if at < 0 {
		return render.Event{}, fmt.Errorf("%w: time %f frame %d", ErrInvalidScript, se.Time, at)
	}

	if len(se.MIDI) > 0 {
		if len(se.MIDI) > 3 {
			return render.Event{}, fmt.Errorf("%w: midi message of %d bytes", ErrInvalidScript, len(se.MIDI))
		}
		var msg kernel.MIDIMessage
		msg.Status = se.MIDI[0]
		if len(se.MIDI) > 1 {
			msg.Data1 = se.MIDI[1]
		}
		if len(se.MIDI) > 2 {
			msg.Data2 = se.MIDI[2]
		}
		return render.MIDIEvent(at, msg), nil
	}

	var addr kernel.Address
	switch {
	case se.Address != nil:
		addr = kernel.Address(*se.Address)
	case se.Param != "":
		a, ok := params.Lookup(se.Param)
		if !ok {
			return render.Event{}, fmt.Errorf("%w: unknown parameter %q", ErrInvalidScript, se.Param)
		}
		addr = a
	default:
		return render.Event{}, fmt.Errorf("%w: event needs param, address or midi", ErrInvalidScript)
	}

	if ramp := core.SecondsToFrames(se.Ramp, sampleRate); ramp > 0 {
		return render.RampEvent(at, addr, se.Value, int(ramp)), nil
	}
	return render.ParameterEvent(at, addr, se.Value), nil
}
