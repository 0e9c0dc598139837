package control

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-render/dsp/effects/modulation"
	"github.com/cwbudde/algo-render/dsp/kernel"
)

// ErrInvalidMapping is returned for out-of-range controller numbers.
var ErrInvalidMapping = errors.New("control: invalid cc mapping")

// ParamSetter is the kernel side of a CC mapping.
type ParamSetter interface {
	SetParameter(addr kernel.Address, value float64)
}

// CCMapping scales controller values 0..127 onto [Min, Max] of one
// parameter.
type CCMapping struct {
	Controller uint8
	Address    kernel.Address
	Min        float64
	Max        float64
}

// DefaultCCMappings binds the modulation wheel to depth, CC 76 (vibrato
// rate) to LFO frequency and CC 91 (effects depth) to the mix.
func DefaultCCMappings() []CCMapping {
	return []CCMapping{
		{Controller: 1, Address: modulation.ParamModDepth, Min: 0, Max: 1},
		{Controller: 76, Address: modulation.ParamModFrequency, Min: 0.1, Max: 10},
		{Controller: 91, Address: modulation.ParamDryWetMix, Min: 0, Max: 1},
	}
}

type ccSlot struct {
	mapping CCMapping
	ok      bool
}

// CCMapper is a kernel.MIDIHandler that writes control changes to
// parameters. Other messages are ignored. It runs on the render
// goroutine and does not allocate.
type CCMapper struct {
	target  ParamSetter
	channel int
	slots   [128]ccSlot
}

// NewCCMapper maps controllers on any MIDI channel to target.
func NewCCMapper(target ParamSetter, mappings ...CCMapping) (*CCMapper, error) {
	m := &CCMapper{target: target, channel: -1}
	for _, mp := range mappings {
		if mp.Controller > 127 {
			return nil, fmt.Errorf("%w: controller %d", ErrInvalidMapping, mp.Controller)
		}
		m.slots[mp.Controller] = ccSlot{mapping: mp, ok: true}
	}
	return m, nil
}

// ListenOn restricts the mapper to one zero-based MIDI channel; a
// negative channel listens on all.
func (m *CCMapper) ListenOn(channel int) {
	m.channel = channel
}

// HandleMIDI applies mapped control changes.
func (m *CCMapper) HandleMIDI(msg kernel.MIDIMessage) {
	if !msg.IsControlChange() || m.target == nil {
		return
	}
	if m.channel >= 0 && msg.Channel() != m.channel {
		return
	}

	slot := m.slots[msg.Data1&0x7f]
	if !slot.ok {
		return
	}
	mp := slot.mapping
	m.target.SetParameter(mp.Address, mp.Min+(mp.Max-mp.Min)*float64(msg.Data2&0x7f)/127)
}

var _ kernel.MIDIHandler = (*CCMapper)(nil)
