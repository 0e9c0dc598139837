package render

import "github.com/cwbudde/algo-render/dsp/kernel"

// Scheduler splits a render quantum at event boundaries so every event
// takes effect on the exact sample it is stamped with.
//
// A Scheduler holds no per-call state and never allocates; one value can
// be reused for every quantum.
type Scheduler struct {
	// MIDI receives MIDI events when the kernel does not implement
	// kernel.MIDIHandler. Nil drops them.
	MIDI kernel.MIDIHandler

	// OnSegment, when set, is called after each rendered segment with
	// its length and buffer offset.
	OnSegment func(frames, offset int)
}

// Process renders frames frames starting at sample time start, applying
// events in order. Events stamped before start, or before the end of the
// previous segment, apply immediately. Events stamped at or after the
// quantum end are applied after the last segment, so none is dropped.
func (s *Scheduler) Process(start int64, frames int, events []Event, k kernel.Kernel) {
	if k == nil {
		return
	}

	ramper, _ := k.(kernel.Ramper)
	midi, ok := k.(kernel.MIDIHandler)
	if !ok {
		midi = s.MIDI
	}

	now := start
	remaining := frames
	next := 0

	for remaining > 0 {
		if next >= len(events) {
			s.render(k, remaining, frames-remaining)
			return
		}

		segment := events[next].Time - now
		if segment < 0 {
			segment = 0
		}
		if segment > int64(remaining) {
			segment = int64(remaining)
		}

		if segment > 0 {
			s.render(k, int(segment), frames-remaining)
			remaining -= int(segment)
			now += segment
		}

		// The head event is always applied: if it lies beyond the
		// quantum, remaining is now zero and this is the quantum end.
		for {
			apply(&events[next], k, ramper, midi)
			next++
			if next >= len(events) || events[next].Time > now {
				break
			}
		}
	}

	for ; next < len(events); next++ {
		apply(&events[next], k, ramper, midi)
	}
}

func (s *Scheduler) render(k kernel.Kernel, frames, offset int) {
	k.Process(frames, offset)
	if s.OnSegment != nil {
		s.OnSegment(frames, offset)
	}
}

func apply(e *Event, k kernel.Kernel, ramper kernel.Ramper, midi kernel.MIDIHandler) {
	switch e.Kind {
	case EventParameter:
		if ramper != nil {
			ramper.StartRamp(e.Address, e.Value, 0)
			return
		}
		k.SetParameter(e.Address, e.Value)
	case EventParameterRamp:
		if ramper != nil {
			ramper.StartRamp(e.Address, e.Value, e.RampFrames)
			return
		}
		k.SetParameter(e.Address, e.Value)
	case EventMIDI:
		if midi != nil {
			midi.HandleMIDI(e.MIDI)
		}
	}
}
