package kernel

// Address identifies a parameter. Addresses are small, stable integers
// chosen by each effect.
type Address uint32

// Kernel is the contract every render-core effect implements.
//
// Init, Deinit and SetBuffers are called by the host outside the render
// callback or at its start. Process, SetParameter and Parameter must be
// real-time safe once Init has returned: bounded time, no allocation, no
// blocking. SetParameter and Parameter may be called concurrently with
// Process.
type Kernel interface {
	// Init sizes internal state for channels and sampleRate. Calling it
	// again fully resets the kernel.
	Init(channels int, sampleRate float64) error
	// Deinit releases internal storage and clears the set-up flag.
	Deinit()
	// Reset clears history without releasing storage.
	Reset()
	// SetBuffers binds planar input and output buffers for subsequent
	// Process calls. The slices are borrowed until the next call.
	SetBuffers(in, out [][]float64)
	// Process renders frames frames starting at offset within the bound
	// buffers.
	Process(frames, offset int)
	// SetParameter stores value for addr. Unknown addresses are ignored
	// and out-of-range values are clamped.
	SetParameter(addr Address, value float64)
	// Parameter returns the value for addr, or 0 for unknown addresses.
	Parameter(addr Address) float64

	Start()
	Stop()
	IsPlaying() bool
	IsSetUp() bool
}

// Ramper is implemented by kernels that can glide a parameter to a
// target over a number of frames. It is only called on the render
// goroutine; frames <= 0 sets the value immediately.
type Ramper interface {
	StartRamp(addr Address, target float64, frames int)
}

// MIDIMessage is a short (up to three byte) MIDI channel message.
type MIDIMessage struct {
	Status byte
	Data1  byte
	Data2  byte
}

// Channel returns the zero-based MIDI channel.
func (m MIDIMessage) Channel() int { return int(m.Status & 0x0f) }

// Command returns the status nibble (0x80 note off, 0x90 note on, 0xb0 CC, ...).
func (m MIDIMessage) Command() byte { return m.Status & 0xf0 }

// IsNoteOn reports a note-on with non-zero velocity.
func (m MIDIMessage) IsNoteOn() bool { return m.Command() == 0x90 && m.Data2 > 0 }

// IsNoteOff reports a note-off, including note-on with zero velocity.
func (m MIDIMessage) IsNoteOff() bool {
	return m.Command() == 0x80 || (m.Command() == 0x90 && m.Data2 == 0)
}

// IsControlChange reports a control change message.
func (m MIDIMessage) IsControlChange() bool { return m.Command() == 0xb0 }

// MIDIHandler receives MIDI events on the render goroutine.
type MIDIHandler interface {
	HandleMIDI(msg MIDIMessage)
}
