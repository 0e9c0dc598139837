package offline

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

var (
	// ErrUnknownFormat is returned for file extensions without a decoder.
	ErrUnknownFormat = errors.New("offline: unknown audio format")
	// ErrNotWav is returned when the WAV header is missing or corrupt.
	ErrNotWav = errors.New("offline: not a valid wav file")
)

// Decoder turns an encoded stream into Audio.
type Decoder interface {
	Decode(r io.Reader) (*Audio, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(r io.Reader) (*Audio, error)

// Decode calls f(r).
func (f DecoderFunc) Decode(r io.Reader) (*Audio, error) { return f(r) }

// Registry maps format keys ("wav", "mp3", "ogg") to decoders.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Decoder
}

// NewRegistry returns a registry with the WAV, MP3 and Ogg Vorbis decoders.
func NewRegistry() *Registry {
	r := &Registry{formats: make(map[string]Decoder)}
	r.Register("wav", DecoderFunc(DecodeWAV))
	r.Register("mp3", DecoderFunc(DecodeMP3))
	r.Register("ogg", DecoderFunc(DecodeOgg))
	return r
}

// Register adds or replaces the decoder for format.
func (r *Registry) Register(format string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.formats[strings.ToLower(format)] = d
}

// Get returns the decoder for format.
func (r *Registry) Get(format string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.formats[strings.ToLower(format)]
	return d, ok
}

// Formats returns the registered format keys, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.formats))
	for f := range r.formats {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// FormatFromPath returns the format key for a file name by extension.
func FormatFromPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "wave":
		return "wav"
	case "oga":
		return "ogg"
	default:
		return ext
	}
}

// Decode decodes r with the decoder registered for format.
func (r *Registry) Decode(format string, rd io.Reader) (*Audio, error) {
	d, ok := r.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	a, err := d.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return a, nil
}

// DecodeFile opens path and decodes it by extension.
func (r *Registry) DecodeFile(path string) (*Audio, error) {
	format := FormatFromPath(path)
	if _, ok := r.Get(format); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return r.Decode(format, f)
}

// DecodeWAV decodes integer PCM WAV of any bit depth go-audio supports.
func DecodeWAV(r io.Reader) (*Audio, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWav
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading pcm: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, ErrNotWav
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	return fromInterleaved(buf.Format.SampleRate, buf.Format.NumChannels, buf.Data, scale), nil
}

// DecodeMP3 decodes MPEG-1/2 layer III. go-mp3 always yields 16-bit stereo.
func DecodeMP3(r io.Reader) (*Audio, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3 decoder: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading mp3 frames: %w", err)
	}

	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}

	return fromInterleaved(dec.SampleRate(), 2, samples, 32768), nil
}

// DecodeOgg decodes Ogg Vorbis.
func DecodeOgg(r io.Reader) (*Audio, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ogg vorbis: %w", err)
	}
	if format == nil || format.Channels <= 0 {
		return nil, fmt.Errorf("ogg vorbis: %w", ErrInvalidAudio)
	}

	return fromInterleaved(format.SampleRate, format.Channels, data, 1), nil
}
