package offline

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-render/internal/testutil"
)

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]string{
		"a.wav":        "wav",
		"dir/B.WAV":    "wav",
		"x.wave":       "wav",
		"song.mp3":     "mp3",
		"clip.ogg":     "ogg",
		"clip.oga":     "ogg",
		"noext":        "",
		"archive.flac": "flac",
	} {
		assert.Equal(t, want, FormatFromPath(path), path)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.Equal(t, []string{"mp3", "ogg", "wav"}, r.Formats())

	_, err := r.Decode("flac", bytes.NewReader(nil))
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = r.DecodeFile("missing.flac")
	require.ErrorIs(t, err, ErrUnknownFormat)

	r.Register("RAW", DecoderFunc(func(io.Reader) (*Audio, error) {
		return NewAudio(100, 1, 3), nil
	}))
	a, err := r.Decode("raw", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, 3, a.Frames())

	r.Register("bad", DecoderFunc(func(io.Reader) (*Audio, error) {
		return &Audio{}, nil
	}))
	_, err = r.Decode("bad", bytes.NewReader(nil))
	require.ErrorIs(t, err, ErrEmptyAudio)
}

func TestWAVRoundTrip(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{16, 24, 32} {
		in := &Audio{
			SampleRate: 44100,
			Channels: [][]float64{
				testutil.Sine(440, 44100, 0.8, 1000),
				testutil.Noise(3, 0.5, 1000),
			},
		}

		path := filepath.Join(t.TempDir(), "out.wav")
		require.NoError(t, WriteWAVFile(path, in, bits))

		got, err := NewRegistry().DecodeFile(path)
		require.NoError(t, err, "bits=%d", bits)
		require.Equal(t, 44100, got.SampleRate)
		require.Equal(t, 2, got.NumChannels())
		require.Equal(t, 1000, got.Frames())

		tol := 2.0 / float64(int64(1)<<(bits-1))
		for ch := range in.Channels {
			for i := range in.Channels[ch] {
				require.InDelta(t, in.Channels[ch][i], got.Channels[ch][i], tol, "bits=%d ch=%d i=%d", bits, ch, i)
			}
		}
	}
}

func TestWriteWAVClipsAndValidates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	err := WriteWAVFile(filepath.Join(dir, "bad.wav"), NewAudio(48000, 1, 4), 12)
	require.ErrorIs(t, err, ErrInvalidBitDepth)

	err = WriteWAVFile(filepath.Join(dir, "empty.wav"), &Audio{SampleRate: 48000}, 16)
	require.ErrorIs(t, err, ErrEmptyAudio)

	loud := &Audio{SampleRate: 8000, Channels: [][]float64{{2, -3, 0.5}}}
	path := filepath.Join(dir, "loud.wav")
	require.NoError(t, WriteWAVFile(path, loud, 16))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := DecodeWAV(f)
	require.NoError(t, err)
	assert.InDelta(t, 1, got.Channels[0][0], 1e-4)
	assert.InDelta(t, -1, got.Channels[0][1], 1e-4)
	assert.InDelta(t, 0.5, got.Channels[0][2], 1e-4)
}

func TestDecodeWAVFromPlainReader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mono.wav")
	require.NoError(t, WriteWAVFile(path, &Audio{SampleRate: 22050, Channels: [][]float64{{0.25, -0.25}}}, 16))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// io.MultiReader hides Seek, forcing the buffered path.
	got, err := DecodeWAV(io.MultiReader(bytes.NewReader(data)))
	require.NoError(t, err)
	assert.Equal(t, 22050, got.SampleRate)
	assert.InDelta(t, 0.25, got.Channels[0][0], 1e-4)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	garbage := bytes.Repeat([]byte("not audio "), 64)

	_, err := DecodeWAV(bytes.NewReader(garbage))
	require.ErrorIs(t, err, ErrNotWav)

	_, err = DecodeOgg(bytes.NewReader(garbage))
	require.Error(t, err)

	_, err = DecodeMP3(bytes.NewReader(nil))
	require.Error(t, err)
}

func TestDecodeMP3(t *testing.T) {
	t.Parallel()

	// 40 frames of MPEG-2 layer III, mono, 22.05 kHz, 576 samples per frame.
	a, err := NewRegistry().DecodeFile(filepath.Join("testdata", "speech.mp3"))
	require.NoError(t, err)

	assert.Equal(t, 22050, a.SampleRate)
	require.Equal(t, 2, a.NumChannels(), "go-mp3 always decodes to stereo")
	assert.Equal(t, 40*576, a.Frames())

	// A mono stream is duplicated into both channels.
	assert.Equal(t, a.Channels[0], a.Channels[1])
	for _, v := range a.Channels[0] {
		require.LessOrEqual(t, math.Abs(v), 1.0)
	}

	_, err = DecodeMP3(bytes.NewReader([]byte("not an mp3 stream")))
	require.Error(t, err)
}

func TestDecodeOgg(t *testing.T) {
	t.Parallel()

	f, err := os.Open(filepath.Join("testdata", "vorbis.ogg"))
	require.NoError(t, err)
	defer f.Close()

	a, err := DecodeOgg(f)
	require.NoError(t, err)

	assert.Equal(t, 44100, a.SampleRate)
	require.Equal(t, 1, a.NumChannels())
	require.Equal(t, 44100, a.Frames())

	// vorbis.raw holds the first reference samples as little-endian float32.
	raw, err := os.ReadFile(filepath.Join("testdata", "vorbis.raw"))
	require.NoError(t, err)
	want := make([]float32, len(raw)/4)
	require.NoError(t, binary.Read(bytes.NewReader(raw), binary.LittleEndian, want))

	for i, w := range want {
		require.InDelta(t, float64(w), a.Channels[0][i], 2e-5, "sample %d", i)
	}

	_, err = DecodeOgg(bytes.NewReader([]byte("OggS but not really")))
	require.Error(t, err)
}
