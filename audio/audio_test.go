// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDecoder is a test decoder implementation
type mockDecoder struct {
	name string
}

func (d *mockDecoder) Decode(r io.Reader) (Stream, error) {
	return nil, errors.New("not implemented")
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}

	registry.Register(decoder, "wav")

	got, ok := registry.Get("wav")
	require.True(t, ok)
	assert.Same(t, decoder, got)
}

func TestRegistry_ExtensionsAreNormalized(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "ogg"}
	registry.Register(decoder, ".OGG", "oga")

	tests := []struct {
		ext    string
		wantOK bool
	}{
		{"ogg", true},
		{".ogg", true},
		{"Ogg", true},
		{"OGA", true},
		{"mp3", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()

			_, ok := registry.Get(tt.ext)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	wavDecoder := &mockDecoder{name: "wav"}
	mp3Decoder := &mockDecoder{name: "mp3"}
	registry.Register(wavDecoder, "wav")
	registry.Register(mp3Decoder, "mp3")

	got, err := registry.Lookup("/data/recordings/Take 1.WAV")
	require.NoError(t, err)
	assert.Same(t, wavDecoder, got)

	got, err = registry.Lookup("voice.mp3")
	require.NoError(t, err)
	assert.Same(t, mp3Decoder, got)

	_, err = registry.Lookup("voice.m4a")
	require.ErrorIs(t, err, ErrFormat)

	_, err = registry.Lookup("voice")
	require.ErrorIs(t, err, ErrFormat)
}

func TestRegistry_Overwrite(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder1 := &mockDecoder{name: "first"}
	decoder2 := &mockDecoder{name: "second"}

	registry.Register(decoder1, "wav")
	registry.Register(decoder2, "wav")

	got, ok := registry.Get("wav")
	require.True(t, ok)
	assert.Same(t, decoder2, got)
	assert.Len(t, registry.Extensions(), 1)
}

func TestRegistry_ExtensionsSorted(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&mockDecoder{name: "a"}, "wav", "FLAC", ".mp3")

	assert.Equal(t, []string{"flac", "mp3", "wav"}, registry.Extensions())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "test"}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.Register(decoder, "format")
		}()
		go func() {
			defer wg.Done()
			_, _ = registry.Get("format")
		}()
	}
	wg.Wait()

	got, ok := registry.Get("format")
	require.True(t, ok)
	assert.Same(t, decoder, got)
}

func TestFormat_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  Format
		wantErr error
	}{
		{"mono 16-bit", Format{SampleRate: 44100, Channels: 1, BitDepth: 16, Duration: time.Second}, nil},
		{"stereo 24-bit", Format{SampleRate: 48000, Channels: 2, BitDepth: 24}, nil},
		{"32-bit", Format{SampleRate: 8000, Channels: 1, BitDepth: 32}, nil},
		{"no sample rate", Format{Channels: 1, BitDepth: 16}, ErrSource},
		{"no channels", Format{SampleRate: 8000, BitDepth: 16}, ErrSource},
		{"8-bit", Format{SampleRate: 8000, Channels: 1, BitDepth: 8}, ErrFormat},
		{"negative duration", Format{SampleRate: 8000, Channels: 1, BitDepth: 16, Duration: -time.Second}, ErrSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.format.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFormat_FrameSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, Format{Channels: 1, BitDepth: 16}.FrameSize())
	assert.Equal(t, 4, Format{Channels: 2, BitDepth: 16}.FrameSize())
	assert.Equal(t, 6, Format{Channels: 2, BitDepth: 24}.FrameSize())
}
