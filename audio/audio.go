// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// Format describes the decoded PCM produced by a Stream.
type Format struct {
	// SampleRate of the PCM stream in Hz.
	SampleRate int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels int
	// BitDepth of every interleaved sample (16, 24 or 32).
	BitDepth int
	// Duration of the track, zero when the container does not tell.
	Duration time.Duration
}

// FrameSize is the number of bytes a single interleaved frame takes.
func (f Format) FrameSize() int {
	return f.Channels * (f.BitDepth / 8)
}

// FramesDuration converts a frame count at sampleRate into a duration.
func FramesDuration(frames int64, sampleRate int) time.Duration {
	if frames <= 0 || sampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))
}

// Validate reports whether the format can be reduced.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrSource, f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("%w: no audio channels", ErrSource)
	}
	switch f.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d-bit PCM", ErrFormat, f.BitDepth)
	}
	if f.Duration < 0 {
		return fmt.Errorf("%w: negative duration", ErrSource)
	}

	return nil
}

type Stream interface {
	// Format of the decoded PCM. Authoritative once the stream exists.
	Format() Format
	// ReadPCM fills dst with interleaved little-endian signed PCM at
	// Format().BitDepth. Returns the number of bytes written, always a whole
	// number of frames. When n == 0 with err == io.EOF, the stream is finished.
	ReadPCM(dst []byte) (n int, err error)

	// Close releases any resources.
	Close() error
}

// Decoder probes a container and constructs a Stream for its first audio track.
type Decoder interface {
	Decode(r io.Reader) (Stream, error)
}

// Registry for decoders by file extension (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.RWMutex{},
	}
}

// Register binds d to every given extension. Extensions are case
// insensitive and may carry a leading dot.
func (r *Registry) Register(d Decoder, extensions ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, ext := range extensions {
		r.codecs[normalizeExt(ext)] = d
	}
}

func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[normalizeExt(ext)]
	return d, ok
}

// Lookup resolves the decoder for path by its extension.
func (r *Registry) Lookup(path string) (Decoder, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no extension", ErrFormat, path)
	}

	d, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for %q", ErrFormat, ext)
	}

	return d, nil
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	exts := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		exts = append(exts, ext)
	}
	slices.Sort(exts)

	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
