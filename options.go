// SPDX-License-Identifier: EPL-2.0

package audwave

import (
	"log/slog"
	"time"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/extraction"
	"github.com/ik5/audwave/metrics"
	"github.com/ik5/audwave/waveform"
)

// Listener receives progress and results of every extraction, one at a
// time, from a single goroutine.
type Listener func(extraction.Update)

const defaultUpdateBuffer = 256

type options struct {
	logger        *slog.Logger
	registry      *audio.Registry
	listener      Listener
	metrics       *metrics.ExtractionMetrics
	cacheTTL      time.Duration
	normalize     bool
	scale         float64
	threshold     float64
	chunkSize     int
	pcmBufferSize int
	updateBuffer  int
}

func defaultOptions() options {
	return options{
		logger:       slog.Default(),
		normalize:    true,
		scale:        waveform.DefaultScale,
		threshold:    waveform.DefaultSilenceThreshold,
		updateBuffer: defaultUpdateBuffer,
	}
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegistry replaces the bundled codecs.
func WithRegistry(r *audio.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

func WithListener(l Listener) Option {
	return func(o *options) {
		o.listener = l
	}
}

func WithMetrics(m *metrics.ExtractionMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithCacheTTL keeps completed results for ttl. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = ttl
	}
}

// WithNormalization sets the scale and silence threshold applied to final
// points.
func WithNormalization(scale, silenceThreshold float64) Option {
	return func(o *options) {
		o.normalize = true
		o.scale = scale
		o.threshold = silenceThreshold
	}
}

// WithoutNormalization returns the raw RMS points.
func WithoutNormalization() Option {
	return func(o *options) {
		o.normalize = false
	}
}

// WithChunkSize caps the compressed reads handed to codecs.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

func WithPCMBufferSize(n int) Option {
	return func(o *options) {
		o.pcmBufferSize = n
	}
}

// WithUpdateBuffer sets how many updates may wait for the listener before
// new ones are dropped.
func WithUpdateBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.updateBuffer = n
		}
	}
}
