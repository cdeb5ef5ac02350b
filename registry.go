// SPDX-License-Identifier: EPL-2.0

package audwave

import (
	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/formats/aiff"
	"github.com/ik5/audwave/formats/flac"
	"github.com/ik5/audwave/formats/mp3"
	"github.com/ik5/audwave/formats/vorbis"
	"github.com/ik5/audwave/formats/wav"
)

// DefaultRegistry returns a registry with every bundled codec.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(wav.Decoder{}, "wav", "wave")
	r.Register(mp3.Decoder{}, "mp3")
	r.Register(vorbis.Decoder{}, "ogg", "oga")
	r.Register(aiff.Decoder{}, "aiff", "aif")
	r.Register(flac.Decoder{}, "flac")

	return r
}
