// SPDX-License-Identifier: EPL-2.0

// Package audio defines the decode engine abstraction used by the waveform
// pipeline.
//
// This package contains the low-level building blocks shared by every codec:
//   - Format describing the decoded PCM
//   - Stream interface for pulling decoded PCM
//   - Decoder interface for probing a container
//   - Registry resolving decoders by file extension
//   - the error classes every pipeline stage reports with
//
// # Stream Interface
//
//	type Stream interface {
//	    Format() Format
//	    ReadPCM(dst []byte) (int, error)
//	    Close() error
//	}
//
// ReadPCM yields interleaved little-endian signed PCM at Format().BitDepth,
// always in whole frames. io.EOF marks the end of the track.
//
// # Format Registry
//
// The registry maps file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register(wav.Decoder{}, "wav", "wave")
//	decoder, err := registry.Lookup("/sdcard/voice/note.wav")
//
// # Error Handling
//
// Errors are classified with ErrSource, ErrFormat, ErrDecode, ErrReduction
// and ErrCancelled. Concrete errors wrap the class together with the cause:
//
//	if errors.Is(err, audio.ErrSource) {
//	    // missing or unreadable file
//	}
package audio
