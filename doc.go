// SPDX-License-Identifier: EPL-2.0

// Package audwave extracts downsampled RMS amplitude waveforms from audio
// files.
//
// A file is decoded as a stream, its first channel is folded into a fixed
// number of RMS windows whatever its length, and the points are rescaled so
// the loudest one reaches a target amplitude. Progress is reported after
// every window.
//
// # Supported Formats
//
// The default registry decodes:
//   - WAV (PCM 16/24/32-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (PCM 16/24/32-bit) via formats/aiff
//   - FLAC via formats/flac
//
// # Quick Start
//
// The simplest way to get a waveform is ExtractFile:
//
//	points, err := audwave.ExtractFile(ctx, "audio.wav", 100)
//
// # Many Extractions
//
// An Extractor runs many extractions, one per key, with a bound on how many
// decode at the same time. A new request for a key supersedes the previous
// one:
//
//	e := audwave.New(audwave.WithListener(func(u extraction.Update) {
//		if u.Kind == extraction.UpdateProgress {
//			fmt.Printf("%s: %.0f%%\n", u.Key, u.Progress*100)
//		}
//	}))
//	defer e.Close()
//
//	e.ConfigureConcurrency(2)
//
//	future, err := e.Extract("audio.wav", "player-1", 100)
//	if err != nil {
//		return err
//	}
//	points, err := future.Wait(ctx)
//
// Cancel stops one key, CancelAll stops everything and restores every
// decode permit.
//
// # Errors
//
// A failed extraction resolves with an error matching one of ErrSource,
// ErrFormat, ErrDecode, ErrReduction or ErrCancelled.
package audwave
