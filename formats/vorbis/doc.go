// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis. The decoder produces
// float samples which are converted to 16-bit little-endian PCM, so every
// vorbis stream reports a bit depth of 16.
//
// The track length is known when the input implements io.Seeker, otherwise
// Format().Duration is zero.
//
//	file, _ := os.Open("audio.ogg")
//	stream, err := vorbis.Decoder{}.Decode(file)
package vorbis
