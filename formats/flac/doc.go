// SPDX-License-Identifier: EPL-2.0

// Package flac provides FLAC audio file decoding.
//
// This package uses github.com/tphakala/flac. FLAC frames vary in size, so
// the stream keeps the remainder of a decoded frame between ReadPCM calls
// and always hands out whole PCM frames. The track duration comes from the
// STREAMINFO block.
//
//	file, _ := os.Open("audio.flac")
//	stream, err := flac.Decoder{}.Decode(file)
package flac
