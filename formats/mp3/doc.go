// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files.
//
// # Output Format
//
// MP3 decoder output:
//   - Sample format: 16-bit little-endian signed PCM
//   - Channels: 2 (go-mp3 duplicates mono tracks)
//   - Sample rate: depends on the file (typically 44.1kHz or 48kHz)
//
// # Duration
//
// go-mp3 can only measure the track when the input implements io.Seeker; it
// scans every frame once while probing. For plain readers Format().Duration
// is zero.
//
// # Decoding MP3 Files
//
//	file, _ := os.Open("audio.mp3")
//	stream, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]byte, 16384)
//	n, err := stream.ReadPCM(buf)
package mp3
