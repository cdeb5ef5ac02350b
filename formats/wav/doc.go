// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Decoding uses github.com/go-audio/wav for chunk parsing, so files with
// extra chunks (LIST, INFO, fact, ...) before the data chunk are handled.
//
// # Supported Formats
//
//   - Integer PCM at 16, 24 and 32 bits
//   - Any channel count
//   - Any sample rate
//
// # Decoding WAV Files
//
//	decoder := wav.Decoder{}
//	file, _ := os.Open("audio.wav")
//	stream, err := decoder.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]byte, 16384)
//	n, err := stream.ReadPCM(buf)
//
// The stream yields interleaved little-endian PCM at the file's bit depth.
// Its Format carries the track duration derived from the data chunk size.
//
// # Writing WAV Files
//
// WritePCM writes a canonical header followed by the samples. WriteWAV16 is
// a shortcut for mono 16-bit:
//
//	samples := []int16{100, -100, 200, -200}
//	file, _ := os.Create("output.wav")
//	err := wav.WriteWAV16(file, 8000, samples)
//
// # Error Handling
//
//   - ErrNotWavFile: the input is not a RIFF/WAVE file (audio.ErrSource)
//   - ErrNoPCMData: no data chunk was found (audio.ErrSource)
//   - ErrOnlyPCMSupported: float or compressed WAV (audio.ErrFormat)
//   - ErrUnsupportedBitDepth: 8-bit or exotic depths (audio.ErrFormat)
package wav
