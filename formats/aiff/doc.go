// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files.
// AIFF is Apple's standard audio file format, commonly used on macOS.
//
// # Supported Formats
//
//   - PCM 16, 24 and 32-bit
//   - Mono and multi-channel
//   - Any sample rate
//
// AIFF stores big-endian samples; the stream re-encodes them as
// little-endian PCM like every other decoder in this module.
//
// go-audio requires an io.ReadSeeker. Plain readers are buffered into
// memory first.
package aiff
