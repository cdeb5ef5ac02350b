// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"encoding/binary"
	"fmt"
)

// FullScale returns the full-scale magnitude of a signed integer sample of
// bitDepth bits, e.g. 32768 for 16-bit PCM.
func FullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}

// SampleAt decodes the little-endian signed sample at the start of b.
// b must hold at least bitDepth/8 bytes.
func SampleAt(b []byte, bitDepth int) int32 {
	switch bitDepth {
	case 16:
		return int32(int16(binary.LittleEndian.Uint16(b)))
	case 24:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		// sign extend
		return (v << 8) >> 8
	case 32:
		return int32(binary.LittleEndian.Uint32(b))
	default:
		return 0
	}
}

// PutSample encodes v as a little-endian signed sample of bitDepth bits.
// Values out of range for bitDepth are truncated to its low bits.
func PutSample(b []byte, v int, bitDepth int) {
	switch bitDepth {
	case 16:
		binary.LittleEndian.PutUint16(b, uint16(int16(v)))
	case 24:
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
	case 32:
		binary.LittleEndian.PutUint32(b, uint32(int32(v)))
	}
}
