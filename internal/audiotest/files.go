// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds PCM and WAV fixture generators shared by tests.
package audiotest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/formats/wav"
)

// WriteWAV renders frames of w into a PCM WAV file under t.TempDir and
// returns its path.
func WriteWAV(t testing.TB, name string, f audio.Format, frames int, w Waveform) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer out.Close()

	if err := wav.WritePCM(out, f, Samples(f.Channels, f.BitDepth, frames, w)); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

// WriteFile writes raw bytes under t.TempDir and returns the path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}
