// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"io"
	"sync/atomic"
)

// chunkReader hands compressed input to a codec in bounded chunks. No single
// Read returns more than limit bytes, whatever the codec asks for.
type chunkReader struct {
	r     io.ReadSeeker
	limit int

	fed    atomic.Int64
	chunks atomic.Int64
}

func newChunkReader(r io.ReadSeeker, limit int) *chunkReader {
	return &chunkReader{r: r, limit: limit}
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(p) > c.limit {
		p = p[:c.limit]
	}

	n, err := c.r.Read(p)
	if n > 0 {
		c.fed.Add(int64(n))
		c.chunks.Add(1)
	}

	return n, err
}

// Seek is forwarded so container parsers that measure the track keep working.
func (c *chunkReader) Seek(offset int64, whence int) (int64, error) {
	return c.r.Seek(offset, whence)
}
