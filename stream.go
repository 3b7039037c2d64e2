// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sizelimit

import (
	"io"
	"math"
)

// MaxChunkSize is the default ceiling for a single body chunk, independent
// of the configured body limit. It guards against one pathologically large
// chunk consuming excessive memory even under a generous body limit.
// 16 MiB is comfortably above common transport chunk sizes; tune it with
// WithMaxChunkSize.
const MaxChunkSize = 16 * MiB

// readChunkSize is the buffer size used when adapting an io.Reader into a
// chunk stream. Matches the io.Copy internal buffer size.
const readChunkSize = 32 * 1024

// ChunkStream is a pull-based stream of body chunks.
//
// Next returns the next chunk, io.EOF after the final chunk, or a transport
// error. The returned slice is only valid until the following Next call.
// Implementations must never return an empty chunk with a nil error.
type ChunkStream interface {
	Next() ([]byte, error)
}

// monitor enforces the body limit chunk by chunk while preserving the
// producer's pacing: it requests a chunk from the source only when the
// consumer asks for one, and never buffers ahead.
//
// The per-request state (read counter, violation latch) is exclusively
// owned by this value; it is not safe for concurrent use, matching the
// single-consumer contract of a request body.
type monitor struct {
	src      ChunkStream
	maxSize  int64
	maxChunk int64
	read     int64
	violated bool
}

func newMonitor(src ChunkStream, maxSize, maxChunk int64) *monitor {
	return &monitor{
		src:      src,
		maxSize:  maxSize,
		maxChunk: maxChunk,
	}
}

// Next applies the per-chunk protocol. Once a violation or transport error
// has been reported, the latch is set: subsequent calls return io.EOF
// without polling the source again, so no chunk is ever forwarded after a
// violation and no error is reported twice.
func (m *monitor) Next() ([]byte, error) {
	if m.violated {
		return nil, io.EOF
	}

	chunk, err := m.src.Next()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		m.violated = true

		return nil, &StreamError{Err: err}
	}

	if err := m.admit(int64(len(chunk))); err != nil {
		m.violated = true

		return nil, err
	}

	return chunk, nil
}

// admit validates a chunk of n bytes against the chunk ceiling and the
// cumulative limit, committing the new total only on success. The overflow
// check keeps a hostile sequence of chunk sizes from wrapping the counter.
func (m *monitor) admit(n int64) error {
	if n > m.maxChunk {
		return &ChunkTooLargeError{MaxChunkSize: m.maxChunk, ActualChunkSize: n}
	}

	if m.read > math.MaxInt64-n {
		return ErrSizeOverflow
	}

	total := m.read + n
	if total > m.maxSize {
		return &BodyTooLargeError{MaxSize: m.maxSize, ActualSize: total}
	}

	m.read = total

	return nil
}

// prefix replays one already-read chunk before continuing with the rest of
// the stream. Used to stitch the peeked first chunk back in front of the
// monitored remainder.
type prefix struct {
	chunk []byte
	rest  ChunkStream
	done  bool
}

func (p *prefix) Next() ([]byte, error) {
	if !p.done {
		p.done = true

		return p.chunk, nil
	}

	return p.rest.Next()
}

// readerChunks adapts an io.Reader into a ChunkStream using a fixed-size
// reusable buffer. Chunks alias the buffer and are only valid until the
// next call, per the ChunkStream contract.
type readerChunks struct {
	r   io.Reader
	buf []byte
	err error // deferred error to surface after a final partial chunk
}

func newReaderChunks(r io.Reader) *readerChunks {
	return &readerChunks{
		r:   r,
		buf: make([]byte, readChunkSize),
	}
}

func (rc *readerChunks) Next() ([]byte, error) {
	if rc.err != nil {
		return nil, rc.err
	}

	for {
		n, err := rc.r.Read(rc.buf)
		if n > 0 {
			// Hold any error (including io.EOF) until the chunk has
			// been delivered.
			rc.err = err

			return rc.buf[:n], nil
		}
		if err != nil {
			rc.err = err

			return nil, err
		}
	}
}

// chunkReader adapts a ChunkStream back into an io.ReadCloser so the
// enforced stream can replace a request body. The first error from the
// stream is terminal and repeated on every subsequent Read.
type chunkReader struct {
	src    ChunkStream
	rem    []byte
	err    error
	closer io.Closer
}

func (r *chunkReader) Read(p []byte) (int, error) {
	for len(r.rem) == 0 {
		if r.err != nil {
			return 0, r.err
		}

		chunk, err := r.src.Next()
		if err != nil {
			r.err = err

			return 0, err
		}
		r.rem = chunk
	}

	n := copy(p, r.rem)
	r.rem = r.rem[n:]

	return n, nil
}

// Close closes the underlying body without draining it; dropping the
// stream early never raises a violation.
func (r *chunkReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}

	return nil
}
