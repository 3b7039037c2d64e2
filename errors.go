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
	"errors"
	"fmt"
	"net/http"
)

// ErrSizeOverflow is returned when accumulating chunk sizes would overflow
// the byte counter. Treated as a limit violation and mapped to 400.
var ErrSizeOverflow = errors.New("request size accumulation overflowed")

// BodyTooLargeError reports that the cumulative body size exceeded the
// limit resolved for the request's content type.
type BodyTooLargeError struct {
	// MaxSize is the resolved limit in bytes.
	MaxSize int64

	// ActualSize is the best-known body size at the point of violation.
	// On the buffered path this may be MaxSize+1 when the read primitive
	// stopped at the cap before the true size was known.
	ActualSize int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("body too large: got %d bytes, maximum is %d bytes", e.ActualSize, e.MaxSize)
}

// ChunkTooLargeError reports that a single body chunk exceeded the fixed
// per-chunk ceiling, independent of the configured body limit.
type ChunkTooLargeError struct {
	MaxChunkSize    int64
	ActualChunkSize int64
}

func (e *ChunkTooLargeError) Error() string {
	return fmt.Sprintf("chunk too large: got %d bytes, maximum chunk is %d bytes", e.ActualChunkSize, e.MaxChunkSize)
}

// StreamError wraps a transport-level failure from the underlying body
// stream. It marks the stream as terminal but is not a size violation.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return "body stream: " + e.Err.Error()
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// IsSizeError reports whether err is one of the size-enforcement
// violations: body too large, chunk too large, or size overflow.
// Transport errors (StreamError) are not size violations.
func IsSizeError(err error) bool {
	var bodyErr *BodyTooLargeError
	var chunkErr *ChunkTooLargeError

	return errors.As(err, &bodyErr) || errors.As(err, &chunkErr) || errors.Is(err, ErrSizeOverflow)
}

// ResponseStatus maps an enforcement error to its HTTP response status:
// 413 for body/chunk violations, 400 for overflow and transport errors,
// 500 for anything else.
func ResponseStatus(err error) int {
	var bodyErr *BodyTooLargeError
	var chunkErr *ChunkTooLargeError
	var streamErr *StreamError

	switch {
	case errors.As(err, &bodyErr), errors.As(err, &chunkErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrSizeOverflow):
		return http.StatusBadRequest
	case errors.As(err, &streamErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// reasonLabel returns a low-cardinality label for logs and metrics.
func reasonLabel(err error) string {
	var bodyErr *BodyTooLargeError
	var chunkErr *ChunkTooLargeError

	switch {
	case errors.As(err, &bodyErr):
		return "body_too_large"
	case errors.As(err, &chunkErr):
		return "chunk_too_large"
	case errors.Is(err, ErrSizeOverflow):
		return "size_overflow"
	default:
		return "stream_error"
	}
}
