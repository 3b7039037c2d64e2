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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"body too large", &BodyTooLargeError{MaxSize: 50, ActualSize: 80}, http.StatusRequestEntityTooLarge},
		{"chunk too large", &ChunkTooLargeError{MaxChunkSize: 32, ActualChunkSize: 64}, http.StatusRequestEntityTooLarge},
		{"size overflow", ErrSizeOverflow, http.StatusBadRequest},
		{"stream error", &StreamError{Err: errors.New("reset")}, http.StatusBadRequest},
		{"wrapped body too large", fmt.Errorf("read: %w", &BodyTooLargeError{MaxSize: 1, ActualSize: 2}), http.StatusRequestEntityTooLarge},
		{"unrelated error", errors.New("handler blew up"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResponseStatus(tt.err))
		})
	}
}

func TestIsSizeError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSizeError(&BodyTooLargeError{MaxSize: 50, ActualSize: 80}))
	assert.True(t, IsSizeError(&ChunkTooLargeError{MaxChunkSize: 32, ActualChunkSize: 64}))
	assert.True(t, IsSizeError(ErrSizeOverflow))
	assert.True(t, IsSizeError(fmt.Errorf("wrapped: %w", ErrSizeOverflow)))
	assert.False(t, IsSizeError(&StreamError{Err: errors.New("reset")}))
	assert.False(t, IsSizeError(errors.New("other")))
	assert.False(t, IsSizeError(nil))
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"body too large: got 80 bytes, maximum is 50 bytes",
		(&BodyTooLargeError{MaxSize: 50, ActualSize: 80}).Error())
	assert.Equal(t,
		"chunk too large: got 64 bytes, maximum chunk is 32 bytes",
		(&ChunkTooLargeError{MaxChunkSize: 32, ActualChunkSize: 64}).Error())
	assert.Equal(t,
		"body stream: connection reset",
		(&StreamError{Err: errors.New("connection reset")}).Error())
}

func TestStreamError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("reset")
	assert.ErrorIs(t, &StreamError{Err: cause}, cause)
}

func TestReasonLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "body_too_large", reasonLabel(&BodyTooLargeError{}))
	assert.Equal(t, "chunk_too_large", reasonLabel(&ChunkTooLargeError{}))
	assert.Equal(t, "size_overflow", reasonLabel(ErrSizeOverflow))
	assert.Equal(t, "stream_error", reasonLabel(&StreamError{Err: errors.New("reset")}))
}
