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

import "io"

// readBounded reads an entire body into memory, failing as soon as the
// cumulative byte count would exceed maxSize.
//
// The read primitive itself is capped at maxSize+1 bytes so a hostile
// producer cannot force unbounded allocation; the post-read length check is
// an independent second validation in case the capped read stops silently
// at the boundary. When the limit is exceeded the reported actual size is
// maxSize+1, the best-known size at the point the read stopped.
func readBounded(body io.Reader, maxSize int64) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(body, maxSize+1))
	if err != nil {
		return nil, &StreamError{Err: err}
	}

	if int64(len(buf)) > maxSize {
		return nil, &BodyTooLargeError{MaxSize: maxSize, ActualSize: int64(len(buf))}
	}

	return buf, nil
}
