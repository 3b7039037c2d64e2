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
	"slices"
	"strings"
)

// BufferStrategy decides whether a request body is buffered fully into
// memory before the handler runs, or streamed through the enforcer while
// the handler reads it.
//
// Patterns in either list may be exact ("application/json") or wildcard
// ("image/*"). The lists may overlap; resolution order decides conflicts:
//
//  1. Exact match in the buffered list.
//  2. Exact match in the streamed list.
//  3. Wildcard match ("type/*") in the buffered list.
//  4. Wildcard match in the streamed list.
//  5. Buffered wildcard whose prefix (text before "*") prefixes the type.
//  6. Same prefix check against the streamed list.
//  7. The default.
//
// Within each list the first matching pattern wins, so declaration order
// resolves ambiguity between equally specific rules.
//
// Like Limits, a BufferStrategy is built once and read-only afterwards.
type BufferStrategy struct {
	buffered        []string
	streamed        []string
	defaultBuffered bool
}

// NewBufferStrategy returns an empty strategy that streams everything.
func NewBufferStrategy() *BufferStrategy {
	return &BufferStrategy{}
}

// DefaultBufferStrategy returns a strategy with sensible defaults:
// structured payloads (JSON, forms, XML, text) are buffered, media types
// and raw octet streams are streamed, and unknown types stream.
func DefaultBufferStrategy() *BufferStrategy {
	return &BufferStrategy{
		buffered: []string{
			"application/json",
			"multipart/form-data",
			"text/*",
			"application/xml",
			"application/x-www-form-urlencoded",
		},
		streamed: []string{
			"video/*",
			"image/*",
			"audio/*",
			"application/octet-stream",
		},
	}
}

// AllBuffered returns a strategy that buffers every content type.
func AllBuffered() *BufferStrategy {
	return &BufferStrategy{defaultBuffered: true}
}

// AllStreamed returns a strategy that streams every content type.
func AllStreamed() *BufferStrategy {
	return &BufferStrategy{}
}

// WithBuffered appends content-type patterns to the buffered list.
func (s *BufferStrategy) WithBuffered(types ...string) *BufferStrategy {
	s.buffered = append(s.buffered, lowered(types)...)

	return s
}

// WithStreamed appends content-type patterns to the streamed list.
func (s *BufferStrategy) WithStreamed(types ...string) *BufferStrategy {
	s.streamed = append(s.streamed, lowered(types)...)

	return s
}

// WithDefaultBuffered sets the decision for content types matched by
// neither list.
func (s *BufferStrategy) WithDefaultBuffered(buffered bool) *BufferStrategy {
	s.defaultBuffered = buffered

	return s
}

// ShouldBuffer reports whether the body for the given content type should
// be buffered. See the type documentation for the resolution order.
func (s *BufferStrategy) ShouldBuffer(contentType string) bool {
	ct := normalizeContentType(contentType)

	if slices.Contains(s.buffered, ct) {
		return true
	}
	if slices.Contains(s.streamed, ct) {
		return false
	}

	if pattern, ok := wildcardFor(ct); ok {
		if slices.Contains(s.buffered, pattern) {
			return true
		}
		if slices.Contains(s.streamed, pattern) {
			return false
		}
	}

	// Catch-all for wildcard entries whose derived form does not line up
	// with a plain "type/*" lookup, e.g. "application/vnd.api/*" against
	// "application/vnd.api/extra+json".
	if matchesWildcardPrefix(s.buffered, ct) {
		return true
	}
	if matchesWildcardPrefix(s.streamed, ct) {
		return false
	}

	return s.defaultBuffered
}

func matchesWildcardPrefix(patterns []string, contentType string) bool {
	for _, p := range patterns {
		if strings.HasSuffix(p, "/*") && strings.HasPrefix(contentType, p[:len(p)-1]) {
			return true
		}
	}

	return false
}

func lowered(types []string) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = strings.ToLower(t)
	}

	return out
}
