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

import "strings"

// DefaultContentType is assumed for requests without a Content-Type header.
const DefaultContentType = "application/octet-stream"

// DefaultLimit is the body limit applied to content types without a more
// specific configuration.
const DefaultLimit = 2 * MiB

// Limits maps content types to byte limits. Resolution precedence is
// exact match, then type wildcard ("image/*"), then the default limit.
//
// A Limits value is built once before the server starts and is read-only
// afterwards; it is safe to share across concurrent requests.
type Limits struct {
	defaultLimit int64
	specific     map[string]int64
	wildcard     map[string]int64
}

// NewLimits returns a Limits with the default limit and no per-type rules.
func NewLimits() *Limits {
	return &Limits{
		defaultLimit: int64(DefaultLimit),
		specific:     make(map[string]int64),
		wildcard:     make(map[string]int64),
	}
}

// WithDefault sets the limit for content types not matched by any rule.
func (l *Limits) WithDefault(limit Size) *Limits {
	l.defaultLimit = int64(limit)

	return l
}

// WithLimit sets the limit for an exact content type, e.g. "application/json".
// Exact rules win over wildcard rules.
func (l *Limits) WithLimit(contentType string, limit Size) *Limits {
	l.specific[strings.ToLower(contentType)] = int64(limit)

	return l
}

// WithWildcard sets the limit for a type wildcard pattern, e.g. "image/*".
func (l *Limits) WithWildcard(pattern string, limit Size) *Limits {
	l.wildcard[strings.ToLower(pattern)] = int64(limit)

	return l
}

// Resolve returns the effective byte limit for a content type.
// It always succeeds: unknown and malformed content types fall back to
// the default limit. The content type may carry parameters; they are
// stripped before matching.
func (l *Limits) Resolve(contentType string) int64 {
	ct := normalizeContentType(contentType)

	if limit, ok := l.specific[ct]; ok {
		return limit
	}

	if pattern, ok := wildcardFor(ct); ok {
		if limit, ok := l.wildcard[pattern]; ok {
			return limit
		}
	}

	return l.defaultLimit
}

// normalizeContentType lower-cases a content type, strips ";"-delimited
// parameters, and trims surrounding whitespace. An absent value maps to
// DefaultContentType.
func normalizeContentType(contentType string) string {
	if contentType == "" {
		return DefaultContentType
	}

	ct := strings.ToLower(contentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}

	return strings.TrimSpace(ct)
}

// wildcardFor derives the wildcard pattern for a normalized content type:
// "image/jpeg" yields "image/*". Content types without a "/" have no
// wildcard form.
func wildcardFor(contentType string) (string, bool) {
	i := strings.IndexByte(contentType, '/')
	if i < 0 {
		return "", false
	}

	return contentType[:i] + "/*", true
}
