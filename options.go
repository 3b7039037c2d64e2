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
	"log/slog"

	"rivaas.dev/router"
)

// WithDefaultLimit sets the limit for content types not matched by any
// specific or wildcard rule.
// Default: 2 MiB.
//
// Example:
//
//	sizelimit.New(sizelimit.WithDefaultLimit(10 * sizelimit.MiB))
func WithDefaultLimit(limit Size) Option {
	return func(cfg *config) {
		if limit < 0 {
			panic("sizelimit: default limit must be non-negative")
		}
		cfg.limits.WithDefault(limit)
	}
}

// WithLimit sets the limit for an exact content type. Exact rules always
// win over wildcard rules, even when both match.
//
// Example:
//
//	sizelimit.New(
//	    sizelimit.WithLimit("application/json", 100*sizelimit.KiB),
//	    sizelimit.WithLimit("text/csv", sizelimit.MustParseSize("5MB")),
//	)
func WithLimit(contentType string, limit Size) Option {
	return func(cfg *config) {
		if limit < 0 {
			panic("sizelimit: limit must be non-negative")
		}
		cfg.limits.WithLimit(contentType, limit)
	}
}

// WithWildcardLimit sets the limit for a type wildcard pattern such as
// "image/*", matching any subtype of the type.
//
// Example:
//
//	sizelimit.New(sizelimit.WithWildcardLimit("video/*", 100*sizelimit.MiB))
func WithWildcardLimit(pattern string, limit Size) Option {
	return func(cfg *config) {
		if limit < 0 {
			panic("sizelimit: limit must be non-negative")
		}
		cfg.limits.WithWildcard(pattern, limit)
	}
}

// WithLimits replaces the whole limit configuration with a pre-built
// Limits value. Useful when the same limits are shared between servers.
//
// Example:
//
//	limits := sizelimit.NewLimits().
//	    WithDefault(sizelimit.MustParseSize("1MB")).
//	    WithWildcard("image/*", 10*sizelimit.MiB)
//	sizelimit.New(sizelimit.WithLimits(limits))
func WithLimits(limits *Limits) Option {
	return func(cfg *config) {
		if limits == nil {
			panic("sizelimit: limits must not be nil")
		}
		cfg.limits = limits
	}
}

// WithStrategy replaces the buffering strategy.
// Default: DefaultBufferStrategy().
//
// Example:
//
//	sizelimit.New(sizelimit.WithStrategy(sizelimit.AllStreamed()))
func WithStrategy(strategy *BufferStrategy) Option {
	return func(cfg *config) {
		if strategy == nil {
			panic("sizelimit: strategy must not be nil")
		}
		cfg.strategy = strategy
	}
}

// WithBufferedTypes appends content-type patterns to the buffered list of
// the current strategy.
func WithBufferedTypes(types ...string) Option {
	return func(cfg *config) {
		cfg.strategy.WithBuffered(types...)
	}
}

// WithStreamedTypes appends content-type patterns to the streamed list of
// the current strategy.
func WithStreamedTypes(types ...string) Option {
	return func(cfg *config) {
		cfg.strategy.WithStreamed(types...)
	}
}

// WithDefaultBuffered sets the buffering decision for content types
// matched by neither list.
func WithDefaultBuffered(buffered bool) Option {
	return func(cfg *config) {
		cfg.strategy.WithDefaultBuffered(buffered)
	}
}

// WithMaxChunkSize overrides the per-chunk ceiling applied on the
// streaming path, independent of the body limit.
// Default: MaxChunkSize (16 MiB).
func WithMaxChunkSize(size Size) Option {
	return func(cfg *config) {
		if size <= 0 {
			panic("sizelimit: max chunk size must be positive")
		}
		cfg.maxChunk = int64(size)
	}
}

// WithRenderer sets the renderer used for rejection responses.
// Default: JSONRenderer.
//
// Example:
//
//	sizelimit.New(sizelimit.WithRenderer(sizelimit.JSONAPIRenderer{}))
func WithRenderer(renderer ErrorRenderer) Option {
	return func(cfg *config) {
		if renderer == nil {
			panic("sizelimit: renderer must not be nil")
		}
		cfg.renderer = renderer
	}
}

// WithErrorHandler sets a custom rejection handler function. It is
// shorthand for WithRenderer(RendererFunc(handler)).
//
// Example:
//
//	sizelimit.New(
//	    sizelimit.WithErrorHandler(func(c *router.Context, err error) {
//	        c.Stringf(sizelimit.ResponseStatus(err), "rejected: %v", err)
//	    }),
//	)
func WithErrorHandler(handler func(c *router.Context, err error)) Option {
	return func(cfg *config) {
		if handler == nil {
			panic("sizelimit: error handler must not be nil")
		}
		cfg.renderer = RendererFunc(handler)
	}
}

// WithSkipPaths sets paths that bypass size enforcement entirely.
// Useful for endpoints that accept large uploads through other controls.
//
// Example:
//
//	sizelimit.New(sizelimit.WithSkipPaths("/upload", "/files"))
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, path := range paths {
			cfg.skipPaths[path] = true
		}
	}
}

// WithLogger sets a structured logger for rejection records. If no logger
// is configured, rejections are not logged.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	sizelimit.New(sizelimit.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithMetrics enables a rejection counter recorded through the router's
// metrics surface, labeled by rejection reason and content type.
func WithMetrics() Option {
	return func(cfg *config) {
		cfg.recordMetrics = true
	}
}
