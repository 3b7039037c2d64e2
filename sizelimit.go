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
	"bytes"
	"io"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"rivaas.dev/router"
)

// Option defines functional options for sizelimit middleware configuration.
type Option func(*config)

// config holds the configuration for the sizelimit middleware.
type config struct {
	// limits resolves the effective byte limit per content type
	limits *Limits

	// strategy decides buffering vs streaming per content type
	strategy *BufferStrategy

	// maxChunk is the ceiling for a single streamed chunk
	maxChunk int64

	// renderer produces the rejection response
	renderer ErrorRenderer

	// skipPaths are paths that bypass enforcement entirely.
	// map[string]bool instead of []string since this check runs on
	// every request.
	skipPaths map[string]bool

	// logger, when set, records rejections at warn level
	logger *slog.Logger

	// recordMetrics enables rejection counters through the router's
	// observability surface
	recordMetrics bool
}

// defaultConfig returns the default configuration for sizelimit middleware.
func defaultConfig() *config {
	return &config{
		limits:    NewLimits(),
		strategy:  DefaultBufferStrategy(),
		maxChunk:  int64(MaxChunkSize),
		renderer:  JSONRenderer{},
		skipPaths: make(map[string]bool),
	}
}

// New returns a middleware that enforces per-request body size limits,
// resolved from the request's content type.
//
// For each request the middleware:
//
//  1. Normalizes the Content-Type header (lower-case, parameters stripped)
//     and resolves the effective byte limit: exact match, then wildcard
//     ("image/*"), then the default limit.
//  2. Rejects immediately if a parseable Content-Length header already
//     exceeds the limit, before reading any body bytes. The header is
//     untrusted; actual bytes are always re-checked below.
//  3. Decides between buffering and streaming via the BufferStrategy.
//  4. Buffered path: reads the whole body (capped at limit+1 bytes) and
//     replaces the request body with the in-memory copy, so handlers see
//     an ordinary body. Oversized bodies are rejected before the handler
//     runs.
//  5. Streaming path: peeks the first chunk for fast rejection, then
//     replaces the body with a monitored stream that counts bytes
//     chunk-by-chunk, rejects oversized chunks and cumulative overruns,
//     and latches terminally on the first violation. Handlers observe a
//     violation as a typed error from Read and can map it to a status via
//     ResponseStatus.
//
// Basic usage:
//
//	r := router.MustNew()
//	r.Use(sizelimit.New()) // 2 MiB default limit
//
// Per-content-type limits:
//
//	r.Use(sizelimit.New(
//	    sizelimit.WithDefaultLimit(sizelimit.MustParseSize("1MB")),
//	    sizelimit.WithLimit("application/json", 100*sizelimit.KiB),
//	    sizelimit.WithWildcardLimit("image/*", 10*sizelimit.MiB),
//	))
//
// The configuration is built once and shared read-only across all
// concurrent requests; per-request enforcement state lives inside the
// body wrapper and is never shared.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if cfg.skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		contentType := normalizeContentType(c.Request.Header.Get("Content-Type"))
		limit := cfg.limits.Resolve(contentType)

		// Phase 1: early rejection from the declared Content-Length.
		// Absent or unparsable values fall through to live enforcement.
		if declared, ok := declaredLength(c.Request.Header.Get("Content-Length")); ok && declared > limit {
			cfg.reject(c, contentType, &BodyTooLargeError{MaxSize: limit, ActualSize: declared})
			return
		}

		if c.Request.Body == nil {
			c.Next()
			return
		}

		// Phase 2: enforce against actual bytes.
		if cfg.strategy.ShouldBuffer(contentType) {
			cfg.runBuffered(c, contentType, limit)
		} else {
			cfg.runStreamed(c, contentType, limit)
		}
	}
}

// declaredLength parses a Content-Length header value. Invalid values are
// treated as absent.
func declaredLength(header string) (int64, bool) {
	if header == "" {
		return 0, false
	}

	n, err := strconv.ParseInt(header, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}

// runBuffered reads the entire body up front and hands the handler an
// in-memory copy. A rejected request never reaches the handler.
func (cfg *config) runBuffered(c *router.Context, contentType string, limit int64) {
	buf, err := readBounded(c.Request.Body, limit)
	if err != nil {
		cfg.reject(c, contentType, err)
		return
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(buf))
	c.Request.ContentLength = int64(len(buf))
	c.Next()
}

// runStreamed wraps the body with the chunk-by-chunk enforcer. The first
// chunk is peeked so bodies that arrive oversized in one chunk are
// rejected before the handler runs; later violations surface to the
// handler as typed errors from Read.
func (cfg *config) runStreamed(c *router.Context, contentType string, limit int64) {
	body := c.Request.Body
	src := newReaderChunks(body)

	first, err := src.Next()
	if err != nil && err != io.EOF {
		cfg.reject(c, contentType, &StreamError{Err: err})
		return
	}

	mon := newMonitor(src, limit, cfg.maxChunk)
	var stream ChunkStream = mon

	if len(first) > 0 {
		// The peeked chunk is validated by the same rules and seeds the
		// cumulative counter before the remainder streams through.
		if verr := mon.admit(int64(len(first))); verr != nil {
			mon.violated = true
			cfg.reject(c, contentType, verr)
			return
		}

		// Detach from the adapter's reusable buffer before replay.
		stream = &prefix{chunk: bytes.Clone(first), rest: mon}
	}

	c.Request.Body = &chunkReader{src: stream, closer: body}
	c.Next()
}

// reject renders the violation, records it, and stops the handler chain.
func (cfg *config) reject(c *router.Context, contentType string, err error) {
	if cfg.logger != nil {
		cfg.logger.Warn("request body rejected",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"content_type", contentType,
			"reason", reasonLabel(err),
			"status", ResponseStatus(err),
			"error", err.Error(),
		)
	}

	if cfg.recordMetrics {
		c.IncrementCounter("sizelimit.rejections",
			attribute.String("reason", reasonLabel(err)),
			attribute.String("content_type", contentType),
		)
	}

	cfg.renderer.Render(c, err)
	c.Abort()
}
