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

// Package sizelimit provides middleware for enforcing per-request body
// size limits resolved from the request's content type.
//
// Unlike a single global body limit, this middleware maps each content
// type to its own byte budget and chooses between buffering the body into
// memory or streaming it through an incremental enforcer, so small JSON
// payloads and large media uploads can coexist under one policy.
//
// # Basic Usage
//
//	import "rivaas.dev/sizelimit"
//
//	r := router.MustNew()
//	r.Use(sizelimit.New(
//	    sizelimit.WithDefaultLimit(sizelimit.MustParseSize("1MB")),
//	    sizelimit.WithLimit("application/json", 100*sizelimit.KiB),
//	    sizelimit.WithWildcardLimit("image/*", 10*sizelimit.MiB),
//	))
//
// # Limit Resolution
//
// The effective limit for a request is resolved from its normalized
// content type (lower-cased, parameters after ";" stripped):
//
//   - Exact match ("application/json") always wins.
//   - Otherwise the type wildcard ("application/*") is consulted.
//   - Otherwise the default limit applies, including for requests without
//     a Content-Type header (treated as "application/octet-stream").
//
// # Buffering vs Streaming
//
// A BufferStrategy decides, per content type, whether the body is read
// fully into memory before the handler runs (buffered) or wrapped with a
// counting enforcer the handler reads through (streamed). The default
// strategy buffers structured payloads (JSON, forms, XML, text) and
// streams media types. On the buffered path an oversized body is rejected
// before the handler executes; on the streaming path the handler never
// observes a byte beyond the budget and receives a typed error from Read
// at the point of violation:
//
//	r.POST("/upload", func(c *router.Context) {
//	    data, err := io.ReadAll(c.Request.Body)
//	    if err != nil {
//	        c.Status(sizelimit.ResponseStatus(err))
//	        return
//	    }
//	    // process data...
//	})
//
// # Enforcement Guarantees
//
//   - The Content-Length header only triggers early rejection; actual
//     bytes are always counted, so a lying or absent header cannot bypass
//     the limit.
//   - Cumulative accounting uses overflow-checked arithmetic.
//   - A single chunk larger than the per-chunk ceiling (MaxChunkSize,
//     16 MiB by default) is rejected regardless of the body limit.
//   - Violations latch: after the first violation no further chunks are
//     read from the producer or forwarded to the handler.
//
// # Error Responses
//
// Rejections are rendered by a pluggable ErrorRenderer. Bundled renderers
// are JSONRenderer (default), JSONAPIRenderer, and TextRenderer; arbitrary
// functions plug in via RendererFunc or WithErrorHandler. Body and chunk
// violations map to 413, overflow and transport errors to 400.
//
// # Configuration Options
//
//   - DefaultLimit / Limit / WildcardLimit / Limits: byte budgets
//   - Strategy / BufferedTypes / StreamedTypes / DefaultBuffered: buffering
//   - MaxChunkSize: streamed per-chunk ceiling
//   - Renderer / ErrorHandler: rejection response format
//   - SkipPaths: paths exempt from enforcement
//   - Logger: structured rejection logging (slog)
//   - Metrics: rejection counters via the router metrics surface
package sizelimit
