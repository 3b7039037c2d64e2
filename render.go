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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"rivaas.dev/router"
)

// ErrorRenderer turns an enforcement error into an HTTP response. The
// middleware invokes the configured renderer on rejection and never
// branches on its identity, so response formats are fully pluggable.
type ErrorRenderer interface {
	Render(c *router.Context, err error)
}

// RendererFunc adapts a plain function to the ErrorRenderer interface.
type RendererFunc func(c *router.Context, err error)

func (f RendererFunc) Render(c *router.Context, err error) {
	f(c, err)
}

// errorParts decomposes an enforcement error into the pieces the bundled
// renderers share: status code, short title, human detail, and structured
// metadata for JSON formats.
func errorParts(err error) (status int, title, detail string, meta map[string]any) {
	status = ResponseStatus(err)

	var bodyErr *BodyTooLargeError
	var chunkErr *ChunkTooLargeError

	switch {
	case errors.As(err, &bodyErr):
		title = "Payload Too Large"
		detail = fmt.Sprintf("request body exceeds the maximum allowed size of %d bytes", bodyErr.MaxSize)
		meta = map[string]any{
			"max_size":    bodyErr.MaxSize,
			"actual_size": bodyErr.ActualSize,
		}
	case errors.As(err, &chunkErr):
		title = "Chunk Too Large"
		detail = fmt.Sprintf("request chunk exceeds the maximum allowed size of %d bytes", chunkErr.MaxChunkSize)
		meta = map[string]any{
			"max_chunk_size":    chunkErr.MaxChunkSize,
			"actual_chunk_size": chunkErr.ActualChunkSize,
		}
	case errors.Is(err, ErrSizeOverflow):
		title = "Size Overflow"
		detail = "request size calculation resulted in an overflow"
	default:
		title = http.StatusText(status)
		detail = err.Error()
	}

	return status, title, detail, meta
}

// JSONRenderer is the default renderer. It writes a flat JSON error object:
//
//	{
//	  "error": "Payload Too Large",
//	  "message": "request body exceeds the maximum allowed size of 50 bytes",
//	  "max_size": 50,
//	  "actual_size": 80,
//	  "status_code": 413
//	}
type JSONRenderer struct{}

func (JSONRenderer) Render(c *router.Context, err error) {
	status, title, detail, meta := errorParts(err)

	body := map[string]any{
		"error":       title,
		"message":     detail,
		"status_code": status,
	}
	for k, v := range meta {
		body[k] = v
	}

	c.JSON(status, body)
}

// JSONAPIRenderer writes errors as a JSON:API error document
// (https://jsonapi.org/format/#errors).
type JSONAPIRenderer struct{}

func (JSONAPIRenderer) Render(c *router.Context, err error) {
	status, title, detail, meta := errorParts(err)

	errObj := map[string]any{
		"status": fmt.Sprintf("%d", status),
		"title":  title,
		"detail": detail,
	}
	if meta != nil {
		errObj["meta"] = meta
	}

	// Written through Data to keep the JSON:API media type; JSON would
	// stamp application/json on the response.
	doc, merr := json.Marshal(map[string]any{"errors": []any{errObj}})
	if merr != nil {
		c.WriteErrorResponse(status, detail)
		return
	}

	c.Data(status, "application/vnd.api+json", doc)
}

// TextRenderer writes plain-text errors, e.g.
//
//	413 Request Entity Too Large
//
//	request body exceeds the maximum allowed size of 50 bytes
type TextRenderer struct{}

func (TextRenderer) Render(c *router.Context, err error) {
	status, _, detail, _ := errorParts(err)

	c.Stringf(status, "%d %s\n\n%s", status, http.StatusText(status), detail)
}
