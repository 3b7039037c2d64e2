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

// Package main demonstrates how to use the sizelimit middleware to
// enforce per-content-type request body size limits.
package main

import (
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"

	"rivaas.dev/router"
	"rivaas.dev/sizelimit"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	r := router.MustNew()

	// Per-content-type limits: tight on structured payloads, generous
	// on media. Unknown types fall back to the default.
	r.Use(sizelimit.New(
		sizelimit.WithDefaultLimit(sizelimit.MustParseSize("512KB")),
		sizelimit.WithLimit("application/json", 100*sizelimit.KiB),
		sizelimit.WithWildcardLimit("image/*", 10*sizelimit.MiB),
		sizelimit.WithWildcardLimit("video/*", 100*sizelimit.MiB),
		sizelimit.WithLogger(logger),
		sizelimit.WithMetrics(),
	))

	// Example 1: JSON endpoint. Oversized bodies are rejected with 413
	// before this handler runs; the body it sees is fully buffered.
	r.POST("/api/users", func(c *router.Context) {
		var user struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}

		if err := json.NewDecoder(c.Request.Body).Decode(&user); err != nil {
			c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, map[string]string{
			"message": "User created",
			"name":    user.Name,
			"email":   user.Email,
		})
	})

	// Example 2: streamed upload endpoint. Media types stream through a
	// monitored body; a mid-stream violation surfaces as a typed error
	// from Read, mapped to a status via ResponseStatus.
	r.POST("/api/upload", func(c *router.Context) {
		n, err := io.Copy(io.Discard, c.Request.Body)
		if err != nil {
			c.JSON(sizelimit.ResponseStatus(err), map[string]string{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, map[string]int64{"received": n})
	})

	// Example 3: route-scoped middleware with a JSON:API error format.
	r.POST("/api/articles", sizelimit.New(
		sizelimit.WithLimit("application/vnd.api+json", 64*sizelimit.KiB),
		sizelimit.WithRenderer(sizelimit.JSONAPIRenderer{}),
	), func(c *router.Context) {
		c.JSON(http.StatusCreated, map[string]string{"message": "Article created"})
	})

	// Example 4: custom error handler.
	r.POST("/api/data", sizelimit.New(
		sizelimit.WithDefaultLimit(sizelimit.MustParseSize("256KB")),
		sizelimit.WithErrorHandler(func(c *router.Context, err error) {
			c.Header("X-Error-Type", "SizeLimitExceeded")
			c.Stringf(sizelimit.ResponseStatus(err), "rejected: %v", err)
		}),
	), func(c *router.Context) {
		c.JSON(http.StatusOK, map[string]string{"message": "Data received"})
	})

	log.Println("Server starting on :8080")
	log.Println("\nTest the endpoints:")
	log.Println("  # Small JSON body (should work):")
	log.Println("  curl -X POST http://localhost:8080/api/users \\")
	log.Println("    -H 'Content-Type: application/json' \\")
	log.Println("    -d '{\"name\":\"John\",\"email\":\"john@example.com\"}'")
	log.Println()
	log.Println("  # Declared length beyond the limit (fails fast with 413):")
	log.Println("  curl -X POST http://localhost:8080/api/users \\")
	log.Println("    -H 'Content-Type: application/json' \\")
	log.Println("    -H 'Content-Length: 5000000' \\")
	log.Println("    -d '{\"test\":\"data\"}'")
	log.Println()
	log.Println("  # Streamed image upload within the image/* limit:")
	log.Println("  curl -X POST http://localhost:8080/api/upload \\")
	log.Println("    -H 'Content-Type: image/png' \\")
	log.Println("    --data-binary @photo.png")

	if err := http.ListenAndServe(":8080", r); err != nil {
		log.Fatal(err)
	}
}
