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
	"strconv"
	"strings"
)

// Size is a byte quantity used for body and chunk limits.
type Size int64

// Size constants for the common decimal and binary units.
const (
	Byte Size = 1

	// Decimal units (1 KB = 1000 bytes).
	KB Size = 1000
	MB Size = 1000 * KB
	GB Size = 1000 * MB

	// Binary units (1 KiB = 1024 bytes).
	KiB Size = 1024
	MiB Size = 1024 * KiB
	GiB Size = 1024 * MiB
)

// ErrEmptySize is returned by ParseSize for an empty input string.
var ErrEmptySize = errors.New("empty size string")

// sizeUnits maps the accepted unit spellings to their byte multipliers.
// Bit units follow network convention: 1 kilobit = 125 bytes.
var sizeUnits = map[string]float64{
	"":      1,
	"b":     1,
	"byte":  1,
	"bytes": 1,

	"kb":        1000,
	"kilobyte":  1000,
	"kilobytes": 1000,
	"mb":        1000_000,
	"megabyte":  1000_000,
	"megabytes": 1000_000,
	"gb":        1000_000_000,
	"gigabyte":  1000_000_000,
	"gigabytes": 1000_000_000,

	"kib":       1024,
	"kibibyte":  1024,
	"kibibytes": 1024,
	"mib":       1 << 20,
	"mebibyte":  1 << 20,
	"mebibytes": 1 << 20,
	"gib":       1 << 30,
	"gibibyte":  1 << 30,
	"gibibytes": 1 << 30,

	"kbit":     125,
	"kilobit":  125,
	"kilobits": 125,
	"mbit":     125_000,
	"megabit":  125_000,
	"megabits": 125_000,
	"gbit":     125_000_000,
	"gigabit":  125_000_000,
	"gigabits": 125_000_000,
}

// ParseSize parses a human-readable size expression into a Size.
//
// The expression is a number followed by an optional unit: "1024", "2MB",
// "1.5GiB", "100Mbit". Units are case-insensitive and may be separated from
// the number by whitespace. A comma may be used as the decimal separator
// ("1,5MB"). A bare number is interpreted as bytes.
func ParseSize(s string) (Size, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return 0, ErrEmptySize
	}

	numEnd := 0
	for numEnd < len(t) {
		c := t[numEnd]
		if (c < '0' || c > '9') && c != '.' && c != ',' {
			break
		}
		numEnd++
	}
	if numEnd == 0 {
		return 0, fmt.Errorf("no number in size %q", s)
	}

	numPart := strings.ReplaceAll(t[:numEnd], ",", ".")
	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q in size %q: %w", numPart, s, err)
	}

	unitPart := strings.TrimSpace(t[numEnd:])
	mult, ok := sizeUnits[unitPart]
	if !ok {
		return 0, fmt.Errorf("unknown size unit %q in %q", unitPart, s)
	}

	return Size(num * mult), nil
}

// MustParseSize is like ParseSize but panics on invalid input.
// Intended for configuration literals:
//
//	sizelimit.WithDefaultLimit(sizelimit.MustParseSize("10MB"))
func MustParseSize(s string) Size {
	size, err := ParseSize(s)
	if err != nil {
		panic("sizelimit: " + err.Error())
	}

	return size
}

// Bytes returns the size as a plain byte count.
func (s Size) Bytes() int64 {
	return int64(s)
}

// String formats the size into a human-readable string using binary units.
func (s Size) String() string {
	switch {
	case s >= GiB:
		return fmt.Sprintf("%.1fGiB", float64(s)/float64(GiB))
	case s >= MiB:
		return fmt.Sprintf("%.1fMiB", float64(s)/float64(MiB))
	case s >= KiB:
		return fmt.Sprintf("%.1fKiB", float64(s)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", int64(s))
	}
}
