// Copyright 2026 The Flexi Config Authors
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

// Package literal parses and validates literal text forms: numbers
// (decimal and hex), strings, booleans, and the identifier grammar used
// for keys, vars, and reserved words.
package literal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// ParseNumber parses the raw literal text of an INTEGER, FLOAT, or HEX
// token (as matched by the scanner) into an arbitrary-precision decimal.
// Keeping the parsed value as an apd.Decimal rather than a float64
// preserves full precision across a parse/dump/parse round trip, while HEX
// values are unsigned integers encoded in decimal form.
func ParseNumber(raw string) (*apd.Decimal, error) {
	text := raw
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		u, err := strconv.ParseUint(raw[2:], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid hex literal %q: %w", raw, err)
		}
		text = strconv.FormatUint(u, 10)
	}
	d, _, err := apd.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric literal %q: %w", raw, err)
	}
	return d, nil
}

// IsFloat reports whether raw's textual form requires a fractional or
// exponent part, as opposed to a bare integer.
func IsFloat(raw string) bool {
	return strings.ContainsAny(raw, ".eE") && !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X")
}

// ParseBool parses a Boolean literal ("true" or "false").
func ParseBool(raw string) (bool, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean literal %q", raw)
}

// Unquote strips the surrounding double quotes from a scanned STRING
// literal. The grammar defines no escape sequences, so this is plain
// trimming rather than Go's escape-aware strconv.Unquote.
func Unquote(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// Quote wraps s in double quotes, the inverse of Unquote, used when
// re-serializing a string Value (e.g. for Dump or round-trip tests).
func Quote(s string) string {
	return `"` + s + `"`
}

// IsKeyStart reports whether r may start a KEY identifier: [a-z].
func IsKeyStart(r byte) bool {
	return r >= 'a' && r <= 'z'
}

// IsKeyPart reports whether r may continue a KEY identifier after the
// first character: [A-Za-z0-9_].
func IsKeyPart(r byte) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// IsVarStart reports whether r may start the bare (non-braced) body of a
// VAR identifier: [A-Z].
func IsVarStart(r byte) bool {
	return r >= 'A' && r <= 'Z'
}

// IsVarPart reports whether r may continue a VAR identifier:
// [A-Z0-9_].
func IsVarPart(r byte) bool {
	return r == '_' || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// IsValidKey reports whether s is a syntactically valid, non-reserved KEY.
func IsValidKey(s string) bool {
	if s == "" || !IsKeyStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !IsKeyPart(s[i]) {
			return false
		}
	}
	return !IsReserved(s)
}

// reserved holds the words a KEY must never equal: the construct keywords
// plus the bracket-annotation keywords.
var reserved = map[string]bool{
	"struct":           true,
	"proto":            true,
	"reference":        true,
	"as":               true,
	"include":          true,
	"include_relative": true,
	"override":         true,
	"optional":         true,
	"once":             true,
}

// IsReserved reports whether s is a reserved word that may not be used as a
// KEY segment.
func IsReserved(s string) bool {
	return reserved[s]
}
