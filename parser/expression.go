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

package parser

import (
	"strings"

	"github.com/flexi-cfg/flexicfg/ast"
	"github.com/flexi-cfg/flexicfg/token"
)

// ExtractLookups scans raw Expression source for embedded "$(...)" value
// lookups and returns one ValueLookup Node per distinct occurrence, keyed
// by its literal text. It is re-run by internal/resolve's proto variable
// substitution after rewriting an Expression's raw source, since
// substitution can expose new "$(...)" text that didn't exist at the first
// parse.
func ExtractLookups(raw string, pos token.Position) map[string]*ast.Node {
	lookups := map[string]*ast.Node{}
	i := 0
	for i < len(raw) {
		if raw[i] == '$' && i+1 < len(raw) && raw[i+1] == '(' {
			j := i + 2
			for j < len(raw) && raw[j] != ')' {
				j++
			}
			if j < len(raw) {
				text := raw[i : j+1]
				segments := splitLookupSegments(raw[i+2 : j])
				lookups[text] = ast.NewValueLookup(segments, pos)
				i = j + 1
				continue
			}
		}
		i++
	}
	return lookups
}

// splitLookupSegments turns the dotted interior of a "$(...)" value lookup
// into its bare segment names, stripping the "$"/"${"/"}" that mark a VAR
// segment (e.g. "a.b.$VAR" and "a.b.${VAR}" both yield ["a", "b", "VAR"]).
func splitLookupSegments(inner string) []string {
	parts := strings.Split(inner, ".")
	out := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimPrefix(p, "$")
		p = strings.TrimPrefix(p, "{")
		p = strings.TrimSuffix(p, "}")
		out[i] = p
	}
	return out
}

// NewExpression builds an Expression Node from raw source, populating its
// Lookups via ExtractLookups. Used both for the initial EXPRESSION token
// and for internal/resolve's reparse of substituted expression source.
func NewExpression(raw string, pos token.Position) *ast.Node {
	n := ast.NewExpression(raw, pos)
	for text, lk := range ExtractLookups(raw, pos) {
		n.SetLookup(text, lk)
	}
	return n
}
