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

package ast

import (
	"github.com/cockroachdb/apd/v3"
	"github.com/google/go-cmp/cmp"
)

var decimalComparer = cmp.Comparer(func(a, b *apd.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

// Equal reports whether a and b are structurally identical: same Kind,
// same payload, same CfgMap insertion order throughout. This is the
// comparison a parse/dump/parse round trip and Reader equality are defined
// in terms of.
//
// CfgMap's Keys/Nodes fields are both exported, so cmp's ordinary
// struct/slice/map comparison already gives the right semantics: Keys is
// compared as an order-sensitive slice and Nodes as a plain map, together
// encoding "same keys, same order, same values" without a hand-written
// Equal method.
func Equal(a, b *Node) bool {
	return cmp.Equal(a, b, decimalComparer)
}

// EqualMaps reports whether a and b are structurally identical CfgMaps.
func EqualMaps(a, b *CfgMap) bool {
	return cmp.Equal(a, b, decimalComparer)
}
