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
	"strings"

	"github.com/flexi-cfg/flexicfg/token"
)

// Unflatten builds the nested CfgMap a dotted key expands to:
// Unflatten("a.b.c", leaf, pos, 0) produces a Struct "a" containing Struct
// "b" containing leaf under key "c". It underlies both the parser's
// top-level dotted-key pairs and the resolver's flat-key unflattening pass.
func Unflatten(dotted string, leaf *Node, pos token.Position, depth int) *CfgMap {
	segments := strings.Split(dotted, ".")
	root := NewCfgMap()
	cur := root
	for i := 0; i < len(segments)-1; i++ {
		s := NewStructLike(StructKind, segments[i], depth+i, pos)
		cur.Insert(segments[i], s)
		cur = s.Data
	}
	cur.Insert(segments[len(segments)-1], leaf)
	return root
}
