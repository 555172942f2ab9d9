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
	"reflect"

	"github.com/cockroachdb/apd/v3"
	"github.com/mitchellh/copystructure"
)

func init() {
	// apd.Decimal's Coeff field is backed by math/big, which carries
	// unexported internal slices copystructure's generic reflection-based
	// copier cannot safely duplicate. Decimal itself documents Set as the
	// way to produce an independent copy, so register that as the type's
	// copier via copystructure's extension point instead of reflecting
	// into it.
	copystructure.Copiers[reflect.TypeOf(apd.Decimal{})] = func(v interface{}) (interface{}, error) {
		d := v.(apd.Decimal)
		var out apd.Decimal
		out.Set(&d)
		return out, nil
	}
}

// Clone deep-copies n, including every nested CfgMap, so that edits to the
// result never mutate n. This matters when materializing a Struct from a
// Proto: the Proto must remain untouched so it can be instantiated again by
// a later Reference.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out, err := copystructure.Copy(n)
	if err != nil {
		// copystructure only fails on types it cannot reflect into; every
		// field reachable from Node is either a primitive, a slice/map of
		// Nodes, or apd.Decimal (handled by the registered Copier above).
		panic("ast: Clone: " + err.Error())
	}
	return out.(*Node)
}

// Clone deep-copies c.
func (c *CfgMap) Clone() *CfgMap {
	if c == nil {
		return nil
	}
	out, err := copystructure.Copy(c)
	if err != nil {
		panic("ast: Clone: " + err.Error())
	}
	return out.(*CfgMap)
}
