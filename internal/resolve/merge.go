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

// Package resolve implements the multi-pass semantic resolution pipeline:
// deep merge, struct-from-reference materialization, proto variable
// substitution, flat-key unflattening, value-lookup chasing, and
// expression evaluation.
package resolve

import (
	"github.com/flexi-cfg/flexicfg/ast"
	"github.com/flexi-cfg/flexicfg/errors"
)

// MergeNestedMaps combines a and b into a new CfgMap: keys unique to
// either side pass straight through; keys present in both must both be
// struct-like and are merged recursively. It has no override semantics, so
// any non-struct-like collision is an error, not a last-write-wins update.
func MergeNestedMaps(a, b *ast.CfgMap, path []string) (*ast.CfgMap, error) {
	out := ast.NewCfgMap()
	a.Each(func(k string, n *ast.Node) bool {
		out.Insert(k, n)
		return true
	})

	var mergeErr error
	b.Each(func(k string, bn *ast.Node) bool {
		childPath := append(append([]string{}, path...), k)
		an, exists := out.Get(k)
		if !exists {
			out.Insert(k, bn)
			return true
		}
		if merged, err := mergeCollision(an, bn, childPath); err != nil {
			mergeErr = err
			return false
		} else {
			out.Replace(k, merged)
			return true
		}
	})
	if mergeErr != nil {
		return nil, mergeErr
	}
	return out, nil
}

// mergeCollision resolves a single key present on both sides of a merge,
// distinguishing duplicate-scalar, mismatched-kind, and struct-recursion
// cases.
func mergeCollision(a, b *ast.Node, path []string) (*ast.Node, error) {
	if !a.Kind.IsStructLike() && !b.Kind.IsStructLike() {
		return nil, errors.NewDuplicateKey(b.Origin, path)
	}
	if a.Kind.IsStructLike() != b.Kind.IsStructLike() {
		return nil, errors.NewMismatchKey(b.Origin, path)
	}
	if a.Kind != b.Kind {
		return nil, errors.NewMismatchType(b.Origin, path, a.Kind.String(), b.Kind.String())
	}
	merged, err := MergeNestedMaps(a.Data, b.Data, path)
	if err != nil {
		return nil, err
	}
	out := *a
	out.Data = merged
	return &out, nil
}
