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

package resolve

import (
	"strings"

	"github.com/flexi-cfg/flexicfg/ast"
	"github.com/flexi-cfg/flexicfg/errors"
	"github.com/flexi-cfg/flexicfg/token"
)

// GetNestedConfig walks every segment of a dotted path except the last,
// returning the CfgMap the final segment should be looked up in. Each
// intermediate segment must exist and be struct-like.
func GetNestedConfig(root *ast.CfgMap, segments []string, pos token.Position) (*ast.CfgMap, error) {
	cur := root
	for i := 0; i < len(segments)-1; i++ {
		n, ok := cur.Get(segments[i])
		if !ok {
			return nil, errors.NewInvalidKey(pos, segments[:i+1])
		}
		if !n.Kind.IsStructLike() {
			return nil, errors.NewInvalidType(pos, segments[:i+1], "expected %q to be a struct, found %s", strings.Join(segments[:i+1], "."), n.Kind)
		}
		cur = n.Data
	}
	return cur, nil
}

// GetConfigValue resolves a full dotted path to its Node.
func GetConfigValue(root *ast.CfgMap, segments []string, pos token.Position) (*ast.Node, error) {
	parent, err := GetNestedConfig(root, segments, pos)
	if err != nil {
		return nil, err
	}
	last := segments[len(segments)-1]
	n, ok := parent.Get(last)
	if !ok {
		return nil, errors.NewInvalidKey(pos, segments)
	}
	return n, nil
}

// ResolveValueLookups replaces every ValueLookup node reachable from root
// with the node its dotted path points to, following chains of
// ValueLookup-to-ValueLookup indirection and detecting cycles. A
// ValueLookup embedded in an Expression's Lookups map must
// resolve (after evaluating a further Expression, if that's what it points
// to) to a Number or Hex; anywhere else the terminal node's kind is
// unconstrained.
func ResolveValueLookups(root *ast.CfgMap) error {
	return resolveValueLookupsInMap(root, root)
}

func resolveValueLookupsInMap(root, m *ast.CfgMap) error {
	for _, k := range append([]string{}, m.Keys...) {
		n, _ := m.Get(k)
		replaced, err := resolveValueLookupsInNode(root, n)
		if err != nil {
			return err
		}
		m.Replace(k, replaced)
	}
	return nil
}

func resolveValueLookupsInNode(root *ast.CfgMap, n *ast.Node) (*ast.Node, error) {
	switch n.Kind {
	case ast.ValueLookupKind:
		resolved, err := chaseValueLookup(root, n, nil)
		if err != nil {
			return nil, err
		}
		return resolveValueLookupsInNode(root, resolved)

	case ast.ListKind:
		for i, elem := range n.Elements {
			replaced, err := resolveValueLookupsInNode(root, elem)
			if err != nil {
				return nil, err
			}
			n.Elements[i] = replaced
		}
		if err := n.Revalidate(); err != nil {
			return nil, err
		}
		return n, nil

	case ast.ExpressionKind:
		for text, lk := range n.Lookups {
			if lk.Kind != ast.ValueLookupKind {
				continue
			}
			resolved, err := chaseValueLookup(root, lk, nil)
			if err != nil {
				return nil, err
			}
			if resolved.Kind == ast.ExpressionKind {
				evaluated, err := evaluateExpressionNode(resolved)
				if err != nil {
					return nil, err
				}
				resolved = evaluated
			}
			if resolved.Kind != ast.NumberKind && resolved.Kind != ast.HexKind {
				return nil, errors.NewInvalidType(resolved.Origin, nil, "value lookup %s used in an expression must be numeric, found %s", text, resolved.Kind)
			}
			n.Lookups[text] = resolved
		}
		return n, nil

	case ast.StructKind, ast.StructInProtoKind, ast.ProtoKind, ast.ReferenceKind:
		if n.Data != nil {
			if err := resolveValueLookupsInMap(root, n.Data); err != nil {
				return nil, err
			}
		}
		return n, nil

	default:
		return n, nil
	}
}

// chaseValueLookup dereferences vl against root, following further
// ValueLookup indirection until a terminal node is reached. visited
// accumulates the dotted paths seen so far in this chain so a repeat
// triggers a CyclicReference error instead of infinite recursion.
func chaseValueLookup(root *ast.CfgMap, vl *ast.Node, visited []string) (*ast.Node, error) {
	dotted := vl.Path()
	for _, v := range visited {
		if v == dotted {
			return nil, errors.NewCyclicReference(vl.Origin, append(append([]string{}, visited...), dotted))
		}
	}
	visited = append(append([]string{}, visited...), dotted)

	target, err := GetConfigValue(root, vl.Segments, vl.Origin)
	if err != nil {
		return nil, err
	}
	if target.Kind == ast.ValueLookupKind {
		return chaseValueLookup(root, target, visited)
	}
	return target, nil
}
