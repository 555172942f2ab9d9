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
	"sort"
	"strings"

	"github.com/flexi-cfg/flexicfg/ast"
	"github.com/flexi-cfg/flexicfg/errors"
	"github.com/flexi-cfg/flexicfg/internal/expr"
)

// Resolve runs the full semantic resolution pipeline over the parsed
// documents of one top-level parse (one root file plus every
// file it transitively included) and the flat override map collected
// alongside them, producing the single merged, fully-resolved CfgMap a
// Reader is built from.
func Resolve(docs []*ast.CfgMap, overrides *ast.CfgMap) (*ast.CfgMap, error) {
	protos, err := CollectProtos(docs)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		if err := ResolveReferences(doc, protos, ast.NewCfgMap(), nil, nil); err != nil {
			return nil, err
		}
	}

	cfgData := ast.NewCfgMap()
	for _, doc := range docs {
		merged, err := MergeNestedMaps(cfgData, doc, nil)
		if err != nil {
			return nil, err
		}
		cfgData = merged
	}

	if overrides != nil && overrides.Len() > 0 {
		if err := ApplyOverrides(cfgData, overrides); err != nil {
			return nil, err
		}
	}

	StripProtos(cfgData, protos)

	if err := UnflattenTopLevel(cfgData); err != nil {
		return nil, err
	}

	if err := ResolveValueLookups(cfgData); err != nil {
		return nil, err
	}

	if err := EvaluateExpressions(cfgData); err != nil {
		return nil, err
	}

	Cleanup(cfgData, 0)

	return cfgData, nil
}

// CollectProtos walks every document collecting each Proto node, keyed by
// its fully dotted path. A proto path defined twice across the document
// set is a DuplicateKey error.
func CollectProtos(docs []*ast.CfgMap) (map[string]*ast.Node, error) {
	protos := map[string]*ast.Node{}
	var walkErr error

	var walk func(m *ast.CfgMap, path []string)
	walk = func(m *ast.CfgMap, path []string) {
		m.Each(func(k string, n *ast.Node) bool {
			if walkErr != nil {
				return false
			}
			childPath := append(append([]string{}, path...), k)
			if n.Kind == ast.ProtoKind {
				dotted := strings.Join(childPath, ".")
				if _, exists := protos[dotted]; exists {
					walkErr = errors.NewDuplicateKey(n.Origin, childPath)
					return false
				}
				protos[dotted] = n
			}
			if n.Kind.IsStructLike() && n.Data != nil {
				walk(n.Data, childPath)
			}
			return walkErr == nil
		})
	}
	for _, doc := range docs {
		walk(doc, nil)
		if walkErr != nil {
			return nil, walkErr
		}
	}
	return protos, nil
}

// ApplyOverrides applies override_values, a flat dotted-key-to-Node map, to
// cfgData in insertion order. Each override's path
// parent must already exist and be struct-like; if the leaf already
// exists its kind must match the override's (Number and Hex are treated
// as the same numeric kind for this check).
func ApplyOverrides(cfgData *ast.CfgMap, overrides *ast.CfgMap) error {
	var rangeErr error
	overrides.Each(func(dotted string, n *ast.Node) bool {
		segments := strings.Split(dotted, ".")
		parent, err := GetNestedConfig(cfgData, segments, n.Origin)
		if err != nil {
			rangeErr = err
			return false
		}
		last := segments[len(segments)-1]
		if existing, ok := parent.Get(last); ok {
			if !compatibleLeafKind(existing.Kind, n.Kind) {
				rangeErr = errors.NewMismatchType(n.Origin, segments, existing.Kind.String(), n.Kind.String())
				return false
			}
			parent.Replace(last, n)
		} else {
			parent.Insert(last, n)
		}
		return true
	})
	return rangeErr
}

func compatibleLeafKind(a, b ast.Kind) bool {
	numeric := func(k ast.Kind) bool { return k == ast.NumberKind || k == ast.HexKind }
	if numeric(a) && numeric(b) {
		return true
	}
	return a == b
}

// StripProtos removes every collected proto subtree from cfgData. Deletion
// happens deepest path first so a parent proto that
// contains a nested key matching another proto's path never tries to
// navigate through an already-removed node.
func StripProtos(cfgData *ast.CfgMap, protos map[string]*ast.Node) {
	paths := make([]string, 0, len(protos))
	for p := range protos {
		paths = append(paths, p)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	for _, dotted := range paths {
		removeDottedPath(cfgData, dotted)
	}
}

func removeDottedPath(root *ast.CfgMap, dotted string) {
	segments := strings.Split(dotted, ".")
	cur := root
	for i := 0; i < len(segments)-1; i++ {
		n, ok := cur.Get(segments[i])
		if !ok || n.Data == nil {
			return
		}
		cur = n.Data
	}
	cur.Delete(segments[len(segments)-1])
}

// UnflattenTopLevel expands any top-level key of cfgData that still
// contains a "." into its nested Struct form and merges the result back
// in. In practice the parser's flat-pair handling already unflattens
// dotted top-level pairs as they're parsed, so this pass exists to cover
// any dotted key a later pipeline step could in principle introduce,
// rather than to do real work on typical input.
func UnflattenTopLevel(cfgData *ast.CfgMap) error {
	var dotted []string
	for _, k := range cfgData.Keys {
		if strings.Contains(k, ".") {
			dotted = append(dotted, k)
		}
	}
	for _, k := range dotted {
		n, _ := cfgData.Get(k)
		cfgData.Delete(k)
		frag := ast.Unflatten(k, n, n.Origin, 0)
		merged, err := MergeNestedMaps(cfgData, frag, nil)
		if err != nil {
			return err
		}
		*cfgData = *merged
	}
	return nil
}

// EvaluateExpressions replaces every remaining Expression node reachable
// from root, including those nested in Lists, with the Value(Number) node
// produced by evaluating it. Expression nodes inside another Expression's
// Lookups map are evaluated earlier, by
// ResolveValueLookups, since that evaluation feeds the outer expression's
// own arithmetic.
func EvaluateExpressions(root *ast.CfgMap) error {
	return evaluateExpressionsInMap(root)
}

func evaluateExpressionsInMap(m *ast.CfgMap) error {
	for _, k := range append([]string{}, m.Keys...) {
		n, _ := m.Get(k)
		replaced, err := evaluateExpressionsInNode(n)
		if err != nil {
			return err
		}
		m.Replace(k, replaced)
	}
	return nil
}

func evaluateExpressionsInNode(n *ast.Node) (*ast.Node, error) {
	switch n.Kind {
	case ast.ExpressionKind:
		return evaluateExpressionNode(n)

	case ast.ListKind:
		for i, elem := range n.Elements {
			replaced, err := evaluateExpressionsInNode(elem)
			if err != nil {
				return nil, err
			}
			n.Elements[i] = replaced
		}
		if err := n.Revalidate(); err != nil {
			return nil, err
		}
		return n, nil

	case ast.StructKind, ast.StructInProtoKind, ast.ProtoKind, ast.ReferenceKind:
		if n.Data != nil {
			if err := evaluateExpressionsInMap(n.Data); err != nil {
				return nil, err
			}
		}
		return n, nil

	default:
		return n, nil
	}
}

// evaluateExpressionNode invokes internal/expr's shunting-yard evaluator
// on an Expression node whose Lookups have already been resolved to
// numeric terminals, and wraps the result back up as a Value(Number) node.
func evaluateExpressionNode(n *ast.Node) (*ast.Node, error) {
	d, err := expr.Evaluate(n.Raw, n.Lookups)
	if err != nil {
		return nil, errors.NewInvalidConfig(n.Origin, "evaluate expression %q: %v", n.Raw, err)
	}
	return ast.NewNumber(ast.NumberKind, d.String(), d, n.Origin), nil
}

// Cleanup drops empty Struct nodes and recomputes Depth to match each
// Struct's position in the final tree, undoing any drift left by proto
// stripping and reference materialization.
func Cleanup(m *ast.CfgMap, depth int) {
	for _, k := range append([]string{}, m.Keys...) {
		n, _ := m.Get(k)
		if n.Kind != ast.StructKind {
			continue
		}
		n.Depth = depth
		Cleanup(n.Data, depth+1)
		if n.Data.Len() == 0 {
			m.Delete(k)
		}
	}
}
