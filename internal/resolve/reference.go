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
	"github.com/flexi-cfg/flexicfg/literal"
	"github.com/flexi-cfg/flexicfg/parser"
)

// StructFromReference materializes a Reference into a concrete Struct: the
// reference's own `+key` additions seed the result, then every entry of
// the (already-cloned) proto's body is merged in, using the same
// collision rules as MergeNestedMaps.
func StructFromReference(ref *ast.Node, proto *ast.Node) (*ast.Node, error) {
	out := ast.NewStructLike(ast.StructKind, ref.Name, ref.Depth, ref.Origin)
	ref.Data.Each(func(k string, n *ast.Node) bool {
		out.Data.Insert(k, n)
		return true
	})

	var mergeErr error
	proto.Data.Each(func(k string, n *ast.Node) bool {
		existing, exists := out.Data.Get(k)
		if !exists {
			out.Data.Insert(k, n)
			return true
		}
		merged, err := mergeCollision(existing, n, []string{ref.Name, k})
		if err != nil {
			mergeErr = err
			return false
		}
		out.Data.Replace(k, merged)
		return true
	})
	if mergeErr != nil {
		return nil, mergeErr
	}
	return out, nil
}

// mergeRefVars combines a reference's inherited ref_vars (from an
// enclosing reference, when the proto it instantiates itself contains
// nested references) with its own `$VAR = value` bindings. The reference's
// own bindings win on collision.
func mergeRefVars(caller, callee *ast.CfgMap) *ast.CfgMap {
	out := ast.NewCfgMap()
	if caller != nil {
		caller.Each(func(k string, v *ast.Node) bool {
			out.Insert(k, v)
			return true
		})
	}
	if callee != nil {
		callee.Each(func(k string, v *ast.Node) bool {
			if !out.Insert(k, v) {
				out.Replace(k, v)
			}
			return true
		})
	}
	return out
}

// ReplaceProtoVar substitutes every Var node and every "$NAME"/"${NAME}"
// occurrence reachable from n with its binding in refVars. It returns the
// node to use in n's place: usually n itself, mutated, but
// a Var node is replaced outright by its bound value.
func ReplaceProtoVar(n *ast.Node, refVars *ast.CfgMap) (*ast.Node, error) {
	switch n.Kind {
	case ast.VarKind:
		bound, ok := refVars.Get(n.Name)
		if !ok {
			return nil, errors.NewUndefinedReferenceVar(n.Origin, n.Name)
		}
		return bound, nil

	case ast.StringKind:
		substituted, changed := substituteVars(n.Raw, refVars)
		if !changed {
			return n, nil
		}
		out := *n
		out.Raw = substituted
		return &out, nil

	case ast.ValueLookupKind:
		changed := false
		segments := make([]string, len(n.Segments))
		for i, seg := range n.Segments {
			if seg != "" && literal.IsVarStart(seg[0]) {
				if v, ok := refVars.Get(seg); ok {
					segments[i] = textPayload(v)
					changed = true
					continue
				}
			}
			segments[i] = seg
		}
		if !changed {
			return n, nil
		}
		return ast.NewValueLookup(segments, n.Origin), nil

	case ast.ExpressionKind:
		substituted, changed := substituteVars(n.Raw, refVars)
		cur := n
		if changed {
			if hasUnresolvedVarMarker(substituted) {
				return nil, errors.NewInvalidConfig(n.Origin, "unresolved reference variable in expression %q", substituted)
			}
			cur = parser.NewExpression(substituted, n.Origin)
		}
		for text, lk := range cur.Lookups {
			replaced, err := ReplaceProtoVar(lk, refVars)
			if err != nil {
				return nil, err
			}
			cur.Lookups[text] = replaced
		}
		return cur, nil

	case ast.ListKind:
		for i, elem := range n.Elements {
			replaced, err := ReplaceProtoVar(elem, refVars)
			if err != nil {
				return nil, err
			}
			n.Elements[i] = replaced
		}
		if err := n.Revalidate(); err != nil {
			return nil, err
		}
		return n, nil

	case ast.StructKind, ast.StructInProtoKind, ast.ProtoKind:
		if err := replaceProtoVarInMap(n.Data, refVars); err != nil {
			return nil, err
		}
		return n, nil

	case ast.ReferenceKind:
		// A reference nested inside a proto may itself bind ref_vars in
		// terms of the enclosing proto's vars (e.g. "$CHILD = $PARENT"), so
		// RefVars needs substitution here too, ahead of ResolveReferences
		// later materializing this reference with its own bindings.
		if err := replaceProtoVarInMap(n.Data, refVars); err != nil {
			return nil, err
		}
		if err := replaceProtoVarInMap(n.RefVars, refVars); err != nil {
			return nil, err
		}
		return n, nil

	default:
		return n, nil
	}
}

func replaceProtoVarInMap(m *ast.CfgMap, refVars *ast.CfgMap) error {
	for _, k := range append([]string{}, m.Keys...) {
		child, _ := m.Get(k)
		replaced, err := ReplaceProtoVar(child, refVars)
		if err != nil {
			return err
		}
		m.Replace(k, replaced)
	}
	return nil
}

// substituteVars performs naive textual replacement of "$NAME" and
// "${NAME}" occurrences in raw with their ref_vars binding's text form,
// with no regard for whether the occurrence sits inside a "$(...)" value
// lookup: a bound value that itself contains "$(...)" text is exactly how
// a substitution is meant to expose a brand-new value lookup for the
// subsequent reparse to discover.
func substituteVars(raw string, refVars *ast.CfgMap) (string, bool) {
	var b strings.Builder
	changed := false
	i := 0
	for i < len(raw) {
		if raw[i] == '$' && i+1 < len(raw) {
			if raw[i+1] == '{' {
				if end := strings.IndexByte(raw[i+2:], '}'); end >= 0 {
					name := raw[i+2 : i+2+end]
					if v, ok := refVars.Get(name); ok {
						b.WriteString(textPayload(v))
						changed = true
						i = i + 2 + end + 1
						continue
					}
				}
			} else if literal.IsVarStart(raw[i+1]) {
				j := i + 1
				for j < len(raw) && literal.IsVarPart(raw[j]) {
					j++
				}
				name := raw[i+1 : j]
				if v, ok := refVars.Get(name); ok {
					b.WriteString(textPayload(v))
					changed = true
					i = j
					continue
				}
			}
		}
		b.WriteByte(raw[i])
		i++
	}
	return b.String(), changed
}

// hasUnresolvedVarMarker reports whether raw still contains a "$NAME" or
// "${NAME}" marker after substitution, skipping over "$(...)" value-lookup
// syntax, which is expected to survive this pass.
func hasUnresolvedVarMarker(raw string) bool {
	i := 0
	for i < len(raw) {
		if raw[i] == '$' && i+1 < len(raw) {
			switch {
			case raw[i+1] == '(':
				j := i + 2
				for j < len(raw) && raw[j] != ')' {
					j++
				}
				i = j + 1
				continue
			case raw[i+1] == '{':
				return true
			case literal.IsVarStart(raw[i+1]):
				return true
			}
		}
		i++
	}
	return false
}

// textPayload renders a ref_vars binding's value as the text to splice
// into a substitution site: a String's value with its quotes stripped, or
// a Number/Hex/Boolean's raw literal text unchanged.
func textPayload(n *ast.Node) string {
	if n.Kind == ast.StringKind {
		return literal.Unquote(n.Raw)
	}
	return n.Raw
}

// ResolveReferences walks m (one document's top-level CfgMap, or a
// Struct's nested data) replacing every Reference it finds with its
// materialized Struct, substituting proto variables along the way, and
// recursing into the result to resolve references nested inside protos.
// Proto nodes are left untouched in place so StripProtos can remove them
// in a later pass.
func ResolveReferences(m *ast.CfgMap, protos map[string]*ast.Node, refVars *ast.CfgMap, referencedProtos []string, path []string) error {
	for _, k := range append([]string{}, m.Keys...) {
		n, _ := m.Get(k)
		childPath := append(append([]string{}, path...), k)

		switch n.Kind {
		case ast.ProtoKind:
			continue

		case ast.ReferenceKind:
			proto, ok := protos[n.RefProto]
			if !ok {
				return errors.NewUndefinedProto(n.Origin, n.RefProto)
			}
			for _, seen := range referencedProtos {
				if seen == n.RefProto {
					return errors.NewCyclicReference(n.Origin, append(append([]string{}, referencedProtos...), n.RefProto))
				}
			}
			materialized, err := StructFromReference(n, proto.Clone())
			if err != nil {
				return err
			}
			combinedVars := mergeRefVars(refVars, n.RefVars)
			replaced, err := ReplaceProtoVar(materialized, combinedVars)
			if err != nil {
				return err
			}
			m.Replace(k, replaced)
			nested := append(append([]string{}, referencedProtos...), n.RefProto)
			if err := ResolveReferences(replaced.Data, protos, combinedVars, nested, childPath); err != nil {
				return err
			}

		case ast.StructInProtoKind:
			replaced, err := ReplaceProtoVar(n, refVars)
			if err != nil {
				return err
			}
			m.Replace(k, replaced)
			if err := ResolveReferences(replaced.Data, protos, refVars, referencedProtos, childPath); err != nil {
				return err
			}

		case ast.StructKind:
			if err := ResolveReferences(n.Data, protos, refVars, referencedProtos, childPath); err != nil {
				return err
			}
		}
	}
	return nil
}
