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

// Package ast declares the single tagged-union Node type that represents
// every value in a flexi_cfg document, plus CfgMap, the insertion-ordered
// container Nodes nest in.
//
// Earlier implementations of this data model used a class hierarchy with
// virtual stream/clone methods per node kind. Go has no sum types, so that
// becomes a single Node struct carrying a Kind discriminant plus every
// variant's payload fields; callers switch on Kind rather than on dynamic
// type.
package ast

import (
	"github.com/cockroachdb/apd/v3"
	"github.com/flexi-cfg/flexicfg/token"
)

// Kind discriminates the variant a Node holds.
type Kind int

const (
	InvalidKind Kind = iota
	StringKind
	NumberKind
	HexKind
	BooleanKind
	ListKind
	ExpressionKind
	ValueLookupKind
	VarKind
	StructKind
	StructInProtoKind
	ProtoKind
	ReferenceKind
)

func (k Kind) String() string {
	switch k {
	case StringKind:
		return "String"
	case NumberKind:
		return "Number"
	case HexKind:
		return "Hex"
	case BooleanKind:
		return "Boolean"
	case ListKind:
		return "List"
	case ExpressionKind:
		return "Expression"
	case ValueLookupKind:
		return "ValueLookup"
	case VarKind:
		return "Var"
	case StructKind:
		return "Struct"
	case StructInProtoKind:
		return "StructInProto"
	case ProtoKind:
		return "Proto"
	case ReferenceKind:
		return "Reference"
	}
	return "Invalid"
}

// IsValue reports whether k is one of the scalar Value kinds
// (String/Number/Hex/Boolean).
func (k Kind) IsValue() bool {
	switch k {
	case StringKind, NumberKind, HexKind, BooleanKind:
		return true
	}
	return false
}

// IsStructLike reports whether k nests a CfgMap of children
// (Struct/StructInProto/Proto/Reference).
func (k Kind) IsStructLike() bool {
	switch k {
	case StructKind, StructInProtoKind, ProtoKind, ReferenceKind:
		return true
	}
	return false
}

// Node is the tagged union for every value in a flexi_cfg document. Only
// the fields relevant to Kind are meaningful; see the field comments below
// for which fields each variant uses.
type Node struct {
	Kind   Kind
	Origin token.Position

	// Value(String/Number/Hex): Raw holds the literal text exactly as
	// written (quotes included for strings, "0x..." for hex), so formatting
	// round-trips losslessly. Expression: Raw holds the source text between
	// {{ and }}.
	Raw string

	// Value(Number/Hex): the parsed numeric payload. Kept as an
	// arbitrary-precision decimal rather than float64 so integers and hex
	// values round-trip exactly.
	Number *apd.Decimal

	// Value(Boolean): the parsed payload.
	Bool bool

	// List: ordered elements and the kind every element must share.
	// ElementType is set from the first concrete
	// (non Var/ValueLookup/Expression) element and is InvalidKind for an
	// empty list not yet given one.
	Elements    []*Node
	ElementType Kind

	// Expression: the ValueLookup nodes embedded in Raw, keyed by their
	// literal "$(...)" text as encountered during parsing.
	Lookups map[string]*Node

	// ValueLookup: the non-empty ordered key-segment path, e.g.
	// ["a", "b", "c"] for $(a.b.c).
	Segments []string

	// Var: the bare identifier name (without the leading $ or braces).
	// Struct/StructInProto/Proto/Reference: the construct's own name.
	Name string

	// Struct/StructInProto/Proto/Reference: lexical nesting depth.
	Depth int

	// Struct/StructInProto/Proto: the node's children.
	// Reference: the `+key = value` additions only (materialized into the
	// resulting Struct's children by struct_from_reference).
	Data *CfgMap

	// Reference: the dotted path of the Proto this reference instantiates.
	RefProto string

	// Reference: `$VAR = value` bindings keyed by the bare variable name,
	// seeded with "PARENT_NAME" bound to the reference's own Name.
	RefVars *CfgMap
}

// NewString creates a Value(String) Node. raw includes the surrounding
// quotes, matching how the scanner returns STRING literals.
func NewString(raw string, pos token.Position) *Node {
	return &Node{Kind: StringKind, Raw: raw, Origin: pos}
}

// NewNumber creates a Value(Number) or Value(Hex) Node from raw literal
// text and its parsed decimal value.
func NewNumber(kind Kind, raw string, n *apd.Decimal, pos token.Position) *Node {
	return &Node{Kind: kind, Raw: raw, Number: n, Origin: pos}
}

// NewBool creates a Value(Boolean) Node.
func NewBool(b bool, pos token.Position) *Node {
	raw := "false"
	if b {
		raw = "true"
	}
	return &Node{Kind: BooleanKind, Bool: b, Raw: raw, Origin: pos}
}

// NewList creates an empty List Node ready to have elements appended via
// AppendElement.
func NewList(pos token.Position) *Node {
	return &Node{Kind: ListKind, ElementType: InvalidKind, Origin: pos}
}

// AppendElement appends elem, enforcing list homogeneity: the first
// concrete element fixes ElementType, and later concrete elements must
// match it. Var, ValueLookup, and Expression elements are "opaque" and do
// not constrain or get constrained by ElementType.
func (n *Node) AppendElement(elem *Node) error {
	if n.Kind != ListKind {
		panic("AppendElement on non-List node")
	}
	if isOpaque(elem.Kind) {
		n.Elements = append(n.Elements, elem)
		return nil
	}
	if n.ElementType == InvalidKind {
		n.ElementType = elem.Kind
	} else if n.ElementType != elem.Kind {
		return &ElementTypeMismatch{Want: n.ElementType, Got: elem.Kind, Pos: elem.Origin}
	}
	n.Elements = append(n.Elements, elem)
	return nil
}

func isOpaque(k Kind) bool {
	return k == VarKind || k == ValueLookupKind || k == ExpressionKind
}

// Revalidate re-checks list homogeneity after in-place substitution (e.g.
// proto variable substitution resolving a Var element into a concrete
// value). It recomputes ElementType from scratch.
func (n *Node) Revalidate() error {
	if n.Kind != ListKind {
		panic("Revalidate on non-List node")
	}
	n.ElementType = InvalidKind
	for _, elem := range n.Elements {
		if isOpaque(elem.Kind) {
			continue
		}
		if n.ElementType == InvalidKind {
			n.ElementType = elem.Kind
		} else if n.ElementType != elem.Kind {
			return &ElementTypeMismatch{Want: n.ElementType, Got: elem.Kind, Pos: elem.Origin}
		}
	}
	return nil
}

// ElementTypeMismatch is returned by AppendElement/Revalidate when a List's
// elements do not share one concrete Kind.
type ElementTypeMismatch struct {
	Want, Got Kind
	Pos       token.Position
}

func (e *ElementTypeMismatch) Error() string {
	return e.Pos.String() + ": list element type mismatch: want " + e.Want.String() + ", got " + e.Got.String()
}

// NewExpression creates an Expression Node from its raw {{ ... }} source
// text; embedded ValueLookup nodes are attached afterward via SetLookup.
func NewExpression(raw string, pos token.Position) *Node {
	return &Node{Kind: ExpressionKind, Raw: raw, Lookups: map[string]*Node{}, Origin: pos}
}

// SetLookup registers a ValueLookup node encountered while parsing an
// Expression, keyed by its literal "$(...)" text.
func (n *Node) SetLookup(text string, lookup *Node) {
	if n.Lookups == nil {
		n.Lookups = map[string]*Node{}
	}
	n.Lookups[text] = lookup
}

// NewValueLookup creates a ValueLookup Node for the dotted path segments.
func NewValueLookup(segments []string, pos token.Position) *Node {
	return &Node{Kind: ValueLookupKind, Segments: append([]string(nil), segments...), Origin: pos}
}

// Path renders a ValueLookup's segments as a dotted string, e.g. "a.b.c".
func (n *Node) Path() string {
	out := ""
	for i, s := range n.Segments {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}

// NewVar creates a Var Node for the formal parameter named name.
func NewVar(name string, pos token.Position) *Node {
	return &Node{Kind: VarKind, Name: name, Origin: pos}
}

// NewStructLike creates an empty Struct, StructInProto, or Proto node.
func NewStructLike(kind Kind, name string, depth int, pos token.Position) *Node {
	if !kind.IsStructLike() || kind == ReferenceKind {
		panic("NewStructLike requires Struct, StructInProto, or Proto")
	}
	return &Node{Kind: kind, Name: name, Depth: depth, Data: NewCfgMap(), Origin: pos}
}

// NewReference creates an empty Reference node instantiating protoPath,
// seeding RefVars with the key "PARENT_NAME" bound to name.
func NewReference(name, protoPath string, depth int, pos token.Position) *Node {
	n := &Node{
		Kind:     ReferenceKind,
		Name:     name,
		RefProto: protoPath,
		Depth:    depth,
		Data:     NewCfgMap(),
		RefVars:  NewCfgMap(),
		Origin:   pos,
	}
	n.RefVars.Insert("PARENT_NAME", NewString(`"`+name+`"`, pos))
	return n
}

// CfgMap is the insertion-ordered string-to-Node container: keys iterate in
// the order they were first inserted, and keys within one CfgMap are
// unique.
type CfgMap struct {
	// Keys holds the segment names in insertion order.
	Keys []string
	// Nodes maps a segment name to its Node.
	Nodes map[string]*Node
}

// NewCfgMap returns an empty CfgMap.
func NewCfgMap() *CfgMap {
	return &CfgMap{Nodes: map[string]*Node{}}
}

// Len returns the number of entries.
func (c *CfgMap) Len() int { return len(c.Keys) }

// Has reports whether key is present.
func (c *CfgMap) Has(key string) bool {
	_, ok := c.Nodes[key]
	return ok
}

// Get returns the Node at key and whether it was present.
func (c *CfgMap) Get(key string) (*Node, bool) {
	n, ok := c.Nodes[key]
	return n, ok
}

// Insert adds key->n, appending key to the insertion order. It reports
// false without modifying c if key is already present; callers translate
// that into a DuplicateKey error with position context.
func (c *CfgMap) Insert(key string, n *Node) bool {
	if c.Nodes == nil {
		c.Nodes = map[string]*Node{}
	}
	if _, exists := c.Nodes[key]; exists {
		return false
	}
	c.Keys = append(c.Keys, key)
	c.Nodes[key] = n
	return true
}

// Replace overwrites the Node stored at an existing key, preserving its
// position in the insertion order. It reports false if key is absent.
func (c *CfgMap) Replace(key string, n *Node) bool {
	if _, exists := c.Nodes[key]; !exists {
		return false
	}
	c.Nodes[key] = n
	return true
}

// Delete removes key entirely, including from the insertion order.
func (c *CfgMap) Delete(key string) bool {
	if _, exists := c.Nodes[key]; !exists {
		return false
	}
	delete(c.Nodes, key)
	for i, k := range c.Keys {
		if k == key {
			c.Keys = append(c.Keys[:i], c.Keys[i+1:]...)
			break
		}
	}
	return true
}

// Each iterates entries in insertion order, stopping early if f returns
// false.
func (c *CfgMap) Each(f func(key string, n *Node) bool) {
	for _, k := range c.Keys {
		if !f(k, c.Nodes[k]) {
			return
		}
	}
}
