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

// Walk traverses node in depth-first order, calling before(node) on entry
// and after(node) on exit. If before returns false, node's children are
// skipped (after is still called). Either callback may be nil.
//
// This mirrors cue/ast.Walk's before/after shape, narrowed to flexi_cfg's
// tagged Node instead of an interface hierarchy.
func Walk(node *Node, before func(*Node) bool, after func(*Node)) {
	if node == nil {
		return
	}
	visit := true
	if before != nil {
		visit = before(node)
	}
	if visit {
		switch node.Kind {
		case ListKind:
			for _, e := range node.Elements {
				Walk(e, before, after)
			}
		case StructKind, StructInProtoKind, ProtoKind:
			if node.Data != nil {
				node.Data.Each(func(_ string, child *Node) bool {
					Walk(child, before, after)
					return true
				})
			}
		case ReferenceKind:
			if node.Data != nil {
				node.Data.Each(func(_ string, child *Node) bool {
					Walk(child, before, after)
					return true
				})
			}
		case ExpressionKind:
			for _, l := range node.Lookups {
				Walk(l, before, after)
			}
		}
	}
	if after != nil {
		after(node)
	}
}

// NodeVisitor is the dump-time visitor interface, modeled on the original
// C++ implementation's visitor.h concepts (onKey/onValue/beginStruct/...)
// and adapted to Go idiom as a plain interface rather than a set of
// structural-typing concepts.
type NodeVisitor interface {
	OnKey(key string)
	OnValue(n *Node)
	BeginStruct()
	EndStruct()
	BeginList()
	EndList()
}

// WalkStruct drives v over the resolved (Value/List/Struct-only) subtree
// rooted at data, in CfgMap insertion order. It is used by reader.Dump and
// reader.DumpYAML to turn a resolved tree into an external format.
func WalkStruct(data *CfgMap, v NodeVisitor) {
	v.BeginStruct()
	data.Each(func(key string, n *Node) bool {
		v.OnKey(key)
		walkValue(n, v)
		return true
	})
	v.EndStruct()
}

func walkValue(n *Node, v NodeVisitor) {
	switch n.Kind {
	case StructKind:
		WalkStruct(n.Data, v)
	case ListKind:
		v.BeginList()
		for _, e := range n.Elements {
			walkValue(e, v)
		}
		v.EndList()
	default:
		v.OnValue(n)
	}
}
