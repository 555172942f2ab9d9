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

// Package reader implements the read-only façade over a resolved
// configuration tree, plus visitor-based debug dump operations to JSON and
// YAML.
package reader

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/flexi-cfg/flexicfg/ast"
	"github.com/flexi-cfg/flexicfg/literal"
	"gopkg.in/yaml.v3"
)

// kv is one entry of an orderedMap, preserving the source order that a
// plain map[string]interface{} would lose to Go's randomized map iteration
// and encoding/json's and yaml.v3's alphabetical key sorting.
type kv struct {
	Key   string
	Value interface{}
}

// orderedMap renders as a JSON or YAML mapping with its entries in
// insertion order rather than sorted by key.
type orderedMap []kv

func (m orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m orderedMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range m {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(e.Key); err != nil {
			return nil, err
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(e.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// Dump writes data as indented JSON to w.
func Dump(data *ast.CfgMap, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toPlainTree(data))
}

// DumpYAML writes data as YAML to w.
func DumpYAML(data *ast.CfgMap, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(toPlainTree(data)); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// toPlainTree converts a resolved CfgMap into an orderedMap/[]interface{}/
// scalar tree, via the ast.NodeVisitor interface ast.WalkStruct drives.
// orderedMap keeps struct fields in source order through both encoders;
// a plain map[string]interface{} would lose it to alphabetical sorting.
func toPlainTree(data *ast.CfgMap) interface{} {
	v := &treeVisitor{}
	ast.WalkStruct(data, v)
	return v.result
}

// treeVisitor implements ast.NodeVisitor, reconstructing the nested
// map/slice/scalar shape of the config tree it's walked over. Structs and
// lists are held as *orderedMap / *[]interface{} while under construction;
// when one ends, its completed plain value replaces the placeholder entry
// attached to its parent container (or becomes the result at the root).
type treeVisitor struct {
	containers []interface{}
	keys       []string
	result     interface{}
}

func (v *treeVisitor) BeginStruct() {
	m := &orderedMap{}
	v.attach(m)
	v.containers = append(v.containers, m)
}

func (v *treeVisitor) EndStruct() { v.end() }

func (v *treeVisitor) BeginList() {
	lst := &[]interface{}{}
	v.attach(lst)
	v.containers = append(v.containers, lst)
}

func (v *treeVisitor) EndList() { v.end() }

func (v *treeVisitor) end() {
	top := v.containers[len(v.containers)-1]
	v.containers = v.containers[:len(v.containers)-1]
	if len(v.containers) == 0 {
		v.result = v.unwrap(top)
		return
	}
	switch parent := v.containers[len(v.containers)-1].(type) {
	case *orderedMap:
		(*parent)[len(*parent)-1].Value = v.unwrap(top)
	case *[]interface{}:
		(*parent)[len(*parent)-1] = v.unwrap(top)
	}
}

func (v *treeVisitor) unwrap(val interface{}) interface{} {
	switch t := val.(type) {
	case *[]interface{}:
		return *t
	case *orderedMap:
		return *t
	default:
		return val
	}
}

func (v *treeVisitor) OnKey(key string) {
	v.keys = append(v.keys, key)
}

func (v *treeVisitor) OnValue(n *ast.Node) {
	v.attach(scalarValue(n))
}

func (v *treeVisitor) attach(val interface{}) {
	if len(v.containers) == 0 {
		v.result = v.unwrap(val)
		return
	}
	switch top := v.containers[len(v.containers)-1].(type) {
	case *orderedMap:
		key := v.keys[len(v.keys)-1]
		v.keys = v.keys[:len(v.keys)-1]
		*top = append(*top, kv{Key: key, Value: v.unwrap(val)})
	case *[]interface{}:
		*top = append(*top, v.unwrap(val))
	}
}

// scalarValue renders a Value node as the plain Go value it stands for:
// a String's text with its quotes stripped, a Boolean's bool, and a
// Number/Hex's float64.
func scalarValue(n *ast.Node) interface{} {
	switch n.Kind {
	case ast.StringKind:
		return literal.Unquote(n.Raw)
	case ast.BooleanKind:
		return n.Bool
	case ast.NumberKind, ast.HexKind:
		f, err := n.Number.Float64()
		if err != nil {
			return n.Raw
		}
		return f
	default:
		return n.Raw
	}
}
