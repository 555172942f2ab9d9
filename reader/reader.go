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

package reader

import (
	"encoding/json"
	"io"
	"reflect"
	"strings"

	"github.com/flexi-cfg/flexicfg/ast"
	"github.com/flexi-cfg/flexicfg/errors"
	"github.com/flexi-cfg/flexicfg/internal/resolve"
	"github.com/flexi-cfg/flexicfg/literal"
	"github.com/flexi-cfg/flexicfg/token"
	"github.com/mitchellh/mapstructure"
)

// Reader is a read-only façade over a resolved CfgMap. Sub-readers
// produced by Get[*Reader] carry a dotted prefix purely so
// their error messages report the full path back to the original root,
// even though lookups run directly against the sub-tree's own data.
type Reader struct {
	data   *ast.CfgMap
	prefix string
}

// New wraps a resolved CfgMap in a Reader.
func New(data *ast.CfgMap) *Reader {
	return &Reader{data: data}
}

func (r *Reader) childPath(segments []string) []string {
	if r.prefix == "" {
		return segments
	}
	return append(strings.Split(r.prefix, "."), segments...)
}

func (r *Reader) join(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + "." + key
}

// Exists reports whether key resolves to a Node, returning false (rather
// than an error) on any InvalidKey/InvalidType along the path.
func (r *Reader) Exists(key string) bool {
	_, err := resolve.GetConfigValue(r.data, strings.Split(key, "."), token.NoPos)
	return err == nil
}

// Keys returns the top-level segment names, in source insertion order.
func (r *Reader) Keys() []string {
	return append([]string(nil), r.data.Keys...)
}

// Type returns the Kind of the node at key.
func (r *Reader) Type(key string) (ast.Kind, error) {
	n, err := resolve.GetConfigValue(r.data, strings.Split(key, "."), token.NoPos)
	if err != nil {
		return ast.InvalidKind, err
	}
	return n.Kind, nil
}

var readerType = reflect.TypeOf((*Reader)(nil))

// Get resolves key and converts the Node found there to T, unifying what
// would otherwise be a get<T>/get<Vec<T>>/get<[T;N]>/get<Reader> family of
// overloads into a single generic function dispatched via reflection on T:
//
//   - string requires a String node, returned with its quotes stripped.
//   - bool requires a Boolean node.
//   - any float or signed integer type requires a Number or Hex node;
//     unsigned integer types are not supported.
//   - *Reader requires a Struct node.
//   - a slice type requires a List node; each element converts as T's
//     element type.
//   - an array type additionally requires the List's length to match the
//     array's length.
func Get[T any](r *Reader, key string) (T, error) {
	var zero T
	segments := strings.Split(key, ".")
	n, err := resolve.GetConfigValue(r.data, segments, token.NoPos)
	if err != nil {
		return zero, err
	}
	v, err := nodeToReflect(n, reflect.TypeOf(zero), r.childPath(segments))
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func nodeToReflect(n *ast.Node, rt reflect.Type, path []string) (interface{}, error) {
	if rt == readerType {
		if n.Kind != ast.StructKind {
			return nil, errors.NewInvalidType(n.Origin, path, "expected %q to be a struct, found %s", strings.Join(path, "."), n.Kind)
		}
		return &Reader{data: n.Data, prefix: strings.Join(path, ".")}, nil
	}

	switch rt.Kind() {
	case reflect.String:
		if n.Kind != ast.StringKind {
			return nil, errors.NewInvalidType(n.Origin, path, "expected %q to be a string, found %s", strings.Join(path, "."), n.Kind)
		}
		return literal.Unquote(n.Raw), nil

	case reflect.Bool:
		if n.Kind != ast.BooleanKind {
			return nil, errors.NewInvalidType(n.Origin, path, "expected %q to be a boolean, found %s", strings.Join(path, "."), n.Kind)
		}
		return n.Bool, nil

	case reflect.Float32, reflect.Float64:
		if n.Kind != ast.NumberKind && n.Kind != ast.HexKind {
			return nil, errors.NewInvalidType(n.Origin, path, "expected %q to be a number, found %s", strings.Join(path, "."), n.Kind)
		}
		f, err := n.Number.Float64()
		if err != nil {
			return nil, errors.NewInvalidType(n.Origin, path, "number at %q out of range: %v", strings.Join(path, "."), err)
		}
		return reflect.ValueOf(f).Convert(rt).Interface(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n.Kind != ast.NumberKind && n.Kind != ast.HexKind {
			return nil, errors.NewInvalidType(n.Origin, path, "expected %q to be a number, found %s", strings.Join(path, "."), n.Kind)
		}
		i, err := n.Number.Int64()
		if err != nil {
			return nil, errors.NewInvalidType(n.Origin, path, "number at %q is not an integer: %v", strings.Join(path, "."), err)
		}
		return reflect.ValueOf(i).Convert(rt).Interface(), nil

	case reflect.Slice:
		if n.Kind != ast.ListKind {
			return nil, errors.NewInvalidType(n.Origin, path, "expected %q to be a list, found %s", strings.Join(path, "."), n.Kind)
		}
		out := reflect.MakeSlice(rt, 0, len(n.Elements))
		for _, elem := range n.Elements {
			ev, err := nodeToReflect(elem, rt.Elem(), path)
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, reflect.ValueOf(ev))
		}
		return out.Interface(), nil

	case reflect.Array:
		if n.Kind != ast.ListKind {
			return nil, errors.NewInvalidType(n.Origin, path, "expected %q to be a list, found %s", strings.Join(path, "."), n.Kind)
		}
		if rt.Len() != len(n.Elements) {
			return nil, errors.NewInvalidType(n.Origin, path, "list at %q has %d elements, want %d", strings.Join(path, "."), len(n.Elements), rt.Len())
		}
		out := reflect.New(rt).Elem()
		for i, elem := range n.Elements {
			ev, err := nodeToReflect(elem, rt.Elem(), path)
			if err != nil {
				return nil, err
			}
			out.Index(i).Set(reflect.ValueOf(ev))
		}
		return out.Interface(), nil

	default:
		return nil, errors.NewInvalidState(n.Origin, "reader: unsupported Get type %s", rt)
	}
}

// FindStructsWithKey enumerates the dotted path of every Struct reachable
// from r whose immediate data contains key.
func (r *Reader) FindStructsWithKey(key string) []string {
	var out []string
	var walk func(m *ast.CfgMap, path []string)
	walk = func(m *ast.CfgMap, path []string) {
		if m.Has(key) {
			out = append(out, strings.Join(path, "."))
		}
		m.Each(func(k string, n *ast.Node) bool {
			if n.Kind == ast.StructKind {
				walk(n.Data, append(append([]string{}, path...), k))
			}
			return true
		})
	}
	walk(r.data, nil)
	return out
}

// Merge destructively deep-merges other into r: for each key in other,
// overwrite r's value or, if both sides are Structs, recurse. other wins
// on any scalar collision, with no kind compatibility requirement.
func (r *Reader) Merge(other *Reader) {
	mergeOverwrite(r.data, other.data)
}

func mergeOverwrite(dst, src *ast.CfgMap) {
	src.Each(func(k string, sn *ast.Node) bool {
		dn, exists := dst.Get(k)
		switch {
		case exists && dn.Kind == ast.StructKind && sn.Kind == ast.StructKind:
			mergeOverwrite(dn.Data, sn.Data)
		case exists:
			dst.Replace(k, sn)
		default:
			dst.Insert(k, sn)
		}
		return true
	})
}

// ApplyOverlay strictly merges other into r: every key in other must
// already exist in r at the same path with the same Kind. A scalar or
// List value is replaced outright; a Struct recurses. A key missing from
// r is InvalidKey; a Kind mismatch is MismatchType.
func (r *Reader) ApplyOverlay(other *Reader) error {
	return applyOverlay(r.data, other.data, nil)
}

func applyOverlay(dst, src *ast.CfgMap, path []string) error {
	var rangeErr error
	src.Each(func(k string, sn *ast.Node) bool {
		childPath := append(append([]string{}, path...), k)
		dn, exists := dst.Get(k)
		if !exists {
			rangeErr = errors.NewInvalidKey(sn.Origin, childPath)
			return false
		}
		if dn.Kind != sn.Kind {
			rangeErr = errors.NewMismatchType(sn.Origin, childPath, dn.Kind.String(), sn.Kind.String())
			return false
		}
		if sn.Kind == ast.StructKind {
			if err := applyOverlay(dn.Data, sn.Data, childPath); err != nil {
				rangeErr = err
				return false
			}
			return true
		}
		dst.Replace(k, sn)
		return true
	})
	return rangeErr
}

// Equal reports whether r and other are structurally identical,
// order-sensitively, over every reachable Node.
func (r *Reader) Equal(other *Reader) bool {
	return ast.EqualMaps(r.data, other.data)
}

// Decode populates out, a pointer to a tagged Go struct, from r's data via
// mapstructure: the natural generalization of the typed Get family once a
// Reader is a generic tree, rather than one Get call per field.
func (r *Reader) Decode(out interface{}) error {
	b, err := json.Marshal(toPlainTree(r.data))
	if err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	return mapstructure.Decode(m, out)
}

// Dump writes r's tree as indented JSON to w.
func (r *Reader) Dump(w io.Writer) error {
	return Dump(r.data, w)
}

// DumpYAML writes r's tree as YAML to w.
func (r *Reader) DumpYAML(w io.Writer) error {
	return DumpYAML(r.data, w)
}
