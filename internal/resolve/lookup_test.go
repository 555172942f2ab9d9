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
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/flexi-cfg/flexicfg/ast"
	"github.com/flexi-cfg/flexicfg/errors"
	"github.com/flexi-cfg/flexicfg/token"
)

func TestGetNestedConfigWalksIntermediateStructs(t *testing.T) {
	root := ast.NewCfgMap()
	inner := structWith("inner", map[string]*ast.Node{"v": ast.NewBool(true, token.NoPos)})
	root.Insert("outer", structWith("outer", map[string]*ast.Node{"inner": inner}))

	parent, err := GetNestedConfig(root, []string{"outer", "inner", "v"}, token.NoPos)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(parent.Has("v")))
}

func TestGetNestedConfigMissingSegmentIsInvalidKey(t *testing.T) {
	root := ast.NewCfgMap()
	_, err := GetNestedConfig(root, []string{"missing", "v"}, token.NoPos)
	qt.Assert(t, qt.ErrorIs(err, errors.ErrInvalidKey))
}

func TestGetNestedConfigScalarInMiddleIsInvalidType(t *testing.T) {
	root := ast.NewCfgMap()
	root.Insert("x", ast.NewBool(true, token.NoPos))
	_, err := GetNestedConfig(root, []string{"x", "v"}, token.NoPos)
	qt.Assert(t, qt.ErrorIs(err, errors.ErrInvalidType))
}

func TestResolveValueLookupsFollowsChain(t *testing.T) {
	root := ast.NewCfgMap()
	root.Insert("a", ast.NewNumber(ast.NumberKind, "1", nil, token.NoPos))
	root.Insert("b", ast.NewValueLookup([]string{"a"}, token.NoPos))
	root.Insert("c", ast.NewValueLookup([]string{"b"}, token.NoPos))

	err := ResolveValueLookups(root)
	qt.Assert(t, qt.IsNil(err))

	b, _ := root.Get("b")
	qt.Assert(t, qt.Equals(b.Kind, ast.NumberKind))
	c, _ := root.Get("c")
	qt.Assert(t, qt.Equals(c.Kind, ast.NumberKind))
}

func TestResolveValueLookupsCyclic(t *testing.T) {
	root := ast.NewCfgMap()
	root.Insert("foo", ast.NewValueLookup([]string{"bar"}, token.NoPos))
	root.Insert("bar", ast.NewValueLookup([]string{"baz"}, token.NoPos))
	root.Insert("baz", ast.NewValueLookup([]string{"foo"}, token.NoPos))

	err := ResolveValueLookups(root)
	qt.Assert(t, qt.ErrorIs(err, errors.ErrCyclicReference))
}
