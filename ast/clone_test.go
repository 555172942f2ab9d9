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
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/go-quicktest/qt"

	"github.com/flexi-cfg/flexicfg/token"
)

func TestCloneIsIndependent(t *testing.T) {
	proto := NewStructLike(ProtoKind, "p", 0, token.NoPos)
	proto.Data.Insert("x", NewBool(true, token.NoPos))
	proto.Data.Insert("nested", NewStructLike(StructInProtoKind, "nested", 1, token.NoPos))

	clone := proto.Clone()
	qt.Assert(t, qt.IsTrue(Equal(proto, clone)))

	clone.Data.Replace("x", NewBool(false, token.NoPos))
	nested, _ := clone.Data.Get("nested")
	nested.Data.Insert("y", NewBool(true, token.NoPos))

	orig, _ := proto.Data.Get("x")
	qt.Assert(t, qt.IsTrue(orig.Bool))
	origNested, _ := proto.Data.Get("nested")
	qt.Assert(t, qt.Equals(origNested.Data.Len(), 0))
}

func TestCloneDecimalIndependent(t *testing.T) {
	d, _, err := apd.NewFromString("3.14")
	qt.Assert(t, qt.IsNil(err))
	n := NewNumber(NumberKind, "3.14", d, token.NoPos)

	clone := n.Clone()
	clone.Number.SetInt64(1)

	qt.Assert(t, qt.Equals(n.Number.String(), "3.14"))
}

func TestCloneNil(t *testing.T) {
	var n *Node
	qt.Assert(t, qt.IsNil(n.Clone()))
	var m *CfgMap
	qt.Assert(t, qt.IsNil(m.Clone()))
}

func TestCfgMapClone(t *testing.T) {
	m := NewCfgMap()
	m.Insert("a", NewBool(true, token.NoPos))
	clone := m.Clone()
	clone.Insert("b", NewBool(false, token.NoPos))
	qt.Assert(t, qt.Equals(m.Len(), 1))
	qt.Assert(t, qt.Equals(clone.Len(), 2))
}
