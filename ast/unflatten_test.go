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

	"github.com/go-quicktest/qt"

	"github.com/flexi-cfg/flexicfg/token"
)

func TestUnflattenNestsEachSegment(t *testing.T) {
	leaf := NewBool(true, token.NoPos)
	root := Unflatten("a.b.c", leaf, token.NoPos, 0)

	qt.Assert(t, qt.Equals(root.Len(), 1))
	a, ok := root.Get("a")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(a.Kind, StructKind))
	qt.Assert(t, qt.Equals(a.Depth, 0))

	b, ok := a.Data.Get("b")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(b.Depth, 1))

	c, ok := b.Data.Get("c")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsTrue(c.Bool))
}

func TestUnflattenSingleSegment(t *testing.T) {
	leaf := NewBool(false, token.NoPos)
	root := Unflatten("solo", leaf, token.NoPos, 2)

	n, ok := root.Get("solo")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(n, leaf))
}
