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

package errors

import (
	stderrors "errors"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/flexi-cfg/flexicfg/token"
)

func TestNewfFormatsMessage(t *testing.T) {
	err := Newf(token.Position{Filename: "a.cfg", Line: 3, Column: 1}, "bad thing %d", 42)
	qt.Assert(t, qt.Equals(err.Error(), "a.cfg:3:1: bad thing 42"))
	qt.Assert(t, qt.DeepEquals(err.Position(), token.Position{Filename: "a.cfg", Line: 3, Column: 1}))
}

func TestNewfNoPosOmitsPrefix(t *testing.T) {
	err := Newf(token.NoPos, "bad thing")
	qt.Assert(t, qt.Equals(err.Error(), "bad thing"))
}

func TestWrapfIncludesChild(t *testing.T) {
	child := Newf(token.NoPos, "underlying")
	err := Wrapf(child, token.NoPos, "outer")
	qt.Assert(t, qt.Equals(err.Error(), "outer: underlying"))
	qt.Assert(t, qt.IsTrue(stderrors.Is(err, child)))
}

func TestListError(t *testing.T) {
	var l List
	qt.Assert(t, qt.Equals(l.Error(), "no errors"))
	qt.Assert(t, qt.IsNil(l.Err()))

	l.AddNewf(token.NoPos, "first")
	qt.Assert(t, qt.Equals(l.Error(), "first"))
	qt.Assert(t, qt.IsNotNil(l.Err()))

	l.AddNewf(token.NoPos, "second")
	qt.Assert(t, qt.Equals(l.Error(), "first (and 1 more errors)"))
}

func TestListSort(t *testing.T) {
	l := List{
		Newf(token.Position{Filename: "b.cfg", Line: 1, Column: 1}, "b"),
		Newf(token.Position{Filename: "a.cfg", Line: 5, Column: 1}, "a5"),
		Newf(token.Position{Filename: "a.cfg", Line: 1, Column: 1}, "a1"),
	}
	l.Sort()
	qt.Assert(t, qt.Equals(l[0].Error(), "a.cfg:1:1: a1"))
	qt.Assert(t, qt.Equals(l[1].Error(), "a.cfg:5:1: a5"))
	qt.Assert(t, qt.Equals(l[2].Error(), "b.cfg:1:1: b"))
}

func TestTaxonomyKindsMatchSentinels(t *testing.T) {
	testCases := []struct {
		err    Error
		target error
	}{
		{NewParse(token.NoPos, "x"), ErrParse},
		{NewInvalidKey(token.NoPos, []string{"a", "b"}), ErrInvalidKey},
		{NewInvalidType(token.NoPos, []string{"a"}, "x"), ErrInvalidType},
		{NewDuplicateKey(token.NoPos, []string{"a"}), ErrDuplicateKey},
		{NewDuplicateOverride(token.NoPos, []string{"a"}), ErrDuplicateOverride},
		{NewMismatchKey(token.NoPos, []string{"a"}), ErrMismatchKey},
		{NewMismatchType(token.NoPos, []string{"a"}, "struct", "string"), ErrMismatchType},
		{NewUndefinedProto(token.NoPos, "a.proto"), ErrUndefinedProto},
		{NewUndefinedReferenceVar(token.NoPos, "FOO"), ErrUndefinedReferenceVar},
		{NewCyclicReference(token.NoPos, []string{"a", "b", "a"}), ErrCyclicReference},
		{NewInvalidState(token.NoPos, "x"), ErrInvalidState},
		{NewInvalidConfig(token.NoPos, "x"), ErrInvalidConfig},
	}
	for _, tc := range testCases {
		qt.Assert(t, qt.IsTrue(stderrors.Is(tc.err, tc.target)), qt.Commentf("err=%v", tc.err))
	}
}

func TestNewInvalidKeyMessage(t *testing.T) {
	err := NewInvalidKey(token.NoPos, []string{"a", "b", "c"})
	qt.Assert(t, qt.Equals(err.Error(), `invalid key "a.b.c"`))
	qt.Assert(t, qt.DeepEquals(err.Path(), []string{"a", "b", "c"}))
}

func TestNewCyclicReferenceMessage(t *testing.T) {
	err := NewCyclicReference(token.NoPos, []string{"a", "b", "a"})
	qt.Assert(t, qt.Equals(err.Error(), "cyclic reference: a -> b -> a"))
}
