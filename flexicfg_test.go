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

package flexicfg_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/flexi-cfg/flexicfg"
	"github.com/flexi-cfg/flexicfg/ast"
	"github.com/flexi-cfg/flexicfg/errors"
	"github.com/flexi-cfg/flexicfg/reader"
)

// TestScalarsAndStructs covers scalar and nested-struct resolution across
// every value kind.
func TestScalarsAndStructs(t *testing.T) {
	src := `
struct test1 { key1 = "value"  key2 = 1.342  key3 = 10  f = "none" }
struct test2 { my_key = "foo"  n_key = true
               struct inner { list = [1, 2, 3, 4] } }
`
	r, err := flexicfg.ParseFromString([]byte(src), "s1.cfg")
	qt.Assert(t, qt.IsNil(err))

	s, err := reader.Get[string](r, "test1.key1")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(s, "value"))

	f, err := reader.Get[float64](r, "test1.key2")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(math.Abs(f-1.342) < 1e-9, true))

	i, err := reader.Get[int](r, "test1.key3")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(i, 10))

	b, err := reader.Get[bool](r, "test2.n_key")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(b))

	list, err := reader.Get[[]int](r, "test2.inner.list")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(list, []int{1, 2, 3, 4}))

	kind, err := r.Type("test2.inner")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(kind, ast.StructKind))
}

// TestOverride checks that an [override] assignment propagates through a
// chain of value lookups and expressions that depend on the overridden key.
func TestOverride(t *testing.T) {
	src := `
a = 1
b = $(a)
c = {{ $(a) }}
d = $(c)
a [override] = 2
`
	r, err := flexicfg.ParseFromString([]byte(src), "s2.cfg")
	qt.Assert(t, qt.IsNil(err))

	for _, key := range []string{"a", "b", "c", "d"} {
		v, err := reader.Get[int](r, key)
		qt.Assert(t, qt.IsNil(err), qt.Commentf("key %s", key))
		qt.Assert(t, qt.Equals(v, 2), qt.Commentf("key %s", key))
	}
}

// TestProtoAndReference checks that a reference instantiates its proto with
// bound vars substituted, and that the proto itself doesn't surface in the
// resolved tree.
func TestProtoAndReference(t *testing.T) {
	src := `
proto leg { dof = $DOF  gain = {{ $DOF * 2 }} }
reference leg as fl { $DOF = 3 }
`
	r, err := flexicfg.ParseFromString([]byte(src), "s3.cfg")
	qt.Assert(t, qt.IsNil(err))

	dof, err := reader.Get[int](r, "fl.dof")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(dof, 3))

	gain, err := reader.Get[int](r, "fl.gain")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(gain, 6))

	kind, err := r.Type("fl")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(kind, ast.StructKind))

	qt.Assert(t, qt.IsFalse(r.Exists("leg")))
}

// TestCyclicValueLookup checks that a cycle of $(...) lookups is rejected.
func TestCyclicValueLookup(t *testing.T) {
	src := `
foo = $(bar)   bar = $(baz)   baz = $(foo)
`
	_, err := flexicfg.ParseFromString([]byte(src), "s4.cfg")
	qt.Assert(t, qt.IsNotNil(err))
	qt.Assert(t, qt.ErrorIs(err, errors.ErrCyclicReference))
}

// TestExpression checks arithmetic expression evaluation, including unary
// minus, exponentiation, and a value lookup embedded in the expression.
func TestExpression(t *testing.T) {
	src := `
x = 3
y = {{ -4.7 * -(3.72 + -pi) }}
z = {{ $(x) ^ 2 + 1 }}
`
	r, err := flexicfg.ParseFromString([]byte(src), "s5.cfg")
	qt.Assert(t, qt.IsNil(err))

	y, err := reader.Get[float64](r, "y")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(math.Abs(y-2.7185145281279732) < 1e-9, true))

	z, err := reader.Get[int](r, "z")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(z, 10))
}

// TestIncludeOnce checks that a file marked [once] may be included more than
// once without error, with later attempts skipped after a logged warning.
func TestIncludeOnce(t *testing.T) {
	dir := t.TempDir()
	qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(dir, "b.cfg"), []byte(`struct shared { v = 2 }`), 0o644)))
	aSrc := `
include [once] "b.cfg"
include [once] "b.cfg"
struct top { v = 1 }
`
	aPath := filepath.Join(dir, "a.cfg")
	qt.Assert(t, qt.IsNil(os.WriteFile(aPath, []byte(aSrc), 0o644)))

	r, err := flexicfg.Parse(aPath)
	qt.Assert(t, qt.IsNil(err))

	v, err := reader.Get[int](r, "shared.v")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, 2))

	top, err := reader.Get[int](r, "top.v")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(top, 1))
}

// TestOverlayStrict checks that ApplyOverlay rejects a key absent from the
// base tree rather than silently introducing it.
func TestOverlayStrict(t *testing.T) {
	base, err := flexicfg.ParseFromString([]byte(`struct s { a = 1  b = "x" }`), "base.cfg")
	qt.Assert(t, qt.IsNil(err))
	overlay, err := flexicfg.ParseFromString([]byte(`struct s { a = 2  c = 3 }`), "overlay.cfg")
	qt.Assert(t, qt.IsNil(err))

	err = base.ApplyOverlay(overlay)
	qt.Assert(t, qt.IsNotNil(err))
	qt.Assert(t, qt.ErrorIs(err, errors.ErrInvalidKey))
}

// TestMergeOverwrite exercises reader.Merge's no-compatibility-required
// scalar-wins semantics, distinct from ApplyOverlay's strict checking.
func TestMergeOverwrite(t *testing.T) {
	base, err := flexicfg.ParseFromString([]byte(`struct s { a = 1  b = "x" }`), "base.cfg")
	qt.Assert(t, qt.IsNil(err))
	other, err := flexicfg.ParseFromString([]byte(`struct s { a = 2  c = 3 }`), "other.cfg")
	qt.Assert(t, qt.IsNil(err))

	base.Merge(other)

	a, err := reader.Get[int](base, "s.a")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(a, 2))

	c, err := reader.Get[int](base, "s.c")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(c, 3))

	b, err := reader.Get[string](base, "s.b")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(b, "x"))
}

// TestHexRoundTrip checks hex literals parse to their numeric value while
// remaining tagged with HexKind.
func TestHexRoundTrip(t *testing.T) {
	r, err := flexicfg.ParseFromString([]byte(`addr = 0xFF`), "hex.cfg")
	qt.Assert(t, qt.IsNil(err))

	v, err := reader.Get[int](r, "addr")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, 255))

	kind, err := r.Type("addr")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(kind, ast.HexKind))
}

// TestUndefinedProtoReference checks a reference naming a never-declared
// proto surfaces UndefinedProto.
func TestUndefinedProtoReference(t *testing.T) {
	_, err := flexicfg.ParseFromString([]byte(`reference nope as thing { }`), "undef.cfg")
	qt.Assert(t, qt.IsNotNil(err))
	qt.Assert(t, qt.ErrorIs(err, errors.ErrUndefinedProto))
}

// TestUndefinedReferenceVar checks a proto Var left unbound by its
// reference surfaces UndefinedReferenceVar.
func TestUndefinedReferenceVar(t *testing.T) {
	src := `
proto leg { dof = $DOF }
reference leg as fl { }
`
	_, err := flexicfg.ParseFromString([]byte(src), "undefvar.cfg")
	qt.Assert(t, qt.IsNotNil(err))
	qt.Assert(t, qt.ErrorIs(err, errors.ErrUndefinedReferenceVar))
}

// TestDuplicateKeyWithoutOverride checks that redefining a key without
// [override] is rejected rather than silently shadowed.
func TestDuplicateKeyWithoutOverride(t *testing.T) {
	_, err := flexicfg.ParseFromString([]byte(`struct s { a = 1  a = 2 }`), "dup.cfg")
	qt.Assert(t, qt.IsNotNil(err))
	qt.Assert(t, qt.ErrorIs(err, errors.ErrDuplicateKey))
}

// TestFindStructsWithKey exercises the struct-enumeration accessor.
func TestFindStructsWithKey(t *testing.T) {
	src := `
struct a { tag = 1 }
struct b { struct c { tag = 2 } }
`
	r, err := flexicfg.ParseFromString([]byte(src), "find.cfg")
	qt.Assert(t, qt.IsNil(err))

	paths := r.FindStructsWithKey("tag")
	qt.Assert(t, qt.DeepEquals(paths, []string{"a", "b.c"}))
}
