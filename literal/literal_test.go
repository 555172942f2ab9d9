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

package literal

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestParseNumber(t *testing.T) {
	testCases := []struct {
		raw  string
		want string
	}{
		{"0", "0"},
		{"42", "42"},
		{"-7", "-7"},
		{"3.14", "3.14"},
		{"1e10", "1E+10"},
		{"0x1A", "26"},
		{"0XFF", "255"},
	}
	for _, tc := range testCases {
		d, err := ParseNumber(tc.raw)
		qt.Assert(t, qt.IsNil(err), qt.Commentf("raw=%q", tc.raw))
		qt.Assert(t, qt.Equals(d.String(), tc.want), qt.Commentf("raw=%q", tc.raw))
	}
}

func TestParseNumberInvalid(t *testing.T) {
	_, err := ParseNumber("0xZZ")
	qt.Assert(t, qt.IsNotNil(err))
}

func TestIsFloat(t *testing.T) {
	testCases := []struct {
		raw  string
		want bool
	}{
		{"42", false},
		{"0x2A", false},
		{"3.14", true},
		{"1e10", true},
		{"1E10", true},
	}
	for _, tc := range testCases {
		qt.Assert(t, qt.Equals(IsFloat(tc.raw), tc.want), qt.Commentf("raw=%q", tc.raw))
	}
}

func TestParseBool(t *testing.T) {
	v, err := ParseBool("true")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(v))

	v, err = ParseBool("false")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(v))

	_, err = ParseBool("yes")
	qt.Assert(t, qt.IsNotNil(err))
}

func TestUnquote(t *testing.T) {
	qt.Assert(t, qt.Equals(Unquote(`"hello"`), "hello"))
	qt.Assert(t, qt.Equals(Unquote(`""`), ""))
	qt.Assert(t, qt.Equals(Unquote("bare"), "bare"))
}

func TestQuote(t *testing.T) {
	qt.Assert(t, qt.Equals(Quote("hello"), `"hello"`))
	qt.Assert(t, qt.Equals(Unquote(Quote("round trip")), "round trip"))
}

func TestIsValidKey(t *testing.T) {
	testCases := []struct {
		key  string
		want bool
	}{
		{"foo", true},
		{"foo_bar", true},
		{"foo2", true},
		{"Foo", false},
		{"2foo", false},
		{"", false},
		{"struct", false},
		{"proto", false},
		{"reference", false},
		{"override", false},
	}
	for _, tc := range testCases {
		qt.Assert(t, qt.Equals(IsValidKey(tc.key), tc.want), qt.Commentf("key=%q", tc.key))
	}
}

func TestIsVarIdentifiers(t *testing.T) {
	qt.Assert(t, qt.IsTrue(IsVarStart('A')))
	qt.Assert(t, qt.IsFalse(IsVarStart('a')))
	qt.Assert(t, qt.IsTrue(IsVarPart('_')))
	qt.Assert(t, qt.IsTrue(IsVarPart('9')))
	qt.Assert(t, qt.IsFalse(IsVarPart('a')))
}

func TestIsReserved(t *testing.T) {
	qt.Assert(t, qt.IsTrue(IsReserved("include_relative")))
	qt.Assert(t, qt.IsFalse(IsReserved("not_reserved")))
}
