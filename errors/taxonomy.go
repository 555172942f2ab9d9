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
	"errors"

	"github.com/flexi-cfg/flexicfg/token"
)

// Sentinel error kinds. Wrap one of these with errors.Is to test the kind
// of a returned Error without string matching.
var (
	ErrParse                 = errors.New("parse error")
	ErrInvalidKey            = errors.New("invalid key")
	ErrInvalidType           = errors.New("invalid type")
	ErrDuplicateKey          = errors.New("duplicate key")
	ErrDuplicateOverride     = errors.New("duplicate override")
	ErrMismatchKey           = errors.New("mismatched key")
	ErrMismatchType          = errors.New("mismatched type")
	ErrUndefinedProto        = errors.New("undefined proto")
	ErrUndefinedReferenceVar = errors.New("undefined reference var")
	ErrCyclicReference       = errors.New("cyclic reference")
	ErrInvalidState          = errors.New("invalid parser state")
	ErrInvalidConfig         = errors.New("invalid config")
)

type kindError struct {
	*posError
	kind error
}

func (e *kindError) Unwrap() error { return e.kind }
func (e *kindError) Error() string {
	return e.posError.Error()
}

func newKind(kind error, pos token.Position, path []string, format string, args ...interface{}) Error {
	return &kindError{
		posError: &posError{pos: pos, path: path, format: format, args: args},
		kind:     kind,
	}
}

// NewParse reports a grammar violation at pos.
func NewParse(pos token.Position, format string, args ...interface{}) Error {
	return newKind(ErrParse, pos, nil, format, args...)
}

// NewInvalidKey reports that path does not exist in the tree.
func NewInvalidKey(pos token.Position, path []string) Error {
	return newKind(ErrInvalidKey, pos, path, "invalid key %q", joinPath(path))
}

// NewInvalidType reports a type mismatch at path: either a path segment
// expected to be struct-like was a scalar, or an accessor's requested type
// did not match the stored kind.
func NewInvalidType(pos token.Position, path []string, format string, args ...interface{}) Error {
	return newKind(ErrInvalidType, pos, path, format, args...)
}

// NewDuplicateKey reports that key was already defined in the same scope
// without [override].
func NewDuplicateKey(pos token.Position, path []string) Error {
	return newKind(ErrDuplicateKey, pos, path, "duplicate key %q", joinPath(path))
}

// NewDuplicateOverride reports that a flat key was overridden twice.
func NewDuplicateOverride(pos token.Position, path []string) Error {
	return newKind(ErrDuplicateOverride, pos, path, "duplicate override of %q", joinPath(path))
}

// NewMismatchKey reports that merging two maps found one side struct-like
// and the other a scalar at the same key.
func NewMismatchKey(pos token.Position, path []string) Error {
	return newKind(ErrMismatchKey, pos, path, "mismatched key %q: struct-like on one side, scalar on the other", joinPath(path))
}

// NewMismatchType reports that merging or overlaying two non-struct values
// of different kinds at the same key.
func NewMismatchType(pos token.Position, path []string, want, got string) Error {
	return newKind(ErrMismatchType, pos, path, "mismatched type at %q: want %s, got %s", joinPath(path), want, got)
}

// NewUndefinedProto reports a reference to a proto that was never defined.
func NewUndefinedProto(pos token.Position, protoPath string) Error {
	return newKind(ErrUndefinedProto, pos, nil, "undefined proto %q", protoPath)
}

// NewUndefinedReferenceVar reports that a proto contains a Var whose name
// was not bound in the enclosing reference.
func NewUndefinedReferenceVar(pos token.Position, name string) Error {
	return newKind(ErrUndefinedReferenceVar, pos, nil, "undefined reference variable %q", name)
}

// NewCyclicReference reports a cycle in a value-lookup chain or a reference
// chain re-entering a proto already on the stack. chain is the ordered list
// of dotted keys or proto paths visited, including the repeated entry.
func NewCyclicReference(pos token.Position, chain []string) Error {
	return newKind(ErrCyclicReference, pos, nil, "cyclic reference: %s", joinChain(chain))
}

// NewInvalidState reports an internal parser invariant violation (e.g. an
// empty key stack at a production that requires one).
func NewInvalidState(pos token.Position, format string, args ...interface{}) Error {
	return newKind(ErrInvalidState, pos, nil, format, args...)
}

// NewInvalidConfig reports a resolved-value invariant violation, such as an
// Expression left with an unresolved "$" after variable substitution.
func NewInvalidConfig(pos token.Position, format string, args ...interface{}) Error {
	return newKind(ErrInvalidConfig, pos, nil, format, args...)
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func joinChain(chain []string) string {
	out := ""
	for i, p := range chain {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}
