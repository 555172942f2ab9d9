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

// Package errors defines the error taxonomy shared by the scanner, parser,
// and resolver: a common Error interface carrying source position and
// config-path context, plus an aggregating List.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/flexi-cfg/flexicfg/token"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Error is the common interface implemented by every error flexi_cfg
// returns from parsing or resolution.
type Error interface {
	error

	// Position returns the primary source position of the error.
	Position() token.Position

	// Path returns the dotted config-tree path the error occurred at, or
	// nil if the error has no associated location in the tree.
	Path() []string

	// Msg returns the unformatted message and its arguments.
	Msg() (format string, args []interface{})
}

// posError is the concrete Error implementation used by Newf/Wrapf and by
// the taxonomy constructors in taxonomy.go.
type posError struct {
	pos    token.Position
	path   []string
	format string
	args   []interface{}
	wrap   error
}

func (e *posError) Error() string {
	msg := fmt.Sprintf(e.format, e.args...)
	if e.pos.IsValid() {
		msg = fmt.Sprintf("%s: %s", e.pos, msg)
	}
	if e.wrap != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.wrap)
	}
	return msg
}

func (e *posError) Position() token.Position     { return e.pos }
func (e *posError) Path() []string               { return e.path }
func (e *posError) Msg() (string, []interface{}) { return e.format, e.args }
func (e *posError) Unwrap() error                { return e.wrap }

// Newf creates an Error at pos with a formatted message.
func Newf(pos token.Position, format string, args ...interface{}) Error {
	return &posError{pos: pos, format: format, args: args}
}

// NewfPath is like Newf but additionally records the dotted config path the
// error applies to.
func NewfPath(pos token.Position, path []string, format string, args ...interface{}) Error {
	return &posError{pos: pos, path: path, format: format, args: args}
}

// Wrapf creates an Error at pos that also carries child for additional
// context (e.g. the underlying I/O error behind a parse failure).
func Wrapf(child error, pos token.Position, format string, args ...interface{}) Error {
	return &posError{pos: pos, format: format, args: args, wrap: child}
}

// List is an aggregation of Errors encountered during one parse or resolve
// pass. It implements error itself so it can be returned directly.
type List []Error

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (and %d more errors)", l[0].Error(), len(l)-1)
	return b.String()
}

// Add appends err to the list.
func (l *List) Add(err Error) {
	*l = append(*l, err)
}

// AddNewf is a convenience wrapper around Add(Newf(...)).
func (l *List) AddNewf(pos token.Position, format string, args ...interface{}) {
	l.Add(Newf(pos, format, args...))
}

// Err returns nil if the list is empty, the sole error if it has one entry,
// or the list itself otherwise.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	if len(l) == 1 {
		return l[0]
	}
	return l
}

// Sort orders the list by source position, matching cue/errors.List's
// behavior so diagnostics print in file order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		pi, pj := l[i].Position(), l[j].Position()
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})
}
