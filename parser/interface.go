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

// Package parser turns flexi_cfg source text into the ast.CfgMap fragments
// that internal/resolve consumes. It is a hand-written recursive-descent
// driver over scanner.Scanner rather than a PEG grammar: one struct carries
// the mutable parse state, and each method handles one grammar production.
package parser

import (
	"log"
	"os"

	"github.com/hashicorp/logutils"

	"github.com/flexi-cfg/flexicfg/ast"
	"github.com/flexi-cfg/flexicfg/errors"
	"github.com/flexi-cfg/flexicfg/token"
)

// Option configures a parse.
type Option func(*state)

// WithRootDir sets the directory non-absolute include paths resolve
// against for the root document. It defaults to the root document's own
// directory.
func WithRootDir(dir string) Option {
	return func(s *state) { s.baseDir = dir }
}

// WithLogger sets the logger used to report [optional]/[once] include
// conditions. The default filters through logutils at WARN and writes to
// stderr.
func WithLogger(logger *log.Logger) Option {
	return func(s *state) { s.logger = logger }
}

// WithEnv overrides the environment used to substitute ${VAR} inside
// include paths; it defaults to os.Environ. Tests use this to keep include
// resolution hermetic.
func WithEnv(env map[string]string) Option {
	return func(s *state) { s.env = env }
}

// Result is everything one top-level Parse call produces: the CfgMap
// fragments gathered from the root document and every included document,
// and the flat override assignments collected along the way.
type Result struct {
	Docs      []*ast.CfgMap
	Overrides *ast.CfgMap
}

// ParseFile parses the document at path, inlining its includes, and returns
// the resulting Result.
func ParseFile(path string, opts ...Option) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Newf(token.NoPos, "read %s: %v", path, err)
	}
	return parse(path, src, opts...)
}

// ParseFromString parses src as if it were read from a file named tag. tag
// is used only for diagnostics and as the base for resolving include
// directives; it need not exist on disk.
func ParseFromString(src []byte, tag string, opts ...Option) (*Result, error) {
	return parse(tag, src, opts...)
}

func parse(path string, src []byte, opts ...Option) (*Result, error) {
	s := newState(path)
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(&logutils.LevelFilter{
			Levels:   []logutils.LogLevel{"WARN", "ERROR"},
			MinLevel: "WARN",
			Writer:   os.Stderr,
		}, "", 0)
	}
	if s.env == nil {
		s.env = environMap()
	}

	if err := s.parseFile(path, src); err != nil {
		return nil, err
	}
	if err := s.errs.Err(); err != nil {
		return nil, err
	}
	return &Result{Docs: s.docs, Overrides: s.overrides}, nil
}

func environMap() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				env[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return env
}
