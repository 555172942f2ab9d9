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

// Package flexicfg parses and resolves flexi_cfg configuration files,
// producing a read-only Reader over the fully-resolved tree. It wires
// together parser (grammar), internal/resolve (the multi-pass semantic
// resolution algorithm), and reader (the typed accessor façade) behind a
// single entry point.
package flexicfg

import (
	"log"

	"github.com/flexi-cfg/flexicfg/internal/resolve"
	"github.com/flexi-cfg/flexicfg/parser"
	"github.com/flexi-cfg/flexicfg/reader"
)

// Option configures a Parse/ParseFromString call.
type Option = parser.Option

// WithRootDir sets the directory non-absolute include paths resolve
// against; it defaults to the document's own directory.
func WithRootDir(dir string) Option { return parser.WithRootDir(dir) }

// WithLogger sets the logger used to report [optional]/[once] include
// conditions; the default filters through logutils at WARN and writes to
// stderr.
func WithLogger(logger *log.Logger) Option { return parser.WithLogger(logger) }

// WithEnv overrides the environment used to substitute ${VAR} inside
// include paths; it defaults to the process environment.
func WithEnv(env map[string]string) Option { return parser.WithEnv(env) }

// Parse reads, parses, and fully resolves the document at path, inlining
// its includes, and returns a Reader over the result.
func Parse(path string, opts ...Option) (*reader.Reader, error) {
	result, err := parser.ParseFile(path, opts...)
	if err != nil {
		return nil, err
	}
	return resolveResult(result)
}

// ParseFromString parses and fully resolves src as if it were read from a
// file named tag. tag is used only for diagnostics and as the base for
// resolving include directives; it need not exist on disk.
func ParseFromString(src []byte, tag string, opts ...Option) (*reader.Reader, error) {
	result, err := parser.ParseFromString(src, tag, opts...)
	if err != nil {
		return nil, err
	}
	return resolveResult(result)
}

func resolveResult(result *parser.Result) (*reader.Reader, error) {
	data, err := resolve.Resolve(result.Docs, result.Overrides)
	if err != nil {
		return nil, err
	}
	return reader.New(data), nil
}
