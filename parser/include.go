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

package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flexi-cfg/flexicfg/errors"
	"github.com/flexi-cfg/flexicfg/literal"
	"github.com/flexi-cfg/flexicfg/token"
)

// parseInclude handles the "include"/"include_relative" directive.
func (p *fileParser) parseInclude() error {
	pos := p.pos
	relative := p.tok == token.INCLUDE_RELATIVE
	p.next()

	override, optional, once, err := p.parseAnnotations()
	if err != nil {
		return err
	}
	if override {
		return errors.NewParse(pos, "[override] is not valid on an include directive")
	}
	if p.tok != token.STRING {
		return errors.NewParse(p.pos, "expected a quoted path after include, got %s", p.tok)
	}
	rawPath := literal.Unquote(p.lit)
	p.next()

	return p.s.resolveInclude(rawPath, filepath.Dir(p.file.Name()), relative, optional, once, pos)
}

// resolveInclude implements include semantics: path resolution against
// base_dir (or the including file's own directory for include_relative),
// ${VAR} substitution from the process environment, [optional]/[once]
// handling, and the nested parse itself.
func (s *state) resolveInclude(rawPath, fromDir string, relative, optional, once bool, pos token.Position) error {
	expanded := s.expandEnv(rawPath)

	base := s.baseDir
	if relative {
		base = fromDir
	}
	fullPath := expanded
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(base, expanded)
	}
	dir := filepath.Dir(fullPath)

	abs, err := filepath.Abs(fullPath)
	if err != nil {
		return errors.Wrapf(err, pos, "resolve include path %q", rawPath)
	}

	if s.allFiles[abs] {
		if once {
			s.logger.Printf("[WARN] skipping already-included file %s ([once])", abs)
			return nil
		}
		return errors.NewParse(pos, "file %q already included; use [once] to allow re-inclusion attempts", abs)
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		if optional {
			s.logger.Printf("[WARN] optional include %s not found: %v", abs, err)
			return nil
		}
		return errors.Wrapf(err, pos, "include %q", rawPath)
	}

	savedBaseDir := s.baseDir
	if relative {
		s.baseDir = dir
	}
	err = s.parseFile(abs, src)
	s.baseDir = savedBaseDir
	return err
}

// expandEnv substitutes "${VAR}" occurrences in s using the parser's
// environment map, leaving undefined variables untouched rather than
// erroring, matching a typical include path's best-effort
// substitution. s.env is the process environment by default (populated in
// parse()) or whatever WithEnv supplied; it is the sole source of bindings
// here so that an explicit WithEnv(map[string]string{}) is genuinely
// hermetic rather than silently falling back to the real process
// environment.
func (s *state) expandEnv(raw string) string {
	var b strings.Builder
	i := 0
	for i < len(raw) {
		if raw[i] == '$' && i+1 < len(raw) && raw[i+1] == '{' {
			end := strings.IndexByte(raw[i+2:], '}')
			if end >= 0 {
				name := raw[i+2 : i+2+end]
				if v, ok := s.env[name]; ok {
					b.WriteString(v)
				} else {
					b.WriteString(raw[i : i+2+end+1])
				}
				i = i + 2 + end + 1
				continue
			}
		}
		b.WriteByte(raw[i])
		i++
	}
	return b.String()
}
