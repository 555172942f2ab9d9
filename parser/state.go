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
	"log"
	"path/filepath"

	"github.com/flexi-cfg/flexicfg/ast"
	"github.com/flexi-cfg/flexicfg/errors"
)

// state is the mutable parse state shared by the root document and every
// document it pulls in via include/include_relative. A single state is
// threaded through the whole include tree so that seen files, collected
// overrides, and parsed docs accumulate across file boundaries.
type state struct {
	baseDir  string
	allFiles map[string]bool

	overrides    *ast.CfgMap
	overridePos  map[string]struct{} // keys already present in overrides, for DuplicateOverride
	docs         []*ast.CfgMap

	env    map[string]string
	logger *log.Logger
	errs   errors.List
}

func newState(rootPath string) *state {
	dir := filepath.Dir(rootPath)
	return &state{
		baseDir:     dir,
		allFiles:    map[string]bool{},
		overrides:   ast.NewCfgMap(),
		overridePos: map[string]struct{}{},
	}
}

// addOverride records a flat dotted-key override, reporting false if key
// was already set by an earlier [override] pair anywhere in the include
// tree (DuplicateOverride).
func (s *state) addOverride(key string, n *ast.Node) bool {
	if _, dup := s.overridePos[key]; dup {
		return false
	}
	s.overridePos[key] = struct{}{}
	s.overrides.Insert(key, n)
	return true
}
