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
	"path/filepath"
	"strings"

	"github.com/flexi-cfg/flexicfg/ast"
	"github.com/flexi-cfg/flexicfg/errors"
	"github.com/flexi-cfg/flexicfg/literal"
	"github.com/flexi-cfg/flexicfg/scanner"
	"github.com/flexi-cfg/flexicfg/token"
)

// fileParser drives one document's token stream. It holds no state that
// needs to survive past the document's own parse; everything that must be
// shared across an include tree lives in state.
type fileParser struct {
	s    *state
	file *token.File

	sc  scanner.Scanner
	tok token.Token
	lit string
	pos token.Position
}

func (s *state) parseFile(path string, src []byte) error {
	if abs, err := filepath.Abs(path); err == nil {
		s.allFiles[abs] = true
	}
	file := token.NewFile(path)
	p := &fileParser{s: s, file: file}
	p.sc.Init(file, src)
	p.next()
	return p.parseTopLevel()
}

func (p *fileParser) next() {
	p.tok, p.lit, p.pos = p.sc.Scan()
}

// parseAnnotations consumes zero or more "[override]"/"[optional]"/"[once]"
// bracket annotations. Note that the scanner emits plain LBRACK/RBRACK/KEY
// tokens for these (see scanner.go): the annotation shape is recognized
// here, by the grammar, not by the lexer.
func (p *fileParser) parseAnnotations() (override, optional, once bool, err error) {
	for p.tok == token.LBRACK {
		p.next()
		if p.tok != token.KEY {
			return false, false, false, errors.NewParse(p.pos, "expected an annotation keyword, got %s", p.tok)
		}
		kw, ok := token.BracketKeyword[p.lit]
		if !ok {
			return false, false, false, errors.NewParse(p.pos, "unknown annotation [%s]", p.lit)
		}
		p.next()
		if p.tok != token.RBRACK {
			return false, false, false, errors.NewParse(p.pos, "expected ']' to close annotation")
		}
		p.next()
		switch kw {
		case token.OVERRIDE:
			override = true
		case token.OPTIONAL:
			optional = true
		case token.ONCE:
			once = true
		}
	}
	return override, optional, once, nil
}

// parseTopLevel enforces the top-level mode rule: a file's top-level
// assignments are either all FLAT_KEY (dotted) pairs, or all
// struct/proto/reference/KEY constructs, never a mix.
func (p *fileParser) parseTopLevel() error {
	const (
		modeUnknown = iota
		modeFlat
		modeStruct
	)
	mode := modeUnknown
	fileMap := ast.NewCfgMap()

	for p.tok != token.EOF {
		switch p.tok {
		case token.INCLUDE, token.INCLUDE_RELATIVE:
			if err := p.parseInclude(); err != nil {
				return err
			}

		case token.STRUCT, token.PROTO, token.REFERENCE:
			if mode == modeFlat {
				return errors.NewParse(p.pos, "cannot mix dotted-key and struct-style assignments in one file")
			}
			mode = modeStruct
			node, err := p.parseConstruct(0, nil)
			if err != nil {
				return err
			}
			if !fileMap.Insert(node.Name, node) {
				return errors.NewDuplicateKey(node.Origin, []string{node.Name})
			}

		case token.KEY, token.FLAT_KEY, token.LBRACK:
			override, optional, once, err := p.parseAnnotations()
			if err != nil {
				return err
			}
			if optional || once {
				return errors.NewParse(p.pos, "[optional]/[once] are only valid on include directives")
			}
			switch p.tok {
			case token.FLAT_KEY:
				if mode == modeStruct {
					return errors.NewParse(p.pos, "cannot mix dotted-key and struct-style assignments in one file")
				}
				mode = modeFlat
				dotted := p.lit
				pos := p.pos
				p.next()
				if p.tok != token.ASSIGN {
					return errors.NewParse(p.pos, "expected '=' after %q", dotted)
				}
				p.next()
				val, err := p.parseValue(false)
				if err != nil {
					return err
				}
				if override {
					if !p.s.addOverride(dotted, val) {
						return errors.NewDuplicateOverride(pos, strings.Split(dotted, "."))
					}
				} else {
					p.s.docs = append(p.s.docs, ast.Unflatten(dotted, val, pos, 0))
				}

			case token.KEY:
				if mode == modeFlat {
					return errors.NewParse(p.pos, "cannot mix dotted-key and struct-style assignments in one file")
				}
				mode = modeStruct
				key := p.lit
				if !literal.IsValidKey(key) {
					return errors.NewParse(p.pos, "invalid key %q", key)
				}
				p.next()
				if p.tok != token.ASSIGN {
					return errors.NewParse(p.pos, "expected '=' after key %q", key)
				}
				p.next()
				val, err := p.parseValue(false)
				if err != nil {
					return err
				}
				if override {
					if !p.s.addOverride(key, val) {
						return errors.NewDuplicateOverride(val.Origin, []string{key})
					}
				} else if !fileMap.Insert(key, val) {
					return errors.NewDuplicateKey(val.Origin, []string{key})
				}

			default:
				return errors.NewParse(p.pos, "expected a key after annotation, got %s", p.tok)
			}

		default:
			return errors.NewParse(p.pos, "unexpected token %s at top level", p.tok)
		}
	}

	if mode == modeStruct && fileMap.Len() > 0 {
		p.s.docs = append(p.s.docs, fileMap)
	}
	return nil
}

// parseConstruct dispatches to the STRUCT/PROTO/REFERENCE header+body
// parse. path is the dotted ancestor path down to (but excluding) the
// construct being parsed, used to build full paths for nested overrides
// and duplicate-key diagnostics.
func (p *fileParser) parseConstruct(depth int, path []string) (*ast.Node, error) {
	switch p.tok {
	case token.STRUCT:
		return p.parseStruct(depth, path)
	case token.PROTO:
		return p.parseProto(depth, path)
	case token.REFERENCE:
		return p.parseReference(depth, path)
	}
	return nil, errors.NewParse(p.pos, "expected struct, proto, or reference, got %s", p.tok)
}

func (p *fileParser) parseStruct(depth int, path []string) (*ast.Node, error) {
	pos := p.pos
	p.next() // 'struct'
	if p.tok != token.KEY {
		return nil, errors.NewParse(p.pos, "expected struct name, got %s", p.tok)
	}
	name := p.lit
	if !literal.IsValidKey(name) {
		return nil, errors.NewParse(p.pos, "invalid struct name %q", name)
	}
	p.next()
	if p.tok != token.LBRACE {
		return nil, errors.NewParse(p.pos, "expected '{' after struct %s", name)
	}
	p.next()

	node := ast.NewStructLike(ast.StructKind, name, depth, pos)
	childPath := append(append([]string{}, path...), name)

	for p.tok != token.RBRACE {
		if p.tok == token.EOF {
			return nil, errors.NewParse(p.pos, "unterminated struct %q", name)
		}
		switch p.tok {
		case token.STRUCT, token.PROTO, token.REFERENCE:
			child, err := p.parseConstruct(depth+1, childPath)
			if err != nil {
				return nil, err
			}
			if !node.Data.Insert(child.Name, child) {
				return nil, errors.NewDuplicateKey(child.Origin, append(append([]string{}, childPath...), child.Name))
			}

		case token.KEY, token.LBRACK:
			override, optional, once, err := p.parseAnnotations()
			if err != nil {
				return nil, err
			}
			if optional || once {
				return nil, errors.NewParse(p.pos, "[optional]/[once] are only valid on include directives")
			}
			if p.tok != token.KEY {
				return nil, errors.NewParse(p.pos, "expected a key, got %s", p.tok)
			}
			key := p.lit
			if !literal.IsValidKey(key) {
				return nil, errors.NewParse(p.pos, "invalid key %q", key)
			}
			p.next()
			if p.tok != token.ASSIGN {
				return nil, errors.NewParse(p.pos, "expected '=' after key %q", key)
			}
			p.next()
			val, err := p.parseValue(false)
			if err != nil {
				return nil, err
			}
			if override {
				full := append(append([]string{}, childPath...), key)
				if !p.s.addOverride(strings.Join(full, "."), val) {
					return nil, errors.NewDuplicateOverride(val.Origin, full)
				}
			} else if !node.Data.Insert(key, val) {
				return nil, errors.NewDuplicateKey(val.Origin, append(append([]string{}, childPath...), key))
			}

		default:
			return nil, errors.NewParse(p.pos, "unexpected token %s inside struct %q", p.tok, name)
		}
	}
	p.next() // consume '}'
	return node, nil
}

func (p *fileParser) parseProto(depth int, path []string) (*ast.Node, error) {
	pos := p.pos
	p.next() // 'proto'
	if p.tok != token.KEY {
		return nil, errors.NewParse(p.pos, "expected proto name, got %s", p.tok)
	}
	name := p.lit
	if !literal.IsValidKey(name) {
		return nil, errors.NewParse(p.pos, "invalid proto name %q", name)
	}
	p.next()
	if p.tok != token.LBRACE {
		return nil, errors.NewParse(p.pos, "expected '{' after proto %s", name)
	}
	p.next()

	node := ast.NewStructLike(ast.ProtoKind, name, depth, pos)
	childPath := append(append([]string{}, path...), name)
	if err := p.parseProtoScopeBody(node.Data, depth, childPath); err != nil {
		return nil, err
	}
	p.next() // consume '}'
	return node, nil
}

// parseProtoScopeBody parses the PROTO_PAIR / nested-StructInProto /
// nested-Reference productions shared by a proto's own body and every
// StructInProto nested inside it: a proto body holds PROTO_PAIRs (values
// may be VAR), nested STRUCTs (treated as StructInProto), and REFERENCEs.
func (p *fileParser) parseProtoScopeBody(data *ast.CfgMap, depth int, path []string) error {
	for p.tok != token.RBRACE {
		if p.tok == token.EOF {
			return errors.NewParse(p.pos, "unterminated proto body")
		}
		switch p.tok {
		case token.STRUCT:
			child, err := p.parseStructInProto(depth+1, path)
			if err != nil {
				return err
			}
			if !data.Insert(child.Name, child) {
				return errors.NewDuplicateKey(child.Origin, append(append([]string{}, path...), child.Name))
			}

		case token.REFERENCE:
			child, err := p.parseReference(depth+1, path)
			if err != nil {
				return err
			}
			if !data.Insert(child.Name, child) {
				return errors.NewDuplicateKey(child.Origin, append(append([]string{}, path...), child.Name))
			}

		case token.KEY, token.LBRACK:
			override, optional, once, err := p.parseAnnotations()
			if err != nil {
				return err
			}
			if override || optional || once {
				return errors.NewParse(p.pos, "bracket annotations are not valid inside a proto")
			}
			if p.tok != token.KEY {
				return errors.NewParse(p.pos, "expected a key, got %s", p.tok)
			}
			key := p.lit
			if !literal.IsValidKey(key) {
				return errors.NewParse(p.pos, "invalid key %q", key)
			}
			p.next()
			if p.tok != token.ASSIGN {
				return errors.NewParse(p.pos, "expected '=' after key %q", key)
			}
			p.next()
			val, err := p.parseValue(true) // PROTO_PAIR: Var is allowed
			if err != nil {
				return err
			}
			if !data.Insert(key, val) {
				return errors.NewDuplicateKey(val.Origin, append(append([]string{}, path...), key))
			}

		default:
			return errors.NewParse(p.pos, "unexpected token %s inside proto", p.tok)
		}
	}
	return nil
}

func (p *fileParser) parseStructInProto(depth int, path []string) (*ast.Node, error) {
	pos := p.pos
	p.next() // 'struct'
	if p.tok != token.KEY {
		return nil, errors.NewParse(p.pos, "expected struct name, got %s", p.tok)
	}
	name := p.lit
	if !literal.IsValidKey(name) {
		return nil, errors.NewParse(p.pos, "invalid struct name %q", name)
	}
	p.next()
	if p.tok != token.LBRACE {
		return nil, errors.NewParse(p.pos, "expected '{' after struct %s", name)
	}
	p.next()

	node := ast.NewStructLike(ast.StructInProtoKind, name, depth, pos)
	childPath := append(append([]string{}, path...), name)
	if err := p.parseProtoScopeBody(node.Data, depth, childPath); err != nil {
		return nil, err
	}
	p.next() // consume '}'
	return node, nil
}

func (p *fileParser) parseReference(depth int, path []string) (*ast.Node, error) {
	pos := p.pos
	p.next() // 'reference'

	var protoPath string
	switch p.tok {
	case token.FLAT_KEY, token.KEY:
		protoPath = p.lit
		p.next()
	default:
		return nil, errors.NewParse(p.pos, "expected a proto path after 'reference', got %s", p.tok)
	}
	if p.tok != token.AS {
		return nil, errors.NewParse(p.pos, "expected 'as' in reference %s", protoPath)
	}
	p.next()
	if p.tok != token.KEY {
		return nil, errors.NewParse(p.pos, "expected reference name, got %s", p.tok)
	}
	name := p.lit
	if !literal.IsValidKey(name) {
		return nil, errors.NewParse(p.pos, "invalid reference name %q", name)
	}
	p.next()
	if p.tok != token.LBRACE {
		return nil, errors.NewParse(p.pos, "expected '{' after reference %s as %s", protoPath, name)
	}
	p.next()

	node := ast.NewReference(name, protoPath, depth, pos)
	refPath := append(append([]string{}, path...), name)

	for p.tok != token.RBRACE {
		switch p.tok {
		case token.EOF:
			return nil, errors.NewParse(p.pos, "unterminated reference %q", name)

		case token.PLUSKEY:
			p.next()
			if p.tok != token.KEY {
				return nil, errors.NewParse(p.pos, "expected a key after '+', got %s", p.tok)
			}
			key := p.lit
			if !literal.IsValidKey(key) {
				return nil, errors.NewParse(p.pos, "invalid key %q", key)
			}
			p.next()
			if p.tok != token.ASSIGN {
				return nil, errors.NewParse(p.pos, "expected '=' after key %q", key)
			}
			p.next()
			val, err := p.parseValue(false)
			if err != nil {
				return nil, err
			}
			if !node.Data.Insert(key, val) {
				return nil, errors.NewDuplicateKey(val.Origin, append(append([]string{}, refPath...), key))
			}

		case token.VAR:
			varName := p.lit
			p.next()
			if p.tok != token.ASSIGN {
				return nil, errors.NewParse(p.pos, "expected '=' after $%s", varName)
			}
			p.next()
			val, err := p.parseValue(false)
			if err != nil {
				return nil, err
			}
			if !node.RefVars.Insert(varName, val) {
				node.RefVars.Replace(varName, val)
			}

		default:
			return nil, errors.NewParse(p.pos, "unexpected token %s inside reference %q", p.tok, name)
		}
	}
	p.next() // consume '}'
	return node, nil
}

// parseValue parses a VALUE production: a scalar literal, a Var (only
// where allowVar, i.e. inside a proto), a value lookup, an expression, or a
// list.
func (p *fileParser) parseValue(allowVar bool) (*ast.Node, error) {
	pos := p.pos
	switch p.tok {
	case token.STRING:
		n := ast.NewString(p.lit, pos)
		p.next()
		return n, nil

	case token.INTEGER, token.FLOAT:
		num, err := literal.ParseNumber(p.lit)
		if err != nil {
			return nil, errors.NewParse(pos, "%v", err)
		}
		n := ast.NewNumber(ast.NumberKind, p.lit, num, pos)
		p.next()
		return n, nil

	case token.HEX:
		num, err := literal.ParseNumber(p.lit)
		if err != nil {
			return nil, errors.NewParse(pos, "%v", err)
		}
		n := ast.NewNumber(ast.HexKind, p.lit, num, pos)
		p.next()
		return n, nil

	case token.TRUE, token.FALSE:
		b, _ := literal.ParseBool(p.lit)
		n := ast.NewBool(b, pos)
		p.next()
		return n, nil

	case token.VAR:
		if !allowVar {
			return nil, errors.NewParse(pos, "var %q is only allowed inside a proto", p.lit)
		}
		n := ast.NewVar(p.lit, pos)
		p.next()
		return n, nil

	case token.VALUE_LOOKUP_START:
		return p.parseValueLookup()

	case token.EXPRESSION:
		n := NewExpression(p.lit, pos)
		p.next()
		return n, nil

	case token.LBRACK:
		return p.parseList(allowVar)
	}
	return nil, errors.NewParse(pos, "unexpected token %s, expected a value", p.tok)
}

// parseValueLookup parses the dotted path inside "$( ... )". A bare run of
// lowercase-starting segments like "a.b.c" scans as a single FLAT_KEY
// (scanner.go's scanFlatKey has no notion of being inside a value lookup),
// while a path with a VAR segment like "FOO.bar" scans as separate
// VAR/DOT/KEY tokens, since VAR only ever comes from scanDollar. Both shapes
// are accepted here, and may alternate across dots.
func (p *fileParser) parseValueLookup() (*ast.Node, error) {
	pos := p.pos
	p.next() // consume '$('
	var segments []string
	for {
		switch p.tok {
		case token.KEY, token.VAR:
			segments = append(segments, p.lit)
			p.next()
		case token.FLAT_KEY:
			segments = append(segments, strings.Split(p.lit, ".")...)
			p.next()
		default:
			return nil, errors.NewParse(p.pos, "expected a key or var in value lookup, got %s", p.tok)
		}
		if p.tok == token.DOT {
			p.next()
			continue
		}
		break
	}
	if p.tok != token.RPAREN {
		return nil, errors.NewParse(p.pos, "expected ')' to close value lookup")
	}
	p.next()
	if len(segments) == 0 {
		return nil, errors.NewParse(pos, "empty value lookup")
	}
	return ast.NewValueLookup(segments, pos), nil
}

func (p *fileParser) parseList(allowVar bool) (*ast.Node, error) {
	pos := p.pos
	p.next() // consume '['
	list := ast.NewList(pos)
	for p.tok != token.RBRACK {
		if p.tok == token.EOF {
			return nil, errors.NewParse(p.pos, "unterminated list")
		}
		elem, err := p.parseValue(allowVar)
		if err != nil {
			return nil, err
		}
		if err := list.AppendElement(elem); err != nil {
			return nil, err
		}
		if p.tok == token.COMMA {
			p.next()
		} else if p.tok != token.RBRACK {
			return nil, errors.NewParse(p.pos, "expected ',' or ']' in list, got %s", p.tok)
		}
	}
	p.next() // consume ']'
	return list, nil
}
