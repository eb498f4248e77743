package idl

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser is a recursive-descent parser for the XDR IDL grammar (RFC 4506
// type declarations, plus xdrpp's program/version/procedure and
// namespace extensions). It consumes the full token stream up front
// rather than interleaving lexing with parsing, trading a little memory
// for a simpler lookahead story than a yacc-generated LALR parser needs.
type Parser struct {
	toks []Token
	pos  int
}

// ParseError reports a parse failure together with the source line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parse tokenizes and parses a complete IDL source file, then runs
// Validate over the result. A syntax error at one top-level declaration
// doesn't abort the whole file: parseFile resyncs to the next top-level
// boundary and keeps going, so a single Parse call reports the first
// syntax error of each top-level declaration alongside every semantic one
// (duplicate identifiers, overlapping union case labels) instead of
// stopping at the first. Further syntax errors inside a declaration that
// already failed are not reported.
func Parse(src string) (*File, error) {
	lex := NewLexer(src)
	var toks []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	p := &Parser{toks: toks}
	f, errs := p.parseFile()
	if semErr := Validate(f); semErr != nil {
		errs = append(errs, semErr.(Errors)...)
	}
	if len(errs) > 0 {
		return f, Errors(errs)
	}
	return f, nil
}

func (p *Parser) cur() Token { return p.toks[p.pos] }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errf(format string, args ...any) error {
	return &ParseError{Line: p.cur().Line, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expectPunct(s string) error {
	if p.cur().Kind != TokPunct || p.cur().Text != s {
		return p.errf("expected %q, got %s", s, p.cur())
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdent() (string, error) {
	if p.cur().Kind != TokIdent {
		return "", p.errf("expected identifier, got %s", p.cur())
	}
	t := p.advance()
	return t.Text, nil
}

func (p *Parser) isPunct(s string) bool {
	return p.cur().Kind == TokPunct && p.cur().Text == s
}

func (p *Parser) isKeyword(kw string) bool {
	return p.cur().Kind == TokIdent && p.cur().Text == kw
}

func (p *Parser) parseFile() (*File, []error) {
	f := &File{}
	var errs []error
	for p.cur().Kind != TokEOF {
		if p.cur().Kind == TokString {
			tok := p.advance()
			f.Symbols = append(f.Symbols, Symbol{Type: SymLiteral, Literal: &tok.Text})
			continue
		}
		startPos := p.pos
		sym, err := p.parseSymbol()
		if err != nil {
			errs = append(errs, err)
			p.resyncToTopLevel(startPos)
			continue
		}
		f.Symbols = append(f.Symbols, sym)
	}
	return f, errs
}

// resyncToTopLevel recovers from a syntax error inside one top-level
// declaration by skipping tokens up to the end of that declaration (a
// brace-balanced "}" followed by an optional ";", or a bare ";" at brace
// depth zero), so parseFile can keep looking for further errors in the
// rest of the file instead of aborting outright. If parseSymbol consumed
// no tokens at all before failing, it first forces one token of progress
// so resync can never spin in place.
func (p *Parser) resyncToTopLevel(startPos int) {
	if p.pos == startPos && p.cur().Kind != TokEOF {
		p.advance()
	}
	depth := 0
	for p.cur().Kind != TokEOF {
		switch {
		case p.isPunct("{"):
			depth++
			p.advance()
		case p.isPunct("}"):
			p.advance()
			if depth == 0 {
				if p.isPunct(";") {
					p.advance()
				}
				return
			}
			depth--
		case p.isPunct(";") && depth == 0:
			p.advance()
			return
		default:
			p.advance()
		}
	}
}

func (p *Parser) parseSymbol() (Symbol, error) {
	switch {
	case p.isKeyword("const"):
		c, err := p.parseConst()
		return Symbol{Type: SymConst, Const: c}, err
	case p.isKeyword("typedef"):
		p.advance()
		d, err := p.parseDecl()
		if err != nil {
			return Symbol{}, err
		}
		if err := p.expectPunct(";"); err != nil {
			return Symbol{}, err
		}
		return Symbol{Type: SymTypedef, Typedef: &d}, nil
	case p.isKeyword("struct"):
		s, err := p.parseStruct()
		return Symbol{Type: SymStruct, Struct: s}, err
	case p.isKeyword("enum"):
		e, err := p.parseEnum()
		return Symbol{Type: SymEnum, Enum: e}, err
	case p.isKeyword("union"):
		u, err := p.parseUnion()
		return Symbol{Type: SymUnion, Union: u}, err
	case p.isKeyword("program"):
		prog, err := p.parseProgram()
		return Symbol{Type: SymProgram, Program: prog}, err
	case p.isKeyword("namespace"):
		ns, err := p.parseNamespace()
		return Symbol{Type: SymNamespace, Namespace: ns}, err
	default:
		return Symbol{}, p.errf("unexpected token %s at top level", p.cur())
	}
}

func (p *Parser) parseNamespace() (*Namespace, error) {
	p.advance() // "namespace"
	id, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	ns := &Namespace{ID: id}
	for !p.isPunct("}") {
		sym, err := p.parseSymbol()
		if err != nil {
			return nil, err
		}
		ns.Syms = append(ns.Syms, sym)
	}
	p.advance() // "}"
	return ns, nil
}

func (p *Parser) parseConst() (*Const, error) {
	p.advance() // "const"
	id, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &Const{ID: id, Val: val}, nil
}

// parseValue accepts either a numeric literal or an identifier
// referencing a previously declared const, since bounds and enum tag
// values may be either. TRUE and FALSE are resolved to the numeric
// literals "1" and "0" here rather than left as bare identifiers:
// RFC 4506 §4.4 defines bool as an enum with exactly those two values,
// so a bool-discriminated union's "case TRUE:"/"case FALSE:" labels must
// carry the same numeric value code generation emits for the
// discriminant itself.
func (p *Parser) parseValue() (string, error) {
	t := p.cur()
	if t.Kind != TokNumber && t.Kind != TokIdent {
		return "", p.errf("expected value, got %s", t)
	}
	p.advance()
	switch t.Text {
	case "TRUE":
		return "1", nil
	case "FALSE":
		return "0", nil
	default:
		return t.Text, nil
	}
}

func (p *Parser) parseStruct() (*Struct, error) {
	p.advance() // "struct"
	id, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	s := &Struct{ID: id}
	for !p.isPunct("}") {
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		s.Decls = append(s.Decls, d)
	}
	p.advance() // "}"
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) parseEnum() (*Enum, error) {
	p.advance() // "enum"
	id, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	e := &Enum{ID: id}
	for {
		tagID, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		c := Const{ID: tagID}
		if p.isPunct("=") {
			p.advance()
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			c.Val = val
		}
		e.Tags = append(e.Tags, c)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) parseUnion() (*Union, error) {
	p.advance() // "union"
	id, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("switch") {
		return nil, p.errf("expected 'switch' in union %s, got %s", id, p.cur())
	}
	p.advance()
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	tagDecl, err := p.parseDecl()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	u := &Union{ID: id, TagType: tagDecl.Type, TagID: tagDecl.ID}
	for !p.isPunct("}") {
		var uc UnionCase
		if p.isKeyword("case") {
			p.advance()
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			uc.SwitchVal = val
		} else if p.isKeyword("default") {
			p.advance()
			uc.IsDefault = true
		} else {
			return nil, p.errf("expected 'case' or 'default' in union %s, got %s", id, p.cur())
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		tag, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		uc.Tag = tag
		u.Cases = append(u.Cases, uc)
	}
	p.advance() // "}"
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return u, nil
}

func (p *Parser) parseProgram() (*Program, error) {
	p.advance() // "program"
	id, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	prog := &Program{ID: id}
	for !p.isPunct("}") {
		v, err := p.parseVersion()
		if err != nil {
			return nil, err
		}
		prog.Vers = append(prog.Vers, *v)
	}
	p.advance() // "}"
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	n, err := parseUint(val)
	if err != nil {
		return nil, err
	}
	prog.Val = n
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *Parser) parseVersion() (*Version, error) {
	if !p.isKeyword("version") {
		return nil, p.errf("expected 'version', got %s", p.cur())
	}
	p.advance()
	id, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	v := &Version{ID: id}
	for !p.isPunct("}") {
		proc, err := p.parseProc()
		if err != nil {
			return nil, err
		}
		v.Procs = append(v.Procs, *proc)
	}
	p.advance() // "}"
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	n, err := parseUint(val)
	if err != nil {
		return nil, err
	}
	v.Val = n
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *Parser) parseProc() (*Proc, error) {
	resType, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}
	id, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []string
	if p.isKeyword("void") {
		p.advance()
	} else {
		for {
			t, err := p.parseTypeSpecifier()
			if err != nil {
				return nil, err
			}
			args = append(args, t)
			if p.isPunct(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	n, err := parseUint(val)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &Proc{ID: id, Val: n, Arg: strings.Join(args, ","), Res: resType}, nil
}

// parseTypeSpecifier consumes a base type name, including the "unsigned"
// prefix and multi-word names like "unsigned hyper", and returns it as a
// single normalized string (e.g. "unsigned int", "hyper", "MyStruct").
func (p *Parser) parseTypeSpecifier() (string, error) {
	if p.isKeyword("void") {
		p.advance()
		return "void", nil
	}
	if p.isKeyword("unsigned") {
		p.advance()
		if p.isKeyword("int") || p.isKeyword("hyper") {
			kw := p.advance().Text
			return "unsigned " + kw, nil
		}
		return "unsigned int", nil
	}
	if p.isKeyword("struct") || p.isKeyword("union") || p.isKeyword("enum") {
		p.advance() // inline tag reference keyword, type name follows
	}
	name, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	return name, nil
}

// parseDecl parses one "type_specifier declarator" pair, where the
// declarator determines the Qualifier: a bare identifier is Scalar, a
// "*id" is Ptr, an "id[bound]" is a fixed Array, and an "id<bound?>" is
// a variable-length Vec. "opaque" and "string" base types follow the
// same array/vector declarator shapes per RFC 4506 §§4.9-4.11.
func (p *Parser) parseDecl() (Decl, error) {
	if p.isKeyword("void") {
		p.advance()
		return Decl{Type: "void", Qual: Scalar}, nil
	}

	typ, err := p.parseTypeSpecifier()
	if err != nil {
		return Decl{}, err
	}

	d := Decl{Type: typ, Line: p.cur().Line}

	if p.isPunct("*") {
		p.advance()
		d.Qual = Ptr
		id, err := p.expectIdent()
		if err != nil {
			return Decl{}, err
		}
		d.ID = id
		return d, nil
	}

	id, err := p.expectIdent()
	if err != nil {
		return Decl{}, err
	}
	d.ID = id

	switch {
	case p.isPunct("["):
		p.advance()
		bound, err := p.parseValue()
		if err != nil {
			return Decl{}, err
		}
		if err := p.expectPunct("]"); err != nil {
			return Decl{}, err
		}
		d.Qual = Array
		d.Bound = bound
	case p.isPunct("<"):
		p.advance()
		if !p.isPunct(">") {
			bound, err := p.parseValue()
			if err != nil {
				return Decl{}, err
			}
			d.Bound = bound
		}
		if err := p.expectPunct(">"); err != nil {
			return Decl{}, err
		}
		d.Qual = Vec
	default:
		d.Qual = Scalar
	}
	return d, nil
}

func parseUint(s string) (uint32, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	n, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q: %w", s, err)
	}
	return uint32(n), nil
}
