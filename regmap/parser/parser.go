// Package parser turns register-description source text into ASTs.
//
// The grammar covers nested named scopes (peripheral, block, reg,
// field), key = value attributes, top-level enum type declarations,
// and the overlay directives extend, override, and annotate. Numeric
// literals may be decimal, 0x hex, 0b binary, or width-suffixed
// (32'h1F). Field bit ranges are written [high:low] or [bit].
//
// Parsing is total per file: a malformed unit fails on its own without
// affecting sibling units, and ParseUnits collects every failure so a
// run reports all syntax errors at once.
package parser

import (
	"fmt"

	"github.com/joshuapare/regkit/internal/numlit"
	"github.com/joshuapare/regkit/regmap/ast"
)

// SyntaxError is a grammar violation at a known source position.
type SyntaxError struct {
	Unit     string
	Pos      ast.Pos
	Expected string
	Found    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: expected %s, found %s",
		e.Unit, e.Pos.Line, e.Pos.Col, e.Expected, e.Found)
}

type parser struct {
	unit string
	lx   *lexer
	tok  token
}

// Parse parses one source unit into an AST. The returned error, if
// non-nil, is a *SyntaxError describing the first violation in the
// unit.
func Parse(unit string, origin ast.Origin, src string) (*ast.File, error) {
	p := &parser{unit: unit, lx: newLexer(src)}
	p.tok = p.lx.next()

	f := &ast.File{Unit: unit, Origin: origin}
	for p.tok.kind != tokEOF {
		if p.tok.kind != tokIdent {
			return nil, p.errExpected("declaration")
		}
		switch p.tok.text {
		case "enum":
			decl, err := p.parseEnumDecl()
			if err != nil {
				return nil, err
			}
			f.Enums = append(f.Enums, decl)
		case "peripheral":
			s, err := p.parseScope(ast.ScopePeripheral)
			if err != nil {
				return nil, err
			}
			f.Scopes = append(f.Scopes, s)
		case "extend", "override", "annotate":
			d, err := p.parseDirective()
			if err != nil {
				return nil, err
			}
			f.Directives = append(f.Directives, d)
		default:
			return nil, p.errExpected("'peripheral', 'enum', or an overlay directive")
		}
	}
	return f, nil
}

func (p *parser) next() { p.tok = p.lx.next() }

func (p *parser) errExpected(what string) error {
	return &SyntaxError{
		Unit:     p.unit,
		Pos:      p.tok.pos,
		Expected: what,
		Found:    p.tok.describe(),
	}
}

func (p *parser) errAt(pos ast.Pos, what, found string) error {
	return &SyntaxError{Unit: p.unit, Pos: pos, Expected: what, Found: found}
}

func (p *parser) expect(k tokenKind) (token, error) {
	if p.tok.kind != k {
		return token{}, p.errExpected(k.String())
	}
	t := p.tok
	p.next()
	return t, nil
}

// parseEnumDecl parses: enum NAME { A = 0, B = 1 }
func (p *parser) parseEnumDecl() (*ast.EnumDecl, error) {
	pos := p.tok.pos
	p.next() // enum
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	items, err := p.parseEnumBody()
	if err != nil {
		return nil, err
	}
	return &ast.EnumDecl{Name: name.text, Pos: pos, Items: items}, nil
}

func (p *parser) parseEnumBody() ([]ast.EnumItem, error) {
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	var items []ast.EnumItem
	for p.tok.kind != tokRBrace {
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokAssign); err != nil {
			return nil, err
		}
		num, err := p.parseNumberToken()
		if err != nil {
			return nil, err
		}
		items = append(items, ast.EnumItem{Name: name.text, Value: num.Value, Pos: name.pos})
		if p.tok.kind == tokComma {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return items, nil
}

// childKinds maps a scope kind to the child scope keywords it accepts.
func childKind(parent ast.ScopeKind, keyword string) (ast.ScopeKind, bool) {
	switch parent {
	case ast.ScopePeripheral, ast.ScopeBlock:
		switch keyword {
		case "block":
			return ast.ScopeBlock, true
		case "reg":
			return ast.ScopeRegister, true
		}
	case ast.ScopeRegister:
		if keyword == "field" {
			return ast.ScopeField, true
		}
	}
	return 0, false
}

func expectedChildren(parent ast.ScopeKind) string {
	switch parent {
	case ast.ScopePeripheral, ast.ScopeBlock:
		return "'reg', 'block', or an attribute"
	case ast.ScopeRegister:
		return "'field' or an attribute"
	default:
		return "an attribute"
	}
}

// parseScope parses: KEYWORD NAME { attrs and children }
// with the keyword already current.
func (p *parser) parseScope(kind ast.ScopeKind) (*ast.Scope, error) {
	pos := p.tok.pos
	p.next() // keyword
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	s := &ast.Scope{Kind: kind, Name: name.text, Pos: pos}
	if err := p.parseScopeBody(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *parser) parseScopeBody(s *ast.Scope) error {
	if _, err := p.expect(tokLBrace); err != nil {
		return err
	}
	for p.tok.kind != tokRBrace {
		if p.tok.kind != tokIdent {
			return p.errExpected(expectedChildren(s.Kind))
		}
		if ck, ok := childKind(s.Kind, p.tok.text); ok {
			child, err := p.parseScope(ck)
			if err != nil {
				return err
			}
			s.Children = append(s.Children, child)
			continue
		}
		attr, err := p.parseAttr()
		if err != nil {
			return err
		}
		s.Attrs = append(s.Attrs, attr)
	}
	p.next() // }
	return nil
}

// parseAttr parses: key = value
func (p *parser) parseAttr() (*ast.Attr, error) {
	key, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokAssign); err != nil {
		return nil, err
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ast.Attr{Key: key.text, Pos: key.pos, Value: v}, nil
}

func (p *parser) parseValue() (ast.Value, error) {
	pos := p.tok.pos
	switch p.tok.kind {
	case tokNumber:
		lit, err := p.parseNumberToken()
		if err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.ValueNumber, Pos: pos, Num: lit.Value, Width: lit.Width}, nil

	case tokString:
		t := p.tok
		p.next()
		return ast.Value{Kind: ast.ValueString, Pos: pos, Str: t.text}, nil

	case tokIdent:
		t := p.tok
		p.next()
		switch t.text {
		case "true":
			return ast.Value{Kind: ast.ValueBool, Pos: pos, Bool: true}, nil
		case "false":
			return ast.Value{Kind: ast.ValueBool, Pos: pos, Bool: false}, nil
		}
		return ast.Value{Kind: ast.ValueIdent, Pos: pos, Ident: t.text}, nil

	case tokLBracket:
		return p.parseBitRange()

	case tokLBrace:
		items, err := p.parseEnumBody()
		if err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.ValueEnumList, Pos: pos, Enum: items}, nil
	}
	return ast.Value{}, p.errExpected("a value")
}

// parseBitRange parses [high:low] or [bit].
func (p *parser) parseBitRange() (ast.Value, error) {
	pos := p.tok.pos
	p.next() // [
	hiTok := p.tok
	hi, err := p.parseNumberToken()
	if err != nil {
		return ast.Value{}, err
	}
	lo := hi
	if p.tok.kind == tokColon {
		p.next()
		lo, err = p.parseNumberToken()
		if err != nil {
			return ast.Value{}, err
		}
	}
	if _, err := p.expect(tokRBracket); err != nil {
		return ast.Value{}, err
	}
	if lo.Value > hi.Value {
		return ast.Value{}, p.errAt(hiTok.pos, "bit range with high >= low",
			fmt.Sprintf("[%d:%d]", hi.Value, lo.Value))
	}
	if hi.Value > 63 {
		return ast.Value{}, p.errAt(hiTok.pos, "bit index below 64",
			fmt.Sprintf("%d", hi.Value))
	}
	return ast.Value{
		Kind: ast.ValueBitRange,
		Pos:  pos,
		Hi:   int(hi.Value),
		Lo:   int(lo.Value),
	}, nil
}

func (p *parser) parseNumberToken() (numlit.Literal, error) {
	if p.tok.kind != tokNumber {
		return numlit.Literal{}, p.errExpected("number")
	}
	t := p.tok
	lit, err := numlit.Parse(t.text)
	if err != nil {
		return numlit.Literal{}, p.errAt(t.pos, "numeric literal", fmt.Sprintf("%q", t.text))
	}
	p.next()
	return lit, nil
}

// parseDirective parses one overlay statement:
//
//	extend QNAME { scopes }
//	override QNAME.attr = value
//	annotate QNAME { attrs }
func (p *parser) parseDirective() (*ast.Directive, error) {
	kw := p.tok
	p.next()

	path, err := p.parseQName()
	if err != nil {
		return nil, err
	}

	switch kw.text {
	case "extend":
		d := &ast.Directive{Op: ast.OpExtend, Pos: kw.pos, Target: path}
		if _, err := p.expect(tokLBrace); err != nil {
			return nil, err
		}
		for p.tok.kind != tokRBrace {
			if p.tok.kind != tokIdent {
				return nil, p.errExpected("'reg', 'block', or 'field'")
			}
			var kind ast.ScopeKind
			switch p.tok.text {
			case "block":
				kind = ast.ScopeBlock
			case "reg":
				kind = ast.ScopeRegister
			case "field":
				kind = ast.ScopeField
			default:
				return nil, p.errExpected("'reg', 'block', or 'field'")
			}
			s, err := p.parseScope(kind)
			if err != nil {
				return nil, err
			}
			d.Body = append(d.Body, s)
		}
		p.next() // }
		return d, nil

	case "override":
		// The final path segment names the attribute being replaced.
		if len(path) < 2 {
			return nil, p.errAt(kw.pos, "override target of the form path.attribute",
				fmt.Sprintf("%q", joinPath(path)))
		}
		if _, err := p.expect(tokAssign); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &ast.Directive{
			Op:     ast.OpOverride,
			Pos:    kw.pos,
			Target: path[:len(path)-1],
			Attr:   path[len(path)-1],
			Value:  v,
		}, nil

	case "annotate":
		d := &ast.Directive{Op: ast.OpAnnotate, Pos: kw.pos, Target: path}
		if _, err := p.expect(tokLBrace); err != nil {
			return nil, err
		}
		for p.tok.kind != tokRBrace {
			a, err := p.parseAttr()
			if err != nil {
				return nil, err
			}
			d.Attrs = append(d.Attrs, a)
		}
		p.next() // }
		return d, nil
	}
	return nil, p.errAt(kw.pos, "'extend', 'override', or 'annotate'", fmt.Sprintf("%q", kw.text))
}

func (p *parser) parseQName() ([]string, error) {
	first, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	segs := []string{first.text}
	for p.tok.kind == tokDot {
		p.next()
		seg, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg.text)
	}
	return segs, nil
}

func joinPath(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}
