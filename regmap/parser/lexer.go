package parser

import (
	"fmt"
	"strings"

	"github.com/joshuapare/regkit/regmap/ast"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokAssign
	tokColon
	tokComma
	tokDot
	tokInvalid
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokAssign:
		return "'='"
	case tokColon:
		return "':'"
	case tokComma:
		return "','"
	case tokDot:
		return "'.'"
	default:
		return "invalid token"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  ast.Pos
}

// describe renders a token for "found ..." diagnostics.
func (t token) describe() string {
	switch t.kind {
	case tokIdent, tokNumber:
		return fmt.Sprintf("%q", t.text)
	case tokString:
		return "string"
	case tokEOF:
		return "end of file"
	case tokInvalid:
		return fmt.Sprintf("invalid character %q", t.text)
	default:
		return t.kind.String()
	}
}

// lexer produces the token stream for one source unit. It never fails;
// unrecognized input becomes a tokInvalid token the parser reports.
type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (lx *lexer) peekByte() byte {
	if lx.off >= len(lx.src) {
		return 0
	}
	return lx.src[lx.off]
}

func (lx *lexer) advance() byte {
	c := lx.src[lx.off]
	lx.off++
	if c == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return c
}

// next returns the next token, skipping whitespace and comments.
func (lx *lexer) next() token {
	for lx.off < len(lx.src) {
		c := lx.peekByte()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			lx.advance()
		case c == '/' && lx.off+1 < len(lx.src) && lx.src[lx.off+1] == '/':
			for lx.off < len(lx.src) && lx.peekByte() != '\n' {
				lx.advance()
			}
		case c == '/' && lx.off+1 < len(lx.src) && lx.src[lx.off+1] == '*':
			lx.advance()
			lx.advance()
			for lx.off < len(lx.src) {
				if lx.peekByte() == '*' && lx.off+1 < len(lx.src) && lx.src[lx.off+1] == '/' {
					lx.advance()
					lx.advance()
					break
				}
				lx.advance()
			}
		default:
			return lx.scanToken()
		}
	}
	return token{kind: tokEOF, pos: ast.Pos{Line: lx.line, Col: lx.col}}
}

func (lx *lexer) scanToken() token {
	pos := ast.Pos{Line: lx.line, Col: lx.col}
	c := lx.peekByte()

	switch c {
	case '{':
		lx.advance()
		return token{kind: tokLBrace, text: "{", pos: pos}
	case '}':
		lx.advance()
		return token{kind: tokRBrace, text: "}", pos: pos}
	case '[':
		lx.advance()
		return token{kind: tokLBracket, text: "[", pos: pos}
	case ']':
		lx.advance()
		return token{kind: tokRBracket, text: "]", pos: pos}
	case '=':
		lx.advance()
		return token{kind: tokAssign, text: "=", pos: pos}
	case ':':
		lx.advance()
		return token{kind: tokColon, text: ":", pos: pos}
	case ',':
		lx.advance()
		return token{kind: tokComma, text: ",", pos: pos}
	case '.':
		lx.advance()
		return token{kind: tokDot, text: ".", pos: pos}
	case '"':
		return lx.scanString(pos)
	}

	if isDigit(c) {
		return lx.scanNumber(pos)
	}
	if isIdentStart(c) {
		return lx.scanIdent(pos)
	}

	lx.advance()
	return token{kind: tokInvalid, text: string(c), pos: pos}
}

// scanNumber consumes a numeric literal including hex/binary prefixes
// and Verilog-style width suffixes (32'h1F). Validation of the digits
// happens in the parser via numlit.
func (lx *lexer) scanNumber(pos ast.Pos) token {
	var b strings.Builder
	for lx.off < len(lx.src) {
		c := lx.peekByte()
		if isDigit(c) || isHexLetter(c) || c == 'x' || c == 'X' || c == '_' || c == '\'' {
			b.WriteByte(lx.advance())
			continue
		}
		break
	}
	return token{kind: tokNumber, text: b.String(), pos: pos}
}

func (lx *lexer) scanIdent(pos ast.Pos) token {
	var b strings.Builder
	for lx.off < len(lx.src) {
		c := lx.peekByte()
		if isIdentStart(c) || isDigit(c) {
			b.WriteByte(lx.advance())
			continue
		}
		break
	}
	return token{kind: tokIdent, text: b.String(), pos: pos}
}

func (lx *lexer) scanString(pos ast.Pos) token {
	lx.advance() // opening quote
	var b strings.Builder
	for lx.off < len(lx.src) {
		c := lx.advance()
		switch c {
		case '"':
			return token{kind: tokString, text: b.String(), pos: pos}
		case '\\':
			if lx.off >= len(lx.src) {
				return token{kind: tokInvalid, text: "unterminated string", pos: pos}
			}
			e := lx.advance()
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"', '\\':
				b.WriteByte(e)
			default:
				b.WriteByte('\\')
				b.WriteByte(e)
			}
		case '\n':
			return token{kind: tokInvalid, text: "unterminated string", pos: pos}
		default:
			b.WriteByte(c)
		}
	}
	return token{kind: tokInvalid, text: "unterminated string", pos: pos}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexLetter(c byte) bool {
	return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
		c == 'h' || c == 'H' || c == 'd' || c == 'D' || c == 'b' || c == 'B'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
