// Package numlit parses the numeric literal forms of the
// register-description dialect: decimal, 0x hex, 0b binary, and
// width-suffixed Verilog-style literals (32'h1F, 8'd255, 4'b1010).
package numlit

import (
	"fmt"
	"strconv"
	"strings"
)

// Literal is a parsed numeric literal. Width is the declared bit width
// for suffixed forms and 0 otherwise.
type Literal struct {
	Value uint64
	Width int
}

// Parse parses one numeric literal. Underscores are permitted as digit
// separators in all forms.
func Parse(s string) (Literal, error) {
	raw := s
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return Literal{}, fmt.Errorf("empty numeric literal")
	}

	if i := strings.IndexByte(s, '\''); i >= 0 {
		return parseSized(raw, s[:i], s[i+1:])
	}

	var (
		v   uint64
		err error
	)
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		v, err = strconv.ParseUint(s[2:], 2, 64)
	default:
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return Literal{}, fmt.Errorf("bad numeric literal %q", raw)
	}
	return Literal{Value: v}, nil
}

// parseSized handles WIDTH'BASEDIGITS.
func parseSized(raw, widthPart, rest string) (Literal, error) {
	width, err := strconv.Atoi(widthPart)
	if err != nil || width < 1 || width > 64 {
		return Literal{}, fmt.Errorf("bad width in literal %q", raw)
	}
	if rest == "" {
		return Literal{}, fmt.Errorf("missing digits in literal %q", raw)
	}

	var base int
	switch rest[0] {
	case 'h', 'H':
		base = 16
	case 'd', 'D':
		base = 10
	case 'b', 'B':
		base = 2
	default:
		return Literal{}, fmt.Errorf("bad base %q in literal %q", rest[0], raw)
	}

	v, err := strconv.ParseUint(rest[1:], base, 64)
	if err != nil {
		return Literal{}, fmt.Errorf("bad digits in literal %q", raw)
	}
	if width < 64 && v >= uint64(1)<<uint(width) {
		return Literal{}, fmt.Errorf("value of %q exceeds its declared %d-bit width", raw, width)
	}
	return Literal{Value: v, Width: width}, nil
}
