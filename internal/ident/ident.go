// Package ident derives source-code identifiers from model node names.
// Dialect names are already identifier-safe (the lexer only admits
// [A-Za-z_][A-Za-z0-9_]*); these helpers only adjust case conventions
// per emission target.
package ident

import "strings"

// Camel converts NAME, tx_en, or CTRL to exported CamelCase: Name,
// TxEn, Ctrl. Used for Go accessor method names and enum constants.
func Camel(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	return b.String()
}

// Upper converts a name to UPPER_SNAKE for C macros.
func Upper(s string) string { return strings.ToUpper(s) }

// Lower converts a name to lower case for file and package names.
func Lower(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "")
}
