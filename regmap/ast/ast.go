// Package ast defines the transient parse representation of
// register-description files. AST nodes are produced by the parser and
// consumed by the model builder and overlay extractor; they do not
// outlive a generation run.
package ast

// Origin tags a parsed file with the tree it was discovered in.
type Origin uint8

const (
	// OriginBase marks files from the RTL source tree.
	OriginBase Origin = iota
	// OriginOverlay marks files from the overlay directory.
	OriginOverlay
)

// String returns the origin tag used in diagnostics.
func (o Origin) String() string {
	if o == OriginOverlay {
		return "overlay"
	}
	return "base"
}

// Pos is a 1-based line/column source position.
type Pos struct {
	Line int
	Col  int
}

// File is the parse result of one source unit.
type File struct {
	// Unit is the stable unit identifier (relative path).
	Unit   string
	Origin Origin

	Enums      []*EnumDecl
	Scopes     []*Scope
	Directives []*Directive
}

// ScopeKind discriminates the nested scope variants of the dialect.
type ScopeKind uint8

const (
	ScopePeripheral ScopeKind = iota
	ScopeBlock
	ScopeRegister
	ScopeField
)

// String returns the dialect keyword for the scope kind.
func (k ScopeKind) String() string {
	switch k {
	case ScopePeripheral:
		return "peripheral"
	case ScopeBlock:
		return "block"
	case ScopeRegister:
		return "reg"
	case ScopeField:
		return "field"
	default:
		return "unknown"
	}
}

// Scope is a named nested scope: peripheral, block, reg, or field.
type Scope struct {
	Kind     ScopeKind
	Name     string
	Pos      Pos
	Attrs    []*Attr
	Children []*Scope
}

// Attr finds an attribute by key, or nil.
func (s *Scope) Attr(key string) *Attr {
	for _, a := range s.Attrs {
		if a.Key == key {
			return a
		}
	}
	return nil
}

// Attr is a key = value attribute inside a scope.
type Attr struct {
	Key   string
	Pos   Pos
	Value Value
}

// ValueKind discriminates attribute value variants.
type ValueKind uint8

const (
	ValueNumber ValueKind = iota
	ValueString
	ValueBool
	ValueIdent
	ValueBitRange
	ValueEnumList
)

// Value is a tagged attribute value. Exactly the fields for its Kind
// are meaningful.
type Value struct {
	Kind ValueKind
	Pos  Pos

	Num   uint64 // ValueNumber
	Width int    // ValueNumber: declared bit width, 0 when unsuffixed
	Str   string // ValueString
	Bool  bool   // ValueBool
	Ident string // ValueIdent

	// ValueBitRange: inclusive bit bounds, Hi >= Lo.
	Hi, Lo int

	Enum []EnumItem // ValueEnumList
}

// EnumItem is one NAME = number entry of an inline enum list or a
// top-level enum declaration.
type EnumItem struct {
	Name  string
	Value uint64
	Pos   Pos
}

// EnumDecl is a top-level named enum type declaration, referenced from
// fields via enum = name.
type EnumDecl struct {
	Name  string
	Pos   Pos
	Items []EnumItem
}

// DirectiveOp discriminates overlay directive variants.
type DirectiveOp uint8

const (
	// OpExtend appends new children to a container target.
	OpExtend DirectiveOp = iota
	// OpOverride replaces one scalar attribute of the target.
	OpOverride
	// OpAnnotate touches documentation/metadata attributes only.
	OpAnnotate
)

// String returns the dialect keyword for the directive op.
func (op DirectiveOp) String() string {
	switch op {
	case OpExtend:
		return "extend"
	case OpOverride:
		return "override"
	case OpAnnotate:
		return "annotate"
	default:
		return "unknown"
	}
}

// Directive is one overlay-file statement targeting a model node by
// qualified name.
type Directive struct {
	Op     DirectiveOp
	Pos    Pos
	Target []string // qualified-name segments

	// OpOverride: attribute key and replacement value.
	Attr  string
	Value Value

	// OpExtend: new child scopes to append.
	Body []*Scope

	// OpAnnotate: documentation/metadata attributes to set.
	Attrs []*Attr
}
