// Package builder lowers base-tagged ASTs into the unified AddressSpace
// model.
//
// Lowering resolves absolute addresses (parent base plus declared
// relative offset), expands replicated blocks into independent strided
// instances, and indexes every node under its case-sensitive qualified
// name. Duplicate qualified names across the base set and references
// to undeclared enum types are build errors; like every other stage,
// the builder collects all of them instead of stopping at the first.
package builder

import (
	"fmt"

	"github.com/joshuapare/regkit/regmap"
	"github.com/joshuapare/regkit/regmap/ast"
)

// declSite remembers where a qualified name was first declared, for
// duplicate-definition diagnostics that point at both sites.
type declSite struct {
	unit string
	pos  ast.Pos
}

type builder struct {
	space   *regmap.AddressSpace
	issues  []regmap.Issue
	sites   map[string]declSite
	pending []pendingEnumRef
}

// Build constructs the AddressSpace from every base-tagged AST. The
// returned issue slice holds all build errors; the model is only
// usable when none of them is error severity.
func Build(files []*ast.File) (*regmap.AddressSpace, []regmap.Issue) {
	b := &builder{
		space: regmap.NewAddressSpace(),
		sites: make(map[string]declSite),
	}

	for _, f := range files {
		if f.Origin != ast.OriginBase {
			continue
		}
		if len(f.Directives) > 0 {
			d := f.Directives[0]
			b.errorf(f.Unit, d.Pos, regmap.CodeInvalidAttribute, "",
				"overlay directive %q is not allowed in a base description file", d.Op)
		}
		for _, e := range f.Enums {
			b.addEnum(f.Unit, e)
		}
		for _, s := range f.Scopes {
			b.addPeripheral(f.Unit, s)
		}
	}

	b.resolveEnumRefs()
	b.space.ResolveAddresses()
	return b.space, b.issues
}

func (b *builder) errorf(unit string, pos ast.Pos, code regmap.IssueCode, path, format string, args ...any) {
	b.issues = append(b.issues, regmap.Issue{
		Severity: regmap.SeverityError,
		Code:     code,
		Path:     path,
		Unit:     unit,
		Line:     pos.Line,
		Col:      pos.Col,
		Msg:      fmt.Sprintf(format, args...),
	})
}

// declare records a qualified name, reporting a duplicate-definition
// error naming the earlier site when the name is already taken.
func (b *builder) declare(unit string, pos ast.Pos, qname string, n regmap.Node) bool {
	if prev, dup := b.sites[qname]; dup {
		b.errorf(unit, pos, regmap.CodeDuplicate, qname,
			"duplicate definition of %q (first defined at %s:%d:%d)",
			qname, prev.unit, prev.pos.Line, prev.pos.Col)
		return false
	}
	if !b.space.Index(qname, n) {
		// Name was indexed outside this builder (an overlay extend
		// colliding with a base definition).
		b.errorf(unit, pos, regmap.CodeDuplicate, qname,
			"duplicate definition of %q", qname)
		return false
	}
	b.sites[qname] = declSite{unit: unit, pos: pos}
	return true
}

func (b *builder) addEnum(unit string, decl *ast.EnumDecl) {
	qname := "enum." + decl.Name
	if prev, dup := b.sites[qname]; dup {
		b.errorf(unit, decl.Pos, regmap.CodeDuplicate, decl.Name,
			"duplicate enum type %q (first defined at %s:%d:%d)",
			decl.Name, prev.unit, prev.pos.Line, prev.pos.Col)
		return
	}
	b.sites[qname] = declSite{unit: unit, pos: decl.Pos}

	et := &regmap.EnumType{Name: decl.Name}
	for _, it := range decl.Items {
		et.Values = append(et.Values, regmap.EnumValue{Name: it.Name, Value: it.Value})
	}
	b.space.Enums = append(b.space.Enums, et)
}

func (b *builder) addPeripheral(unit string, s *ast.Scope) {
	p := &regmap.Peripheral{Name: s.Name}

	for _, a := range s.Attrs {
		switch a.Key {
		case "base":
			if n, ok := b.number(unit, a, s.Name); ok {
				p.Base = n
			}
		case "size":
			if n, ok := b.number(unit, a, s.Name); ok {
				p.Size = n
			}
		case "doc":
			p.Doc = b.str(unit, a, s.Name)
		default:
			b.errorf(unit, a.Pos, regmap.CodeInvalidAttribute, s.Name,
				"unknown peripheral attribute %q", a.Key)
		}
	}
	if s.Attr("base") == nil {
		b.errorf(unit, s.Pos, regmap.CodeInvalidAttribute, s.Name,
			"peripheral %q has no base address", s.Name)
	}

	if !b.declare(unit, s.Pos, s.Name, p) {
		return
	}
	b.addChildren(unit, s, s.Name, &p.Blocks, &p.Registers)
	b.space.Peripherals = append(b.space.Peripherals, p)
}

// addChildren lowers the reg and block children of a peripheral or
// block scope, expanding replicated blocks on the way.
func (b *builder) addChildren(unit string, s *ast.Scope, parentQ string, blocks *[]*regmap.RegisterBlock, regs *[]*regmap.Register) {
	for _, c := range s.Children {
		switch c.Kind {
		case ast.ScopeRegister:
			if r := b.buildRegister(unit, c, parentQ); r != nil {
				*regs = append(*regs, r)
			}
		case ast.ScopeBlock:
			for _, blk := range b.buildBlocks(unit, c, parentQ) {
				*blocks = append(*blocks, blk)
			}
		}
	}
}

// buildBlocks lowers one block scope. A replicated block (repeat > 1)
// expands into repeat instances named NAME0..NAME<n-1>, each at
// offset + i*stride and each independently indexed and validated.
func (b *builder) buildBlocks(unit string, s *ast.Scope, parentQ string) []*regmap.RegisterBlock {
	var (
		offset, stride uint64
		repeat         = 1
		doc            string
	)
	for _, a := range s.Attrs {
		switch a.Key {
		case "offset":
			if n, ok := b.number(unit, a, parentQ); ok {
				offset = n
			}
		case "repeat":
			if n, ok := b.number(unit, a, parentQ); ok {
				repeat = int(n)
			}
		case "stride":
			if n, ok := b.number(unit, a, parentQ); ok {
				stride = n
			}
		case "doc":
			doc = b.str(unit, a, parentQ)
		default:
			b.errorf(unit, a.Pos, regmap.CodeInvalidAttribute, parentQ,
				"unknown block attribute %q", a.Key)
		}
	}
	if s.Attr("offset") == nil {
		b.errorf(unit, s.Pos, regmap.CodeInvalidAttribute,
			regmap.JoinQName(parentQ, s.Name), "block %q has no offset", s.Name)
	}
	if repeat < 1 {
		b.errorf(unit, s.Pos, regmap.CodeInvalidAttribute,
			regmap.JoinQName(parentQ, s.Name), "repeat must be at least 1")
		repeat = 1
	}
	if repeat > 1 && stride == 0 {
		b.errorf(unit, s.Pos, regmap.CodeInvalidAttribute,
			regmap.JoinQName(parentQ, s.Name),
			"replicated block %q needs a nonzero stride", s.Name)
	}

	var out []*regmap.RegisterBlock
	for i := 0; i < repeat; i++ {
		name := s.Name
		if repeat > 1 {
			name = fmt.Sprintf("%s%d", s.Name, i)
		}
		qname := regmap.JoinQName(parentQ, name)
		blk := &regmap.RegisterBlock{
			Name:   name,
			Offset: offset + uint64(i)*stride,
			Repeat: 1,
			Doc:    doc,
		}
		if !b.declare(unit, s.Pos, qname, blk) {
			continue
		}
		b.addChildren(unit, s, qname, &blk.Blocks, &blk.Registers)
		out = append(out, blk)
	}
	return out
}

func (b *builder) buildRegister(unit string, s *ast.Scope, parentQ string) *regmap.Register {
	qname := regmap.JoinQName(parentQ, s.Name)
	r := &regmap.Register{Name: s.Name, Width: 32, Access: regmap.AccessRW}

	for _, a := range s.Attrs {
		switch a.Key {
		case "offset":
			if n, ok := b.number(unit, a, qname); ok {
				r.Offset = n
			}
		case "width":
			if n, ok := b.number(unit, a, qname); ok {
				if n < 1 || n > 64 {
					b.errorf(unit, a.Pos, regmap.CodeInvalidAttribute, qname,
						"register width must be between 1 and 64, got %d", n)
				} else {
					r.Width = int(n)
				}
			}
		case "access":
			if m, ok := b.access(unit, a, qname); ok {
				r.Access = m
			}
		case "reset":
			if n, ok := b.number(unit, a, qname); ok {
				r.Reset = n
			}
		case "doc":
			r.Doc = b.str(unit, a, qname)
		default:
			b.errorf(unit, a.Pos, regmap.CodeInvalidAttribute, qname,
				"unknown register attribute %q", a.Key)
		}
	}
	if s.Attr("offset") == nil {
		b.errorf(unit, s.Pos, regmap.CodeInvalidAttribute, qname,
			"register %q has no offset", s.Name)
	}

	if !b.declare(unit, s.Pos, qname, r) {
		return nil
	}
	for _, c := range s.Children {
		if f := b.buildField(unit, c, qname, r); f != nil {
			r.Fields = append(r.Fields, f)
		}
	}
	return r
}

func (b *builder) buildField(unit string, s *ast.Scope, parentQ string, parent *regmap.Register) *regmap.Field {
	qname := regmap.JoinQName(parentQ, s.Name)
	f := &regmap.Field{Name: s.Name, Access: parent.Access}

	haveBits := false
	for _, a := range s.Attrs {
		switch a.Key {
		case "bits":
			if a.Value.Kind != ast.ValueBitRange {
				b.errorf(unit, a.Pos, regmap.CodeInvalidAttribute, qname,
					"bits must be a [high:low] or [bit] range")
				continue
			}
			f.Hi, f.Lo = a.Value.Hi, a.Value.Lo
			haveBits = true
		case "access":
			if m, ok := b.access(unit, a, qname); ok {
				f.Access = m
			}
		case "enum":
			switch a.Value.Kind {
			case ast.ValueEnumList:
				for _, it := range a.Value.Enum {
					f.Enum = append(f.Enum, regmap.EnumValue{Name: it.Name, Value: it.Value})
				}
			case ast.ValueIdent:
				// Deferred to resolveEnumRefs once all enum types
				// from all base files are known.
				b.deferEnumRef(unit, a, qname, f)
			default:
				b.errorf(unit, a.Pos, regmap.CodeInvalidAttribute, qname,
					"enum must be an inline value list or the name of an enum type")
			}
		case "doc":
			f.Doc = b.str(unit, a, qname)
		default:
			b.errorf(unit, a.Pos, regmap.CodeInvalidAttribute, qname,
				"unknown field attribute %q", a.Key)
		}
	}
	if !haveBits {
		b.errorf(unit, s.Pos, regmap.CodeInvalidAttribute, qname,
			"field %q has no bits range", s.Name)
	}

	if !b.declare(unit, s.Pos, qname, f) {
		return nil
	}
	return f
}

// pendingEnumRef is an enum = name reference waiting for the full enum
// type set.
type pendingEnumRef struct {
	unit  string
	pos   ast.Pos
	qname string
	ref   string
	field *regmap.Field
}

func (b *builder) deferEnumRef(unit string, a *ast.Attr, qname string, f *regmap.Field) {
	b.pending = append(b.pending, pendingEnumRef{
		unit:  unit,
		pos:   a.Pos,
		qname: qname,
		ref:   a.Value.Ident,
		field: f,
	})
}

func (b *builder) resolveEnumRefs() {
	for _, p := range b.pending {
		et, ok := b.space.EnumType(p.ref)
		if !ok {
			b.errorf(p.unit, p.pos, regmap.CodeUnresolved, p.qname,
				"field references undeclared enum type %q", p.ref)
			continue
		}
		p.field.Enum = append([]regmap.EnumValue(nil), et.Values...)
	}
	b.pending = nil
}

func (b *builder) number(unit string, a *ast.Attr, path string) (uint64, bool) {
	if a.Value.Kind != ast.ValueNumber {
		b.errorf(unit, a.Pos, regmap.CodeInvalidAttribute, path,
			"%s must be a number", a.Key)
		return 0, false
	}
	return a.Value.Num, true
}

func (b *builder) str(unit string, a *ast.Attr, path string) string {
	if a.Value.Kind != ast.ValueString {
		b.errorf(unit, a.Pos, regmap.CodeInvalidAttribute, path,
			"%s must be a string", a.Key)
		return ""
	}
	return a.Value.Str
}

func (b *builder) access(unit string, a *ast.Attr, path string) (regmap.AccessMode, bool) {
	if a.Value.Kind != ast.ValueIdent {
		b.errorf(unit, a.Pos, regmap.CodeInvalidAttribute, path,
			"access must be one of rw, ro, wo, w1c")
		return 0, false
	}
	m, ok := regmap.ParseAccessMode(a.Value.Ident)
	if !ok {
		b.errorf(unit, a.Pos, regmap.CodeInvalidAttribute, path,
			"unknown access mode %q", a.Value.Ident)
		return 0, false
	}
	return m, true
}
