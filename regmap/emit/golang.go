package emit

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/joshuapare/regkit/internal/ident"
	"github.com/joshuapare/regkit/regmap"
)

// GoTarget emits one Go source file per peripheral with address
// constants, a value type per register, field masks, enum constants,
// and accessors gated by each field's access mode.
type GoTarget struct {
	// PackageName overrides the package name; empty means the
	// lower-cased peripheral name.
	PackageName string
}

// Name implements Target.
func (t *GoTarget) Name() string { return "go" }

// Emit implements Target.
func (t *GoTarget) Emit(p *regmap.Peripheral) (Artifact, error) {
	pkg := t.PackageName
	if pkg == "" {
		pkg = ident.Lower(p.Name)
	}
	dir := ident.Lower(p.Name)

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by regctl. DO NOT EDIT.\n\n")
	if p.Doc != "" {
		fmt.Fprintf(&b, "// Package %s: %s\n", pkg, p.Doc)
	} else {
		fmt.Fprintf(&b, "// Package %s provides typed access to the %s peripheral registers.\n", pkg, p.Name)
	}
	fmt.Fprintf(&b, "package %s\n\n", pkg)

	fmt.Fprintf(&b, "// %s base address.\n", p.Name)
	fmt.Fprintf(&b, "const %s_BASE uintptr = 0x%X\n\n", ident.Upper(p.Name), p.Base)

	regs := flatten(p)
	if len(regs) > 0 {
		fmt.Fprintf(&b, "// Register addresses.\nconst (\n")
		for _, fr := range regs {
			sym := symbol(p.Name, fr.segs)
			fmt.Fprintf(&b, "\t%s_ADDR uintptr = 0x%X // %s, %d bits\n",
				sym, fr.reg.AbsAddr, fr.reg.Access, fr.reg.Width)
		}
		fmt.Fprintf(&b, ")\n\n")
	}

	for _, fr := range regs {
		t.emitRegister(&b, p, fr)
	}

	return Artifact{
		Path:    path.Join(dir, dir+"_regs.go"),
		Content: b.Bytes(),
	}, nil
}

// symbol builds the UPPER_SNAKE symbol prefix for a register path:
// UART + [FIFO0 DATA] -> UART_FIFO0_DATA.
func symbol(peripheral string, segs []string) string {
	parts := make([]string, 0, len(segs)+1)
	parts = append(parts, ident.Upper(peripheral))
	for _, s := range segs {
		parts = append(parts, ident.Upper(s))
	}
	return strings.Join(parts, "_")
}

// typeName builds the register value type name: FIFO0_DATA.
func typeName(segs []string) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = ident.Upper(s)
	}
	return strings.Join(parts, "_")
}

func (t *GoTarget) emitRegister(b *bytes.Buffer, p *regmap.Peripheral, fr flatReg) {
	r := fr.reg
	tn := typeName(fr.segs)
	base := goWidthType(r.Width)

	if r.Doc != "" {
		fmt.Fprintf(b, "// %s: %s\n//\n", tn, r.Doc)
	} else {
		fmt.Fprintf(b, "// %s is the %s register.\n//\n", tn, regmap.JoinQName(append([]string{p.Name}, fr.segs...)...))
	}
	fmt.Fprintf(b, "// Width %d, access %s, reset 0x%X.\n", r.Width, r.Access, r.Reset)
	fmt.Fprintf(b, "type %s %s\n\n", tn, base)

	fmt.Fprintf(b, "// %s reset value.\n", tn)
	fmt.Fprintf(b, "const %s_RESET %s = 0x%X\n\n", tn, tn, r.Reset)

	if len(r.Fields) > 0 {
		fmt.Fprintf(b, "// %s field masks.\nconst (\n", tn)
		for _, f := range r.Fields {
			fu := ident.Upper(f.Name)
			fmt.Fprintf(b, "\t%s_%s_MASK %s = 0x%X << %d\n", tn, fu, tn, unshiftedMask(f), f.Lo)
			fmt.Fprintf(b, "\t%s_%s_SHIFT = %d\n", tn, fu, f.Lo)
		}
		fmt.Fprintf(b, ")\n\n")
	}

	for _, f := range r.Fields {
		if len(f.Enum) == 0 {
			continue
		}
		fmt.Fprintf(b, "// %s.%s values.\nconst (\n", tn, f.Name)
		for _, ev := range f.Enum {
			fmt.Fprintf(b, "\t%s_%s_%s = 0x%X\n", tn, ident.Upper(f.Name), ident.Upper(ev.Name), ev.Value)
		}
		fmt.Fprintf(b, ")\n\n")
	}

	for _, f := range r.Fields {
		t.emitAccessors(b, tn, base, f)
	}
}

// emitAccessors writes the per-field accessor methods permitted by the
// field's access mode: a getter for readable fields, a setter for
// writable fields, and only a clear operation for write-one-to-clear
// fields.
func (t *GoTarget) emitAccessors(b *bytes.Buffer, tn, base string, f *regmap.Field) {
	cam := ident.Camel(f.Name)
	mask := unshiftedMask(f)

	if f.Access.CanRead() {
		if f.Doc != "" {
			fmt.Fprintf(b, "// %s reads the %s field. %s\n", cam, f.Name, f.Doc)
		} else {
			fmt.Fprintf(b, "// %s reads the %s field.\n", cam, f.Name)
		}
		fmt.Fprintf(b, "func (r %s) %s() %s { return %s(r>>%d) & 0x%X }\n\n",
			tn, cam, base, base, f.Lo, mask)
	}

	if f.Access.CanWrite() {
		fmt.Fprintf(b, "// Set%s returns r with the %s field set to v.\n", cam, f.Name)
		fmt.Fprintf(b, "func (r %s) Set%s(v %s) %s { return r&^%s_%s_MASK | %s(v&0x%X)<<%d }\n\n",
			tn, cam, base, tn, tn, ident.Upper(f.Name), tn, mask, f.Lo)
	}

	if f.Access.IsClearOnly() {
		fmt.Fprintf(b, "// Clear%s returns r with the %s bit(s) set; writing the result\n", cam, f.Name)
		fmt.Fprintf(b, "// clears the condition in hardware.\n")
		fmt.Fprintf(b, "func (r %s) Clear%s() %s { return r | %s_%s_MASK }\n\n",
			tn, cam, tn, tn, ident.Upper(f.Name))
	}
}

// unshiftedMask is the field mask before shifting to the field offset.
func unshiftedMask(f *regmap.Field) uint64 {
	if f.Width() >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(f.Width())) - 1
}
