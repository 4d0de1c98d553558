package emit

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/joshuapare/regkit/internal/ident"
	"github.com/joshuapare/regkit/regmap"
)

// CTarget emits one C header per peripheral: address and mask macros
// plus static inline field accessors gated by access mode.
type CTarget struct {
	// GuardPrefix is prepended to the include-guard macro.
	GuardPrefix string
}

// Name implements Target.
func (t *CTarget) Name() string { return "c" }

// Emit implements Target.
func (t *CTarget) Emit(p *regmap.Peripheral) (Artifact, error) {
	dir := ident.Lower(p.Name)
	guard := fmt.Sprintf("%s_%s_H", ident.Upper(t.GuardPrefix), ident.Upper(p.Name))

	var b bytes.Buffer
	fmt.Fprintf(&b, "/* Code generated by regctl. DO NOT EDIT. */\n\n")
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", guard, guard)
	fmt.Fprintf(&b, "#include <stdint.h>\n\n")

	if p.Doc != "" {
		fmt.Fprintf(&b, "/* %s: %s */\n", p.Name, p.Doc)
	}
	fmt.Fprintf(&b, "#define %s_BASE 0x%XUL\n\n", ident.Upper(p.Name), p.Base)

	for _, fr := range flatten(p) {
		t.emitRegister(&b, p, fr)
	}

	fmt.Fprintf(&b, "#endif /* %s */\n", guard)
	return Artifact{
		Path:    path.Join(dir, dir+"_regs.h"),
		Content: b.Bytes(),
	}, nil
}

func (t *CTarget) emitRegister(b *bytes.Buffer, p *regmap.Peripheral, fr flatReg) {
	r := fr.reg
	sym := symbol(p.Name, fr.segs)
	suffix := cLiteralSuffix(r.Width)

	if r.Doc != "" {
		fmt.Fprintf(b, "/* %s: %s (%d bits, %s, reset 0x%X) */\n", sym, r.Doc, r.Width, r.Access, r.Reset)
	} else {
		fmt.Fprintf(b, "/* %s (%d bits, %s, reset 0x%X) */\n", sym, r.Width, r.Access, r.Reset)
	}
	fmt.Fprintf(b, "#define %s_ADDR 0x%X%s\n", sym, r.AbsAddr, suffix)
	fmt.Fprintf(b, "#define %s_RESET 0x%X%s\n", sym, r.Reset, suffix)

	for _, f := range r.Fields {
		fu := ident.Upper(f.Name)
		fmt.Fprintf(b, "#define %s_%s_SHIFT %d\n", sym, fu, f.Lo)
		fmt.Fprintf(b, "#define %s_%s_MASK (0x%X%s << %d)\n", sym, fu, unshiftedMask(f), suffix, f.Lo)
		for _, ev := range f.Enum {
			fmt.Fprintf(b, "#define %s_%s_%s 0x%X%s\n", sym, fu, ident.Upper(ev.Name), ev.Value, suffix)
		}
	}
	fmt.Fprintf(b, "\n")

	for _, f := range r.Fields {
		t.emitAccessors(b, sym, r, f)
	}
}

func (t *CTarget) emitAccessors(b *bytes.Buffer, sym string, r *regmap.Register, f *regmap.Field) {
	ctype := cWidthType(r.Width)
	suffix := cLiteralSuffix(r.Width)
	fn := strings.ToLower(sym) + "_" + ident.Lower(f.Name)
	mask := unshiftedMask(f)

	if f.Access.CanRead() {
		fmt.Fprintf(b, "static inline %s %s_get(%s reg) {\n", ctype, fn, ctype)
		fmt.Fprintf(b, "\treturn (%s)((reg >> %d) & 0x%X%s);\n}\n\n", ctype, f.Lo, mask, suffix)
	}
	if f.Access.CanWrite() {
		fmt.Fprintf(b, "static inline %s %s_set(%s reg, %s val) {\n", ctype, fn, ctype, ctype)
		fmt.Fprintf(b, "\treturn (%s)((reg & ~(%s)(0x%X%s << %d)) | ((val & 0x%X%s) << %d));\n}\n\n",
			ctype, ctype, mask, suffix, f.Lo, mask, suffix, f.Lo)
	}
	if f.Access.IsClearOnly() {
		fmt.Fprintf(b, "/* Write-one-to-clear: writing the returned value clears %s. */\n", f.Name)
		fmt.Fprintf(b, "static inline %s %s_clear(%s reg) {\n", ctype, fn, ctype)
		fmt.Fprintf(b, "\treturn (%s)(reg | (0x%X%s << %d));\n}\n\n", ctype, mask, suffix, f.Lo)
	}
}

// cLiteralSuffix picks UL or ULL so constants stay in range on 32-bit
// targets.
func cLiteralSuffix(width int) string {
	if width > 32 {
		return "ULL"
	}
	return "UL"
}
