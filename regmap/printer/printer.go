// Package printer renders the merged address-space model for human
// inspection, in text or JSON form. It backs the regctl dump command
// and is handy in tests for golden comparisons.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/regkit/regmap"
)

// Format specifies the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format selects text or json. Default: FormatText.
	Format Format

	// IndentSize is the number of spaces per level (text only).
	IndentSize int

	// ShowDocs includes documentation strings.
	ShowDocs bool

	// ShowEnums includes enumerated value sets under fields.
	ShowEnums bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:     FormatText,
		IndentSize: 2,
		ShowDocs:   true,
		ShowEnums:  true,
	}
}

// Printer renders an AddressSpace to a writer.
type Printer struct {
	opts Options
	w    io.Writer
}

// New creates a Printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	if opts.IndentSize <= 0 {
		opts.IndentSize = 2
	}
	return &Printer{opts: opts, w: w}
}

// Print renders the whole model.
func (p *Printer) Print(space *regmap.AddressSpace) error {
	if p.opts.Format == FormatJSON {
		return p.printJSON(space)
	}
	return p.printText(space)
}

func (p *Printer) indent(depth int) string {
	return strings.Repeat(" ", depth*p.opts.IndentSize)
}

func (p *Printer) printText(space *regmap.AddressSpace) error {
	for _, per := range space.Peripherals {
		fmt.Fprintf(p.w, "peripheral %s @ 0x%X", per.Name, per.Base)
		if per.Size > 0 {
			fmt.Fprintf(p.w, " size 0x%X", per.Size)
		}
		fmt.Fprintln(p.w)
		p.printDoc(per.Doc, 1)
		for _, r := range per.Registers {
			p.printRegister(r, 1)
		}
		for _, b := range per.Blocks {
			p.printBlock(b, 1)
		}
	}
	return nil
}

func (p *Printer) printDoc(doc string, depth int) {
	if p.opts.ShowDocs && doc != "" {
		fmt.Fprintf(p.w, "%s# %s\n", p.indent(depth), doc)
	}
}

func (p *Printer) printBlock(b *regmap.RegisterBlock, depth int) {
	fmt.Fprintf(p.w, "%sblock %s @ 0x%X\n", p.indent(depth), b.Name, b.AbsBase)
	p.printDoc(b.Doc, depth+1)
	for _, r := range b.Registers {
		p.printRegister(r, depth+1)
	}
	for _, nb := range b.Blocks {
		p.printBlock(nb, depth+1)
	}
}

func (p *Printer) printRegister(r *regmap.Register, depth int) {
	fmt.Fprintf(p.w, "%sreg %s @ 0x%X width=%d access=%s reset=0x%X\n",
		p.indent(depth), r.Name, r.AbsAddr, r.Width, r.Access, r.Reset)
	p.printDoc(r.Doc, depth+1)
	for _, f := range r.Fields {
		if f.Hi == f.Lo {
			fmt.Fprintf(p.w, "%sfield %s [%d] access=%s\n",
				p.indent(depth+1), f.Name, f.Lo, f.Access)
		} else {
			fmt.Fprintf(p.w, "%sfield %s [%d:%d] access=%s\n",
				p.indent(depth+1), f.Name, f.Hi, f.Lo, f.Access)
		}
		p.printDoc(f.Doc, depth+2)
		if p.opts.ShowEnums {
			for _, ev := range f.Enum {
				fmt.Fprintf(p.w, "%s%s = 0x%X\n", p.indent(depth+2), ev.Name, ev.Value)
			}
		}
	}
}

// JSON shapes mirror the model but keep only what a consumer of the
// dump needs; addresses are rendered as hex strings for readability.

type jsonField struct {
	Name   string            `json:"name"`
	Hi     int               `json:"hi"`
	Lo     int               `json:"lo"`
	Access string            `json:"access"`
	Doc    string            `json:"doc,omitempty"`
	Enum   map[string]uint64 `json:"enum,omitempty"`
}

type jsonRegister struct {
	Name    string      `json:"name"`
	Address string      `json:"address"`
	Width   int         `json:"width"`
	Access  string      `json:"access"`
	Reset   string      `json:"reset"`
	Doc     string      `json:"doc,omitempty"`
	Fields  []jsonField `json:"fields,omitempty"`
}

type jsonBlock struct {
	Name      string         `json:"name"`
	Base      string         `json:"base"`
	Doc       string         `json:"doc,omitempty"`
	Registers []jsonRegister `json:"registers,omitempty"`
	Blocks    []jsonBlock    `json:"blocks,omitempty"`
}

type jsonPeripheral struct {
	Name      string         `json:"name"`
	Base      string         `json:"base"`
	Size      string         `json:"size,omitempty"`
	Doc       string         `json:"doc,omitempty"`
	Registers []jsonRegister `json:"registers,omitempty"`
	Blocks    []jsonBlock    `json:"blocks,omitempty"`
}

func (p *Printer) printJSON(space *regmap.AddressSpace) error {
	out := make([]jsonPeripheral, 0, len(space.Peripherals))
	for _, per := range space.Peripherals {
		jp := jsonPeripheral{
			Name: per.Name,
			Base: hex(per.Base),
			Doc:  per.Doc,
		}
		if per.Size > 0 {
			jp.Size = hex(per.Size)
		}
		for _, r := range per.Registers {
			jp.Registers = append(jp.Registers, p.jsonReg(r))
		}
		for _, b := range per.Blocks {
			jp.Blocks = append(jp.Blocks, p.jsonBlock(b))
		}
		out = append(out, jp)
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (p *Printer) jsonBlock(b *regmap.RegisterBlock) jsonBlock {
	jb := jsonBlock{Name: b.Name, Base: hex(b.AbsBase), Doc: b.Doc}
	for _, r := range b.Registers {
		jb.Registers = append(jb.Registers, p.jsonReg(r))
	}
	for _, nb := range b.Blocks {
		jb.Blocks = append(jb.Blocks, p.jsonBlock(nb))
	}
	return jb
}

func (p *Printer) jsonReg(r *regmap.Register) jsonRegister {
	jr := jsonRegister{
		Name:    r.Name,
		Address: hex(r.AbsAddr),
		Width:   r.Width,
		Access:  r.Access.String(),
		Reset:   hex(r.Reset),
		Doc:     r.Doc,
	}
	for _, f := range r.Fields {
		jf := jsonField{Name: f.Name, Hi: f.Hi, Lo: f.Lo, Access: f.Access.String(), Doc: f.Doc}
		if len(f.Enum) > 0 {
			jf.Enum = make(map[string]uint64, len(f.Enum))
			for _, ev := range f.Enum {
				jf.Enum[ev.Name] = ev.Value
			}
		}
		jr.Fields = append(jr.Fields, jf)
	}
	return jr
}

func hex(v uint64) string { return fmt.Sprintf("0x%X", v) }
