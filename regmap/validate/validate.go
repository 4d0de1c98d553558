// Package validate walks the merged AddressSpace and checks its
// structural invariants.
//
// Every check produces an Issue rather than an error return, and the
// whole walk always runs to completion: a single validation pass
// surfaces every defect in the model. Error-severity issues abort
// emission (the pipeline's job); warnings never do.
package validate

import (
	"fmt"
	"sort"

	"github.com/joshuapare/regkit/regmap"
)

// Options controls optional checks.
type Options struct {
	// WarnGaps enables the unmapped-address-gap warning between
	// consecutive registers of a container.
	WarnGaps bool
}

// DefaultOptions enables all checks.
func DefaultOptions() Options {
	return Options{WarnGaps: true}
}

type validator struct {
	opts   Options
	issues []regmap.Issue
}

// Run checks the model bottom-up and returns every issue found.
func Run(space *regmap.AddressSpace, opts Options) []regmap.Issue {
	v := &validator{opts: opts}

	for _, p := range space.Peripherals {
		v.checkPeripheral(p)
	}
	v.checkPeripheralCollisions(space.Peripherals)

	return v.issues
}

func (v *validator) addf(sev regmap.Severity, code regmap.IssueCode, path, format string, args ...any) {
	v.issues = append(v.issues, regmap.Issue{
		Severity: sev,
		Code:     code,
		Path:     path,
		Msg:      fmt.Sprintf(format, args...),
	})
}

// span is a half-open absolute address range belonging to a named node.
type span struct {
	path  string
	start uint64
	end   uint64
}

// makeSpan builds a collision span. A container with no declared size
// and no contents still occupies its base address, so zero-extent
// spans are widened to one byte; two empty peripherals sharing a base
// must collide, not pass silently.
func makeSpan(path string, start, end uint64) span {
	if end == start {
		end = start + 1
	}
	return span{path: path, start: start, end: end}
}

func overlaps(a, b span) bool {
	return a.start < b.end && b.start < a.end
}

// checkSpans reports every pairwise overlap among sibling spans. Spans
// are sorted by start so each overlap is found once and reported in
// address order.
func (v *validator) checkSpans(spans []span, what string) {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].path < spans[j].path
	})
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			if !overlaps(spans[i], spans[j]) {
				// Sorted by start: later spans cannot reach back.
				break
			}
			v.addf(regmap.SeverityError, regmap.CodeAddressCollision, spans[i].path,
				"%s address ranges collide: %s [0x%X,0x%X) overlaps %s [0x%X,0x%X)",
				what,
				spans[i].path, spans[i].start, spans[i].end,
				spans[j].path, spans[j].start, spans[j].end)
		}
	}
}

func (v *validator) checkPeripheralCollisions(ps []*regmap.Peripheral) {
	spans := make([]span, 0, len(ps))
	for _, p := range ps {
		spans = append(spans, makeSpan(p.Name, p.Base, p.End()))
	}
	v.checkSpans(spans, "peripheral")
}

func (v *validator) checkPeripheral(p *regmap.Peripheral) {
	for _, r := range p.Registers {
		v.checkRegister(regmap.JoinQName(p.Name, r.Name), r)
	}
	for _, b := range p.Blocks {
		v.checkBlock(regmap.JoinQName(p.Name, b.Name), b)
	}
	v.checkContainer(p.Name, p.Registers, p.Blocks)
	if v.opts.WarnGaps {
		v.checkGaps(p.Name, p.Registers)
	}
}

func (v *validator) checkBlock(qname string, b *regmap.RegisterBlock) {
	for _, r := range b.Registers {
		v.checkRegister(regmap.JoinQName(qname, r.Name), r)
	}
	for _, nb := range b.Blocks {
		v.checkBlock(regmap.JoinQName(qname, nb.Name), nb)
	}
	v.checkContainer(qname, b.Registers, b.Blocks)
	if v.opts.WarnGaps {
		v.checkGaps(qname, b.Registers)
	}
}

// checkContainer checks sibling registers and sibling blocks of one
// container for address-range collisions.
func (v *validator) checkContainer(qname string, regs []*regmap.Register, blocks []*regmap.RegisterBlock) {
	rspans := make([]span, 0, len(regs))
	for _, r := range regs {
		rspans = append(rspans, span{
			path:  regmap.JoinQName(qname, r.Name),
			start: r.AbsAddr,
			end:   r.AbsAddr + r.Size(),
		})
	}
	v.checkSpans(rspans, "register")

	bspans := make([]span, 0, len(blocks))
	for _, b := range blocks {
		bspans = append(bspans, makeSpan(regmap.JoinQName(qname, b.Name), b.AbsBase, b.End()))
	}
	v.checkSpans(bspans, "block")
}

// checkGaps warns about unmapped holes between consecutive registers.
// Reserved space is common in real maps, so this never rises above
// warning severity.
func (v *validator) checkGaps(qname string, regs []*regmap.Register) {
	sorted := make([]*regmap.Register, len(regs))
	copy(sorted, regs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AbsAddr < sorted[j].AbsAddr })

	for i := 1; i < len(sorted); i++ {
		prevEnd := sorted[i-1].AbsAddr + sorted[i-1].Size()
		if sorted[i].AbsAddr > prevEnd {
			v.addf(regmap.SeverityWarning, regmap.CodeAddressGap,
				regmap.JoinQName(qname, sorted[i].Name),
				"unmapped gap of %d byte(s) before this register (0x%X..0x%X)",
				sorted[i].AbsAddr-prevEnd, prevEnd, sorted[i].AbsAddr)
		}
	}
}

func (v *validator) checkRegister(qname string, r *regmap.Register) {
	// Field bit ranges must be disjoint and inside [0, width).
	fields := make([]*regmap.Field, len(r.Fields))
	copy(fields, r.Fields)
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].Lo != fields[j].Lo {
			return fields[i].Lo < fields[j].Lo
		}
		return fields[i].Name < fields[j].Name
	})

	for i, f := range fields {
		fq := regmap.JoinQName(qname, f.Name)
		if f.Hi >= r.Width {
			v.addf(regmap.SeverityError, regmap.CodeFieldOutOfRange, fq,
				"field bits [%d:%d] exceed register width %d", f.Hi, f.Lo, r.Width)
		}
		for j := i + 1; j < len(fields); j++ {
			g := fields[j]
			if g.Lo > f.Hi {
				break
			}
			v.addf(regmap.SeverityError, regmap.CodeFieldOverlap, fq,
				"field bits [%d:%d] overlap %s bits [%d:%d]",
				f.Hi, f.Lo, regmap.JoinQName(qname, g.Name), g.Hi, g.Lo)
		}
	}

	if r.Width < 64 && r.Reset >= uint64(1)<<uint(r.Width) {
		v.addf(regmap.SeverityError, regmap.CodeResetTooWide, qname,
			"reset value 0x%X does not fit in %d bits", r.Reset, r.Width)
	}
}
