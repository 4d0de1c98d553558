// Package overlay applies overlay-directory directives onto the base
// AddressSpace.
//
// Directives are applied in file-then-declaration order. extend appends
// new children to container nodes, override replaces scalar attributes,
// and annotate touches documentation only. When two directives hit the
// same attribute of the same target, the later one wins; that is the
// expected layering of overlay refinement, so it is logged at info
// level rather than reported as an error.
package overlay

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/regkit/regmap"
	"github.com/joshuapare/regkit/regmap/ast"
	"github.com/joshuapare/regkit/regmap/builder"
)

// Options controls overlay merging.
type Options struct {
	// Logger receives informational merge events (supersession,
	// per-directive traces). Defaults to a discarding logger.
	Logger *slog.Logger
}

// DefaultOptions returns merge options with logging discarded.
func DefaultOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

type merger struct {
	space  *regmap.AddressSpace
	log    *slog.Logger
	issues []regmap.Issue

	// lastWrite tracks which overlay unit last touched each
	// target+attribute pair, for last-write-wins logging.
	lastWrite map[string]string
}

// Apply merges every overlay-tagged file into the model, in file order
// and declaration order within each file. All merge errors are
// collected; the model should only be used further when none of the
// returned issues is error severity.
func Apply(space *regmap.AddressSpace, files []*ast.File, opts Options) []regmap.Issue {
	if opts.Logger == nil {
		opts = DefaultOptions()
	}
	m := &merger{
		space:     space,
		log:       opts.Logger,
		lastWrite: make(map[string]string),
	}

	for _, f := range files {
		if f.Origin != ast.OriginOverlay {
			continue
		}
		if len(f.Scopes) > 0 {
			s := f.Scopes[0]
			m.errorf(f.Unit, s.Pos, regmap.CodeInvalidAttribute, s.Name,
				"overlay files may only contain directives, found %s declaration", s.Kind)
		}
		if len(f.Enums) > 0 {
			e := f.Enums[0]
			m.errorf(f.Unit, e.Pos, regmap.CodeInvalidAttribute, e.Name,
				"overlay files may only contain directives, found enum declaration")
		}
		for _, d := range f.Directives {
			m.apply(f.Unit, d)
		}
	}

	space.ResolveAddresses()
	return m.issues
}

func (m *merger) errorf(unit string, pos ast.Pos, code regmap.IssueCode, path, format string, args ...any) {
	m.issues = append(m.issues, regmap.Issue{
		Severity: regmap.SeverityError,
		Code:     code,
		Path:     path,
		Unit:     unit,
		Line:     pos.Line,
		Col:      pos.Col,
		Msg:      fmt.Sprintf(format, args...),
	})
}

func (m *merger) apply(unit string, d *ast.Directive) {
	qname := regmap.JoinQName(d.Target...)
	node, ok := m.space.Lookup(qname)
	if !ok {
		code := regmap.CodeTargetNotFound
		if d.Op == ast.OpExtend {
			code = regmap.CodeInvalidExtend
		}
		m.errorf(unit, d.Pos, code, qname, "%s target %q does not exist", d.Op, qname)
		return
	}

	switch d.Op {
	case ast.OpExtend:
		m.extend(unit, d, qname, node)
	case ast.OpOverride:
		m.override(unit, d, qname, node)
	case ast.OpAnnotate:
		m.annotate(unit, d, qname, node)
	}
}

// extend appends new children to a container target. Fields are
// leaves: extending one is an InvalidExtendTarget error.
func (m *merger) extend(unit string, d *ast.Directive, qname string, node regmap.Node) {
	if _, ok := node.(regmap.Container); !ok {
		m.errorf(unit, d.Pos, regmap.CodeInvalidExtend, qname,
			"cannot extend %s %q: %s is not a container",
			node.Kind(), qname, node.Kind())
		return
	}
	for _, s := range d.Body {
		issues := builder.ExtendNode(m.space, unit, s, qname, node)
		m.issues = append(m.issues, issues...)
		if len(issues) == 0 {
			m.log.Info("overlay extend applied",
				"target", qname, "child", s.Name, "unit", unit)
		}
	}
}

// override replaces one scalar attribute of the target. Overriding a
// field's bit range is permitted here; if the new range breaks sibling
// disjointness the validator reports it.
func (m *merger) override(unit string, d *ast.Directive, qname string, node regmap.Node) {
	key := qname + "\x00" + d.Attr
	if prev, seen := m.lastWrite[key]; seen {
		m.log.Info("overlay override superseded",
			"target", qname, "attr", d.Attr, "previous_unit", prev, "unit", unit)
	}

	if !m.setAttr(unit, d, qname, node, d.Attr, d.Value, false) {
		return
	}
	m.lastWrite[key] = unit
}

// annotate may only touch documentation/metadata attributes; it never
// changes addresses, offsets, or access semantics.
func (m *merger) annotate(unit string, d *ast.Directive, qname string, node regmap.Node) {
	for _, a := range d.Attrs {
		if a.Key != "doc" {
			m.errorf(unit, a.Pos, regmap.CodeInvalidOverride, qname,
				"annotate may only set documentation, not %q", a.Key)
			continue
		}
		key := qname + "\x00doc"
		if prev, seen := m.lastWrite[key]; seen {
			m.log.Info("overlay annotation superseded",
				"target", qname, "previous_unit", prev, "unit", unit)
		}
		if m.setAttr(unit, d, qname, node, "doc", a.Value, true) {
			m.lastWrite[key] = unit
		}
	}
}

// setAttr applies one attribute replacement. docOnly restricts the
// permitted attribute set to documentation (the annotate contract).
func (m *merger) setAttr(unit string, d *ast.Directive, qname string, node regmap.Node, attr string, v ast.Value, docOnly bool) bool {
	switch attr {
	case "doc":
		if v.Kind != ast.ValueString {
			m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname, "doc must be a string")
			return false
		}
		switch n := node.(type) {
		case *regmap.Peripheral:
			n.Doc = v.Str
		case *regmap.RegisterBlock:
			n.Doc = v.Str
		case *regmap.Register:
			n.Doc = v.Str
		case *regmap.Field:
			n.Doc = v.Str
		default:
			m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname,
				"cannot document %s", node.Kind())
			return false
		}
		return true
	}

	if docOnly {
		m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname,
			"annotate may only set documentation, not %q", attr)
		return false
	}

	switch attr {
	case "width":
		r, ok := node.(*regmap.Register)
		if !ok {
			m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname,
				"width can only be overridden on a register, not a %s", node.Kind())
			return false
		}
		if v.Kind != ast.ValueNumber || v.Num < 1 || v.Num > 64 {
			m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname,
				"width must be a number between 1 and 64")
			return false
		}
		r.Width = int(v.Num)
		return true

	case "reset":
		r, ok := node.(*regmap.Register)
		if !ok {
			m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname,
				"reset can only be overridden on a register, not a %s", node.Kind())
			return false
		}
		if v.Kind != ast.ValueNumber {
			m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname, "reset must be a number")
			return false
		}
		r.Reset = v.Num
		return true

	case "access":
		if v.Kind != ast.ValueIdent {
			m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname,
				"access must be one of rw, ro, wo, w1c")
			return false
		}
		mode, ok := regmap.ParseAccessMode(v.Ident)
		if !ok {
			m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname,
				"unknown access mode %q", v.Ident)
			return false
		}
		switch n := node.(type) {
		case *regmap.Register:
			n.Access = mode
		case *regmap.Field:
			n.Access = mode
		default:
			m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname,
				"access can only be overridden on a register or field, not a %s", node.Kind())
			return false
		}
		return true

	case "bits":
		f, ok := node.(*regmap.Field)
		if !ok {
			m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname,
				"bits can only be overridden on a field, not a %s", node.Kind())
			return false
		}
		if v.Kind != ast.ValueBitRange {
			m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname,
				"bits must be a [high:low] or [bit] range")
			return false
		}
		f.Hi, f.Lo = v.Hi, v.Lo
		return true
	}

	m.errorf(unit, d.Pos, regmap.CodeInvalidOverride, qname,
		"attribute %q cannot be overridden (only width, access, reset, bits, doc)", attr)
	return false
}
