package builder

import (
	"github.com/joshuapare/regkit/regmap"
	"github.com/joshuapare/regkit/regmap/ast"
)

// ExtendNode lowers one new child scope beneath an existing container
// node, indexing the new names and sharing all the attribute rules of
// the base build. Used by the overlay merger for extend directives.
//
// The child kind must fit the parent: reg or block under a peripheral
// or block, field under a register. A mismatch is reported as an
// invalid-extend-target issue.
func ExtendNode(space *regmap.AddressSpace, unit string, s *ast.Scope, parentQ string, parent regmap.Node) []regmap.Issue {
	b := &builder{space: space, sites: make(map[string]declSite)}

	switch pn := parent.(type) {
	case *regmap.Peripheral:
		switch s.Kind {
		case ast.ScopeRegister:
			if r := b.buildRegister(unit, s, parentQ); r != nil {
				pn.Registers = append(pn.Registers, r)
			}
		case ast.ScopeBlock:
			pn.Blocks = append(pn.Blocks, b.buildBlocks(unit, s, parentQ)...)
		default:
			b.errorf(unit, s.Pos, regmap.CodeInvalidExtend, parentQ,
				"a %s cannot be added to peripheral %q", s.Kind, parentQ)
		}

	case *regmap.RegisterBlock:
		switch s.Kind {
		case ast.ScopeRegister:
			if r := b.buildRegister(unit, s, parentQ); r != nil {
				pn.Registers = append(pn.Registers, r)
			}
		case ast.ScopeBlock:
			pn.Blocks = append(pn.Blocks, b.buildBlocks(unit, s, parentQ)...)
		default:
			b.errorf(unit, s.Pos, regmap.CodeInvalidExtend, parentQ,
				"a %s cannot be added to block %q", s.Kind, parentQ)
		}

	case *regmap.Register:
		if s.Kind == ast.ScopeField {
			if f := b.buildField(unit, s, parentQ, pn); f != nil {
				pn.Fields = append(pn.Fields, f)
			}
		} else {
			b.errorf(unit, s.Pos, regmap.CodeInvalidExtend, parentQ,
				"a %s cannot be added to register %q, only fields", s.Kind, parentQ)
		}

	default:
		b.errorf(unit, s.Pos, regmap.CodeInvalidExtend, parentQ,
			"%s %q cannot be extended", parent.Kind(), parentQ)
	}

	b.resolveEnumRefs()
	return b.issues
}
