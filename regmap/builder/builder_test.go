package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkit/regmap"
	"github.com/joshuapare/regkit/regmap/ast"
	"github.com/joshuapare/regkit/regmap/parser"
)

func parseBase(t *testing.T, unit, src string) *ast.File {
	t.Helper()
	f, err := parser.Parse(unit, ast.OriginBase, src)
	require.NoError(t, err)
	return f
}

func TestBuild_UARTModel(t *testing.T) {
	f := parseBase(t, "uart.rd", `
peripheral UART {
	base = 0x1000
	size = 0x100
	doc  = "UART controller"

	reg CTRL {
		offset = 0x0
		reset  = 0x1
		field ENABLE { bits = [0] }
		field MODE   { bits = [3:1] access = ro }
	}
	reg STAT {
		offset = 0x4
		width  = 16
		access = ro
	}
}
`)
	space, issues := Build([]*ast.File{f})
	require.Empty(t, issues)
	require.Len(t, space.Peripherals, 1)

	p := space.Peripherals[0]
	assert.Equal(t, uint64(0x1000), p.Base)
	assert.Equal(t, uint64(0x100), p.Size)
	assert.Equal(t, "UART controller", p.Doc)
	require.Len(t, p.Registers, 2)

	ctrl := p.Registers[0]
	assert.Equal(t, 32, ctrl.Width, "register width defaults to 32")
	assert.Equal(t, regmap.AccessRW, ctrl.Access)
	assert.Equal(t, uint64(0x1), ctrl.Reset)
	assert.Equal(t, uint64(0x1000), ctrl.AbsAddr)

	require.Len(t, ctrl.Fields, 2)
	assert.Equal(t, regmap.AccessRW, ctrl.Fields[0].Access,
		"field access defaults to its register's mode")
	assert.Equal(t, regmap.AccessRO, ctrl.Fields[1].Access)

	stat := p.Registers[1]
	assert.Equal(t, 16, stat.Width)
	assert.Equal(t, regmap.AccessRO, stat.Access)
	assert.Equal(t, uint64(0x1004), stat.AbsAddr)

	// Every node is reachable through its qualified name.
	for _, q := range []string{"UART", "UART.CTRL", "UART.CTRL.ENABLE", "UART.STAT"} {
		_, ok := space.Lookup(q)
		assert.True(t, ok, "missing index entry for %s", q)
	}
}

// TestBuild_ReplicatedBlocks verifies that repeat/stride blocks expand
// into independent instances with suffixed names and strided offsets.
func TestBuild_ReplicatedBlocks(t *testing.T) {
	f := parseBase(t, "dma.rd", `
peripheral DMA {
	base = 0x4000
	block CHAN {
		offset = 0x100
		repeat = 4
		stride = 0x40
		reg CFG { offset = 0x0 }
	}
}
`)
	space, issues := Build([]*ast.File{f})
	require.Empty(t, issues)

	p := space.Peripherals[0]
	require.Len(t, p.Blocks, 4)
	for i, blk := range p.Blocks {
		assert.Equal(t, []string{"CHAN0", "CHAN1", "CHAN2", "CHAN3"}[i], blk.Name)
		assert.Equal(t, 1, blk.Repeat, "expanded instances are not themselves replicated")
		assert.Equal(t, uint64(0x4100+i*0x40), blk.AbsBase)
		require.Len(t, blk.Registers, 1)
		assert.Equal(t, uint64(0x4100+i*0x40), blk.Registers[0].AbsAddr)
	}

	cfg2, ok := space.Lookup("DMA.CHAN2.CFG")
	require.True(t, ok)
	assert.Equal(t, uint64(0x4180), cfg2.(*regmap.Register).AbsAddr)
}

func TestBuild_DuplicateAcrossUnits(t *testing.T) {
	a := parseBase(t, "a.rd", "peripheral UART { base = 0x1000 }")
	b := parseBase(t, "b.rd", "peripheral UART { base = 0x2000 }")

	_, issues := Build([]*ast.File{a, b})
	require.Len(t, issues, 1)
	assert.Equal(t, regmap.CodeDuplicate, issues[0].Code)
	assert.Equal(t, "b.rd", issues[0].Unit)
	assert.Contains(t, issues[0].Msg, "a.rd:1:1", "message names the first site")
}

func TestBuild_EnumTypeResolution(t *testing.T) {
	// The enum type lives in a different unit than the field that
	// references it; resolution happens after all units are lowered.
	decl := parseBase(t, "enums.rd", "enum speeds { SLOW = 0, FAST = 1 }")
	use := parseBase(t, "spi.rd", `
peripheral SPI {
	base = 0x2000
	reg CFG {
		offset = 0
		field SPEED { bits = [0] enum = speeds }
	}
}
`)
	space, issues := Build([]*ast.File{use, decl})
	require.Empty(t, issues)

	n, ok := space.Lookup("SPI.CFG.SPEED")
	require.True(t, ok)
	f := n.(*regmap.Field)
	require.Len(t, f.Enum, 2)
	assert.Equal(t, "FAST", f.Enum[1].Name)
	assert.Equal(t, uint64(1), f.Enum[1].Value)
}

func TestBuild_UnresolvedEnumRef(t *testing.T) {
	f := parseBase(t, "spi.rd", `
peripheral SPI {
	base = 0x2000
	reg CFG {
		offset = 0
		field SPEED { bits = [0] enum = nosuch }
	}
}
`)
	_, issues := Build([]*ast.File{f})
	require.Len(t, issues, 1)
	assert.Equal(t, regmap.CodeUnresolved, issues[0].Code)
	assert.Equal(t, "SPI.CFG.SPEED", issues[0].Path)
	assert.Contains(t, issues[0].Msg, "nosuch")
}

func TestBuild_CollectsAllErrors(t *testing.T) {
	f := parseBase(t, "bad.rd", `
peripheral X {
	reg R {
		width = 99
		field F { access = rw }
	}
}
`)
	_, issues := Build([]*ast.File{f})
	// Missing base, invalid width, missing offset, missing bits: all
	// reported in one pass.
	require.Len(t, issues, 4)
	for _, is := range issues {
		assert.Equal(t, regmap.SeverityError, is.Severity)
		assert.Equal(t, regmap.CodeInvalidAttribute, is.Code)
	}
}

func TestBuild_ReplicatedBlockNeedsStride(t *testing.T) {
	f := parseBase(t, "dma.rd", `
peripheral DMA {
	base = 0x4000
	block CHAN { offset = 0x0 repeat = 2 }
}
`)
	_, issues := Build([]*ast.File{f})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Msg, "stride")
}

func TestBuild_DirectiveInBaseFileRejected(t *testing.T) {
	f := parseBase(t, "base.rd", "override UART.CTRL.width = 16")
	_, issues := Build([]*ast.File{f})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Msg, "not allowed in a base description")
}

func TestBuild_OverlayFilesIgnored(t *testing.T) {
	base := parseBase(t, "uart.rd", "peripheral UART { base = 0x1000 }")
	over, err := parser.Parse("fix.rd", ast.OriginOverlay, "override UART.base = 0x2000")
	require.NoError(t, err)

	space, issues := Build([]*ast.File{base, over})
	require.Empty(t, issues)
	assert.Equal(t, uint64(0x1000), space.Peripherals[0].Base,
		"overlay content must not leak into the build stage")
}
