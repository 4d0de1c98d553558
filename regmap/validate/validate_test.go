package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkit/regmap"
	"github.com/joshuapare/regkit/regmap/ast"
	"github.com/joshuapare/regkit/regmap/builder"
	"github.com/joshuapare/regkit/regmap/parser"
)

func buildSpace(t *testing.T, src string) *regmap.AddressSpace {
	t.Helper()
	f, err := parser.Parse("in.rd", ast.OriginBase, src)
	require.NoError(t, err)
	space, issues := builder.Build([]*ast.File{f})
	require.Empty(t, issues)
	return space
}

func TestRun_CleanModel(t *testing.T) {
	space := buildSpace(t, `
peripheral UART {
	base = 0x1000
	reg CTRL {
		offset = 0x0
		reset  = 0x1
		field ENABLE { bits = [0] }
		field MODE   { bits = [3:1] }
	}
	reg STAT { offset = 0x4 access = ro }
}
`)
	issues := Run(space, DefaultOptions())
	assert.Empty(t, issues)
}

// TestRun_FieldOverlap verifies overlapping sibling fields are reported
// once, naming both fields.
func TestRun_FieldOverlap(t *testing.T) {
	space := buildSpace(t, `
peripheral UART {
	base = 0x1000
	reg CTRL {
		offset = 0x0
		field ENABLE { bits = [1:0] }
		field MODE   { bits = [3:1] }
	}
}
`)
	issues := Run(space, DefaultOptions())
	require.Len(t, issues, 1)
	is := issues[0]
	assert.Equal(t, regmap.SeverityError, is.Severity)
	assert.Equal(t, regmap.CodeFieldOverlap, is.Code)
	assert.Equal(t, "UART.CTRL.ENABLE", is.Path)
	assert.Contains(t, is.Msg, "UART.CTRL.MODE")
}

func TestRun_FieldOutOfRange(t *testing.T) {
	space := buildSpace(t, `
peripheral UART {
	base = 0x1000
	reg CTRL {
		offset = 0x0
		width  = 16
		field HIGH { bits = [20:16] }
	}
}
`)
	issues := Run(space, DefaultOptions())
	require.Len(t, issues, 1)
	assert.Equal(t, regmap.CodeFieldOutOfRange, issues[0].Code)
	assert.Contains(t, issues[0].Msg, "exceed register width 16")
}

func TestRun_ResetTooWide(t *testing.T) {
	space := buildSpace(t, `
peripheral UART {
	base = 0x1000
	reg CTRL {
		offset = 0x0
		width  = 8
		reset  = 0x1FF
	}
}
`)
	issues := Run(space, DefaultOptions())
	require.Len(t, issues, 1)
	assert.Equal(t, regmap.CodeResetTooWide, issues[0].Code)
	assert.Equal(t, "UART.CTRL", issues[0].Path)
}

// TestRun_RegisterCollision verifies sibling registers whose byte
// ranges overlap are errors naming both registers.
func TestRun_RegisterCollision(t *testing.T) {
	space := buildSpace(t, `
peripheral UART {
	base = 0x1000
	reg A { offset = 0x0 width = 32 }
	reg B { offset = 0x2 width = 32 }
}
`)
	issues := Run(space, Options{WarnGaps: false})
	require.Len(t, issues, 1)
	is := issues[0]
	assert.Equal(t, regmap.CodeAddressCollision, is.Code)
	assert.Contains(t, is.Msg, "UART.A")
	assert.Contains(t, is.Msg, "UART.B")
}

func TestRun_PeripheralCollision(t *testing.T) {
	space := buildSpace(t, `
peripheral UART { base = 0x1000 size = 0x100 }
peripheral SPI  { base = 0x1080 size = 0x100 }
`)
	issues := Run(space, DefaultOptions())
	require.Len(t, issues, 1)
	assert.Equal(t, regmap.CodeAddressCollision, issues[0].Code)
	assert.Contains(t, issues[0].Msg, "UART")
	assert.Contains(t, issues[0].Msg, "SPI")
}

// TestRun_EmptyPeripheralsSameBase verifies that peripherals with no
// declared size and no contents still collide when they share a base:
// an empty peripheral occupies its base address.
func TestRun_EmptyPeripheralsSameBase(t *testing.T) {
	space := buildSpace(t, `
peripheral UART { base = 0x1000 }
peripheral SPI  { base = 0x1000 }
`)
	issues := Run(space, DefaultOptions())
	require.Len(t, issues, 1)
	is := issues[0]
	assert.Equal(t, regmap.SeverityError, is.Severity)
	assert.Equal(t, regmap.CodeAddressCollision, is.Code)
	assert.Contains(t, is.Msg, "UART")
	assert.Contains(t, is.Msg, "SPI")
}

func TestRun_EmptyBlocksSameOffset(t *testing.T) {
	space := buildSpace(t, `
peripheral DMA {
	base = 0x4000
	block RX { offset = 0x10 }
	block TX { offset = 0x10 }
}
`)
	issues := Run(space, DefaultOptions())
	require.Len(t, issues, 1)
	assert.Equal(t, regmap.CodeAddressCollision, issues[0].Code)
	assert.Contains(t, issues[0].Msg, "DMA.RX")
	assert.Contains(t, issues[0].Msg, "DMA.TX")
}

// TestRun_BlockCollision verifies replicated instances whose stride is
// smaller than their footprint collide with each other.
func TestRun_BlockCollision(t *testing.T) {
	space := buildSpace(t, `
peripheral DMA {
	base = 0x4000
	block CHAN {
		offset = 0x0
		repeat = 2
		stride = 0x4
		reg CFG  { offset = 0x0 }
		reg STAT { offset = 0x4 }
	}
}
`)
	issues := Run(space, Options{WarnGaps: false})
	require.Len(t, issues, 1)
	assert.Equal(t, regmap.CodeAddressCollision, issues[0].Code)
	assert.Contains(t, issues[0].Msg, "DMA.CHAN0")
	assert.Contains(t, issues[0].Msg, "DMA.CHAN1")
}

func TestRun_GapWarning(t *testing.T) {
	space := buildSpace(t, `
peripheral UART {
	base = 0x1000
	reg CTRL { offset = 0x0 }
	reg DATA { offset = 0x10 }
}
`)
	issues := Run(space, DefaultOptions())
	require.Len(t, issues, 1)
	is := issues[0]
	assert.Equal(t, regmap.SeverityWarning, is.Severity)
	assert.Equal(t, regmap.CodeAddressGap, is.Code)
	assert.Equal(t, "UART.DATA", is.Path)
	assert.Contains(t, is.Msg, "12 byte(s)")

	// The warning is suppressible.
	assert.Empty(t, Run(space, Options{WarnGaps: false}))
}

func TestRun_CollectsEverything(t *testing.T) {
	space := buildSpace(t, `
peripheral UART {
	base = 0x1000
	reg CTRL {
		offset = 0x0
		width  = 8
		reset  = 0x100
		field A { bits = [4:0] }
		field B { bits = [9:4] }
	}
}
`)
	issues := Run(space, DefaultOptions())
	// Field overlap, field out of range, reset too wide: one pass
	// reports them all.
	codes := map[regmap.IssueCode]int{}
	for _, is := range issues {
		codes[is.Code]++
	}
	assert.Equal(t, 1, codes[regmap.CodeFieldOverlap])
	assert.Equal(t, 1, codes[regmap.CodeFieldOutOfRange])
	assert.Equal(t, 1, codes[regmap.CodeResetTooWide])
}
