package regmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessMode_Gating(t *testing.T) {
	assert.True(t, AccessRW.CanRead())
	assert.True(t, AccessRW.CanWrite())
	assert.False(t, AccessRW.IsClearOnly())

	assert.True(t, AccessRO.CanRead())
	assert.False(t, AccessRO.CanWrite())

	assert.False(t, AccessWO.CanRead())
	assert.True(t, AccessWO.CanWrite())

	// W1C fields are readable but their only write operation is a
	// clear, never an arbitrary write.
	assert.True(t, AccessW1C.CanRead())
	assert.False(t, AccessW1C.CanWrite())
	assert.True(t, AccessW1C.IsClearOnly())
}

func TestParseAccessMode(t *testing.T) {
	for _, s := range []string{"rw", "ro", "wo", "w1c"} {
		m, ok := ParseAccessMode(s)
		require.True(t, ok, "mode %q", s)
		assert.Equal(t, s, m.String())
	}
	_, ok := ParseAccessMode("read-only")
	assert.False(t, ok)
}

func TestField_WidthAndMask(t *testing.T) {
	f := &Field{Name: "MODE", Lo: 1, Hi: 3}
	assert.Equal(t, 3, f.Width())
	assert.Equal(t, uint64(0b1110), f.Mask())

	single := &Field{Name: "ENABLE", Lo: 0, Hi: 0}
	assert.Equal(t, 1, single.Width())
	assert.Equal(t, uint64(1), single.Mask())

	full := &Field{Name: "ALL", Lo: 0, Hi: 63}
	assert.Equal(t, ^uint64(0), full.Mask())
}

func TestSplitQName(t *testing.T) {
	segs, err := SplitQName("UART.CTRL.ENABLE")
	require.NoError(t, err)
	assert.Equal(t, []string{"UART", "CTRL", "ENABLE"}, segs)

	_, err = SplitQName("")
	assert.Error(t, err)
	_, err = SplitQName("UART..CTRL")
	assert.Error(t, err)
}

func TestAddressSpace_Index(t *testing.T) {
	space := NewAddressSpace()
	p := &Peripheral{Name: "UART", Base: 0x1000}

	require.True(t, space.Index("UART", p))
	assert.False(t, space.Index("UART", p), "second index of the same name must fail")

	got, ok := space.Lookup("UART")
	require.True(t, ok)
	assert.Same(t, Node(p), got)

	_, ok = space.Lookup("SPI")
	assert.False(t, ok)
}

// TestResolveAddresses verifies absolute address resolution: each
// node's address is its parent's resolved base plus its own offset,
// through nested blocks.
func TestResolveAddresses(t *testing.T) {
	inner := &Register{Name: "DATA", Offset: 0x4, Width: 32}
	blk := &RegisterBlock{Name: "FIFO0", Offset: 0x40, Registers: []*Register{inner}}
	ctrl := &Register{Name: "CTRL", Offset: 0x0, Width: 32}
	p := &Peripheral{
		Name:      "UART",
		Base:      0x1000,
		Registers: []*Register{ctrl},
		Blocks:    []*RegisterBlock{blk},
	}
	space := NewAddressSpace()
	space.Peripherals = []*Peripheral{p}

	space.ResolveAddresses()

	assert.Equal(t, uint64(0x1000), ctrl.AbsAddr)
	assert.Equal(t, uint64(0x1040), blk.AbsBase)
	assert.Equal(t, uint64(0x1044), inner.AbsAddr)
}

func TestPeripheral_End(t *testing.T) {
	withSize := &Peripheral{Name: "UART", Base: 0x1000, Size: 0x100}
	assert.Equal(t, uint64(0x1100), withSize.End())

	// Without a declared size the end is derived from the contents.
	derived := &Peripheral{
		Name: "SPI",
		Base: 0x2000,
		Registers: []*Register{
			{Name: "CTRL", Offset: 0x0, Width: 32},
			{Name: "STAT", Offset: 0x8, Width: 32},
		},
	}
	assert.Equal(t, uint64(0x200C), derived.End())
}
