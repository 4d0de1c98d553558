package regmap

import (
	"fmt"
	"sort"
	"strings"
)

// AccessMode describes the permitted read/write semantics of a register
// or field.
type AccessMode uint8

const (
	// AccessRW permits both reads and writes.
	AccessRW AccessMode = iota
	// AccessRO permits reads only.
	AccessRO
	// AccessWO permits writes only.
	AccessWO
	// AccessW1C is write-one-to-clear: reads are permitted, writing a
	// one bit clears the corresponding hardware state.
	AccessW1C
)

// String returns the dialect spelling of the access mode.
func (m AccessMode) String() string {
	switch m {
	case AccessRW:
		return "rw"
	case AccessRO:
		return "ro"
	case AccessWO:
		return "wo"
	case AccessW1C:
		return "w1c"
	default:
		return "unknown"
	}
}

// ParseAccessMode maps a dialect spelling to an AccessMode.
func ParseAccessMode(s string) (AccessMode, bool) {
	switch s {
	case "rw":
		return AccessRW, true
	case "ro":
		return AccessRO, true
	case "wo":
		return AccessWO, true
	case "w1c":
		return AccessW1C, true
	}
	return AccessRW, false
}

// CanRead reports whether the mode permits read access.
func (m AccessMode) CanRead() bool {
	return m == AccessRW || m == AccessRO || m == AccessW1C
}

// CanWrite reports whether the mode permits an arbitrary write.
// W1C is excluded: its only write operation is a clear.
func (m AccessMode) CanWrite() bool {
	return m == AccessRW || m == AccessWO
}

// IsClearOnly reports whether the only write operation is a clear.
func (m AccessMode) IsClearOnly() bool {
	return m == AccessW1C
}

// NodeKind identifies the structural kind of a model node.
type NodeKind uint8

const (
	KindAddressSpace NodeKind = iota
	KindPeripheral
	KindBlock
	KindRegister
	KindField
)

// String returns the human-readable kind name.
func (k NodeKind) String() string {
	switch k {
	case KindAddressSpace:
		return "address space"
	case KindPeripheral:
		return "peripheral"
	case KindBlock:
		return "block"
	case KindRegister:
		return "register"
	case KindField:
		return "field"
	default:
		return "unknown"
	}
}

// Node is implemented by every addressable model node. Nodes are owned
// exclusively by their parent; cross-references go through the
// AddressSpace index by qualified name, never through back-pointers.
type Node interface {
	NodeName() string
	Kind() NodeKind
}

// Container is implemented by nodes that may receive new children via
// an overlay extend directive.
type Container interface {
	Node
	container()
}

// EnumValue is one name/number pair of an enumerated field value set.
type EnumValue struct {
	Name  string
	Value uint64
	Doc   string
}

// EnumType is a named, reusable enumerated value set declared at file
// scope and referenced by fields.
type EnumType struct {
	Name   string
	Values []EnumValue
}

// Field is a bit range within a register. Lo and Hi are inclusive;
// a single-bit field has Lo == Hi.
type Field struct {
	Name   string
	Lo     int
	Hi     int
	Access AccessMode
	Enum   []EnumValue
	Doc    string
}

// NodeName implements Node.
func (f *Field) NodeName() string { return f.Name }

// Kind implements Node.
func (f *Field) Kind() NodeKind { return KindField }

// Width returns the field width in bits.
func (f *Field) Width() int { return f.Hi - f.Lo + 1 }

// Mask returns the field mask positioned at the field's bit offset.
func (f *Field) Mask() uint64 {
	if f.Width() >= 64 {
		return ^uint64(0)
	}
	return ((uint64(1) << uint(f.Width())) - 1) << uint(f.Lo)
}

// Register is a hardware register: a fixed-width storage element at an
// offset within its parent, subdivided into fields.
type Register struct {
	Name   string
	Offset uint64
	Width  int
	Access AccessMode
	Reset  uint64
	Doc    string
	Fields []*Field

	// AbsAddr is the resolved absolute address, filled in by
	// ResolveAddresses after building and again after overlay merge.
	AbsAddr uint64
}

func (r *Register) NodeName() string { return r.Name }
func (r *Register) Kind() NodeKind   { return KindRegister }
func (r *Register) container()       {}

// Size returns the register footprint in bytes, rounding sub-byte
// widths up to one byte.
func (r *Register) Size() uint64 {
	n := uint64(r.Width+7) / 8
	if n == 0 {
		n = 1
	}
	return n
}

// RegisterBlock groups registers at a relative offset. Blocks nest for
// hardware units that are themselves composed, and may be replicated:
// Repeat > 1 in a parsed description expands to Repeat strided
// instances before the model is finalized, so a built block always has
// Repeat == 1.
type RegisterBlock struct {
	Name      string
	Offset    uint64
	Repeat    int
	Stride    uint64
	Doc       string
	Blocks    []*RegisterBlock
	Registers []*Register

	// AbsBase is the resolved absolute base address of this block.
	AbsBase uint64
}

func (b *RegisterBlock) NodeName() string { return b.Name }
func (b *RegisterBlock) Kind() NodeKind   { return KindBlock }
func (b *RegisterBlock) container()       {}

// End returns the first absolute address past the block's contents.
// Valid only after ResolveAddresses has run.
func (b *RegisterBlock) End() uint64 {
	end := b.AbsBase
	for _, r := range b.Registers {
		if e := r.AbsAddr + r.Size(); e > end {
			end = e
		}
	}
	for _, nb := range b.Blocks {
		if e := nb.End(); e > end {
			end = e
		}
	}
	return end
}

// Peripheral is a top-level hardware unit at an absolute base address.
type Peripheral struct {
	Name      string
	Base      uint64
	Size      uint64
	Doc       string
	Blocks    []*RegisterBlock
	Registers []*Register
}

func (p *Peripheral) NodeName() string { return p.Name }
func (p *Peripheral) Kind() NodeKind   { return KindPeripheral }
func (p *Peripheral) container()       {}

// End returns the first address past the peripheral, using the declared
// size when present and the span of its contents otherwise.
func (p *Peripheral) End() uint64 {
	if p.Size > 0 {
		return p.Base + p.Size
	}
	end := p.Base
	for _, r := range p.Registers {
		if e := p.Base + r.Offset + r.Size(); e > end {
			end = e
		}
	}
	for _, b := range p.Blocks {
		if e := blockEnd(b, p.Base); e > end {
			end = e
		}
	}
	return end
}

func blockEnd(b *RegisterBlock, parentBase uint64) uint64 {
	base := parentBase + b.Offset
	end := base
	for _, r := range b.Registers {
		if e := base + r.Offset + r.Size(); e > end {
			end = e
		}
	}
	for _, nb := range b.Blocks {
		if e := blockEnd(nb, base); e > end {
			end = e
		}
	}
	return end
}

// AddressSpace is the root of the model: an ordered set of peripherals
// plus the named enum types declared alongside them. It owns every node
// beneath it and carries the qualified-name index used for overlay
// targeting.
type AddressSpace struct {
	Peripherals []*Peripheral
	Enums       []*EnumType

	index map[string]Node
}

func (a *AddressSpace) NodeName() string { return "" }
func (a *AddressSpace) Kind() NodeKind   { return KindAddressSpace }
func (a *AddressSpace) container()       {}

// NewAddressSpace returns an empty address space with an initialized
// name index.
func NewAddressSpace() *AddressSpace {
	return &AddressSpace{index: make(map[string]Node)}
}

// Lookup resolves a qualified name to its model node.
func (a *AddressSpace) Lookup(qname string) (Node, bool) {
	n, ok := a.index[qname]
	return n, ok
}

// Index registers a node under its qualified name. It returns false if
// the name is already taken.
func (a *AddressSpace) Index(qname string, n Node) bool {
	if _, dup := a.index[qname]; dup {
		return false
	}
	a.index[qname] = n
	return true
}

// QualifiedNames returns every indexed qualified name in sorted order.
func (a *AddressSpace) QualifiedNames() []string {
	names := make([]string, 0, len(a.index))
	for q := range a.index {
		names = append(names, q)
	}
	sort.Strings(names)
	return names
}

// EnumType resolves a named enum declaration.
func (a *AddressSpace) EnumType(name string) (*EnumType, bool) {
	for _, e := range a.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// ResolveAddresses recomputes absolute addresses across the whole tree:
// each node's absolute address is its parent's resolved base plus its
// declared relative offset. Safe to call repeatedly; overlay merging
// calls it again after extending the tree.
func (a *AddressSpace) ResolveAddresses() {
	for _, p := range a.Peripherals {
		for _, r := range p.Registers {
			r.AbsAddr = p.Base + r.Offset
		}
		for _, b := range p.Blocks {
			resolveBlock(b, p.Base)
		}
	}
}

func resolveBlock(b *RegisterBlock, parentBase uint64) {
	b.AbsBase = parentBase + b.Offset
	for _, r := range b.Registers {
		r.AbsAddr = b.AbsBase + r.Offset
	}
	for _, nb := range b.Blocks {
		resolveBlock(nb, b.AbsBase)
	}
}

// JoinQName joins qualified-name segments with the dialect's dot
// separator.
func JoinQName(segs ...string) string { return strings.Join(segs, ".") }

// SplitQName splits a dotted qualified name into its segments. An error
// is returned for empty names or empty segments.
func SplitQName(qname string) ([]string, error) {
	if qname == "" {
		return nil, fmt.Errorf("empty qualified name")
	}
	segs := strings.Split(qname, ".")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("malformed qualified name %q", qname)
		}
	}
	return segs, nil
}
