// Package km2test builds minimal, valid km2 binaries in-process for tests,
// grounded on keymagic-core's tests/common/mod.rs binary fixture builder.
// It lets km2, engine, and tests/integration construct layouts without
// needing a real compiled .km2 file on disk.
package km2test

import (
	"encoding/binary"

	"github.com/GoFeGroup/keymagic-go/km2"
)

// Builder accumulates a Km2File and serializes it to bytes, always writing
// the minor=5 header shape (info_count, right_alt, and the padding byte all
// present) since that is the superset every loader code path must handle.
type Builder struct {
	file km2.Km2File
}

// New starts a builder with an empty layout and the given options.
func New(opts km2.LayoutOptions) *Builder {
	return &Builder{file: km2.Km2File{
		Header: km2.FileHeader{MajorVersion: 1, MinorVersion: 5, Options: opts},
	}}
}

// AddString appends a string-table entry and returns its 1-based index
// (spec.md §3: "A Unicode string addressed by a 1-based index"), the same
// wire convention a real compiler emits (see kms2km2's
// BinaryFormatElement::Variable(idx + 1)).
func (b *Builder) AddString(value string) int {
	b.file.Strings = append(b.file.Strings, km2.StringEntry{Value: value})
	b.file.Header.StringCount = uint16(len(b.file.Strings))
	return len(b.file.Strings)
}

// AddInfo appends a text info entry (tag is the un-reversed 4-character tag,
// e.g. "name", "desc").
func (b *Builder) AddInfo(tag, text string) {
	b.file.Info = append(b.file.Info, km2.InfoEntry{Tag: tag, Value: encodeUTF16LE(text)})
	b.file.Header.InfoCount = uint16(len(b.file.Info))
}

// AddRule appends a raw (unpreprocessed) LHS => RHS rule.
func (b *Builder) AddRule(lhs, rhs []km2.RuleElement) {
	b.file.Rules = append(b.file.Rules, km2.Rule{LHS: lhs, RHS: rhs})
	b.file.Header.RuleCount = uint16(len(b.file.Rules))
}

// String builds a String rule element.
func String(s string) km2.RuleElement { return km2.RuleElement{Op: km2.OpString, Value: s} }

// Variable builds a Variable rule element referencing the 1-based
// string-table index i returned by AddString.
func Variable(i int) km2.RuleElement { return km2.RuleElement{Op: km2.OpVariable, Index: i} }

// Reference builds a Reference rule element: an RHS back-reference to the
// i-th (1-based) LHS capture.
func Reference(i int) km2.RuleElement { return km2.RuleElement{Op: km2.OpReference, Index: i} }

// Predefined builds a Predefined (virtual-key) rule element.
func Predefined(vk uint16) km2.RuleElement {
	return km2.RuleElement{Op: km2.OpPredefined, VKCode: vk}
}

// Modifier builds a Modifier rule element.
func Modifier(flags uint16) km2.RuleElement {
	return km2.RuleElement{Op: km2.OpModifier, Flags: flags}
}

// AnyOf builds an AnyOf rule element over the 1-based string-table index i
// returned by AddString.
func AnyOf(i int) km2.RuleElement { return km2.RuleElement{Op: km2.OpAnyOf, Index: i} }

// NotAnyOf builds a NotAnyOf rule element over the 1-based string-table
// index i returned by AddString.
func NotAnyOf(i int) km2.RuleElement { return km2.RuleElement{Op: km2.OpNotAnyOf, Index: i} }

// And builds a chord-joining And rule element.
func And() km2.RuleElement { return km2.RuleElement{Op: km2.OpAnd} }

// Any builds a wildcard Any rule element.
func Any() km2.RuleElement { return km2.RuleElement{Op: km2.OpAny} }

// Switch builds a state-toggle Switch rule element over state index i. State
// indices are opaque per spec.md and carry no 1-based string-table meaning.
func Switch(i int) km2.RuleElement { return km2.RuleElement{Op: km2.OpSwitch, Index: i} }

// Build serializes the accumulated layout into km2 binary bytes.
func (b *Builder) Build() []byte {
	var buf []byte
	h := b.file.Header

	buf = append(buf, []byte(km2.MagicCode)...)
	buf = append(buf, h.MajorVersion, h.MinorVersion)
	buf = appendU16(buf, h.StringCount)
	buf = appendU16(buf, h.InfoCount)
	buf = appendU16(buf, h.RuleCount)
	buf = append(buf, boolByte(h.Options.TrackCaps), boolByte(h.Options.AutoBksp),
		boolByte(h.Options.Eat), boolByte(h.Options.PosBased), boolByte(h.Options.RightAlt))
	buf = append(buf, 0) // structure padding byte

	for _, s := range b.file.Strings {
		enc := encodeUTF16LE(s.Value)
		buf = appendU16(buf, uint16(len(enc)/2))
		buf = append(buf, enc...)
	}

	for _, info := range b.file.Info {
		tag := reverseTag(info.Tag)
		buf = append(buf, tag[:]...)
		buf = appendU16(buf, uint16(len(info.Value)))
		buf = append(buf, info.Value...)
	}

	for _, rule := range b.file.Rules {
		lhsBytes := encodeElements(rule.LHS)
		buf = appendU16(buf, uint16(len(lhsBytes)/2))
		buf = append(buf, lhsBytes...)

		rhsBytes := encodeElements(rule.RHS)
		buf = appendU16(buf, uint16(len(rhsBytes)/2))
		buf = append(buf, rhsBytes...)
	}

	return buf
}

func encodeElements(elements []km2.RuleElement) []byte {
	var buf []byte
	for _, el := range elements {
		buf = appendU16(buf, uint16(el.Op))
		switch el.Op {
		case km2.OpString:
			enc := encodeUTF16LE(el.Value)
			buf = appendU16(buf, uint16(len(enc)/2))
			buf = append(buf, enc...)
		case km2.OpVariable, km2.OpReference, km2.OpAnyOf, km2.OpNotAnyOf, km2.OpSwitch:
			buf = appendU16(buf, uint16(el.Index))
		case km2.OpPredefined:
			buf = appendU16(buf, el.VKCode)
		case km2.OpModifier:
			buf = appendU16(buf, el.Flags)
		case km2.OpAnd, km2.OpAny:
			// no payload
		}
	}
	return buf
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// reverseTag byte-reverses a 4-character ASCII tag, mirroring the km2
// format's on-disk storage convention ("name" is stored as "eman").
func reverseTag(tag string) [4]byte {
	var out [4]byte
	b := []byte(tag)
	for len(b) < 4 {
		b = append(b, 0)
	}
	out[0], out[1], out[2], out[3] = b[3], b[2], b[1], b[0]
	return out
}

func encodeUTF16LE(s string) []byte {
	var buf []byte
	for _, r := range s {
		if r1, r2 := utf16Encode(r); r2 == 0 {
			buf = appendU16(buf, r1)
		} else {
			buf = appendU16(buf, r1)
			buf = appendU16(buf, r2)
		}
	}
	return buf
}

// utf16Encode encodes a single rune to one or two UTF-16 code units.
func utf16Encode(r rune) (r1, r2 uint16) {
	const (
		surr1 = 0xd800
		surr2 = 0xdc00
		surr3 = 0xe000
		maxBMP = 0xffff
		surrSelf = 0x10000
	)
	if r < surrSelf {
		return uint16(r), 0
	}
	r -= surrSelf
	return uint16(surr1 + (r>>10)&0x3ff), uint16(surr2 + r&0x3ff)
}
