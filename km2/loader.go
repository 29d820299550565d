package km2

import (
	"github.com/GoFeGroup/keymagic-go/core"
)

// minHeaderSize is the smallest possible header: magic(4) + major(1) +
// minor(1) + string_count(2) + rule_count(2) + 4 layout-option bytes,
// i.e. the minor<4 (no info_count) / minor<5 (no right_alt, no padding)
// case. Anything shorter than this cannot be a valid km2 file.
const minHeaderSize = 14

// Km2Loader decodes compiled KeyMagic keyboard layouts. It holds no state;
// a zero value is ready to use.
type Km2Loader struct{}

// Load validates and parses a km2 file's bytes in full: header, string
// table, info section, and rule opcode streams, in that on-disk order. All
// internal decode steps panic via core.Throw on the first malformed byte;
// Load recovers via core.Try at this package boundary and returns an error
// wrapping the *core.EngineError (reachable with errors.As), so callers
// never see a panic cross into their code (spec.md §7's propagation policy).
func (Km2Loader) Load(data []byte) (file *Km2File, err error) {
	err = core.Try(func() {
		file = decode(data)
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

func decode(data []byte) *Km2File {
	if len(data) < minHeaderSize {
		core.Throw(core.CreateEngineError(core.ErrFileTooSmall, "file shorter than minimum header", nil).
			WithContext("length", len(data)))
	}

	r := core.NewByteReader(data)
	header := readHeader(r)

	strings := readStrings(r, int(header.StringCount))
	info := readInfo(r, int(header.InfoCount))
	rules := readRules(r, int(header.RuleCount))

	return &Km2File{Header: header, Strings: strings, Info: info, Rules: rules}
}

func readHeader(r *core.ByteReader) FileHeader {
	magic := string(r.Bytes(4))
	if magic != MagicCode {
		core.Throw(core.CreateEngineError(core.ErrInvalidMagicCode, "bad magic code", nil).
			WithContext("magic", magic))
	}

	major := r.U8()
	minor := r.U8()
	if major != 1 || minor < 3 || minor > 5 {
		core.Throw(core.CreateEngineError(core.ErrUnsupportedVersion, "unsupported format version", nil).
			WithContext("major", major).WithContext("minor", minor))
	}

	stringCount := r.U16()

	// info_count is absent (treated as 0) for minor < 4.
	var infoCount uint16
	if minor >= 4 {
		infoCount = r.U16()
	}

	ruleCount := r.U16()

	opts := LayoutOptions{
		TrackCaps: r.U8() != 0,
		AutoBksp:  r.U8() != 0,
		Eat:       r.U8() != 0,
		PosBased:  r.U8() != 0,
	}

	// right_alt and the trailing structure-padding byte are only present
	// when minor >= 5.
	if minor >= 5 {
		opts.RightAlt = r.U8() != 0
		r.Skip(1)
	}

	return FileHeader{
		MajorVersion: major,
		MinorVersion: minor,
		StringCount:  stringCount,
		InfoCount:    infoCount,
		RuleCount:    ruleCount,
		Options:      opts,
	}
}

func readStrings(r *core.ByteReader, count int) []StringEntry {
	out := make([]StringEntry, count)
	for i := 0; i < count; i++ {
		out[i] = StringEntry{Value: readUTF16String(r)}
	}
	return out
}

func readUTF16String(r *core.ByteReader) string {
	length := int(r.U16())
	raw := r.Bytes(length * 2)
	s, err := decodeUTF16LE(raw)
	if err != nil {
		core.Throw(core.CreateEngineError(core.ErrInvalidUtf16, "malformed UTF-16 string table entry", err).
			WithContext("offset", r.Pos()))
	}
	return s
}

func readInfo(r *core.ByteReader, count int) []InfoEntry {
	tr := core.NewTLVReader(r)
	out := make([]InfoEntry, count)
	for i := 0; i < count; i++ {
		rec := tr.ReadRecord()
		out[i] = InfoEntry{Tag: rec.TagString(), Value: rec.Value}
	}
	return out
}

func readRules(r *core.ByteReader, count int) []Rule {
	out := make([]Rule, count)
	for i := 0; i < count; i++ {
		lhsUnits := int(r.U16())
		lhs := readRuleElements(r, lhsUnits*2, i)

		rhsUnits := int(r.U16())
		rhs := readRuleElements(r, rhsUnits*2, i)

		out[i] = Rule{LHS: lhs, RHS: rhs}
	}
	return out
}

// readRuleElements decodes opcodes until byteLen bytes of the stream have
// been consumed. byteLen is given in bytes (the on-disk length field is in
// 16-bit units, already doubled by the caller).
func readRuleElements(r *core.ByteReader, byteLen int, ruleIndex int) []RuleElement {
	start := r.Pos()
	var elements []RuleElement

	for r.Pos()-start < byteLen {
		op := Opcode(r.U16())
		var el RuleElement
		el.Op = op

		switch op {
		case OpString:
			el.Value = readUTF16String(r)
		case OpVariable, OpReference, OpAnyOf, OpNotAnyOf, OpSwitch:
			el.Index = int(r.U16())
		case OpPredefined:
			el.VKCode = r.U16()
		case OpModifier:
			el.Flags = r.U16()
		case OpAnd, OpAny:
			// no payload
		default:
			core.Throw(core.CreateEngineError(core.ErrInvalidOpcode, "unrecognized rule opcode", nil).
				WithContext("opcode", uint16(op)).WithContext("rule", ruleIndex))
		}
		elements = append(elements, el)
	}

	if r.Pos()-start != byteLen {
		core.Throw(core.CreateEngineError(core.ErrInvalidRule, "rule element stream overran its declared length", nil).
			WithContext("rule", ruleIndex))
	}

	return elements
}
