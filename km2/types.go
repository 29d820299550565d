// Package km2 implements the binary format and loader for compiled KeyMagic
// keyboard layouts (Component B). It owns no state beyond the parse itself:
// Load takes a byte slice and returns a fully decoded Km2File or an error
// wrapping a *core.EngineError, touching no disk and no environment.
package km2

// MagicCode is the 4-byte file signature every km2 file starts with.
const MagicCode = "KMKL"

// Opcode identifies a rule-element's on-disk encoding in the LHS/RHS opcode
// stream. Values match the Rust source this format was distilled from and
// must never be renumbered — they are a wire format, not an internal detail.
type Opcode uint16

const (
	OpString    Opcode = 1
	OpVariable  Opcode = 2
	OpReference Opcode = 3
	OpPredefined Opcode = 4
	OpModifier  Opcode = 5
	OpAnyOf     Opcode = 6
	OpAnd       Opcode = 7
	OpNotAnyOf  Opcode = 8
	OpAny       Opcode = 9
	OpSwitch    Opcode = 10
)

// LayoutOptions are the per-keyboard boolean behaviors read from the file
// header. RightAlt is only meaningful (and only present on disk) for
// FileHeader.MinorVersion >= 5; on older formats it is always false.
type LayoutOptions struct {
	TrackCaps bool
	AutoBksp  bool
	Eat       bool
	PosBased  bool
	RightAlt  bool
}

// FileHeader is the fixed-layout portion of a km2 file, offset 0.
type FileHeader struct {
	MajorVersion uint8
	MinorVersion uint8
	StringCount  uint16
	InfoCount    uint16
	RuleCount    uint16
	Options      LayoutOptions
}

// StringEntry is one entry of the string table, decoded from UTF-16LE.
type StringEntry struct {
	Value string
}

// InfoEntry is one metadata record from the info section (name, description,
// font hint, icon, ...). Tag is stored byte-reversed on disk (see
// core.TLVRecord.TagString); Tag here is already un-reversed.
type InfoEntry struct {
	Tag   string
	Value []byte
}

// RuleElement is one decoded element of a rule's raw LHS or RHS opcode
// stream, before the preprocessor fuses chords and variable+modifier pairs
// (engine.Preprocess). This is the wire-level representation; see
// engine.PatternAtom / engine.OutputAtom for the preprocessed IR.
type RuleElement struct {
	Op Opcode

	// String: Value set. Variable/Reference/AnyOf/NotAnyOf/Switch: Index set.
	// Predefined: VKCode set. Modifier: Flags set. And/Any: no payload.
	Value  string
	Index  int
	VKCode uint16
	Flags  uint16
}

// Rule is one raw LHS => RHS rule, prior to preprocessing and sorting.
type Rule struct {
	LHS []RuleElement
	RHS []RuleElement
}

// Km2File is the fully decoded contents of a compiled keyboard layout.
type Km2File struct {
	Header  FileHeader
	Strings []StringEntry
	Info    []InfoEntry
	Rules   []Rule
}

// InfoString looks up an info entry by its (un-reversed) tag and decodes its
// value as UTF-16LE text, returning "" if absent. Tags like "name", "desc",
// "font" are conventionally text; others (e.g. an icon) are raw bytes and
// are not meaningful through this accessor.
func (f *Km2File) InfoString(tag string) string {
	for _, e := range f.Info {
		if e.Tag == tag {
			s, err := decodeUTF16LE(e.Value)
			if err != nil {
				return ""
			}
			return s
		}
	}
	return ""
}
