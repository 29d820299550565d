// Package engine implements the rule preprocessor, sorter, pattern matcher,
// RHS evaluator, engine state, and key-event processor (spec components
// C through H): everything that turns a loaded km2.Km2File and a stream of
// key events into composing-buffer edits.
package engine

import "github.com/GoFeGroup/keymagic-go/vkey"

// PatternAtom is one element of a preprocessed LHS pattern (the Pattern IR).
// Exactly one of the typed fields is meaningful, selected by Kind.
type PatternAtom struct {
	Kind AtomKind

	Text string // Kind == AtomString
	Var  int    // Kind == AtomVariable, AtomVariableAnyOf, AtomVariableNotAnyOf, AtomState

	// Kind == AtomVirtualKey
	Key    vkey.VirtualKey
	Shift  bool
	Ctrl   bool
	Alt    bool
	AltGr  bool
}

// AtomKind discriminates PatternAtom variants.
type AtomKind int

const (
	AtomString AtomKind = iota
	AtomVariable
	AtomVariableAnyOf
	AtomVariableNotAnyOf
	AtomVirtualKey
	AtomAny
	AtomState
)

// ConsumesInput reports whether a matched atom of this kind produces a
// capture and advances the match position — State atoms require a state to
// be active but consume no text, and VirtualKey atoms test the key event
// rather than the text (spec.md §3, "Rule-element invariants").
func (k AtomKind) ConsumesInput() bool {
	return k != AtomState && k != AtomVirtualKey
}

// IsVK reports whether the atom is a virtual-key atom, for the "has_vk"
// check the matcher and key-event processor both need.
func (a PatternAtom) IsVK() bool { return a.Kind == AtomVirtualKey }

// OutputAtom is one element of a preprocessed RHS production.
type OutputAtom struct {
	Kind OutputKind

	Text string
	Var  int
	// Kind == OutputVariableWithIndex: Var is the variable, Ref is the
	// 1-based LHS capture index holding the VariableAnyOf position.
	Ref int
}

// OutputKind discriminates OutputAtom variants.
type OutputKind int

const (
	OutputString OutputKind = iota
	OutputVariable
	OutputVariableWithIndex
	OutputReference
	OutputSwitch
)

// Pattern is a preprocessed, matchable LHS together with its RHS production
// and the state/VK atom counts the sorter ranks on.
type Pattern struct {
	LHS []PatternAtom
	RHS []OutputAtom

	// OriginalIndex preserves the rule's position in the source file, for
	// the sorter's stable tie-break.
	OriginalIndex int
}

// StateCount returns the number of State atoms in the LHS.
func (p *Pattern) StateCount() int {
	n := 0
	for _, a := range p.LHS {
		if a.Kind == AtomState {
			n++
		}
	}
	return n
}

// VKCount returns the number of VirtualKey atoms in the LHS.
func (p *Pattern) VKCount() int {
	n := 0
	for _, a := range p.LHS {
		if a.Kind == AtomVirtualKey {
			n++
		}
	}
	return n
}

// HasVK reports whether the LHS contains a VirtualKey atom.
func (p *Pattern) HasVK() bool {
	for _, a := range p.LHS {
		if a.Kind == AtomVirtualKey {
			return true
		}
	}
	return false
}

// MatchLength returns the number of input characters the LHS consumes when
// matched (spec.md §4.D "Matching length"), given the string table for
// resolving Variable/VariableAnyOf/VariableNotAnyOf lengths.
func (p *Pattern) MatchLength(strings []string) int {
	total := 0
	for _, a := range p.LHS {
		switch a.Kind {
		case AtomString:
			total += len([]rune(a.Text))
		case AtomVariable:
			total += len([]rune(lookupString(strings, a.Var)))
		case AtomVariableAnyOf, AtomVariableNotAnyOf, AtomAny, AtomVirtualKey:
			total++
		case AtomState:
			// consumes no input
		}
	}
	return total
}

// lookupString resolves a 1-based string-table index (spec.md §3: "A
// Unicode string addressed by a 1-based index") into its string, or ""
// if out of range.
func lookupString(strings []string, idx int) string {
	i := idx - 1
	if i < 0 || i >= len(strings) {
		return ""
	}
	return strings[i]
}

// Capture is a single LHS-match binding: the matched text plus, for
// VariableAnyOf matches, the 0-based position of the character within the
// referenced variable (used by VariableWithIndex on the RHS).
type Capture struct {
	Text string
	Pos  int
	HasPos bool
}

// ModifierState is the set of physical modifier keys pressed alongside a
// key event.
type ModifierState struct {
	Shift    bool
	Ctrl     bool
	Alt      bool
	CapsLock bool
}

// KeyInput is a single keystroke delivered to the engine: the raw virtual
// key, its modifier state, and the pre-computed character the host's
// default keyboard layout would have produced (absent for pure control
// keys).
type KeyInput struct {
	KeyCode   vkey.VirtualKey
	Modifiers ModifierState
	Character rune   // 0 if absent
	HasChar   bool
}

// MatchContext is the transient input to the pattern matcher: the current
// composing text, an optional key event, the set of active states, and
// whether this is a recursive (post-commit) re-match.
type MatchContext struct {
	ComposingText string
	KeyInput      *KeyInput
	ActiveStates  map[int]struct{}
	IsRecursive   bool
}
