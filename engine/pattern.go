package engine

import (
	"github.com/GoFeGroup/keymagic-go/km2"
	"github.com/GoFeGroup/keymagic-go/vkey"
)

// flagAnyOf and flagNotAnyOf are the MODIFIER payload values that, when
// following a LHS Variable element, select a character-class match rather
// than an exact-content match (spec.md §3 raw opcode table).
const (
	flagAnyOf    = 1
	flagNotAnyOf = 2
)

// Preprocess turns a rule's raw LHS/RHS opcode elements into the Pattern IR
// (spec.md §4.C): Variable+Modifier fusion, AND-chord collapsing into a
// single VirtualKey atom, and RHS Variable+Modifier fusion into
// VariableWithIndex. rightAltIsAltGr is the loaded layout's right_alt
// option, threaded in so RMenu classifies consistently with how the layout
// was compiled (vkey.IsModifier).
func Preprocess(rule km2.Rule, rightAltIsAltGr bool, originalIndex int) Pattern {
	return Pattern{
		LHS:           preprocessLHS(rule.LHS, rightAltIsAltGr),
		RHS:           preprocessRHS(rule.RHS),
		OriginalIndex: originalIndex,
	}
}

func preprocessLHS(elements []km2.RuleElement, rightAltIsAltGr bool) []PatternAtom {
	var out []PatternAtom
	i := 0
	for i < len(elements) {
		el := elements[i]
		switch el.Op {
		case km2.OpString:
			out = append(out, PatternAtom{Kind: AtomString, Text: el.Value})
			i++

		case km2.OpVariable:
			if i+1 < len(elements) && elements[i+1].Op == km2.OpModifier {
				switch elements[i+1].Flags {
				case flagAnyOf:
					out = append(out, PatternAtom{Kind: AtomVariableAnyOf, Var: el.Index})
				case flagNotAnyOf:
					out = append(out, PatternAtom{Kind: AtomVariableNotAnyOf, Var: el.Index})
				default:
					out = append(out, PatternAtom{Kind: AtomVariable, Var: el.Index})
				}
				i += 2
			} else {
				out = append(out, PatternAtom{Kind: AtomVariable, Var: el.Index})
				i++
			}

		case km2.OpAnyOf:
			out = append(out, PatternAtom{Kind: AtomVariableAnyOf, Var: el.Index})
			i++
		case km2.OpNotAnyOf:
			out = append(out, PatternAtom{Kind: AtomVariableNotAnyOf, Var: el.Index})
			i++

		case km2.OpPredefined:
			atom, consumed := collapseChord(elements[i:], rightAltIsAltGr)
			out = append(out, atom)
			i += consumed

		case km2.OpAny:
			out = append(out, PatternAtom{Kind: AtomAny})
			i++
		case km2.OpSwitch:
			out = append(out, PatternAtom{Kind: AtomState, Var: el.Index})
			i++

		default:
			// OpAnd reached standalone, OpReference, OpModifier with no
			// preceding variable, or anything else: dropped per spec.md
			// §4.C ("Bare And and unrecognized elements are dropped").
			i++
		}
	}
	return out
}

// collapseChord consumes a run of `Predefined (And Predefined)*` starting
// at elements[0] (which must be OpPredefined) and returns the resulting
// VirtualKey atom plus the number of raw elements consumed.
func collapseChord(elements []km2.RuleElement, rightAltIsAltGr bool) (PatternAtom, int) {
	atom := PatternAtom{Kind: AtomVirtualKey}
	consumed := 1

	classify := func(code uint16) {
		vk, ok := vkey.FromRaw(code)
		if !ok {
			return
		}
		shift, ctrl, alt, altGr := vkey.IsModifier(vk, rightAltIsAltGr)
		switch {
		case shift:
			atom.Shift = true
		case ctrl:
			atom.Ctrl = true
		case alt:
			atom.Alt = true
		case altGr:
			atom.AltGr = true
		default:
			atom.Key = vk
		}
	}

	classify(elements[0].VKCode)

	j := 1
	for j < len(elements) && elements[j].Op == km2.OpAnd {
		if j+1 < len(elements) && elements[j+1].Op == km2.OpPredefined {
			classify(elements[j+1].VKCode)
			consumed = j + 2
			j += 2
		} else {
			break
		}
	}

	return atom, consumed
}

func preprocessRHS(elements []km2.RuleElement) []OutputAtom {
	var out []OutputAtom
	i := 0
	for i < len(elements) {
		el := elements[i]
		switch el.Op {
		case km2.OpString:
			out = append(out, OutputAtom{Kind: OutputString, Text: el.Value})
			i++
		case km2.OpVariable:
			if i+1 < len(elements) && elements[i+1].Op == km2.OpModifier {
				out = append(out, OutputAtom{Kind: OutputVariableWithIndex, Var: el.Index, Ref: int(elements[i+1].Flags)})
				i += 2
			} else {
				out = append(out, OutputAtom{Kind: OutputVariable, Var: el.Index})
				i++
			}
		case km2.OpReference:
			out = append(out, OutputAtom{Kind: OutputReference, Ref: el.Index})
			i++
		case km2.OpSwitch:
			out = append(out, OutputAtom{Kind: OutputSwitch, Var: el.Index})
			i++
		default:
			i++
		}
	}
	return out
}
