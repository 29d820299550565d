package engine

// isPrintableASCIINonSpace reports whether r is an ASCII character in
// 0x21..0x7E (printable, excluding space) — the wildcard Any atom's
// acceptance range (spec.md §4.E) and the recursive-rewrite stop condition
// (spec.md §4.H).
func isPrintableASCIINonSpace(r rune) bool {
	return r >= 0x21 && r <= 0x7E
}

// FindMatch walks patterns in their sorted order and returns the first one
// whose LHS matches ctx, plus its ordered captures. Grounded on the
// canonical matcher,
// _examples/original_source/keymagic-core/src/engine/matching/matcher.rs
// (end-anchored, first-match-wins over a pre-sorted list), not the older
// engine/matcher.rs greedy-longest-match generation.
func FindMatch(patterns []Pattern, ctx MatchContext, strings []string) (*Pattern, []Capture, bool) {
	for i := range patterns {
		p := &patterns[i]
		if captures, ok := tryMatch(p, ctx, strings); ok {
			return p, captures, true
		}
	}
	return nil, nil, false
}

func tryMatch(p *Pattern, ctx MatchContext, strings []string) ([]Capture, bool) {
	// bufferLen excludes VirtualKey atoms: a VK atom is satisfied against
	// ctx.KeyInput, not against the text window, so it contributes nothing
	// to how much of the buffer must be present or consumed. This differs
	// from Pattern.MatchLength, which counts a VK atom as length 1 for the
	// sorter's rule-specificity ranking (spec.md §4.D) — a separate concern
	// from how much actual text a match consumes.
	bufferLen := bufferMatchLength(p, strings)

	textToMatch := textUnderMatch(p, ctx)
	textChars := []rune(textToMatch)

	if len(textChars) < bufferLen {
		return nil, false
	}

	startPos := len(textChars) - bufferLen
	pos := startPos
	var captures []Capture

	for _, atom := range p.LHS {
		switch atom.Kind {
		case AtomState:
			if _, active := ctx.ActiveStates[atom.Var]; !active {
				return nil, false
			}

		case AtomVirtualKey:
			if ctx.IsRecursive || ctx.KeyInput == nil {
				return nil, false
			}
			if ctx.KeyInput.KeyCode != atom.Key {
				return nil, false
			}
			if !modifiersSatisfy(atom, ctx.KeyInput.Modifiers) {
				return nil, false
			}

		case AtomString:
			s := []rune(atom.Text)
			if pos+len(s) > len(textChars) {
				return nil, false
			}
			if string(textChars[pos:pos+len(s)]) != atom.Text {
				return nil, false
			}
			captures = append(captures, Capture{Text: atom.Text})
			pos += len(s)

		case AtomVariable:
			content := lookupString(strings, atom.Var)
			s := []rune(content)
			if pos+len(s) > len(textChars) {
				return nil, false
			}
			if string(textChars[pos:pos+len(s)]) != content {
				return nil, false
			}
			captures = append(captures, Capture{Text: content})
			pos += len(s)

		case AtomVariableAnyOf:
			if pos >= len(textChars) {
				return nil, false
			}
			ch := textChars[pos]
			content := []rune(lookupString(strings, atom.Var))
			found := -1
			for idx, c := range content {
				if c == ch {
					found = idx
					break
				}
			}
			if found < 0 {
				return nil, false
			}
			captures = append(captures, Capture{Text: string(ch), Pos: found, HasPos: true})
			pos++

		case AtomVariableNotAnyOf:
			if pos >= len(textChars) {
				return nil, false
			}
			ch := textChars[pos]
			content := lookupString(strings, atom.Var)
			for _, c := range content {
				if c == ch {
					return nil, false
				}
			}
			captures = append(captures, Capture{Text: string(ch)})
			pos++

		case AtomAny:
			if pos >= len(textChars) {
				return nil, false
			}
			ch := textChars[pos]
			if !isPrintableASCIINonSpace(ch) {
				return nil, false
			}
			captures = append(captures, Capture{Text: string(ch)})
			pos++
		}
	}

	if pos != startPos+bufferLen {
		return nil, false
	}
	return captures, true
}

// bufferMatchLength is the number of text characters a pattern's LHS
// actually consumes from the matched text window, excluding VirtualKey and
// State atoms (neither consumes buffer text — a VK atom is checked against
// the key event, a State atom against the active-state set).
func bufferMatchLength(p *Pattern, strings []string) int {
	total := 0
	for _, a := range p.LHS {
		switch a.Kind {
		case AtomString:
			total += len([]rune(a.Text))
		case AtomVariable:
			total += len([]rune(lookupString(strings, a.Var)))
		case AtomVariableAnyOf, AtomVariableNotAnyOf, AtomAny:
			total++
		}
	}
	return total
}

// textUnderMatch selects what text the LHS is matched against, per
// spec.md §4.E: a VK-bearing, non-recursive pattern matches only the
// composing text (the VK atom itself consults the key input separately); a
// VK-free non-recursive pattern matches the composing text with the
// incoming character appended; recursive matching always uses the
// composing text alone.
func textUnderMatch(p *Pattern, ctx MatchContext) string {
	if ctx.IsRecursive {
		return ctx.ComposingText
	}
	if p.HasVK() {
		return ctx.ComposingText
	}
	if ctx.KeyInput != nil && ctx.KeyInput.HasChar {
		return ctx.ComposingText + string(ctx.KeyInput.Character)
	}
	return ctx.ComposingText
}

// modifiersSatisfy implements the subset-based VK modifier matching
// spec.md §9 prescribes: every modifier flag required by the atom must be
// pressed; extra pressed modifiers neither satisfy nor forbid the match.
// AltGr has no dedicated bit in ModifierState (the C ABI and KeyInput only
// carry shift/ctrl/alt/caps_lock, per spec.md §3/§6) — it is modeled as the
// Ctrl+Alt combination a physical AltGr key conventionally reports, a
// deliberate modeling decision recorded in DESIGN.md.
func modifiersSatisfy(atom PatternAtom, m ModifierState) bool {
	if atom.Shift && !m.Shift {
		return false
	}
	if atom.Ctrl && !m.Ctrl {
		return false
	}
	if atom.Alt && !m.Alt {
		return false
	}
	if atom.AltGr && !(m.Ctrl && m.Alt) {
		return false
	}
	return true
}
