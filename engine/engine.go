package engine

import (
	"github.com/GoFeGroup/keymagic-go/core"
	"github.com/GoFeGroup/keymagic-go/km2"
	"github.com/GoFeGroup/keymagic-go/vkey"
)

// maxRecursiveIterations bounds the recursive rewriting loop (spec.md §4.H
// step 6 / §5), eliminating livelock from pathological rule sets.
const maxRecursiveIterations = 100

// ComposingTransformer is the narrow post-processing hook a host can
// attach to an Engine (spec.md is silent on post-processing; this is
// purely additive and off by default). It is satisfied structurally by
// plugin.TransformPlugin, keeping this package free of a dependency on
// the plugin package.
type ComposingTransformer interface {
	TransformComposing(buffer string) string
}

// Engine owns one loaded keyboard layout and its mutable per-instance
// state. It is not safe for concurrent use from multiple goroutines
// (spec.md §5) — a host that shares one Engine across threads must wrap it
// in its own mutex (see management.Console for an example).
type Engine struct {
	layout   *km2.Km2File
	patterns []Pattern
	strings  []string
	options  km2.LayoutOptions
	state    *State
	loaded   bool
	plugins  []ComposingTransformer
}

// AddPlugin registers a composing-text transform to run after recursive
// matching settles and before each ProcessKey call computes its diff.
func (e *Engine) AddPlugin(p ComposingTransformer) {
	e.plugins = append(e.plugins, p)
}

// NewEngine returns an engine with no keyboard loaded.
func NewEngine() *Engine {
	return &Engine{state: NewState()}
}

// LoadKeyboard validates, parses, preprocesses, and sorts a km2 layout, and
// resets engine state (spec.md §6 "load_keyboard"). On error the
// previously loaded layout (if any) is retained.
func (e *Engine) LoadKeyboard(data []byte) error {
	file, err := km2.Km2Loader{}.Load(data)
	if err != nil {
		return core.WrapErrorWithContext(err, "load keyboard")
	}

	strings := make([]string, len(file.Strings))
	for i, s := range file.Strings {
		strings[i] = s.Value
	}

	patterns := make([]Pattern, len(file.Rules))
	for i, rule := range file.Rules {
		patterns[i] = Preprocess(rule, file.Header.Options.RightAlt, i)
	}
	SortRules(patterns, strings)

	e.layout = file
	e.patterns = patterns
	e.strings = strings
	e.options = file.Header.Options
	e.loaded = true
	e.state.Reset()
	return nil
}

// Reset clears composing buffer, active states, and history without
// unloading the layout.
func (e *Engine) Reset() {
	e.state.Reset()
}

// RuleCount returns the number of rules in the loaded layout, or 0 if no
// keyboard is loaded.
func (e *Engine) RuleCount() int {
	return len(e.patterns)
}

// ComposingText returns the current composing buffer.
func (e *Engine) ComposingText() string {
	return e.state.Text()
}

// KeyboardInfo looks up a text info-section entry (e.g. "name", "desc",
// "font") from the loaded layout, or "" if none is loaded or the tag is
// absent.
func (e *Engine) KeyboardInfo(tag string) string {
	if e.layout == nil {
		return ""
	}
	return e.layout.InfoString(tag)
}

// ProcessKey runs the full key-event state machine (spec.md §4.H) against
// the engine's live state, mutating it, and returns the resulting edit
// action.
func (e *Engine) ProcessKey(input KeyInput) (Output, error) {
	if !e.loaded {
		return Output{}, core.CreateEngineError(core.ErrNoKeyboardLoaded, "no keyboard loaded", nil)
	}
	return e.process(e.state, input), nil
}

// ProcessKeyTest runs the same computation as ProcessKey against a private
// copy of the engine state, leaving the live state untouched — used by
// layout-preview hosts that want to see the effect of a keystroke without
// committing it (spec.md §4.H, "test-mode variant").
func (e *Engine) ProcessKeyTest(input KeyInput) (Output, error) {
	if !e.loaded {
		return Output{}, core.CreateEngineError(core.ErrNoKeyboardLoaded, "no keyboard loaded", nil)
	}
	clone := e.state.clone()
	return e.process(clone, input), nil
}

func (e *Engine) process(st *State, input KeyInput) Output {
	before := st.Text()

	if input.KeyCode == vkey.Back {
		processed := e.handleBackspace(st)
		return e.finish(st, before, processed)
	}

	st.PushHistory()

	ctx := MatchContext{
		ComposingText: st.Text(),
		KeyInput:      &input,
		ActiveStates:  st.ActiveStates,
		IsRecursive:   false,
	}

	pattern, captures, matched := FindMatch(e.patterns, ctx, e.strings)
	processed := false

	if matched {
		processed = true
		e.applyMatch(st, pattern, captures, ctx)
		e.applyRecursive(st)
	} else if input.HasChar {
		st.ComposingBuffer = append(st.ComposingBuffer, input.Character)
		processed = true
	} else if e.options.Eat {
		processed = true
	}

	e.runPlugins(st)
	return e.finish(st, before, processed)
}

// runPlugins applies every registered ComposingTransformer in registration
// order. This runs after recursive matching settles (spec.md §4.H step 6)
// and before finish computes the diff, so a transform's edits are folded
// into the same Output the host sees for this key.
func (e *Engine) runPlugins(st *State) {
	if len(e.plugins) == 0 {
		return
	}
	text := st.Text()
	for _, p := range e.plugins {
		text = p.TransformComposing(text)
	}
	st.SetTextKeepHistory(text)
}

// handleBackspace implements spec.md §4.H step 1. Per spec.md §9's
// explicit resolution of the ambiguity between the two source paths for
// "no history / auto_bksp=false", this always deletes one character and
// marks the event processed when the buffer is non-empty, rather than
// leaving the key unprocessed.
func (e *Engine) handleBackspace(st *State) (processed bool) {
	if e.options.AutoBksp && !st.HistoryEmpty() {
		snapshot, _ := st.PopHistory()
		st.SetTextKeepHistory(snapshot)
		return true
	}
	if len(st.ComposingBuffer) > 0 {
		st.ComposingBuffer = st.ComposingBuffer[:len(st.ComposingBuffer)-1]
		return true
	}
	return false
}

// applyMatch implements spec.md §4.H step 4: remove the matched suffix
// that came from the composing buffer (as opposed to the appended
// character, when the pattern had no VK atom), apply state toggles, and
// append RHS text.
func (e *Engine) applyMatch(st *State, pattern *Pattern, captures []Capture, ctx MatchContext) {
	// bufferMatchLength, not Pattern.MatchLength: a VK atom is satisfied by
	// the key event, not by buffer text, so it must not count toward how
	// many buffer characters the match removes (matcher.go's tryMatch makes
	// the same distinction when locating the match window).
	charsFromBuffer := bufferMatchLength(pattern, e.strings)
	if !pattern.HasVK() && ctx.KeyInput != nil && ctx.KeyInput.HasChar {
		charsFromBuffer--
	}
	if charsFromBuffer > len(st.ComposingBuffer) {
		charsFromBuffer = len(st.ComposingBuffer)
	}
	if charsFromBuffer > 0 {
		st.ComposingBuffer = st.ComposingBuffer[:len(st.ComposingBuffer)-charsFromBuffer]
	}

	text, toggles := Evaluate(pattern.RHS, captures, e.strings)
	for _, idx := range toggles {
		st.ToggleState(idx)
	}
	if text != "" {
		st.ComposingBuffer = append(st.ComposingBuffer, []rune(text)...)
	}
}

// applyRecursive implements spec.md §4.H step 6: re-match against the
// composing buffer alone (no key input) until no rule matches, the buffer
// is empty, the buffer's last character is a single printable-ASCII
// non-space character, or the iteration cap is reached.
func (e *Engine) applyRecursive(st *State) {
	for i := 0; i < maxRecursiveIterations; i++ {
		if len(st.ComposingBuffer) == 0 {
			return
		}
		if isPrintableASCIINonSpace(st.ComposingBuffer[len(st.ComposingBuffer)-1]) {
			return
		}

		ctx := MatchContext{
			ComposingText: st.Text(),
			KeyInput:      nil,
			ActiveStates:  st.ActiveStates,
			IsRecursive:   true,
		}
		pattern, captures, matched := FindMatch(e.patterns, ctx, e.strings)
		if !matched {
			return
		}
		e.applyMatch(st, pattern, captures, ctx)
	}
}

func (e *Engine) finish(st *State, before string, processed bool) Output {
	after := st.Text()
	action, deleteCount, insertText := diffToAction(before, after)
	return Output{
		Action:        action,
		DeleteCount:   deleteCount,
		InsertText:    insertText,
		ComposingText: after,
		IsProcessed:   processed,
	}
}
