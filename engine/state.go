package engine

// historyCapacity bounds the undo history to ~20 snapshots (spec.md §3/§5),
// capping memory use and giving smart backspace a finite lookback.
const historyCapacity = 20

// historyRing is a fixed-capacity FIFO of composing-buffer snapshots. When
// full, pushing drops the oldest entry. Grounded in shape on the teacher's
// bounded-resource configuration caps (config.PerformanceConfig), but the
// ring itself is new code — nothing in the teacher implements an undo
// buffer.
type historyRing struct {
	entries []string
}

func newHistoryRing() *historyRing {
	return &historyRing{entries: make([]string, 0, historyCapacity)}
}

func (h *historyRing) push(snapshot string) {
	if len(h.entries) >= historyCapacity {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, snapshot)
}

func (h *historyRing) pop() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	last := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return last, true
}

func (h *historyRing) clear() {
	h.entries = h.entries[:0]
}

func (h *historyRing) empty() bool {
	return len(h.entries) == 0
}

// State is the mutable per-engine state the Key-Event Processor operates on
// (spec.md §3 EngineState / §4.G): the composing buffer, the set of active
// states, and the bounded backspace-undo history.
type State struct {
	ComposingBuffer []rune
	ActiveStates    map[int]struct{}
	history         *historyRing
}

// NewState returns a freshly reset engine state.
func NewState() *State {
	return &State{
		ComposingBuffer: nil,
		ActiveStates:    make(map[int]struct{}),
		history:         newHistoryRing(),
	}
}

// Reset clears the composing buffer, active states, and history — called on
// an explicit reset and whenever a new layout is loaded (spec.md §3
// "Lifecycles").
func (s *State) Reset() {
	s.ComposingBuffer = nil
	s.ActiveStates = make(map[int]struct{})
	s.history.clear()
}

// Text returns the composing buffer as a string.
func (s *State) Text() string {
	return string(s.ComposingBuffer)
}

// SetText replaces the composing buffer and clears history, mirroring
// spec.md §4.G's "an externally-driven set_composing... clears the
// history" rule.
func (s *State) SetText(text string) {
	s.ComposingBuffer = []rune(text)
	s.history.clear()
}

// SetTextKeepHistory replaces the composing buffer without touching
// history — used to restore a popped snapshot during smart backspace
// (spec.md §4.H step 1), where the just-popped entry must stay consumed
// rather than round-tripping back onto the stack.
func (s *State) SetTextKeepHistory(text string) {
	s.ComposingBuffer = []rune(text)
}

// clone returns an independent copy of the state for ProcessKeyTest's
// non-mutating preview path.
func (s *State) clone() *State {
	buf := make([]rune, len(s.ComposingBuffer))
	copy(buf, s.ComposingBuffer)

	states := make(map[int]struct{}, len(s.ActiveStates))
	for k, v := range s.ActiveStates {
		states[k] = v
	}

	entries := make([]string, len(s.history.entries))
	copy(entries, s.history.entries)

	return &State{
		ComposingBuffer: buf,
		ActiveStates:    states,
		history:         &historyRing{entries: entries},
	}
}

// PushHistory snapshots the current composing buffer before an edit that
// changes it (spec.md §4.G).
func (s *State) PushHistory() {
	s.history.push(s.Text())
}

// PopHistory pops the most recent snapshot, or reports false if history is
// empty.
func (s *State) PopHistory() (string, bool) {
	return s.history.pop()
}

// HistoryEmpty reports whether the undo history has no snapshots.
func (s *State) HistoryEmpty() bool {
	return s.history.empty()
}

// ToggleState flips membership of state i in the active-state set.
func (s *State) ToggleState(i int) {
	if _, ok := s.ActiveStates[i]; ok {
		delete(s.ActiveStates, i)
	} else {
		s.ActiveStates[i] = struct{}{}
	}
}
