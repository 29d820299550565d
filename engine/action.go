package engine

// ActionType tags the edit a host must apply to reflect one process_key
// call (spec.md §4.H step 7 / §6 Engine API).
type ActionType int

const (
	ActionNone ActionType = iota
	ActionInsert
	ActionBackspaceDelete
	ActionBackspaceDeleteAndInsert
)

// Output is the result of one ProcessKey call: the edit action to apply,
// the full resulting composing text, and whether the key was consumed by
// the engine (as opposed to something the host should handle itself, e.g.
// pass a plain character through unmodified).
type Output struct {
	Action        ActionType
	DeleteCount   int
	InsertText    string
	ComposingText string
	IsProcessed   bool
}

// diffToAction computes the action that turns `before` into `after` as a
// common-prefix / differing-suffix split (spec.md §4.H step 7).
func diffToAction(before, after string) (ActionType, int, string) {
	b := []rune(before)
	a := []rune(after)

	prefix := 0
	for prefix < len(b) && prefix < len(a) && b[prefix] == a[prefix] {
		prefix++
	}

	removed := len(b) - prefix
	inserted := string(a[prefix:])

	switch {
	case removed == 0 && inserted == "":
		return ActionNone, 0, ""
	case removed == 0:
		return ActionInsert, 0, inserted
	case inserted == "":
		return ActionBackspaceDelete, removed, ""
	default:
		return ActionBackspaceDeleteAndInsert, removed, inserted
	}
}
