package engine

import "sort"

// SortRules imposes the deterministic match-priority order the matcher
// walks (spec.md §4.D): descending by state-atom count, then VK-atom
// count, then matching length against strings; ties preserve original
// rule order via a stable sort, grounded on
// _examples/original_source/keymagic-core/src/engine/engine.rs's
// sort_rules_by_priority/count_states/count_virtual_keys/calculate_rule_length.
func SortRules(patterns []Pattern, strings []string) {
	sort.SliceStable(patterns, func(i, j int) bool {
		a, b := &patterns[i], &patterns[j]

		if sc := a.StateCount(); sc != b.StateCount() {
			return sc > b.StateCount()
		}
		if vc := a.VKCount(); vc != b.VKCount() {
			return vc > b.VKCount()
		}
		al, bl := a.MatchLength(strings), b.MatchLength(strings)
		if al != bl {
			return al > bl
		}
		return false
	})
}
