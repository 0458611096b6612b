package renewal

// debugKey marks provider entries that carry diagnostics instead of fee data.
const debugKey = "debug"

// RemoveGarbage keeps, in order, the elements of raw that are mappings without
// a debug key.  Prose disclaimers and other scalars are dropped.
func RemoveGarbage(raw []any) []map[string]any {
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if _, debug := m[debugKey]; debug {
			continue
		}
		out = append(out, m)
	}
	return out
}

//Personal.AI order the ending
