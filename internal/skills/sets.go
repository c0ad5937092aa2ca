package skills

// Shared returns the skills of have that also appear in want, in have's order.
func Shared(have, want []string) []string {
	wantSet := toSet(want)
	out := make([]string, 0)
	for _, s := range Unique(have) {
		if wantSet[Normalize(s)] {
			out = append(out, s)
		}
	}
	return out
}

// Missing returns the skills of want that do not appear in have, in want's order.
func Missing(have, want []string) []string {
	haveSet := toSet(have)
	out := make([]string, 0)
	for _, s := range Unique(want) {
		if !haveSet[Normalize(s)] {
			out = append(out, s)
		}
	}
	return out
}

// Unique drops empty and repeated skills, keeping the first occurrence.
func Unique(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		n := Normalize(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, s)
	}
	return out
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, s := range list {
		if n := Normalize(s); n != "" {
			set[n] = true
		}
	}
	return set
}
