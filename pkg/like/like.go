package like

// Set holds the ids of users who liked a post. Membership is the source of
// truth, so liking twice is the same as liking once.
type Set []string

func (s Set) Contains(userId string) bool {
	for _, id := range s {
		if id == userId {
			return true
		}
	}
	return false
}

// Toggle adds userId when absent and removes it when present.
// It reports whether the user likes the post afterwards.
func (s *Set) Toggle(userId string) bool {
	for idx, id := range *s {
		if id == userId {
			*s = append((*s)[:idx], (*s)[idx+1:]...)
			return false
		}
	}
	*s = append(*s, userId)
	return true
}

// Normalize returns s without duplicates, keeping first occurrences in order.
func (s Set) Normalize() Set {
	seen := make(map[string]struct{}, len(s))
	out := make(Set, 0, len(s))
	for _, id := range s {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
