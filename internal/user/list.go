package user

// List is an ordered sequence of users. Order is significant: added users
// appear at the head and refreshed lists keep the source's order.
type List []User

// Prepend returns a new list with u at index 0 followed by the existing users.
// The receiver is not modified.
func (l List) Prepend(u User) List {
	out := make(List, 0, len(l)+1)
	out = append(out, u)
	return append(out, l...)
}

// Clone returns an independent copy of the list. Extra maps are shared, which
// is safe because nothing mutates them after decoding.
func (l List) Clone() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// UIDs returns the uid of every user, in list order.
func (l List) UIDs() []UID {
	ids := make([]UID, len(l))
	for i, u := range l {
		ids[i] = u.UID
	}
	return ids
}

// DuplicateUIDs returns every uid that appears more than once, in order of
// first repetition. Renderers key rows by uid, so duplicates are worth logging.
func (l List) DuplicateUIDs() []UID {
	seen := make(map[UID]int, len(l))
	var dups []UID
	for _, u := range l {
		seen[u.UID]++
		if seen[u.UID] == 2 {
			dups = append(dups, u.UID)
		}
	}
	return dups
}

// Equal reports whether both lists hold the same uids in the same order.
func (l List) Equal(other List) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i].UID != other[i].UID {
			return false
		}
	}
	return true
}
