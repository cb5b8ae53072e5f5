// Package party provides the participant identity type shared by every
// other package in this module.
package party

import "sort"

// ID identifies a single participant in a signing session. It is
// comparable so it can be used directly as a map key.
type ID string

// IDSlice is a sortable list of participant IDs.
type IDSlice []ID

func (p IDSlice) Len() int           { return len(p) }
func (p IDSlice) Less(i, j int) bool { return p[i] < p[j] }
func (p IDSlice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// Sorted returns a copy of ids sorted in ascending order.
func Sorted(ids []ID) []ID {
	out := make([]ID, len(ids))
	copy(out, ids)
	sort.Sort(IDSlice(out))
	return out
}

// IndexOf returns the position of id within ids, or -1 if absent.
func IndexOf(ids []ID, id ID) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}

// Contains reports whether id appears in ids.
func Contains(ids []ID, id ID) bool {
	return IndexOf(ids, id) >= 0
}
