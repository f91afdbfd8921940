package session

import (
	"cmp"
	"slices"

	"github.com/aretw0/swiftnote/pkg/core"
)

// compareRecency orders notes by UpdatedAt descending. Equal timestamps fall
// back to the larger id first, so the order is total and deterministic.
func compareRecency(a, b core.Note) int {
	if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func sortByRecency(notes []core.Note) {
	slices.SortFunc(notes, compareRecency)
}

// replace overwrites the entry with n.ID and reports whether one was found.
func replace(notes []core.Note, n core.Note) bool {
	i := slices.IndexFunc(notes, func(m core.Note) bool { return m.ID == n.ID })
	if i < 0 {
		return false
	}
	notes[i] = n
	return true
}
