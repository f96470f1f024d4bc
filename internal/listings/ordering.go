package listings

import (
	"cmp"
	"slices"
)

// SortForPresentation orders listings by display order, breaking ties by id so
// the result does not depend on input order. It sorts in place.
func SortForPresentation(items []Listing) {
	slices.SortStableFunc(items, func(a, b Listing) int {
		if c := cmp.Compare(a.DisplayOrder, b.DisplayOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Renumber sets every display order to the item's index.
func Renumber(items []Listing) {
	for i := range items {
		items[i].DisplayOrder = i
	}
}

// Move returns a renumbered copy of items (assumed in presentation order) with
// the listing id swapped with its neighbour in direction. moved is false when
// id is absent or already at the boundary; the copy is still renumbered.
func Move(items []Listing, id string, direction Direction) (out []Listing, moved bool) {
	out = CloneAll(items)
	idx := slices.IndexFunc(out, func(l Listing) bool { return l.ID == id })
	if idx >= 0 {
		target := idx - 1
		if direction == DirectionDown {
			target = idx + 1
		}
		if target >= 0 && target < len(out) {
			out[idx], out[target] = out[target], out[idx]
			moved = true
		}
	}
	Renumber(out)
	return out, moved
}

// IsDense reports whether display orders are exactly 0..N-1 in slice order.
func IsDense(items []Listing) bool {
	for i, item := range items {
		if item.DisplayOrder != i {
			return false
		}
	}
	return true
}

// NextDisplayOrder is the slot a new listing takes at the end of items.
func NextDisplayOrder(items []Listing) int {
	next := 0
	for _, item := range items {
		if item.DisplayOrder >= next {
			next = item.DisplayOrder + 1
		}
	}
	return next
}

// Published filters out drafts for public readers.
func Published(items []Listing) []Listing {
	out := make([]Listing, 0, len(items))
	for _, item := range items {
		if item.Status == StatusDraft {
			continue
		}
		out = append(out, item.Clone())
	}
	return out
}
