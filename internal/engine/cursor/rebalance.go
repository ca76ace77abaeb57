package cursor

import "sort"

// ForEachRebalance applies f to each cursor in turn and shifts every
// other cursor so it keeps pointing at the same content after the
// edit f performed:
//
//   - an empty-selection cursor whose position moved by delta (an
//     insertion or single-character deletion at the cursor) shifts
//     every cursor after its pre-edit position by the same delta;
//   - a cursor with a selection is assumed to have deleted it, so
//     every cursor after its pre-edit position shifts backward by the
//     selection's length.
func ForEachRebalance(cursors []Cursor, f func(c *Cursor)) {
	for i := range cursors {
		before := cursors[i]
		f(&cursors[i])

		if !before.HasSelection() {
			delta := cursors[i].Position - before.Position
			if delta == 0 {
				continue
			}
			shiftAfter(cursors, i, before.Position, delta)
			continue
		}

		removed := before.SelectionEnd() - before.SelectionStart() + 1
		shiftAfter(cursors, i, before.Position, -removed)
	}
}

func shiftAfter(cursors []Cursor, skip int, position ByteOffset, delta int) {
	for j := range cursors {
		if j == skip || cursors[j].Position <= position {
			continue
		}
		cursors[j].Position += delta
		cursors[j].Anchor += delta
	}
}

// Overlapping reports whether the two cursors' selection intervals
// intersect.
func Overlapping(a, b *Cursor) bool {
	return a.SelectionStart() <= b.SelectionEnd() && b.SelectionStart() <= a.SelectionEnd()
}

// SortAndDedupe sorts cursors by position and removes duplicates.
// Called after any command that can reorder cursors or land two on
// the same offset.
func SortAndDedupe(cursors []Cursor) []Cursor {
	sort.SliceStable(cursors, func(i, j int) bool {
		return cursors[i].Position < cursors[j].Position
	})
	out := cursors[:0]
	for _, c := range cursors {
		if len(out) > 0 && out[len(out)-1].Position == c.Position {
			continue
		}
		out = append(out, c)
	}
	return out
}
