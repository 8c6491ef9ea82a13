// ABOUTME: Two sibling pickers whose selections must stay disjoint
// ABOUTME: Used for accepted versus rejected universities

package picker

import "slices"

// ExclusivePair holds the accepted and rejected selections. Each side hides
// the other's ids, and every write removes the id from the other side.
type ExclusivePair struct {
	Accepted []int
	Rejected []int
}

// AcceptedPicker returns a picker over options hiding the rejected ids
func (e *ExclusivePair) AcceptedPicker(options []Option) *Picker {
	return &Picker{Options: options, Excluded: slices.Clone(e.Rejected)}
}

// RejectedPicker returns a picker over options hiding the accepted ids
func (e *ExclusivePair) RejectedPicker(options []Option) *Picker {
	return &Picker{Options: options, Excluded: slices.Clone(e.Accepted)}
}

// ToggleAccepted toggles id on the accepted side
func (e *ExclusivePair) ToggleAccepted(id int) {
	e.Accepted, e.Rejected = toggleExclusive(e.Accepted, e.Rejected, id)
}

// ToggleRejected toggles id on the rejected side
func (e *ExclusivePair) ToggleRejected(id int) {
	e.Rejected, e.Accepted = toggleExclusive(e.Rejected, e.Accepted, id)
}

// SetAccepted replaces the accepted side, dropping those ids from rejected
func (e *ExclusivePair) SetAccepted(ids []int) {
	e.Accepted = dedupe(ids)
	e.Rejected = without(e.Rejected, e.Accepted)
}

// SetRejected replaces the rejected side, dropping those ids from accepted
func (e *ExclusivePair) SetRejected(ids []int) {
	e.Rejected = dedupe(ids)
	e.Accepted = without(e.Accepted, e.Rejected)
}

// Prune keeps only ids still present in allowed
func (e *ExclusivePair) Prune(allowed []int) {
	keep := func(ids []int) []int {
		out := make([]int, 0, len(ids))
		for _, id := range ids {
			if slices.Contains(allowed, id) {
				out = append(out, id)
			}
		}
		return out
	}
	e.Accepted = keep(e.Accepted)
	e.Rejected = keep(e.Rejected)
}

// Disjoint reports whether no id is on both sides
func (e *ExclusivePair) Disjoint() bool {
	for _, id := range e.Accepted {
		if slices.Contains(e.Rejected, id) {
			return false
		}
	}
	return true
}

func toggleExclusive(side, other []int, id int) ([]int, []int) {
	if i := slices.Index(side, id); i >= 0 {
		return slices.Delete(slices.Clone(side), i, i+1), other
	}
	return append(slices.Clone(side), id), without(other, []int{id})
}

func without(ids, drop []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(drop, id) {
			out = append(out, id)
		}
	}
	return out
}

func dedupe(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
