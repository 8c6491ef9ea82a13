// ABOUTME: Multi-select picker state: options, exclusions, cap and search
// ABOUTME: The caller owns the selected ids; the picker only computes new sets

package picker

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NoOptionsPlaceholder is shown instead of an empty candidate list
const NoOptionsPlaceholder = "Aucune option disponible"

// VisibleChips is how many chips are rendered before "+N autres"
const VisibleChips = 3

// Option is a labelled choice
type Option struct {
	ID    int
	Label string
}

// Point is a pointer position in screen cells
type Point struct {
	X, Y int
}

// Bounds is the rectangle occupied by an open dropdown
type Bounds struct {
	X, Y, Width, Height int
}

// Contains reports whether p falls inside the rectangle
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X < b.X+b.Width && p.Y >= b.Y && p.Y < b.Y+b.Height
}

// Picker maps a list of options to a set of selected ids
type Picker struct {
	Options  []Option
	Excluded []int
	// Max caps the selection size; zero means unlimited
	Max int
	// OnSelectionChange receives every new selection produced by Toggle
	OnSelectionChange func([]int)

	open   bool
	search string
	bounds Bounds
}

// New creates a closed picker over options
func New(options []Option) *Picker {
	return &Picker{Options: options}
}

// Toggle removes id when selected, adds it otherwise. Adding is a no-op once
// Max is reached. The input slice is never modified. changed reports whether
// a new selection was produced.
func (p *Picker) Toggle(selected []int, id int) (next []int, changed bool) {
	if i := slices.Index(selected, id); i >= 0 {
		next = slices.Delete(slices.Clone(selected), i, i+1)
	} else {
		if p.LimitReached(selected) {
			return selected, false
		}
		next = append(slices.Clone(selected), id)
	}
	if p.OnSelectionChange != nil {
		p.OnSelectionChange(next)
	}
	return next, true
}

// Remove drops id from the selection, used by chip close buttons
func (p *Picker) Remove(selected []int, id int) ([]int, bool) {
	if !slices.Contains(selected, id) {
		return selected, false
	}
	return p.Toggle(selected, id)
}

// LimitReached reports whether no further id can be added
func (p *Picker) LimitReached(selected []int) bool {
	return p.Max > 0 && len(selected) >= p.Max
}

// Available returns options minus excluded ids
func (p *Picker) Available() []Option {
	out := make([]Option, 0, len(p.Options))
	for _, o := range p.Options {
		if !slices.Contains(p.Excluded, o.ID) {
			out = append(out, o)
		}
	}
	return out
}

// Candidates returns the available options matching the search text
func (p *Picker) Candidates() []Option {
	available := p.Available()
	if p.search == "" {
		return available
	}
	needle := fold(p.search)
	out := available[:0]
	for _, o := range available {
		if strings.Contains(fold(o.Label), needle) {
			out = append(out, o)
		}
	}
	return out
}

// Chips returns the available options whose id is selected, in option order
func (p *Picker) Chips(selected []int) []Option {
	var out []Option
	for _, o := range p.Available() {
		if slices.Contains(selected, o.ID) {
			out = append(out, o)
		}
	}
	return out
}

// ChipsSummary splits chips into the visible ones and the overflow count
func (p *Picker) ChipsSummary(selected []int) ([]Option, int) {
	chips := p.Chips(selected)
	if len(chips) <= VisibleChips {
		return chips, 0
	}
	return chips[:VisibleChips], len(chips) - VisibleChips
}

// Placeholder returns the "no options" text when there is nothing to choose
func (p *Picker) Placeholder() string {
	if len(p.Options) == 0 {
		return NoOptionsPlaceholder
	}
	return ""
}

// Open shows the dropdown and resets the search text
func (p *Picker) Open() {
	p.open = true
	p.search = ""
}

// Close hides the dropdown
func (p *Picker) Close() {
	p.open = false
}

// IsOpen reports whether the dropdown is shown
func (p *Picker) IsOpen() bool {
	return p.open
}

// SetSearch updates the transient search text
func (p *Picker) SetSearch(s string) {
	p.search = s
}

// Search returns the transient search text
func (p *Picker) Search() string {
	return p.search
}

// SetBounds records where the open dropdown is drawn
func (p *Picker) SetBounds(b Bounds) {
	p.bounds = b
}

// HandleClick closes the dropdown when pt falls outside its bounds. It
// reports whether the picker closed.
func (p *Picker) HandleClick(pt Point) bool {
	if !p.open || p.bounds.Contains(pt) {
		return false
	}
	p.Close()
	return true
}

// fold lowercases and strips accents so "universite" matches "Université"
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
