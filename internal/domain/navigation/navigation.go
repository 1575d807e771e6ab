// Package navigation tracks which record of which category is on screen.
//
// State is a small value type. Every transition returns the next state and
// whether the display changed; invalid requests return the input unchanged.
package navigation

import (
	"github.com/okian/vitrine/internal/domain/model"
)

// Step directions.
const (
	Prev = -1
	Next = 1
)

// Source yields the ordered records of a category.
type Source interface {
	Items(c model.Category) []model.Record
}

// State is the current category and the index of the active record in the
// category's original order.
type State struct {
	Category model.Category `json:"category"`
	Index    int            `json:"index"`
}

// MostRecentIndex returns the index of the record with the greatest date key.
// Ties go to the earliest record; an empty list yields 0.
func MostRecentIndex(items []model.Record) int {
	best := 0
	for i := 1; i < len(items); i++ {
		if items[i].DateKey() > items[best].DateKey() {
			best = i
		}
	}
	return best
}

// Initial is the state a new session starts in.
func Initial(src Source) State {
	return State{
		Category: model.CategoryExperiences,
		Index:    MostRecentIndex(src.Items(model.CategoryExperiences)),
	}
}

// SelectCategory switches to c and activates its most recent record. For an
// empty or unknown category the index is 0 and changed is false.
func (s State) SelectCategory(src Source, c model.Category) (State, bool) {
	items := src.Items(c)
	if len(items) == 0 {
		return State{Category: c, Index: 0}, false
	}
	return State{Category: c, Index: MostRecentIndex(items)}, true
}

// Step moves by dir, wrapping at both ends. Empty categories are a no-op.
func (s State) Step(src Source, dir int) (State, bool) {
	n := len(src.Items(s.Category))
	if n == 0 || dir == 0 {
		return s, false
	}
	next := ((s.Index+dir)%n + n) % n
	return State{Category: s.Category, Index: next}, true
}

// Jump activates index i when it is in range, otherwise it is a no-op.
func (s State) Jump(src Source, i int) (State, bool) {
	n := len(src.Items(s.Category))
	if i < 0 || i >= n {
		return s, false
	}
	return State{Category: s.Category, Index: i}, true
}

// Active returns the active record, or false when the category is empty or
// the index is stale.
func (s State) Active(src Source) (model.Record, bool) {
	items := src.Items(s.Category)
	if s.Index < 0 || s.Index >= len(items) {
		return nil, false
	}
	return items[s.Index], true
}
