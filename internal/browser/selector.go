package browser

import (
	"errors"
	"fmt"
	"sync"

	"github.com/exampapers/backend/internal/models"
)

var (
	ErrNoCategory     = errors.New("no category selected")
	ErrNoVariantAxis  = errors.New("category has no sub-tests")
	ErrYearRequired   = errors.New("select a year before a sub-test")
	ErrUnknownVariant = errors.New("unknown sub-test")
)

// Stage is how far down the category > year > variant axis a selection goes.
type Stage int

const (
	StageNone Stage = iota
	StageCategory
	StageYear
	StageVariant
)

func (s Stage) String() string {
	switch s {
	case StageCategory:
		return "category"
	case StageYear:
		return "year"
	case StageVariant:
		return "variant"
	default:
		return "none"
	}
}

// Selection is a snapshot of a Selector. Empty Year or Variant means no filter
// on that axis.
type Selection struct {
	Category string
	Year     string
	Variant  string
}

// Stage derives the stage from which fields are set.
func (s Selection) Stage() Stage {
	switch {
	case s.Category == "":
		return StageNone
	case s.Year == "":
		return StageCategory
	case s.Variant == "":
		return StageYear
	default:
		return StageVariant
	}
}

func (s Selection) State() models.SelectionState {
	return models.SelectionState{
		Category: s.Category,
		Year:     s.Year,
		Variant:  s.Variant,
		Stage:    s.Stage().String(),
	}
}

// Selector holds one session's navigation state. It is safe for concurrent use.
type Selector struct {
	mu       sync.Mutex
	category *models.Category
	year     string
	variant  string
}

func NewSelector() *Selector {
	return &Selector{}
}

// SetCategory selects c and clears year and variant.
func (s *Selector) SetCategory(c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Variants = append([]string(nil), c.Variants...)
	s.category = &c
	s.year = ""
	s.variant = ""
}

// SetYear selects a year within the current category. Changing the year keeps
// the variant, since sub-tests recur every year. An empty year clears both.
func (s *Selector) SetYear(year string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.category == nil {
		return ErrNoCategory
	}
	s.year = year
	if year == "" {
		s.variant = ""
	}
	return nil
}

// SetVariant selects a sub-test. Only categories with a variant axis accept
// one, and only after a year is chosen. An empty variant clears it.
func (s *Selector) SetVariant(variant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.category == nil {
		return ErrNoCategory
	}
	if !s.category.HasVariantAxis() {
		return fmt.Errorf("%s: %w", s.category.ID, ErrNoVariantAxis)
	}
	if variant == "" {
		s.variant = ""
		return nil
	}
	if s.year == "" {
		return ErrYearRequired
	}
	if !s.category.HasVariant(variant) {
		return fmt.Errorf("%q: %w", variant, ErrUnknownVariant)
	}
	s.variant = variant
	return nil
}

func (s *Selector) Current() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.category == nil {
		return Selection{}
	}
	return Selection{Category: s.category.ID, Year: s.year, Variant: s.variant}
}

func (s *Selector) Stage() Stage {
	return s.Current().Stage()
}

// Clone returns an independent copy of the current state. Changes to the copy
// do not affect s until they are committed with Replace.
func (s *Selector) Clone() *Selector {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &Selector{year: s.year, variant: s.variant}
	if s.category != nil {
		cat := *s.category
		cat.Variants = append([]string(nil), cat.Variants...)
		c.category = &cat
	}
	return c
}

// Replace overwrites s with the state of other in one step.
func (s *Selector) Replace(other *Selector) {
	next := other.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = next.category
	s.year = next.year
	s.variant = next.variant
}

// Reset returns the selector to StageNone, as a navigation-stack reset does.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = nil
	s.year = ""
	s.variant = ""
}
