package entity

import (
	"errors"
	"fmt"
	"strings"
)

// MaxSearchResults caps the number of papers returned by a single search.
const MaxSearchResults = 10

// CitationsUnavailable is reported for every paper: arXiv exposes no citation counts.
const CitationsUnavailable = "N/A (arXiv API)"

type Comparison string

const (
	ComparisonAfter  Comparison = "after"
	ComparisonBefore Comparison = "before"
	ComparisonIn     Comparison = "in"
)

func ParseComparison(s string) (Comparison, error) {
	switch c := Comparison(strings.ToLower(strings.TrimSpace(s))); c {
	case ComparisonAfter, ComparisonBefore, ComparisonIn:
		return c, nil
	default:
		return "", fmt.Errorf("invalid comparison %q: want after, before or in", s)
	}
}

// Matches reports whether a paper published in year satisfies the comparison
// against target.
func (c Comparison) Matches(year, target int) bool {
	switch c {
	case ComparisonAfter:
		return year > target
	case ComparisonBefore:
		return year < target
	case ComparisonIn:
		return year == target
	default:
		return false
	}
}

type SearchQuery struct {
	Topic        string     `json:"topic" validate:"required"`
	Year         int        `json:"year" validate:"gte=1900,lte=3000"`
	Comparison   Comparison `json:"comparison" validate:"required,oneof=after before in"`
	MinCitations int        `json:"min_citations" validate:"gte=0"`
}

type Paper struct {
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Year      int      `json:"year"`
	Link      string   `json:"link"`
	Summary   string   `json:"summary,omitempty"`
	Citations string   `json:"citations,omitempty"`
}

var (
	// ErrSearchUnavailable wraps transport failures talking to the paper index.
	ErrSearchUnavailable = errors.New("search backend unavailable")
	// ErrSearchResponse wraps responses that could not be decoded.
	ErrSearchResponse = errors.New("search backend response invalid")
)

// SearchError is the element shape used when a search could not be completed.
type SearchError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}
