// Package viewing holds the guessing-round lifecycle: allocating display codes,
// creating rounds, accepting guesses and ratings, and purging rounds that the
// retention rules no longer keep.
package viewing

import (
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5

	// lowRating marks a round as a miss; only these age out of the results.
	lowRating = 1
)

// Session is one round of the game. UserGuess and Rating stay nil until the
// player submits them.
type Session struct {
	ID               uint
	ImageURL         string
	Name             string
	UniqueIdentifier string
	UserGuess        *string
	Rating           *int
	CreatedDate      time.Time
}

// HasGuess reports whether a non-blank guess was recorded.
func (s Session) HasGuess() bool {
	return s.UserGuess != nil && strings.TrimSpace(*s.UserGuess) != ""
}

func (s Session) clone() Session {
	out := s
	if s.UserGuess != nil {
		guess := *s.UserGuess
		out.UserGuess = &guess
	}
	if s.Rating != nil {
		rating := *s.Rating
		out.Rating = &rating
	}
	return out
}

type SortField string

const (
	SortByName             SortField = "name"
	SortByUniqueIdentifier SortField = "unique_identifier"
	SortByUserGuess        SortField = "user_guess"
	SortByRating           SortField = "rating"
	SortByCreatedDate      SortField = "created_date"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// NormalizeSort maps caller input onto the allow-list. Anything unknown falls
// back to created_date and desc independently.
func NormalizeSort(field, direction string) (SortField, Direction) {
	sortField := SortField(strings.TrimSpace(field))
	switch sortField {
	case SortByName, SortByUniqueIdentifier, SortByUserGuess, SortByRating, SortByCreatedDate:
	default:
		sortField = SortByCreatedDate
	}
	dir := Direction(strings.ToLower(strings.TrimSpace(direction)))
	if dir != Ascending && dir != Descending {
		dir = Descending
	}
	return sortField, dir
}

func stringPtr(value string) *string {
	return &value
}

func intPtr(value int) *int {
	return &value
}
