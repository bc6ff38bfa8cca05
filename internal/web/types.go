package web

import "time"

type Flash struct {
	Kind    string
	Message string
}

type RevealPage struct {
	Flash            Flash
	UniqueIdentifier string
	ImageURL         string
	Guess            string
	Rating           int
}

type ResultRow struct {
	ID               uint
	Name             string
	UniqueIdentifier string
	Guess            string
	Rating           int
	CreatedDate      time.Time
}

type ResultsPage struct {
	Flash     Flash
	Rows      []ResultRow
	SortBy    string
	Direction string
}

type ImagePage struct {
	Flash Flash
	Row   ResultRow
	Image string
}
