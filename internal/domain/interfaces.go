package domain

import (
	"context"
	"time"
)

// Record is one row of the crop production dataset. A column absent from the
// map is missing; an empty string is a present but empty value.
type Record map[string]string

// Get returns the value of field and whether it is present.
func (r Record) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// Table is an ordered record set with its column names in fetch order.
type Table struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Document is a single-line rendering of a Record used for retrieval.
type Document struct {
	Index int
	Text  string
}

// SearchResult represents a matching document with a relevance score.
type SearchResult struct {
	Document Document
	Score    float64
}

// RainfallPoint is one day of precipitation. PrecipMM is nil when the
// provider reported no value for that day.
type RainfallPoint struct {
	Date     time.Time `json:"date"`
	PrecipMM *float64  `json:"precip_mm"`
}

// RainfallSeries is a contiguous daily precipitation series for one location.
type RainfallSeries struct {
	Location string          `json:"location"`
	Points   []RainfallPoint `json:"points"`
}

// Mean returns the mean of the non-missing values and whether any existed.
func (s *RainfallSeries) Mean() (float64, bool) {
	sum, n := 0.0, 0
	for _, p := range s.Points {
		if p.PrecipMM == nil {
			continue
		}
		sum += *p.PrecipMM
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// RainfallReading is the most recent point of a series.
type RainfallReading struct {
	Location string    `json:"state"`
	Date     time.Time `json:"date"`
	PrecipMM *float64  `json:"latest_rainfall_mm"`
}

// Location is a named point from the static registry.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// DatasetFetcher loads the crop production dataset. It never fails; an
// unavailable provider yields an empty table.
type DatasetFetcher interface {
	FetchDataset(ctx context.Context, limit int) Table
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// Retriever returns the documents most similar to a query.
type Retriever interface {
	Retrieve(query string, k int) []SearchResult
}

// Completer sends a system instruction and a user prompt to a hosted
// language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
