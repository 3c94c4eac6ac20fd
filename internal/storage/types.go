package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/samijaber1/alcometer/internal/bac"
	"github.com/samijaber1/alcometer/internal/level"
)

// DefaultLimit caps history queries that do not set a limit
const DefaultLimit = 100

// ErrNotConfigured is returned when no history backend is available
var ErrNotConfigured = errors.New("history storage not configured")

// Source identifies which surface produced an estimate
type Source string

const (
	SourceCLI      Source = "cli"
	SourceAPI      Source = "api"
	SourceBatch    Source = "batch"
	SourceScenario Source = "scenario"
)

// HistoryStorage defines the interface for persisting estimations
type HistoryStorage interface {
	// StoreEstimation persists a single estimation record
	StoreEstimation(record *Record) error

	// GetEstimation retrieves a record by ID, nil if it does not exist
	GetEstimation(id string) (*Record, error)

	// QueryHistory retrieves records with optional filtering, newest first
	QueryHistory(filter HistoryFilter) ([]Record, error)

	// Close closes the storage
	Close() error
}

// HistoryFilter defines filtering options for history queries
type HistoryFilter struct {
	Sex       bac.Sex
	Level     level.Level
	Source    Source
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// Record represents one stored estimation. BAC is nil when the estimate was not a
// finite number; Display always holds the rendered value.
type Record struct {
	ID        string
	Source    Source
	Input     bac.Input
	BAC       *float64
	Display   string
	Outcome   bac.Outcome
	Level     level.Level
	Reasons   []string
	CreatedAt time.Time
}

// NewRecord builds a record with a fresh ID
func NewRecord(source Source, in bac.Input, result bac.Result, c level.Classification, now time.Time) *Record {
	rec := &Record{
		ID:        uuid.NewString(),
		Source:    source,
		Input:     in,
		Display:   result.String(),
		Outcome:   result.Outcome(),
		Level:     c.Level,
		Reasons:   c.Reasons,
		CreatedAt: now.UTC(),
	}
	if result.IsFinite() {
		v := result.BAC
		rec.BAC = &v
	}
	return rec
}

// Matches reports whether the record passes the non-paging parts of the filter
func (f HistoryFilter) Matches(r *Record) bool {
	if f.Sex != "" && r.Input.Sex != f.Sex {
		return false
	}
	if f.Level != "" && r.Level != f.Level {
		return false
	}
	if f.Source != "" && r.Source != f.Source {
		return false
	}
	if f.StartTime != nil && r.CreatedAt.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && r.CreatedAt.After(*f.EndTime) {
		return false
	}
	return true
}

// EffectiveLimit returns the limit to apply
func (f HistoryFilter) EffectiveLimit() int {
	if f.Limit > 0 {
		return f.Limit
	}
	return DefaultLimit
}
