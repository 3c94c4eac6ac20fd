package storage

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samijaber1/alcometer/internal/bac"
	"github.com/samijaber1/alcometer/internal/level"
)

func TestNewRecord(t *testing.T) {
	in := bac.Input{Sex: bac.Male, WeightKg: 80, DrinkCount: 4, ElapsedHours: 2}
	result := bac.Estimate(in)
	c := level.Classification{Level: level.LevelOverLimit, Reasons: []string{"over"}}

	rec := NewRecord(SourceAPI, in, result, c, time.Now())

	require.NotNil(t, rec.BAC)
	assert.InDelta(t, 0.5628571, *rec.BAC, 1e-6)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, bac.OutcomeFinite, rec.Outcome)
	assert.Equal(t, result.String(), rec.Display)
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())
}

func TestNewRecord_NonFinite(t *testing.T) {
	rec := NewRecord(SourceCLI, bac.Input{}, bac.Result{BAC: math.NaN()},
		level.Classification{Level: level.LevelUndefined}, time.Now())

	assert.Nil(t, rec.BAC)
	assert.Equal(t, "NaN", rec.Display)
	assert.Equal(t, bac.OutcomeNaN, rec.Outcome)
}

func TestHistoryFilter_Matches(t *testing.T) {
	now := time.Now().UTC()
	rec := &Record{
		Source:    SourceBatch,
		Input:     bac.Input{Sex: bac.Female},
		Level:     level.LevelBelowLimit,
		CreatedAt: now,
	}

	before := now.Add(-time.Minute)
	after := now.Add(time.Minute)

	assert.True(t, HistoryFilter{}.Matches(rec))
	assert.True(t, HistoryFilter{Sex: bac.Female, Source: SourceBatch, StartTime: &before, EndTime: &after}.Matches(rec))
	assert.False(t, HistoryFilter{Sex: bac.Male}.Matches(rec))
	assert.False(t, HistoryFilter{Level: level.LevelSevere}.Matches(rec))
	assert.False(t, HistoryFilter{Source: SourceAPI}.Matches(rec))
	assert.False(t, HistoryFilter{StartTime: &after}.Matches(rec))
	assert.False(t, HistoryFilter{EndTime: &before}.Matches(rec))
}

func TestHistoryFilter_EffectiveLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, HistoryFilter{}.EffectiveLimit())
	assert.Equal(t, 5, HistoryFilter{Limit: 5}.EffectiveLimit())
}
