package level

import (
	"fmt"

	"github.com/samijaber1/alcometer/internal/bac"
)

// Engine classifies estimates against configured thresholds. It never changes
// the estimated value.
type Engine struct {
	thresholds Thresholds
}

// NewEngine creates a new classification engine
func NewEngine(thresholds Thresholds) (*Engine, error) {
	if thresholds.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %v", thresholds.Limit)
	}
	if thresholds.Severe < thresholds.Limit {
		return nil, fmt.Errorf("severe threshold (%v) must be >= limit (%v)", thresholds.Severe, thresholds.Limit)
	}
	return &Engine{thresholds: thresholds}, nil
}

// Thresholds returns the configured thresholds
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Classify maps a result to a level
func (e *Engine) Classify(result bac.Result) Classification {
	if !result.IsFinite() {
		return Classification{
			Level:   LevelUndefined,
			Reasons: []string{fmt.Sprintf("estimate is %s (weight of zero?)", result)},
		}
	}

	v := result.BAC
	switch {
	case v <= 0:
		return Classification{
			Level:   LevelNone,
			Reasons: []string{"no measurable alcohol left"},
		}
	case v >= e.thresholds.Severe:
		return Classification{
			Level:     LevelSevere,
			Threshold: e.thresholds.Severe,
			Reasons: []string{
				fmt.Sprintf("estimate %.2f is over the limit (%.2f)", v, e.thresholds.Limit),
				fmt.Sprintf("estimate %.2f is at or above the severe threshold (%.2f)", v, e.thresholds.Severe),
			},
		}
	case v >= e.thresholds.Limit:
		return Classification{
			Level:     LevelOverLimit,
			Threshold: e.thresholds.Limit,
			Reasons:   []string{fmt.Sprintf("estimate %.2f is over the limit (%.2f)", v, e.thresholds.Limit)},
		}
	default:
		return Classification{
			Level:     LevelBelowLimit,
			Threshold: e.thresholds.Limit,
			Reasons:   []string{fmt.Sprintf("estimate %.2f is below the limit (%.2f)", v, e.thresholds.Limit)},
		}
	}
}
