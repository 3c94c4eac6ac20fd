package scenario

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/samijaber1/alcometer/internal/bac"
	"github.com/samijaber1/alcometer/internal/level"
)

// DefaultTolerance is used when an expectation gives a BAC without a tolerance
const DefaultTolerance = 1e-4

// RunResult is the outcome of running one scenario
type RunResult struct {
	ID             string
	File           string
	Input          bac.Input
	Result         bac.Result
	Classification level.Classification
	Failures       []string
}

// Passed reports whether every expectation held
func (r RunResult) Passed() bool {
	return len(r.Failures) == 0
}

// Run estimates every scenario, at most concurrency at a time. Results keep the
// order of the input slice.
func Run(ctx context.Context, scenarios []ScenarioWithFile, engine *level.Engine, concurrency int) ([]RunResult, error) {
	results := make([]RunResult, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			in, err := sc.Scenario.Input()
			if err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Scenario.Metadata.ID, err)
			}

			result := bac.Estimate(in)
			classification := engine.Classify(result)

			results[i] = RunResult{
				ID:             sc.Scenario.Metadata.ID,
				File:           sc.File,
				Input:          in,
				Result:         result,
				Classification: classification,
				Failures:       check(sc.Scenario.Spec.Expect, result, classification),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func check(exp *Expectation, result bac.Result, c level.Classification) []string {
	if exp == nil {
		return nil
	}

	var failures []string

	if exp.Outcome != "" && string(result.Outcome()) != exp.Outcome {
		failures = append(failures, fmt.Sprintf("expected outcome %s, got %s", exp.Outcome, result.Outcome()))
	}

	if exp.BAC != nil {
		tolerance := exp.Tolerance
		if tolerance <= 0 {
			tolerance = DefaultTolerance
		}
		if !result.IsFinite() || math.Abs(result.BAC-*exp.BAC) > tolerance {
			failures = append(failures, fmt.Sprintf("expected bac %v (±%v), got %s", *exp.BAC, tolerance, result))
		}
	}

	if exp.Level != "" && string(c.Level) != exp.Level {
		failures = append(failures, fmt.Sprintf("expected level %s, got %s", exp.Level, c.Level))
	}

	return failures
}
