// Package quality searches for a lossy encoding quality whose output size
// lands inside a target byte window.
package quality

import (
	"context"
	"fmt"
	"math"

	"github.com/jmylchreest/duotone/internal/encode"
)

// Target is an inclusive window of acceptable encoded sizes, in bytes.
type Target struct {
	Min int64
	Max int64
}

// Validate rejects windows the search cannot meaningfully bracket. Find
// itself does not call it: a misconfigured window still terminates.
func (t Target) Validate() error {
	if t.Min < 0 || t.Max < 0 {
		return fmt.Errorf("target sizes must not be negative (min %d, max %d)", t.Min, t.Max)
	}
	if t.Max == 0 {
		return fmt.Errorf("target max size must be greater than zero")
	}
	if t.Min > t.Max {
		return fmt.Errorf("target min size %d exceeds max size %d", t.Min, t.Max)
	}
	return nil
}

// Contains reports whether size lies inside the window.
func (t Target) Contains(size int64) bool {
	return size >= t.Min && size <= t.Max
}

// RenderFunc encodes the current image at the given quality.
type RenderFunc func(ctx context.Context, quality float64) (*encode.Encoded, error)

// Search holds the stepping parameters.
type Search struct {
	Start   float64
	Step    float64
	Floor   float64
	Ceiling float64
}

// DefaultSearch starts at full quality and moves in 0.05 steps between 0.1
// and 1.0.
func DefaultSearch() Search {
	return Search{Start: 1.0, Step: 0.05, Floor: 0.1, Ceiling: 1.0}
}

// Result is the outcome of a search.
type Result struct {
	// Quality is the last quality encoded.
	Quality float64
	// Encoded is the output at Quality.
	Encoded *encode.Encoded
	// Encodes counts render calls, including the initial one.
	Encodes int
	// WithinTarget reports whether Encoded's size satisfies the target.
	WithinTarget bool
}

// Find runs the search with the default parameters.
func Find(ctx context.Context, render RenderFunc, target Target) (*Result, error) {
	return DefaultSearch().Find(ctx, render, target)
}

// Find performs a two-phase bounded linear search. It first lowers quality
// while the output is larger than target.Max, stopping at Floor, then raises
// it while the output is smaller than target.Min, stopping at Ceiling.
// Quality never goes below Floor: a step that would cross it lands on Floor
// exactly, so no quality between zero and Floor is ever encoded.
//
// The search is best effort: when the window is unreachable the result sits
// at the clamp bound and WithinTarget is false. Renders are strictly
// sequential, each decision depending on the previous size. An error from
// render or a cancelled ctx aborts the search.
func (s Search) Find(ctx context.Context, render RenderFunc, target Target) (*Result, error) {
	if s.Step <= 0 {
		return nil, fmt.Errorf("search step must be positive, got %g", s.Step)
	}
	if s.Floor > s.Ceiling {
		return nil, fmt.Errorf("search floor %g exceeds ceiling %g", s.Floor, s.Ceiling)
	}

	res := &Result{Quality: clamp(s.Start, s.Floor, s.Ceiling)}

	step := func(q float64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		enc, err := render(ctx, q)
		if err != nil {
			return fmt.Errorf("encode at quality %.2f: %w", q, err)
		}
		res.Quality = q
		res.Encoded = enc
		res.Encodes++
		return nil
	}

	if err := step(res.Quality); err != nil {
		return nil, err
	}

	for res.Encoded.Len() > target.Max && res.Quality > s.Floor {
		if err := step(snap(math.Max(res.Quality-s.Step, s.Floor))); err != nil {
			return nil, err
		}
	}

	for res.Encoded.Len() < target.Min && res.Quality < s.Ceiling {
		if err := step(snap(math.Min(res.Quality+s.Step, s.Ceiling))); err != nil {
			return nil, err
		}
	}

	res.WithinTarget = target.Contains(res.Encoded.Len())
	return res, nil
}

// snap rounds to 1/1000 so repeated steps do not accumulate float drift.
func snap(q float64) float64 {
	return math.Round(q*1000) / 1000
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
