// Package pipeline composes the tone preprocessor and the gradient mapper and
// drives them from an interactive session.
package pipeline

import (
	"image"

	"github.com/jmylchreest/duotone/internal/colour"
	"github.com/jmylchreest/duotone/internal/gradient"
	"github.com/jmylchreest/duotone/internal/tone"
)

// Pipeline recolours a buffer: tone adjustment first, then the gradient map.
type Pipeline struct {
	// Tone is the active tone variant. Nil behaves as tone.Identity.
	Tone tone.Adjuster
	// Gradient is the two-stop gradient applied after tone adjustment.
	Gradient colour.GradientSpec
}

// New builds a pipeline for the given tone mode, sliders and gradient.
func New(mode tone.Mode, params tone.Params, spec colour.GradientSpec) (*Pipeline, error) {
	adj, err := tone.New(mode, params)
	if err != nil {
		return nil, err
	}
	return &Pipeline{Tone: adj, Gradient: spec}, nil
}

// Process returns a freshly allocated, recoloured copy of original. original
// is only read, so the same snapshot can be processed any number of times.
func (p *Pipeline) Process(original *image.NRGBA) *image.NRGBA {
	adj := p.Tone
	if adj == nil {
		adj = tone.Identity{}
	}
	// Adjusters always return a new buffer, so it is safe to map in place.
	out := adj.Adjust(original)
	gradient.Apply(out, p.Gradient)
	return out
}
