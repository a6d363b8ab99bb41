package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/duotone/internal/colour"
	"github.com/jmylchreest/duotone/internal/encode"
	imgutil "github.com/jmylchreest/duotone/internal/image"
	"github.com/jmylchreest/duotone/internal/quality"
	"github.com/jmylchreest/duotone/internal/tone"
)

var (
	// ErrNoImage is returned by operations that need a decoded image.
	ErrNoImage = errors.New("no image loaded")
	// ErrStale is returned when the result an operation started from was
	// replaced by a newer recompute before it finished.
	ErrStale = errors.New("result superseded by a newer recompute")
)

// Options configures a Session. A nil Params selects tone.DefaultParams.
type Options struct {
	Logger   hclog.Logger
	Encoder  encode.Encoder
	Search   quality.Search
	Mode     tone.Mode
	Params   *tone.Params
	Gradient colour.GradientSpec
}

// State is the set of user-controlled parameters.
type State struct {
	Mode     tone.Mode
	Params   tone.Params
	Gradient colour.GradientSpec
}

// Session holds one loaded image and the current parameters, and recomputes
// the recoloured result whenever either changes.
//
// Every recompute starts from the snapshot taken in OnFileDecoded and tags
// its output with a new generation. Readers of Current get a buffer that is
// never written again.
type Session struct {
	logger  hclog.Logger
	encoder encode.Encoder
	search  quality.Search

	mu         sync.Mutex
	state      State
	original   *image.NRGBA
	current    *image.NRGBA
	generation uint64
}

// NewSession creates a session with no image loaded. Zero-valued options
// fall back to the in-process encoder, the default search, neutral tone and
// the default preset.
func NewSession(opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Encoder == nil {
		opts.Encoder = encode.NewStdEncoder()
	}
	if opts.Search == (quality.Search{}) {
		opts.Search = quality.DefaultSearch()
	}
	mode, err := tone.ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	opts.Mode = mode
	params := tone.DefaultParams()
	if opts.Params != nil {
		params = *opts.Params
	}
	name := opts.Gradient.Name
	if name == "" {
		name = colour.DefaultPreset
	}
	spec, err := colour.LookupPreset(name)
	if err != nil {
		return nil, err
	}
	opts.Gradient = spec
	if err := params.Validate(opts.Mode); err != nil {
		return nil, fmt.Errorf("invalid tone parameters: %w", err)
	}

	return &Session{
		logger:  opts.Logger,
		encoder: opts.Encoder,
		search:  opts.Search,
		state: State{
			Mode:     opts.Mode,
			Params:   params,
			Gradient: opts.Gradient,
		},
	}, nil
}

// OnFileDecoded replaces the loaded image and recomputes. A failed call
// leaves the previous image and result in place.
func (s *Session) OnFileDecoded(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("decoded image is empty")
	}
	snap := imgutil.Snapshot(img)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.original = snap
	s.logger.Debug("image loaded", "width", snap.Rect.Dx(), "height", snap.Rect.Dy())
	s.recompute()
	return nil
}

// OnParametersChanged applies new slider values. It reports whether a
// recompute happened; invalid values are rejected without changing state.
func (s *Session) OnParametersChanged(p tone.Params) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := p.Validate(s.state.Mode); err != nil {
		return false, err
	}
	s.state.Params = p
	return s.recompute(), nil
}

// OnGradientSelected switches to the preset named by spec and reports
// whether a recompute happened. Only catalogue presets are accepted; the
// stops are taken from the catalogue, not from spec.
func (s *Session) OnGradientSelected(spec colour.GradientSpec) (bool, error) {
	resolved, err := colour.LookupPreset(spec.Name)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Gradient = resolved
	return s.recompute(), nil
}

// OnToneModeChanged switches the tone variant. The current slider values are
// kept and must be valid for the new mode.
func (s *Session) OnToneModeChanged(mode tone.Mode) (bool, error) {
	mode, err := tone.ParseMode(string(mode))
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Params.Validate(mode); err != nil {
		return false, err
	}
	s.state.Mode = mode
	return s.recompute(), nil
}

// Reset restores neutral slider values and recomputes from the original.
func (s *Session) Reset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Params = tone.DefaultParams()
	return s.recompute()
}

// State returns the current parameters.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the latest result and its generation. The buffer is shared
// and must not be modified. It is nil until an image is loaded.
func (s *Session) Current() (*image.NRGBA, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.generation
}

// Generation returns the number of recomputes performed so far.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Encode encodes the current result once at the given quality.
func (s *Session) Encode(ctx context.Context, format encode.Format, q float64) (*encode.Encoded, error) {
	img, _ := s.Current()
	if img == nil {
		return nil, ErrNoImage
	}
	return s.encoder.Encode(ctx, img, format, q)
}

// FindQuality searches for a quality whose encoded size lies in target. The
// session lock is not held while encoding, so parameters may change
// mid-search; when they do the search stops with ErrStale.
func (s *Session) FindQuality(ctx context.Context, format encode.Format, target quality.Target) (*quality.Result, error) {
	if !format.Lossy() {
		return nil, fmt.Errorf("quality search needs a lossy format, got %s", format)
	}

	img, gen := s.Current()
	if img == nil {
		return nil, ErrNoImage
	}

	start := time.Now()
	render := func(ctx context.Context, q float64) (*encode.Encoded, error) {
		if s.Generation() != gen {
			return nil, ErrStale
		}
		out, err := s.encoder.Encode(ctx, img, format, q)
		if err != nil {
			return nil, err
		}
		s.logger.Trace("search step", "quality", q, "bytes", out.Len())
		return out, nil
	}

	res, err := s.search.Find(ctx, render, target)
	if err != nil {
		return nil, err
	}
	if s.Generation() != gen {
		return nil, ErrStale
	}

	s.logger.Debug("quality search finished",
		"quality", res.Quality,
		"bytes", res.Encoded.Len(),
		"encodes", res.Encodes,
		"within_target", res.WithinTarget,
		"elapsed", time.Since(start))
	return res, nil
}

// recompute rebuilds the current result. It must be called with mu held and
// returns false when no image is loaded.
func (s *Session) recompute() bool {
	if s.original == nil {
		return false
	}

	adj, err := tone.New(s.state.Mode, s.state.Params)
	if err != nil {
		// Parameters are validated before they reach the state.
		s.logger.Error("invalid tone state", "error", err)
		return false
	}

	start := time.Now()
	p := &Pipeline{Tone: adj, Gradient: s.state.Gradient}
	s.current = p.Process(s.original)
	s.generation++

	s.logger.Debug("recomputed",
		"generation", s.generation,
		"tone", s.state.Mode,
		"gradient", s.state.Gradient.Name,
		"elapsed", time.Since(start))
	return true
}
