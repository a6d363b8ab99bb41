package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/duotone/internal/colour"
	"github.com/jmylchreest/duotone/internal/config"
	"github.com/jmylchreest/duotone/internal/encode"
	imgutil "github.com/jmylchreest/duotone/internal/image"
	"github.com/jmylchreest/duotone/internal/pipeline"
	"github.com/jmylchreest/duotone/internal/quality"
	"github.com/jmylchreest/duotone/internal/tone"
	"github.com/jmylchreest/duotone/internal/util/imagecache"
)

// DefaultOutputBase is the output file name used when --output is not given.
const DefaultOutputBase = "gradient-mapped-image"

type applyOptions struct {
	preset         string
	tone           string
	contrast       float64
	highlights     float64
	shadows        float64
	format         string
	quality        float64
	targetMin      config.ByteSize
	targetMax      config.ByteSize
	maxDimension   int
	encoderPlugin  string
	cache          bool
	cacheDir       string
	cacheOverwrite bool
	output         string
}

func newApplyCmd(a *app) *cobra.Command {
	defaults := tone.DefaultParams()
	opts := &applyOptions{
		preset:        a.cfg.Preset,
		tone:          string(a.cfg.Tone),
		contrast:      defaults.Contrast,
		highlights:    defaults.Highlights,
		shadows:       defaults.Shadows,
		format:        string(a.cfg.Format),
		quality:       a.cfg.Quality,
		encoderPlugin: a.cfg.EncoderPlugin,
		cacheDir:      a.cfg.CacheDir,
	}

	cmd := &cobra.Command{
		Use:   "apply <image>",
		Short: "Apply a gradient map to an image",
		Long: `Apply a two-stop gradient map to an image and write the result.

The image may be a local file or an http(s) URL, optionally compressed with
gzip, bzip2 or xz. Supported image formats: JPEG, PNG, GIF, WebP, BMP, TIFF.

Examples:
  # Recolour with the default preset, writing gradient-mapped-image.png
  duotone apply photo.jpg

  # Use the harbour preset with extra contrast
  duotone apply -p harbour --contrast 40 photo.jpg

  # Lift highlights and deepen shadows, write JPEG
  duotone apply --tone highlights-shadows --highlights 30 --shadows 80 -f jpeg photo.jpg

  # Find a JPEG quality that lands between 100KB and 300KB
  duotone apply -f jpeg --target-min 100KB --target-max 300KB photo.jpg

  # Stream to another program
  duotone apply -o - photo.jpg | display -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, a, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.preset, "preset", "p", opts.preset, "gradient preset ("+strings.Join(colour.PresetNames(), ", ")+")")
	f.StringVar(&opts.tone, "tone", opts.tone, "tone adjustment (none, contrast, highlights-shadows)")
	f.Float64Var(&opts.contrast, "contrast", opts.contrast, "contrast in percent, 0 is neutral")
	f.Float64Var(&opts.highlights, "highlights", opts.highlights, "highlight lift in percent (0-100)")
	f.Float64Var(&opts.shadows, "shadows", opts.shadows, "shadow scale in percent (0-200), 100 is neutral")
	f.StringVarP(&opts.format, "format", "f", opts.format, "output format (png, jpeg)")
	f.Float64Var(&opts.quality, "quality", opts.quality, "JPEG quality (0-1], ignored with a target size")
	f.Var(&opts.targetMin, "target-min", "minimum output size, e.g. 100KB (enables quality search)")
	f.Var(&opts.targetMax, "target-max", "maximum output size, e.g. 3MB (enables quality search)")
	f.IntVar(&opts.maxDimension, "max-dimension", 0, "downscale so neither side exceeds this many pixels (0 = no limit)")
	f.StringVar(&opts.encoderPlugin, "encoder-plugin", opts.encoderPlugin, "path to an external encoder plugin")
	f.BoolVar(&opts.cache, "cache", false, "cache remote images on disk")
	f.StringVar(&opts.cacheDir, "cache-dir", opts.cacheDir, "directory for cached remote images (default: user cache dir)")
	f.BoolVar(&opts.cacheOverwrite, "cache-overwrite", false, "re-download remote images even when cached")
	f.StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: "+DefaultOutputBase+".<ext>)")

	return cmd
}

func runApply(cmd *cobra.Command, a *app, opts *applyOptions, source string) error {
	ctx := cmd.Context()
	logger := a.logger

	cfg := config.Config{
		Preset:        opts.preset,
		Tone:          tone.Mode(opts.tone),
		Format:        encode.Format(opts.format),
		Quality:       opts.quality,
		CacheDir:      opts.cacheDir,
		EncoderPlugin: opts.encoderPlugin,
	}

	// Tone sliders imply their mode when --tone was not given.
	if !cmd.Flags().Changed("tone") {
		switch {
		case cmd.Flags().Changed("contrast"):
			cfg.Tone = tone.ModeContrast
		case cmd.Flags().Changed("highlights"), cmd.Flags().Changed("shadows"):
			cfg.Tone = tone.ModeHighlightsShadows
		}
	}

	mode, err := tone.ParseMode(string(cfg.Tone))
	if err != nil {
		return err
	}
	cfg.Tone = mode
	format, err := encode.ParseFormat(string(cfg.Format))
	if err != nil {
		return err
	}
	cfg.Format = format
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	spec, err := colour.LookupPreset(cfg.Preset)
	if err != nil {
		return err
	}
	params := tone.Params{Contrast: opts.contrast, Highlights: opts.highlights, Shadows: opts.shadows}
	if err := params.Validate(mode); err != nil {
		return fmt.Errorf("invalid tone parameters: %w", err)
	}

	target, searching, err := opts.target()
	if err != nil {
		return err
	}

	outPath := opts.output
	if outPath == "" {
		outPath = DefaultOutputBase + format.Extension()
	}
	if outPath == "-" && isTerminal(cmd.OutOrStdout()) {
		return fmt.Errorf("refusing to write binary image data to a terminal; use --output or redirect stdout")
	}

	// Load.
	loader := imgutil.NewSmartLoader()
	if opts.cache {
		loader.Cache = &imagecache.CacheOptions{
			CacheDir:       cfg.CacheDir,
			AllowOverwrite: opts.cacheOverwrite,
		}
	}
	if !imgutil.IsRemote(source) && !imgutil.IsImageFile(source) {
		logger.Warn("unrecognised image extension, decoding by content", "path", source)
	}

	start := time.Now()
	decoded, err := loader.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	b := decoded.Image.Bounds()
	logger.Debug("image decoded", "source", decoded.Source, "format", decoded.Format,
		"width", b.Dx(), "height", b.Dy(), "elapsed", time.Since(start))

	img := imgutil.Fit(decoded.Image, opts.maxDimension)
	if img.Rect.Dx() != b.Dx() || img.Rect.Dy() != b.Dy() {
		logger.Info("image downscaled", "width", img.Rect.Dx(), "height", img.Rect.Dy())
	}

	// Encode.
	var encoder encode.Encoder = encode.NewStdEncoder()
	if cfg.EncoderPlugin != "" {
		pe := encode.NewPluginEncoder(cfg.EncoderPlugin, logger)
		defer pe.Close()
		info, err := pe.Info()
		if err != nil {
			return err
		}
		logger.Debug("using encoder plugin", "name", info.Name, "version", info.Version)
		encoder = pe
	}

	session, err := pipeline.NewSession(pipeline.Options{
		Logger:   logger.Named("pipeline"),
		Encoder:  encoder,
		Mode:     mode,
		Params:   &params,
		Gradient: spec,
	})
	if err != nil {
		return err
	}
	if err := session.OnFileDecoded(img); err != nil {
		return err
	}

	out, err := encodeResult(ctx, a, session, format, cfg.Quality, target, searching)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), outPath, out.Data); err != nil {
		return err
	}

	dest := outPath
	if dest == "-" {
		dest = "stdout"
	}
	logger.Info("wrote image", "path", dest, "format", out.Format, "bytes", out.Len(),
		"quality", out.Quality, "preset", spec.Name, "tone", mode)
	return nil
}

// target returns the size window from --target-min and --target-max and
// whether a search was requested at all.
func (o *applyOptions) target() (quality.Target, bool, error) {
	if o.targetMin == 0 && o.targetMax == 0 {
		return quality.Target{}, false, nil
	}
	t := quality.Target{Min: int64(o.targetMin), Max: int64(o.targetMax)}
	if t.Max == 0 {
		t.Max = math.MaxInt64
	}
	if err := t.Validate(); err != nil {
		return t, false, fmt.Errorf("invalid target size: %w", err)
	}
	return t, true, nil
}

func encodeResult(ctx context.Context, a *app, session *pipeline.Session, format encode.Format, q float64, target quality.Target, searching bool) (*encode.Encoded, error) {
	if !searching {
		return session.Encode(ctx, format, q)
	}
	if !format.Lossy() {
		a.logger.Warn("target size ignored for lossless format", "format", format)
		return session.Encode(ctx, format, q)
	}

	res, err := session.FindQuality(ctx, format, target)
	if err != nil {
		return nil, fmt.Errorf("quality search failed: %w", err)
	}
	if !res.WithinTarget {
		a.logger.Warn("target size not reachable, using closest quality",
			"quality", res.Quality, "bytes", res.Encoded.Len(),
			"min", target.Min, "max", target.Max)
	}
	return res.Encoded, nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - Output image needs standard read permissions
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 - file descriptors fit in int
}
