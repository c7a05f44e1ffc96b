// Package pipeline provides the conversion pipeline for psdatlas.
//
// This package implements the complete load → pack → render pipeline used
// by the CLI and the HTTP API. By centralizing this logic, both entry points
// share defaults, caching and job recording.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a layer manifest or image directory and decode every layer
//  2. Pack: Shelf-pack the layers into an atlas layout with UVs
//  3. Render: Produce the atlas PNG, the PSDB binary, a JSON descriptor and
//     a debug overlay
//
// Pack and render results are cached by content hash, so converting an
// unchanged document again only re-reads its files.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:            "hero/layers.toml",
//	    CoordinateSystem: psdb.BottomLeft,
//	    Formats:          []string{"png", "bin"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	atlasPNG := result.Artifacts["png"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	"github.com/matzehuels/psdatlas/pkg/cache"
	apperr "github.com/matzehuels/psdatlas/pkg/errors"
	"github.com/matzehuels/psdatlas/pkg/psdb"
	"github.com/matzehuels/psdatlas/pkg/source"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultImageName is the atlas file name recorded in the JSON descriptor
// when none is given.
const DefaultImageName = "atlas.png"

// Format constants for output formats.
const (
	FormatPNG   = "png"
	FormatBin   = "bin"
	FormatJSON  = "json"
	FormatDebug = "debug"
)

// DefaultFormats are rendered when Options.Formats is empty.
var DefaultFormats = []string{FormatPNG, FormatBin}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:   true,
	FormatBin:   true,
	FormatJSON:  true,
	FormatDebug: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the conversion pipeline.
type Options struct {
	// Load options
	Input         string `json:"input"`
	IncludeHidden bool   `json:"include_hidden,omitempty"`

	// Pack options. A nil Padding means atlas.DefaultPadding.
	Padding *int `json:"padding,omitempty"`
	Refresh bool `json:"refresh,omitempty"`

	// Render options
	CoordinateSystem psdb.CoordinateSystem `json:"coordinate_system"`
	CanvasWidth      int                   `json:"canvas_width,omitempty"`  // 0 = document width
	CanvasHeight     int                   `json:"canvas_height,omitempty"` // 0 = document height
	Formats          []string              `json:"formats,omitempty"`
	ImageName        string                `json:"image_name,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the loaded source, including decoded layer pixels.
	Document *source.Document

	// Layout is the packed atlas layout.
	Layout atlas.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// JobID identifies the recorded job, if a job store is configured.
	JobID string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LayerCount int
	Coverage   float64
	LoadTime   time.Duration
	PackTime   time.Duration
	RenderTime time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.LoadTime + s.PackTime + s.RenderTime
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PackHit   bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, bin, json, debug)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks and
// dropping duplicates. An empty string yields DefaultFormats.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return slices.Clone(DefaultFormats), nil
	}
	return out, ValidateFormats(out)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return apperr.New(apperr.ErrCodeInvalidInput, "input is required")
	}
	if err := o.ValidateForPack(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForPack checks and defaults the packing options.
func (o *Options) ValidateForPack() error {
	if o.Padding == nil {
		p := atlas.DefaultPadding
		o.Padding = &p
	}
	if *o.Padding < 0 {
		return apperr.New(apperr.ErrCodeInvalidRegion, "padding must be non-negative, got %d", *o.Padding)
	}
	o.setLogger()
	return nil
}

// ValidateForRender checks and defaults the render options.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if o.ImageName == "" {
		o.ImageName = DefaultImageName
	}
	if o.CanvasWidth < 0 || o.CanvasHeight < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "canvas size must be non-negative, got %dx%d", o.CanvasWidth, o.CanvasHeight)
	}
	if o.CoordinateSystem != psdb.TopLeft && o.CoordinateSystem != psdb.BottomLeft {
		return apperr.New(apperr.ErrCodeInvalidCoordSystem, "unknown coordinate system %d", uint8(o.CoordinateSystem))
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// PaddingValue returns the effective padding.
func (o *Options) PaddingValue() int {
	if o.Padding == nil {
		return atlas.DefaultPadding
	}
	return *o.Padding
}

// Canvas returns the canvas size used for coordinate remapping: the
// overrides where set, the document size otherwise.
func (o *Options) Canvas(doc *source.Document) (int, int) {
	w, h := o.CanvasWidth, o.CanvasHeight
	if doc != nil {
		if w == 0 {
			w = doc.Width
		}
		if h == 0 {
			h = doc.Height
		}
	}
	return w, h
}

// Wants reports whether format is among the requested formats.
func (o *Options) Wants(format string) bool {
	return slices.Contains(o.Formats, format)
}

// LayoutKeyOpts returns cache key options for packing.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Padding:       o.PaddingValue(),
		IncludeHidden: o.IncludeHidden,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// Only the options that change that format are included, so a PNG stays
// cached when just the coordinate system changes.
func (o *Options) ArtifactKeyOpts(format string, canvasW, canvasH int) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatBin:
		opts.CoordinateSystem = o.CoordinateSystem.String()
		opts.CanvasHeight = canvasH
	case FormatJSON:
		opts.CoordinateSystem = o.CoordinateSystem.String()
		opts.CanvasWidth, opts.CanvasHeight = canvasW, canvasH
		opts.ImageName = o.ImageName
	}
	return opts
}
