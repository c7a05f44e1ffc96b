package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	"github.com/matzehuels/psdatlas/pkg/cache"
	"github.com/matzehuels/psdatlas/pkg/jobs"
	"github.com/matzehuels/psdatlas/pkg/observability"
	"github.com/matzehuels/psdatlas/pkg/source"
)

// Runner encapsulates pipeline execution with caching and job recording.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its backends - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Jobs   jobs.Store
	Logger *log.Logger

	// TTL overrides the per-entry cache TTLs when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// Jobs defaults to a NullStore; set the field to record history.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Jobs:   jobs.NullStore{},
		Logger: logger,
	}
}

// Execute runs the complete load → pack → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	doc, err := Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Document = doc
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.LayerCount = len(doc.Layers)

	r.Logger.Info("loaded layers",
		"document", doc.Name,
		"layers", len(doc.Layers),
		"canvas", fmt.Sprintf("%dx%d", doc.Width, doc.Height),
		"duration", result.Stats.LoadTime)

	// Stage 2: Pack
	packStart := time.Now()
	layout, packHit, err := r.PackWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	result.Layout = layout
	result.Stats.PackTime = time.Since(packStart)
	result.Stats.Coverage = layout.Coverage()
	result.CacheInfo.PackHit = packHit

	r.Logger.Info("packed atlas",
		"regions", len(layout.Regions),
		"size", fmt.Sprintf("%dx%d", layout.Width, layout.Height),
		"coverage", fmt.Sprintf("%.1f%%", result.Stats.Coverage*100),
		"cached", packHit,
		"duration", result.Stats.PackTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	result.JobID = r.record(ctx, opts, result)
	return result, nil
}

// PackWithCacheInfo packs the document with caching and returns cache hit info.
// The cache key covers the document's content hash, so edited layers
// always repack.
func (r *Runner) PackWithCacheInfo(ctx context.Context, doc *source.Document, opts Options) (atlas.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForPack(); err != nil {
		return atlas.Layout{}, false, err
	}

	cacheKey := r.Keyer.LayoutKey(doc.Hash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached atlas.Layout
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// Undecodable entry, fall through to repack
		} else if err != nil {
			r.Logger.Warn("cache lookup failed", "key", "layout", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	layout, err := Pack(ctx, doc, opts)
	if err != nil {
		return atlas.Layout{}, false, err
	}

	if data, err := json.Marshal(layout); err == nil {
		r.store(ctx, "layout", cacheKey, data, cache.TTLLayout)
	}
	return layout, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout atlas.Layout, doc *source.Document, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Artifacts depend on the pixels as well as the layout.
	layoutData, err := json.Marshal(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(append([]byte(doc.Hash), layoutData...))
	canvasW, canvasH := opts.Canvas(doc)

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format, canvasW, canvasH))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, layout, doc, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format, canvasW, canvasH))
		r.store(ctx, "artifact", key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.Jobs != nil {
		if err := r.Jobs.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// store writes a cache entry. Cache failures never fail a conversion.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// record stores a job for the finished run and returns its ID, or "" when
// recording failed.
func (r *Runner) record(ctx context.Context, opts Options, result *Result) string {
	if _, null := r.Jobs.(jobs.NullStore); null || r.Jobs == nil {
		return ""
	}
	job := jobs.New(opts.Input)
	job.SourceHash = result.Document.Hash
	job.Regions = len(result.Layout.Regions)
	job.AtlasWidth = result.Layout.Width
	job.AtlasHeight = result.Layout.Height
	job.Padding = result.Layout.Padding
	job.CoordinateSystem = opts.CoordinateSystem.String()
	job.Formats = opts.Formats
	job.Cached = result.CacheInfo.PackHit && result.CacheInfo.RenderHit
	job.Duration = result.Stats.Total()

	if err := r.Jobs.Record(ctx, job); err != nil {
		r.Logger.Warn("record job failed", "err", err)
		return ""
	}
	return job.ID
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
