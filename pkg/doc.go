// Package pkg provides the core libraries for psdatlas sprite atlas packing.
//
// # Overview
//
// psdatlas takes a layered document, packs every visible layer into a single
// power-of-two texture atlas, and describes where each layer landed in a
// compact binary table (PSDB) that game engines can read without a parser
// library. The pkg directory is organized into three areas:
//
//  1. Domain: [atlas] (shelf packing), [psdb] (binary region table),
//     [source] (layer loading), [compose] (atlas pixels), [sink] (JSON)
//  2. Orchestration: [pipeline] (load → pack → render with caching)
//  3. Infrastructure: [cache], [jobs], [config], [observability],
//     [errors], [buildinfo], [fonts]
//
// # Architecture
//
// The typical data flow through psdatlas:
//
//	layers.toml / image directory
//	         ↓
//	    [source] package (decode layers, content hash)
//	         ↓
//	    [atlas] package (shelf pack + UVs)
//	         ↓
//	    [compose] / [psdb] / [sink] packages
//	         ↓
//	    atlas.png + atlas.bin + atlas.json
//
// # Quick Start
//
// Pack regions and serialize them without touching pixels:
//
//	import (
//	    "github.com/matzehuels/psdatlas/pkg/atlas"
//	    "github.com/matzehuels/psdatlas/pkg/psdb"
//	)
//
//	layout, err := atlas.Pack([]atlas.LayerRegion{
//	    {Name: "head", Width: 64, Height: 64, OriginalX: 120, OriginalY: 10},
//	    {Name: "torso", Width: 96, Height: 128, OriginalX: 100, OriginalY: 70},
//	}, atlas.DefaultPadding)
//
//	buf, err := psdb.Serialize(layout.Regions, 320, 480, psdb.BottomLeft)
//
// Run the full pipeline with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Input: "hero/"})
//	png := result.Artifacts[pipeline.FormatPNG]
//
// # Main Packages
//
// [atlas] - Shelf packing. Regions are sorted tallest first and placed left
// to right on shelves; the width is the power-of-two square root of the
// padded area, the height the next power of two of the used height, both
// at least 512.
//
// [psdb] - The PSDB binary format: a 12-byte header ("PSDB", version,
// count) followed by one record per region with its name, source rectangle
// and UVs, all little-endian. Includes a decoder for inspection and tests.
//
// [source] - Loads layer manifests (TOML or JSON) and image directories,
// decoding PNG, JPEG, GIF, BMP, TIFF and WebP in parallel.
//
// [compose] - Blits layer pixels into the atlas image and draws the debug
// overlay.
//
// [sink] - The JSON descriptor written next to the atlas.
//
// ## Infrastructure
//
// [pipeline] - Complete conversion pipeline used by the CLI and the HTTP
// API. Ensures consistent defaults and caching across entry points.
//
// [cache] - Layout and artifact caching keyed by content hash, with file,
// Redis and null backends.
//
// [jobs] - Conversion history with file, MongoDB and null backends.
//
// [config] - TOML configuration with environment overrides.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/psdb/...     # Specific package
//	go test -run Example ./... # Examples only
//
// [atlas]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/atlas
// [psdb]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/psdb
// [source]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/source
// [compose]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/compose
// [sink]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/cache
// [jobs]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/jobs
// [config]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/buildinfo
// [fonts]: https://pkg.go.dev/github.com/matzehuels/psdatlas/pkg/fonts
package pkg
