package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	"github.com/matzehuels/psdatlas/pkg/compose"
	"github.com/matzehuels/psdatlas/pkg/observability"
	"github.com/matzehuels/psdatlas/pkg/psdb"
	"github.com/matzehuels/psdatlas/pkg/sink"
	"github.com/matzehuels/psdatlas/pkg/source"
)

// Render generates output artifacts in the requested formats.
// The atlas image is composited at most once, and only when png or debug
// is requested.
func Render(ctx context.Context, l atlas.Layout, doc *source.Document, opts Options) (map[string][]byte, error) {
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := render(l, doc, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func render(l atlas.Layout, doc *source.Document, opts Options) (map[string][]byte, error) {
	canvasW, canvasH := opts.Canvas(doc)
	artifacts := make(map[string][]byte, len(opts.Formats))

	var atlasImg *image.NRGBA
	composite := func() (*image.NRGBA, error) {
		if atlasImg != nil {
			return atlasImg, nil
		}
		img, err := compose.Compose(l, doc.Images())
		if err != nil {
			return nil, err
		}
		atlasImg = img
		return img, nil
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatPNG:
			var img *image.NRGBA
			if img, err = composite(); err == nil {
				data, err = encodePNG(img)
			}
		case FormatDebug:
			var img *image.NRGBA
			if img, err = composite(); err == nil {
				data, err = encodePNG(compose.DebugOverlay(l, img))
			}
		case FormatBin:
			data, err = psdb.Serialize(l.Regions, canvasW, canvasH, opts.CoordinateSystem)
		case FormatJSON:
			data, err = sink.RenderJSON(l,
				sink.WithJSONImage(opts.ImageName),
				sink.WithJSONCanvas(canvasW, canvasH),
				sink.WithJSONCoordinateSystem(opts.CoordinateSystem),
			)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := compose.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
