package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	"github.com/matzehuels/psdatlas/pkg/observability"
	"github.com/matzehuels/psdatlas/pkg/source"
)

// Pack lays out the document's layers into an atlas.
func Pack(ctx context.Context, doc *source.Document, opts Options) (atlas.Layout, error) {
	start := time.Now()
	regions := doc.Regions()
	observability.Pipeline().OnPackStart(ctx, len(regions))

	l, err := atlas.Pack(regions, opts.PaddingValue())

	observability.Pipeline().OnPackComplete(ctx, l.Width, l.Height, time.Since(start), err)
	return l, err
}
