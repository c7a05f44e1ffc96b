package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/psdatlas/pkg/observability"
	"github.com/matzehuels/psdatlas/pkg/source"
)

// Load reads and decodes the input document.
func Load(ctx context.Context, opts Options) (*source.Document, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Input)

	doc, err := source.Load(ctx, opts.Input, source.Options{
		IncludeHidden: opts.IncludeHidden,
		Logger:        opts.Logger,
	})

	count := 0
	if doc != nil {
		count = len(doc.Layers)
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.Input, count, time.Since(start), err)
	return doc, err
}
