// Package compose draws layer pixels into an atlas image.
//
// [Compose] copies every layer's pixels unchanged to its packed position.
// Layer opacity is not applied: the atlas stores raw layer pixels and
// consumers apply opacity at draw time from the layout.
package compose

import (
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	apperr "github.com/matzehuels/psdatlas/pkg/errors"
)

// Compose allocates a transparent atlas of the layout's size and copies each
// region's image to its packed position. images is keyed by region name.
// A region without an image fails with LAYER_NOT_FOUND.
func Compose(l atlas.Layout, images map[string]image.Image) (*image.NRGBA, error) {
	dst := image.NewNRGBA(image.Rect(0, 0, l.Width, l.Height))
	for _, r := range l.Regions {
		src, ok := images[r.Name]
		if !ok || src == nil {
			return nil, apperr.New(apperr.ErrCodeLayerNotFound, "no pixels for region %q", r.Name)
		}
		b := src.Bounds()
		if b.Dx() != r.Width || b.Dy() != r.Height {
			return nil, apperr.New(apperr.ErrCodeInvalidRegion,
				"region %q is %dx%d but its image is %dx%d", r.Name, r.Width, r.Height, b.Dx(), b.Dy())
		}
		draw.Copy(dst, image.Pt(r.X, r.Y), src, b, draw.Src, nil)
	}
	return dst, nil
}

// EncodePNG writes img as a best-compression PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
}
