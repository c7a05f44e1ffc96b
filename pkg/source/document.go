package source

import (
	"image"

	"github.com/matzehuels/psdatlas/pkg/atlas"
)

// Layer is one drawable layer with its decoded pixels.
type Layer struct {
	Name    string
	Path    string // image file the pixels came from
	X, Y    int    // top-left position on the document canvas
	Opacity float64
	Hidden  bool
	Image   image.Image
}

// Width returns the layer's pixel width.
func (l Layer) Width() int { return l.Image.Bounds().Dx() }

// Height returns the layer's pixel height.
func (l Layer) Height() int { return l.Image.Bounds().Dy() }

// Document is a loaded layered document.
type Document struct {
	Name   string
	Width  int
	Height int
	Layers []Layer

	// Hash is a SHA-256 over the manifest and every layer's file contents.
	// Two loads of unchanged inputs produce the same hash.
	Hash string
}

// Regions converts the layers into packer input, in layer order.
func (d *Document) Regions() []atlas.LayerRegion {
	out := make([]atlas.LayerRegion, len(d.Layers))
	for i, l := range d.Layers {
		out[i] = atlas.LayerRegion{
			Name:      l.Name,
			Width:     l.Width(),
			Height:    l.Height(),
			OriginalX: l.X,
			OriginalY: l.Y,
			Opacity:   l.Opacity,
		}
	}
	return out
}

// Images maps layer names to decoded pixels, for compositing.
func (d *Document) Images() map[string]image.Image {
	out := make(map[string]image.Image, len(d.Layers))
	for _, l := range d.Layers {
		out[l.Name] = l.Image
	}
	return out
}
