package atlas

import "image"

// LayerRegion is one decoded layer as the packer sees it: a named rectangle
// with its position in the source document.
type LayerRegion struct {
	Name      string  `json:"name"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	OriginalX int     `json:"x"`
	OriginalY int     `json:"y"`
	Opacity   float64 `json:"opacity,omitempty"`
}

// UV is a normalized texture-space rectangle. U grows to the right and V
// grows downward from the top-left corner of the atlas.
type UV struct {
	U1 float32 `json:"u1"`
	V1 float32 `json:"v1"`
	U2 float32 `json:"u2"`
	V2 float32 `json:"v2"`
}

// PackedRegion is a LayerRegion after packing: where it sits in the atlas,
// where it came from in the document, and its texture coordinates.
type PackedRegion struct {
	Name      string  `json:"name"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	OriginalX int     `json:"original_x"`
	OriginalY int     `json:"original_y"`
	Opacity   float64 `json:"opacity,omitempty"`
	UV        UV      `json:"uv"`
}

// Rect returns the region's placement in atlas pixel space.
func (r PackedRegion) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Layout is the result of packing: regions in packing order plus the atlas
// dimensions they were normalized against.
type Layout struct {
	Regions []PackedRegion `json:"regions"`
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Padding int            `json:"padding"`
}

// Find returns the packed region with the given name.
func (l Layout) Find(name string) (PackedRegion, bool) {
	for _, r := range l.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return PackedRegion{}, false
}

// Coverage returns the fraction of atlas pixels occupied by region pixels.
func (l Layout) Coverage() float64 {
	if l.Width == 0 || l.Height == 0 {
		return 0
	}
	used := 0
	for _, r := range l.Regions {
		used += r.Width * r.Height
	}
	return float64(used) / float64(l.Width*l.Height)
}
