package atlas

import (
	"math"
	"math/bits"
	"slices"

	apperr "github.com/matzehuels/psdatlas/pkg/errors"
)

const (
	// DefaultPadding is the gap in pixels kept around every packed region.
	DefaultPadding = 2

	// MinSize is the smallest atlas edge Pack produces.
	MinSize = 512
)

// placement is a region positioned in atlas space, before UVs are known.
type placement struct {
	region LayerRegion
	x, y   int
}

// Pack lays out regions on shelves and returns the resulting atlas layout.
//
// An empty input is not an error: it yields a MinSize x MinSize layout with
// no regions. Regions with non-positive dimensions, names longer than 65535
// encoded bytes, or a negative padding are rejected with an INVALID_REGION
// error before any placement happens. regions is never modified.
func Pack(regions []LayerRegion, padding int) (Layout, error) {
	if padding < 0 {
		return Layout{}, apperr.New(apperr.ErrCodeInvalidRegion, "padding must be non-negative, got %d", padding)
	}
	if err := Validate(regions); err != nil {
		return Layout{}, err
	}
	if len(regions) == 0 {
		return Layout{Regions: []PackedRegion{}, Width: MinSize, Height: MinSize, Padding: padding}, nil
	}

	sorted := sortByHeight(regions)
	width := EstimateWidth(sorted, padding)
	placed, usedHeight := place(sorted, width, padding)
	height := max(NextPowerOfTwo(usedHeight), MinSize)

	return Layout{
		Regions: withUVs(placed, width, height),
		Width:   width,
		Height:  height,
		Padding: padding,
	}, nil
}

// Validate checks the packer's preconditions for every region.
func Validate(regions []LayerRegion) error {
	for _, r := range regions {
		if err := apperr.ValidateRegionName(r.Name); err != nil {
			return err
		}
		if err := apperr.ValidateDimensions(r.Name, r.Width, r.Height); err != nil {
			return err
		}
	}
	return nil
}

// EstimateWidth returns the target atlas width for regions: the square root
// of their total padded area, at least MinSize, rounded up to a power of two.
func EstimateWidth(regions []LayerRegion, padding int) int {
	var area int64
	for _, r := range regions {
		area += int64(r.Width+2*padding) * int64(r.Height+2*padding)
	}
	side := int(math.Ceil(math.Sqrt(float64(area))))
	return NextPowerOfTwo(max(side, MinSize))
}

// NextPowerOfTwo returns the smallest power of two >= n. It returns 1 for n <= 1.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// sortByHeight returns a copy of regions ordered tallest first.
// Equal heights keep their input order.
func sortByHeight(regions []LayerRegion) []LayerRegion {
	sorted := slices.Clone(regions)
	slices.SortStableFunc(sorted, func(a, b LayerRegion) int {
		return b.Height - a.Height
	})
	return sorted
}

// place walks the sorted regions along shelves of the given width.
// It returns the placements and the height the shelves occupy, including
// the trailing padding.
func place(sorted []LayerRegion, width, padding int) ([]placement, int) {
	placed := make([]placement, 0, len(sorted))
	x, y := padding, padding
	shelfHeight, usedHeight := 0, 0

	for _, r := range sorted {
		if x+r.Width+padding > width {
			x = padding
			y += shelfHeight + padding
			shelfHeight = 0
		}

		placed = append(placed, placement{region: r, x: x, y: y})

		x += r.Width + padding
		shelfHeight = max(shelfHeight, r.Height)
		usedHeight = max(usedHeight, y+shelfHeight+padding)
	}
	return placed, usedHeight
}

// withUVs converts placements into packed regions normalized against the
// final atlas size.
func withUVs(placed []placement, width, height int) []PackedRegion {
	w, h := float64(width), float64(height)
	out := make([]PackedRegion, len(placed))
	for i, p := range placed {
		r := p.region
		out[i] = PackedRegion{
			Name:      r.Name,
			X:         p.x,
			Y:         p.y,
			Width:     r.Width,
			Height:    r.Height,
			OriginalX: r.OriginalX,
			OriginalY: r.OriginalY,
			Opacity:   r.Opacity,
			UV: UV{
				U1: float32(float64(p.x) / w),
				V1: float32(float64(p.y) / h),
				U2: float32(float64(p.x+r.Width) / w),
				V2: float32(float64(p.y+r.Height) / h),
			},
		}
	}
	return out
}
