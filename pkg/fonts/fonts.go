// Package fonts provides the label font used by the debug overlay.
//
// The font is Go Mono from golang.org/x/image, compiled into the binary, so
// overlays render the same on every machine without system fonts.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// DefaultLabelSize is the label size in points at 72 DPI, i.e. pixels.
const DefaultLabelSize = 11

var (
	mono     *truetype.Font
	monoErr  error
	monoOnce sync.Once
)

// Mono returns the parsed Go Mono font. The result is cached after the
// first call.
func Mono() (*truetype.Font, error) {
	monoOnce.Do(func() {
		mono, monoErr = truetype.Parse(gomono.TTF)
	})
	return mono, monoErr
}

// Label returns a Go Mono face of the given pixel size. A nil face is
// returned only if the embedded font fails to parse.
func Label(size float64) font.Face {
	f, err := Mono()
	if err != nil {
		return nil
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
