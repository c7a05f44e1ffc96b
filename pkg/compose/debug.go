package compose

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	"github.com/matzehuels/psdatlas/pkg/fonts"
)

// Overlay colors.
var (
	outlineColor = color.NRGBA{R: 0xff, G: 0x2d, B: 0x75, A: 0xff}
	fillColor    = color.NRGBA{R: 0xff, G: 0x2d, B: 0x75, A: 0x30}
	labelColor   = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	shadowColor  = color.NRGBA{A: 0xc0}
)

// DebugOverlay draws the atlas with each region tinted, outlined and
// labelled by name. The atlas image is not modified.
func DebugOverlay(l atlas.Layout, atlasImg image.Image) image.Image {
	dc := gg.NewContextForImage(atlasImg)
	dc.SetLineWidth(1)

	lineHeight := 13.0 // gg's built-in face
	if face := fonts.Label(fonts.DefaultLabelSize); face != nil {
		dc.SetFontFace(face)
		lineHeight = float64(face.Metrics().Height.Ceil())
	}

	for _, r := range l.Regions {
		x, y := float64(r.X), float64(r.Y)
		w, h := float64(r.Width), float64(r.Height)

		dc.DrawRectangle(x, y, w, h)
		dc.SetColor(fillColor)
		dc.FillPreserve()
		dc.SetColor(outlineColor)
		dc.Stroke()

		// Labels only where they fit.
		if h < lineHeight+1 || r.Width < 16 {
			continue
		}
		label := truncateLabel(dc, r.Name, w-4)
		dc.SetColor(shadowColor)
		dc.DrawString(label, x+3, y+lineHeight)
		dc.SetColor(labelColor)
		dc.DrawString(label, x+2, y+lineHeight-1)
	}
	return dc.Image()
}

// truncateLabel shortens s with a trailing "~" until it measures at most maxWidth.
func truncateLabel(dc *gg.Context, s string, maxWidth float64) string {
	if w, _ := dc.MeasureString(s); w <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "~"
		if w, _ := dc.MeasureString(candidate); w <= maxWidth {
			return candidate
		}
	}
	return ""
}
