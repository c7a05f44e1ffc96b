package compose

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	apperr "github.com/matzehuels/psdatlas/pkg/errors"
)

func solid(w, h int, c color.NRGBA) image.Image {
	return imaging.New(w, h, c)
}

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 128}
)

func packTwo(t *testing.T) (atlas.Layout, map[string]image.Image) {
	t.Helper()
	l, err := atlas.Pack([]atlas.LayerRegion{
		{Name: "r", Width: 10, Height: 20},
		{Name: "b", Width: 30, Height: 5},
	}, atlas.DefaultPadding)
	if err != nil {
		t.Fatal(err)
	}
	return l, map[string]image.Image{
		"r": solid(10, 20, red),
		"b": solid(30, 5, blue),
	}
}

func TestCompose(t *testing.T) {
	l, images := packTwo(t)
	img, err := Compose(l, images)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	if got := img.Bounds(); got.Dx() != l.Width || got.Dy() != l.Height {
		t.Fatalf("atlas bounds = %v, want %dx%d", got, l.Width, l.Height)
	}

	for _, r := range l.Regions {
		want := red
		if r.Name == "b" {
			want = blue
		}
		// Corners of the region carry the layer's pixels untouched.
		for _, p := range []image.Point{{r.X, r.Y}, {r.X + r.Width - 1, r.Y + r.Height - 1}} {
			if got := img.NRGBAAt(p.X, p.Y); got != want {
				t.Errorf("%s at %v = %v, want %v", r.Name, p, got, want)
			}
		}
		// The padding just outside stays transparent.
		if got := img.NRGBAAt(r.X-1, r.Y); got.A != 0 {
			t.Errorf("%s: padding pixel is %v, want transparent", r.Name, got)
		}
	}
}

func TestComposeOffsetBounds(t *testing.T) {
	l, err := atlas.Pack([]atlas.LayerRegion{{Name: "sub", Width: 4, Height: 4}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	// A sub-image whose bounds do not start at the origin.
	big := imaging.New(10, 10, red)
	sub := big.SubImage(image.Rect(3, 3, 7, 7))

	img, err := Compose(l, map[string]image.Image{"sub": sub})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := img.NRGBAAt(0, 0); got != red {
		t.Errorf("pixel (0,0) = %v, want %v", got, red)
	}
}

func TestComposeErrors(t *testing.T) {
	l, images := packTwo(t)

	delete(images, "b")
	if _, err := Compose(l, images); !apperr.Is(err, apperr.ErrCodeLayerNotFound) {
		t.Errorf("missing image: got %v, want LAYER_NOT_FOUND", err)
	}

	images["b"] = solid(31, 5, blue)
	if _, err := Compose(l, images); !apperr.Is(err, apperr.ErrCodeInvalidRegion) {
		t.Errorf("size mismatch: got %v, want INVALID_REGION", err)
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, solid(8, 4, red)); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("decoded size = %v", b)
	}
}

func TestDebugOverlay(t *testing.T) {
	l, images := packTwo(t)
	img, err := Compose(l, images)
	if err != nil {
		t.Fatal(err)
	}
	before := img.NRGBAAt(l.Regions[0].X, l.Regions[0].Y)

	overlay := DebugOverlay(l, img)
	if b := overlay.Bounds(); b.Dx() != l.Width || b.Dy() != l.Height {
		t.Errorf("overlay bounds = %v", b)
	}
	if img.NRGBAAt(l.Regions[0].X, l.Regions[0].Y) != before {
		t.Error("DebugOverlay must not modify the atlas image")
	}

	// An empty area of the atlas stays transparent in the overlay.
	_, _, _, a := overlay.At(l.Width-1, l.Height-1).RGBA()
	if a != 0 {
		t.Errorf("untouched corner alpha = %d, want 0", a)
	}
}
