package fonts

import (
	"testing"

	"golang.org/x/image/font"
)

func TestMono(t *testing.T) {
	f, err := Mono()
	if err != nil {
		t.Fatalf("Mono() error: %v", err)
	}
	again, _ := Mono()
	if f != again {
		t.Error("Mono() should cache the parsed font")
	}
}

func TestLabelMetrics(t *testing.T) {
	face := Label(DefaultLabelSize)
	if face == nil {
		t.Fatal("Label() returned nil")
	}
	defer face.Close()

	h := face.Metrics().Height.Ceil()
	if h < DefaultLabelSize || h > 2*DefaultLabelSize {
		t.Errorf("line height = %d for size %d", h, DefaultLabelSize)
	}

	// Monospace: every glyph advances the same.
	a := font.MeasureString(face, "iiii")
	b := font.MeasureString(face, "WWWW")
	if a != b {
		t.Errorf("advance differs: %v vs %v", a, b)
	}
}
