package psdb

import (
	"encoding/json"
	"testing"

	apperr "github.com/matzehuels/psdatlas/pkg/errors"
)

func TestParseCoordinateSystem(t *testing.T) {
	tests := []struct {
		in      string
		want    CoordinateSystem
		wantErr bool
	}{
		{"", TopLeft, false},
		{"top-left", TopLeft, false},
		{"TOP_LEFT", TopLeft, false},
		{"TopLeft", TopLeft, false},
		{"bottom-left", BottomLeft, false},
		{"BOTTOM_LEFT", BottomLeft, false},
		{" bottom left ", BottomLeft, false},
		{"center", TopLeft, true},
		{"top-right", TopLeft, true},
	}

	for _, tt := range tests {
		got, err := ParseCoordinateSystem(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCoordinateSystem(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !apperr.Is(err, apperr.ErrCodeInvalidCoordSystem) {
			t.Errorf("ParseCoordinateSystem(%q) wrong error code: %v", tt.in, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseCoordinateSystem(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFlipY(t *testing.T) {
	if got := TopLeft.FlipY(20, 40, 300); got != 20 {
		t.Errorf("TopLeft.FlipY = %d, want 20", got)
	}
	if got := BottomLeft.FlipY(20, 40, 300); got != 240 {
		t.Errorf("BottomLeft.FlipY = %d, want 240", got)
	}
	// A region flush with the bottom edge lands on y=0.
	if got := BottomLeft.FlipY(260, 40, 300); got != 0 {
		t.Errorf("BottomLeft.FlipY bottom edge = %d, want 0", got)
	}
}

func TestCoordinateSystemJSON(t *testing.T) {
	type wrapper struct {
		CS CoordinateSystem `json:"cs"`
	}
	data, err := json.Marshal(wrapper{CS: BottomLeft})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"cs":"bottom-left"}` {
		t.Errorf("Marshal = %s", data)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"cs":"TOP_LEFT"}`), &w); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if w.CS != TopLeft {
		t.Errorf("Unmarshal = %v, want TopLeft", w.CS)
	}

	if err := json.Unmarshal([]byte(`{"cs":"sideways"}`), &w); err == nil {
		t.Error("expected error for unknown coordinate system")
	}
}
