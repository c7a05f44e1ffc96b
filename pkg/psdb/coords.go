package psdb

import (
	"strings"

	apperr "github.com/matzehuels/psdatlas/pkg/errors"
)

// CoordinateSystem selects the Y-axis convention for serialized positions.
type CoordinateSystem uint8

const (
	// TopLeft keeps document coordinates: origin top-left, Y grows down.
	TopLeft CoordinateSystem = iota
	// BottomLeft flips Y: origin bottom-left, Y grows up.
	BottomLeft
)

// String returns the canonical flag spelling of c.
func (c CoordinateSystem) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case BottomLeft:
		return "bottom-left"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so configs and JSON carry
// the readable name.
func (c CoordinateSystem) MarshalText() ([]byte, error) {
	if c != TopLeft && c != BottomLeft {
		return nil, apperr.New(apperr.ErrCodeInvalidCoordSystem, "unknown coordinate system %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CoordinateSystem) UnmarshalText(text []byte) error {
	parsed, err := ParseCoordinateSystem(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCoordinateSystem accepts "top-left" / "bottom-left" in any case, with
// dashes, underscores or nothing between the words ("TOP_LEFT", "bottomleft").
// An empty string means TopLeft.
func ParseCoordinateSystem(s string) (CoordinateSystem, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch norm {
	case "", "topleft":
		return TopLeft, nil
	case "bottomleft":
		return BottomLeft, nil
	}
	return TopLeft, apperr.New(apperr.ErrCodeInvalidCoordSystem, "invalid coordinate system: %q (must be one of: top-left, bottom-left)", s)
}

// FlipY maps a region's top edge into the coordinate system.
func (c CoordinateSystem) FlipY(y, height, canvasHeight int) int {
	if c == BottomLeft {
		return canvasHeight - (y + height)
	}
	return y
}
