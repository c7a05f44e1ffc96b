package psdb

import (
	"encoding/binary"
	"math"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	apperr "github.com/matzehuels/psdatlas/pkg/errors"
)

// Format constants.
const (
	// Magic identifies a PSDB buffer.
	Magic = "PSDB"

	// Version is the format version this package writes.
	Version uint32 = 1

	// HeaderSize is magic + version + region count.
	HeaderSize = 12

	// EntryFixedSize is the eight float32 fields of a region entry.
	EntryFixedSize = 8 * 4

	// MaxNameLength is the largest encoded name a uint16 length prefix allows.
	MaxNameLength = math.MaxUint16
)

// Size returns the exact number of bytes Serialize produces for regions.
// It fails with INVALID_REGION if any name encodes to more than
// MaxNameLength bytes.
func Size(regions []atlas.PackedRegion) (int, error) {
	if uint64(len(regions)) > math.MaxUint32 {
		return 0, apperr.New(apperr.ErrCodeInvalidRegion, "too many regions: %d", len(regions))
	}
	size := HeaderSize
	for _, r := range regions {
		// Go strings are UTF-8, so len is the encoded byte count.
		n := len(r.Name)
		if n > MaxNameLength {
			return 0, apperr.New(apperr.ErrCodeInvalidRegion, "region name is %d bytes (max %d)", n, MaxNameLength)
		}
		size += 2 + n + EntryFixedSize
	}
	return size, nil
}

// Serialize encodes regions into a PSDB buffer.
//
// Regions are written in the order given. Positions are the regions'
// original document coordinates, with Y remapped for cs against
// canvasHeight. canvasWidth is accepted for symmetry with the document
// size; no field depends on it today.
func Serialize(regions []atlas.PackedRegion, canvasWidth, canvasHeight int, cs CoordinateSystem) ([]byte, error) {
	if canvasWidth < 0 || canvasHeight < 0 {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "canvas size must be non-negative, got %dx%d", canvasWidth, canvasHeight)
	}
	if cs != TopLeft && cs != BottomLeft {
		return nil, apperr.New(apperr.ErrCodeInvalidCoordSystem, "unknown coordinate system %d", uint8(cs))
	}
	size, err := Size(regions)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, size)
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint32(buf, Version)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(regions)))
	for _, r := range regions {
		buf = appendEntry(buf, r, canvasHeight, cs)
	}

	if len(buf) != size {
		return nil, apperr.New(apperr.ErrCodeInternal, "wrote %d bytes, expected %d", len(buf), size)
	}
	return buf, nil
}

func appendEntry(buf []byte, r atlas.PackedRegion, canvasHeight int, cs CoordinateSystem) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(r.Name)))
	buf = append(buf, r.Name...)
	for _, f := range [8]float32{
		float32(r.OriginalX),
		float32(cs.FlipY(r.OriginalY, r.Height, canvasHeight)),
		float32(r.Width),
		float32(r.Height),
		r.UV.U1,
		r.UV.V1,
		r.UV.U2,
		r.UV.V2,
	} {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}
