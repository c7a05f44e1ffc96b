package psdb

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	apperr "github.com/matzehuels/psdatlas/pkg/errors"
)

// Entry is one decoded region record.
type Entry struct {
	Name string  `json:"name"`
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	W    float32 `json:"w"`
	H    float32 `json:"h"`
	U1   float32 `json:"u1"`
	V1   float32 `json:"v1"`
	U2   float32 `json:"u2"`
	V2   float32 `json:"v2"`
}

// UV returns the entry's texture coordinates.
func (e Entry) UV() atlas.UV {
	return atlas.UV{U1: e.U1, V1: e.V1, U2: e.U2, V2: e.V2}
}

// File is a decoded PSDB buffer.
type File struct {
	Version uint32  `json:"version"`
	Entries []Entry `json:"entries"`
}

// Decode parses a PSDB buffer. It fails with INVALID_LAYOUT on a wrong
// magic, an unsupported version, truncated entries or trailing bytes.
func Decode(data []byte) (*File, error) {
	if len(data) < HeaderSize {
		return nil, apperr.New(apperr.ErrCodeInvalidLayout, "buffer is %d bytes, shorter than the %d-byte header", len(data), HeaderSize)
	}
	if string(data[:4]) != Magic {
		return nil, apperr.New(apperr.ErrCodeInvalidLayout, "bad magic %q", data[:4])
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != Version {
		return nil, apperr.New(apperr.ErrCodeInvalidLayout, "unsupported version %d", version)
	}
	count := binary.LittleEndian.Uint32(data[8:12])

	// Every entry needs at least its length prefix and fixed fields; reject
	// impossible counts before allocating for them.
	rest := data[HeaderSize:]
	if uint64(count)*(2+EntryFixedSize) > uint64(len(rest)) {
		return nil, apperr.New(apperr.ErrCodeInvalidLayout, "region count %d does not fit in %d bytes", count, len(rest))
	}

	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		e, n, err := decodeEntry(rest)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidLayout, err, "entry %d", i)
		}
		entries = append(entries, e)
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return nil, apperr.New(apperr.ErrCodeInvalidLayout, "%d trailing bytes after %d entries", len(rest), count)
	}

	return &File{Version: version, Entries: entries}, nil
}

// ReadFile reads and decodes the PSDB file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, err
	}
	return Decode(data)
}

func decodeEntry(b []byte) (Entry, int, error) {
	if len(b) < 2 {
		return Entry{}, 0, apperr.New(apperr.ErrCodeInvalidLayout, "truncated name length")
	}
	n := int(binary.LittleEndian.Uint16(b))
	end := 2 + n + EntryFixedSize
	if len(b) < end {
		return Entry{}, 0, apperr.New(apperr.ErrCodeInvalidLayout, "truncated entry: need %d bytes, have %d", end, len(b))
	}

	var f [8]float32
	fields := b[2+n : end]
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(fields[i*4:]))
	}
	return Entry{
		Name: string(b[2 : 2+n]),
		X:    f[0], Y: f[1], W: f[2], H: f[3],
		U1: f[4], V1: f[5], U2: f[6], V2: f[7],
	}, end, nil
}
