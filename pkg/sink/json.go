package sink

import (
	"encoding/json"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	"github.com/matzehuels/psdatlas/pkg/buildinfo"
	"github.com/matzehuels/psdatlas/pkg/psdb"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	image         string
	canvasW       int
	canvasH       int
	cs            psdb.CoordinateSystem
	compact       bool
	omitGenerator bool
}

// WithJSONImage records the atlas image file name in meta.image.
func WithJSONImage(name string) JSONOption { return func(r *jsonRenderer) { r.image = name } }

// WithJSONCanvas records the source document size. Bottom-left source
// positions are flipped against its height.
func WithJSONCanvas(w, h int) JSONOption {
	return func(r *jsonRenderer) { r.canvasW, r.canvasH = w, h }
}

// WithJSONCoordinateSystem selects the Y convention for source positions.
func WithJSONCoordinateSystem(cs psdb.CoordinateSystem) JSONOption {
	return func(r *jsonRenderer) { r.cs = cs }
}

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONNoGenerator leaves the build version out of meta, for output
// that must be byte-identical across releases.
func WithJSONNoGenerator() JSONOption { return func(r *jsonRenderer) { r.omitGenerator = true } }

type jsonOutput struct {
	Meta    jsonMeta     `json:"meta"`
	Regions []jsonRegion `json:"regions"`
}

type jsonMeta struct {
	Image            string   `json:"image,omitempty"`
	Size             jsonSize `json:"size"`
	Canvas           jsonSize `json:"canvas"`
	Padding          int      `json:"padding"`
	CoordinateSystem string   `json:"coordinate_system"`
	Format           string   `json:"format"`
	Version          uint32   `json:"version"`
	Generator        string   `json:"generator,omitempty"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type jsonUV struct {
	U1 float32 `json:"u1"`
	V1 float32 `json:"v1"`
	U2 float32 `json:"u2"`
	V2 float32 `json:"v2"`
}

type jsonRegion struct {
	Name    string    `json:"name"`
	Frame   jsonRect  `json:"frame"`
	Source  jsonPoint `json:"source"`
	Size    jsonSize  `json:"size"`
	UV      jsonUV    `json:"uv"`
	Opacity float64   `json:"opacity"`
}

// RenderJSON exports the layout as a JSON descriptor. Regions appear in
// layout order, the same order as the binary entries.
//
// RenderJSON does not modify l and is safe to call concurrently.
func RenderJSON(l atlas.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Meta: jsonMeta{
			Image:            r.image,
			Size:             jsonSize{W: l.Width, H: l.Height},
			Canvas:           jsonSize{W: r.canvasW, H: r.canvasH},
			Padding:          l.Padding,
			CoordinateSystem: r.cs.String(),
			Format:           psdb.Magic,
			Version:          psdb.Version,
		},
		Regions: buildJSONRegions(l, r),
	}
	if !r.omitGenerator {
		out.Meta.Generator = "psdatlas " + buildinfo.Version
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}

func buildJSONRegions(l atlas.Layout, r jsonRenderer) []jsonRegion {
	regions := make([]jsonRegion, 0, len(l.Regions))
	for _, p := range l.Regions {
		regions = append(regions, jsonRegion{
			Name:  p.Name,
			Frame: jsonRect{X: p.X, Y: p.Y, W: p.Width, H: p.Height},
			Source: jsonPoint{
				X: p.OriginalX,
				Y: r.cs.FlipY(p.OriginalY, p.Height, r.canvasH),
			},
			Size:    jsonSize{W: p.Width, H: p.Height},
			UV:      jsonUV{U1: p.UV.U1, V1: p.UV.V1, U2: p.UV.U2, V2: p.UV.V2},
			Opacity: p.Opacity,
		})
	}
	return regions
}
