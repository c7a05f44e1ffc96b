package source

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	apperr "github.com/matzehuels/psdatlas/pkg/errors"
)

// Manifest file names looked up inside a directory, in order.
var manifestNames = []string{"layers.toml", "layers.json"}

// Manifest describes a layered document.
type Manifest struct {
	Name   string      `toml:"name" json:"name"`
	Width  int         `toml:"width" json:"width"`
	Height int         `toml:"height" json:"height"`
	Layers []LayerSpec `toml:"layer" json:"layers"`
}

// LayerSpec is one manifest layer. A spec without File is a group.
type LayerSpec struct {
	Name     string      `toml:"name" json:"name"`
	File     string      `toml:"file" json:"file,omitempty"`
	X        int         `toml:"x" json:"x"`
	Y        int         `toml:"y" json:"y"`
	Opacity  *float64    `toml:"opacity" json:"opacity,omitempty"`
	Hidden   bool        `toml:"hidden" json:"hidden,omitempty"`
	Children []LayerSpec `toml:"children" json:"children,omitempty"`
}

// ParseManifest decodes manifest bytes. The format is chosen by the file
// extension of name: .toml or .json.
func ParseManifest(name string, data []byte) (*Manifest, error) {
	var m Manifest
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidManifest, err, "parse %s", name)
		}
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidManifest, err, "parse %s", name)
		}
	default:
		return nil, apperr.New(apperr.ErrCodeInvalidManifest, "unsupported manifest %q (want .toml or .json)", name)
	}
	if m.Width < 0 || m.Height < 0 {
		return nil, apperr.New(apperr.ErrCodeInvalidManifest, "canvas size must be non-negative, got %dx%d", m.Width, m.Height)
	}
	return &m, nil
}

// entry is a flattened, drawable manifest layer.
type entry struct {
	spec   LayerSpec
	hidden bool // the layer or one of its groups is hidden
}

// flatten walks the layer tree depth-first, parents before children, and
// returns the drawable layers. Hidden subtrees are dropped unless
// includeHidden is set.
func (m *Manifest) flatten(includeHidden bool) []entry {
	var out []entry
	var walk func(specs []LayerSpec, hiddenParent bool)
	walk = func(specs []LayerSpec, hiddenParent bool) {
		for _, s := range specs {
			hidden := hiddenParent || s.Hidden
			if hidden && !includeHidden {
				continue
			}
			if s.File != "" {
				out = append(out, entry{spec: s, hidden: hidden})
			}
			walk(s.Children, hidden)
		}
	}
	walk(m.Layers, false)
	return out
}

// opacity returns the spec's opacity, defaulting to fully opaque and
// clamping to [0, 1].
func (s LayerSpec) opacity() float64 {
	if s.Opacity == nil {
		return 1
	}
	return min(max(*s.Opacity, 0), 1)
}
