package cache

// Keyer builds cache keys for each pipeline stage.
type Keyer interface {
	// LayoutKey identifies a packed layout of the source with the given hash.
	LayoutKey(sourceHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies one rendered output of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change a packed layout.
type LayoutKeyOpts struct {
	Padding       int  `json:"padding"`
	IncludeHidden bool `json:"include_hidden"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format           string `json:"format"`
	CoordinateSystem string `json:"coordinate_system,omitempty"`
	CanvasWidth      int    `json:"canvas_width,omitempty"`
	CanvasHeight     int    `json:"canvas_height,omitempty"`
	ImageName        string `json:"image_name,omitempty"`
}

// DefaultKeyer hashes the stage inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(sourceHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", sourceHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
