package source

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	apperr "github.com/matzehuels/psdatlas/pkg/errors"
)

// imageExts are the file extensions treated as layer images.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// IsImage reports whether path has a supported image extension.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// IsManifest reports whether path names a layer manifest.
func IsManifest(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".toml" || ext == ".json"
}

// Options configures Load.
type Options struct {
	// IncludeHidden keeps hidden layers and hidden groups.
	IncludeHidden bool

	// Concurrency bounds parallel image decoding. Zero uses GOMAXPROCS.
	Concurrency int

	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Logger
}

func (o Options) limit() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// Load reads a document from path, which may be a manifest file, a
// directory containing layers.toml or layers.json, a directory of images,
// or a single image.
//
// Load fails with EMPTY_INPUT when no drawable layer remains.
func Load(ctx context.Context, path string, opts Options) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "input %s", path)
		}
		return nil, err
	}

	if info.IsDir() {
		for _, name := range manifestNames {
			p := filepath.Join(path, name)
			if _, err := os.Stat(p); err == nil {
				return loadManifest(ctx, p, opts)
			}
		}
		return loadDirectory(ctx, path, opts)
	}

	switch {
	case IsManifest(path):
		return loadManifest(ctx, path, opts)
	case IsImage(path):
		return loadImages(ctx, filepath.Dir(path), []string{filepath.Base(path)}, opts)
	}
	return nil, apperr.New(apperr.ErrCodeInvalidInput, "unsupported input %s (want a manifest, image or directory)", path)
}

// =============================================================================
// Manifest documents
// =============================================================================

func loadManifest(ctx context.Context, path string, opts Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}

	entries := m.flatten(opts.IncludeHidden)
	seen := make(map[string]bool, len(entries))
	files := make([]string, len(entries))
	for i, e := range entries {
		if e.spec.Name == "" {
			return nil, apperr.New(apperr.ErrCodeInvalidManifest, "layer with file %q has no name", e.spec.File)
		}
		if err := apperr.ValidateRegionName(e.spec.Name); err != nil {
			return nil, err
		}
		if seen[e.spec.Name] {
			return nil, apperr.New(apperr.ErrCodeInvalidManifest, "duplicate layer name %q", e.spec.Name)
		}
		seen[e.spec.Name] = true
		if err := apperr.ValidatePath(e.spec.File); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidPath, err, "layer %q", e.spec.Name)
		}
		files[i] = e.spec.File
	}

	dir := filepath.Dir(path)
	decoded, err := decodeAll(ctx, dir, files, opts.limit())
	if err != nil {
		return nil, err
	}

	logger := opts.logger()
	doc := &Document{Name: m.Name, Width: m.Width, Height: m.Height}
	h := sha256.New()
	h.Write(data)
	for i, e := range entries {
		d := decoded[i]
		h.Write(d.sum[:])
		if d.img.Bounds().Empty() {
			logger.Debug("skipping empty layer", "layer", e.spec.Name)
			continue
		}
		doc.Layers = append(doc.Layers, Layer{
			Name:    e.spec.Name,
			Path:    d.path,
			X:       e.spec.X,
			Y:       e.spec.Y,
			Opacity: e.spec.opacity(),
			Hidden:  e.hidden,
			Image:   d.img,
		})
	}
	if doc.Name == "" {
		doc.Name = filepath.Base(dir)
	}
	return finish(doc, h.Sum(nil))
}

// =============================================================================
// Image directories
// =============================================================================

func loadDirectory(ctx context.Context, dir string, opts Options) (*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsImage(e.Name()) && !strings.HasPrefix(e.Name(), ".") {
			files = append(files, e.Name())
		}
	}
	slices.SortFunc(files, func(a, b string) int {
		return strings.Compare(stem(a), stem(b))
	})
	return loadImages(ctx, dir, files, opts)
}

// loadImages turns each file into a layer at (0,0) named by its stem.
func loadImages(ctx context.Context, dir string, files []string, opts Options) (*Document, error) {
	for i := 1; i < len(files); i++ {
		if stem(files[i]) == stem(files[i-1]) {
			return nil, apperr.New(apperr.ErrCodeInvalidManifest, "duplicate layer name %q (%s, %s)", stem(files[i]), files[i-1], files[i])
		}
	}

	decoded, err := decodeAll(ctx, dir, files, opts.limit())
	if err != nil {
		return nil, err
	}

	logger := opts.logger()
	doc := &Document{Name: filepath.Base(dir)}
	h := sha256.New()
	for i, d := range decoded {
		fmt.Fprintf(h, "%s\x00", files[i])
		h.Write(d.sum[:])
		if d.img.Bounds().Empty() {
			logger.Debug("skipping empty image", "file", files[i])
			continue
		}
		name := stem(files[i])
		if err := apperr.ValidateRegionName(name); err != nil {
			return nil, err
		}
		doc.Layers = append(doc.Layers, Layer{
			Name:    name,
			Path:    d.path,
			Opacity: 1,
			Image:   d.img,
		})
	}
	return finish(doc, h.Sum(nil))
}

func stem(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}

// finish fills in a missing canvas size and rejects documents with no
// drawable layers.
func finish(doc *Document, sum []byte) (*Document, error) {
	if len(doc.Layers) == 0 {
		return nil, apperr.New(apperr.ErrCodeEmptyInput, "no drawable layers in %q", doc.Name)
	}
	if doc.Width == 0 || doc.Height == 0 {
		w, h := 0, 0
		for _, l := range doc.Layers {
			w = max(w, l.X+l.Width())
			h = max(h, l.Y+l.Height())
		}
		if doc.Width == 0 {
			doc.Width = w
		}
		if doc.Height == 0 {
			doc.Height = h
		}
	}
	doc.Hash = hex.EncodeToString(sum)
	return doc, nil
}

// =============================================================================
// Decoding
// =============================================================================

type decodedImage struct {
	path string
	img  image.Image
	sum  [sha256.Size]byte
}

// decodeAll reads and decodes files relative to dir, at most limit at a
// time. Results keep the order of files.
func decodeAll(ctx context.Context, dir string, files []string, limit int) ([]decodedImage, error) {
	out := make([]decodedImage, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := decodeFile(filepath.Join(dir, filepath.FromSlash(f)))
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeFile(path string) (decodedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return decodedImage{}, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "layer image %s", path)
		}
		return decodedImage{}, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return decodedImage{}, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	return decodedImage{path: path, img: img, sum: sha256.Sum256(data)}, nil
}
