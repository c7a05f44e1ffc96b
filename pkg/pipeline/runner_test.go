package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/psdatlas/pkg/cache"
	apperr "github.com/matzehuels/psdatlas/pkg/errors"
	"github.com/matzehuels/psdatlas/pkg/jobs"
	"github.com/matzehuels/psdatlas/pkg/psdb"
)

// memCache is an in-memory Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

// fixture writes a three-layer manifest document and returns its directory.
func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, l := range []struct {
		name string
		w, h int
	}{
		{"head.png", 40, 40},
		{"torso.png", 60, 80},
		{"legs.png", 50, 100},
	} {
		img := imaging.New(l.w, l.h, color.NRGBA{G: 255, A: 255})
		if err := imaging.Save(img, filepath.Join(dir, l.name)); err != nil {
			t.Fatal(err)
		}
	}
	manifest := `
name = "hero"
width = 200
height = 300

[[layer]]
name = "head"
file = "head.png"
x = 80
y = 10

[[layer]]
name = "torso"
file = "torso.png"
x = 70
y = 50

[[layer]]
name = "legs"
file = "legs.png"
x = 75
y = 130
`
	if err := os.WriteFile(filepath.Join(dir, "layers.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(&bytes.Buffer{}, log.Options{}))
}

func TestExecute(t *testing.T) {
	dir := fixture(t)
	r := quietRunner(nil)

	res, err := r.Execute(context.Background(), Options{
		Input:            dir,
		CoordinateSystem: psdb.BottomLeft,
		Formats:          []string{FormatPNG, FormatBin, FormatJSON, FormatDebug},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.LayerCount != 3 || len(res.Layout.Regions) != 3 {
		t.Fatalf("expected 3 layers, got %d / %d regions", res.Stats.LayerCount, len(res.Layout.Regions))
	}
	if res.Layout.Width != 512 || res.Layout.Height != 512 {
		t.Errorf("atlas = %dx%d, want 512x512", res.Layout.Width, res.Layout.Height)
	}
	// Tallest first.
	if res.Layout.Regions[0].Name != "legs" {
		t.Errorf("first region = %q, want legs", res.Layout.Regions[0].Name)
	}
	for _, f := range []string{FormatPNG, FormatBin, FormatJSON, FormatDebug} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}

	img, err := png.Decode(bytes.NewReader(res.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("decode atlas png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 512 || b.Dy() != 512 {
		t.Errorf("atlas png = %v", b)
	}
	legs := res.Layout.Regions[0]
	if _, g, _, a := img.At(legs.X, legs.Y).RGBA(); g != 0xffff || a != 0xffff {
		t.Error("atlas should carry layer pixels at the packed position")
	}

	f, err := psdb.Decode(res.Artifacts[FormatBin])
	if err != nil {
		t.Fatalf("decode bin: %v", err)
	}
	if len(f.Entries) != 3 || f.Entries[0].Name != "legs" {
		t.Fatalf("bin entries = %+v", f.Entries)
	}
	// legs: y=130, h=100 on a 300-high canvas.
	if f.Entries[0].Y != 70 {
		t.Errorf("legs Y = %v, want 70 (bottom-left)", f.Entries[0].Y)
	}

	var desc struct {
		Meta struct {
			Image string `json:"image"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &desc); err != nil {
		t.Fatalf("json: %v", err)
	}
	if desc.Meta.Image != DefaultImageName {
		t.Errorf("json meta.image = %q", desc.Meta.Image)
	}
}

func TestExecuteCaching(t *testing.T) {
	dir := fixture(t)
	c := newMemCache()
	r := quietRunner(c)
	ctx := context.Background()

	first, err := r.Execute(ctx, Options{Input: dir})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.PackHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, Options{Input: dir})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.PackHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatBin], second.Artifacts[FormatBin]) {
		t.Error("cached bin differs from rendered bin")
	}

	// A different coordinate system reuses the layout but re-renders.
	flipped, err := r.Execute(ctx, Options{Input: dir, CoordinateSystem: psdb.BottomLeft})
	if err != nil {
		t.Fatal(err)
	}
	if !flipped.CacheInfo.PackHit || flipped.CacheInfo.RenderHit {
		t.Errorf("coordinate change: %+v, want pack hit, render miss", flipped.CacheInfo)
	}

	refreshed, err := r.Execute(ctx, Options{Input: dir, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.PackHit || refreshed.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache: %+v", refreshed.CacheInfo)
	}
}

func TestExecuteCanvasOverride(t *testing.T) {
	dir := fixture(t)
	res, err := quietRunner(nil).Execute(context.Background(), Options{
		Input:            dir,
		CoordinateSystem: psdb.BottomLeft,
		CanvasHeight:     1000,
		Formats:          []string{FormatBin},
	})
	if err != nil {
		t.Fatal(err)
	}
	f, err := psdb.Decode(res.Artifacts[FormatBin])
	if err != nil {
		t.Fatal(err)
	}
	if f.Entries[0].Y != 1000-(130+100) {
		t.Errorf("legs Y = %v, want %d", f.Entries[0].Y, 1000-(130+100))
	}
}

func TestExecuteRecordsJob(t *testing.T) {
	dir := fixture(t)
	store, err := jobs.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(nil)
	r.Jobs = store
	ctx := context.Background()

	res, err := r.Execute(ctx, Options{Input: dir, Formats: []string{FormatBin}})
	if err != nil {
		t.Fatal(err)
	}
	if res.JobID == "" {
		t.Fatal("JobID should be set when a store is configured")
	}
	job, err := store.Get(ctx, res.JobID)
	if err != nil {
		t.Fatalf("Get job: %v", err)
	}
	if job.Regions != 3 || job.AtlasWidth != 512 || job.Input != dir || job.SourceHash != res.Document.Hash {
		t.Errorf("job = %+v", job)
	}
}

func TestExecuteNullJobsHasNoID(t *testing.T) {
	res, err := quietRunner(nil).Execute(context.Background(), Options{Input: fixture(t), Formats: []string{FormatBin}})
	if err != nil {
		t.Fatal(err)
	}
	if res.JobID != "" {
		t.Errorf("JobID = %q, want empty without a job store", res.JobID)
	}
}

func TestExecuteEmptyInput(t *testing.T) {
	_, err := quietRunner(nil).Execute(context.Background(), Options{Input: t.TempDir()})
	if !apperr.Is(err, apperr.ErrCodeEmptyInput) {
		t.Errorf("error = %v, want EMPTY_INPUT", err)
	}
}

func TestExecuteUsesRunnerLogger(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(nil, nil, log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	if _, err := r.Execute(context.Background(), Options{Input: fixture(t), Formats: []string{FormatBin}}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("packed atlas")) {
		t.Errorf("runner logger should receive stage logs, got %q", buf.String())
	}
}
