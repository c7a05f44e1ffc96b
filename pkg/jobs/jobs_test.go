package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperr "github.com/matzehuels/psdatlas/pkg/errors"
)

func TestNew(t *testing.T) {
	a, b := New("a.toml"), New("a.toml")
	if a.ID == b.ID {
		t.Error("New should assign unique IDs")
	}
	if err := ValidateID(a.ID); err != nil {
		t.Errorf("New ID should validate: %v", err)
	}
	if a.Input != "a.toml" || a.CreatedAt.IsZero() {
		t.Errorf("unexpected job: %+v", a)
	}
}

func TestValidateID(t *testing.T) {
	for _, id := range []string{"", "../etc/passwd", "not-a-uuid"} {
		if err := ValidateID(id); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
			t.Errorf("ValidateID(%q) = %v, want INVALID_INPUT", id, err)
		}
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()

	job := New("hero/layers.toml")
	job.Regions = 12
	job.AtlasWidth, job.AtlasHeight = 1024, 512
	job.Formats = []string{"png", "bin"}
	job.Duration = 150 * time.Millisecond

	if err := store.Record(ctx, job); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Regions != 12 || got.AtlasWidth != 1024 || got.Duration != job.Duration || len(got.Formats) != 2 {
		t.Errorf("Get = %+v", got)
	}
	if !got.CreatedAt.Equal(job.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, job.CreatedAt)
	}

	if err := store.Delete(ctx, job.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, job.ID); !apperr.Is(err, apperr.ErrCodeNotFound) {
		t.Errorf("Get after Delete = %v, want NOT_FOUND", err)
	}
	if err := store.Delete(ctx, job.ID); err != nil {
		t.Errorf("Delete of missing job: %v", err)
	}
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 5 {
		job := New("in")
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.Record(ctx, job); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, job.ID)
	}
	// Stray files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := store.List(ctx, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List(3) returned %d jobs", len(got))
	}
	for i, want := range []string{ids[4], ids[3], ids[2]} {
		if got[i].ID != want {
			t.Errorf("List[%d] = %s, want %s (newest first)", i, got[i].ID, want)
		}
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("List(0) returned %d jobs, want all 5", len(all))
	}
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "../../secrets"); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("Get with traversal id = %v", err)
	}
	if err := store.Record(ctx, &Job{ID: "x"}); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("Record with bad id = %v", err)
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/data", "psdatlas", "jobs") {
		t.Errorf("DefaultDir() = %q", dir)
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NullStore{}
	job := New("x")
	if err := s.Record(ctx, job); err != nil {
		t.Errorf("Record: %v", err)
	}
	if _, err := s.Get(ctx, job.ID); !apperr.IsNotFound(err) {
		t.Errorf("Get = %v, want not found", err)
	}
	if list, err := s.List(ctx, 10); err != nil || len(list) != 0 {
		t.Errorf("List = %v, %v", list, err)
	}
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	if _, err := NewMongoStore(context.Background(), MongoConfig{}); err == nil {
		t.Error("expected error for empty uri")
	}
}

func TestNewMongoStoreBadURI(t *testing.T) {
	_, err := NewMongoStore(context.Background(), MongoConfig{URI: "http://not-mongo"})
	if err == nil {
		t.Error("expected error for non-mongodb scheme")
	}
}
