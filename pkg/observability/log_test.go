package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnPackComplete(ctx, 1024, 512, time.Millisecond, nil)
	h.OnCacheHit(ctx, "layout")
	h.OnError(ctx, "POST", "/v1/pack", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"pack complete", "width=1024", "cache hit", "type=layout", "request failed", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksFailureIsWarn(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel}))

	h.OnLoadComplete(context.Background(), "in", 0, time.Millisecond, nil)
	if buf.Len() != 0 {
		t.Errorf("successful load should log at debug level, got %q", buf.String())
	}

	h.OnLoadComplete(context.Background(), "in", 0, time.Millisecond, errors.New("no layers"))
	if !strings.Contains(buf.String(), "no layers") {
		t.Errorf("failed load should log at warn level, got %q", buf.String())
	}
}

func TestLogHooksRegister(t *testing.T) {
	defer Reset()
	h := NewLogHooks(log.New(&bytes.Buffer{}))
	h.Register()
	if Pipeline() != PipelineHooks(h) || Cache() != CacheHooks(h) || HTTP() != HTTPHooks(h) {
		t.Error("Register should install the hooks globally")
	}
}
