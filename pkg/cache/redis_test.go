package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), RedisOptions{}); err == nil {
		t.Error("expected error for empty address")
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// Port 1 is reserved and refuses connections on loopback.
	_, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1", DialTimeout: 500 * time.Millisecond})
	if err == nil {
		t.Fatal("expected connection error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error should wrap ErrNetwork: %v", err)
	}
}

func TestRetryableClassification(t *testing.T) {
	if retryable(nil) != nil {
		t.Error("nil should stay nil")
	}
	if IsRetryable(retryable(context.Canceled)) {
		t.Error("context cancellation should not be retried")
	}
	err := retryable(errors.New("connection reset"))
	if !IsRetryable(err) {
		t.Error("backend failures should be retryable")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("backend failures should wrap ErrNetwork")
	}
}
