package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

func TestLockerExclusive(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	log, _ := logger.New("test")
	ctx := context.Background()
	l, err := NewLocker(ctx, log, Config{Addr: addr, Prefix: "test:lock:"})
	if err != nil {
		t.Fatalf("NewLocker: %v", err)
	}
	defer l.Close()

	name := "export:" + uuid.NewString()
	token, ok, err := l.TryLock(ctx, name, 5*time.Second)
	if err != nil || !ok {
		t.Fatalf("first TryLock: ok=%v err=%v", ok, err)
	}
	if _, ok, err := l.TryLock(ctx, name, 5*time.Second); err != nil || ok {
		t.Fatalf("second TryLock should be busy: ok=%v err=%v", ok, err)
	}
	if err := l.Unlock(ctx, name, "not-the-token"); err != nil {
		t.Fatalf("foreign Unlock: %v", err)
	}
	if _, ok, _ := l.TryLock(ctx, name, 5*time.Second); ok {
		t.Fatalf("foreign token must not release the lock")
	}
	if err := l.Unlock(ctx, name, token); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, ok, err := l.TryLock(ctx, name, 5*time.Second); err != nil || !ok {
		t.Fatalf("TryLock after release: ok=%v err=%v", ok, err)
	}
}

func TestNewLockerRequiresAddr(t *testing.T) {
	log, _ := logger.New("test")
	if _, err := NewLocker(context.Background(), log, Config{}); err == nil {
		t.Fatalf("expected missing addr error")
	}
}
