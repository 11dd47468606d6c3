package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memLockClient struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemLockClient() *memLockClient {
	return &memLockClient{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memLockClient) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memLockClient) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memLockClient) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func TestRedisLockExclusive(t *testing.T) {
	ctx := context.Background()
	client := newMemLockClient()
	first, err := NewRedisLock(client, "gd:lock:cron:test", 0)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(client, "gd:lock:cron:test", 0)

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if client.ttls["gd:lock:cron:test"] != defaultLockTTL {
		t.Fatalf("expected default ttl, got %s", client.ttls["gd:lock:cron:test"])
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("second instance must not acquire a held lock")
	}

	// a non-owner release leaves the key alone
	if err := second.Release(ctx); err != nil {
		t.Fatalf("second release: %v", err)
	}
	if _, ok := client.values["gd:lock:cron:test"]; !ok {
		t.Fatal("non-owner release removed the lock")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("expected lock to be free after owner release")
	}
}

func TestRedisLockReleaseAfterExpiry(t *testing.T) {
	ctx := context.Background()
	client := newMemLockClient()
	lock, _ := NewRedisLock(client, "k", time.Minute)
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}
	delete(client.values, "k")
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release of expired lock: %v", err)
	}
}

func TestNewRedisLockValidation(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", 0); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedisLock(newMemLockClient(), "", 0); err == nil {
		t.Fatal("expected error for empty key")
	}
}
