package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKey_Deterministic(t *testing.T) {
	k1 := Key("fetch_positions", "20260830", "dce")
	k2 := Key("fetch_positions", "20260830", "dce")
	if k1 != k2 {
		t.Errorf("identical calls produced different keys: %s vs %s", k1, k2)
	}

	k3 := Key("fetch_positions", "dce", "20260830")
	if k1 == k3 {
		t.Error("argument order should change the key")
	}

	k4 := Key("fetch_prices", "20260830", "dce")
	if k1 == k4 {
		t.Error("operation name should change the key")
	}
}

func TestKeyWith_KwargOrderIndependent(t *testing.T) {
	// Maps iterate in random order; the key must not depend on it.
	for i := 0; i < 20; i++ {
		k := KeyWith("fetch_daily", []string{"20260830"}, map[string]string{
			"market": "DCE",
			"start":  "20260830",
			"end":    "20260830",
		})
		want := KeyWith("fetch_daily", []string{"20260830"}, map[string]string{
			"end":    "20260830",
			"start":  "20260830",
			"market": "DCE",
		})
		if k != want {
			t.Fatalf("kwarg ordering changed the key: %s vs %s", k, want)
		}
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	ctx := context.Background()
	key := Key("op", "arg")

	if err := store.Put(ctx, key, []byte("payload")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, found, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("entry should be present immediately after Put")
	}
	if string(got) != "payload" {
		t.Errorf("Get = %q, want %q", got, "payload")
	}
}

func TestFileStore_MissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	_, found, err := store.Get(context.Background(), Key("op", "missing"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("missing key should be absent")
	}
}

func TestFileStore_Expiry(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	ctx := context.Background()
	key := Key("op", "expiring")

	if err := store.Put(ctx, key, []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Backdate the entry instead of sleeping.
	old := time.Now().Add(-time.Minute)
	if err := os.Chtimes(filepath.Join(dir, key+fileExt), old, old); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	_, found, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expired entry should be absent")
	}

	// Expired entries stay on disk until explicit eviction.
	if _, err := os.Stat(filepath.Join(dir, key+fileExt)); err != nil {
		t.Errorf("expired entry should remain on disk until eviction: %v", err)
	}
}

func TestFileStore_LastWriterWins(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	ctx := context.Background()
	key := Key("op", "contended")

	if err := store.Put(ctx, key, []byte("first")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, key, []byte("second")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, found, err := store.Get(ctx, key)
	if err != nil || !found {
		t.Fatalf("Get failed: found=%v err=%v", found, err)
	}
	if string(got) != "second" {
		t.Errorf("Get = %q, want %q", got, "second")
	}
}

func TestFileStore_ConcurrentAccess(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	ctx := context.Background()
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			key := Key("op", "shared")
			for j := 0; j < 50; j++ {
				_ = store.Put(ctx, key, []byte("value"))
				_, _, _ = store.Get(ctx, key)
			}
		}(i)
	}

	for i := 0; i < 8; i++ {
		<-done
	}

	got, found, err := store.Get(ctx, Key("op", "shared"))
	if err != nil || !found {
		t.Fatalf("Get after concurrent access: found=%v err=%v", found, err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestFileStore_EvictOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, time.Hour)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	ctx := context.Background()
	oldKey := Key("op", "old")
	freshKey := Key("op", "fresh")

	if err := store.Put(ctx, oldKey, []byte("old")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, freshKey, []byte("fresh")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, oldKey+fileExt), stale, stale); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	removed, err := store.EvictOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("EvictOlderThan failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if _, err := os.Stat(filepath.Join(dir, oldKey+fileExt)); !os.IsNotExist(err) {
		t.Error("old entry should be removed")
	}
	if _, found, _ := store.Get(ctx, freshKey); !found {
		t.Error("fresh entry should survive eviction")
	}
}
