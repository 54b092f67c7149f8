package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("wayback", "The cat sat")
	b := CacheKey("commoncrawl", "The cat sat")
	if a == b {
		t.Error("expected different keys for different backends")
	}
	if a != CacheKey("wayback", "The cat sat") {
		t.Error("expected stable key")
	}
	// Joining must not make ("ab","c") collide with ("a","bc")
	if CacheKey("ab", "c") == CacheKey("a", "bc") {
		t.Error("expected part boundaries to matter")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	val, ok := c.Get("k")
	if !ok || string(val) != "v" {
		t.Errorf("expected hit with v, got %q %v", val, ok)
	}
	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	key := CacheKey("wayback", "q")
	if err := c.Set(key, []byte("1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, ok := c.Get(key)
	if !ok || string(val) != "1" {
		t.Fatalf("expected hit, got %q %v", val, ok)
	}

	if err := c.Set(key, []byte("1"), -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(c.path(key)); !os.IsNotExist(err) {
		t.Error("expected expired entry file to be removed")
	}

	if err := c.Delete("never-set"); err != nil {
		t.Errorf("expected delete of missing key to succeed, got %v", err)
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("x")
	if err := os.WriteFile(c.path(key), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected corrupt entry to miss")
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.Base(c.path(key)))); !os.IsNotExist(err) {
		t.Error("expected corrupt entry file to be removed")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir, time.Hour)
	memory := NewMemoryCache(time.Hour, time.Minute)
	c := &LayeredCache{memory: memory, disk: disk}

	if err := disk.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if val, ok := c.Get("k"); !ok || string(val) != "v" {
		t.Fatalf("expected disk hit, got %q %v", val, ok)
	}
	if _, ok := memory.Get("k"); !ok {
		t.Error("expected disk hit to be promoted to memory")
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after clear")
	}
}

func TestVerdictCache(t *testing.T) {
	v := NewVerdictCache(NewMemoryCache(time.Minute, time.Minute), 0)

	if _, found := v.Lookup("wayback", "q"); found {
		t.Fatal("expected miss")
	}
	if err := v.Store("wayback", "q", true); err != nil {
		t.Fatal(err)
	}
	if err := v.Store("wayback", "r", false); err != nil {
		t.Fatal(err)
	}

	if present, found := v.Lookup("wayback", "q"); !found || !present {
		t.Errorf("expected cached present verdict, got %v %v", present, found)
	}
	if present, found := v.Lookup("wayback", "r"); !found || present {
		t.Errorf("expected cached absent verdict, got %v %v", present, found)
	}
	if _, found := v.Lookup("commoncrawl", "q"); found {
		t.Error("expected verdicts to be scoped by backend")
	}

	var nilCache *VerdictCache
	if _, found := nilCache.Lookup("wayback", "q"); found {
		t.Error("expected nil cache to miss")
	}
	if err := nilCache.Store("wayback", "q", true); err != nil {
		t.Errorf("expected nil cache store to be a no-op, got %v", err)
	}
}

func TestVerdictCache_EvictsUnknownEncoding(t *testing.T) {
	store := NewMemoryCache(time.Minute, time.Minute)
	v := NewVerdictCache(store, 0)
	key := CacheKey("wayback", "q")
	if err := store.Set(key, []byte("yes"), 0); err != nil {
		t.Fatal(err)
	}

	if _, found := v.Lookup("wayback", "q"); found {
		t.Error("expected unknown encoding to miss")
	}
	if _, ok := store.Get(key); ok {
		t.Error("expected unknown encoding to be evicted")
	}
}

func TestDiskCache_ClearKeepsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	if err := c.Set(CacheKey("wayback", "q"), []byte("1"), 0); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get(CacheKey("wayback", "q")); ok {
		t.Error("expected cache entry to be removed")
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("expected unrelated file to survive, got %v", err)
	}
	if err := NewDiskCache(filepath.Join(dir, "missing"), time.Hour).Clear(); err != nil {
		t.Errorf("expected clear of a missing dir to succeed, got %v", err)
	}
}
