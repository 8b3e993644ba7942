package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	tests := []struct {
		name string
		key  string
		data []byte
	}{
		{"simple", "http:registry::abc", []byte(`{"versions":["1.0.0"]}`)},
		{"empty value", "empty", []byte{}},
		{"binary", "bin", []byte{0, 1, 2, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Set(ctx, tt.key, tt.data, time.Hour); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			got, hit, err := c.Get(ctx, tt.key)
			if err != nil || !hit {
				t.Fatalf("Get() = hit %v, err %v; want hit", hit, err)
			}
			if string(got) != string(tt.data) {
				t.Errorf("Get() = %q, want %q", got, tt.data)
			}
		})
	}
}

func TestFileCacheMissAndDelete(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() after Delete() should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() of missing key error: %v", err)
	}
}

func TestFileCacheExpired(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v; want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if n, err := c.Len(); err != nil || n != 2 {
		t.Fatalf("Len() = %d, %v; want 2", n, err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get() after Clear() should miss")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Clear() should recreate the directory: %v", err)
	}
	if n, _ := c.Len(); n != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", n)
	}
}

func TestDefaultDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("DefaultDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "cdnlock") {
		t.Errorf("DefaultDir() = %v, want %v", dir, "/tmp/xdg/cdnlock")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}

	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("registry", "abc"); got != "http:registry:abc" {
		t.Errorf("HTTPKey() = %v, want %v", got, "http:registry:abc")
	}

	base := ResolveKeyOpts{Roots: []string{"app@1.0.0"}}
	k1 := k.ResolveKey(base)
	if k1 != k.ResolveKey(ResolveKeyOpts{Roots: []string{"app@1.0.0"}}) {
		t.Error("ResolveKey should be deterministic")
	}
	if !strings.HasPrefix(k1, "resolve:") {
		t.Errorf("ResolveKey() = %v, want resolve: prefix", k1)
	}

	variants := []ResolveKeyOpts{
		{Roots: []string{"app@^1.0.0"}},
		{Roots: []string{"app@1.0.0"}, Using: map[string]string{"lib": "2.0.0"}},
		{Roots: []string{"app@1.0.0"}, Loaded: []string{"lib#2"}},
		{Roots: []string{"app@1.0.0"}, Strict: true},
		{Roots: []string{"app@1.0.0"}, NoWIPFallback: true},
	}
	for _, v := range variants {
		if k.ResolveKey(v) == k1 {
			t.Errorf("ResolveKey(%+v) should differ from base key", v)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")

	if got := scoped.HTTPKey("registry", "abc"); got != "staging:http:registry:abc" {
		t.Errorf("HTTPKey() = %v, want %v", got, "staging:http:registry:abc")
	}

	rk := scoped.ResolveKey(ResolveKeyOpts{Roots: []string{"app@1"}})
	if !strings.HasPrefix(rk, "staging:resolve:") {
		t.Errorf("ResolveKey() = %v, want staging:resolve: prefix", rk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.HTTPKey("test", "key"); key != "prefix:http:test:key" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	buf := []byte("v1")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'

	got, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get() = hit %v, err %v; want hit", hit, err)
	}
	if string(got) != "v1" {
		t.Errorf("Get() = %q, want %q (Set must copy)", got, "v1")
	}

	_ = c.Set(ctx, "short", []byte("v"), time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}

	_ = c.Delete(ctx, "k")
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}
