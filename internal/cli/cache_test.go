package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/sitegraph/pkg/cache"
	"github.com/matzehuels/sitegraph/pkg/config"
)

func TestNewCacheDisabled(t *testing.T) {
	cfg := config.Default()

	c, err := newCache(context.Background(), cfg.Source, true)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("newCache(noCache) = %T, want cache.NullCache", c)
	}

	cfg.Source.Cache = "none"
	c, err = newCache(context.Background(), cfg.Source, false)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("newCache(none) = %T, want cache.NullCache", c)
	}
}

func TestNewCacheFile(t *testing.T) {
	cfg := config.Default()
	cfg.Source.CacheDir = filepath.Join(t.TempDir(), "cache")
	ctx := context.Background()

	c, err := newCache(ctx, cfg.Source, false)
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(data) != "v" {
		t.Errorf("Get() = %q, %v, %v; want \"v\", true, nil", data, ok, err)
	}
	if _, err := os.Stat(cfg.Source.CacheDir); err != nil {
		t.Errorf("cache dir not created: %v", err)
	}
}

func TestFileCacheDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "entries")
	c := New(os.Stderr, LogInfo)
	c.configPath = writeConfig(t, "[source]\ncache_dir = '"+dir+"'\n")

	got, err := c.fileCacheDir()
	if err != nil {
		t.Fatalf("fileCacheDir() error: %v", err)
	}
	if got != dir {
		t.Errorf("fileCacheDir() = %q, want %q", got, dir)
	}
}

func TestFileCacheDirOtherBackend(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.configPath = writeConfig(t, "[source]\ncache = 'redis'\n")

	got, err := c.fileCacheDir()
	if err != nil {
		t.Fatalf("fileCacheDir() error: %v", err)
	}
	if got != "" {
		t.Errorf("fileCacheDir() = %q, want empty for redis", got)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "entries")
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatalf("Set(%q) error: %v", k, err)
		}
	}

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", writeConfig(t, "[source]\ncache_dir = '"+dir+"'\n"), "cache", "clear"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}

	if _, ok, _ := fc.Get(ctx, "a"); ok {
		t.Error("entry survived cache clear")
	}
}
