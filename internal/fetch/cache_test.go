package fetch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/abelbrown/clubnews/internal/normalize"
	"github.com/abelbrown/clubnews/internal/news"
)

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "nested", "news_cache.json"))

	doc, _ := normalize.Normalize(news.DefaultWire())
	if err := c.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := c.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, rep := normalize.Normalize(raw)
	if rep.Dropped != 0 {
		t.Errorf("cached items dropped: %+v", rep)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip changed document:\n got %+v\nwant %+v", got, doc)
	}

	entries, _ := os.ReadDir(filepath.Dir(c.Path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestCacheLoadFailures(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		cache *Cache
	}{
		{"missing file", NewCache(filepath.Join(dir, "missing.json"))},
		{"corrupt file", NewCache(corrupt)},
		{"empty path", NewCache("")},
		{"nil cache", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cache.Load()
			if !IsKind(err, KindCache) {
				t.Errorf("expected cache error, got %v", err)
			}
		})
	}
}

func TestCacheSaveFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCache(filepath.Join(blocker, "news_cache.json"))
	if err := c.Save(news.Document{}); !IsKind(err, KindCache) {
		t.Errorf("expected cache error, got %v", err)
	}
}
