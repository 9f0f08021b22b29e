package fetch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abelbrown/clubnews/internal/news"
)

// Cache persists the last document served by the remote feed.
// A nil *Cache behaves as a permanently missing cache.
type Cache struct {
	Path string
}

// NewCache returns a cache stored at path.
func NewCache(path string) *Cache {
	return &Cache{Path: path}
}

// Load reads the cached document in its generic decoded form. Missing and
// corrupt files are both KindCache errors.
func (c *Cache) Load() (any, error) {
	if c == nil || c.Path == "" {
		return nil, newError(KindCache, "cache load", os.ErrNotExist)
	}

	b, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, newError(KindCache, "cache load", err)
	}

	text, err := DecodeBody(b)
	if err != nil {
		return nil, newError(KindCache, "cache load", err)
	}

	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, newError(KindCache, "cache load", fmt.Errorf("corrupt cache %s: %w", c.Path, err))
	}
	return raw, nil
}

// Save writes doc in wire form. The file is written to a temporary sibling
// and renamed into place so readers never see a partial document.
func (c *Cache) Save(doc news.Document) error {
	if c == nil || c.Path == "" {
		return nil
	}
	return WriteDocument(c.Path, doc.Wire())
}

// WriteDocument atomically writes w as indented JSON to path, creating the
// parent directory if needed.
func WriteDocument(path string, w news.WireDocument) error {
	b, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return newError(KindCache, "cache save", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newError(KindCache, "cache save", err)
	}

	tmp, err := os.CreateTemp(dir, ".clubnews-*.tmp")
	if err != nil {
		return newError(KindCache, "cache save", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return newError(KindCache, "cache save", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return newError(KindCache, "cache save", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return newError(KindCache, "cache save", err)
	}
	return nil
}
