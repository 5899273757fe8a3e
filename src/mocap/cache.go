package mocap

import (
	"path/filepath"
	"sync"
)

// Cache keeps parsed documents keyed by path so repeated extractions from
// one file parse it once.
type Cache struct {
	mu   sync.Mutex
	docs map[string]*Document
}

// NewCache returns an empty document cache.
func NewCache() *Cache {
	return &Cache{docs: make(map[string]*Document)}
}

// Open returns the cached document for path, parsing it on first use.
func (c *Cache) Open(path string) (*Document, error) {
	key := filepath.Clean(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if doc, ok := c.docs[key]; ok {
		return doc, nil
	}
	doc, err := OpenDocument(path)
	if err != nil {
		return nil, err
	}
	c.docs[key] = doc
	return doc, nil
}

// Invalidate drops the cached document for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, filepath.Clean(path))
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}
