package expand

import (
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	verr "github.com/nihei9/hbind/error"
	"github.com/nihei9/hbind/header"
)

// Cache keeps parsed headers keyed by absolute path. An entry is used only while the file's modification time
// and size are unchanged. Cache is safe for concurrent use; declarations are immutable, so entries are shared
// as they are.
type Cache struct {
	c *lru.Cache[string, *cacheEntry]
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	decls   []header.Declaration
	diags   verr.HeaderErrors
}

func NewCache(size int) (*Cache, error) {
	c, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		c: c,
	}, nil
}

// Len returns the number of cached headers.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.c.Len()
}

func (c *Cache) get(path string, info os.FileInfo) ([]header.Declaration, verr.HeaderErrors, bool) {
	if c == nil {
		return nil, nil, false
	}
	e, ok := c.c.Get(path)
	if !ok {
		return nil, nil, false
	}
	if !e.modTime.Equal(info.ModTime()) || e.size != info.Size() {
		c.c.Remove(path)
		return nil, nil, false
	}
	return e.decls, e.diags, true
}

func (c *Cache) add(path string, info os.FileInfo, decls []header.Declaration, diags verr.HeaderErrors) {
	if c == nil {
		return
	}
	c.c.Add(path, &cacheEntry{
		modTime: info.ModTime(),
		size:    info.Size(),
		decls:   decls,
		diags:   diags,
	})
}
