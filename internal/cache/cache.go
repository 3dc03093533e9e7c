// Package cache keeps rendered previews in a size-bounded LRU.
package cache

import (
	"container/list"
	"errors"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const megabyte = 1 << 20

// Entry is a cached value. Its size counts toward the cache budget.
type Entry struct {
	Key   string
	Value string
}

type Cache struct {
	mu        sync.Mutex
	maxSize   int64
	size      int64
	evictList *list.List
	items     map[string]*list.Element
}

// New returns a cache holding at most mb megabytes of entries.
func New(mb int) (*Cache, error) {
	if mb <= 0 {
		return nil, errors.New("cache size must be positive")
	}
	return NewWithLimit(int64(mb) * megabyte), nil
}

// NewWithLimit returns a cache bounded to maxBytes.
func NewWithLimit(maxBytes int64) *Cache {
	return &Cache{
		maxSize:   maxBytes,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
	}
}

// PreviewKey identifies a rendering of body at a given width.
func PreviewKey(body string, width int) string {
	return strconv.FormatUint(xxhash.Sum64String(body), 16) + ":" + strconv.Itoa(width)
}

func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.items[key]; hit {
		c.evictList.MoveToFront(ele)
		return ele.Value.(*Entry).Value, true
	}
	return "", false
}

// Put stores value under key, evicting least recently used entries until
// the cache fits its budget. An entry larger than the whole budget is rejected.
func (c *Cache) Put(key, value string) error {
	e := &Entry{Key: key, Value: value}
	n := int64(sizeof(e))
	if n > c.maxSize {
		return errors.New("entry exceeds cache size")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.items[key]; hit {
		old := ele.Value.(*Entry)
		c.size += n - int64(sizeof(old))
		ele.Value = e
		c.evictList.MoveToFront(ele)
	} else {
		c.items[key] = c.evictList.PushFront(e)
		c.size += n
	}

	for c.size > c.maxSize {
		c.removeOldest()
	}
	return nil
}

// SizeOf reports the bytes currently accounted to entries.
func (c *Cache) SizeOf() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *Cache) removeOldest() {
	ele := c.evictList.Back()
	if ele != nil {
		c.removeElement(ele)
	}
}

func (c *Cache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*Entry)
	delete(c.items, kv.Key)
	c.size -= int64(sizeof(kv))
}

func sizeof(e *Entry) int {
	return len(e.Key) + len(e.Value)
}
