package catalog

import (
	"sync"

	"github.com/dchest/siphash"
)

const (
	cacheShards = 16

	// fixed siphash keys; the hash only spreads keys over shards
	k0 = 0x6c62272e07bb0142
	k1 = 0x62b821756295c58d
)

// Key identifies a table descriptor.
type Key struct {
	Schema string
	Table  string
}

// TableCache maps (schema, table) to a descriptor. Entries are added on
// first resolution and never evicted. Insertion is insert-if-absent: the
// first writer wins and later writers get the stored descriptor back.
//
// The zero value is not usable; call NewTableCache.
type TableCache struct {
	shards [cacheShards]cacheShard
}

type cacheShard struct {
	mu sync.RWMutex
	m  map[Key]*TableDescriptor
}

// NewTableCache creates an empty cache.
func NewTableCache() *TableCache {
	c := &TableCache{}
	for i := range c.shards {
		c.shards[i].m = make(map[Key]*TableDescriptor)
	}
	return c
}

func (c *TableCache) shard(k Key) *cacheShard {
	buf := make([]byte, 0, len(k.Schema)+len(k.Table)+1)
	buf = append(buf, k.Schema...)
	buf = append(buf, 0)
	buf = append(buf, k.Table...)
	h := siphash.Hash(k0, k1, buf)
	return &c.shards[h%cacheShards]
}

// Get returns the cached descriptor for k.
func (c *TableCache) Get(k Key) (*TableDescriptor, bool) {
	s := c.shard(k)
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.m[k]
	return d, ok
}

// LoadOrStore stores d under k unless an entry exists. It returns the
// descriptor now held by the cache and whether it was already present.
func (c *TableCache) LoadOrStore(k Key, d *TableDescriptor) (*TableDescriptor, bool) {
	s := c.shard(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.m[k]; ok {
		return existing, true
	}
	s.m[k] = d
	return d, false
}

// Len returns the number of cached descriptors.
func (c *TableCache) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}
