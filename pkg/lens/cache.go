package lens

import (
	"slices"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/zeebo/blake3"
)

// DefaultCacheSize is the number of distinct texts kept when no size is given.
const DefaultCacheSize = 128

// Cache memoizes tokenization by the blake3 digest of the text. It is safe
// for concurrent use and may be shared by many sessions.
type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	hits   uint64
	misses uint64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{lru: lru.New(size)}
}

// Digest is the cache key for text.
func Digest(text string) [32]byte {
	return blake3.Sum256([]byte(text))
}

// Tokenize returns the token sequence for text, computing it at most once
// per digest while the entry stays cached. The returned slice is a copy.
func (c *Cache) Tokenize(text string) brackets.Tokens {
	key := Digest(text)

	c.mu.Lock()
	if v, ok := c.lru.Get(key); ok {
		c.hits++
		c.mu.Unlock()
		return slices.Clone(v.(brackets.Tokens))
	}
	c.misses++
	c.mu.Unlock()

	tokens := brackets.Tokenize(text)

	c.mu.Lock()
	c.lru.Add(key, tokens)
	c.mu.Unlock()

	return slices.Clone(tokens)
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: c.lru.Len(), Hits: c.hits, Misses: c.misses}
}
