package selector

import "sync"

// Cache keeps raw list results per namespace and parent. Entries never expire.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]map[string]ListResult // namespace -> parent key -> result
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]map[string]ListResult)}
}

// Get returns the cached result for the request under namespace.
func (c *Cache) Get(namespace string, req Request) (ListResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.entries[namespace][req.parentKey()]
	if !ok {
		return ListResult{}, false
	}
	res.Items = cloneItems(res.Items)
	return res, true
}

// Put stores a result. Error payloads are not cached.
func (c *Cache) Put(namespace string, req Request, res ListResult) {
	if res.Err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ns, ok := c.entries[namespace]
	if !ok {
		ns = make(map[string]ListResult)
		c.entries[namespace] = ns
	}
	res.Items = cloneItems(res.Items)
	ns[req.parentKey()] = res
}

// Len reports the number of cached results under namespace.
func (c *Cache) Len(namespace string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries[namespace])
}

func cloneItems(in []Item) []Item {
	if in == nil {
		return nil
	}
	out := make([]Item, len(in))
	copy(out, in)
	return out
}
