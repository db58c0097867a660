package store

import (
	"context"
	"sort"
	"sync"

	"github.com/merobazar/recsys/core"
)

// MemoryCatalog 是内存实现的商品目录。
type MemoryCatalog struct {
	mu       sync.RWMutex
	listings map[string]core.Listing
}

func NewMemoryCatalog(listings ...core.Listing) *MemoryCatalog {
	c := &MemoryCatalog{listings: make(map[string]core.Listing, len(listings))}
	for _, l := range listings {
		c.listings[l.ID] = l
	}
	return c
}

// Put 新增或覆盖商品。
func (c *MemoryCatalog) Put(l core.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings[l.ID] = l
}

// Upsert 批量新增或覆盖商品。
func (c *MemoryCatalog) Upsert(ctx context.Context, listings ...core.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range listings {
		c.listings[l.ID] = l
	}
	return nil
}

func (c *MemoryCatalog) Listing(ctx context.Context, id string) (core.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, ok := c.listings[id]
	if !ok {
		return core.Listing{}, core.ErrListingNotFound
	}
	return l, nil
}

func (c *MemoryCatalog) Listings(ctx context.Context, ids []string) (map[string]core.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]core.Listing, len(ids))
	for _, id := range ids {
		if l, ok := c.listings[id]; ok {
			out[id] = l
		}
	}
	return out, nil
}

func (c *MemoryCatalog) ActiveListings(ctx context.Context) ([]core.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]core.Listing, 0, len(c.listings))
	for _, l := range c.listings {
		if l.Active {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ core.Catalog = (*MemoryCatalog)(nil)
