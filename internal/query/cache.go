package query

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

// Source is a task collection that versions its contents. Revision must be
// cheap; Snapshot is only taken on a cache miss.
type Source interface {
	Revision() uint64
	Snapshot() (revision uint64, tasks []model.Task)
}

// Cache memoises Filtered per source revision. Entries for an old revision
// are never hit again and age out through the LRU.
type Cache struct {
	entries *expirable.LRU[string, []model.Task]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 128
	}
	return &Cache{entries: expirable.NewLRU[string, []model.Task](size, nil, ttl)}
}

// Filtered returns deep copies so callers can never mutate a cached entry.
func (c *Cache) Filtered(src Source, f Filter, s Sort, search string, now time.Time) []model.Task {
	if cached, ok := c.entries.Get(cacheKey(src.Revision(), f, s, search, now)); ok {
		c.hits.Add(1)
		return cloneAll(cached)
	}
	c.misses.Add(1)
	rev, tasks := src.Snapshot()
	out := Filtered(tasks, f, s, search, now)
	c.entries.Add(cacheKey(rev, f, s, search, now), out)
	return cloneAll(out)
}

func cloneAll(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) Purge() {
	c.entries.Purge()
}

// cacheKey only includes now when the result depends on it.
func cacheKey(rev uint64, f Filter, s Sort, search string, now time.Time) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(rev, 10))
	b.WriteByte('|')
	raw, _ := json.Marshal(f)
	b.Write(raw)
	b.WriteByte('|')
	b.WriteString(s.String())
	b.WriteByte('|')
	b.WriteString(strings.ToLower(search))
	if f.Overdue {
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(now.UnixNano(), 10))
	}
	return b.String()
}
