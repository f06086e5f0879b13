package ai

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"crediario-backend/internal/domain"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultCacheTTL  = 60 * time.Second
	DefaultCacheSize = 512
)

type cacheEntry struct {
	response ChatResponse
	storedAt time.Time
}

// ResponseCache remembers chat responses for a short time. Entries are
// bounded by size and checked against the clock on every read.
type ResponseCache struct {
	ttl time.Duration
	now func() time.Time
	lru *expirable.LRU[string, cacheEntry]
}

func NewResponseCache(size int, ttl time.Duration, now func() time.Time) *ResponseCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ResponseCache{
		ttl: ttl,
		now: now,
		lru: expirable.NewLRU[string, cacheEntry](size, nil, ttl),
	}
}

func (c *ResponseCache) Get(key string) (ChatResponse, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return ChatResponse{}, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.lru.Remove(key)
		return ChatResponse{}, false
	}
	return e.response, true
}

func (c *ResponseCache) Set(key string, resp ChatResponse) {
	c.lru.Add(key, cacheEntry{response: resp, storedAt: c.now()})
}

func (c *ResponseCache) Len() int { return c.lru.Len() }

// CacheKey identifies a chat request by role, message and the balances it
// was asked against. Any balance change produces a new key.
func CacheKey(role domain.Role, message string, crediarios []domain.Crediario) string {
	parts := make([]string, 0, len(crediarios))
	for _, c := range crediarios {
		parts = append(parts, c.ID+":"+strconv.FormatFloat(float64(c.TotalBalance), 'f', 2, 64))
	}
	sort.Strings(parts)
	r := string(role)
	if r == "" {
		r = "unknown"
	}
	return r + "::" + message + "::" + strings.Join(parts, "|")
}
