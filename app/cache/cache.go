// Package cache implements the per-user response cache.
//
// Entries are keyed by owner, cache class and request signature. Each class
// has its own expiry window, and every entry of an owner can be dropped at
// once when that owner's posts change. The cache is advisory: a miss only
// costs a recomputation.
package cache

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Class names a category of cached data with its own expiry window.
type Class string

const (
	ClassList       Class = "list"
	ClassCategories Class = "categories"
	ClassTags       Class = "tags"
)

const (
	DefaultListTTL      = 30 * time.Second
	DefaultAggregateTTL = 5 * time.Minute
	DefaultMaxCost      = 64 << 20
)

// Key identifies a cached response of one owner.
type Key struct {
	Class     Class
	Signature string
}

// Signature encodes method, path and query parameters into a stable string.
// Query parameters are sorted by name so their order in the URL does not matter.
func Signature(method, path string, query url.Values) string {
	sig := strings.ToUpper(method) + " " + path
	if encoded := query.Encode(); encoded != "" {
		sig += "?" + encoded
	}
	return sig
}

// Config configures a Cache.
type Config struct {
	// Windows maps each class to its expiry window. Classes without a
	// window are never served from the cache.
	Windows map[Class]time.Duration
	// MaxCost bounds the total payload bytes held.
	MaxCost int64
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the windows used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Windows: map[Class]time.Duration{
			ClassList:       DefaultListTTL,
			ClassCategories: DefaultAggregateTTL,
			ClassTags:       DefaultAggregateTTL,
		},
		MaxCost: DefaultMaxCost,
	}
}

// minCounters keeps ristretto's admission counters usable for tiny budgets.
const minCounters = 1000

// minSweep is the index size of an owner below which expired keys are not swept.
const minSweep = 64

type entry struct {
	owner      string
	key        string
	seq        uint64
	generation uint64
	payload    []byte
	capturedAt time.Time
}

// indexed is what the owner index remembers about a stored key.
type indexed struct {
	seq       uint64
	expiresAt time.Time
}

type ownerIndex struct {
	keys    map[string]indexed
	sweepAt int       // sweep once the index reaches this size
	sweepBy time.Time // or once this time has passed
}

// Cache is the response cache. It is safe for concurrent use.
//
// Every owner has a generation that changes on invalidation. Entries carry
// the generation they were computed under and are only served while it is
// still current, so a computation that started before a mutation can never
// be served after it.
type Cache struct {
	store     *ristretto.Cache[string, entry]
	windows   map[Class]time.Duration
	minWindow time.Duration
	now       func() time.Time

	mu          sync.Mutex
	owners      map[string]*ownerIndex
	generations map[string]uint64
	epoch       uint64
	counter     uint64
}

// New creates a Cache. Call Close when done with it.
func New(cfg Config) (*Cache, error) {
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = DefaultMaxCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	windows := make(map[Class]time.Duration, len(cfg.Windows))
	var minWindow time.Duration
	for class, window := range cfg.Windows {
		windows[class] = window
		if window > 0 && (minWindow == 0 || window < minWindow) {
			minWindow = window
		}
	}

	c := &Cache{
		windows:     windows,
		minWindow:   minWindow,
		now:         cfg.Now,
		owners:      make(map[string]*ownerIndex),
		generations: make(map[string]uint64),
	}

	store, err := ristretto.NewCache(&ristretto.Config[string, entry]{
		NumCounters: max(cfg.MaxCost/100*10, minCounters),
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
		OnEvict:     c.forget,
		OnReject:    c.forget,
	})
	if err != nil {
		return nil, err
	}
	c.store = store
	return c, nil
}

// Window returns the expiry window of class.
func (c *Cache) Window(class Class) time.Duration {
	return c.windows[class]
}

// Generation returns the current generation of owner. Read it before
// computing a payload and hand it to PutIfGeneration.
func (c *Cache) Generation(owner string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generationLocked(owner)
}

func (c *Cache) generationLocked(owner string) uint64 {
	if gen, ok := c.generations[owner]; ok {
		return gen
	}
	return c.epoch
}

// Get returns the payload stored for owner and key if it is still within
// its class window and was computed under the owner's current generation.
func (c *Cache) Get(owner string, key Key) ([]byte, bool) {
	window := c.windows[key.Class]
	if window <= 0 {
		return nil, false
	}

	sk := storeKey(owner, key)
	e, ok := c.store.Get(sk)
	if !ok {
		return nil, false
	}

	c.mu.Lock()
	current := e.generation == c.generationLocked(owner)
	c.mu.Unlock()
	if !current {
		return nil, false
	}

	if c.now().Sub(e.capturedAt) > window {
		c.forget(&ristretto.Item[entry]{Value: e})
		c.store.Del(sk)
		return nil, false
	}
	return e.payload, true
}

// Put stores payload for owner and key under the owner's current
// generation, replacing any previous entry.
func (c *Cache) Put(owner string, key Key, payload []byte) {
	c.PutIfGeneration(owner, key, c.Generation(owner), payload)
}

// PutIfGeneration stores payload only if owner is still at generation gen.
// It reports whether the payload was stored.
func (c *Cache) PutIfGeneration(owner string, key Key, gen uint64, payload []byte) bool {
	window := c.windows[key.Class]
	if window <= 0 {
		return false
	}

	now := c.now()
	sk := storeKey(owner, key)

	c.mu.Lock()
	if gen != c.generationLocked(owner) {
		c.mu.Unlock()
		return false
	}
	c.counter++
	seq := c.counter
	idx, ok := c.owners[owner]
	if !ok {
		idx = &ownerIndex{keys: make(map[string]indexed), sweepAt: minSweep}
		c.owners[owner] = idx
	}
	expiresAt := now.Add(window)
	idx.keys[sk] = indexed{seq: seq, expiresAt: expiresAt}
	if idx.sweepBy.IsZero() || expiresAt.Before(idx.sweepBy) {
		idx.sweepBy = expiresAt
	}
	expired := c.sweepLocked(owner, idx, now)
	c.mu.Unlock()

	for _, k := range expired {
		c.store.Del(k)
	}

	e := entry{owner: owner, key: sk, seq: seq, generation: gen, payload: payload, capturedAt: now}
	if !c.store.SetWithTTL(sk, e, int64(len(payload))+1, window) {
		c.forget(&ristretto.Item[entry]{Value: e})
		return false
	}
	c.store.Wait()
	return true
}

// sweepLocked drops the expired keys of an owner and returns them for
// deletion from the store. It runs once the index has doubled since the last
// sweep or its oldest key has expired, and at most once per shortest window
// on the time trigger.
func (c *Cache) sweepLocked(owner string, idx *ownerIndex, now time.Time) []string {
	if len(idx.keys) < idx.sweepAt && !now.After(idx.sweepBy) {
		return nil
	}

	var (
		expired []string
		oldest  time.Time
	)
	for sk, ix := range idx.keys {
		if now.After(ix.expiresAt) {
			expired = append(expired, sk)
			delete(idx.keys, sk)
			continue
		}
		if oldest.IsZero() || ix.expiresAt.Before(oldest) {
			oldest = ix.expiresAt
		}
	}
	if len(idx.keys) == 0 {
		delete(c.owners, owner)
	}
	idx.sweepAt = max(2*len(idx.keys), minSweep)
	idx.sweepBy = now.Add(c.minWindow)
	if oldest.After(idx.sweepBy) {
		idx.sweepBy = oldest
	}
	return expired
}

// forget removes an entry that left the store from the owner index. It is
// also ristretto's eviction and rejection callback. A newer entry stored
// under the same key is left alone.
func (c *Cache) forget(item *ristretto.Item[entry]) {
	e := item.Value
	if e.key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.owners[e.owner]
	if !ok {
		return
	}
	if ix, ok := idx.keys[e.key]; ok && ix.seq == e.seq {
		delete(idx.keys, e.key)
		if len(idx.keys) == 0 {
			delete(c.owners, e.owner)
		}
	}
}

// InvalidateOwner drops every entry of owner across all classes.
func (c *Cache) InvalidateOwner(owner string) {
	c.mu.Lock()
	c.counter++
	c.generations[owner] = c.counter
	var keys map[string]indexed
	if idx, ok := c.owners[owner]; ok {
		keys = idx.keys
		delete(c.owners, owner)
	}
	c.mu.Unlock()

	for sk := range keys {
		c.store.Del(sk)
	}
}

// InvalidateAll drops every entry of every owner.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.counter++
	c.epoch = c.counter
	c.generations = make(map[string]uint64)
	c.owners = make(map[string]*ownerIndex)
	c.mu.Unlock()

	c.store.Clear()
}

// Close releases the resources held by the cache.
func (c *Cache) Close() {
	c.store.Close()
}

func storeKey(owner string, key Key) string {
	return owner + "\x00" + string(key.Class) + "\x00" + key.Signature
}
