package columns

import (
	"reflect"
	"slices"
	"sort"

	"github.com/oakwood-commons/dyntable/pkg/record"
)

// Cache memoizes DeriveFromData. It is not safe for concurrent use; each
// table owns its own cache.
type Cache struct {
	valid        bool
	key          cacheKey
	result       []Descriptor
	computations int
}

type cacheKey struct {
	sample       record.Record
	exclude      []string
	overrides    []keyedOverride
	defaultWidth int
	schema       []string
	strategy     SampleStrategy
}

type keyedOverride struct {
	key string
	Override
}

func newCacheKey(data []record.Record, cfg Config) cacheKey {
	keys := make([]string, 0, len(cfg.Overrides))
	for k := range cfg.Overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ovs := make([]keyedOverride, len(keys))
	for i, k := range keys {
		ovs[i] = keyedOverride{key: k, Override: cfg.Overrides[k]}
	}
	strategy := cfg.Sample
	if strategy == "" {
		strategy = SampleFirst
	}
	return cacheKey{
		sample:       strategy.Sample(data),
		exclude:      slices.Clone(cfg.Exclude),
		overrides:    ovs,
		defaultWidth: cfg.DefaultWidth,
		schema:       slices.Clone(cfg.Schema),
		strategy:     strategy,
	}
}

func (k cacheKey) equal(o cacheKey) bool {
	if !sameRecord(k.sample, o.sample) ||
		k.defaultWidth != o.defaultWidth ||
		k.strategy != o.strategy ||
		!slices.Equal(k.exclude, o.exclude) ||
		!slices.Equal(k.schema, o.schema) ||
		len(k.overrides) != len(o.overrides) {
		return false
	}
	for i := range k.overrides {
		if k.overrides[i].key != o.overrides[i].key || !k.overrides[i].Equal(o.overrides[i].Override) {
			return false
		}
	}
	return true
}

// sameRecord compares sampled records by identity. Reference types compare
// by pointer; value types (which have no identity) compare by value.
func sameRecord(a, b record.Record) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	return reflect.DeepEqual(a, b)
}

// Derive returns the memoized columns for data and cfg, recomputing only when
// the sampled record or any configuration input differs from the last call.
func (c *Cache) Derive(data []record.Record, cfg Config) []Descriptor {
	key := newCacheKey(data, cfg)
	if c.valid && c.key.equal(key) {
		return c.result
	}
	c.key = key
	c.result = DeriveFromData(data, cfg)
	c.valid = true
	c.computations++
	return c.result
}

// Computations returns how many times the cache actually derived columns.
func (c *Cache) Computations() int {
	return c.computations
}

// Reset drops the memoized result.
func (c *Cache) Reset() {
	c.valid = false
	c.result = nil
}
