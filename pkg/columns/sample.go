package columns

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/dyntable/pkg/record"
)

// SampleStrategy selects the record columns are inferred from.
type SampleStrategy string

const (
	// SampleFirst inspects the first record only.
	SampleFirst SampleStrategy = "first"
	// SampleFirstNonEmpty inspects the first record that has at least one key.
	SampleFirstNonEmpty SampleStrategy = "first-non-empty"
)

// ParseSampleStrategy validates a strategy name. Empty means SampleFirst.
func ParseSampleStrategy(s string) (SampleStrategy, error) {
	switch SampleStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SampleFirst:
		return SampleFirst, nil
	case SampleFirstNonEmpty:
		return SampleFirstNonEmpty, nil
	}
	return "", fmt.Errorf("unknown sample strategy %q (expected first or first-non-empty)", s)
}

// Sample returns the record selected by the strategy, or nil when none
// qualifies.
func (s SampleStrategy) Sample(data []record.Record) record.Record {
	if len(data) == 0 {
		return nil
	}
	if s != SampleFirstNonEmpty {
		return data[0]
	}
	for _, r := range data {
		if r != nil && len(r.Keys()) > 0 {
			return r
		}
	}
	return nil
}

// Config holds every input of a derivation besides the dataset.
type Config struct {
	Exclude      []string
	Overrides    map[string]Override
	DefaultWidth int
	// Schema, when non-empty, fixes the key set and order instead of the
	// sampled record's keys.
	Schema []string
	Sample SampleStrategy
}

// DeriveFromData samples data according to cfg and derives its columns.
// An empty dataset yields no columns.
func DeriveFromData(data []record.Record, cfg Config) []Descriptor {
	if len(data) == 0 {
		return []Descriptor{}
	}
	sample := cfg.Sample.Sample(data)
	if len(cfg.Schema) > 0 {
		return DeriveFor(cfg.Schema, sample, cfg.Exclude, cfg.Overrides, cfg.DefaultWidth)
	}
	return Derive(sample, cfg.Exclude, cfg.Overrides, cfg.DefaultWidth)
}
