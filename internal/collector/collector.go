package collector

import (
	"context"
	"fmt"
	"sort"

	"banksentinel/internal/dto"
	"banksentinel/internal/model"
)

// Collector is the per-source plugin contract. Implementations fetch raw
// items and parse them into event/claim drafts; trust routing, hashing,
// entity resolution and persistence belong to the Pipeline.
type Collector interface {
	SourceName() string
	TrustTier() model.TrustTier
	FrequencyMinutes() int
	Fetch(ctx context.Context) ([]dto.RawItem, error)
	Parse(ctx context.Context, raw dto.RawItem) ([]dto.ParsedItem, error)
}

// Registry holds all registered collectors keyed by source name.
type Registry struct {
	collectors map[string]Collector
}

func NewRegistry(collectors ...Collector) (*Registry, error) {
	r := &Registry{collectors: make(map[string]Collector)}
	for _, c := range collectors {
		if !c.TrustTier().Valid() {
			return nil, fmt.Errorf("collector %q declares invalid trust tier %d", c.SourceName(), c.TrustTier())
		}
		if _, exists := r.collectors[c.SourceName()]; exists {
			return nil, fmt.Errorf("duplicate collector source name %q", c.SourceName())
		}
		r.collectors[c.SourceName()] = c
	}
	return r, nil
}

func (r *Registry) Get(sourceName string) (Collector, bool) {
	c, ok := r.collectors[sourceName]
	return c, ok
}

// All returns collectors in stable name order.
func (r *Registry) All() []Collector {
	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Collector, 0, len(names))
	for _, name := range names {
		out = append(out, r.collectors[name])
	}
	return out
}
