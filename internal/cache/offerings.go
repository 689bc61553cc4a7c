// Package cache holds the offering relationships of the store in memory.
//
// The content is built from a full load of the offerings and swapped
// atomically, so readers always see one consistent snapshot. Parent
// offerings inherit the procedures, observed properties and features of
// interest of all their descendants.
package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tejusbharadwaj/availability/internal/models"
)

// Loader reads all offerings from the store.
type Loader interface {
	LoadOfferings(ctx context.Context) ([]models.OfferingInfo, error)
}

type offering struct {
	identifier         string
	parents            []string
	children           []string
	procedures         map[string]bool
	observedProperties map[string]bool
	features           map[string]bool
	observationTypes   []string
}

type snapshot struct {
	offerings map[string]*offering
	sorted    []string
}

// OfferingCache answers offering relationship lookups.
type OfferingCache struct {
	loader Loader

	mu   sync.RWMutex
	snap *snapshot
}

// New creates an empty cache backed by loader.
func New(loader Loader) *OfferingCache {
	return &OfferingCache{loader: loader, snap: build(nil)}
}

// NewFromOfferings creates a cache holding the given offerings.
func NewFromOfferings(infos []models.OfferingInfo) *OfferingCache {
	return &OfferingCache{snap: build(infos)}
}

// Refresh reloads the cache content.
func (c *OfferingCache) Refresh(ctx context.Context) error {
	if c.loader == nil {
		return nil
	}
	infos, err := c.loader.LoadOfferings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load offerings: %w", err)
	}
	snap := build(infos)

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached offerings.
func (c *OfferingCache) Len() int {
	return len(c.current().sorted)
}

func (c *OfferingCache) current() *snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// OfferingsOf returns the offerings containing data for all non-empty
// filter fields, sorted.
func (c *OfferingCache) OfferingsOf(filter models.SeriesFilter) []string {
	snap := c.current()
	var out []string
	for _, id := range snap.sorted {
		o := snap.offerings[id]
		if len(filter.Offerings) > 0 && !contains(filter.Offerings, id) {
			continue
		}
		if !matchesAny(o.procedures, filter.Procedures) ||
			!matchesAny(o.observedProperties, filter.ObservedProperties) ||
			!matchesAny(o.features, filter.FeaturesOfInterest) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ChildOfferings returns the direct children of offering.
func (c *OfferingCache) ChildOfferings(offering string) []string {
	if o, ok := c.current().offerings[offering]; ok {
		return o.children
	}
	return nil
}

// HasParent reports whether offering is the child of another offering.
func (c *OfferingCache) HasParent(offering string) bool {
	if o, ok := c.current().offerings[offering]; ok {
		return len(o.parents) > 0
	}
	return false
}

// ObservationTypes returns the observation types registered for offering.
func (c *OfferingCache) ObservationTypes(offering string) []string {
	if o, ok := c.current().offerings[offering]; ok {
		return o.observationTypes
	}
	return nil
}

func build(infos []models.OfferingInfo) *snapshot {
	snap := &snapshot{offerings: make(map[string]*offering, len(infos))}
	get := func(id string) *offering {
		o, ok := snap.offerings[id]
		if !ok {
			o = &offering{
				identifier:         id,
				procedures:         make(map[string]bool),
				observedProperties: make(map[string]bool),
				features:           make(map[string]bool),
			}
			snap.offerings[id] = o
		}
		return o
	}

	for _, info := range infos {
		o := get(info.Identifier)
		addAll(o.procedures, info.Procedures)
		addAll(o.observedProperties, info.ObservedProperties)
		addAll(o.features, info.FeaturesOfInterest)
		o.observationTypes = append(o.observationTypes, info.ObservationTypes...)
		for _, parent := range info.Parents {
			if parent == info.Identifier || contains(o.parents, parent) {
				continue
			}
			o.parents = append(o.parents, parent)
			p := get(parent)
			p.children = append(p.children, info.Identifier)
		}
	}

	for id, o := range snap.offerings {
		sort.Strings(o.children)
		sort.Strings(o.parents)
		o.observationTypes = dedupe(o.observationTypes)
		propagate(snap, o, make(map[string]bool))
		snap.sorted = append(snap.sorted, id)
	}
	sort.Strings(snap.sorted)
	return snap
}

// propagate pushes the content of o up to all its ancestors.
func propagate(snap *snapshot, o *offering, visited map[string]bool) {
	for _, parent := range o.parents {
		if visited[parent] {
			continue
		}
		visited[parent] = true
		p := snap.offerings[parent]
		for k := range o.procedures {
			p.procedures[k] = true
		}
		for k := range o.observedProperties {
			p.observedProperties[k] = true
		}
		for k := range o.features {
			p.features[k] = true
		}
		propagate(snap, p, visited)
	}
}

func matchesAny(set map[string]bool, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if set[w] {
			return true
		}
	}
	return false
}

func addAll(set map[string]bool, values []string) {
	for _, v := range values {
		set[v] = true
	}
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}
	sort.Strings(values)
	out := values[:1]
	for _, v := range values[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
