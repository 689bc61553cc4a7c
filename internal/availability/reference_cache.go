package availability

import "github.com/tejusbharadwaj/availability/internal/models"

type referenceKind uint8

const (
	kindProcedure referenceKind = iota
	kindObservedProperty
	kindFeatureOfInterest
	kindOffering
)

type referenceKey struct {
	kind referenceKind
	id   string
}

// ReferenceCache memoizes references for the lifetime of one request so
// that records built from different series share one instance per
// identifier. The first title seen for an identifier is kept.
type ReferenceCache struct {
	refs map[referenceKey]*models.ReferenceType
}

// NewReferenceCache returns an empty cache.
func NewReferenceCache() *ReferenceCache {
	return &ReferenceCache{refs: make(map[referenceKey]*models.ReferenceType)}
}

// Reference returns the cached reference for id, creating it on first
// sight. title is only called when the reference is created.
func (c *ReferenceCache) Reference(kind referenceKind, id string, title func() string) *models.ReferenceType {
	key := referenceKey{kind: kind, id: id}
	if ref, ok := c.refs[key]; ok {
		return ref
	}
	ref := &models.ReferenceType{Href: id}
	if title != nil {
		ref.Title = title()
	}
	c.refs[key] = ref
	return ref
}

// Len returns the number of cached references.
func (c *ReferenceCache) Len() int {
	return len(c.refs)
}

func staticTitle(title string) func() string {
	return func() string { return title }
}
