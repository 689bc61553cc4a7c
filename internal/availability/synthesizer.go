package availability

import (
	"sort"

	"github.com/tejusbharadwaj/availability/internal/models"
)

// synthesizeParents adds availability for the requested offerings and
// their descendants that have child offerings.
//
// A parent that already owns records gets every own record extended by the
// child records of the same constellation. A parent without records gets
// one record per constellation found among its children. Parents are
// handled deepest first so that nested hierarchies roll up.
func synthesizeParents(records []*models.DataAvailability, requested []string, cache OfferingCache, refs *ReferenceCache) []*models.DataAvailability {
	var parents []string
	for _, offering := range withDescendants(cache, requested) {
		if len(cache.ChildOfferings(offering)) > 0 {
			parents = append(parents, offering)
		}
	}
	heights := make(map[string]int, len(parents))
	sort.SliceStable(parents, func(i, j int) bool {
		return height(cache, parents[i], heights) < height(cache, parents[j], heights)
	})

	for _, parent := range parents {
		children := make(map[string]bool)
		for _, child := range cache.ChildOfferings(parent) {
			children[child] = true
		}

		var own, fromChildren []*models.DataAvailability
		for _, record := range records {
			switch offering := record.OfferingHref(); {
			case offering == parent:
				own = append(own, record)
			case children[offering]:
				fromChildren = append(fromChildren, record)
			}
		}
		if len(fromChildren) == 0 {
			continue
		}

		if len(own) > 0 {
			for _, child := range fromChildren {
				for _, record := range own {
					if record.SameConstellation(child) {
						record.PhenomenonTime.ExtendToContain(child.PhenomenonTime)
					}
				}
			}
			continue
		}

		parentRef := refs.Reference(kindOffering, parent, nil)
		clones := make([]*models.DataAvailability, 0, len(fromChildren))
		for _, child := range fromChildren {
			clone := child.Clone()
			clone.Offering = parentRef
			clones = append(clones, clone)
		}
		records = append(records, mergeByConstellation(clones, false)...)
	}
	return records
}

// height returns the length of the longest chain of child offerings below
// offering. A cycle is cut where it revisits an offering.
func height(cache OfferingCache, offering string, memo map[string]int) int {
	if h, ok := memo[offering]; ok {
		return h
	}
	memo[offering] = 0
	h := 0
	for _, child := range cache.ChildOfferings(offering) {
		if c := height(cache, child, memo) + 1; c > h {
			h = c
		}
	}
	memo[offering] = h
	return h
}
