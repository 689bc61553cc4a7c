package availability

import (
	"context"
	"fmt"
	"sort"

	"github.com/tejusbharadwaj/availability/internal/models"
)

// enumerateSeries returns the series matching every filter of the request.
// An offering filter is widened to the descendants of the requested
// offerings so that parent offerings can be synthesized from their
// children.
func enumerateSeries(ctx context.Context, sess Session, cache OfferingCache, req *models.Request) ([]models.Series, []string, error) {
	if !sess.SupportsSeriesAccess() {
		return nil, nil, fmt.Errorf("%w: observations cannot be retrieved per series", ErrUnsupportedCapability)
	}

	filter := req.Filter()
	filter.Offerings = withDescendants(cache, req.Offerings)

	series, err := sess.FindSeries(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: finding series: %w", ErrDataAccess, err)
	}
	return series, filter.Offerings, nil
}

// requestedOfferings returns the offerings the request refers to, either
// explicitly or through its other filters.
func requestedOfferings(cache OfferingCache, req *models.Request) []string {
	if len(req.Offerings) > 0 {
		return req.Offerings
	}
	return cache.OfferingsOf(req.Filter())
}

func withDescendants(cache OfferingCache, offerings []string) []string {
	if len(offerings) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(offerings))
	queue := append([]string(nil), offerings...)
	for len(queue) > 0 {
		offering := queue[0]
		queue = queue[1:]
		if seen[offering] {
			continue
		}
		seen[offering] = true
		queue = append(queue, cache.ChildOfferings(offering)...)
	}
	out := make([]string, 0, len(seen))
	for offering := range seen {
		out = append(out, offering)
	}
	sort.Strings(out)
	return out
}
