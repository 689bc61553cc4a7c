package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/tejusbharadwaj/availability/internal/models"
)

// Strategy is the method used to compute the time extent of a series.
//
// One strategy is selected per request from the store capabilities. The
// first/last fast path is checked per series on top of it, because only
// some series rows carry precomputed extrema.
type Strategy uint8

const (
	StrategyObservationScan Strategy = iota
	StrategyTimingTable
	StrategyPrecompiled
	// StrategyFirstLast reads the extrema stored on the series row. It is
	// never selected for a request, only applied per series.
	StrategyFirstLast
)

func (s Strategy) String() string {
	switch s {
	case StrategyObservationScan:
		return "observation_scan"
	case StrategyTimingTable:
		return "timing_table"
	case StrategyPrecompiled:
		return "precompiled"
	case StrategyFirstLast:
		return "first_last"
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// CapabilityProbe is the part of a Session consulted to select a strategy.
type CapabilityProbe interface {
	SupportsPrecompiledQuery(ctx context.Context, name string) (bool, error)
	SupportsTimingTable(ctx context.Context) (bool, error)
}

// SelectStrategy picks the cheapest strategy the store supports. An empty
// queryName disables the precompiled query.
func SelectStrategy(ctx context.Context, probe CapabilityProbe, queryName string) (Strategy, error) {
	if queryName != "" {
		ok, err := probe.SupportsPrecompiledQuery(ctx, queryName)
		if err != nil {
			return 0, fmt.Errorf("%w: probing precompiled query %q: %w", ErrDataAccess, queryName, err)
		}
		if ok {
			return StrategyPrecompiled, nil
		}
	}
	ok, err := probe.SupportsTimingTable(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: probing timing table: %w", ErrDataAccess, err)
	}
	if ok {
		return StrategyTimingTable, nil
	}
	return StrategyObservationScan, nil
}

// resolver resolves time extents with the strategy selected for a request.
type resolver struct {
	strategy  Strategy
	queryName string
}

// usesFirstLast reports whether the precomputed extrema of the series can
// answer q without a query.
func usesFirstLast(series models.Series, q ExtentQuery) bool {
	if !series.HasFirstLast() || len(q.Offerings) > 0 {
		return false
	}
	// A series that is not bound to an offering cannot be broken down by
	// offering from its row alone.
	return !q.PerOffering || series.Offering != ""
}

// Resolve returns the time extents of series. In per-offering mode there is
// one entry per offering, otherwise a single entry with an empty offering.
func (r resolver) Resolve(ctx context.Context, sess Session, series models.Series, q ExtentQuery) ([]models.OfferingMinMaxTime, Strategy, error) {
	if usesFirstLast(series, q) {
		extent := models.OfferingMinMaxTime{Extent: models.NewTimeExtent(series.FirstTime, series.LastTime)}
		if q.PerOffering {
			extent.Offering = series.Offering
		}
		return []models.OfferingMinMaxTime{extent}, StrategyFirstLast, nil
	}

	var (
		extents []models.OfferingMinMaxTime
		err     error
	)
	switch r.strategy {
	case StrategyPrecompiled:
		extents, err = sess.PrecompiledExtents(ctx, r.queryName, q)
		if errors.Is(err, ErrUnknownQuery) {
			return nil, r.strategy, fmt.Errorf("%w: precompiled query %q is not installed: %w", ErrUnsupportedCapability, r.queryName, err)
		}
	case StrategyTimingTable:
		extents, err = sess.TimingTableExtents(ctx, q)
	case StrategyObservationScan:
		extents, err = sess.ObservationExtents(ctx, q)
	default:
		return nil, r.strategy, fmt.Errorf("%w: %s cannot be selected for a request", ErrUnsupportedCapability, r.strategy)
	}
	if err != nil {
		return nil, r.strategy, fmt.Errorf("%w: resolving time extent of series %d with %s: %w", ErrDataAccess, series.ID, r.strategy, err)
	}
	if !q.PerOffering {
		extents = collapse(extents)
	}
	return extents, r.strategy, nil
}

// collapse merges all extents into one entry without offering.
func collapse(extents []models.OfferingMinMaxTime) []models.OfferingMinMaxTime {
	if len(extents) == 0 {
		return nil
	}
	var merged models.TimeExtent
	for _, e := range extents {
		merged.ExtendToContain(e.Extent)
	}
	return []models.OfferingMinMaxTime{{Extent: merged}}
}
