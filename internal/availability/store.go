//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/store.go -package=mocks . Store,Session

package availability

import (
	"context"
	"errors"
	"time"

	"github.com/tejusbharadwaj/availability/internal/models"
)

// ErrUnknownQuery is returned by a Session when a named precompiled query
// does not exist in the store.
var ErrUnknownQuery = errors.New("unknown precompiled query")

// Store hands out request-scoped sessions. Every Session must be closed.
type Store interface {
	Open(ctx context.Context) (Session, error)
}

// ExtentQuery scopes a time extent lookup to one series.
//
// Offerings restricts the observations taken into account; empty means all
// offerings. PerOffering asks for one extent per offering instead of a
// single extent across offerings.
type ExtentQuery struct {
	SeriesID    int64
	Offerings   []string
	PerOffering bool
}

// Session is a single connection to the backing store, held for the
// duration of one request.
type Session interface {
	// SupportsSeriesAccess reports whether observations can be retrieved
	// per series.
	SupportsSeriesAccess() bool
	// SupportsPrecompiledQuery reports whether the named aggregate query
	// is installed in the store.
	SupportsPrecompiledQuery(ctx context.Context, name string) (bool, error)
	// SupportsTimingTable reports whether the auxiliary per-series timing
	// table exists.
	SupportsTimingTable(ctx context.Context) (bool, error)

	FindSeries(ctx context.Context, filter models.SeriesFilter) ([]models.Series, error)

	PrecompiledExtents(ctx context.Context, name string, q ExtentQuery) ([]models.OfferingMinMaxTime, error)
	TimingTableExtents(ctx context.Context, q ExtentQuery) ([]models.OfferingMinMaxTime, error)
	ObservationExtents(ctx context.Context, q ExtentQuery) ([]models.OfferingMinMaxTime, error)

	// CountObservations counts all observations of the series.
	CountObservations(ctx context.Context, seriesID int64) (int64, error)
	// ResultTimes returns the distinct result times of the series, sorted
	// ascending.
	ResultTimes(ctx context.Context, seriesID int64, offerings []string, filter *models.TemporalFilter) ([]time.Time, error)

	Close() error
}

// OfferingCache answers offering relationship questions without touching
// the store.
type OfferingCache interface {
	OfferingsOf(filter models.SeriesFilter) []string
	ChildOfferings(offering string) []string
	ObservationTypes(offering string) []string
}

// FeatureResolver looks up the display title of a feature of interest.
type FeatureResolver interface {
	FeatureTitle(ctx context.Context, identifier string) (string, bool)
}
