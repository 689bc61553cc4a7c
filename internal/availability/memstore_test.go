package availability

import (
	"context"
	"sort"
	"time"

	"github.com/tejusbharadwaj/availability/internal/models"
)

type memObservation struct {
	seriesID   int64
	offering   string
	start, end time.Time
	resultTime time.Time
}

// memStore is an in-memory Store. Each strategy is answered by its own
// code path: the precompiled query and the scan aggregate the raw
// observations, the timing table reads per (series, offering) rows built
// when the store is created.
type memStore struct {
	series       []models.Series
	observations []memObservation

	seriesAccess bool
	precompiled  string
	timingTable  bool

	timingRows map[int64]map[string]models.TimeExtent

	opened int
	closed int
	calls  map[string]int
}

func newMemStore(series []models.Series, observations []memObservation) *memStore {
	m := &memStore{
		series:       series,
		observations: observations,
		seriesAccess: true,
		timingRows:   make(map[int64]map[string]models.TimeExtent),
		calls:        make(map[string]int),
	}
	for _, o := range observations {
		if m.timingRows[o.seriesID] == nil {
			m.timingRows[o.seriesID] = make(map[string]models.TimeExtent)
		}
		row := m.timingRows[o.seriesID][o.offering]
		row.ExtendToContain(models.NewTimeExtent(o.start, o.end))
		m.timingRows[o.seriesID][o.offering] = row
	}
	return m
}

func (m *memStore) Open(ctx context.Context) (Session, error) {
	m.opened++
	return &memSession{store: m}, nil
}

type memSession struct {
	store *memStore
}

func (s *memSession) SupportsSeriesAccess() bool {
	return s.store.seriesAccess
}

func (s *memSession) SupportsPrecompiledQuery(ctx context.Context, name string) (bool, error) {
	return s.store.precompiled != "" && s.store.precompiled == name, nil
}

func (s *memSession) SupportsTimingTable(ctx context.Context) (bool, error) {
	return s.store.timingTable, nil
}

func (s *memSession) FindSeries(ctx context.Context, filter models.SeriesFilter) ([]models.Series, error) {
	s.store.calls["FindSeries"]++
	var out []models.Series
	for _, series := range s.store.series {
		if !in(filter.Procedures, series.Procedure) ||
			!in(filter.ObservedProperties, series.ObservedProperty) ||
			!in(filter.FeaturesOfInterest, series.FeatureOfInterest) {
			continue
		}
		if len(filter.Offerings) > 0 && !s.inOfferings(series, filter.Offerings) {
			continue
		}
		out = append(out, series)
	}
	return out, nil
}

func (s *memSession) inOfferings(series models.Series, offerings []string) bool {
	if series.Offering != "" {
		return in(offerings, series.Offering)
	}
	for _, o := range s.store.observations {
		if o.seriesID == series.ID && in(offerings, o.offering) {
			return true
		}
	}
	return false
}

func (s *memSession) PrecompiledExtents(ctx context.Context, name string, q ExtentQuery) ([]models.OfferingMinMaxTime, error) {
	s.store.calls["PrecompiledExtents"]++
	if name != s.store.precompiled {
		return nil, ErrUnknownQuery
	}
	return s.scan(q), nil
}

func (s *memSession) TimingTableExtents(ctx context.Context, q ExtentQuery) ([]models.OfferingMinMaxTime, error) {
	s.store.calls["TimingTableExtents"]++
	perOffering := make(map[string]models.TimeExtent)
	for offering, extent := range s.store.timingRows[q.SeriesID] {
		if len(q.Offerings) > 0 && !in(q.Offerings, offering) {
			continue
		}
		perOffering[offering] = extent
	}
	return group(perOffering, q.PerOffering), nil
}

func (s *memSession) ObservationExtents(ctx context.Context, q ExtentQuery) ([]models.OfferingMinMaxTime, error) {
	s.store.calls["ObservationExtents"]++
	return s.scan(q), nil
}

func (s *memSession) scan(q ExtentQuery) []models.OfferingMinMaxTime {
	perOffering := make(map[string]models.TimeExtent)
	for _, o := range s.store.observations {
		if o.seriesID != q.SeriesID {
			continue
		}
		if len(q.Offerings) > 0 && !in(q.Offerings, o.offering) {
			continue
		}
		extent := perOffering[o.offering]
		extent.ExtendToContain(models.NewTimeExtent(o.start, o.end))
		perOffering[o.offering] = extent
	}
	return group(perOffering, q.PerOffering)
}

func group(perOffering map[string]models.TimeExtent, byOffering bool) []models.OfferingMinMaxTime {
	if len(perOffering) == 0 {
		return nil
	}
	if !byOffering {
		var all models.TimeExtent
		for _, extent := range perOffering {
			all.ExtendToContain(extent)
		}
		return []models.OfferingMinMaxTime{{Extent: all}}
	}
	out := make([]models.OfferingMinMaxTime, 0, len(perOffering))
	for offering, extent := range perOffering {
		out = append(out, models.OfferingMinMaxTime{Offering: offering, Extent: extent})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offering < out[j].Offering })
	return out
}

func (s *memSession) CountObservations(ctx context.Context, seriesID int64) (int64, error) {
	s.store.calls["CountObservations"]++
	var n int64
	for _, o := range s.store.observations {
		if o.seriesID == seriesID {
			n++
		}
	}
	return n, nil
}

func (s *memSession) ResultTimes(ctx context.Context, seriesID int64, offerings []string, filter *models.TemporalFilter) ([]time.Time, error) {
	s.store.calls["ResultTimes"]++
	var out []time.Time
	for _, o := range s.store.observations {
		if o.seriesID != seriesID || (len(offerings) > 0 && !in(offerings, o.offering)) {
			continue
		}
		if filter != nil && !filter.Matches(models.NewTimeExtent(o.start, o.end)) {
			continue
		}
		out = append(out, o.resultTime)
	}
	// Deliberately unsorted with duplicates.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *memSession) Close() error {
	s.store.closed++
	return nil
}

func in(values []string, v string) bool {
	if len(values) == 0 {
		return true
	}
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
