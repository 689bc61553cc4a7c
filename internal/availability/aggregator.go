package availability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tejusbharadwaj/availability/internal/models"
)

// Metadata domains attached to offering-aware records.
const (
	MetadataSeries       = "series"
	MetadataAvailability = "availability"
)

// aggregator builds one record per (series, offering) for a request.
type aggregator struct {
	sess      Session
	resolver  resolver
	refs      *ReferenceCache
	cache     OfferingCache
	features  FeatureResolver
	formats   FormatRegistry
	req       *models.Request
	offerings []string

	resolved map[Strategy]int
}

func (a *aggregator) aggregate(ctx context.Context, series []models.Series) ([]*models.DataAvailability, error) {
	var records []*models.DataAvailability
	for _, s := range series {
		built, err := a.seriesRecords(ctx, s)
		if err != nil {
			return nil, err
		}
		records = append(records, built...)
	}
	return records, nil
}

func (a *aggregator) seriesRecords(ctx context.Context, s models.Series) ([]*models.DataAvailability, error) {
	q := ExtentQuery{
		SeriesID:    s.ID,
		Offerings:   a.offerings,
		PerOffering: a.req.OfferingAware(),
	}
	extents, used, err := a.resolver.Resolve(ctx, a.sess, s, q)
	if err != nil {
		return nil, err
	}
	a.resolved[used]++

	var (
		count       *int64
		resultTimes []time.Time
		records     []*models.DataAvailability
	)
	for _, extent := range extents {
		if extent.Extent.IsEmpty() {
			continue
		}
		if a.req.Extensions.ShowCount && count == nil {
			n, err := a.sess.CountObservations(ctx, s.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: counting observations of series %d: %w", ErrDataAccess, s.ID, err)
			}
			count = &n
		}
		if a.req.Extensions.IncludeResultTimes && resultTimes == nil {
			times, err := a.sess.ResultTimes(ctx, s.ID, a.offerings, a.req.Extensions.PhenomenonTimeFilter)
			if err != nil {
				return nil, fmt.Errorf("%w: querying result times of series %d: %w", ErrDataAccess, s.ID, err)
			}
			resultTimes = models.SortedDistinct(times)
			if resultTimes == nil {
				resultTimes = []time.Time{}
			}
		}

		record := &models.DataAvailability{
			Procedure:         a.refs.Reference(kindProcedure, s.Procedure, staticTitle(s.ProcedureName)),
			ObservedProperty:  a.refs.Reference(kindObservedProperty, s.ObservedProperty, staticTitle(s.ObservedPropertyName)),
			FeatureOfInterest: a.refs.Reference(kindFeatureOfInterest, s.FeatureOfInterest, a.featureTitle(ctx, s)),
			PhenomenonTime:    extent.Extent,
		}
		if count != nil {
			n := *count
			record.Count = &n
		}
		if resultTimes != nil {
			record.ResultTimes = append([]time.Time{}, resultTimes...)
		}
		if a.req.OfferingAware() {
			a.describe(record, s, extent.Offering, used)
		}
		records = append(records, record)
	}
	return records, nil
}

// describe adds the offering-aware parts of a record.
func (a *aggregator) describe(record *models.DataAvailability, s models.Series, offering string, used Strategy) {
	title := ""
	if offering == s.Offering {
		title = s.OfferingName
	}
	record.Offering = a.refs.Reference(kindOffering, offering, staticTitle(title))
	record.FormatDescriptor = a.formats.descriptor(s.ProcedureDescriptionFormat, a.cache.ObservationTypes(offering))
	record.Metadata = map[string]models.NamedValue{
		MetadataSeries:       {Name: "identifier", Value: strconv.FormatInt(s.ID, 10)},
		MetadataAvailability: {Name: "timeExtentStrategy", Value: used.String()},
	}
}

func (a *aggregator) featureTitle(ctx context.Context, s models.Series) func() string {
	return func() string {
		if a.features != nil {
			if title, ok := a.features.FeatureTitle(ctx, s.FeatureOfInterest); ok {
				return title
			}
		}
		return s.FeatureName
	}
}
