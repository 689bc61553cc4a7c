// Package availability computes data-availability summaries: for every
// procedure, observed property and feature of interest (and, in the
// offering-aware namespace, offering) it reports the time extent of the
// stored observations.
//
// A request runs on a single store session:
//
//  1. the series matching the request filters are enumerated,
//  2. a time extent strategy is selected from the store capabilities,
//  3. one record per series and offering is built,
//  4. parent offerings are synthesized from their children (offering-aware)
//     or records of one constellation are merged (legacy),
//  5. the records are sorted into the response.
package availability

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/availability/internal/models"
)

// Config tunes a Service.
type Config struct {
	// PrecompiledQuery names the aggregate query used when the store has
	// it installed. Empty disables the precompiled strategy.
	PrecompiledQuery string
	// Formats maps observation types to response formats.
	Formats FormatRegistry
}

// Service answers GetDataAvailability requests.
type Service struct {
	store    Store
	cache    OfferingCache
	features FeatureResolver
	config   Config
	logger   *logrus.Logger
}

// NewService creates a Service. features may be nil, in which case the
// feature names stored with the series are used as titles.
func NewService(store Store, cache OfferingCache, features FeatureResolver, config Config, logger *logrus.Logger) *Service {
	if config.Formats == nil {
		config.Formats = DefaultFormatRegistry()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		store:    store,
		cache:    cache,
		features: features,
		config:   config,
		logger:   logger,
	}
}

// GetDataAvailability computes the availability records for req.
func (s *Service) GetDataAvailability(ctx context.Context, req *models.Request) (resp *models.Response, err error) {
	r := *req
	if r.Namespace == "" {
		r.Namespace = models.NamespaceLegacy
	}
	if err := validate(&r); err != nil {
		return nil, err
	}

	sess, err := s.store.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: opening session: %w", ErrDataAccess, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			s.logger.WithError(cerr).Warn("Failed to close store session")
		}
	}()

	series, offeringFilter, err := enumerateSeries(ctx, sess, s.cache, &r)
	if err != nil {
		return nil, err
	}

	strategy, err := SelectStrategy(ctx, sess, s.config.PrecompiledQuery)
	if err != nil {
		return nil, err
	}

	refs := NewReferenceCache()
	agg := &aggregator{
		sess:      sess,
		resolver:  resolver{strategy: strategy, queryName: s.config.PrecompiledQuery},
		refs:      refs,
		cache:     s.cache,
		features:  s.features,
		formats:   s.config.Formats,
		req:       &r,
		offerings: offeringFilter,
		resolved:  make(map[Strategy]int),
	}
	records, err := agg.aggregate(ctx, series)
	if err != nil {
		return nil, err
	}
	for used, n := range agg.resolved {
		TimeExtentResolutions.WithLabelValues(used.String()).Add(float64(n))
	}

	if r.OfferingAware() {
		records = synthesizeParents(records, requestedOfferings(s.cache, &r), s.cache, refs)
	} else {
		records = mergeByConstellation(records, false)
	}

	resp = assemble(&r, records)

	s.logger.WithFields(logrus.Fields{
		"namespace": r.Namespace,
		"strategy":  strategy.String(),
		"series":    len(series),
		"records":   len(resp.DataAvailabilities),
	}).Debug("Computed data availability")

	return resp, nil
}

func validate(req *models.Request) error {
	switch req.Namespace {
	case models.NamespaceLegacy, models.NamespaceOfferingAware:
	default:
		return fmt.Errorf("%w: unsupported namespace %q", ErrInvalidFilter, req.Namespace)
	}
	if f := req.Extensions.PhenomenonTimeFilter; f != nil {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
	}
	return nil
}
