package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/tejusbharadwaj/availability/internal/availability"
	"github.com/tejusbharadwaj/availability/internal/models"
)

// session answers one request over a single pinned connection.
type session struct {
	conn         *sql.Conn
	seriesAccess bool
}

func (s *session) SupportsSeriesAccess() bool {
	return s.seriesAccess
}

func (s *session) SupportsPrecompiledQuery(ctx context.Context, name string) (bool, error) {
	var ok bool
	if err := s.conn.QueryRowContext(ctx, probeFunctionSQL, name).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to probe function %s: %w", name, err)
	}
	return ok, nil
}

func (s *session) SupportsTimingTable(ctx context.Context) (bool, error) {
	ok, err := probeTable(ctx, s.conn, "series_observation_time")
	if err != nil {
		return false, fmt.Errorf("failed to probe timing table: %w", err)
	}
	return ok, nil
}

func (s *session) FindSeries(ctx context.Context, filter models.SeriesFilter) ([]models.Series, error) {
	rows, err := s.conn.QueryContext(ctx, findSeriesSQL,
		textArray(filter.Procedures),
		textArray(filter.ObservedProperties),
		textArray(filter.FeaturesOfInterest),
		textArray(filter.Offerings),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}

	var out []models.Series
	err = scanRows(rows, func() error {
		var (
			series      models.Series
			first, last sql.NullTime
		)
		if err := rows.Scan(
			&series.ID,
			&series.Procedure, &series.ProcedureName, &series.ProcedureDescriptionFormat,
			&series.ObservedProperty, &series.ObservedPropertyName,
			&series.FeatureOfInterest, &series.FeatureName,
			&series.Offering, &series.OfferingName,
			&first, &last,
		); err != nil {
			return err
		}
		if first.Valid && last.Valid {
			series.FirstTime = first.Time.UTC()
			series.LastTime = last.Time.UTC()
		}
		out = append(out, series)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read series: %w", err)
	}
	return out, nil
}

func (s *session) PrecompiledExtents(ctx context.Context, name string, q availability.ExtentQuery) ([]models.OfferingMinMaxTime, error) {
	query, err := precompiledSQL(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", availability.ErrUnknownQuery, err)
	}
	extents, err := s.extents(ctx, query, q.SeriesID, textArray(q.Offerings), q.PerOffering)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == undefinedFunction {
			return nil, fmt.Errorf("%w: %s: %w", availability.ErrUnknownQuery, name, err)
		}
		return nil, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return extents, nil
}

func (s *session) TimingTableExtents(ctx context.Context, q availability.ExtentQuery) ([]models.OfferingMinMaxTime, error) {
	extents, err := s.extents(ctx, timingTableExtentsSQL[q.PerOffering], q.SeriesID, textArray(q.Offerings))
	if err != nil {
		return nil, fmt.Errorf("failed to read timing table: %w", err)
	}
	return extents, nil
}

func (s *session) ObservationExtents(ctx context.Context, q availability.ExtentQuery) ([]models.OfferingMinMaxTime, error) {
	extents, err := s.extents(ctx, observationExtentsSQL[q.PerOffering], q.SeriesID, textArray(q.Offerings))
	if err != nil {
		return nil, fmt.Errorf("failed to scan observations: %w", err)
	}
	return extents, nil
}

// extents reads (offering, min, max) rows. Rows with a missing bound come
// from aggregates over no observations and are skipped.
func (s *session) extents(ctx context.Context, query string, args ...interface{}) ([]models.OfferingMinMaxTime, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var out []models.OfferingMinMaxTime
	err = scanRows(rows, func() error {
		var (
			offering string
			min, max sql.NullTime
		)
		if err := rows.Scan(&offering, &min, &max); err != nil {
			return err
		}
		if !min.Valid || !max.Valid {
			return nil
		}
		out = append(out, models.OfferingMinMaxTime{
			Offering: offering,
			Extent:   models.NewTimeExtent(min.Time.UTC(), max.Time.UTC()),
		})
		return nil
	})
	return out, err
}

func (s *session) CountObservations(ctx context.Context, seriesID int64) (int64, error) {
	var n int64
	if err := s.conn.QueryRowContext(ctx, countObservationsSQL, seriesID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count observations of series %d: %w", seriesID, err)
	}
	return n, nil
}

func (s *session) ResultTimes(ctx context.Context, seriesID int64, offerings []string, filter *models.TemporalFilter) ([]time.Time, error) {
	query, filterArgs, err := resultTimesSQL(filter)
	if err != nil {
		return nil, err
	}
	args := append([]interface{}{seriesID, textArray(offerings)}, filterArgs...)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query result times of series %d: %w", seriesID, err)
	}
	var out []time.Time
	err = scanRows(rows, func() error {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return err
		}
		out = append(out, t.UTC())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read result times of series %d: %w", seriesID, err)
	}
	return out, nil
}

// Close returns the connection to the pool.
func (s *session) Close() error {
	return s.conn.Close()
}

var _ availability.Session = (*session)(nil)
