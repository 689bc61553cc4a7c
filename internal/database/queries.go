package database

import (
	"database/sql/driver"
	"fmt"
	"regexp"

	"github.com/lib/pq"

	"github.com/tejusbharadwaj/availability/internal/models"
)

// undefinedFunction is the SQLSTATE Postgres reports for a call to a
// function that does not exist.
const undefinedFunction pq.ErrorCode = "42883"

var queryName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

const findSeriesSQL = `
	SELECT s.series_id,
	       p.identifier, COALESCE(p.name, ''), p.description_format,
	       op.identifier, COALESCE(op.name, ''),
	       f.identifier, COALESCE(f.name, ''),
	       COALESCE(o.identifier, ''), COALESCE(o.name, ''),
	       s.first_time_stamp, s.last_time_stamp
	FROM series s
	JOIN procedure p ON p.procedure_id = s.procedure_id
	JOIN observable_property op ON op.observable_property_id = s.observable_property_id
	JOIN feature_of_interest f ON f.feature_of_interest_id = s.feature_of_interest_id
	LEFT JOIN offering o ON o.offering_id = s.offering_id
	WHERE s.deleted = false AND s.published = true
	  AND (cardinality($1::text[]) = 0 OR p.identifier = ANY ($1::text[]))
	  AND (cardinality($2::text[]) = 0 OR op.identifier = ANY ($2::text[]))
	  AND (cardinality($3::text[]) = 0 OR f.identifier = ANY ($3::text[]))
	  AND (cardinality($4::text[]) = 0
	       OR o.identifier = ANY ($4::text[])
	       OR (s.offering_id IS NULL AND EXISTS (
	           SELECT 1 FROM observation obs
	           JOIN offering oo ON oo.offering_id = obs.offering_id
	           WHERE obs.series_id = s.series_id AND obs.deleted = false
	             AND oo.identifier = ANY ($4::text[]))))
	ORDER BY s.series_id`

const countObservationsSQL = `
	SELECT COUNT(*) FROM observation WHERE series_id = $1 AND deleted = false`

const probeFunctionSQL = `
	SELECT EXISTS (SELECT 1 FROM pg_proc WHERE proname = $1)`

const probeTableSQL = `SELECT to_regclass($1) IS NOT NULL`

const (
	loadOfferingsSQL = `SELECT identifier, COALESCE(name, '') FROM offering ORDER BY identifier`

	loadRelationsSQL = `
	SELECT p.identifier, c.identifier
	FROM offering_relation r
	JOIN offering p ON p.offering_id = r.parent_offering_id
	JOIN offering c ON c.offering_id = r.child_offering_id`

	loadContentsSQL = `
	SELECT DISTINCT o.identifier, p.identifier, op.identifier, f.identifier
	FROM series s
	JOIN procedure p ON p.procedure_id = s.procedure_id
	JOIN observable_property op ON op.observable_property_id = s.observable_property_id
	JOIN feature_of_interest f ON f.feature_of_interest_id = s.feature_of_interest_id
	JOIN offering o ON o.offering_id = s.offering_id
	WHERE s.deleted = false AND s.published = true
	UNION
	SELECT DISTINCT o.identifier, p.identifier, op.identifier, f.identifier
	FROM observation obs
	JOIN series s ON s.series_id = obs.series_id
	JOIN procedure p ON p.procedure_id = s.procedure_id
	JOIN observable_property op ON op.observable_property_id = s.observable_property_id
	JOIN feature_of_interest f ON f.feature_of_interest_id = s.feature_of_interest_id
	JOIN offering o ON o.offering_id = obs.offering_id
	WHERE obs.deleted = false AND s.deleted = false AND s.published = true`

	loadObservationTypesSQL = `
	SELECT o.identifier, ot.identifier
	FROM offering_observation_type oot
	JOIN offering o ON o.offering_id = oot.offering_id
	JOIN observation_type ot ON ot.observation_type_id = oot.observation_type_id`
)

// extentSQL builds a min/max query over a source that exposes an offering
// join and a start/end column pair. Without perOffering a single
// ungrouped row is returned.
func extentSQL(from, minColumn, maxColumn, where string, perOffering bool) string {
	offering, groupBy := `''`, ""
	if perOffering {
		offering, groupBy = "o.identifier", "GROUP BY o.identifier ORDER BY o.identifier"
	}
	return fmt.Sprintf(`
	SELECT %s, MIN(%s), MAX(%s)
	%s
	JOIN offering o ON o.offering_id = t.offering_id
	WHERE t.series_id = $1 %s
	  AND (cardinality($2::text[]) = 0 OR o.identifier = ANY ($2::text[]))
	%s`, offering, minColumn, maxColumn, from, where, groupBy)
}

var (
	observationExtentsSQL = map[bool]string{
		false: extentSQL("FROM observation t", "t.phenomenon_time_start", "t.phenomenon_time_end", "AND t.deleted = false", false),
		true:  extentSQL("FROM observation t", "t.phenomenon_time_start", "t.phenomenon_time_end", "AND t.deleted = false", true),
	}
	timingTableExtentsSQL = map[bool]string{
		false: extentSQL("FROM series_observation_time t", "t.min_phenomenon_time", "t.max_phenomenon_time", "", false),
		true:  extentSQL("FROM series_observation_time t", "t.min_phenomenon_time", "t.max_phenomenon_time", "", true),
	}
)

// precompiledSQL calls the named set-returning function. The name is
// checked against queryName before it is quoted.
func precompiledSQL(name string) (string, error) {
	if !queryName.MatchString(name) {
		return "", fmt.Errorf("invalid query name %q", name)
	}
	return fmt.Sprintf(
		`SELECT offering, min_time, max_time FROM %s($1, $2::text[], $3)`,
		pq.QuoteIdentifier(name),
	), nil
}

// resultTimesSQL selects the distinct result times of a series, narrowed
// by the temporal filter when one is given. Positional arguments $1 and $2
// are the series and offerings.
func resultTimesSQL(filter *models.TemporalFilter) (string, []interface{}, error) {
	predicate, args, err := temporalPredicate(filter, "obs", 3)
	if err != nil {
		return "", nil, err
	}
	query := `
	SELECT DISTINCT obs.result_time
	FROM observation obs
	JOIN offering o ON o.offering_id = obs.offering_id
	WHERE obs.series_id = $1 AND obs.deleted = false AND obs.result_time IS NOT NULL
	  AND (cardinality($2::text[]) = 0 OR o.identifier = ANY ($2::text[]))`
	if predicate != "" {
		query += "\n\t  AND " + predicate
	}
	return query + "\n\tORDER BY obs.result_time", args, nil
}

// temporalPredicate renders a phenomenon time filter on the given table
// alias, numbering placeholders from next.
func temporalPredicate(filter *models.TemporalFilter, alias string, next int) (string, []interface{}, error) {
	if filter == nil {
		return "", nil, nil
	}
	if err := filter.Validate(); err != nil {
		return "", nil, err
	}
	start := alias + ".phenomenon_time_start"
	end := alias + ".phenomenon_time_end"
	switch filter.Operator {
	case models.OperatorDuring:
		return fmt.Sprintf("%s >= $%d AND %s <= $%d", start, next, end, next+1),
			[]interface{}{filter.Start, filter.End}, nil
	case models.OperatorTEquals:
		return fmt.Sprintf("%s = $%d AND %s = $%d", start, next, end, next),
			[]interface{}{filter.Start}, nil
	case models.OperatorBefore:
		return fmt.Sprintf("%s < $%d", end, next), []interface{}{filter.Start}, nil
	case models.OperatorAfter:
		return fmt.Sprintf("%s > $%d", start, next), []interface{}{filter.Start}, nil
	}
	return "", nil, fmt.Errorf("%w: %s", models.ErrInvalidTemporalFilter, filter.Operator)
}

// textArray binds an identifier list as a text[] parameter. A nil slice
// would be sent as NULL, which the cardinality checks do not accept.
func textArray(values []string) driver.Valuer {
	if values == nil {
		values = []string{}
	}
	return pq.StringArray(values)
}
