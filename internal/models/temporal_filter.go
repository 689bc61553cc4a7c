package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Temporal operators accepted on the phenomenon time.
const (
	OperatorDuring  = "During"
	OperatorTEquals = "TEquals"
	OperatorBefore  = "Before"
	OperatorAfter   = "After"
)

var ErrInvalidTemporalFilter = errors.New("invalid temporal filter")

// TemporalFilter restricts observations by their phenomenon time. During
// takes a period, the other operators take an instant in Start.
type TemporalFilter struct {
	Operator string
	Start    time.Time
	End      time.Time
}

// Validate rejects operators and operand shapes that cannot be evaluated.
func (f *TemporalFilter) Validate() error {
	if f.Start.IsZero() {
		return fmt.Errorf("%w: %s requires a time operand", ErrInvalidTemporalFilter, f.Operator)
	}
	switch f.Operator {
	case OperatorDuring:
		if f.End.IsZero() {
			return fmt.Errorf("%w: During requires a time period", ErrInvalidTemporalFilter)
		}
		if f.End.Before(f.Start) {
			return fmt.Errorf("%w: period end before start", ErrInvalidTemporalFilter)
		}
	case OperatorTEquals, OperatorBefore, OperatorAfter:
		if !f.End.IsZero() {
			return fmt.Errorf("%w: %s requires a time instant", ErrInvalidTemporalFilter, f.Operator)
		}
	default:
		return fmt.Errorf("%w: unsupported operator %q", ErrInvalidTemporalFilter, f.Operator)
	}
	return nil
}

// Matches reports whether an observation with the given phenomenon time
// satisfies the filter.
func (f *TemporalFilter) Matches(phenomenon TimeExtent) bool {
	switch f.Operator {
	case OperatorDuring:
		return !phenomenon.Start.Before(f.Start) && !phenomenon.End.After(f.End)
	case OperatorTEquals:
		return phenomenon.Start.Equal(f.Start) && phenomenon.End.Equal(f.Start)
	case OperatorBefore:
		return phenomenon.End.Before(f.Start)
	case OperatorAfter:
		return phenomenon.Start.After(f.Start)
	}
	return false
}

// ParseTemporalFilter reads the compact "<operator>/<start>[/<end>]" form,
// times in RFC 3339. The result is validated.
func ParseTemporalFilter(expr string) (*TemporalFilter, error) {
	parts := strings.Split(expr, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("%w: expected <operator>/<start>[/<end>], got %q", ErrInvalidTemporalFilter, expr)
	}
	f := &TemporalFilter{Operator: parts[0]}
	var err error
	if f.Start, err = time.Parse(time.RFC3339, parts[1]); err != nil {
		return nil, fmt.Errorf("%w: start: %v", ErrInvalidTemporalFilter, err)
	}
	if len(parts) == 3 {
		if f.End, err = time.Parse(time.RFC3339, parts[2]); err != nil {
			return nil, fmt.Errorf("%w: end: %v", ErrInvalidTemporalFilter, err)
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// String renders the filter in the form ParseTemporalFilter reads.
func (f *TemporalFilter) String() string {
	s := f.Operator + "/" + f.Start.Format(time.RFC3339)
	if !f.End.IsZero() {
		s += "/" + f.End.Format(time.RFC3339)
	}
	return s
}
