package models

import (
	"encoding/json"
	"time"
)

// TimeExtent is an inclusive [Start, End] range. A zero time.Time is an
// absent bound; the extent is empty when Start is absent.
type TimeExtent struct {
	Start time.Time
	End   time.Time
}

// NewTimeExtent returns the extent [start, end].
func NewTimeExtent(start, end time.Time) TimeExtent {
	return TimeExtent{Start: start, End: end}
}

// IsEmpty reports whether the extent has no start.
func (e TimeExtent) IsEmpty() bool {
	return e.Start.IsZero()
}

// ExtendToContain enlarges e so that it covers other. An absent bound on
// either side is replaced by the bound of the other side.
func (e *TimeExtent) ExtendToContain(other TimeExtent) {
	if !other.Start.IsZero() && (e.Start.IsZero() || other.Start.Before(e.Start)) {
		e.Start = other.Start
	}
	if !other.End.IsZero() && (e.End.IsZero() || other.End.After(e.End)) {
		e.End = other.End
	}
}

// Contains reports whether t lies within the extent.
func (e TimeExtent) Contains(t time.Time) bool {
	if e.IsEmpty() {
		return false
	}
	if t.Before(e.Start) {
		return false
	}
	return e.End.IsZero() || !t.After(e.End)
}

type timeExtentJSON struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// MarshalJSON omits absent bounds.
func (e TimeExtent) MarshalJSON() ([]byte, error) {
	var v timeExtentJSON
	if !e.Start.IsZero() {
		v.Start = &e.Start
	}
	if !e.End.IsZero() {
		v.End = &e.End
	}
	return json.Marshal(v)
}

// UnmarshalJSON reads absent bounds as zero times.
func (e *TimeExtent) UnmarshalJSON(data []byte) error {
	var v timeExtentJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = TimeExtent{}
	if v.Start != nil {
		e.Start = *v.Start
	}
	if v.End != nil {
		e.End = *v.End
	}
	return nil
}
