package models

import (
	"sort"
	"time"
)

// Response namespaces. The legacy namespace reports one record per
// constellation, the offering-aware one breaks records down by offering.
const (
	NamespaceLegacy        = "http://www.opengis.net/sosgda/1.0"
	NamespaceOfferingAware = "http://www.opengis.net/sosgda/2.0"
)

// ReferenceType is an identifier with an optional display title.
type ReferenceType struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

// Series is the unit of evaluation: a procedure, observed property and
// feature of interest, optionally bound to one offering.
type Series struct {
	ID int64

	Procedure                  string
	ProcedureName              string
	ProcedureDescriptionFormat string
	ObservedProperty           string
	ObservedPropertyName       string
	FeatureOfInterest          string
	FeatureName                string
	Offering                   string
	OfferingName               string

	// Precomputed extrema, zero when the store has not denormalized them.
	FirstTime time.Time
	LastTime  time.Time
}

// HasFirstLast reports whether the series row carries precomputed extrema.
func (s Series) HasFirstLast() bool {
	return !s.FirstTime.IsZero() && !s.LastTime.IsZero()
}

// SeriesFilter selects series. Empty fields match everything.
type SeriesFilter struct {
	Procedures         []string
	ObservedProperties []string
	FeaturesOfInterest []string
	Offerings          []string
}

// OfferingMinMaxTime is the time extent of a series within one offering.
// Offering is empty when the extent was computed across offerings.
type OfferingMinMaxTime struct {
	Offering string
	Extent   TimeExtent
}

// NamedValue is a metadata entry attached to a DataAvailability.
type NamedValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ObservationFormatDescriptor lists the observation types a response
// format can encode.
type ObservationFormatDescriptor struct {
	ResponseFormat   string   `json:"responseFormat"`
	ObservationTypes []string `json:"observationTypes"`
}

// FormatDescriptor describes how the data of a record can be retrieved.
type FormatDescriptor struct {
	ProcedureDescriptionFormat string                        `json:"procedureDescriptionFormat"`
	ObservationFormats         []ObservationFormatDescriptor `json:"observationFormats"`
}

// DataAvailability is a single availability record.
type DataAvailability struct {
	Procedure         *ReferenceType        `json:"procedure"`
	ObservedProperty  *ReferenceType        `json:"observedProperty"`
	FeatureOfInterest *ReferenceType        `json:"featureOfInterest"`
	Offering          *ReferenceType        `json:"offering,omitempty"`
	PhenomenonTime    TimeExtent            `json:"phenomenonTime"`
	Count             *int64                `json:"count,omitempty"`
	ResultTimes       []time.Time           `json:"resultTimes,omitempty"`
	FormatDescriptor  *FormatDescriptor     `json:"formatDescriptor,omitempty"`
	Metadata          map[string]NamedValue `json:"metadata,omitempty"`
}

// SameConstellation reports whether both records describe the same
// procedure, observed property and feature of interest. The offering is
// not compared.
func (d *DataAvailability) SameConstellation(other *DataAvailability) bool {
	return href(d.Procedure) == href(other.Procedure) &&
		href(d.ObservedProperty) == href(other.ObservedProperty) &&
		href(d.FeatureOfInterest) == href(other.FeatureOfInterest)
}

// Constellation returns the identifiers making up the record's constellation.
func (d *DataAvailability) Constellation() [3]string {
	return [3]string{href(d.Procedure), href(d.ObservedProperty), href(d.FeatureOfInterest)}
}

// OfferingHref returns the offering identifier or "" when absent.
func (d *DataAvailability) OfferingHref() string {
	return href(d.Offering)
}

// Clone copies the record. Reference instances are shared, the format
// descriptor, slices and maps are copied.
func (d *DataAvailability) Clone() *DataAvailability {
	c := *d
	if d.Count != nil {
		n := *d.Count
		c.Count = &n
	}
	if d.ResultTimes != nil {
		c.ResultTimes = append([]time.Time(nil), d.ResultTimes...)
	}
	if d.FormatDescriptor != nil {
		c.FormatDescriptor = d.FormatDescriptor.Clone()
	}
	if d.Metadata != nil {
		c.Metadata = make(map[string]NamedValue, len(d.Metadata))
		for k, v := range d.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// Clone copies the descriptor and its observation formats.
func (f *FormatDescriptor) Clone() *FormatDescriptor {
	c := &FormatDescriptor{ProcedureDescriptionFormat: f.ProcedureDescriptionFormat}
	if f.ObservationFormats != nil {
		c.ObservationFormats = make([]ObservationFormatDescriptor, len(f.ObservationFormats))
		for i, o := range f.ObservationFormats {
			c.ObservationFormats[i] = ObservationFormatDescriptor{
				ResponseFormat:   o.ResponseFormat,
				ObservationTypes: append([]string(nil), o.ObservationTypes...),
			}
		}
	}
	return c
}

func href(r *ReferenceType) string {
	if r == nil {
		return ""
	}
	return r.Href
}

// Extensions carries the optional request switches.
type Extensions struct {
	ShowCount            bool
	IncludeResultTimes   bool
	PhenomenonTimeFilter *TemporalFilter
}

// Request is a GetDataAvailability request.
type Request struct {
	Procedures         []string
	ObservedProperties []string
	FeaturesOfInterest []string
	Offerings          []string
	Namespace          string
	ResponseFormat     string
	Extensions         Extensions
}

// OfferingAware reports whether the request asks for the per-offering
// response shape.
func (r *Request) OfferingAware() bool {
	return r.Namespace == NamespaceOfferingAware
}

// Filter returns the series filter for the request.
func (r *Request) Filter() SeriesFilter {
	return SeriesFilter{
		Procedures:         r.Procedures,
		ObservedProperties: r.ObservedProperties,
		FeaturesOfInterest: r.FeaturesOfInterest,
		Offerings:          r.Offerings,
	}
}

// Response is the assembled GetDataAvailability response.
type Response struct {
	Namespace          string             `json:"namespace"`
	ResponseFormat     string             `json:"responseFormat"`
	DataAvailabilities []DataAvailability `json:"dataAvailabilities"`
}

// OfferingInfo describes an offering as stored, used to build the
// offering cache.
type OfferingInfo struct {
	Identifier         string
	Name               string
	Parents            []string
	Procedures         []string
	ObservedProperties []string
	FeaturesOfInterest []string
	ObservationTypes   []string
}

// SortedDistinct sorts times ascending and removes duplicates in place.
func SortedDistinct(times []time.Time) []time.Time {
	if len(times) == 0 {
		return times
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	out := times[:1]
	for _, t := range times[1:] {
		if !t.Equal(out[len(out)-1]) {
			out = append(out, t)
		}
	}
	return out
}
