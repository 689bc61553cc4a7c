package availability

import (
	"sort"

	"github.com/tejusbharadwaj/availability/internal/models"
)

const responseFormatOM20 = "http://www.opengis.net/om/2.0"

// FormatRegistry maps observation types to the response formats that can
// encode them.
type FormatRegistry map[string][]string

// DefaultFormatRegistry registers the O&M 2.0 encoding for the O&M 2.0
// observation types.
func DefaultFormatRegistry() FormatRegistry {
	registry := FormatRegistry{}
	for _, observationType := range []string{
		"http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_Measurement",
		"http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_CountObservation",
		"http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_CategoryObservation",
		"http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_TruthObservation",
		"http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_TextObservation",
	} {
		registry[observationType] = []string{responseFormatOM20}
	}
	return registry
}

// descriptor builds the format descriptor for a procedure description
// format and the observation types of an offering. Response formats and
// their observation types are sorted.
func (r FormatRegistry) descriptor(procedureDescriptionFormat string, observationTypes []string) *models.FormatDescriptor {
	byFormat := make(map[string]map[string]bool)
	for _, observationType := range observationTypes {
		for _, format := range r[observationType] {
			if byFormat[format] == nil {
				byFormat[format] = make(map[string]bool)
			}
			byFormat[format][observationType] = true
		}
	}

	fd := &models.FormatDescriptor{ProcedureDescriptionFormat: procedureDescriptionFormat}
	for format, types := range byFormat {
		ofd := models.ObservationFormatDescriptor{ResponseFormat: format}
		for observationType := range types {
			ofd.ObservationTypes = append(ofd.ObservationTypes, observationType)
		}
		sort.Strings(ofd.ObservationTypes)
		fd.ObservationFormats = append(fd.ObservationFormats, ofd)
	}
	sort.Slice(fd.ObservationFormats, func(i, j int) bool {
		return fd.ObservationFormats[i].ResponseFormat < fd.ObservationFormats[j].ResponseFormat
	})
	return fd
}
