package availability

import (
	"sort"

	"github.com/tejusbharadwaj/availability/internal/models"
)

// assemble packages the records into the response. Records without a
// phenomenon time are dropped.
func assemble(req *models.Request, records []*models.DataAvailability) *models.Response {
	out := make([]models.DataAvailability, 0, len(records))
	for _, record := range records {
		if record.PhenomenonTime.IsEmpty() {
			continue
		}
		r := *record
		if !req.OfferingAware() {
			r.Offering = nil
			r.FormatDescriptor = nil
			r.Metadata = nil
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Constellation(), out[j].Constellation()
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return out[i].OfferingHref() < out[j].OfferingHref()
	})

	responseFormat := req.ResponseFormat
	if responseFormat == "" {
		responseFormat = req.Namespace
	}
	return &models.Response{
		Namespace:          req.Namespace,
		ResponseFormat:     responseFormat,
		DataAvailabilities: out,
	}
}
