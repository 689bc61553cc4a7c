package availability

import "github.com/tejusbharadwaj/availability/internal/models"

type constellationKey struct {
	constellation [3]string
	offering      string
}

func keyOf(record *models.DataAvailability, byOffering bool) constellationKey {
	k := constellationKey{constellation: record.Constellation()}
	if byOffering {
		k.offering = record.OfferingHref()
	}
	return k
}

// mergeByConstellation folds records sharing a constellation into the first
// one seen, extending its phenomenon time. When byOffering is set the
// offering is part of the key. Input order of the surviving records is
// kept. The surviving records are modified in place.
func mergeByConstellation(records []*models.DataAvailability, byOffering bool) []*models.DataAvailability {
	out := make([]*models.DataAvailability, 0, len(records))
	seen := make(map[constellationKey]*models.DataAvailability, len(records))
	for _, record := range records {
		k := keyOf(record, byOffering)
		if acc, ok := seen[k]; ok {
			acc.PhenomenonTime.ExtendToContain(record.PhenomenonTime)
			continue
		}
		seen[k] = record
		out = append(out, record)
	}
	return out
}
