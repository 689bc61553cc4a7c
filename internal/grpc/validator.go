package server

import (
	"fmt"
	"strings"

	"github.com/tejusbharadwaj/availability/internal/models"
)

const maxIdentifiers = 1000

// RequestBody is the wire form of a GetDataAvailability request, shared by
// the gRPC and HTTP transports.
type RequestBody struct {
	Procedure         []string       `json:"procedure,omitempty"`
	ObservedProperty  []string       `json:"observedProperty,omitempty"`
	FeatureOfInterest []string       `json:"featureOfInterest,omitempty"`
	Offering          []string       `json:"offering,omitempty"`
	Namespace         string         `json:"namespace,omitempty"`
	ResponseFormat    string         `json:"responseFormat,omitempty"`
	Extensions        ExtensionsBody `json:"extensions,omitempty"`
}

type ExtensionsBody struct {
	ShowCount          bool   `json:"showCount,omitempty"`
	IncludeResultTimes bool   `json:"includeResultTimes,omitempty"`
	PhenomenonTime     string `json:"phenomenonTime,omitempty"`
}

type RequestValidator struct {
	validNamespaces map[string]bool
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validNamespaces: map[string]bool{
			"":                            true,
			models.NamespaceLegacy:        true,
			models.NamespaceOfferingAware: true,
		},
	}
}

// Validate checks the request body and converts it into a request
func (v *RequestValidator) Validate(body *RequestBody) (*models.Request, error) {
	// Validate namespace
	if !v.validNamespaces[body.Namespace] {
		return nil, fmt.Errorf("invalid namespace: %s", body.Namespace)
	}

	// Validate identifier lists
	for _, field := range []struct {
		name   string
		values []string
	}{
		{"procedure", body.Procedure},
		{"observedProperty", body.ObservedProperty},
		{"featureOfInterest", body.FeatureOfInterest},
		{"offering", body.Offering},
	} {
		if len(field.values) > maxIdentifiers {
			return nil, fmt.Errorf("too many values for %s", field.name)
		}
		for _, value := range field.values {
			if strings.TrimSpace(value) == "" {
				return nil, fmt.Errorf("empty identifier in %s", field.name)
			}
		}
	}

	if body.ResponseFormat != "" && strings.TrimSpace(body.ResponseFormat) == "" {
		return nil, fmt.Errorf("invalid response format")
	}

	req := &models.Request{
		Procedures:         body.Procedure,
		ObservedProperties: body.ObservedProperty,
		FeaturesOfInterest: body.FeatureOfInterest,
		Offerings:          body.Offering,
		Namespace:          body.Namespace,
		ResponseFormat:     body.ResponseFormat,
		Extensions: models.Extensions{
			ShowCount:          body.Extensions.ShowCount,
			IncludeResultTimes: body.Extensions.IncludeResultTimes,
		},
	}

	// Validate temporal filter
	if body.Extensions.PhenomenonTime != "" {
		filter, err := models.ParseTemporalFilter(body.Extensions.PhenomenonTime)
		if err != nil {
			return nil, err
		}
		req.Extensions.PhenomenonTimeFilter = filter
	}

	return req, nil
}
