// Package api contains clients for the HTTP services the availability
// service depends on.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
)

// FeatureResponse is the feature service representation of a feature.
type FeatureResponse struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

var (
	ErrFeatureRequest = errors.New("error making feature request")
	ErrFeatureStatus  = errors.New("error status from feature service")
)

// FeatureFetcher resolves feature of interest titles from a feature
// service. Lookups, including misses, are kept in an LRU cache.
type FeatureFetcher struct {
	apiURL  string
	client  *http.Client
	timeout time.Duration
	titles  *lru.Cache
	logger  *logrus.Logger
}

// NewFeatureFetcher creates a client for the feature service at apiURL.
// A zero timeout defaults to five seconds.
func NewFeatureFetcher(apiURL string, cacheSize int, timeout time.Duration, logger *logrus.Logger) (*FeatureFetcher, error) {
	titles, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create feature cache: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &FeatureFetcher{
		apiURL:  apiURL,
		client:  http.DefaultClient,
		timeout: timeout,
		titles:  titles,
		logger:  logger,
	}, nil
}

// FetchFeature requests a single feature. A missing feature is reported
// as (nil, nil).
func (f *FeatureFetcher) FetchFeature(ctx context.Context, identifier string) (*FeatureResponse, error) {
	endpoint := fmt.Sprintf("%s/features/%s", f.apiURL, url.PathEscape(identifier))

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeatureRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeatureRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: got %d", ErrFeatureStatus, resp.StatusCode)
	}

	var feature FeatureResponse
	if err := json.NewDecoder(resp.Body).Decode(&feature); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	return &feature, nil
}

// FeatureTitle returns the feature's name. Service failures are logged
// and reported as no title so they never fail a request.
func (f *FeatureFetcher) FeatureTitle(ctx context.Context, identifier string) (string, bool) {
	if cached, ok := f.titles.Get(identifier); ok {
		title := cached.(string)
		return title, title != ""
	}

	feature, err := f.FetchFeature(ctx, identifier)
	if err != nil {
		f.logger.WithError(err).WithField("feature", identifier).Warn("Failed to resolve feature title")
		return "", false
	}

	var title string
	if feature != nil {
		title = feature.Name
	}
	f.titles.Add(identifier, title)
	return title, title != ""
}
