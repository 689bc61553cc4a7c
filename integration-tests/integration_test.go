//go:build integration
// +build integration

package integration_test

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/tejusbharadwaj/availability/internal/api"
	"github.com/tejusbharadwaj/availability/internal/availability"
	"github.com/tejusbharadwaj/availability/internal/cache"
	"github.com/tejusbharadwaj/availability/internal/database"
	server "github.com/tejusbharadwaj/availability/internal/grpc"
	"github.com/tejusbharadwaj/availability/internal/models"
)

const bufSize = 1024 * 1024

var logger *logrus.Logger

// Helper function to get environment variables with defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func connString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnvOrDefault("DB_HOST", "db"),
		getEnvOrDefault("DB_PORT", "5432"),
		getEnvOrDefault("DB_USER", "availability"),
		getEnvOrDefault("DB_PASSWORD", "availability"),
		getEnvOrDefault("DB_NAME", "availability"),
	)
}

func hour(h int) time.Time {
	return time.Date(2020, time.June, 1, h, 0, 0, 0, time.UTC)
}

// setupTestDB migrates the schema and seeds one parent offering with two
// children:
//
//	series 1: thermometer/temperature/river, offering CHILD_A, hours 1-2
//	series 2: thermometer/temperature/river, offering CHILD_B, hours 5-6
//	series 3: thermometer/temperature/lake, no offering, observations in
//	          CHILD_A (hours 3-4) and CHILD_B (hour 8)
func setupTestDB(t *testing.T) (*database.PostgresRepo, *sql.DB) {
	repo, err := database.NewPostgresRepo(connString(), 5)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(context.Background(), logger))

	db, err := sql.Open("postgres", connString())
	require.NoError(t, err)

	// Clean up any existing test data
	_, err = db.Exec(`TRUNCATE TABLE observation, series, offering_relation, offering_observation_type,
		observation_type, feature_of_interest, observable_property, procedure, offering
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	exec := func(query string, args ...interface{}) {
		t.Helper()
		_, err := db.Exec(query, args...)
		require.NoError(t, err, query)
	}

	exec(`INSERT INTO offering (identifier, name) VALUES ('PARENT', 'All stations'), ('CHILD_A', 'Station A'), ('CHILD_B', 'Station B')`)
	exec(`INSERT INTO offering_relation VALUES (1, 2), (1, 3)`)
	exec(`INSERT INTO observation_type (identifier) VALUES ('http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_Measurement')`)
	exec(`INSERT INTO offering_observation_type VALUES (2, 1), (3, 1)`)
	exec(`INSERT INTO procedure (identifier, name) VALUES ('thermometer', 'Thermometer')`)
	exec(`INSERT INTO observable_property (identifier, name) VALUES ('temperature', 'Temperature')`)
	exec(`INSERT INTO feature_of_interest (identifier, name) VALUES ('river', 'River'), ('lake', 'Lake')`)
	exec(`INSERT INTO series (procedure_id, observable_property_id, feature_of_interest_id, offering_id)
		VALUES (1, 1, 1, 2), (1, 1, 1, 3), (1, 1, 2, NULL)`)

	for _, o := range []struct {
		series, offering int
		start, end       int
	}{
		{1, 2, 1, 1}, {1, 2, 2, 2},
		{2, 3, 5, 5}, {2, 3, 6, 6},
		{3, 2, 3, 4}, {3, 3, 8, 8},
	} {
		exec(`INSERT INTO observation (series_id, offering_id, phenomenon_time_start, phenomenon_time_end, result_time, value)
			VALUES ($1, $2, $3, $4, $4, 1.0)`, o.series, o.offering, hour(o.start), hour(o.end))
	}

	t.Cleanup(func() {
		db.Close()
		repo.Close()
	})
	return repo, db
}

func setupGRPCServer(t *testing.T, service server.AvailabilityService) *server.DataAvailabilityClient {
	lis := bufconn.Listen(bufSize)

	srv, _, err := server.SetupServer(service, server.DefaultServerConfig(), logger, prometheus.NewRegistry())
	require.NoError(t, err)

	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Errorf("Error serving: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
		lis.Close()
	})
	return server.NewDataAvailabilityClient(conn)
}

// Move setup code into a helper function
func setupTestEnvironment(t *testing.T, config availability.Config, features availability.FeatureResolver) *server.DataAvailabilityClient {
	logger = logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	repo, _ := setupTestDB(t)

	offerings := cache.New(repo)
	require.NoError(t, offerings.Refresh(context.Background()))

	service := availability.NewService(repo, offerings, features, config, logger)
	return setupGRPCServer(t, service)
}

func query(t *testing.T, client *server.DataAvailabilityClient, body *server.RequestBody) *models.Response {
	t.Helper()
	in, err := server.EncodeRequestBody(body)
	require.NoError(t, err)
	out, err := client.GetDataAvailability(context.Background(), in)
	require.NoError(t, err)
	resp, err := server.DecodeResponse(out)
	require.NoError(t, err)
	return resp
}

func TestLegacyNamespace(t *testing.T) {
	client := setupTestEnvironment(t, availability.Config{}, nil)

	resp := query(t, client, &server.RequestBody{})
	assert.Equal(t, models.NamespaceLegacy, resp.Namespace)
	require.Len(t, resp.DataAvailabilities, 2)

	lake, river := resp.DataAvailabilities[0], resp.DataAvailabilities[1]
	assert.Equal(t, "lake", lake.FeatureOfInterest.Href)
	assert.Equal(t, models.NewTimeExtent(hour(3), hour(8)), lake.PhenomenonTime)
	assert.Equal(t, "river", river.FeatureOfInterest.Href)
	assert.Equal(t, models.NewTimeExtent(hour(1), hour(6)), river.PhenomenonTime)
	assert.Nil(t, river.Offering)
}

func TestOfferingAwareNamespace(t *testing.T) {
	client := setupTestEnvironment(t, availability.Config{PrecompiledQuery: "series_time_extrema"}, nil)

	resp := query(t, client, &server.RequestBody{
		Offering:  []string{"PARENT"},
		Namespace: models.NamespaceOfferingAware,
		Extensions: server.ExtensionsBody{
			ShowCount:          true,
			IncludeResultTimes: true,
		},
	})

	byKey := make(map[string]models.DataAvailability)
	for _, r := range resp.DataAvailabilities {
		byKey[r.FeatureOfInterest.Href+"@"+r.Offering.Href] = r
	}
	require.Contains(t, byKey, "river@PARENT")
	require.Contains(t, byKey, "lake@PARENT")

	assert.Equal(t, models.NewTimeExtent(hour(1), hour(6)), byKey["river@PARENT"].PhenomenonTime)
	assert.Equal(t, models.NewTimeExtent(hour(3), hour(8)), byKey["lake@PARENT"].PhenomenonTime)
	assert.Equal(t, models.NewTimeExtent(hour(3), hour(4)), byKey["lake@CHILD_A"].PhenomenonTime)
	assert.Equal(t, models.NewTimeExtent(hour(8), hour(8)), byKey["lake@CHILD_B"].PhenomenonTime)

	childA := byKey["river@CHILD_A"]
	require.NotNil(t, childA.Count)
	assert.Equal(t, int64(2), *childA.Count)
	assert.Equal(t, []time.Time{hour(1), hour(2)}, childA.ResultTimes)
	require.NotNil(t, childA.FormatDescriptor)
	assert.Equal(t, "Station A", childA.Offering.Title)
	assert.Equal(t, "Thermometer", childA.Procedure.Title)
}

func TestStrategiesAgree(t *testing.T) {
	logger = logrus.New()
	repo, db := setupTestDB(t)

	// Soft delete the last river observation of CHILD_B and remove the only
	// lake observation of CHILD_B.
	_, err := db.Exec(`UPDATE observation SET deleted = true WHERE series_id = 2 AND phenomenon_time_start = $1`, hour(6))
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM observation WHERE series_id = 3 AND offering_id = 3`)
	require.NoError(t, err)

	offerings := cache.New(repo)
	require.NoError(t, offerings.Refresh(context.Background()))

	var responses []*models.Response
	for _, config := range []availability.Config{
		{PrecompiledQuery: "series_time_extrema"},
		{},
	} {
		client := setupGRPCServer(t, availability.NewService(repo, offerings, nil, config, logger))
		responses = append(responses, query(t, client, &server.RequestBody{
			Namespace: models.NamespaceOfferingAware,
		}))
	}

	require.Len(t, responses, 2)
	a, b := responses[0], responses[1]
	require.Equal(t, len(a.DataAvailabilities), len(b.DataAvailabilities))
	for i := range a.DataAvailabilities {
		assert.Equal(t, a.DataAvailabilities[i].PhenomenonTime, b.DataAvailabilities[i].PhenomenonTime)
		assert.Equal(t, a.DataAvailabilities[i].Offering.Href, b.DataAvailabilities[i].Offering.Href)
	}

	for _, resp := range responses {
		byKey := make(map[string]models.DataAvailability)
		for _, r := range resp.DataAvailabilities {
			byKey[r.FeatureOfInterest.Href+"@"+r.Offering.Href] = r
		}
		require.Contains(t, byKey, "river@CHILD_B")
		assert.Equal(t, models.NewTimeExtent(hour(5), hour(5)), byKey["river@CHILD_B"].PhenomenonTime)
		assert.NotContains(t, byKey, "lake@CHILD_B")
	}
}

func TestTimingTableFollowsObservationChanges(t *testing.T) {
	logger = logrus.New()
	_, db := setupTestDB(t)

	extent := func(series, offering int) (time.Time, time.Time, bool) {
		t.Helper()
		var start, end time.Time
		err := db.QueryRow(`SELECT min_phenomenon_time, max_phenomenon_time FROM series_observation_time
			WHERE series_id = $1 AND offering_id = $2`, series, offering).Scan(&start, &end)
		if err == sql.ErrNoRows {
			return time.Time{}, time.Time{}, false
		}
		require.NoError(t, err)
		return start.UTC(), end.UTC(), true
	}
	exec := func(query string, args ...interface{}) {
		t.Helper()
		_, err := db.Exec(query, args...)
		require.NoError(t, err, query)
	}

	start, end, ok := extent(2, 3)
	require.True(t, ok)
	assert.Equal(t, hour(5), start)
	assert.Equal(t, hour(6), end)

	exec(`UPDATE observation SET deleted = true WHERE series_id = 2 AND phenomenon_time_start = $1`, hour(6))
	_, end, ok = extent(2, 3)
	require.True(t, ok)
	assert.Equal(t, hour(5), end, "soft delete shrinks the extent")

	exec(`UPDATE observation SET deleted = false WHERE series_id = 2 AND phenomenon_time_start = $1`, hour(6))
	_, end, ok = extent(2, 3)
	require.True(t, ok)
	assert.Equal(t, hour(6), end, "undelete restores the extent")

	exec(`UPDATE observation SET phenomenon_time_start = $1, phenomenon_time_end = $1
		WHERE series_id = 2 AND phenomenon_time_start = $2`, hour(9), hour(6))
	_, end, ok = extent(2, 3)
	require.True(t, ok)
	assert.Equal(t, hour(9), end, "moved observation")

	exec(`UPDATE observation SET offering_id = 2 WHERE series_id = 3 AND offering_id = 3`)
	_, _, ok = extent(3, 3)
	assert.False(t, ok, "row removed when nothing is left")
	start, end, ok = extent(3, 2)
	require.True(t, ok)
	assert.Equal(t, hour(3), start)
	assert.Equal(t, hour(8), end)

	exec(`DELETE FROM observation WHERE series_id = 2`)
	_, _, ok = extent(2, 3)
	assert.False(t, ok)
}

func TestFeatureTitles(t *testing.T) {
	features := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/features/river" {
			w.Write([]byte(`{"identifier":"river","name":"River Thames"}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer features.Close()

	fetcher, err := api.NewFeatureFetcher(features.URL, 16, time.Second, logrus.New())
	require.NoError(t, err)

	client := setupTestEnvironment(t, availability.Config{}, fetcher)
	resp := query(t, client, &server.RequestBody{})

	titles := make(map[string]string)
	for _, r := range resp.DataAvailabilities {
		titles[r.FeatureOfInterest.Href] = r.FeatureOfInterest.Title
	}
	assert.Equal(t, "River Thames", titles["river"])
	assert.Equal(t, "Lake", titles["lake"], "falls back to the stored name")
}

func TestErrorCases(t *testing.T) {
	client := setupTestEnvironment(t, availability.Config{PrecompiledQuery: "missing_function"}, nil)

	testCases := []struct {
		name     string
		body     *server.RequestBody
		wantCode codes.Code
	}{
		{"invalid namespace", &server.RequestBody{Namespace: "urn:x"}, codes.InvalidArgument},
		{"invalid filter", &server.RequestBody{Extensions: server.ExtensionsBody{PhenomenonTime: "Before/x"}}, codes.InvalidArgument},
		{"missing precompiled query falls back", &server.RequestBody{}, codes.OK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := server.EncodeRequestBody(tc.body)
			require.NoError(t, err)
			_, err = client.GetDataAvailability(context.Background(), in)
			assert.Equal(t, tc.wantCode, status.Code(err))
		})
	}
}

func TestRateLimiting(t *testing.T) {
	logger = logrus.New()
	repo, _ := setupTestDB(t)
	offerings := cache.New(repo)
	require.NoError(t, offerings.Refresh(context.Background()))
	service := availability.NewService(repo, offerings, nil, availability.Config{}, logger)

	lis := bufconn.Listen(bufSize)
	srv, _, err := server.SetupServer(service, server.ServerConfig{RateLimit: 1, RateLimitBurst: 2}, logger, prometheus.NewRegistry())
	require.NoError(t, err)
	go srv.Serve(lis)
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()
	client := server.NewDataAvailabilityClient(conn)

	in, err := server.EncodeRequestBody(&server.RequestBody{})
	require.NoError(t, err)

	var limited bool
	for i := 0; i < 10; i++ {
		if _, err := client.GetDataAvailability(context.Background(), in); err != nil {
			assert.Equal(t, codes.ResourceExhausted, status.Code(err))
			limited = true
			break
		}
	}
	assert.True(t, limited)
}
