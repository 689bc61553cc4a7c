// Package availability implements a data availability service for an
// observation store.
//
// # Architecture
//
// The service is structured into several key packages:
//   - availability: Series enumeration, time extent strategies, parent
//     offering synthesis and response assembly
//   - cache: Offering hierarchy and contents, refreshed in the background
//   - database: PostgreSQL store, capability probes and migrations
//   - api: Feature service client used for feature titles
//   - grpc: gRPC service, interceptors and health checking
//   - rest: HTTP endpoint, metrics and health
//   - scheduler: Periodic offering cache refresh
//   - models: Shared data structures
//
// Key Features
//
//   - Namespaces:
//     The legacy namespace reports one record per procedure, observed
//     property and feature of interest. The offering-aware namespace
//     breaks records down by offering and adds format descriptors and
//     metadata.
//
//   - Parent Offerings:
//     Requested parent offerings that own no data are reported with the
//     merged time extents of their children.
//
//   - Time Extents:
//     A precompiled database function is preferred, then the per-series
//     timing table, then a scan of the observations. Series carrying
//     first and last timestamps skip the query entirely.
//
// Example Usage
//
//	client := server.NewDataAvailabilityClient(conn)
//	in, _ := server.EncodeRequestBody(&server.RequestBody{
//	    Procedure: []string{"urn:procedure:thermometer"},
//	    Namespace: models.NamespaceOfferingAware,
//	})
//	out, err := client.GetDataAvailability(ctx, in)
//
// For more information about specific packages, see their respective
// documentation.
package availability
