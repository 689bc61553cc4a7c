package availability

import "github.com/prometheus/client_golang/prometheus"

// TimeExtentResolutions counts resolved series time extents by strategy.
var TimeExtentResolutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "availability_time_extent_resolutions_total",
		Help: "Number of series time extents resolved, by strategy.",
	},
	[]string{"strategy"},
)
