// Package telemetry provides metric reporting for offline solve runs.
package telemetry

import (
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.viam.com/utils/perf"
)

// SolveLatency measures the end-to-end time of a full solve.
var SolveLatency = stats.Float64(
	"graphslam/solve_latency",
	"Time spent assembling and solving the constraint system",
	stats.UnitMilliseconds,
)

var solveLatencyView = &view.View{
	Name:        "graphslam/solve_latency",
	Measure:     SolveLatency,
	Description: "Distribution of full-solve latencies",
	Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000),
}

// Setup registers the solver views and starts a development exporter so
// spans and stats from a run are reported.
func Setup(reportingInterval time.Duration) (perf.Exporter, error) {
	if err := view.Register(solveLatencyView); err != nil {
		return nil, err
	}
	exporter := perf.NewDevelopmentExporterWithOptions(perf.DevelopmentExporterOptions{
		ReportingInterval: reportingInterval,
	})
	if err := exporter.Start(); err != nil {
		return nil, err
	}
	return exporter, nil
}
