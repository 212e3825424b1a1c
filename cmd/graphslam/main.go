// Package main runs an offline graph SLAM round trip: generate a synthetic
// dataset, solve it, report how far the estimate landed from ground truth,
// and optionally persist both to disk.
package main

import (
	"context"
	"time"

	"github.com/alecthomas/kong"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"go.opencensus.io/stats"
	"go.uber.org/zap/zapcore"
	"golang.org/x/exp/rand"

	"github.com/mapbuild/graphslam"
	"github.com/mapbuild/graphslam/config"
	"github.com/mapbuild/graphslam/dataprocess"
	"github.com/mapbuild/graphslam/simulator"
	"github.com/mapbuild/graphslam/telemetry"
)

const telemetryReportingInterval = 10 * time.Second

type arguments struct {
	WorldSize        float64  `default:"100" help:"Extent of the square world."`
	NumLandmarks     *int     `help:"Number of landmarks to place."`
	NumSteps         *int     `help:"Number of motion steps to simulate."`
	SensorRange      *float64 `help:"Per-axis landmark visibility range."`
	StepDistance     *float64 `help:"Commanded displacement per step."`
	MotionNoise      *float64 `help:"Motion noise magnitude."`
	MeasurementNoise *float64 `help:"Measurement noise magnitude."`
	Seed             uint64   `default:"1" help:"Seed for the dataset generator."`
	OutputDir        string   `help:"Directory for dataset and estimate files; empty disables saving."`
	Debug            bool     `help:"Enable debug logging and telemetry reporting."`
}

func main() {
	var args arguments
	kong.Parse(&args, kong.UsageOnError())

	logger := golog.NewDevelopmentLogger("graphslam")
	if args.Debug {
		logger = golog.NewDebugLogger("graphslam")
	}
	if err := realMain(args, logger); err != nil {
		logger.Fatal(err)
	}
}

func realMain(args arguments, logger golog.Logger) error {
	cfg := &config.Config{
		WorldSize:        args.WorldSize,
		NumLandmarks:     args.NumLandmarks,
		NumSteps:         args.NumSteps,
		SensorRange:      args.SensorRange,
		StepDistance:     args.StepDistance,
		MotionNoise:      args.MotionNoise,
		MeasurementNoise: args.MeasurementNoise,
		Seed:             args.Seed,
		OutputDirectory:  args.OutputDir,
	}
	if err := cfg.Validate("graphslam"); err != nil {
		return err
	}
	params, simCfg := config.GetOptionalParameters(cfg, logger)

	ctx := context.Background()
	if logger.Level() == zapcore.DebugLevel {
		exporter, err := telemetry.Setup(telemetryReportingInterval)
		if err != nil {
			return err
		}
		defer exporter.Stop()
	}

	src := rand.NewSource(cfg.Seed)
	dataset, err := simulator.Generate(simCfg, src, logger)
	if err != nil {
		return err
	}
	logger.Infow("dataset generated",
		"steps", len(dataset.Steps),
		"landmarks", len(dataset.TrueLandmarks),
		"seed", cfg.Seed,
	)

	start := time.Now()
	estimate, err := graphslam.Solve(ctx, dataset.Steps, params)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	stats.Record(ctx, telemetry.SolveLatency.M(float64(elapsed.Milliseconds())))

	finalPose := estimate.Poses[len(estimate.Poses)-1]
	trueFinal := dataset.TruePoses[len(dataset.TruePoses)-1]
	logger.Infow("solve complete",
		"elapsed", elapsed,
		"final_pose_x", finalPose.X,
		"final_pose_y", finalPose.Y,
		"final_pose_drift", finalPose.Sub(trueFinal).Norm(),
		"mean_landmark_error", meanLandmarkError(estimate.Landmarks, dataset.TrueLandmarks),
	)

	if cfg.OutputDirectory != "" {
		now := time.Now()
		stepsFile := dataprocess.CreateTimestampFilename(cfg.OutputDirectory, "dataset", ".json", now)
		if err := dataprocess.WriteStepsToFile(dataset.Steps, stepsFile); err != nil {
			return err
		}
		estimateFile := dataprocess.CreateTimestampFilename(cfg.OutputDirectory, "estimate", ".json", now)
		if err := dataprocess.WriteEstimateToFile(estimate, estimateFile); err != nil {
			return err
		}
		logger.Infow("run saved", "dataset", stepsFile, "estimate", estimateFile)
	}
	return nil
}

func meanLandmarkError(estimated, truth []r2.Point) float64 {
	if len(estimated) == 0 || len(estimated) != len(truth) {
		return 0
	}
	var total float64
	for i, lm := range estimated {
		total += lm.Sub(truth[i]).Norm()
	}
	return total / float64(len(estimated))
}
