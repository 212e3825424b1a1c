package graphslam_test

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"golang.org/x/exp/rand"

	"github.com/mapbuild/graphslam"
	"github.com/mapbuild/graphslam/simulator"
)

func TestSolveAnchoring(t *testing.T) {
	// a single pose with no motions and no landmarks sits at the world center
	est, err := graphslam.Solve(context.Background(), nil, graphslam.Params{
		WorldSize:        100,
		MotionNoise:      2,
		MeasurementNoise: 2,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.Landmarks, test.ShouldHaveLength, 0)
	test.That(t, est.Poses, test.ShouldHaveLength, 1)
	test.That(t, est.Poses[0].X, test.ShouldAlmostEqual, 50.0, 1e-9)
	test.That(t, est.Poses[0].Y, test.ShouldAlmostEqual, 50.0, 1e-9)
}

func TestSolveConfigurationErrors(t *testing.T) {
	for _, tc := range []struct {
		msg    string
		params graphslam.Params
	}{
		{"zero world size", graphslam.Params{MotionNoise: 2, MeasurementNoise: 2}},
		{"negative world size", graphslam.Params{WorldSize: -5, MotionNoise: 2, MeasurementNoise: 2}},
		{"zero motion noise", graphslam.Params{WorldSize: 10, MeasurementNoise: 2}},
		{"negative motion noise", graphslam.Params{WorldSize: 10, MotionNoise: -1, MeasurementNoise: 2}},
		{"zero measurement noise", graphslam.Params{WorldSize: 10, MotionNoise: 2}},
		{"negative landmark count", graphslam.Params{WorldSize: 10, MotionNoise: 2, MeasurementNoise: 2, NumLandmarks: -1}},
	} {
		t.Run(tc.msg, func(t *testing.T) {
			_, err := graphslam.Solve(context.Background(), nil, tc.params)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, graphslam.ErrConfiguration), test.ShouldBeTrue)
		})
	}
}

func TestSolveIndexValidation(t *testing.T) {
	steps := []graphslam.TimeStep{{
		Measurements: []graphslam.Measurement{{Landmark: 2, Offset: r2.Point{X: 1, Y: 1}}},
		Motion:       r2.Point{X: 1, Y: 0},
	}}
	_, err := graphslam.Solve(context.Background(), steps, graphslam.Params{
		WorldSize:        10,
		MotionNoise:      2,
		MeasurementNoise: 2,
		NumLandmarks:     2,
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, graphslam.ErrData), test.ShouldBeTrue)
}

func TestSolveTranslationRecovery(t *testing.T) {
	// noise-free motions in the zero-noise limit: the trajectory is the
	// anchor plus the running sum of motions
	steps := []graphslam.TimeStep{
		{Motion: r2.Point{X: 1, Y: 2}},
		{Motion: r2.Point{X: 1, Y: 2}},
		{Motion: r2.Point{X: 1, Y: 2}},
	}
	est, err := graphslam.Solve(context.Background(), steps, graphslam.Params{
		WorldSize:        100,
		MotionNoise:      1e-6,
		MeasurementNoise: 1e-6,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.Poses, test.ShouldHaveLength, 4)
	test.That(t, est.Poses[3].X, test.ShouldAlmostEqual, 53.0, 1e-6)
	test.That(t, est.Poses[3].Y, test.ShouldAlmostEqual, 56.0, 1e-6)
}

func TestSolveLandmarkTriangulation(t *testing.T) {
	// world center is (5,5); the landmark sits at (7,8) and is sensed
	// consistently from two poses joined by a known motion
	steps := []graphslam.TimeStep{
		{
			Measurements: []graphslam.Measurement{{Landmark: 0, Offset: r2.Point{X: 2, Y: 3}}},
			Motion:       r2.Point{X: 3, Y: 0},
		},
		{
			Measurements: []graphslam.Measurement{{Landmark: 0, Offset: r2.Point{X: -1, Y: 3}}},
			Motion:       r2.Point{X: 0, Y: 1},
		},
	}
	est, err := graphslam.Solve(context.Background(), steps, graphslam.Params{
		WorldSize:        10,
		MotionNoise:      1e-4,
		MeasurementNoise: 1e-4,
		NumLandmarks:     1,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.Poses[0].X, test.ShouldAlmostEqual, 5.0, 1e-6)
	test.That(t, est.Poses[0].Y, test.ShouldAlmostEqual, 5.0, 1e-6)
	test.That(t, est.Poses[1].X, test.ShouldAlmostEqual, 8.0, 1e-6)
	test.That(t, est.Poses[1].Y, test.ShouldAlmostEqual, 5.0, 1e-6)
	test.That(t, est.Landmarks[0].X, test.ShouldAlmostEqual, 7.0, 1e-6)
	test.That(t, est.Landmarks[0].Y, test.ShouldAlmostEqual, 8.0, 1e-6)
}

func TestSolveUnmeasuredLandmark(t *testing.T) {
	steps := []graphslam.TimeStep{{Motion: r2.Point{X: 1, Y: 1}}}
	_, err := graphslam.Solve(context.Background(), steps, graphslam.Params{
		WorldSize:        10,
		MotionNoise:      2,
		MeasurementNoise: 2,
		NumLandmarks:     1,
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, graphslam.ErrSingularSystem), test.ShouldBeTrue)
}

func TestSolveDeterminism(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := simulator.Config{
		WorldSize:        100,
		SensorRange:      200,
		MotionNoise:      2,
		MeasurementNoise: 2,
		StepDistance:     10,
		NumLandmarks:     5,
		NumSteps:         20,
	}
	dataset, err := simulator.Generate(cfg, rand.NewSource(42), logger)
	test.That(t, err, test.ShouldBeNil)

	params := graphslam.Params{
		WorldSize:        cfg.WorldSize,
		MotionNoise:      cfg.MotionNoise,
		MeasurementNoise: cfg.MeasurementNoise,
		NumLandmarks:     cfg.NumLandmarks,
	}
	first, err := graphslam.Solve(context.Background(), dataset.Steps, params)
	test.That(t, err, test.ShouldBeNil)
	second, err := graphslam.Solve(context.Background(), dataset.Steps, params)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second, test.ShouldResemble, first)
}

func TestSolveSimulatedRun(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := simulator.Config{
		WorldSize:        100,
		SensorRange:      200, // every landmark visible from everywhere
		MotionNoise:      2,
		MeasurementNoise: 2,
		StepDistance:     10,
		NumLandmarks:     5,
		NumSteps:         20,
	}
	dataset, err := simulator.Generate(cfg, rand.NewSource(7), logger)
	test.That(t, err, test.ShouldBeNil)

	est, err := graphslam.Solve(context.Background(), dataset.Steps, graphslam.Params{
		WorldSize:        cfg.WorldSize,
		MotionNoise:      cfg.MotionNoise,
		MeasurementNoise: cfg.MeasurementNoise,
		NumLandmarks:     cfg.NumLandmarks,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.Poses, test.ShouldHaveLength, cfg.NumSteps+1)
	test.That(t, est.Landmarks, test.ShouldHaveLength, cfg.NumLandmarks)

	// with every landmark sensed at every step the estimate should land well
	// within the noise magnitude of the truth
	for i, lm := range est.Landmarks {
		drift := lm.Sub(dataset.TrueLandmarks[i]).Norm()
		test.That(t, drift, test.ShouldBeLessThan, 5.0)
	}
}
