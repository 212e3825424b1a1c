// Package config implements attribute evaluation for offline graphslam runs.
package config

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/mapbuild/graphslam"
	"github.com/mapbuild/graphslam/simulator"
)

const (
	defaultNumLandmarks     = 5
	defaultNumSteps         = 20
	defaultMotionNoise      = 2.0
	defaultMeasurementNoise = 2.0
)

// newError returns an error specific to a failure in the graphslam config.
func newError(configError string) error {
	return errors.Errorf("graphslam configuration error: %s", configError)
}

// Config describes how to configure an offline run: world generation plus
// the solve.
type Config struct {
	WorldSize        float64  `json:"world_size"`
	NumLandmarks     *int     `json:"num_landmarks"`
	NumSteps         *int     `json:"num_steps"`
	SensorRange      *float64 `json:"sensor_range"`
	StepDistance     *float64 `json:"step_distance"`
	MotionNoise      *float64 `json:"motion_noise"`
	MeasurementNoise *float64 `json:"measurement_noise"`
	Seed             uint64   `json:"seed"`
	OutputDirectory  string   `json:"output_dir"`
}

// Validate checks required fields and value ranges.
func (config *Config) Validate(path string) error {
	if config.WorldSize == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "world_size")
	}
	if config.WorldSize < 0 {
		return newError("cannot specify world_size less than zero")
	}
	if config.NumLandmarks != nil && *config.NumLandmarks < 0 {
		return newError("cannot specify num_landmarks less than zero")
	}
	if config.NumSteps != nil && *config.NumSteps < 0 {
		return newError("cannot specify num_steps less than zero")
	}
	if config.MotionNoise != nil && *config.MotionNoise <= 0 {
		return newError("cannot specify motion_noise less than or equal to zero")
	}
	if config.MeasurementNoise != nil && *config.MeasurementNoise <= 0 {
		return newError("cannot specify measurement_noise less than or equal to zero")
	}
	if config.SensorRange != nil && *config.SensorRange < 0 {
		return newError("cannot specify sensor_range less than zero")
	}
	if config.StepDistance != nil && *config.StepDistance <= 0 {
		return newError("cannot specify step_distance less than or equal to zero")
	}
	return nil
}

// GetOptionalParameters sets any unset optional config parameters to their
// defaults and returns the resulting solver and simulator configurations.
// The sensor range defaults to half the world and the step distance to a
// tenth of it, scaling the run to whatever world was requested.
func GetOptionalParameters(config *Config, logger golog.Logger) (graphslam.Params, simulator.Config) {
	numLandmarks := defaultNumLandmarks
	if config.NumLandmarks == nil {
		logger.Debugf("no num_landmarks given, setting to default value of %d", defaultNumLandmarks)
	} else {
		numLandmarks = *config.NumLandmarks
	}

	numSteps := defaultNumSteps
	if config.NumSteps == nil {
		logger.Debugf("no num_steps given, setting to default value of %d", defaultNumSteps)
	} else {
		numSteps = *config.NumSteps
	}

	sensorRange := config.WorldSize / 2
	if config.SensorRange != nil {
		sensorRange = *config.SensorRange
	}

	stepDistance := config.WorldSize / 10
	if config.StepDistance != nil {
		stepDistance = *config.StepDistance
	}

	motionNoise := defaultMotionNoise
	if config.MotionNoise != nil {
		motionNoise = *config.MotionNoise
	}

	measurementNoise := defaultMeasurementNoise
	if config.MeasurementNoise != nil {
		measurementNoise = *config.MeasurementNoise
	}

	params := graphslam.Params{
		WorldSize:        config.WorldSize,
		MotionNoise:      motionNoise,
		MeasurementNoise: measurementNoise,
		NumLandmarks:     numLandmarks,
	}
	simCfg := simulator.Config{
		WorldSize:        config.WorldSize,
		SensorRange:      sensorRange,
		MotionNoise:      motionNoise,
		MeasurementNoise: measurementNoise,
		StepDistance:     stepDistance,
		NumLandmarks:     numLandmarks,
		NumSteps:         numSteps,
	}
	return params, simCfg
}
