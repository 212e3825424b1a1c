// Package simulator generates synthetic observation sequences for the solver:
// a robot wandering a square world of randomly placed point landmarks,
// sensing nearby landmarks and moving with noise. All randomness flows from
// an explicitly injected source so a fixed seed fixes the dataset.
package simulator

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mapbuild/graphslam"
)

// maxMoveAttempts bounds heading redraws when a step keeps landing outside
// the world.
const maxMoveAttempts = 1000

// Config describes the world to simulate.
type Config struct {
	// WorldSize is the extent of the square world; coordinates live in
	// [0, WorldSize] on both axes.
	WorldSize float64

	// SensorRange is the per-axis visibility limit: a landmark is sensed only
	// when both noisy offsets have magnitude at most SensorRange.
	SensorRange float64

	// MotionNoise and MeasurementNoise scale the uniform noise added to each
	// realized displacement and each sensed offset.
	MotionNoise      float64
	MeasurementNoise float64

	// StepDistance is the commanded displacement magnitude per time step.
	StepDistance float64

	NumLandmarks int
	NumSteps     int
}

// Validate checks that the configuration describes a generable world.
func (c Config) Validate() error {
	if c.WorldSize < 1 {
		return errors.Errorf("world_size must be at least 1, got %v", c.WorldSize)
	}
	if c.StepDistance <= 0 {
		return errors.Errorf("step_distance must be positive, got %v", c.StepDistance)
	}
	if c.MotionNoise < 0 || c.MeasurementNoise < 0 {
		return errors.New("noise magnitudes cannot be negative")
	}
	if c.NumLandmarks < 0 {
		return errors.Errorf("num_landmarks must be non-negative, got %d", c.NumLandmarks)
	}
	if c.NumSteps < 0 {
		return errors.Errorf("num_steps must be non-negative, got %d", c.NumSteps)
	}
	return nil
}

// Dataset is one generated run. TruePoses and TrueLandmarks are generator
// ground truth for external validation and plotting only; the solver never
// sees them.
type Dataset struct {
	Steps         []graphslam.TimeStep
	TruePoses     []r2.Point
	TrueLandmarks []r2.Point
}

// robot carries the simulated robot's true pose and its unit noise draw.
type robot struct {
	pos   r2.Point
	world float64
	noise distuv.Uniform
}

func newRobot(world float64, src rand.Source) *robot {
	return &robot{
		pos:   r2.Point{X: world / 2, Y: world / 2},
		world: world,
		noise: distuv.Uniform{Min: -1, Max: 1, Src: src},
	}
}

// sense returns noisy offsets to every landmark whose offsets both fall
// within sensorRange. Landmarks out of range are simply absent from the
// result.
func (r *robot) sense(landmarks []r2.Point, measurementNoise, sensorRange float64) []graphslam.Measurement {
	var seen []graphslam.Measurement
	for i, lm := range landmarks {
		dx := lm.X - r.pos.X + r.noise.Rand()*measurementNoise
		dy := lm.Y - r.pos.Y + r.noise.Rand()*measurementNoise
		if math.Abs(dx) > sensorRange || math.Abs(dy) > sensorRange {
			continue
		}
		seen = append(seen, graphslam.Measurement{Landmark: i, Offset: r2.Point{X: dx, Y: dy}})
	}
	return seen
}

// move applies the commanded displacement plus noise. The whole step is
// rejected if either resulting coordinate would leave [0, world].
func (r *robot) move(cmd r2.Point, motionNoise float64) bool {
	next := r2.Point{
		X: r.pos.X + cmd.X + r.noise.Rand()*motionNoise,
		Y: r.pos.Y + cmd.Y + r.noise.Rand()*motionNoise,
	}
	if next.X < 0 || next.X > r.world || next.Y < 0 || next.Y > r.world {
		return false
	}
	r.pos = next
	return true
}

// Generate simulates a full run: landmarks at random integer coordinates,
// the robot starting at the world center, and NumSteps sense-then-move
// cycles. When a move is rejected at the boundary a fresh random heading is
// drawn; rejected attempts do not appear in the observation sequence.
func Generate(cfg Config, src rand.Source, logger golog.Logger) (*Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(src)

	landmarks := make([]r2.Point, cfg.NumLandmarks)
	for i := range landmarks {
		landmarks[i] = r2.Point{
			X: float64(rng.Intn(int(cfg.WorldSize))),
			Y: float64(rng.Intn(int(cfg.WorldSize))),
		}
	}

	bot := newRobot(cfg.WorldSize, src)
	ds := &Dataset{
		TrueLandmarks: landmarks,
		TruePoses:     []r2.Point{bot.pos},
	}
	for t := 0; t < cfg.NumSteps; t++ {
		seen := bot.sense(landmarks, cfg.MeasurementNoise, cfg.SensorRange)

		var cmd r2.Point
		moved := false
		for attempt := 0; attempt < maxMoveAttempts; attempt++ {
			heading := rng.Float64() * 2 * math.Pi
			cmd = r2.Point{
				X: math.Cos(heading) * cfg.StepDistance,
				Y: math.Sin(heading) * cfg.StepDistance,
			}
			if bot.move(cmd, cfg.MotionNoise) {
				moved = true
				break
			}
		}
		if !moved {
			return nil, errors.Errorf("no legal move found at step %d after %d attempts", t, maxMoveAttempts)
		}

		ds.Steps = append(ds.Steps, graphslam.TimeStep{Measurements: seen, Motion: cmd})
		ds.TruePoses = append(ds.TruePoses, bot.pos)
	}
	logger.Debugf("generated %d steps over %d landmarks", len(ds.Steps), len(ds.TrueLandmarks))
	return ds, nil
}
