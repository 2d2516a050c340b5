package scoring

import "math"

const (
	// MaxVelocityCV is the coefficient of variation that maps to a zero base score.
	MaxVelocityCV = 0.30
	// TargetVelocityCV is the CV a practiced hand should stay under.
	TargetVelocityCV = 0.20
	// SpikeFactor marks a sample as a spike when it exceeds this multiple of the mean.
	SpikeFactor = 3.0
	// SpikePenalty is deducted per spike after the CV score.
	SpikePenalty = 0.05
)

// TimedPoint is a pointer position with its timestamp in milliseconds.
type TimedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	T float64 `json:"t"`
}

// VelocityResult is the outcome of scoring one stroke's velocity profile.
type VelocityResult struct {
	Score      float64
	N          int
	Mean       float64
	StdDev     float64
	CV         float64
	SpikeCount int
}

// Velocities returns the instantaneous velocities (px/ms) between adjacent
// points. Pairs with a non-positive time delta are stuck-pointer frames and
// are skipped.
func Velocities(points []TimedPoint) []float64 {
	if len(points) < 2 {
		return nil
	}
	vs := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		dt := points[i].T - points[i-1].T
		if dt <= 0 {
			continue
		}
		d := math.Hypot(points[i].X-points[i-1].X, points[i].Y-points[i-1].Y)
		vs = append(vs, d/dt)
	}
	return vs
}

// Velocity scores speed smoothness. The base score falls linearly with the
// coefficient of variation and each spike above SpikeFactor × mean costs
// SpikePenalty.
func Velocity(points []TimedPoint) VelocityResult {
	if len(points) < 3 {
		return VelocityResult{Score: 1.0}
	}

	vs := Velocities(points)
	if len(vs) < 2 {
		return VelocityResult{Score: 1.0, N: len(vs)}
	}

	mean, sd := meanStdDev(vs)
	if mean == 0 {
		return VelocityResult{Score: 1.0, N: len(vs)}
	}

	cv := sd / mean
	score := clamp(1-cv/MaxVelocityCV, 0, 1)

	spikes := 0
	for _, v := range vs {
		if v > mean*SpikeFactor {
			spikes++
		}
	}
	score = math.Max(0, score-float64(spikes)*SpikePenalty)

	return VelocityResult{
		Score:      finite(score, 0),
		N:          len(vs),
		Mean:       mean,
		StdDev:     sd,
		CV:         cv,
		SpikeCount: spikes,
	}
}
