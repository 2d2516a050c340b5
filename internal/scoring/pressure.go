package scoring

// TargetSigma is the pressure standard deviation that maps to a zero score.
// Anything below it is a consistently held grip.
const TargetSigma = 0.15

// PressureResult is the outcome of scoring one stroke's pressure samples.
type PressureResult struct {
	Score float64
	N     int
	Mean  float64
	Sigma float64
}

// Pressure scores grip consistency from pressure samples in [0, 1].
// Fewer than two samples score 1.0 so short strokes are never penalized.
func Pressure(samples []float64) PressureResult {
	if len(samples) < 2 {
		return PressureResult{Score: 1.0, N: len(samples)}
	}

	mean, sigma := meanStdDev(samples)
	score := clamp(1-sigma/TargetSigma, 0, 1)

	return PressureResult{
		Score: finite(score, 0),
		N:     len(samples),
		Mean:  mean,
		Sigma: sigma,
	}
}
