package scoring

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// MaxAngularErrorDeg is the mean error that maps to a zero score.
	MaxAngularErrorDeg = 15.0
	// TargetAngularErrorDeg is the mean error a practiced hand should stay under.
	TargetAngularErrorDeg = 3.0
)

// ErrInvalidSymmetry is returned when the symmetry axis count is not positive.
var ErrInvalidSymmetry = errors.New("symmetry axes must be positive")

// AngularResult is the outcome of scoring radial stroke angles.
type AngularResult struct {
	Score        float64
	StrokeCount  int
	MeanErrorDeg float64
	MaxErrorDeg  float64
	SymmetryAxes int
}

// NormalizeAngle maps any angle in degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// CircularDistance returns the shortest distance between two angles in
// degrees, wrapping around 360.
func CircularDistance(a, b float64) float64 {
	diff := math.Abs(NormalizeAngle(a) - NormalizeAngle(b))
	return math.Min(diff, 360-diff)
}

// IdealAngles returns n angles evenly spaced from 0.
func IdealAngles(n int) []float64 {
	if n <= 0 {
		return nil
	}
	ideals := make([]float64, n)
	step := 360 / float64(n)
	for i := range ideals {
		ideals[i] = step * float64(i)
	}
	return ideals
}

// Angular scores how closely stroke angles land on the ideal axes of an
// N-fold symmetric pattern. No angles scores 1.0.
func Angular(angles []float64, symmetryAxes int) (AngularResult, error) {
	if len(angles) == 0 {
		return AngularResult{Score: 1.0, SymmetryAxes: symmetryAxes}, nil
	}
	if symmetryAxes <= 0 {
		return AngularResult{}, errors.Wrapf(ErrInvalidSymmetry, "got %d", symmetryAxes)
	}

	ideals := IdealAngles(symmetryAxes)
	var sum, worst float64
	for _, a := range angles {
		e := nearestError(a, ideals)
		sum += e
		if e > worst {
			worst = e
		}
	}

	meanErr := sum / float64(len(angles))
	score := clamp(1-meanErr/MaxAngularErrorDeg, 0, 1)

	return AngularResult{
		Score:        finite(score, 0),
		StrokeCount:  len(angles),
		MeanErrorDeg: meanErr,
		MaxErrorDeg:  worst,
		SymmetryAxes: symmetryAxes,
	}, nil
}

func nearestError(angle float64, ideals []float64) float64 {
	best := math.Inf(1)
	for _, ideal := range ideals {
		if d := CircularDistance(angle, ideal); d < best {
			best = d
		}
	}
	return best
}
