package stroke

import (
	"math"

	"github.com/abhisek/guru/internal/scoring"
)

// Point is one recorded pointer sample.
type Point struct {
	Timestamp int64   `json:"timestamp"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Pressure  float64 `json:"pressure"`
	Velocity  float64 `json:"velocity"` // px/ms
	Angle     float64 `json:"angle"`    // degrees from the canvas centre, [0, 360)
}

// Stroke is the ordered sequence of points between pointer-down and
// pointer-up. It is sealed once returned by Recorder.Up.
type Stroke struct {
	ID           int     `json:"strokeId"`
	Layer        int     `json:"layer,omitempty"`
	Points       []Point `json:"points"`
	StartTime    int64   `json:"startTime"`
	EndTime      int64   `json:"endTime"`
	CenterOrigin bool    `json:"centerOrigin"`
}

// Duration returns the stroke duration in milliseconds.
func (s Stroke) Duration() int64 {
	if s.EndTime < s.StartTime {
		return 0
	}
	return s.EndTime - s.StartTime
}

// MinAngleMove is the squared pointer travel, in px², a sample must exceed
// before its angle counts toward symmetry scoring.
const MinAngleMove = 16.0

// PressureSamples returns one pressure value per point.
func PressureSamples(s Stroke) []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Pressure
	}
	return out
}

// TimedPoints returns the {x, y, t} triples the velocity scorer consumes.
func TimedPoints(s Stroke) []scoring.TimedPoint {
	out := make([]scoring.TimedPoint, len(s.Points))
	for i, p := range s.Points {
		out[i] = scoring.TimedPoint{X: p.X, Y: p.Y, T: float64(p.Timestamp)}
	}
	return out
}

// Angles returns the angles of points that moved far enough from their
// predecessor. Jitter while the pointer rests is dropped.
func Angles(s Stroke) []float64 {
	var out []float64
	for i := 1; i < len(s.Points); i++ {
		dx := s.Points[i].X - s.Points[i-1].X
		dy := s.Points[i].Y - s.Points[i-1].Y
		if dx*dx+dy*dy > MinAngleMove {
			out = append(out, s.Points[i].Angle)
		}
	}
	return out
}

// Input builds the per-stroke scorer input for a pattern with the given
// number of symmetry axes.
func Input(s Stroke, symmetryAxes int) scoring.StrokeInput {
	return scoring.StrokeInput{
		PressureSamples: PressureSamples(s),
		Points:          TimedPoints(s),
		Angles:          Angles(s),
		SymmetryAxes:    symmetryAxes,
	}
}

// Order returns the stroke order used for sequence scoring: the layer each
// stroke was drawn on, or the stroke ids when no stroke carries a layer.
func Order(strokes []Stroke) []int {
	var layers []int
	for _, s := range strokes {
		if s.Layer > 0 {
			layers = append(layers, s.Layer)
		}
	}
	if len(layers) > 0 {
		return layers
	}
	ids := make([]int, len(strokes))
	for i, s := range strokes {
		ids[i] = s.ID
	}
	return ids
}

// SimulatedPressure estimates grip pressure from pointer speed for devices
// that do not report it: slow, controlled movement sits near 0.75 and fast
// movement drops toward 0.55.
func SimulatedPressure(speed float64) float64 {
	if math.IsNaN(speed) || speed < 0 {
		speed = 0
	}
	return 0.55 + (1-math.Min(speed, 5)/5)*0.20
}
