package stroke

import (
	"io"
	"math"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

var (
	ErrStrokeActive = errors.New("stroke already in progress")
	ErrNoStroke     = errors.New("no stroke in progress")
)

// Canvas is the drawing surface the recorder measures angles against.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultCanvas is used when no canvas size is known.
var DefaultCanvas = Canvas{Width: 600, Height: 600}

// Center returns the canvas centre.
func (c Canvas) Center() (float64, float64) {
	return c.Width / 2, c.Height / 2
}

// HalfDiagonal is the distance from the centre to a corner.
func (c Canvas) HalfDiagonal() float64 {
	return math.Hypot(c.Width, c.Height) / 2
}

// centerRadius is the fraction of the half diagonal within which a stroke
// counts as starting from the centre.
const centerRadius = 0.10

// Sample is one raw pointer event. A zero Pressure means the device did not
// report pressure and it will be simulated from speed.
type Sample struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	T        int64   `json:"t"`
	Pressure float64 `json:"pressure,omitempty"`
	Layer    int     `json:"layer,omitempty"`
}

// Recorder turns pointer down/move/up events into sealed strokes. It is not
// safe for concurrent use; one recorder belongs to one input loop.
type Recorder struct {
	canvas Canvas
	nextID int
	cur    *Stroke
}

// NewRecorder creates a recorder for the given canvas.
func NewRecorder(c Canvas) *Recorder {
	if c.Width <= 0 || c.Height <= 0 {
		c = DefaultCanvas
	}
	return &Recorder{canvas: c, nextID: 1}
}

// Active reports whether a stroke is in progress.
func (r *Recorder) Active() bool {
	return r.cur != nil
}

// Down starts a new stroke.
func (r *Recorder) Down(s Sample) error {
	if r.cur != nil {
		return ErrStrokeActive
	}
	cx, cy := r.canvas.Center()
	r.cur = &Stroke{
		ID:           r.nextID,
		Layer:        s.Layer,
		StartTime:    s.T,
		CenterOrigin: math.Hypot(s.X-cx, s.Y-cy) <= centerRadius*r.canvas.HalfDiagonal(),
	}
	r.nextID++
	r.append(s)
	return nil
}

// Move appends a sample to the active stroke.
func (r *Recorder) Move(s Sample) error {
	if r.cur == nil {
		return ErrNoStroke
	}
	r.append(s)
	return nil
}

// Up appends the final sample and seals the stroke.
func (r *Recorder) Up(s Sample) (Stroke, error) {
	if r.cur == nil {
		return Stroke{}, ErrNoStroke
	}
	r.append(s)
	return r.Seal(s.T)
}

// Seal ends the active stroke at time t without recording another point.
func (r *Recorder) Seal(t int64) (Stroke, error) {
	if r.cur == nil {
		return Stroke{}, ErrNoStroke
	}
	out := *r.cur
	out.EndTime = t
	r.cur = nil
	return out, nil
}

func (r *Recorder) append(s Sample) {
	var speed float64
	if n := len(r.cur.Points); n > 0 {
		prev := r.cur.Points[n-1]
		if dt := float64(s.T - prev.Timestamp); dt > 0 {
			speed = math.Hypot(s.X-prev.X, s.Y-prev.Y) / dt
		}
	}

	pressure := s.Pressure
	if pressure <= 0 || pressure > 1 {
		pressure = SimulatedPressure(speed)
	}

	cx, cy := r.canvas.Center()
	angle := math.Atan2(s.Y-cy, s.X-cx) * 180 / math.Pi
	angle = math.Mod(math.Mod(angle, 360)+360, 360)

	r.cur.Points = append(r.cur.Points, Point{
		Timestamp: s.T,
		X:         s.X,
		Y:         s.Y,
		Pressure:  pressure,
		Velocity:  speed,
		Angle:     angle,
	})
}

// Recording is a serialized drawing: the canvas it was made on and the
// pointer samples of each stroke, in drawing order.
type Recording struct {
	Canvas  Canvas     `json:"canvas"`
	Strokes [][]Sample `json:"strokes"`
}

// ReadRecording decodes a Recording from r.
func ReadRecording(r io.Reader) (Recording, error) {
	var rec Recording
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return Recording{}, errors.Wrap(err, "decode recording")
	}
	return rec, nil
}

// Replay feeds each sample list through a fresh recorder as down, move...,
// up and returns the sealed strokes. Empty sample lists are skipped.
func Replay(rec Recording) ([]Stroke, error) {
	r := NewRecorder(rec.Canvas)
	var out []Stroke
	for i, samples := range rec.Strokes {
		if len(samples) == 0 {
			continue
		}
		if err := r.Down(samples[0]); err != nil {
			return nil, errors.Wrapf(err, "stroke %d", i)
		}
		if len(samples) == 1 {
			st, _ := r.Seal(samples[0].T)
			out = append(out, st)
			continue
		}
		for _, s := range samples[1 : len(samples)-1] {
			if err := r.Move(s); err != nil {
				return nil, errors.Wrapf(err, "stroke %d", i)
			}
		}
		st, err := r.Up(samples[len(samples)-1])
		if err != nil {
			return nil, errors.Wrapf(err, "stroke %d", i)
		}
		out = append(out, st)
	}
	return out, nil
}
