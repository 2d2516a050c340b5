package skill

// Composite returns the stage-weighted score of m in [0, 1].
func Composite(m Metrics, s Stage) float64 {
	w := WeightsFor(s)
	m = m.Sanitized()
	score := w.Pressure*m.PressureConsistency +
		w.Velocity*m.VelocityConsistency +
		w.Angular*m.AngularPrecision +
		w.Order*m.StrokeOrderCompliance +
		w.FlowState*m.FlowStateIndex
	return Clamp01(score)
}

// Evaluation is the outcome of scoring a metrics set against a stage.
type Evaluation struct {
	Stage     Stage   `json:"stage"`
	Composite float64 `json:"composite"`
	Threshold float64 `json:"threshold"`
	Passed    bool    `json:"passed"`
}

// Evaluate computes the composite score and compares it to the stage threshold.
func Evaluate(m Metrics, s Stage) Evaluation {
	score := Composite(m, s)
	threshold := s.Threshold()
	return Evaluation{
		Stage:     s,
		Composite: score,
		Threshold: threshold,
		Passed:    score >= threshold,
	}
}

// Weakest returns the dimension with the lowest weight × score product for
// the stage, along with that product. Ties resolve to table order.
func Weakest(m Metrics, s Stage) (Dimension, float64) {
	w := WeightsFor(s)
	m = m.Sanitized()

	var (
		weakest Dimension
		lowest  float64
		first   = true
	)
	for _, d := range AllDimensions() {
		v := w.Get(d) * m.Get(d)
		if first || v < lowest {
			weakest, lowest, first = d, v, false
		}
	}
	return weakest, lowest
}
