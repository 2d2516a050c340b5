package skill

import "math"

// Metrics holds the five normalized skill scores for one stroke or session.
// Every value is in [0, 1] where 1 is best. Metrics values are replaced
// wholesale, never mutated in place.
type Metrics struct {
	PressureConsistency   float64 `json:"pressureConsistency" validate:"gte=0,lte=1"`
	VelocityConsistency   float64 `json:"velocityConsistency" validate:"gte=0,lte=1"`
	AngularPrecision      float64 `json:"angularPrecision" validate:"gte=0,lte=1"`
	StrokeOrderCompliance float64 `json:"strokeOrderCompliance" validate:"gte=0,lte=1"`
	FlowStateIndex        float64 `json:"flowStateIndex" validate:"gte=0,lte=1"`
}

// Dimension names one of the five metric axes.
type Dimension string

const (
	DimPressure  Dimension = "pressure"
	DimVelocity  Dimension = "velocity"
	DimAngular   Dimension = "angular"
	DimOrder     Dimension = "order"
	DimFlowState Dimension = "flow"
)

// AllDimensions returns the metric axes in table order.
func AllDimensions() []Dimension {
	return []Dimension{DimPressure, DimVelocity, DimAngular, DimOrder, DimFlowState}
}

// DisplayName returns a human-readable label for the dimension.
func (d Dimension) DisplayName() string {
	switch d {
	case DimPressure:
		return "Pressure Consistency"
	case DimVelocity:
		return "Velocity Consistency"
	case DimAngular:
		return "Angular Precision"
	case DimOrder:
		return "Stroke Order"
	case DimFlowState:
		return "Flow State"
	default:
		return string(d)
	}
}

// Get returns the value of one dimension.
func (m Metrics) Get(d Dimension) float64 {
	switch d {
	case DimPressure:
		return m.PressureConsistency
	case DimVelocity:
		return m.VelocityConsistency
	case DimAngular:
		return m.AngularPrecision
	case DimOrder:
		return m.StrokeOrderCompliance
	case DimFlowState:
		return m.FlowStateIndex
	default:
		return 0
	}
}

// Values returns the five metric values in table order.
func (m Metrics) Values() [5]float64 {
	return [5]float64{
		m.PressureConsistency,
		m.VelocityConsistency,
		m.AngularPrecision,
		m.StrokeOrderCompliance,
		m.FlowStateIndex,
	}
}

// Sum is the total ordering used for best-ever comparisons.
func (m Metrics) Sum() float64 {
	var s float64
	for _, v := range m.Values() {
		s += v
	}
	return s
}

// Better reports whether m strictly beats other under the sum ordering.
func (m Metrics) Better(other Metrics) bool {
	return m.Sum() > other.Sum()
}

// Max returns the highest single metric value.
func (m Metrics) Max() float64 {
	best := 0.0
	for _, v := range m.Values() {
		if v > best {
			best = v
		}
	}
	return best
}

// Sanitized clamps every value into [0, 1] and replaces NaN with 0.
func (m Metrics) Sanitized() Metrics {
	return Metrics{
		PressureConsistency:   Clamp01(m.PressureConsistency),
		VelocityConsistency:   Clamp01(m.VelocityConsistency),
		AngularPrecision:      Clamp01(m.AngularPrecision),
		StrokeOrderCompliance: Clamp01(m.StrokeOrderCompliance),
		FlowStateIndex:        Clamp01(m.FlowStateIndex),
	}
}

// Clamp01 clamps v into [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
