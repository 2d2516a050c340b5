package skill

import "fmt"

// Stage is a rung of the 5-stage mastery ladder.
type Stage int

const (
	StageFoundation  Stage = 1
	StageControl     Stage = 2
	StageSymmetry    Stage = 3
	StageComposition Stage = 4
	StageMastery     Stage = 5
)

// StageCount is the number of rungs on the ladder.
const StageCount = 5

// AllStages returns every stage in ladder order.
func AllStages() []Stage {
	return []Stage{StageFoundation, StageControl, StageSymmetry, StageComposition, StageMastery}
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s >= StageFoundation && s <= StageMastery
}

// Name returns the short stage label.
func (s Stage) Name() string {
	switch s {
	case StageFoundation:
		return "Foundation"
	case StageControl:
		return "Control"
	case StageSymmetry:
		return "Symmetry"
	case StageComposition:
		return "Composition"
	case StageMastery:
		return "Mastery"
	default:
		return fmt.Sprintf("Stage %d", int(s))
	}
}

// Technique returns the technique taught by the stage.
func (s Stage) Technique() string {
	switch s {
	case StageFoundation:
		return "Pinch Grip Mastery"
	case StageControl:
		return "Controlled Release Dynamics"
	case StageSymmetry:
		return "Radial Precision"
	case StageComposition:
		return "Stroke Order Mastery"
	case StageMastery:
		return "Flow State Achievement"
	default:
		return ""
	}
}

// Weights is a per-dimension weight vector. Entries sum to 1.0.
type Weights struct {
	Pressure  float64
	Velocity  float64
	Angular   float64
	Order     float64
	FlowState float64
}

// Get returns the weight of one dimension.
func (w Weights) Get(d Dimension) float64 {
	switch d {
	case DimPressure:
		return w.Pressure
	case DimVelocity:
		return w.Velocity
	case DimAngular:
		return w.Angular
	case DimOrder:
		return w.Order
	case DimFlowState:
		return w.FlowState
	default:
		return 0
	}
}

// Total returns the sum of all weights.
func (w Weights) Total() float64 {
	return w.Pressure + w.Velocity + w.Angular + w.Order + w.FlowState
}

// stageWeights: early stages lean on grip and speed, later ones on order and flow.
var stageWeights = map[Stage]Weights{
	StageFoundation:  {Pressure: 0.40, Velocity: 0.25, Angular: 0.15, Order: 0.10, FlowState: 0.10},
	StageControl:     {Pressure: 0.25, Velocity: 0.40, Angular: 0.15, Order: 0.10, FlowState: 0.10},
	StageSymmetry:    {Pressure: 0.15, Velocity: 0.15, Angular: 0.45, Order: 0.10, FlowState: 0.15},
	StageComposition: {Pressure: 0.10, Velocity: 0.10, Angular: 0.20, Order: 0.45, FlowState: 0.15},
	StageMastery:     {Pressure: 0.15, Velocity: 0.15, Angular: 0.15, Order: 0.15, FlowState: 0.40},
}

var stageThresholds = map[Stage]float64{
	StageFoundation:  0.70,
	StageControl:     0.75,
	StageSymmetry:    0.80,
	StageComposition: 0.85,
	StageMastery:     0.90,
}

// WeightsFor returns the weight table row for a stage. Unknown stages fall
// back to the foundation weights.
func WeightsFor(s Stage) Weights {
	if w, ok := stageWeights[s]; ok {
		return w
	}
	return stageWeights[StageFoundation]
}

// Threshold returns the pass threshold for a stage.
func (s Stage) Threshold() float64 {
	if t, ok := stageThresholds[s]; ok {
		return t
	}
	return stageThresholds[StageFoundation]
}
