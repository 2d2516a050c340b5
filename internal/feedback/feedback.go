package feedback

import (
	"fmt"
	"math"

	"github.com/abhisek/guru/internal/skill"
)

// NoTipAbove is the raw score at which the weakest metric no longer gets a
// coaching tip.
const NoTipAbove = 0.95

var tips = map[skill.Stage]map[skill.Dimension]string{
	skill.StageFoundation: {
		skill.DimPressure:  "Hold the stylus like a grain of rice between thumb, index and middle finger, and aim for a steady 60-80% pressure.",
		skill.DimVelocity:  "Slow down. At this stage an even grip matters more than speed.",
		skill.DimAngular:   "Rest your ring and pinky fingers on the surface so your wrist can pivot from a stable point.",
		skill.DimOrder:     "Start each petal from the centre and work outward.",
		skill.DimFlowState: "Practice in sets of five strokes and rest between sets. Quality over quantity.",
	},
	skill.StageControl: {
		skill.DimPressure:  "Keep the same pressure as your speed changes. Try one line at three different speeds.",
		skill.DimVelocity:  "Imagine pouring honey: steady, continuous, never jerky.",
		skill.DimAngular:   "Soften your gaze to see the whole pattern instead of chasing the cursor.",
		skill.DimOrder:     "Finish each stroke before planning the next one.",
		skill.DimFlowState: "Exhale during strokes and inhale during pauses.",
	},
	skill.StageSymmetry: {
		skill.DimPressure:  "Ease off slightly on long radial strokes so the line weight stays even.",
		skill.DimVelocity:  "Draw every radial stroke at the same tempo so the petals match.",
		skill.DimAngular:   "Picture a clock face: 12, 3, 6 and 9 anchor a 4-fold pattern. Count the divisions as you go.",
		skill.DimOrder:     "Place opposite strokes in pairs so the halves stay balanced.",
		skill.DimFlowState: "After each stroke, imagine folding the canvas. Would the halves match?",
	},
	skill.StageComposition: {
		skill.DimPressure:  "Keep outer layers as light as the centre; fatigue shows up late in a pattern.",
		skill.DimVelocity:  "Give every layer the same rhythm, like notes in a melody.",
		skill.DimAngular:   "Align each new layer with the axes of the one beneath it.",
		skill.DimOrder:     "Bloom from the centre: seed, then petals, then leaves. Never draw leaves before petals.",
		skill.DimFlowState: "Chant the layer order softly as you draw. Rhythm creates flow.",
	},
	skill.StageMastery: {
		skill.DimPressure:  "Let the grip relax. Tension is the first thing to break flow.",
		skill.DimVelocity:  "Stop checking your speed. Let the hand find its own pace.",
		skill.DimAngular:   "Trust the symmetry you have practiced and stop correcting mid-stroke.",
		skill.DimOrder:     "Plan the whole pattern before the first stroke, then draw without lifting your attention.",
		skill.DimFlowState: "Stop trying. Let your hand draw itself while you watch.",
	},
}

// Tip returns the coaching tip for a metric at a stage.
func Tip(s skill.Stage, d skill.Dimension) string {
	return tips[s][d]
}

// Banner is the headline for a completed session.
func Banner(ev skill.Evaluation) string {
	pct := func(v float64) int { return int(math.Round(v * 100)) }
	if ev.Passed {
		return fmt.Sprintf("Stage %d %s passed! Composite %d%% (needed %d%%)",
			int(ev.Stage), ev.Stage.Name(), pct(ev.Composite), pct(ev.Threshold))
	}
	return fmt.Sprintf("Keep practicing %s: composite %d%%, %d%% needed to pass",
		ev.Stage.Technique(), pct(ev.Composite), pct(ev.Threshold))
}

// Generate returns the feedback lines for a session: the banner, then a tip
// for the lowest stage-weighted metric unless that metric is already near
// perfect.
func Generate(m skill.Metrics, ev skill.Evaluation) []string {
	out := []string{Banner(ev)}

	d, _ := skill.Weakest(m, ev.Stage)
	score := m.Sanitized().Get(d)
	if score >= NoTipAbove {
		return out
	}
	if tip := Tip(ev.Stage, d); tip != "" {
		out = append(out, fmt.Sprintf("Focus on %s (%d%%): %s", d.DisplayName(), int(math.Round(score*100)), tip))
	}
	return out
}
