package feedback

import "github.com/abhisek/guru/internal/skill"

// Guide is the reference card shown for a stage.
type Guide struct {
	Stage     skill.Stage
	Tradition string
	Context   string
	Citation  string
	Drills    []string
}

var guides = map[skill.Stage]Guide{
	skill.StageFoundation: {
		Tradition: "Tamil Kolam",
		Context:   "Expert kolam artists develop calluses on these three fingers after years of daily practice.",
		Citation:  `Dr. Vijaya Nagarajan, "Threshold Designs" (2018)`,
		Drills: []string{
			"Straight line pressure hold, sigma under 0.12",
			"Concentric circle consistency, 3 circles, sigma under 0.15",
			"Dot grid precision, 5x5 grid at 75% pressure",
			"Petal stroke sequence, 8 symmetrical petals",
			"Speed and pressure decoupling, same pressure at 3 speeds",
		},
	},
	skill.StageControl: {
		Tradition: "Rajasthani Mandana",
		Context:   "Village artists create 10-meter murals in one breath-controlled session.",
		Citation:  "Gujarat Folk Arts Museum, Field Study 2019",
		Drills: []string{
			"Velocity staircase, 3, 5 and 7 cm/s segments",
			"Spiral consistency, outward spiral at constant speed",
			"Pulsed line texture, dotted line via pulsed motion",
			"Figure-8 infinity loop, 30 second continuous loop",
			"Blindfold mode, straight line from muscle memory",
		},
	},
	skill.StageSymmetry: {
		Tradition: "Tamil Kolam",
		Context:   "Traditional kolam use pulli (dot grids) as built-in angle guides.",
		Citation:  `Ascher, M. "Ethnomathematics" (1991)`,
		Drills: []string{
			"Cardinal directions, 4 dots at 0, 90, 180 and 270 degrees",
			"Octagon construction, 8 petals at 45 degree intervals",
			"Speed and accuracy tradeoff, 8-fold in 60s, 45s and 30s",
			"Inverted symmetry, pattern rotated 180 degrees",
			"Hybrid symmetry, 4-fold primary with 8-fold secondary",
		},
	},
	skill.StageComposition: {
		Tradition: "Bengali Alpana",
		Context:   "Alpana artists use specific stroke sequences passed down orally through generations.",
		Citation:  "Santiniketan Archives, Oral History Project (2015)",
		Drills: []string{
			"Linear sequence, 3 layers from centre to petals to ring",
			"Speed sequence challenge, 8 layers in 90 seconds",
			"Memory sequence, study 30s then draw without hints",
			"Interrupted sequence, 15s pause every 10 strokes",
			"Adaptive sequencing, your own order validated against the pattern",
		},
	},
	skill.StageMastery: {
		Tradition: "Universal (Zen, Sufism, Tamil Kolam)",
		Context:   "Master artists describe entering trance states where patterns emerge spontaneously.",
		Citation:  `Csikszentmihalyi, M. "Flow" (1990)`,
		Drills: []string{
			"Timed mastery pattern, 12-fold with zero UI feedback",
			"Blindfold mastery, audio cues only",
			"Ambient mastery, under 10% drop with distractions",
			"Teaching mode, explain while drawing",
			"Improvisational mastery, create an original pattern",
		},
	},
}

// GuideFor returns the reference card for a stage. Unknown stages return
// false.
func GuideFor(s skill.Stage) (Guide, bool) {
	g, ok := guides[s]
	if !ok {
		return Guide{}, false
	}
	g.Stage = s
	g.Drills = append([]string(nil), g.Drills...)
	return g, true
}
