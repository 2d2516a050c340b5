// Package report renders mastery progress, stage details and session
// summaries for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/guru/internal/feedback"
	"github.com/abhisek/guru/internal/mastery"
	"github.com/abhisek/guru/internal/session"
	"github.com/abhisek/guru/internal/skill"
	"github.com/abhisek/guru/internal/ui/components"
	"github.com/abhisek/guru/internal/ui/layout"
	"github.com/abhisek/guru/internal/ui/theme"
)

const labelWidth = 16

// Progress renders the ladder overview for a player.
func Progress(p mastery.Progress, width int) string {
	cw := components.ContentWidth(width)

	var rows []string
	for _, c := range p.StageCompletions {
		rows = append(rows, stageRow(c, p.CurrentStage, cw))
	}

	info := theme.Subtitle.Render(fmt.Sprintf("Player %s  ·  practiced %s  ·  last session %s",
		p.PlayerID, formatDuration(p.PracticeTime()), formatWhen(p.LastSession)))

	return layout.Stack(
		layout.RenderHeader("Mastery Progress", p.GuruScore, cw+4),
		info,
		components.Card("Stages", strings.Join(rows, "\n"), cw),
		achievementsCard(p, cw),
	)
}

func stageRow(c mastery.StageCompletion, current skill.Stage, cw int) string {
	state := mastery.ResolveDisplayState(c, current)
	icon, style := stateStyle(state)

	head := style.Render(fmt.Sprintf("%s %d. %-12s", icon, int(c.Stage), c.Stage.Name())) +
		theme.Hint.Render(fmt.Sprintf("  %s · %d attempts", c.Stage.Technique(), c.AttemptCount))
	if state == mastery.DisplayLocked {
		return head
	}

	best := skill.Composite(c.BestMetrics, c.Stage)
	bar := components.NewProgressBar("best", best, true, cw).
		WithLabelWidth(labelWidth).
		WithMark(c.Stage.Threshold())
	return head + "\n" + bar.View()
}

func stateStyle(s mastery.DisplayState) (string, lipgloss.Style) {
	switch s {
	case mastery.DisplayCompleted:
		return "✔", theme.Completed
	case mastery.DisplayCurrent:
		return "▸", theme.Current
	case mastery.DisplayAvailable:
		return "○", theme.Available
	default:
		return "🔒", theme.Locked
	}
}

func achievementsCard(p mastery.Progress, cw int) string {
	if len(p.Achievements) == 0 {
		return components.Card("Achievements", theme.Hint.Render("None yet. Complete a stage to earn your first."), cw)
	}
	lines := make([]string, 0, len(p.Achievements))
	for _, a := range p.Achievements {
		lines = append(lines, fmt.Sprintf("%s %s  %s", a.Icon, theme.Body.Bold(true).Render(a.Name), theme.Hint.Render(a.Description)))
	}
	return components.Card("Achievements", strings.Join(lines, "\n"), cw)
}

// Stage renders one stage in detail: weights, best metrics against the
// threshold, the reference guide and recent sessions.
func Stage(p mastery.Progress, s skill.Stage, recent []session.Data, width int) string {
	cw := components.ContentWidth(width)
	c := p.Stage(s)
	w := skill.WeightsFor(s)

	var metrics []string
	for _, d := range skill.AllDimensions() {
		label := fmt.Sprintf("%s ×%.2f", d.DisplayName(), w.Get(d))
		metrics = append(metrics, components.NewProgressBar(label, c.BestMetrics.Get(d), true, cw).
			WithLabelWidth(labelWidth+10).View())
	}
	composite := components.NewProgressBar("Composite", skill.Composite(c.BestMetrics, s), true, cw).
		WithLabelWidth(labelWidth + 10).
		WithMark(s.Threshold())
	metrics = append(metrics, composite.View())

	state := mastery.ResolveDisplayState(c, p.CurrentStage)
	_, style := stateStyle(state)
	title := fmt.Sprintf("Stage %d · %s · %s", int(s), s.Name(), s.Technique())
	status := style.Render(string(state)) + theme.Hint.Render(fmt.Sprintf("  %d attempts, pass at %d%%", c.AttemptCount, pct(s.Threshold())))

	return layout.Stack(
		layout.RenderHeader(title, p.GuruScore, cw+4),
		status,
		components.Card("Best metrics", strings.Join(metrics, "\n"), cw),
		guideCard(s, cw),
		sessionsCard(recent, cw),
	)
}

func guideCard(s skill.Stage, cw int) string {
	g, ok := feedback.GuideFor(s)
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render(g.Tradition) + "\n")
	b.WriteString(lipgloss.NewStyle().Width(cw).Render(g.Context) + "\n")
	b.WriteString(theme.Hint.Render(g.Citation) + "\n")
	for i, d := range g.Drills {
		fmt.Fprintf(&b, "\n%d. %s", i+1, d)
	}
	return components.Card("Practice guide", b.String(), cw)
}

func sessionsCard(recent []session.Data, cw int) string {
	if len(recent) == 0 {
		return ""
	}
	lines := make([]string, 0, len(recent))
	for _, d := range recent {
		ev := skill.Evaluate(d.Metrics, d.Stage)
		verdict := theme.Failed.Render("fail")
		if ev.Passed {
			verdict = theme.Passed.Render("pass")
		}
		lines = append(lines, fmt.Sprintf("%s  pattern %-3d %3d%%  %s  %s",
			formatWhen(d.EndTime), d.PatternID, pct(ev.Composite), verdict,
			theme.Hint.Render(fmt.Sprintf("%d strokes, %s", len(d.Strokes), formatDuration(time.Duration(d.DurationMs())*time.Millisecond)))))
	}
	return components.Card("Recent sessions", strings.Join(lines, "\n"), cw)
}

// Summary renders the end-of-session screen.
func Summary(sum session.Summary, width int) string {
	cw := components.ContentWidth(width)
	ev := sum.Result.Evaluation

	var lines []string
	for i, f := range sum.Result.Feedback {
		if i == 0 {
			style := theme.Failed
			if ev.Passed {
				style = theme.Passed
			}
			lines = append(lines, style.Render(f))
			continue
		}
		lines = append(lines, lipgloss.NewStyle().Width(cw).Render(f))
	}

	var bars []string
	for _, d := range skill.AllDimensions() {
		bars = append(bars, components.NewProgressBar(d.DisplayName(), sum.Data.Metrics.Get(d), true, cw).
			WithLabelWidth(labelWidth).View())
	}
	bars = append(bars, components.NewProgressBar("Composite", ev.Composite, true, cw).
		WithLabelWidth(labelWidth).WithMark(ev.Threshold).View())

	facts := fmt.Sprintf("%d strokes in %s", len(sum.Data.Strokes), formatDuration(sum.Duration()))
	if sum.PatternStats != nil {
		facts += fmt.Sprintf("  ·  pattern %d %s", sum.Data.PatternID, stars(sum.PatternStats.Stars))
	}
	if sum.Fallbacks > 0 {
		facts += fmt.Sprintf("  ·  %d scores estimated", sum.Fallbacks)
	}

	var earned []string
	for _, a := range sum.Result.NewAchievements {
		earned = append(earned, fmt.Sprintf("%s %s  %s", a.Icon, theme.Body.Bold(true).Render(a.Name), theme.Hint.Render(a.Description)))
	}
	var earnedCard string
	if len(earned) > 0 {
		earnedCard = components.Card("New achievements", strings.Join(earned, "\n"), cw)
	}

	title := fmt.Sprintf("Stage %d · %s", int(sum.Data.Stage), sum.Data.Stage.Name())
	return layout.Stack(
		layout.RenderHeader(title, sum.Result.GuruScore, cw+4),
		strings.Join(lines, "\n"),
		components.Card("Session metrics", strings.Join(bars, "\n"), cw),
		theme.Subtitle.Render(facts),
		earnedCard,
	)
}

func pct(v float64) int { return int(v*100 + 0.5) }

func stars(n int) string {
	return strings.Repeat("★", n) + strings.Repeat("☆", max(0, 5-n))
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

func formatWhen(ms int64) string {
	if ms <= 0 {
		return "never"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}
