package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottocoach/internal/coach"
	"github.com/hammamikhairi/ottocoach/internal/domain"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#bbf7d0"))
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4d4d8"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#fca5a5"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#86efac"))
	bestStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fde68a"))

	macroColors = map[string]lipgloss.Color{
		"Protein": lipgloss.Color("#60a5fa"),
		"Carbs":   lipgloss.Color("#fbbf24"),
		"Fats":    lipgloss.Color("#f87171"),
	}

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#52525b")).
			Padding(0, 1)
)

// macroBarWidth is the length of the longest bar in RenderMacros.
const macroBarWidth = 30

// RenderMacros draws a horizontal bar chart of grams per macro. Bars are
// scaled to the largest value; percentages are of the total.
func RenderMacros(m coach.Macros) string {
	rows := []struct {
		name  string
		grams float64
	}{
		{"Protein", m.Protein},
		{"Carbs", m.Carbs},
		{"Fats", m.Fats},
	}

	largest := math.Max(m.Protein, math.Max(m.Carbs, m.Fats))
	total := m.Total()

	var b strings.Builder
	for _, r := range rows {
		n := 0
		if largest > 0 {
			n = int(math.Round(r.grams / largest * macroBarWidth))
		}
		pct := 0.0
		if total > 0 {
			pct = r.grams / total * 100
		}
		bar := lipgloss.NewStyle().Foreground(macroColors[r.name]).Render(strings.Repeat("█", n))
		fmt.Fprintf(&b, "%-8s %s%s %s\n",
			r.name, bar, strings.Repeat(" ", macroBarWidth-n),
			dimStyle.Render(fmt.Sprintf("%5.1fg %3.0f%%", r.grams, pct)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderPlan renders a generated recipe plan with its steps.
func RenderPlan(p *coach.RecipePlan) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(p.Recipe.Title))
	b.WriteByte('\n')
	if p.Summary != "" {
		b.WriteString(textStyle.Render(p.Summary))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%s\n\n", dimStyle.Render(fmt.Sprintf(
		"%s · %.0f kcal · ~%.0f min", orDash(p.Difficulty), p.Calories, p.TotalMinutes)))

	for _, s := range p.Recipe.Steps {
		fmt.Fprintf(&b, "%s %s %s\n",
			headingStyle.Render(fmt.Sprintf("%2d.", s.Index+1)),
			textStyle.Render(s.Description),
			dimStyle.Render("("+fmtDuration(s.PlannedDuration())+")"))
	}

	b.WriteByte('\n')
	b.WriteString(RenderMacros(p.Macros))
	if p.GoalAlignment != "" {
		b.WriteString("\n\n")
		b.WriteString(goodStyle.Render(p.GoalAlignment))
	}
	return boxStyle.Render(b.String())
}

// RenderSteps renders every step with its status and remaining time.
func RenderSteps(views []domain.StepView) string {
	var b strings.Builder
	for _, v := range views {
		var state string
		switch v.Status {
		case domain.StepRunning:
			state = runningStyle.Render(fmtDuration(secs(v.RemainingSeconds)) + " left")
		case domain.StepCompleted:
			state = doneStyle.Render("done")
		default:
			state = dimStyle.Render(fmtDuration(v.Step.PlannedDuration()))
		}
		fmt.Fprintf(&b, "%s %s  %s\n",
			headingStyle.Render(fmt.Sprintf("%2d.", v.Step.Index+1)),
			textStyle.Render(v.Step.Description),
			state)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderStatus is the one-line summary of running timers.
func RenderStatus(views []domain.StepView) string {
	entries := statusEntries(views)
	var running []string
	completed := 0
	for _, e := range entries {
		if e.done {
			completed++
			continue
		}
		running = append(running, e.text())
	}

	line := fmt.Sprintf("%d/%d steps done", completed, len(views))
	if len(running) == 0 {
		return line + ", no timers running"
	}
	return line + " · " + strings.Join(running, " · ")
}

// RenderDiagnosis renders the food doctor's answer.
func RenderDiagnosis(d *coach.Diagnosis) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Possible deficiency: " + d.Deficiency))
	b.WriteString("\n\n")
	writeList(&b, "Eat more of", d.RecommendedFoods, goodStyle)
	if len(d.AdditionalRecommendations) > 0 {
		b.WriteByte('\n')
		writeList(&b, "Also", d.AdditionalRecommendations, textStyle)
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderScore renders a mindful eating score with its macro chart.
func RenderScore(s *coach.MealScore) string {
	style := badStyle
	switch {
	case s.Score >= 75:
		style = goodStyle
	case s.Score >= 50:
		style = bestStyle
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render("Meal score: ") + style.Render(fmt.Sprintf("%.0f/100", s.Score)))
	b.WriteString("\n\n")
	b.WriteString(RenderMacros(s.Macros))
	b.WriteString("\n\n")
	writeList(&b, "Avoid", s.Suggestions.Donts, badStyle)
	writeList(&b, "Do", s.Suggestions.Dos, goodStyle)
	writeList(&b, "Best swaps", s.Suggestions.Best, bestStyle)
	if s.Summary != "" {
		b.WriteByte('\n')
		b.WriteString(textStyle.Render(s.Summary))
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderAdvice renders free-text advice.
func RenderAdvice(text string) string {
	return boxStyle.Render(textStyle.Render(strings.TrimSpace(text)))
}

// RenderRecipeList renders the built-in recipe catalogue.
func RenderRecipeList(list []domain.RecipeSummary) string {
	if len(list) == 0 {
		return dimStyle.Render("No recipes found.")
	}
	var b strings.Builder
	for _, r := range list {
		fmt.Fprintf(&b, "%s %s\n", headingStyle.Render(r.Name), dimStyle.Render("("+r.ID+")"))
		if r.Description != "" {
			b.WriteString("  " + textStyle.Render(r.Description) + "\n")
		}
		meta := fmt.Sprintf("%d steps", r.Steps)
		if len(r.Tags) > 0 {
			meta += " · " + strings.Join(r.Tags, ", ")
		}
		b.WriteString("  " + dimStyle.Render(meta) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderHint renders a dim one-line hint.
func RenderHint(text string) string {
	return dimStyle.Render(text)
}

func writeList(b *strings.Builder, title string, items []string, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	b.WriteString(dimStyle.Render(title + ":"))
	b.WriteByte('\n')
	for _, it := range items {
		b.WriteString("  • " + style.Render(it))
		b.WriteByte('\n')
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
