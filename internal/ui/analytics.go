package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/iksnae/merchant-support/internal"
)

const barWidth = 30

var (
	dashboardTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))

	dashboardSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62")).
				MarginTop(1)

	metricStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

// RenderAnalytics draws the dashboard for a view: the active filters, then
// the snapshot or the error that replaced it
func RenderAnalytics(view internal.AnalyticsView, width int) string {
	if width <= 0 {
		width = 80
	}
	var b strings.Builder

	b.WriteString(dashboardTitleStyle.Render("📊 Support Analytics"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(describeFilters(view.Filters)))
	b.WriteString("\n")

	switch {
	case view.Err != nil:
		b.WriteString("\n" + errorLabelStyle.Render("Failed to load analytics: "+view.Err.Error()) + "\n")
		return b.String()
	case view.Snapshot == nil && view.Loading:
		b.WriteString("\n" + dimStyle.Render("Loading...") + "\n")
		return b.String()
	case view.Snapshot == nil:
		b.WriteString("\n" + dimStyle.Render("No data loaded") + "\n")
		return b.String()
	}

	s := view.Snapshot
	avg := s.ConfidenceTrends.AverageConfidence
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total questions: %s   Average confidence: %s\n",
		metricStyle.Render(fmt.Sprint(s.TotalQuestions)), metricStyle.Render(fmt.Sprintf("%.0f%%", avg))))

	dist := s.ConfidenceTrends.ConfidenceDistribution
	b.WriteString(section("Confidence"))
	b.WriteString(bars([]barRow{
		{label: "High", value: dist.High},
		{label: "Medium", value: dist.Medium},
		{label: "Low", value: dist.Low},
	}))

	if len(s.IntentDistribution) > 0 {
		b.WriteString(section("Intents"))
		b.WriteString(bars(sortedRows(s.IntentDistribution)))
	}

	if len(s.TopQuestions) > 0 {
		b.WriteString(section("Top questions"))
		for i, q := range s.TopQuestions {
			line := fmt.Sprintf("%2d. %s", i+1, q.Question)
			b.WriteString(truncate.StringWithTail(line, uint(max(width-8, 10)), "...") + " " + dimStyle.Render(fmt.Sprintf("(%d)", q.Count)) + "\n")
		}
	}

	if tiers := s.MerchantSegmentInsights.ByPlanTier; len(tiers) > 0 {
		b.WriteString(section("By plan tier"))
		b.WriteString(bars(segmentRows(tiers)))
	}
	if types := s.MerchantSegmentInsights.ByStoreType; len(types) > 0 {
		b.WriteString(section("By store type"))
		b.WriteString(bars(segmentRows(types)))
	}

	if len(s.SourceEffectiveness) > 0 {
		b.WriteString(section("Sources"))
		for _, src := range s.SourceEffectiveness {
			title := truncate.StringWithTail(src.Title, uint(max(width-30, 10)), "...")
			b.WriteString(fmt.Sprintf("  %s %s\n", title,
				dimStyle.Render(fmt.Sprintf("used %d× · avg score %.2f", src.UsageCount, src.AverageScore))))
		}
	}

	return b.String()
}

func describeFilters(f internal.AnalyticsFilters) string {
	var parts []string
	if f.DateFrom != "" || f.DateTo != "" {
		from, to := f.DateFrom, f.DateTo
		if from == "" {
			from = "…"
		}
		if to == "" {
			to = "…"
		}
		parts = append(parts, "dates "+from+" → "+to)
	}
	if f.MerchantSegment != "" {
		parts = append(parts, "segment "+f.MerchantSegment)
	}
	if f.Intent != "" {
		parts = append(parts, "intent "+f.Intent)
	}
	if len(parts) == 0 {
		return "No filters"
	}
	return "Filters: " + strings.Join(parts, ", ")
}

func section(title string) string {
	return dashboardSectionStyle.Render(title) + "\n"
}

type barRow struct {
	label string
	value int
}

func sortedRows(m map[string]int) []barRow {
	rows := make([]barRow, 0, len(m))
	for k, v := range m {
		rows = append(rows, barRow{label: k, value: v})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].value != rows[j].value {
			return rows[i].value > rows[j].value
		}
		return rows[i].label < rows[j].label
	})
	return rows
}

func segmentRows(m map[string]internal.SegmentInsight) []barRow {
	counts := make(map[string]int, len(m))
	for k, v := range m {
		counts[k] = v.Count
	}
	return sortedRows(counts)
}

// bars draws one horizontal bar per row, scaled to the largest value
func bars(rows []barRow) string {
	maxValue, labelWidth := 0, 0
	for _, r := range rows {
		maxValue = max(maxValue, r.value)
		labelWidth = max(labelWidth, lipgloss.Width(r.label))
	}

	var b strings.Builder
	for _, r := range rows {
		n := 0
		if maxValue > 0 {
			// Negative counts draw an empty bar.
			n = max(0, r.value*barWidth/maxValue)
		}
		fmt.Fprintf(&b, "  %-*s %s %d\n", labelWidth, r.label, barStyle.Render(strings.Repeat("█", n)), r.value)
	}
	return b.String()
}
