// ABOUTME: Compact metric block widget for the lottery dashboard
// ABOUTME: Combines icon, value, optional sparkline and a subtitle in a bordered box

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/markalston/live-lottery/cli/internal/tui/icons"
)

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns sensible defaults
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       24,
		BorderColor: lipgloss.Color("#6B7280"),
		TitleColor:  lipgloss.Color("#EC4899"),
		ValueColor:  lipgloss.Color("#F9FAFB"),
	}
}

func (c MetricBlockConfig) normalized() MetricBlockConfig {
	if c.Width <= 0 {
		c.Width = 24
	}
	return c
}

// topBorder renders "┌─ title ───┐" padded to the block width
func topBorder(icon icons.Icon, title string, config MetricBlockConfig) string {
	innerWidth := config.Width - 4
	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), innerWidth)
	titleStyle := lipgloss.NewStyle().Foreground(config.TitleColor)
	fill := max(0, innerWidth-lipgloss.Width(titleStr)-1)
	return fmt.Sprintf("┌─ %s %s┐", titleStyle.Render(titleStr), strings.Repeat("─", fill))
}

// padLine renders "│  content   │" with content padded to the inner width
func padLine(content string, innerWidth int) string {
	padding := max(0, innerWidth-lipgloss.Width(content))
	return "│  " + content + strings.Repeat(" ", padding) + "│"
}

// MetricBlock renders a compact metric display block
func MetricBlock(icon icons.Icon, title, value, subtitle string, config MetricBlockConfig) string {
	config = config.normalized()
	innerWidth := config.Width - 4

	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)

	return strings.Join([]string{
		borderStyle.Render(topBorder(icon, title, config)),
		borderStyle.Render(padLine(valueStyle.Render(truncate(value, innerWidth)), innerWidth)),
		borderStyle.Render(padLine(subtitleStyle.Render(truncate(subtitle, innerWidth)), innerWidth)),
		borderStyle.Render(fmt.Sprintf("└%s┘", strings.Repeat("─", config.Width-2))),
	}, "\n")
}

// MetricBlockWithSparkline renders a metric block with a trend line after the value
func MetricBlockWithSparkline(icon icons.Icon, title, value string, sparkData []float64, subtitle string, config MetricBlockConfig) string {
	config = config.normalized()
	innerWidth := config.Width - 4
	sparkWidth := min(10, max(0, innerWidth-lipgloss.Width(value)-2))

	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)

	line := valueStyle.Render(value)
	if spark := Sparkline(sparkData, sparkWidth, config.TitleColor); spark != "" {
		line += "  " + spark
	}

	return strings.Join([]string{
		borderStyle.Render(topBorder(icon, title, config)),
		borderStyle.Render(padLine(line, innerWidth)),
		borderStyle.Render(padLine(subtitleStyle.Render(truncate(subtitle, innerWidth)), innerWidth)),
		borderStyle.Render(fmt.Sprintf("└%s┘", strings.Repeat("─", config.Width-2))),
	}, "\n")
}

// CountBlock renders a count with thousands separators
func CountBlock(icon icons.Icon, title string, count int, label string, config MetricBlockConfig) string {
	return MetricBlock(icon, title, humanize.Comma(int64(count)), label, config)
}

// truncate shortens a string to maxLen display cells with an ellipsis
func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		if maxLen < 0 {
			maxLen = 0
		}
		return string(runes[:min(maxLen, len(runes))])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxLen {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
