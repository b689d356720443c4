package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/maadhav-codes/diff2commit/internal/logger"
	"github.com/maadhav-codes/diff2commit/internal/models"
	"github.com/maadhav-codes/diff2commit/internal/ui/styles"
)

// RenderGradientBar renders the filled share of a bar, shading from green
// to red as it fills.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	filled = max(0, min(filled, width))

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#51cf66", "#ff6b6b", t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

// LimitBar renders the monthly spend against the cost limit, or a note when
// no limit is set.
func LimitBar(status models.LimitStatus, width int) string {
	if status.Limit <= 0 {
		return styles.MutedTextStyle.Render("No monthly cost limit set")
	}

	percent := status.Percent()
	amounts := fmt.Sprintf("%s / %s", FormatCost(status.Current), FormatCost(status.Limit))
	percentStr := styles.GetLimitStyle(percent).
		Width(7).
		Align(lipgloss.Right).
		Render(FormatPercent(percent))

	barWidth := max(5, width-lipgloss.Width(amounts)-12)
	return fmt.Sprintf("[%s] %s %s", RenderGradientBar(percent, barWidth), percentStr, amounts)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
