package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/edgefn/roadbook/pkg/directions"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	legStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// renderRoutes prints a turn-by-turn summary of every returned route.
func renderRoutes(resp *directions.RouteResponse) string {
	var b strings.Builder
	for i, route := range resp.Routes {
		title := fmt.Sprintf("Route %d  %s  %s", i+1,
			formatDistance(route.Distance), formatDuration(route.ExpectedTravelTime))
		b.WriteString(headerStyle.Render(title))
		b.WriteString("\n")
		if route.UUID != "" {
			b.WriteString(faintStyle.Render("uuid: " + route.UUID))
			b.WriteString("\n")
		}
		for _, leg := range route.Legs {
			name := leg.Name
			if name == "" {
				name = "(unnamed)"
			}
			b.WriteString(legStyle.Render(fmt.Sprintf("  via %s  %s  %s",
				name, formatDistance(leg.Distance), formatDuration(leg.ExpectedTravelTime))))
			b.WriteString("\n")
			for _, step := range leg.Steps {
				b.WriteString(renderStep(step))
			}
		}
		if i < len(resp.Routes)-1 {
			b.WriteString("\n")
		}
	}
	if len(resp.Routes) == 0 {
		b.WriteString("no routes\n")
	}
	return b.String()
}

func renderStep(step *directions.RouteStep) string {
	var b strings.Builder
	instruction := step.Maneuver.Instruction
	if instruction == "" {
		instruction = strings.TrimSpace(step.Maneuver.Type + " " + step.Maneuver.Modifier)
	}
	b.WriteString(fmt.Sprintf("    %-9s %s\n", formatDistance(step.Distance), instruction))
	for _, voice := range step.VoiceInstructions {
		b.WriteString(faintStyle.Render(fmt.Sprintf("      voice @%s: %s",
			formatDistance(voice.DistanceAlongGeometry), voice.Announcement)))
		b.WriteString("\n")
	}
	return b.String()
}

func formatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return fmt.Sprintf("%.0f m", meters)
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
