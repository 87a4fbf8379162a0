package directions

import (
	"fmt"
	"strings"

	"github.com/edgefn/roadbook/pkg/jsonutil"
)

// InstructionFormatter renders the natural-language maneuver text for one
// raw step record. Implementations own localization.
type InstructionFormatter interface {
	Format(step map[string]any) (string, error)
}

// FormatterFunc adapts a function to the InstructionFormatter interface.
type FormatterFunc func(step map[string]any) (string, error)

func (f FormatterFunc) Format(step map[string]any) (string, error) { return f(step) }

// The speech-markup template wrapped around every synthesized
// announcement. The wrapper is fixed; only the text varies.
const (
	ssmlPrefix = `<speak><amazon:effect name="drc"><prosody rate="1.08">`
	ssmlSuffix = `</prosody></amazon:effect></speak>`
)

// synthesizeInstructions derives one voice and one banner guidance entry
// for a raw step record and returns a rewritten copy of the step carrying
// them. The input step is never mutated; later decoding of the returned
// step sees the synthesized maneuver instruction, not the original.
//
// Exactly one entry of each kind is produced per step; there is no
// distance-based splitting across multiple guidance points.
func synthesizeInstructions(step map[string]any, formatter InstructionFormatter) (map[string]any, error) {
	distance, ok := jsonutil.RequireFloat(step["distance"])
	if !ok {
		return nil, fmt.Errorf("step distance is missing or not numeric")
	}
	name, hasName := step["name"].(string)
	if !hasName {
		return nil, fmt.Errorf("step name is missing")
	}
	maneuver, _ := step["maneuver"].(map[string]any)
	if maneuver == nil {
		return nil, fmt.Errorf("step maneuver is missing")
	}
	maneuverType := jsonutil.CoerceString(maneuver["type"])
	if maneuverType == "" {
		return nil, fmt.Errorf("step maneuver type is missing")
	}
	if _, hasModifier := maneuver["modifier"]; !hasModifier {
		return nil, fmt.Errorf("step maneuver modifier is missing")
	}
	maneuverModifier := jsonutil.CoerceString(maneuver["modifier"])

	text, err := formatter.Format(step)
	if err != nil {
		return nil, fmt.Errorf("format instruction: %w", err)
	}

	voice := map[string]any{
		"distanceAlongGeometry": distance,
		"announcement":          text,
		"ssmlAnnouncement":      ssmlPrefix + text + ssmlSuffix,
	}
	banner := map[string]any{
		"distanceAlongGeometry": distance,
		"primary": map[string]any{
			"text":     name,
			"type":     maneuverType,
			"modifier": maneuverModifier,
			"components": []any{
				map[string]any{
					"text":          name,
					"type":          "text",
					"abbr":          name,
					"abbr_priority": 0,
				},
			},
		},
		"secondary": nil,
	}

	out := make(map[string]any, len(step)+2)
	for k, v := range step {
		out[k] = v
	}
	newManeuver := make(map[string]any, len(maneuver)+1)
	for k, v := range maneuver {
		newManeuver[k] = v
	}
	newManeuver["instruction"] = text
	out["maneuver"] = newManeuver
	out["voiceInstructions"] = []any{voice}
	out["bannerInstructions"] = []any{banner}
	return out, nil
}

// DefaultFormatter renders a plain English instruction from the maneuver
// type, modifier and road name. Consumers with localization requirements
// supply their own InstructionFormatter.
func DefaultFormatter() InstructionFormatter {
	return FormatterFunc(func(step map[string]any) (string, error) {
		maneuver, _ := step["maneuver"].(map[string]any)
		if maneuver == nil {
			return "", fmt.Errorf("step maneuver is missing")
		}
		maneuverType := jsonutil.CoerceString(maneuver["type"])
		modifier := jsonutil.CoerceString(maneuver["modifier"])
		name := strings.TrimSpace(jsonutil.CoerceString(step["name"]))

		var b strings.Builder
		switch maneuverType {
		case "depart":
			b.WriteString("Head out")
		case "arrive":
			b.WriteString("You have arrived at your destination")
		case "turn":
			b.WriteString("Turn")
			if modifier != "" {
				b.WriteString(" " + modifier)
			}
		case "continue":
			b.WriteString("Continue")
			if modifier != "" && modifier != "straight" {
				b.WriteString(" " + modifier)
			}
		default:
			verb := strings.ReplaceAll(maneuverType, "_", " ")
			if verb == "" {
				verb = "continue"
			}
			b.WriteString(strings.ToUpper(verb[:1]) + verb[1:])
			if modifier != "" {
				b.WriteString(" " + modifier)
			}
		}
		if name != "" && maneuverType != "arrive" {
			b.WriteString(" onto " + name)
		}
		return b.String(), nil
	})
}
