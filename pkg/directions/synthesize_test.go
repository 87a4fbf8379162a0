package directions

import (
	"fmt"
	"strings"
	"testing"
)

func turnLeftStep() map[string]any {
	return map[string]any{
		"distance": 250.0,
		"duration": 30.0,
		"name":     "Main St",
		"maneuver": map[string]any{
			"type":     "turn",
			"modifier": "left",
		},
	}
}

func TestSynthesizeInstructions_BannerEchoesRoadName(t *testing.T) {
	out, err := synthesizeInstructions(turnLeftStep(), DefaultFormatter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	banners, _ := out["bannerInstructions"].([]any)
	if len(banners) != 1 {
		t.Fatalf("exactly one banner entry expected, got %d", len(banners))
	}
	banner := banners[0].(map[string]any)
	primary := banner["primary"].(map[string]any)
	if primary["text"] != "Main St" || primary["type"] != "turn" || primary["modifier"] != "left" {
		t.Fatalf("unexpected primary: %#v", primary)
	}
	components := primary["components"].([]any)
	if len(components) != 1 {
		t.Fatalf("exactly one component expected, got %d", len(components))
	}
	component := components[0].(map[string]any)
	if component["text"] != "Main St" || component["type"] != "text" ||
		component["abbr"] != "Main St" || component["abbr_priority"] != 0 {
		t.Fatalf("unexpected component: %#v", component)
	}
	if banner["secondary"] != nil {
		t.Fatalf("secondary banner must be absent: %#v", banner["secondary"])
	}
}

func TestSynthesizeInstructions_VoiceWrapsTextInSpeechMarkup(t *testing.T) {
	out, err := synthesizeInstructions(turnLeftStep(), DefaultFormatter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	voices, _ := out["voiceInstructions"].([]any)
	if len(voices) != 1 {
		t.Fatalf("exactly one voice entry expected, got %d", len(voices))
	}
	voice := voices[0].(map[string]any)
	plain, _ := voice["announcement"].(string)
	ssml, _ := voice["ssmlAnnouncement"].(string)
	if plain == "" {
		t.Fatal("plain announcement is empty")
	}
	if !strings.HasPrefix(ssml, ssmlPrefix) || !strings.HasSuffix(ssml, ssmlSuffix) {
		t.Fatalf("ssml not wrapped in the fixed markup: %q", ssml)
	}
	if !strings.Contains(ssml, plain) {
		t.Fatalf("ssml %q does not contain the rendered text %q", ssml, plain)
	}
	if voice["distanceAlongGeometry"] != 250.0 {
		t.Fatalf("trigger offset must be the step distance: %v", voice["distanceAlongGeometry"])
	}
}

func TestSynthesizeInstructions_RewritesManeuverInstruction(t *testing.T) {
	formatter := FormatterFunc(func(map[string]any) (string, error) {
		return "Ga linksaf naar Main St", nil
	})
	in := turnLeftStep()
	in["maneuver"].(map[string]any)["instruction"] = "original"
	out, err := synthesizeInstructions(in, formatter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out["maneuver"].(map[string]any)["instruction"]; got != "Ga linksaf naar Main St" {
		t.Fatalf("instruction not rewritten: %v", got)
	}
	// The input step must stay untouched.
	if got := in["maneuver"].(map[string]any)["instruction"]; got != "original" {
		t.Fatalf("input step mutated: %v", got)
	}
}

func TestSynthesizeInstructions_MissingFields(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"distance", func(s map[string]any) { delete(s, "distance") }},
		{"name", func(s map[string]any) { delete(s, "name") }},
		{"maneuver", func(s map[string]any) { delete(s, "maneuver") }},
		{"type", func(s map[string]any) { delete(s["maneuver"].(map[string]any), "type") }},
		{"modifier", func(s map[string]any) { delete(s["maneuver"].(map[string]any), "modifier") }},
	} {
		step := turnLeftStep()
		tc.mutate(step)
		if _, err := synthesizeInstructions(step, DefaultFormatter()); err == nil {
			t.Fatalf("missing %s must fail synthesis", tc.name)
		}
	}
}

func TestSynthesizeInstructions_FormatterFailure(t *testing.T) {
	formatter := FormatterFunc(func(map[string]any) (string, error) {
		return "", fmt.Errorf("no template for maneuver")
	})
	if _, err := synthesizeInstructions(turnLeftStep(), formatter); err == nil {
		t.Fatal("formatter errors must propagate")
	}
}

func TestDefaultFormatter(t *testing.T) {
	text, err := DefaultFormatter().Format(turnLeftStep())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Turn left onto Main St" {
		t.Fatalf("unexpected instruction: %q", text)
	}
}
