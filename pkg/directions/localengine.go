package directions

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/edgefn/roadbook/pkg/jsonutil"
)

// LocalEngine is the embedded routing engine boundary. Its only contract
// is: given origin and destination coordinates, return a JSON payload
// shaped like the remote route-array response.
type LocalEngine interface {
	Route(ctx context.Context, origin, destination orb.Point) ([]byte, error)
}

// LocalEngineConfig binds a local engine to a client at construction.
// Once configured, the pipeline prefers locally derived results for every
// call.
type LocalEngineConfig struct {
	// Engine computes routes from the locally loaded dataset.
	Engine LocalEngine

	// DatasetPath identifies the loaded routing dataset. It is carried
	// for logging and dump metadata only; the engine owns the dataset.
	DatasetPath string

	// SpeechLocale tags every synthesized route, e.g. "en-US".
	SpeechLocale string

	// Formatter renders maneuver text for synthesized instructions.
	// DefaultFormatter() is used when nil.
	Formatter InstructionFormatter
}

func (c LocalEngineConfig) formatter() InstructionFormatter {
	if c.Formatter != nil {
		return c.Formatter
	}
	return DefaultFormatter()
}

// deriveLocally obtains a raw payload from the local engine and
// synthesizes guidance instructions into every step of every leg of every
// route. Any missing required field or an empty engine result fails the
// whole derivation; a partially synthesized payload is never returned.
func deriveLocally(ctx context.Context, cfg LocalEngineConfig, origin, destination orb.Point) (map[string]any, error) {
	raw, err := cfg.Engine.Route(ctx, origin, destination)
	if err != nil {
		return nil, &SynthesisError{Reason: "local engine call failed", Err: err}
	}
	payload, err := jsonutil.ParseObject(raw, "local engine")
	if err != nil {
		return nil, &SynthesisError{Reason: "local engine payload is not an object", Err: err}
	}
	return synthesizePayload(payload, cfg.SpeechLocale, cfg.formatter())
}

// synthesizePayload rewrites an engine payload with synthesized voice and
// banner instructions, round-tripping every field it does not touch.
func synthesizePayload(payload map[string]any, locale string, formatter InstructionFormatter) (map[string]any, error) {
	rawRoutes, _ := payload["routes"].([]any)
	if len(rawRoutes) == 0 {
		return nil, &SynthesisError{Reason: "local engine yielded no routes"}
	}

	outRoutes := make([]any, 0, len(rawRoutes))
	for _, rawRoute := range rawRoutes {
		route, _ := rawRoute.(map[string]any)
		if route == nil {
			return nil, &SynthesisError{Reason: "local engine route is not an object"}
		}
		newRoute := make(map[string]any, len(route)+1)
		for k, v := range route {
			newRoute[k] = v
		}
		newRoute["voiceLocale"] = locale

		rawLegs, _ := route["legs"].([]any)
		outLegs := make([]any, 0, len(rawLegs))
		for _, rawLeg := range rawLegs {
			leg, _ := rawLeg.(map[string]any)
			if leg == nil {
				return nil, &SynthesisError{Reason: "local engine leg is not an object"}
			}
			newLeg := make(map[string]any, len(leg))
			for k, v := range leg {
				newLeg[k] = v
			}

			rawSteps, _ := leg["steps"].([]any)
			outSteps := make([]any, 0, len(rawSteps))
			for _, rawStep := range rawSteps {
				step, _ := rawStep.(map[string]any)
				if step == nil {
					return nil, &SynthesisError{Reason: "local engine step is not an object"}
				}
				newStep, err := synthesizeInstructions(step, formatter)
				if err != nil {
					return nil, &SynthesisError{Reason: "step synthesis failed", Err: err}
				}
				outSteps = append(outSteps, newStep)
			}
			newLeg["steps"] = outSteps
			outLegs = append(outLegs, newLeg)
		}
		newRoute["legs"] = outLegs
		outRoutes = append(outRoutes, newRoute)
	}

	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	out["routes"] = outRoutes
	if _, ok := out["code"]; !ok {
		out["code"] = CodeOK
	}
	return out, nil
}
