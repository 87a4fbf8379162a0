package directions

import (
	"github.com/paulmach/orb"

	"github.com/edgefn/roadbook/pkg/geom"
	"github.com/edgefn/roadbook/pkg/jsonutil"
)

// buildRouteResponse normalizes a top-level directions payload into a
// RouteResponse. The variant tag on the options selects the builder
// behavior for each route.
func buildRouteResponse(payload map[string]any, opts *RouteOptions) (*RouteResponse, error) {
	resp := &RouteResponse{
		UUID:      jsonutil.CoerceString(payload["uuid"]),
		Waypoints: conflateWaypoints(payload["waypoints"], opts.Waypoints),
	}

	rawRoutes, ok := payload["routes"].([]any)
	if !ok {
		return nil, &MalformedResponseError{Field: "routes", Reason: "is missing or not an array"}
	}
	resp.Routes = make([]*Route, 0, len(rawRoutes))
	for _, raw := range rawRoutes {
		obj, _ := raw.(map[string]any)
		if obj == nil {
			return nil, &MalformedResponseError{Field: "routes", Reason: "contains a non-object entry"}
		}
		route, err := buildRoute(obj, opts.Waypoints, opts.Variant)
		if err != nil {
			return nil, err
		}
		resp.Routes = append(resp.Routes, route)
	}
	return resp, nil
}

// buildRoute constructs one Route graph from a route payload plus the
// ordered waypoint list.
//
// Current variant: legs are paired with consecutive waypoint pairs and the
// leg count must equal len(waypoints)-1. Legacy variant: exactly one leg
// spanning the first and last waypoint, shapes at the coarser scale.
func buildRoute(obj map[string]any, waypoints []Waypoint, variant WireVariant) (*Route, error) {
	distance, ok := jsonutil.RequireFloat(obj["distance"])
	if !ok {
		return nil, &MalformedResponseError{Field: "distance", Reason: "is missing or not numeric"}
	}
	duration, ok := jsonutil.RequireFloat(obj["duration"])
	if !ok {
		return nil, &MalformedResponseError{Field: "duration", Reason: "is missing or not numeric"}
	}

	route := &Route{
		Distance:           distance,
		ExpectedTravelTime: duration,
		SpeechLocale:       jsonutil.CoerceString(obj["voiceLocale"]),
		Variant:            variant,
	}

	scale := polylineScale(variant)
	geometry, err := decodeGeometry(obj["geometry"], scale)
	if err != nil {
		return nil, err
	}
	route.Geometry = geometry

	rawLegs, _ := obj["legs"].([]any)
	if variant == VariantLegacy {
		leg, err := buildLegacyLeg(rawLegs, waypoints, scale)
		if err != nil {
			return nil, err
		}
		route.Legs = []*RouteLeg{leg}
		return route, nil
	}

	if len(rawLegs) != len(waypoints)-1 {
		return nil, &MalformedResponseError{Field: "legs", Reason: "count does not match the waypoint pairs"}
	}
	route.Legs = make([]*RouteLeg, 0, len(rawLegs))
	// Zip the waypoint sequence against itself offset by one: leg i spans
	// waypoints[i] -> waypoints[i+1].
	for i, raw := range rawLegs {
		legObj, _ := raw.(map[string]any)
		if legObj == nil {
			return nil, &MalformedResponseError{Field: "legs", Reason: "contains a non-object entry"}
		}
		leg, err := buildLeg(legObj, waypoints[i], waypoints[i+1], scale)
		if err != nil {
			return nil, err
		}
		route.Legs = append(route.Legs, leg)
	}
	return route, nil
}

// buildLegacyLeg builds the single first-to-last leg of a legacy route,
// ignoring intermediate waypoints.
func buildLegacyLeg(rawLegs []any, waypoints []Waypoint, scale float64) (*RouteLeg, error) {
	if len(rawLegs) == 0 {
		return nil, &MalformedResponseError{Field: "legs", Reason: "is missing or empty"}
	}
	legObj, _ := rawLegs[0].(map[string]any)
	if legObj == nil {
		return nil, &MalformedResponseError{Field: "legs", Reason: "contains a non-object entry"}
	}
	return buildLeg(legObj, waypoints[0], waypoints[len(waypoints)-1], scale)
}

func buildLeg(obj map[string]any, source, destination Waypoint, scale float64) (*RouteLeg, error) {
	distance, ok := jsonutil.RequireFloat(obj["distance"])
	if !ok {
		return nil, &MalformedResponseError{Field: "legs.distance", Reason: "is missing or not numeric"}
	}
	duration, ok := jsonutil.RequireFloat(obj["duration"])
	if !ok {
		return nil, &MalformedResponseError{Field: "legs.duration", Reason: "is missing or not numeric"}
	}
	leg := &RouteLeg{
		Name:               jsonutil.CoerceString(obj["summary"]),
		Distance:           distance,
		ExpectedTravelTime: duration,
		Source:             source,
		Destination:        destination,
	}
	rawSteps, _ := obj["steps"].([]any)
	leg.Steps = make([]*RouteStep, 0, len(rawSteps))
	for _, raw := range rawSteps {
		stepObj, _ := raw.(map[string]any)
		if stepObj == nil {
			return nil, &MalformedResponseError{Field: "steps", Reason: "contains a non-object entry"}
		}
		step, err := buildStep(stepObj, scale)
		if err != nil {
			return nil, err
		}
		leg.Steps = append(leg.Steps, step)
	}
	return leg, nil
}

func buildStep(obj map[string]any, scale float64) (*RouteStep, error) {
	distance, ok := jsonutil.RequireFloat(obj["distance"])
	if !ok {
		return nil, &MalformedResponseError{Field: "steps.distance", Reason: "is missing or not numeric"}
	}
	duration, ok := jsonutil.RequireFloat(obj["duration"])
	if !ok {
		return nil, &MalformedResponseError{Field: "steps.duration", Reason: "is missing or not numeric"}
	}
	step := &RouteStep{
		Name:               jsonutil.CoerceString(obj["name"]),
		Distance:           distance,
		ExpectedTravelTime: duration,
		Mode:               jsonutil.CoerceString(obj["mode"]),
	}
	geometry, err := decodeGeometry(obj["geometry"], scale)
	if err != nil {
		return nil, err
	}
	step.Geometry = geometry
	if m, _ := obj["maneuver"].(map[string]any); m != nil {
		step.Maneuver = Maneuver{
			Type:          jsonutil.CoerceString(m["type"]),
			Modifier:      jsonutil.CoerceString(m["modifier"]),
			Instruction:   jsonutil.CoerceString(m["instruction"]),
			Location:      coercePoint(m["location"]),
			BearingBefore: jsonutil.CoerceFloat(m["bearing_before"]),
			BearingAfter:  jsonutil.CoerceFloat(m["bearing_after"]),
		}
	}
	step.VoiceInstructions = buildVoiceInstructions(obj["voiceInstructions"])
	step.BannerInstructions = buildBannerInstructions(obj["bannerInstructions"])
	return step, nil
}

func buildVoiceInstructions(v any) []VoiceInstruction {
	raw, _ := v.([]any)
	if len(raw) == 0 {
		return nil
	}
	out := make([]VoiceInstruction, 0, len(raw))
	for _, entry := range raw {
		obj, _ := entry.(map[string]any)
		if obj == nil {
			continue
		}
		out = append(out, VoiceInstruction{
			DistanceAlongGeometry: jsonutil.CoerceFloat(obj["distanceAlongGeometry"]),
			Announcement:          jsonutil.CoerceString(obj["announcement"]),
			SSMLAnnouncement:      jsonutil.CoerceString(obj["ssmlAnnouncement"]),
		})
	}
	return out
}

func buildBannerInstructions(v any) []BannerInstruction {
	raw, _ := v.([]any)
	if len(raw) == 0 {
		return nil
	}
	out := make([]BannerInstruction, 0, len(raw))
	for _, entry := range raw {
		obj, _ := entry.(map[string]any)
		if obj == nil {
			continue
		}
		instruction := BannerInstruction{
			DistanceAlongGeometry: jsonutil.CoerceFloat(obj["distanceAlongGeometry"]),
		}
		if p, _ := obj["primary"].(map[string]any); p != nil {
			instruction.Primary = buildBannerSection(p)
		}
		if s, _ := obj["secondary"].(map[string]any); s != nil {
			sec := buildBannerSection(s)
			instruction.Secondary = &sec
		}
		out = append(out, instruction)
	}
	return out
}

func buildBannerSection(obj map[string]any) BannerSection {
	section := BannerSection{
		Text:     jsonutil.CoerceString(obj["text"]),
		Type:     jsonutil.CoerceString(obj["type"]),
		Modifier: jsonutil.CoerceString(obj["modifier"]),
	}
	raw, _ := obj["components"].([]any)
	for _, entry := range raw {
		c, _ := entry.(map[string]any)
		if c == nil {
			continue
		}
		section.Components = append(section.Components, BannerComponent{
			Text:                 jsonutil.CoerceString(c["text"]),
			Type:                 jsonutil.CoerceString(c["type"]),
			Abbreviation:         jsonutil.CoerceString(c["abbr"]),
			AbbreviationPriority: jsonutil.CoerceInt(c["abbr_priority"]),
		})
	}
	return section
}

// decodeGeometry accepts the three wire shapes a geometry field can take:
// absent, an encoded path string, or a structured line object.
func decodeGeometry(v any, scale float64) ([]orb.Point, error) {
	switch g := v.(type) {
	case nil:
		return nil, nil
	case string:
		pts, err := geom.DecodePolyline(g, scale)
		if err != nil {
			return nil, &MalformedResponseError{Field: "geometry", Reason: "is not a decodable path string"}
		}
		return pts, nil
	case map[string]any:
		pts, err := geom.DecodeLineObject(g)
		if err != nil {
			return nil, &MalformedResponseError{Field: "geometry", Reason: "is not a line object"}
		}
		return pts, nil
	default:
		return nil, &MalformedResponseError{Field: "geometry", Reason: "has an unsupported shape"}
	}
}

func polylineScale(variant WireVariant) float64 {
	if variant == VariantLegacy {
		return geom.ScaleLegacy
	}
	return geom.ScaleCurrent
}

// conflateWaypoints overlays the service-reported waypoint names and
// snapped locations onto the caller-supplied sequence.
func conflateWaypoints(v any, input []Waypoint) []Waypoint {
	out := make([]Waypoint, len(input))
	copy(out, input)
	raw, _ := v.([]any)
	for i, entry := range raw {
		if i >= len(out) {
			break
		}
		obj, _ := entry.(map[string]any)
		if obj == nil {
			continue
		}
		if name := jsonutil.CoerceString(obj["name"]); name != "" {
			out[i].Name = name
		}
		if loc, ok := obj["location"].([]any); ok && len(loc) == 2 {
			out[i].Coordinate = coercePoint(loc)
		}
	}
	return out
}

func coercePoint(v any) orb.Point {
	loc, _ := v.([]any)
	if len(loc) != 2 {
		return orb.Point{}
	}
	return orb.Point{jsonutil.CoerceFloat(loc[0]), jsonutil.CoerceFloat(loc[1])}
}
