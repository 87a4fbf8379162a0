package directions

import (
	"fmt"
	"net/url"
	"strings"
)

// WireVariant selects which generation of the directions wire format a
// payload follows. The builder for each variant is chosen by this tag,
// never by subtyping.
type WireVariant int

const (
	// VariantCurrent is the present API generation: one leg per
	// consecutive waypoint pair, polyline shapes at precision 1e5.
	VariantCurrent WireVariant = iota

	// VariantLegacy is the previous generation: exactly one leg spanning
	// the first and last waypoint, polyline shapes at precision 1e6.
	VariantLegacy
)

func (v WireVariant) String() string {
	if v == VariantLegacy {
		return "legacy"
	}
	return "current"
}

// Profile identifies a routing profile.
type Profile string

const (
	ProfileDriving Profile = "driving"
	ProfileWalking Profile = "walking"
	ProfileCycling Profile = "cycling"
)

// GeometryFormat selects the shape encoding requested from the service.
type GeometryFormat string

const (
	GeometryPolyline GeometryFormat = "polyline"
	GeometryGeoJSON  GeometryFormat = "geojson"
)

// RouteOptions describes one directions request: the profile, the ordered
// waypoint sequence and output-detail flags. Options are read-only once a
// request has been issued.
type RouteOptions struct {
	Profile   Profile
	Waypoints []Waypoint

	// Variant selects the wire format used to decode the response.
	Variant WireVariant

	IncludesSteps     bool
	IncludesAlternate bool
	GeometryFormat    GeometryFormat
	Locale            string
}

// Validate checks the option invariants shared by every request kind.
func (o *RouteOptions) Validate() error {
	if len(o.Waypoints) < 2 {
		return fmt.Errorf("a route requires at least two waypoints, got %d", len(o.Waypoints))
	}
	if strings.TrimSpace(string(o.Profile)) == "" {
		return fmt.Errorf("a routing profile is required")
	}
	return nil
}

// Path returns the versioned request path for these options.
func (o *RouteOptions) Path() string {
	coords := make([]string, 0, len(o.Waypoints))
	for _, w := range o.Waypoints {
		coords = append(coords, w.queryValue())
	}
	if o.Variant == VariantLegacy {
		return fmt.Sprintf("v4/directions/%s/%s.json", o.Profile, strings.Join(coords, ";"))
	}
	return fmt.Sprintf("directions/v5/%s/%s", o.Profile, strings.Join(coords, ";"))
}

// Query returns the derived query parameters for these options.
func (o *RouteOptions) Query() url.Values {
	q := url.Values{}
	if o.IncludesSteps {
		q.Set("steps", "true")
	}
	if o.IncludesAlternate {
		q.Set("alternatives", "true")
	}
	gf := o.GeometryFormat
	if gf == "" {
		gf = GeometryPolyline
	}
	q.Set("geometries", string(gf))
	if strings.TrimSpace(o.Locale) != "" {
		q.Set("language", strings.TrimSpace(o.Locale))
	}
	if bearings := o.bearingsQuery(); bearings != "" {
		q.Set("bearings", bearings)
	}
	return q
}

func (o *RouteOptions) bearingsQuery() string {
	any := false
	parts := make([]string, 0, len(o.Waypoints))
	for _, w := range o.Waypoints {
		v := w.bearingValue()
		if v != "" {
			any = true
		}
		parts = append(parts, v)
	}
	if !any {
		return ""
	}
	return strings.Join(parts, ";")
}

// MatchOptions describes one map-matching request. Match requests POST
// their coordinate trace as a form-encoded body instead of a URL path.
type MatchOptions struct {
	Profile   Profile
	Waypoints []Waypoint

	IncludesSteps  bool
	GeometryFormat GeometryFormat
	Locale         string
}

// Validate checks the option invariants for a match request.
func (o *MatchOptions) Validate() error {
	if len(o.Waypoints) < 2 {
		return fmt.Errorf("a match requires at least two trace points, got %d", len(o.Waypoints))
	}
	if strings.TrimSpace(string(o.Profile)) == "" {
		return fmt.Errorf("a routing profile is required")
	}
	return nil
}

// Path returns the versioned request path for these options.
func (o *MatchOptions) Path() string {
	return fmt.Sprintf("matching/v5/%s", o.Profile)
}

// Query returns the derived query parameters for these options.
func (o *MatchOptions) Query() url.Values {
	q := url.Values{}
	if o.IncludesSteps {
		q.Set("steps", "true")
	}
	gf := o.GeometryFormat
	if gf == "" {
		gf = GeometryPolyline
	}
	q.Set("geometries", string(gf))
	if strings.TrimSpace(o.Locale) != "" {
		q.Set("language", strings.TrimSpace(o.Locale))
	}
	return q
}

// Body returns the form-encoded request body for a match request.
func (o *MatchOptions) Body() url.Values {
	coords := make([]string, 0, len(o.Waypoints))
	for _, w := range o.Waypoints {
		coords = append(coords, w.queryValue())
	}
	body := url.Values{}
	body.Set("coordinates", strings.Join(coords, ";"))
	return body
}

// routeOptions reshapes match options into route options so both request
// kinds share one decode path.
func (o *MatchOptions) routeOptions() *RouteOptions {
	return &RouteOptions{
		Profile:        o.Profile,
		Waypoints:      o.Waypoints,
		Variant:        VariantCurrent,
		IncludesSteps:  o.IncludesSteps,
		GeometryFormat: o.GeometryFormat,
		Locale:         o.Locale,
	}
}
