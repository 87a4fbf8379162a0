package directions

import (
	"net/url"

	"github.com/paulmach/orb"
)

// Route is one normalized routing result: an immutable Leg/Step value
// graph plus request-scoped metadata attached by the pipeline after
// construction.
type Route struct {
	// Distance is the total length of the route in meters.
	Distance float64 `json:"distance"`

	// ExpectedTravelTime is the expected duration in seconds.
	ExpectedTravelTime float64 `json:"duration"`

	// SpeechLocale is the locale voice instructions are rendered in,
	// when the payload carries one.
	SpeechLocale string `json:"voiceLocale,omitempty"`

	// Geometry is the overview shape of the route, when requested.
	Geometry []orb.Point `json:"geometry,omitempty"`

	// Legs has exactly len(waypoints)-1 entries for the current wire
	// variant; leg i spans waypoint i to waypoint i+1. The legacy
	// variant produces exactly one leg spanning first to last waypoint.
	Legs []*RouteLeg `json:"legs"`

	// Variant records which wire-format generation produced this route.
	Variant WireVariant `json:"-"`

	// Request-scoped metadata. Not present in the payload; set exactly
	// once by the pipeline after decoding, before delivery.
	AccessToken string   `json:"-"`
	APIEndpoint *url.URL `json:"-"`
	UUID        string   `json:"uuid,omitempty"`
}

// RouteLeg is one waypoint-to-waypoint segment of a route. Legs reference
// the caller-supplied waypoints; they do not own them.
type RouteLeg struct {
	Name     string  `json:"summary"`
	Distance float64 `json:"distance"`
	// ExpectedTravelTime is the expected duration in seconds.
	ExpectedTravelTime float64      `json:"duration"`
	Steps              []*RouteStep `json:"steps"`

	Source      Waypoint `json:"source"`
	Destination Waypoint `json:"destination"`
}

// RouteStep is a single maneuver along a leg.
type RouteStep struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	// ExpectedTravelTime is the expected duration in seconds.
	ExpectedTravelTime float64     `json:"duration"`
	Geometry           []orb.Point `json:"geometry,omitempty"`
	Mode               string      `json:"mode,omitempty"`

	Maneuver Maneuver `json:"maneuver"`

	VoiceInstructions  []VoiceInstruction  `json:"voiceInstructions,omitempty"`
	BannerInstructions []BannerInstruction `json:"bannerInstructions,omitempty"`
}

// Maneuver describes the action taken at the start of a step.
type Maneuver struct {
	Type          string    `json:"type"`
	Modifier      string    `json:"modifier,omitempty"`
	Instruction   string    `json:"instruction,omitempty"`
	Location      orb.Point `json:"location"`
	BearingBefore float64   `json:"bearing_before,omitempty"`
	BearingAfter  float64   `json:"bearing_after,omitempty"`
}

// VoiceInstruction is a speakable guidance cue triggered at a distance
// offset along the step geometry.
type VoiceInstruction struct {
	DistanceAlongGeometry float64 `json:"distanceAlongGeometry"`
	Announcement          string  `json:"announcement"`
	SSMLAnnouncement      string  `json:"ssmlAnnouncement"`
}

// BannerInstruction is a displayable guidance cue triggered at a distance
// offset along the step geometry.
type BannerInstruction struct {
	DistanceAlongGeometry float64        `json:"distanceAlongGeometry"`
	Primary               BannerSection  `json:"primary"`
	Secondary             *BannerSection `json:"secondary,omitempty"`
}

// BannerSection is one line of a banner: a summary text plus its ordered
// component breakdown.
type BannerSection struct {
	Text       string            `json:"text"`
	Type       string            `json:"type,omitempty"`
	Modifier   string            `json:"modifier,omitempty"`
	Components []BannerComponent `json:"components,omitempty"`
}

// BannerComponent is one piece of a banner section.
type BannerComponent struct {
	Text                 string `json:"text"`
	Type                 string `json:"type"`
	Abbreviation         string `json:"abbr,omitempty"`
	AbbreviationPriority int    `json:"abbr_priority"`
}

// RouteResponse is the consumer-facing result of a directions call.
type RouteResponse struct {
	// Waypoints reflect the input locations after conflation by the
	// service, in request order.
	Waypoints []Waypoint `json:"waypoints"`

	// Routes are the normalized route graphs, best first.
	Routes []*Route `json:"routes"`

	// UUID is the opaque identifier of this route set.
	UUID string `json:"uuid,omitempty"`
}
