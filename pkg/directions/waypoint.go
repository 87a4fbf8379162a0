package directions

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Waypoint is an ordered input location for a route or match request.
// Its identity is its position in the caller-supplied sequence; it is
// never modified after a request has been issued.
type Waypoint struct {
	// Coordinate is the [lon, lat] location of the waypoint.
	Coordinate orb.Point `json:"location"`

	// Name optionally labels the waypoint, e.g. with a street name the
	// waypoint should snap to.
	Name string `json:"name,omitempty"`

	// Heading optionally constrains the direction of travel when
	// departing the waypoint, in degrees clockwise from true north.
	Heading *float64 `json:"heading,omitempty"`

	// HeadingAccuracy is the tolerance, in degrees, around Heading.
	HeadingAccuracy *float64 `json:"heading_accuracy,omitempty"`
}

// NewWaypoint returns a waypoint at the given [lon, lat] coordinate.
func NewWaypoint(lon, lat float64) Waypoint {
	return Waypoint{Coordinate: orb.Point{lon, lat}}
}

func (w Waypoint) queryValue() string {
	return fmt.Sprintf("%.6f,%.6f", w.Coordinate.Lon(), w.Coordinate.Lat())
}

func (w Waypoint) bearingValue() string {
	if w.Heading == nil {
		return ""
	}
	acc := 90.0
	if w.HeadingAccuracy != nil {
		acc = *w.HeadingAccuracy
	}
	return fmt.Sprintf("%.0f,%.0f", *w.Heading, acc)
}
