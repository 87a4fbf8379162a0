package dirserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edgefn/roadbook/internal/version"
	"github.com/edgefn/roadbook/pkg/directions"
)

func handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// handleRoute serves GET /route. Coordinates arrive as a semicolon-joined
// list of lon,lat pairs, the same shape the upstream path segment uses.
func handleRoute(s *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		waypoints, err := parseWaypoints(c.Query("coordinates"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "InvalidInput", "message": err.Error()})
			return
		}
		opts := &directions.RouteOptions{
			Profile:           profileOrDefault(c.Query("profile"), s.Cfg.Directions.Profile),
			Waypoints:         waypoints,
			IncludesSteps:     boolQuery(c, "steps"),
			IncludesAlternate: boolQuery(c, "alternatives"),
			GeometryFormat:    directions.GeometryFormat(c.DefaultQuery("geometries", string(directions.GeometryPolyline))),
			Locale:            localeOrDefault(c.Query("language"), s.Cfg.Directions.Locale),
		}
		if boolQuery(c, "legacy") {
			opts.Variant = directions.VariantLegacy
		}
		c.Set(ctxKeyProfile, string(opts.Profile))
		c.Set(ctxKeyWaypoints, len(opts.Waypoints))

		resp, err := s.Client.GetRoutes(c.Request.Context(), opts)
		if err != nil {
			writeDirectionsError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleMatch serves POST /match with a form-encoded coordinate trace.
func handleMatch(s *State) gin.HandlerFunc {
	return func(c *gin.Context) {
		waypoints, err := parseWaypoints(c.PostForm("coordinates"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "InvalidInput", "message": err.Error()})
			return
		}
		opts := &directions.MatchOptions{
			Profile:        profileOrDefault(c.PostForm("profile"), s.Cfg.Directions.Profile),
			Waypoints:      waypoints,
			IncludesSteps:  c.PostForm("steps") == "true",
			GeometryFormat: directions.GeometryFormat(postFormOrDefault(c, "geometries", string(directions.GeometryPolyline))),
			Locale:         localeOrDefault(c.PostForm("language"), s.Cfg.Directions.Locale),
		}
		c.Set(ctxKeyProfile, string(opts.Profile))
		c.Set(ctxKeyWaypoints, len(opts.Waypoints))

		resp, err := s.Client.Match(c.Request.Context(), opts)
		if err != nil {
			writeDirectionsError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// writeDirectionsError maps pipeline errors onto facade responses.
// Application errors keep their upstream status when it is an error
// status; everything the upstream mangled becomes a 502.
func writeDirectionsError(c *gin.Context, err error) {
	var appErr *directions.ApplicationError
	if errors.As(err, &appErr) {
		c.Set(ctxKeyErrorKind, appErr.APICode)
		status := appErr.HTTPStatus
		if status < 400 {
			status = http.StatusBadGateway
		}
		body := gin.H{"code": appErr.APICode, "message": appErr.Message}
		if appErr.RecoverySuggestion != "" {
			body["suggestion"] = appErr.RecoverySuggestion
		}
		c.JSON(status, body)
		return
	}
	var transportErr *directions.TransportError
	if errors.As(err, &transportErr) {
		c.Set(ctxKeyErrorKind, "transport")
		c.JSON(http.StatusBadGateway, gin.H{"code": "Transport", "message": transportErr.Error()})
		return
	}
	var malformedErr *directions.MalformedResponseError
	if errors.As(err, &malformedErr) {
		c.Set(ctxKeyErrorKind, "malformed")
		c.JSON(http.StatusBadGateway, gin.H{"code": "MalformedResponse", "message": malformedErr.Error()})
		return
	}
	var synthErr *directions.SynthesisError
	if errors.As(err, &synthErr) {
		c.Set(ctxKeyErrorKind, "synthesis")
		c.JSON(http.StatusInternalServerError, gin.H{"code": "Synthesis", "message": synthErr.Error()})
		return
	}
	c.Set(ctxKeyErrorKind, "invalid_input")
	c.JSON(http.StatusBadRequest, gin.H{"code": "InvalidInput", "message": err.Error()})
}

func parseWaypoints(raw string) ([]directions.Waypoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("coordinates is required, e.g. -122.42,37.78;-122.41,37.79")
	}
	pairs := strings.Split(raw, ";")
	waypoints := make([]directions.Waypoint, 0, len(pairs))
	for i, pair := range pairs {
		parts := strings.Split(strings.TrimSpace(pair), ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("coordinate %d: want lon,lat, got %q", i, pair)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: bad longitude %q", i, parts[0])
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: bad latitude %q", i, parts[1])
		}
		waypoints = append(waypoints, directions.NewWaypoint(lon, lat))
	}
	return waypoints, nil
}

func profileOrDefault(raw, def string) directions.Profile {
	if strings.TrimSpace(raw) != "" {
		return directions.Profile(strings.TrimSpace(raw))
	}
	return directions.Profile(def)
}

func localeOrDefault(raw, def string) string {
	if strings.TrimSpace(raw) != "" {
		return strings.TrimSpace(raw)
	}
	return def
}

func boolQuery(c *gin.Context, key string) bool {
	return c.Query(key) == "true"
}

func postFormOrDefault(c *gin.Context, key, def string) string {
	if v := strings.TrimSpace(c.PostForm(key)); v != "" {
		return v
	}
	return def
}
