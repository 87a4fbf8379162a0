package dirserver

import (
	"github.com/gin-gonic/gin"

	"github.com/edgefn/roadbook/internal/trafficdump"
)

// NewRouter wires the HTTP surface. Middleware order matters: the request
// id must exist before the access log and the traffic dump use it.
func NewRouter(s *State) *gin.Engine {
	r := gin.New()
	r.Use(requestIDMiddleware())
	if s.Cfg.Logging.AccessLog {
		r.Use(requestLogger())
	}
	r.Use(gin.Recovery())
	if s.Cfg.TrafficDump.Enabled {
		r.Use(trafficDumpMiddleware(trafficdump.Config{
			Enabled:     true,
			Dir:         s.Cfg.TrafficDump.Dir,
			MaxBytes:    s.Cfg.TrafficDump.MaxBytes,
			MaskSecrets: s.Cfg.TrafficDump.MaskSecrets,
		}))
	}

	r.GET("/healthz", handleHealthz)
	r.GET("/version", handleVersion)
	r.GET("/route", handleRoute(s))
	r.POST("/match", handleMatch(s))
	return r
}
