package dirserver

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edgefn/roadbook/internal/logx"
	"github.com/edgefn/roadbook/internal/requestid"
	"github.com/edgefn/roadbook/internal/trafficdump"
)

const (
	ctxKeyRequestID = "request_id"
	ctxKeyProfile   = "profile"
	ctxKeyWaypoints = "waypoints"
	ctxKeyErrorKind = "error_kind"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestid.HeaderKey))
		if id == "" {
			id = requestid.Gen()
		}
		c.Set(ctxKeyRequestID, id)
		c.Writer.Header().Set(requestid.HeaderKey, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]any{}
		if v, ok := c.Get(ctxKeyRequestID); ok {
			fields["request_id"] = v
		}
		if v, ok := c.Get(ctxKeyProfile); ok {
			fields["profile"] = v
		}
		if v, ok := c.Get(ctxKeyWaypoints); ok {
			fields["waypoints"] = v
		}
		if v, ok := c.Get(ctxKeyErrorKind); ok {
			fields["error"] = v
		}

		line := logx.FormatRequestLine(
			time.Now(),
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			c.Request.Method,
			c.Request.URL.Path,
			fields,
		)
		fmt.Println(line)
	}
}

// bodyCapture tees the response body so the dump middleware can record
// what was sent to the caller.
type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func trafficDumpMiddleware(cfg trafficdump.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetString(ctxKeyRequestID)
		rec, err := trafficdump.Start(cfg, id)
		if err != nil {
			c.Next()
			return
		}
		defer rec.Close()

		rec.AppendRequest(c.Request.Method, c.Request.URL.String(), c.Request.Header)

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		binary := !strings.Contains(strings.ToLower(capture.Header().Get("Content-Type")), "json")
		rec.AppendResponse(strconv.Itoa(capture.Status()), capture.Header(), capture.buf.Bytes(), binary)
	}
}
