// Package trafficdump records the outbound directions request and the
// inbound payload of one call to a file, for debugging normalization
// issues against live services.
package trafficdump

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

type Config struct {
	Enabled     bool
	Dir         string
	MaxBytes    int
	MaskSecrets bool
}

type Recorder struct {
	mu       sync.Mutex
	f        *os.File
	maxBytes int
	mask     bool
	closed   bool
}

var accessTokenRegex = regexp.MustCompile(`(access_token=)[^&\s]+`)

// Start opens one dump file named after the request id.
func Start(cfg Config, requestID string) (*Recorder, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("traffic_dump.dir is empty")
	}
	if cfg.MaxBytes < 0 {
		return nil, errors.New("traffic_dump.max_bytes must be non-negative")
	}
	if err := os.MkdirAll(strings.TrimSpace(cfg.Dir), 0o750); err != nil {
		return nil, err
	}
	path := filepath.Join(strings.TrimSpace(cfg.Dir), requestID+".log")
	// #nosec G304 -- path is derived from the configured dump dir.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	r := &Recorder{f: f, maxBytes: cfg.MaxBytes, mask: cfg.MaskSecrets}
	r.writeLine("=== META ===")
	r.writeLine(fmt.Sprintf("time=%s", time.Now().Format(time.RFC3339)))
	r.writeLine(fmt.Sprintf("request_id=%s", requestID))
	r.writeLine("")
	return r, nil
}

func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	_ = r.f.Close()
}

// AppendRequest records the outbound request line and headers.
func (r *Recorder) AppendRequest(method, url string, header http.Header) {
	if r == nil {
		return
	}
	r.writeLine("=== UPSTREAM REQUEST ===")
	r.writeLine(fmt.Sprintf("%s %s", method, r.maskURL(url)))
	r.writeHeaders(header)
	r.writeLine("")
}

// AppendResponse records the inbound status, headers and body.
func (r *Recorder) AppendResponse(status string, header http.Header, body []byte, binary bool) {
	if r == nil {
		return
	}
	limited, truncated := LimitBytes(body, r.maxBytesLocked())
	r.writeLine("=== UPSTREAM RESPONSE ===")
	r.writeLine("status=" + status)
	r.writeHeaders(header)
	r.writeBlock(limited, binary, truncated)
	r.writeLine("")
}

func (r *Recorder) maxBytesLocked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxBytes
}

func (r *Recorder) writeHeaders(header http.Header) {
	r.writeLine("headers:")
	for k, vals := range header {
		for _, v := range vals {
			r.writeLine(fmt.Sprintf("  %s: %s", k, v))
		}
	}
}

func (r *Recorder) maskURL(url string) string {
	if !r.mask {
		return url
	}
	return accessTokenRegex.ReplaceAllString(url, "${1}***")
}

func (r *Recorder) writeLine(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	_, _ = r.f.WriteString(s)
	_, _ = r.f.WriteString("\n")
}

func (r *Recorder) writeBlock(content []byte, binary bool, truncated bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if binary {
		_, _ = r.f.WriteString("[base64]\n")
		_, _ = r.f.WriteString(base64.StdEncoding.EncodeToString(content))
		_, _ = r.f.WriteString("\n")
	} else {
		_, _ = r.f.Write(content)
		_, _ = r.f.WriteString("\n")
	}
	if truncated {
		_, _ = r.f.WriteString("[truncated]\n")
	}
}

// LimitBytes caps content at max bytes, reporting whether it was cut.
func LimitBytes(content []byte, max int) ([]byte, bool) {
	if max <= 0 || len(content) <= max {
		return content, false
	}
	return content[:max], true
}
