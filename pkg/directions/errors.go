package directions

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CodeOK is the API-level status sentinel for a successful response. Any
// other value marks an application error even under HTTP 200.
const CodeOK = "Ok"

// TransportError wraps a connectivity, timeout or cancellation failure
// from the network layer. It is not classified further.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "directions: transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError reports a payload whose required fields are
// missing or of the wrong shape. Required fields are never silently
// defaulted.
type MalformedResponseError struct {
	Field  string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("directions: malformed response: field %q %s", e.Field, e.Reason)
}

// SynthesisError reports a local-engine payload that could not be
// synthesized into a deliverable route set.
type SynthesisError struct {
	Reason string
	Err    error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return "directions: synthesis failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "directions: synthesis failed: " + e.Reason
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// RateLimitInfo carries quota metadata extracted from rate-limit response
// headers, surfaced only when the headers are present.
type RateLimitInfo struct {
	// Limit is the request quota per interval.
	Limit int
	// Interval is the quota window.
	Interval time.Duration
	// ResetAt is when the quota window rolls over.
	ResetAt time.Time
}

// ApplicationError reports that the service executed the request but
// returned a non-Ok status code.
type ApplicationError struct {
	HTTPStatus int
	APICode    string
	// Message is the human-readable reason reported by the service.
	Message string

	FailureReason      string
	RecoverySuggestion string

	// RateLimit is populated on quota exhaustion when the response
	// carried rate-limit headers.
	RateLimit *RateLimitInfo
}

func (e *ApplicationError) Error() string {
	if e.FailureReason != "" {
		return "directions: " + e.FailureReason
	}
	if e.Message != "" {
		return fmt.Sprintf("directions: %s (http %d, code %q)", e.Message, e.HTTPStatus, e.APICode)
	}
	return fmt.Sprintf("directions: request failed (http %d, code %q)", e.HTTPStatus, e.APICode)
}

type classification struct {
	failureReason      string
	recoverySuggestion string
}

// classificationTable refines (http status, api code) pairs into a failure
// reason and a recovery suggestion. An empty code matches any code for its
// status.
var classificationTable = map[[2]string]classification{
	{"200", "NoRoute"}: {
		failureReason:      "no route could be found between the given locations",
		recoverySuggestion: "Make sure it is possible to travel between the locations with the chosen profile.",
	},
	{"200", "NoSegment"}: {
		failureReason:      "a location could not be matched to a roadway or pathway",
		recoverySuggestion: "Move the location closer to a roadway or pathway.",
	},
	{"200", "NoMatch"}: {
		failureReason:      "the trace could not be matched to the road network",
		recoverySuggestion: "Check that the trace points are ordered and close to roadways.",
	},
	{"404", "ProfileNotFound"}: {
		failureReason:      "unrecognized routing profile",
		recoverySuggestion: "Make sure the profile identifier is one the service supports.",
	},
	{"422", "InvalidInput"}: {
		failureReason:      "the request had invalid input",
		recoverySuggestion: "Check the waypoint coordinates and option values.",
	},
	{"401", ""}: {
		failureReason:      "the access credential was rejected",
		recoverySuggestion: "Check that the access token is valid and not expired.",
	},
}

// classifyResponse maps HTTP status + API-level code + the service message
// into a structured application error.
func classifyResponse(httpStatus int, apiCode, message string, header http.Header) *ApplicationError {
	appErr := &ApplicationError{
		HTTPStatus: httpStatus,
		APICode:    apiCode,
		Message:    message,
	}

	if httpStatus == http.StatusTooManyRequests {
		appErr.RateLimit = parseRateLimit(header)
		appErr.FailureReason = "the request quota has been exhausted"
		if appErr.RateLimit != nil {
			appErr.RecoverySuggestion = fmt.Sprintf(
				"Wait until %s before retrying; the quota is %d requests per %s.",
				appErr.RateLimit.ResetAt.UTC().Format(time.RFC1123),
				appErr.RateLimit.Limit,
				appErr.RateLimit.Interval,
			)
		} else {
			appErr.RecoverySuggestion = "Reduce the request rate and retry later."
		}
		return appErr
	}

	status := strconv.Itoa(httpStatus)
	if c, ok := classificationTable[[2]string{status, apiCode}]; ok {
		appErr.FailureReason = c.failureReason
		appErr.RecoverySuggestion = c.recoverySuggestion
		return appErr
	}
	if c, ok := classificationTable[[2]string{status, ""}]; ok {
		appErr.FailureReason = c.failureReason
		appErr.RecoverySuggestion = c.recoverySuggestion
		return appErr
	}
	return appErr
}

// Rate-limit metadata headers.
const (
	headerRateLimitLimit    = "X-Rate-Limit-Limit"
	headerRateLimitInterval = "X-Rate-Limit-Interval"
	headerRateLimitReset    = "X-Rate-Limit-Reset"
)

func parseRateLimit(header http.Header) *RateLimitInfo {
	if header == nil {
		return nil
	}
	limitRaw := strings.TrimSpace(header.Get(headerRateLimitLimit))
	intervalRaw := strings.TrimSpace(header.Get(headerRateLimitInterval))
	resetRaw := strings.TrimSpace(header.Get(headerRateLimitReset))
	if limitRaw == "" && intervalRaw == "" && resetRaw == "" {
		return nil
	}
	info := &RateLimitInfo{}
	if v, err := strconv.Atoi(limitRaw); err == nil {
		info.Limit = v
	}
	if v, err := strconv.Atoi(intervalRaw); err == nil {
		info.Interval = time.Duration(v) * time.Second
	}
	if v, err := strconv.ParseInt(resetRaw, 10, 64); err == nil {
		info.ResetAt = time.Unix(v, 0)
	}
	return info
}
