// Package directions requests multi-waypoint routing results from a
// remote directions service, or derives them from a locally embedded
// routing engine, and normalizes both into one Route/Leg/Step model.
package directions

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/edgefn/roadbook/pkg/jsonutil"
)

const (
	libraryName    = "roadbook"
	libraryVersion = "1.0.0"

	defaultTimeout = 30 * time.Second
)

// ClientConfig configures a Client once, at construction. There is no
// process-wide state: two clients never share configuration.
type ClientConfig struct {
	// BaseURL is the scheme and host of the directions service,
	// e.g. "https://directions.example.com". Required.
	BaseURL string

	// AccessToken is appended to every request as the access_token
	// query parameter. Required.
	AccessToken string

	// HTTPClient overrides the transport. A 30s-timeout client is used
	// when nil.
	HTTPClient *http.Client

	// ApplicationUserAgent optionally prefixes the client identification
	// header with "<app-name>/<app-version>".
	ApplicationUserAgent string

	// LocalEngine, when set, makes the pipeline prefer locally derived
	// results for every call. Raw transport errors are never surfaced
	// once an engine is configured; a failed derivation surfaces a
	// SynthesisError instead.
	LocalEngine *LocalEngineConfig
}

// Client orchestrates directions requests. It is safe for concurrent use;
// all async completions are delivered sequentially on one dispatcher
// goroutine owned by the client.
type Client struct {
	baseURL     *url.URL
	accessToken string
	httpClient  *http.Client
	userAgent   string
	localEngine *LocalEngineConfig

	dispatch chan func()
	closed   chan struct{}
}

// NewClient validates the configuration and starts the completion
// dispatcher. Callers must Close the client when done with it.
func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must carry a scheme and host, got %q", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, fmt.Errorf("an access token is required")
	}
	if cfg.LocalEngine != nil && cfg.LocalEngine.Engine == nil {
		return nil, fmt.Errorf("local engine configuration carries no engine")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	c := &Client{
		baseURL:     base,
		accessToken: strings.TrimSpace(cfg.AccessToken),
		httpClient:  httpClient,
		userAgent:   buildUserAgent(cfg.ApplicationUserAgent),
		localEngine: cfg.LocalEngine,
		dispatch:    make(chan func(), 16),
		closed:      make(chan struct{}),
	}
	go c.dispatchLoop()
	return c, nil
}

// Close stops the completion dispatcher. In-flight synchronous calls are
// unaffected; pending async completions are dropped.
func (c *Client) Close() {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
}

func (c *Client) dispatchLoop() {
	for {
		select {
		case fn := <-c.dispatch:
			fn()
		case <-c.closed:
			return
		}
	}
}

func (c *Client) deliver(fn func()) {
	select {
	case c.dispatch <- fn:
	case <-c.closed:
	}
}

// GetRoutes requests routes between the option waypoints and normalizes
// the response. The pipeline never retries; a classified error is
// terminal for the call.
func (c *Client) GetRoutes(ctx context.Context, opts *RouteOptions) (*RouteResponse, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	req, err := c.buildGet(ctx, opts.Path(), opts.Query())
	if err != nil {
		return nil, err
	}
	return c.run(ctx, req, opts)
}

// Match requests a map-matched route for the option trace and normalizes
// the response through the same decode path as GetRoutes.
func (c *Client) Match(ctx context.Context, opts *MatchOptions) (*RouteResponse, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	req, err := c.buildPost(ctx, opts.Path(), opts.Query(), opts.Body())
	if err != nil {
		return nil, err
	}
	return c.run(ctx, req, opts.routeOptions())
}

func (c *Client) buildGet(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(path, query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func (c *Client) buildPost(ctx context.Context, path string, query url.Values, body url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(path, query), strings.NewReader(body.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

func (c *Client) requestURL(path string, query url.Values) string {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("access_token", c.accessToken)
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + path
	u.RawQuery = q.Encode()
	return u.String()
}

// run executes one request and decides whether to use the remote payload
// or to re-derive the result via the local engine.
func (c *Client) run(ctx context.Context, req *http.Request, opts *RouteOptions) (*RouteResponse, error) {
	payload, status, header, transportErr := c.roundTrip(req)

	// Fallback substitution: once a local engine is configured the
	// remote outcome is discarded either way, and a raw transport error
	// is never surfaced. The engine routes the first waypoint pair, so
	// the synthetic payload is decoded against that pair, not against
	// the full waypoint list.
	if c.localEngine != nil {
		pair := *opts
		pair.Waypoints = opts.Waypoints[:2]
		synth, err := deriveLocally(ctx, *c.localEngine, pair.Waypoints[0].Coordinate, pair.Waypoints[1].Coordinate)
		if err != nil {
			return nil, err
		}
		return c.finish(synth, &pair)
	}

	if transportErr != nil {
		return nil, &TransportError{Err: transportErr}
	}
	if appErr := classifyPayload(payload, status, header); appErr != nil {
		return nil, appErr
	}
	if payload == nil {
		return nil, &MalformedResponseError{Field: "body", Reason: "is not a JSON object"}
	}
	return c.finish(payload, opts)
}

// roundTrip issues the request and parses the body as JSON only when the
// response declares a JSON content type.
func (c *Client) roundTrip(req *http.Request) (map[string]any, int, http.Header, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, resp.Header, err
	}
	var payload map[string]any
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "json") {
		if obj, perr := jsonutil.ParseObject(body, "directions"); perr == nil {
			payload = obj
		}
	}
	return payload, resp.StatusCode, resp.Header, nil
}

// classifyPayload treats a response as an application error when a status
// field is present and is not the Ok sentinel, even under HTTP 200, or
// when the transport layer reported an error status without a decodable
// payload.
func classifyPayload(payload map[string]any, status int, header http.Header) *ApplicationError {
	if payload != nil {
		if codeRaw, present := payload["code"]; present {
			code := jsonutil.CoerceString(codeRaw)
			if code != CodeOK {
				return classifyResponse(status, code, payloadMessage(payload), header)
			}
			return nil
		}
	}
	if status >= 400 {
		return classifyResponse(status, "", payloadMessage(payload), header)
	}
	return nil
}

func payloadMessage(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	if message := jsonutil.CoerceString(payload["message"]); message != "" {
		return message
	}
	// The legacy generation reports the reason under "error".
	return jsonutil.CoerceString(payload["error"])
}

// finish decodes the payload into the route graph and attaches the
// request-scoped metadata exactly once, before delivery.
func (c *Client) finish(payload map[string]any, opts *RouteOptions) (*RouteResponse, error) {
	resp, err := buildRouteResponse(payload, opts)
	if err != nil {
		return nil, err
	}
	for _, route := range resp.Routes {
		route.AccessToken = c.accessToken
		route.APIEndpoint = c.baseURL
		route.UUID = resp.UUID
	}
	return resp, nil
}

func buildUserAgent(app string) string {
	components := make([]string, 0, 3)
	if strings.TrimSpace(app) != "" {
		components = append(components, strings.TrimSpace(app))
	}
	components = append(components,
		fmt.Sprintf("%s/%s", libraryName, libraryVersion),
		fmt.Sprintf("%s/%s (%s)", runtime.GOOS, strings.TrimPrefix(runtime.Version(), "go"), runtime.GOARCH),
	)
	return strings.Join(components, " ")
}
