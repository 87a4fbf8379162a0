package directions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const okResponse = `{
  "code": "Ok",
  "uuid": "route-set-1",
  "routes": [{
    "distance": 1500,
    "duration": 300,
    "legs": [{"distance": 1500, "duration": 300, "summary": "Main St", "steps": []}]
  }],
  "waypoints": [
    {"name": "Main St", "location": [-122.42, 37.78]},
    {"name": "Market St", "location": [-122.40, 37.76]}
  ]
}`

func twoWaypointOptions() *RouteOptions {
	return &RouteOptions{
		Profile:       ProfileDriving,
		Waypoints:     []Waypoint{NewWaypoint(-122.42, 37.78), NewWaypoint(-122.40, 37.76)},
		IncludesSteps: true,
	}
}

func newTestClient(t *testing.T, baseURL string, engine *LocalEngineConfig) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{
		BaseURL:     baseURL,
		AccessToken: "tk.test",
		LocalEngine: engine,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestGetRoutes_Success(t *testing.T) {
	var gotPath, gotUA, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotToken = r.URL.Query().Get("access_token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okResponse))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	resp, err := c.GetRoutes(context.Background(), twoWaypointOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/directions/v5/driving/") {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotToken != "tk.test" {
		t.Fatalf("access token not attached: %q", gotToken)
	}
	if !strings.Contains(gotUA, libraryName+"/"+libraryVersion) {
		t.Fatalf("client identification header missing: %q", gotUA)
	}
	if len(resp.Routes) != 1 || resp.UUID != "route-set-1" {
		t.Fatalf("unexpected response: %#v", resp)
	}
	route := resp.Routes[0]
	if route.AccessToken != "tk.test" || route.APIEndpoint == nil || route.UUID != "route-set-1" {
		t.Fatalf("post-hoc metadata not attached: %#v", route)
	}
	if resp.Waypoints[0].Name != "Main St" {
		t.Fatalf("conflated waypoints lost: %#v", resp.Waypoints)
	}
}

func TestGetRoutes_ApplicationErrorUnderHTTP200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"NoRoute","message":"No route found"}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	_, err := c.GetRoutes(context.Background(), twoWaypointOptions())
	var appErr *ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("want ApplicationError, got %v", err)
	}
	if appErr.HTTPStatus != 200 || appErr.APICode != "NoRoute" {
		t.Fatalf("unexpected classification: %#v", appErr)
	}
	if !strings.Contains(appErr.FailureReason, "no route") {
		t.Fatalf("unexpected failure reason: %q", appErr.FailureReason)
	}
}

func TestGetRoutes_LegacyErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"ProfileNotFound","error":"unknown profile"}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	_, err := c.GetRoutes(context.Background(), twoWaypointOptions())
	var appErr *ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("want ApplicationError, got %v", err)
	}
	if appErr.Message != "unknown profile" {
		t.Fatalf("legacy error field not used: %#v", appErr)
	}
}

func TestGetRoutes_ErrorStatusWithoutCodeKeepsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token has been revoked"}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	_, err := c.GetRoutes(context.Background(), twoWaypointOptions())
	var appErr *ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("want ApplicationError, got %v", err)
	}
	if appErr.HTTPStatus != 401 || appErr.APICode != "" {
		t.Fatalf("unexpected classification: %#v", appErr)
	}
	if appErr.Message != "token has been revoked" {
		t.Fatalf("payload message dropped: %#v", appErr)
	}
	if !strings.Contains(appErr.FailureReason, "credential") {
		t.Fatalf("unexpected failure reason: %q", appErr.FailureReason)
	}
}

func TestGetRoutes_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from now on

	c := newTestClient(t, srv.URL, nil)
	_, err := c.GetRoutes(context.Background(), twoWaypointOptions())
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("want TransportError, got %v", err)
	}
}

func TestGetRoutes_NonJSONContentTypeIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>routes</html>"))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	_, err := c.GetRoutes(context.Background(), twoWaypointOptions())
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("want MalformedResponseError, got %v", err)
	}
}

func TestGetRoutes_MissingDistanceIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"duration":300,"legs":[{"distance":1,"duration":1}]}]}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	_, err := c.GetRoutes(context.Background(), twoWaypointOptions())
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("want MalformedResponseError, got %v", err)
	}
}

func TestGetRoutes_LocalEnginePreferredOverRemoteSuccess(t *testing.T) {
	remoteCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remoteCalls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okResponse))
	}))
	t.Cleanup(srv.Close)

	engine := &stubEngine{payload: []byte(engineRoutePayload)}
	c := newTestClient(t, srv.URL, &LocalEngineConfig{Engine: engine, SpeechLocale: "en-US"})

	opts := twoWaypointOptions()
	resp, err := c.GetRoutes(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remoteCalls != 1 {
		t.Fatalf("the remote call is still issued, got %d", remoteCalls)
	}
	if engine.calls != 1 {
		t.Fatalf("local engine not consulted: %d calls", engine.calls)
	}
	if engine.origin != opts.Waypoints[0].Coordinate || engine.dest != opts.Waypoints[1].Coordinate {
		t.Fatalf("engine must receive the first two waypoints, got %v -> %v", engine.origin, engine.dest)
	}
	if resp.Routes[0].SpeechLocale != "en-US" {
		t.Fatal("delivered route is not the locally derived one")
	}
	if resp.Routes[0].Distance != 800 {
		t.Fatalf("remote payload leaked through: %v", resp.Routes[0].Distance)
	}
}

func TestGetRoutes_LocalEngineSupersedesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	engine := &stubEngine{payload: []byte(engineRoutePayload)}
	c := newTestClient(t, srv.URL, &LocalEngineConfig{Engine: engine, SpeechLocale: "en-US"})
	resp, err := c.GetRoutes(context.Background(), twoWaypointOptions())
	if err != nil {
		t.Fatalf("transport errors must be superseded by the fallback: %v", err)
	}
	if len(resp.Routes) != 1 {
		t.Fatalf("unexpected routes: %#v", resp.Routes)
	}
}

func TestGetRoutes_LocalEngineWithIntermediateWaypoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okResponse))
	}))
	t.Cleanup(srv.Close)

	engine := &stubEngine{payload: []byte(engineRoutePayload)}
	c := newTestClient(t, srv.URL, &LocalEngineConfig{Engine: engine, SpeechLocale: "en-US"})

	// The derived payload covers one leg; a longer waypoint list must not
	// make it fail the leg-per-pair check.
	opts := &RouteOptions{
		Profile: ProfileDriving,
		Waypoints: []Waypoint{
			NewWaypoint(-122.42, 37.78),
			NewWaypoint(-122.41, 37.77),
			NewWaypoint(-122.40, 37.76),
		},
		IncludesSteps: true,
	}
	resp, err := c.GetRoutes(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if engine.origin != opts.Waypoints[0].Coordinate || engine.dest != opts.Waypoints[1].Coordinate {
		t.Fatalf("engine must route the first pair, got %v -> %v", engine.origin, engine.dest)
	}
	if len(resp.Routes) != 1 || len(resp.Routes[0].Legs) != 1 {
		t.Fatalf("unexpected graph: %#v", resp.Routes)
	}
	if len(resp.Waypoints) != 2 {
		t.Fatalf("response waypoints must match the routed pair, got %d", len(resp.Waypoints))
	}
	leg := resp.Routes[0].Legs[0]
	if leg.Source.Coordinate != opts.Waypoints[0].Coordinate || leg.Destination.Coordinate != opts.Waypoints[1].Coordinate {
		t.Fatalf("leg does not span the routed pair: %#v", leg)
	}
}

func TestGetRoutes_FallbackSynthesisFailureIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okResponse))
	}))
	t.Cleanup(srv.Close)

	engine := &stubEngine{payload: []byte(`{"code":"Ok","routes":[]}`)}
	c := newTestClient(t, srv.URL, &LocalEngineConfig{Engine: engine})
	_, err := c.GetRoutes(context.Background(), twoWaypointOptions())
	var synthErr *SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("a failed synthesis must surface, got %v", err)
	}
}

func TestMatch_PostsFormEncodedTrace(t *testing.T) {
	var gotMethod, gotContentType, gotCoordinates string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotCoordinates = r.PostForm.Get("coordinates")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okResponse))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	opts := &MatchOptions{
		Profile:   ProfileDriving,
		Waypoints: []Waypoint{NewWaypoint(-122.42, 37.78), NewWaypoint(-122.40, 37.76)},
	}
	if _, err := c.Match(context.Background(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("match requests must POST, got %s", gotMethod)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type: %q", gotContentType)
	}
	if !strings.Contains(gotCoordinates, ";") {
		t.Fatalf("trace coordinates not encoded: %q", gotCoordinates)
	}
}

func TestGetRoutesAsync_CompletionFiresOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okResponse))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, nil)
	completed := make(chan *RouteResponse, 2)
	task := c.GetRoutesAsync(twoWaypointOptions(), func(resp *RouteResponse, err error) {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		completed <- resp
	})
	<-task.Done()

	select {
	case resp := <-completed:
		if len(resp.Routes) != 1 {
			t.Fatalf("unexpected response: %#v", resp)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("completion never fired")
	}
	select {
	case <-completed:
		t.Fatal("completion fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGetRoutesAsync_CancelPreventsCompletion(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okResponse))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := newTestClient(t, srv.URL, nil)
	fired := make(chan struct{}, 1)
	task := c.GetRoutesAsync(twoWaypointOptions(), func(*RouteResponse, error) {
		fired <- struct{}{}
	})
	task.Cancel()
	<-task.Done()

	select {
	case <-fired:
		t.Fatal("cancelled task must not invoke its completion")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(ClientConfig{BaseURL: "https://example.com"}); err == nil {
		t.Fatal("missing access token must be rejected")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "not a url", AccessToken: "tk"}); err == nil {
		t.Fatal("bad base url must be rejected")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "https://example.com", AccessToken: "tk", LocalEngine: &LocalEngineConfig{}}); err == nil {
		t.Fatal("engineless local configuration must be rejected")
	}
}
