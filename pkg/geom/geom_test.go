package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestPolylineRoundTrip_CurrentScale(t *testing.T) {
	in := []orb.Point{
		{-122.41942, 37.77493},
		{-122.42091, 37.77632},
		{-122.42280, 37.77811},
	}
	out, err := DecodePolyline(EncodePolyline(in, ScaleCurrent), ScaleCurrent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertPointsClose(t, in, out, 1e-5)
}

func TestPolylineRoundTrip_LegacyScale(t *testing.T) {
	in := []orb.Point{
		{13.426540, 52.523910},
		{13.427120, 52.524860},
	}
	out, err := DecodePolyline(EncodePolyline(in, ScaleLegacy), ScaleLegacy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertPointsClose(t, in, out, 1e-6)
}

func TestDecodeLineObject(t *testing.T) {
	obj := map[string]any{
		"type": "LineString",
		"coordinates": []any{
			[]any{-77.036500, 38.897700},
			[]any{-77.036305, 38.897908},
		},
	}
	pts, err := DecodeLineObject(obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 2 {
		t.Fatalf("unexpected point count: %d", len(pts))
	}
	if pts[0].Lon() != -77.0365 || pts[0].Lat() != 38.8977 {
		t.Fatalf("unexpected first point: %v", pts[0])
	}
}

func TestDecodeLineObject_NotALine(t *testing.T) {
	obj := map[string]any{
		"type":        "Point",
		"coordinates": []any{1.0, 2.0},
	}
	if _, err := DecodeLineObject(obj); err == nil {
		t.Fatal("point geometry must be rejected")
	}
}

func assertPointsClose(t *testing.T, want, got []orb.Point, tol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("point count mismatch: want %d got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(want[i].Lon()-got[i].Lon()) > tol || math.Abs(want[i].Lat()-got[i].Lat()) > tol {
			t.Fatalf("point %d out of tolerance: want %v got %v", i, want[i], got[i])
		}
	}
}
