package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestCoerceFloat(t *testing.T) {
	if got := CoerceFloat(float64(12.5)); got != 12.5 {
		t.Fatalf("float64: got %v", got)
	}
	if got := CoerceFloat("3.25"); got != 3.25 {
		t.Fatalf("string: got %v", got)
	}
	if got := CoerceFloat(json.Number("7")); got != 7 {
		t.Fatalf("json.Number: got %v", got)
	}
	if got := CoerceFloat(map[string]any{}); got != 0 {
		t.Fatalf("object: got %v", got)
	}
}

func TestRequireFloat(t *testing.T) {
	if v, ok := RequireFloat(float64(0)); !ok || v != 0 {
		t.Fatalf("zero must be a valid reading: %v %v", v, ok)
	}
	if _, ok := RequireFloat("12"); ok {
		t.Fatal("strings are not acceptable for required numeric fields")
	}
	if _, ok := RequireFloat(nil); ok {
		t.Fatal("nil must not be acceptable")
	}
}

func TestParseObject(t *testing.T) {
	obj, err := ParseObject([]byte(`{"a":1}`), "payload")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CoerceInt(obj["a"]) != 1 {
		t.Fatalf("unexpected object: %#v", obj)
	}
	if _, err := ParseObject([]byte(`[1,2]`), "payload"); err == nil {
		t.Fatal("array must not parse as object")
	}
	if _, err := ParseObject([]byte(`{`), "payload"); err == nil {
		t.Fatal("invalid json must error")
	}
}
