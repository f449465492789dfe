package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
	"mycelica/patchscan/internal/patch"
)

func sampleResult() *patch.Result {
	return patch.Scan([]string{
		"#N canvas 0 50 450 300 12;",
		"#X obj 30 27 osc~ 440;",
		"#X obj 30 95 dac~;",
		"#X connect 0 0 1 0;",
		"#X connect 0 0 1 1;",
		"#X connect 0 0 9 0;",
	})
}

func TestWriteInventory(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInventory(&buf, sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `Found 2 objects and 3 connections.

--- Objects ---
ID 0: obj 30 27 osc~ 440; (Line 2)
ID 1: obj 30 95 dac~; (Line 3)

--- Connections ---
Line 4: 0 (out 0) -> 1 (in 0)
Line 5: 0 (out 0) -> 1 (in 1)
Line 6: 0 (out 0) -> 9 (in 0)
`
	if got := buf.String(); got != want {
		t.Errorf("inventory mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteInventory_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInventory(&buf, patch.Scan(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Found 0 objects and 0 connections.\n\n--- Objects ---\n\n--- Connections ---\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteResolved(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResolved(&buf, sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "0 (obj 30 27 osc~ 440;) [0] -> 1 (obj 30 95 dac~;) [1]") {
		t.Errorf("missing resolved connection, got:\n%s", out)
	}
	if !strings.Contains(out, "-> 9 (UNKNOWN) [0]") {
		t.Errorf("dangling id should print UNKNOWN, got:\n%s", out)
	}
}

func TestEncode_JSON(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResult()
	if err := Encode(&buf, res, "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded patch.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(&decoded, res) {
		t.Errorf("JSON lost data:\n%+v\n%+v", decoded, res)
	}
	if !strings.Contains(buf.String(), `"source_node": 0`) {
		t.Errorf("expected snake_case keys, got:\n%s", buf.String())
	}
}

func TestEncode_YAML(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResult()
	if err := Encode(&buf, res, "YAML"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded patch.Result
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if !reflect.DeepEqual(&decoded, res) {
		t.Errorf("YAML lost data:\n%+v\n%+v", decoded, res)
	}
}

func TestEncode_TextIsInventory(t *testing.T) {
	var a, b bytes.Buffer
	res := sampleResult()
	if err := Encode(&a, res, ""); err != nil {
		t.Fatal(err)
	}
	if err := WriteInventory(&b, res); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("empty format should fall back to the text inventory")
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, sampleResult(), "xml")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
