package prompt

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestRoundTripJSONL(t *testing.T) {
	cases := []*Message{
		{Type: TypeArg, ID: "a1", Placeholder: "Pick"},
		{Type: TypeSubmit, ID: "a1", Value: String("Red")},
		{Type: TypeUpdate, ID: "a1", Value: String("Re")},
		{Type: TypeCancel, ID: "a1"},
		{Type: TypeExit, Code: intPtr(0)},
		{Type: TypeForm, ID: "f1", Fields: []Field{{Name: "email", Label: "Email"}}},
	}
	for _, want := range cases {
		data, err := Serialize(want)
		if err != nil {
			t.Fatalf("serialize: %v", err)
		}
		got, err := Parse(data)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		data2, err := Serialize(got)
		if err != nil {
			t.Fatalf("serialize2: %v", err)
		}
		var a, b map[string]any
		_ = json.Unmarshal(data, &a)
		_ = json.Unmarshal(data2, &b)
		aj, _ := json.Marshal(a)
		bj, _ := json.Marshal(b)
		if !bytes.Equal(aj, bj) {
			t.Fatalf("round trip mismatch: %s vs %s", aj, bj)
		}
	}
}

func TestParseMissingType(t *testing.T) {
	_, err := Parse([]byte(`{"id":"x"}`))
	if err == nil {
		t.Fatalf("expected error for missing type")
	}
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	if err == nil {
		t.Fatalf("expected error for malformed json")
	}
}

func TestParserRobustnessStream(t *testing.T) {
	lines := [][]byte{
		[]byte(`{"type":"arg","id":"a1"}`),
		[]byte(`not json at all`),
		[]byte(`{"id":"missing-type"}`),
		[]byte(`{"type":"submit","id":"a1","value":"ok"}`),
	}
	var parsed []*Message
	for _, l := range lines {
		msg, err := Parse(l)
		if err != nil {
			continue // parser robustness: errors are logged, never fatal
		}
		parsed = append(parsed, msg)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 valid messages, got %d", len(parsed))
	}
	if parsed[0].Type != TypeArg || parsed[1].Type != TypeSubmit {
		t.Fatalf("unexpected parse order: %+v", parsed)
	}
}

func TestValueAbsentVsNull(t *testing.T) {
	msg, err := Parse([]byte(`{"type":"submit","id":"a1","value":null}`))
	if err != nil {
		t.Fatal(err)
	}
	if !msg.Value.Present || msg.Value.Kind != KindNull {
		t.Fatalf("expected explicit null to be present, got %+v", msg.Value)
	}

	msg2, err := Parse([]byte(`{"type":"submit","id":"a1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg2.Value.Present {
		t.Fatalf("expected missing value field to be absent, got %+v", msg2.Value)
	}
}

func intPtr(i int) *int { return &i }
