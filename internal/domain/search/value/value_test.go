package value

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind Kind
		text string
	}{
		{"nil", nil, KindNull, ""},
		{"string", "hello", KindString, "hello"},
		{"date string", "2024-03-15T10:00:00Z", KindDate, "2024-03-15T10:00:00Z"},
		{"date-like text", "2024 was a year", KindString, "2024 was a year"},
		{"float", 2.5, KindNumber, "2.5"},
		{"int", 3, KindNumber, "3"},
		{"bool", true, KindBool, "true"},
		{"list", []any{"a", "b"}, KindList, "a"},
		{"unsupported", struct{}{}, KindNull, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := From(tt.in)
			if v.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", v.Kind(), tt.kind)
			}
			if v.Text() != tt.text {
				t.Errorf("text = %q, want %q", v.Text(), tt.text)
			}
		})
	}
}

func TestAppend(t *testing.T) {
	v := Value{}.Append(String("a"))
	if v.Kind() != KindString {
		t.Fatalf("appending to null keeps the scalar, got %v", v.Kind())
	}
	v = v.Append(String("b")).Append(List(String("c"), String("d")))
	if v.Kind() != KindList || len(v.Items()) != 4 {
		t.Fatalf("expected 4-item list, got %v with %d items", v.Kind(), len(v.Items()))
	}
}

func TestJSON(t *testing.T) {
	v := List(String("a"), Number(1), Date(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["a",1,"2024-01-02T00:00:00Z"]` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var back Value
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind() != KindList || back.Items()[2].Kind() != KindDate {
		t.Errorf("unexpected decoded value: %+v", back)
	}
}

func TestParse(t *testing.T) {
	if v := Parse("42", "INT"); v.Kind() != KindNumber {
		t.Errorf("INT default should be a number, got %v", v.Kind())
	}
	if v := Parse("yes", "BOOL"); v.Kind() != KindString {
		t.Errorf("unparsable BOOL default stays a string, got %v", v.Kind())
	}
	if v := Parse("x", "ARRAY"); v.Kind() != KindList {
		t.Errorf("ARRAY default should be a list, got %v", v.Kind())
	}
}
