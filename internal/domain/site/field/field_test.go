package field

import (
	"strings"
	"testing"
)

func TestValidate_FillsDefaults(t *testing.T) {
	d, err := Definition{Name: "title"}.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Type != String {
		t.Errorf("expected type STRING, got %s", d.Type)
	}
	if d.Kind != KindField || d.FacetType != Default || d.FacetItemType != Default {
		t.Errorf("unexpected defaults: %+v", d)
	}
	if d.FacetRange != RangeDisabled || d.FacetSort != SortDefault {
		t.Errorf("unexpected range/sort defaults: %+v", d)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr string
	}{
		{"empty name", Definition{}, "name is required"},
		{"colon", Definition{Name: "a:b"}, "must not contain"},
		{"bad type", Definition{Name: "a", Type: "BLOB"}, "invalid field type"},
		{"range on text", Definition{Name: "a", Type: Text, FacetRange: RangeDay}, "requires DATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestBackendName(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindField, "city"},
		{KindNER, "turing_entity_city"},
		{KindThesaurus, "turing_entity_city"},
	}
	for _, tt := range tests {
		d := Definition{Name: "city", Kind: tt.kind}
		if got := d.BackendName(); got != tt.want {
			t.Errorf("BackendName(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in      string
		want    Operator
		wantErr bool
	}{
		{"", Default, false},
		{"and", And, false},
		{"Or", Or, false},
		{"NONE", None, false},
		{"xor", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOperator(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOperator(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOperator(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
