package utils

import "testing"

func TestIsAlphaDash(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"about-us", true},
		{"Item42", true},
		{"", false},
		{"with space", false},
		{"semi;colon", false},
		{"../etc", false},
	}

	for _, tt := range tests {
		if got := IsAlphaDash(tt.input); got != tt.want {
			t.Errorf("IsAlphaDash(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":      "name",
		"CreatedAt": "created_at",
		"SKU":       "sku",
		"ProductID": "product_id",
		"already_x": "already_x",
	}

	for in, want := range tests {
		if got := ToSnakeCase(in); got != want {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCeilToPowerOfTwo(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 2}, {2, 2}, {3, 4}, {17, 32}, {256, 256},
	}
	for _, tt := range tests {
		if got := CeilToPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("CeilToPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 3); got != 3 {
		t.Errorf("Coalesce(0, 3) = %d", got)
	}
	if got := Coalesce("set", "default"); got != "set" {
		t.Errorf("Coalesce(set) = %q", got)
	}
}
