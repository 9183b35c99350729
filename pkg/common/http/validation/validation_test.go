package validation

import (
	"fmt"
	"testing"
)

type signup struct {
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age" validate:"gte=18"`
	Note  string `json:"-"`
}

func TestIsRequestValid(t *testing.T) {
	tests := []struct {
		name       string
		req        signup
		wantValid  bool
		wantFields []string
	}{
		{
			name:      "valid",
			req:       signup{Email: "a@b.io", Age: 30},
			wantValid: true,
		},
		{
			name:       "missing_email",
			req:        signup{Age: 30},
			wantFields: []string{"email"},
		},
		{
			name:       "both_invalid",
			req:        signup{Email: "nope", Age: 3},
			wantFields: []string{"email", "age"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, fields := IsRequestValid(&tt.req)
			if ok != tt.wantValid {
				t.Fatalf("valid = %v, want %v", ok, tt.wantValid)
			}
			if len(fields) != len(tt.wantFields) {
				t.Fatalf("got %d field errors, want %d", len(fields), len(tt.wantFields))
			}
			for i, f := range fields {
				if f.Field != tt.wantFields[i] {
					t.Errorf("field[%d] = %q, want %q", i, f.Field, tt.wantFields[i])
				}
			}
		})
	}
}

func TestFieldErrors_List(t *testing.T) {
	list := Errors{{Field: "age", Rule: RuleFormat}}
	got := FieldErrors(fmt.Errorf("bind: %w", list))
	if len(got) != 1 || got[0].Field != "age" || got[0].Rule != RuleFormat {
		t.Errorf("FieldErrors = %+v", got)
	}
	if list.Error() != "invalid fields: age: format" {
		t.Errorf("Error() = %q", list.Error())
	}
	if FieldErrors(fmt.Errorf("plain")) != nil {
		t.Error("plain error should have no field errors")
	}
}
