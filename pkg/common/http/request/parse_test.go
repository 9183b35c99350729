package request

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/go-crud/pkg/common/http/validation"
)

type item struct {
	ID   int64  `form:"id"`
	Name string `form:"name"`
	Qty  int    `form:"qty"`
}

func formContext(form url.Values) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c
}

// ============================================================================
// DecodeForm
// ============================================================================

func TestDecodeForm(t *testing.T) {
	tests := []struct {
		name   string
		form   url.Values
		want   item
		fields []string
	}{
		{"clean", url.Values{"id": {"3"}, "name": {"gear"}, "qty": {"2"}}, item{ID: 3, Name: "gear", Qty: 2}, nil},
		{"unknown_key_ignored", url.Values{"name": {"gear"}, "extra": {"1"}}, item{Name: "gear"}, nil},
		{"bad_id_kept_out", url.Values{"id": {"abc"}, "name": {"gear"}}, item{Name: "gear"}, []string{"id"}},
		{"bad_fields_sorted", url.Values{"qty": {"many"}, "id": {"abc"}, "name": {"gear"}}, item{Name: "gear"}, []string{"id", "qty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeForm[item](formContext(tt.form))
			if got == nil || *got != tt.want {
				t.Fatalf("model = %+v, want %+v", got, tt.want)
			}

			if tt.fields == nil {
				if err != nil {
					t.Fatalf("err = %v", err)
				}
				return
			}

			var list validation.Errors
			if !errors.As(err, &list) || len(list) != len(tt.fields) {
				t.Fatalf("err = %v, want fields %v", err, tt.fields)
			}
			for i, f := range list {
				if f.Field != tt.fields[i] || f.Rule != validation.RuleFormat {
					t.Errorf("field %d = %+v, want %s/%s", i, f, tt.fields[i], validation.RuleFormat)
				}
			}
		})
	}
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "x"}}

	if _, err := ParamID[int64](c, "id"); err == nil || !strings.Contains(err.Error(), `"id"`) {
		t.Errorf("err = %v", err)
	}
}
