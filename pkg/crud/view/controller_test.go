package view

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/go-crud/pkg/crud"
	"github.com/huynhanx03/go-crud/pkg/crud/crudtest"
)

const pages = `{{define "widgets/index"}}{{range .Model}}{{.Name}};{{end}}{{end}}
{{define "widgets/details"}}details {{.Model.Name}}{{end}}
{{define "widgets/create"}}create{{range .Errors}} err:{{.Field}}{{end}}{{with .Data.colors}} colors:{{len .}}{{end}}{{end}}
{{define "widgets/edit"}}edit {{.Model.ID}}{{range .Errors}} err:{{.Field}}{{end}}{{end}}
{{define "widgets/delete"}}delete {{.Model.Name}}{{end}}
{{define "widgets/clone"}}clone {{.Model.Name}}{{end}}`

type fixture struct {
	router   *gin.Engine
	svc      *crudtest.Service[crudtest.Widget, *crudtest.Widget, int64]
	d        *crud.Dispatcher[crudtest.Widget, *crudtest.Widget, int64]
	prepared []*crudtest.Widget
}

func newFixture(t *testing.T, opts ...crud.Option[crudtest.Widget]) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{svc: crudtest.NewWidgets()}
	opts = append(opts, crud.WithPrepareForm(func(_ context.Context, model *crudtest.Widget, data crud.ViewData) error {
		f.prepared = append(f.prepared, model)
		data["colors"] = []string{"red", "green", "blue"}
		return nil
	}))
	f.d = crud.New[crudtest.Widget, *crudtest.Widget, int64]("widgets", f.svc, opts...)

	f.router = gin.New()
	f.router.SetHTMLTemplate(template.Must(template.New("").Parse(pages)))
	New(f.d).Register(f.router.Group("/widgets"))
	return f
}

func (f *fixture) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// ============================================================================
// Outcome mapping
// ============================================================================

func TestDecide(t *testing.T) {
	ctx := context.Background()
	seven := &crudtest.Widget{ID: 7, Name: "a"}

	tests := []struct {
		name string
		opts []crud.Option[crudtest.Widget]
		step Step
		res  crud.Result[crudtest.Widget]
		want Outcome
	}{
		{
			name: "not_found",
			step: StepDetails,
			res:  crud.Result[crudtest.Widget]{Outcome: crud.OutcomeNotFound},
			want: Outcome{Kind: KindNotFound},
		},
		{
			name: "create_base_redirects_to_index",
			step: StepCreate,
			res:  crud.Result[crudtest.Widget]{Entity: seven},
			want: Outcome{Kind: KindRedirect, Target: TargetIndex},
		},
		{
			name: "create_full_redirects_to_details",
			opts: []crud.Option[crudtest.Widget]{crud.WithVariant[crudtest.Widget](crud.VariantFull)},
			step: StepCreate,
			res:  crud.Result[crudtest.Widget]{Entity: seven},
			want: Outcome{Kind: KindRedirect, Target: TargetDetails, ID: "7"},
		},
		{
			name: "edit_redirects_to_details",
			step: StepEdit,
			res:  crud.Result[crudtest.Widget]{Entity: seven},
			want: Outcome{Kind: KindRedirect, Target: TargetDetails, ID: "7"},
		},
		{
			name: "clone_redirects_to_details",
			step: StepClone,
			res:  crud.Result[crudtest.Widget]{Entity: seven},
			want: Outcome{Kind: KindRedirect, Target: TargetDetails, ID: "7"},
		},
		{
			name: "delete_redirects_to_index",
			step: StepDelete,
			res:  crud.Result[crudtest.Widget]{},
			want: Outcome{Kind: KindRedirect, Target: TargetIndex},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := crud.New[crudtest.Widget, *crudtest.Widget, int64]("widgets", crudtest.NewWidgets(), tt.opts...)

			got, err := decide(ctx, d, tt.step, tt.res)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind != tt.want.Kind || got.Target != tt.want.Target || got.ID != tt.want.ID {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// ============================================================================
// HTTP flow
// ============================================================================

func TestCreateRedirect(t *testing.T) {
	tests := []struct {
		name     string
		opts     []crud.Option[crudtest.Widget]
		location string
	}{
		{name: "base", location: "/widgets/"},
		{name: "full", opts: []crud.Option[crudtest.Widget]{crud.WithVariant[crudtest.Widget](crud.VariantFull)}, location: "/widgets/details/7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.opts...)
			f.svc.NextID = func() int64 { return 7 }

			w := f.do(http.MethodPost, "/widgets/create", url.Values{"name": {"gear"}})
			if w.Code != http.StatusFound {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			if got := w.Header().Get("Location"); got != tt.location {
				t.Errorf("Location = %q, want %q", got, tt.location)
			}
		})
	}
}

func TestCreateInvalidRerenders(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/widgets/create", url.Values{"color": {"red"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "err:name") || !strings.Contains(body, "colors:3") {
		t.Errorf("body = %q", body)
	}
	if f.svc.Calls().Create != 0 {
		t.Error("service should not be called")
	}
	if len(f.prepared) != 1 || f.prepared[0] == nil || f.prepared[0].Color != "red" {
		t.Errorf("hook calls = %+v, want exactly one with the invalid model", f.prepared)
	}
}

func TestCreateFormPreparesBlankModel(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/widgets/create", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "colors:3") {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}
	if len(f.prepared) != 1 || f.prepared[0] != nil {
		t.Errorf("hook should run once without a model, got %+v", f.prepared)
	}
}

func TestDisabledCreate(t *testing.T) {
	f := newFixture(t, crud.WithToggle[crudtest.Widget](crud.ActionCreate, false))

	inputs := []url.Values{{"name": {"gear"}}, {"id": {"x"}, "name": {"gear"}}}
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		for _, form := range inputs {
			w := f.do(method, "/widgets/create", form)
			if w.Code != http.StatusNotFound {
				t.Errorf("%s %v status = %d, want 404", method, form, w.Code)
			}
		}
	}
	if f.svc.Calls().Total() != 0 || len(f.prepared) != 0 {
		t.Error("disabled create must not reach the service or the hook")
	}
}

func TestDisabledActionsIgnoreMalformedInput(t *testing.T) {
	f := newFixture(t, crud.WithToggle[crudtest.Widget](crud.ActionUpdate, false))

	tests := []struct {
		name   string
		method string
		target string
		form   url.Values
	}{
		{"clone_off_in_base_variant", http.MethodPost, "/widgets/clone/abc", url.Values{}},
		{"clone_confirm", http.MethodGet, "/widgets/clone/abc", nil},
		{"edit_bad_id", http.MethodPost, "/widgets/edit/abc", url.Values{"name": {"x"}}},
		{"edit_bad_field", http.MethodPost, "/widgets/edit/1", url.Values{"id": {"x"}}},
		{"edit_form_bad_id", http.MethodGet, "/widgets/edit/abc", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := f.do(tt.method, tt.target, tt.form); w.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", w.Code)
			}
		})
	}
	if f.svc.Calls().Total() != 0 || len(f.prepared) != 0 {
		t.Error("disabled actions must not reach the service or the hook")
	}
}

func TestUnparseableFieldRerenders(t *testing.T) {
	tests := []struct {
		name   string
		target string
		form   url.Values
		body   string
	}{
		{"create", "/widgets/create", url.Values{"id": {"abc"}, "name": {"gear"}}, "create err:id colors:3"},
		{"edit", "/widgets/edit/5", url.Values{"id": {"abc"}, "name": {"new"}}, "edit 5 err:id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.svc.Put(crudtest.Widget{ID: 5, Name: "old"})

			w := f.do(http.MethodPost, tt.target, tt.form)
			if w.Code != http.StatusOK || w.Body.String() != tt.body {
				t.Fatalf("status = %d, body = %q, want %q", w.Code, w.Body.String(), tt.body)
			}
			if calls := f.svc.Calls(); calls.Create+calls.Update != 0 {
				t.Errorf("service writes = %+v, want none", calls)
			}
			if len(f.prepared) != 1 || f.prepared[0].Name != tt.form.Get("name") {
				t.Errorf("hook calls = %+v, want one with the decoded fields", f.prepared)
			}
		})
	}
}

func TestEditUsesRouteID(t *testing.T) {
	f := newFixture(t)
	f.svc.Put(crudtest.Widget{ID: 5, Name: "old"})

	w := f.do(http.MethodPost, "/widgets/edit/5", url.Values{"id": {"9"}, "name": {"new"}})
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/widgets/details/5" {
		t.Errorf("Location = %q", got)
	}

	w = f.do(http.MethodGet, "/widgets/details/5", nil)
	if w.Body.String() != "details new" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestEditFormRunsHook(t *testing.T) {
	f := newFixture(t)
	f.svc.Put(crudtest.Widget{ID: 5, Name: "old"})

	w := f.do(http.MethodGet, "/widgets/edit/5", nil)
	if w.Code != http.StatusOK || w.Body.String() != "edit 5" {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}
	if len(f.prepared) != 1 || f.prepared[0].ID != 5 {
		t.Errorf("hook calls = %+v", f.prepared)
	}
}

func TestPages(t *testing.T) {
	f := newFixture(t, crud.WithVariant[crudtest.Widget](crud.VariantFull))
	f.svc.Put(crudtest.Widget{ID: 1, Name: "a"})
	f.svc.Put(crudtest.Widget{ID: 2, Name: "b"})

	tests := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{"index", "/widgets/", http.StatusOK, "a;b;"},
		{"details", "/widgets/details/2", http.StatusOK, "details b"},
		{"details_missing", "/widgets/details/9", http.StatusNotFound, ""},
		{"details_bad_id", "/widgets/details/abc", http.StatusBadRequest, ""},
		{"delete_confirm", "/widgets/delete/1", http.StatusOK, "delete a"},
		{"clone_confirm", "/widgets/clone/1", http.StatusOK, "clone a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodGet, tt.target, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestDeleteAndClone(t *testing.T) {
	f := newFixture(t, crud.WithVariant[crudtest.Widget](crud.VariantFull))
	f.svc.Put(crudtest.Widget{ID: 1, Name: "a"})
	f.svc.NextID = func() int64 { return 2 }

	w := f.do(http.MethodPost, "/widgets/clone/1", url.Values{})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/widgets/details/2" {
		t.Fatalf("clone: status = %d, Location = %q", w.Code, w.Header().Get("Location"))
	}

	w = f.do(http.MethodPost, "/widgets/delete/1", url.Values{})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/widgets/" {
		t.Fatalf("delete: status = %d, Location = %q", w.Code, w.Header().Get("Location"))
	}

	if w = f.do(http.MethodPost, "/widgets/clone/1", url.Values{}); w.Code != http.StatusNotFound {
		t.Errorf("clone of deleted entity: status = %d", w.Code)
	}
}
