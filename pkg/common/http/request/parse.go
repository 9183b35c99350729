package request

import (
	"io"
	"maps"
	"net/url"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/huynhanx03/go-crud/pkg/common/http/response"
	"github.com/huynhanx03/go-crud/pkg/common/http/validation"
	"github.com/huynhanx03/go-crud/pkg/constraints"
)

var ErrEmptyBody = errors.New("request body is empty")

// ParseRequest decodes and validates a JSON body, answering 400/422 itself on failure.
func ParseRequest[T any](c *gin.Context) (*T, bool) {
	req, err := DecodeJSON[T](c)
	if err != nil {
		response.ErrorResponse(c, response.CodeParamInvalid, response.ToErrorResponse(err))
		return nil, false
	}

	if ok, fields := validation.IsRequestValid(req); !ok {
		response.ErrorResponse(c, response.CodeValidationFailed, response.ToErrorResponse(fields))
		return nil, false
	}

	return req, true
}

// DecodeJSON decodes the body into a new T without validating it.
func DecodeJSON[T any](c *gin.Context) (*T, error) {
	var req T
	if c.Request.Body == nil {
		return nil, ErrEmptyBody
	}
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyBody
		}
		return nil, errors.Wrap(err, "decode json body")
	}
	return &req, nil
}

// DecodeForm maps a url-encoded or multipart form onto a new T using `form` tags, without
// validating it. Values that do not convert to their field's type are left out of the model
// and reported as a validation.Errors alongside it, so the form can be shown again.
func DecodeForm[T any](c *gin.Context) (*T, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, errors.Wrap(err, "parse form")
	}

	form := c.Request.PostForm
	var bad validation.Errors
	for key, values := range form {
		var scratch T
		if binding.MapFormWithTag(&scratch, url.Values{key: values}, "form") != nil {
			bad = append(bad, validation.FieldError{Field: key, Rule: validation.RuleFormat})
		}
	}

	if len(bad) > 0 {
		form = maps.Clone(form)
		for _, f := range bad {
			delete(form, f.Field)
		}
		sort.Slice(bad, func(i, j int) bool { return bad[i].Field < bad[j].Field })
	}

	var req T
	if err := binding.MapFormWithTag(&req, form, "form"); err != nil {
		return nil, errors.Wrap(err, "map form")
	}
	if len(bad) > 0 {
		return &req, bad
	}
	return &req, nil
}

// ParamID parses the named route parameter as a key of type K.
func ParamID[K constraints.ID](c *gin.Context, name string) (K, error) {
	id, err := constraints.ParseID[K](c.Param(name))
	if err != nil {
		return id, errors.WithMessagef(err, "route parameter %q", name)
	}
	return id, nil
}
