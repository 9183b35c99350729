package response

import "net/http"

// Business codes. The first three digits are the HTTP status they map to.
const (
	CodeSuccess          = 20000
	CodeCreated          = 20100
	CodeBadRequest       = 40000
	CodeParamInvalid     = 40001
	CodeNotFound         = 40400
	CodeConflict         = 40900
	CodeValidationFailed = 42200
	CodeInternalServer   = 50000
	CodeInternalError    = 50001
	CodeDatabaseError    = 50002
	CodeUnavailable      = 50300
)

var messages = map[int]string{
	CodeSuccess:          "success",
	CodeCreated:          "created",
	CodeBadRequest:       "bad request",
	CodeParamInvalid:     "invalid parameters",
	CodeNotFound:         "resource not found",
	CodeConflict:         "conflict",
	CodeValidationFailed: "validation failed",
	CodeInternalServer:   "internal server error",
	CodeInternalError:    "internal error",
	CodeDatabaseError:    "database error",
	CodeUnavailable:      "service unavailable",
}

// Message returns the default message for a business code.
func Message(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return http.StatusText(Status(code))
}

// Status returns the HTTP status a business code maps to.
func Status(code int) int {
	status := code / 100
	if http.StatusText(status) == "" {
		return http.StatusInternalServerError
	}
	return status
}
