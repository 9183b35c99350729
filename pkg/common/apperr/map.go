package apperr

import "fmt"

// Messages appended to the subject of an error, e.g. "products failed to list".
const (
	MsgCreateFailed = "failed to create"
	MsgGetFailed    = "failed to get"
	MsgListFailed   = "failed to list"
	MsgUpdateFailed = "failed to update"
	MsgDeleteFailed = "failed to delete"
	MsgCloneFailed  = "failed to clone"
	MsgNotFound     = "not found"
	MsgUnsupported  = "not supported"
)

// NewError builds an AppError whose message is "<subject> <msg>".
func NewError(subject string, code int, msg string, httpStatus int, cause error) *AppError {
	return New(code, fmt.Sprintf("%s %s", subject, msg), httpStatus, cause)
}
