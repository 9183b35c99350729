package constraints

const (
	HeaderForwardedProto = "X-Forwarded-Proto"
	HeaderRequestID      = "X-Request-Id"
	ContextKeyRequestID  = "request_id"
	ContextKeyFault      = "fault"
	ContextKeyAction     = "crud_action"
)
