package elasticsearch

import "errors"

var (
	ErrMarshalFailed       = errors.New("elasticsearch: marshal failed")
	ErrDecodeFailed        = errors.New("elasticsearch: decode failed")
	ErrIndexRequestFailed  = errors.New("elasticsearch: index request failed")
	ErrGetRequestFailed    = errors.New("elasticsearch: get request failed")
	ErrDeleteRequestFailed = errors.New("elasticsearch: delete request failed")
	ErrSearchRequestFailed = errors.New("elasticsearch: search request failed")
	ErrBulkItemsFailed     = errors.New("elasticsearch: bulk items failed")
)
