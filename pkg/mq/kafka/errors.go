package kafka

import "errors"

var (
	ErrNoBrokers      = errors.New("kafka: no brokers configured")
	ErrProducerFailed = errors.New("kafka: failed to create producer")
	ErrEncodeFailed   = errors.New("kafka: failed to encode message")
	ErrPublishFailed  = errors.New("kafka: failed to publish")
)
