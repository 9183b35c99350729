package kafka

import (
	"github.com/IBM/sarama"

	"github.com/huynhanx03/go-crud/pkg/settings"
	"github.com/huynhanx03/go-crud/pkg/utils"
)

const (
	defaultMaxRetries      = 3
	defaultRetryBackoff    = 100 // millis
	defaultTimeout         = 10  // seconds
	defaultMaxMessageBytes = 1 << 20
)

// NewConfig builds a sync producer configuration from cfg.
func NewConfig(cfg settings.Kafka) *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = "go-crud"

	c.Producer.Return.Successes = true
	c.Producer.Return.Errors = true
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Partitioner = sarama.NewHashPartitioner

	c.Producer.Retry.Max = utils.Coalesce(cfg.MaxRetries, defaultMaxRetries)
	c.Producer.Retry.Backoff = utils.ToDurationMs(utils.Coalesce(cfg.RetryBackoff, defaultRetryBackoff))
	c.Producer.MaxMessageBytes = utils.Coalesce(cfg.MaxMessageBytes, defaultMaxMessageBytes)
	c.Producer.Timeout = utils.ToDuration(utils.Coalesce(cfg.Timeout, defaultTimeout))
	c.Net.DialTimeout = c.Producer.Timeout

	if cfg.FlushFrequency > 0 {
		c.Producer.Flush.Frequency = utils.ToDurationMs(cfg.FlushFrequency)
	}
	if cfg.FlushBytes > 0 {
		c.Producer.Flush.Bytes = cfg.FlushBytes
	}
	return c
}
