package elasticsearch

import (
	"github.com/elastic/go-elasticsearch/v8"
	pkgerrors "github.com/pkg/errors"

	"github.com/huynhanx03/go-crud/pkg/settings"
)

// New creates a client for the configured cluster. The client is an esapi.Transport
// and can be handed to NewRepository directly.
func New(cfg settings.Elasticsearch) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "elasticsearch: new client")
	}
	return client, nil
}
