package mongodb

import (
	"context"
	"net"
	"net/url"
	"strconv"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/huynhanx03/go-crud/pkg/settings"
	"github.com/huynhanx03/go-crud/pkg/utils"
)

const (
	defaultPort    = 27017
	defaultTimeout = 10
)

// URI renders the connection string for cfg.
func URI(cfg *settings.MongoDB) string {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	u := url.URL{Scheme: "mongodb", Host: net.JoinHostPort(cfg.Host, strconv.Itoa(port))}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return u.String()
}

// NewClient connects to MongoDB and pings the primary.
func NewClient(ctx context.Context, cfg *settings.MongoDB) (*mongo.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := options.Client().
		ApplyURI(URI(cfg)).
		SetConnectTimeout(utils.ToDuration(timeout)).
		SetServerSelectionTimeout(utils.ToDuration(timeout))
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.MinPoolSize > 0 {
		opts.SetMinPoolSize(cfg.MinPoolSize)
	}
	if cfg.MaxConnIdleTime > 0 {
		opts.SetMaxConnIdleTime(utils.ToDuration(int(cfg.MaxConnIdleTime)))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "mongodb: connect")
	}

	pingCtx, cancel := context.WithTimeout(ctx, utils.ToDuration(timeout))
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, pkgerrors.Wrapf(err, "mongodb: ping %s", cfg.Host)
	}
	return client, nil
}
