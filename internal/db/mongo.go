package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client owns the process-wide Mongo connection. It is created once in main
// and passed to the stores.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

type ConnectOptions struct {
	URI         string
	Database    string
	MaxAttempts uint64
	BaseBackoff time.Duration
}

// Connect dials Mongo and pings the primary, retrying with exponential
// backoff. It gives up after MaxAttempts and returns the last error.
func Connect(ctx context.Context, log *slog.Logger, opts ConnectOptions) (*Client, error) {
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 5
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 500 * time.Millisecond
	}

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(5 * time.Second)

	backoff := retry.WithMaxRetries(opts.MaxAttempts-1, retry.NewExponential(opts.BaseBackoff))

	var client *mongo.Client
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		c, err := mongo.Connect(ctx, clientOpts)
		if err != nil {
			log.Warn("mongo connect failed", "attempt", attempt, "err", err)
			return retry.RetryableError(err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := c.Ping(pingCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			log.Warn("mongo ping failed", "attempt", attempt, "err", err)
			return retry.RetryableError(err)
		}

		client = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect mongo after %d attempts: %w", attempt, err)
	}

	log.Info("connected to mongo", "database", opts.Database, "attempts", attempt)

	return &Client{client: client, db: client.Database(opts.Database)}, nil
}

// NewFromDatabase wraps an already connected database. Used by tests that
// run against mock deployments.
func NewFromDatabase(db *mongo.Database) *Client {
	return &Client{client: db.Client(), db: db}
}

func (c *Client) Database() *mongo.Database {
	return c.db
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
