// Package mongodb stores the marketplace records as MongoDB documents.
// Every status change is a single filtered FindOneAndUpdate so that the
// status guard and the write happen atomically on one document.
package mongodb

import (
	"context"
	"fmt"

	"skill-swap-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection    = "users"
	swapsCollection    = "swaps"
	reportsCollection  = "reports"
	messagesCollection = "platform_messages"
)

// Config holds MongoDB connection configuration
type Config struct {
	URI      string
	Database string
}

// Client wraps a connected MongoDB database
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect opens a client and verifies the connection
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Client{client: client, database: client.Database(cfg.Database)}, nil
}

// Ping checks that the primary is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the stores rely on for uniqueness
func (c *Client) EnsureIndexes(ctx context.Context) error {
	users := c.database.Collection(usersCollection)
	if _, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("users_email_key")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	swaps := c.database.Collection(swapsCollection)
	if _, err := swaps.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("swaps_pending_pair_key").
				SetPartialFilterExpression(bson.D{{Key: "status", Value: "pending"}}),
		},
		{Keys: bson.D{{Key: "requester", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "target", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("failed to create swap indexes: %w", err)
	}

	reports := c.database.Collection(reportsCollection)
	if _, err := reports.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}); err != nil {
		return fmt.Errorf("failed to create report indexes: %w", err)
	}
	return nil
}

// Stores wires the document-backed stores over this client
func (c *Client) Stores() *repository.Stores {
	users := NewUserStore(c.database)
	return &repository.Stores{
		Users:    users,
		Swaps:    NewSwapStore(c.database, users),
		Reports:  NewReportStore(c.database),
		Messages: NewMessageStore(c.database, users),
		Ping:     c.Ping,
		Close: func() {
			_ = c.Close(context.Background())
		},
	}
}
