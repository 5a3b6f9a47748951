package mongodb

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/grazioso/shelter/internal/config"
	"github.com/grazioso/shelter/internal/logger"
)

// MongoDB owns the client connection behind the animals collection
type MongoDB struct {
	client     *mongo.Client
	database   *mongo.Database
	collection *mongo.Collection
	config     config.MongoConfig

	ensureIndexes func(ctx context.Context, coll *mongo.Collection) error
}

// New creates a new MongoDB database instance
func New(cfg config.MongoConfig) *MongoDB {
	return &MongoDB{
		config:        cfg,
		ensureIndexes: createIndexes,
	}
}

// URI returns the connection string for cfg. An explicit URI is used
// as is; otherwise one is assembled from host, port and credentials.
func URI(cfg config.MongoConfig) string {
	if cfg.URI != "" {
		return cfg.URI
	}

	port := cfg.Port
	if port == 0 {
		port = 27017
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}

	if len(cfg.Options) > 0 {
		q := url.Values{}
		for k, v := range cfg.Options {
			q.Set(k, v)
		}
		u.Path = "/"
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// Connect establishes connection to MongoDB
func (m *MongoDB) Connect(ctx context.Context) error {
	clientOptions := options.Client().ApplyURI(URI(m.config))

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return m.attach(ctx, client)
}

// attach adopts a connected client once the indexes are in place. On
// failure the client is disconnected and m stays unconnected.
func (m *MongoDB) attach(ctx context.Context, client *mongo.Client) error {
	database := client.Database(m.config.DatabaseName)
	collection := database.Collection(m.config.CollectionName)

	if err := m.ensureIndexes(ctx, collection); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	m.client = client
	m.database = database
	m.collection = collection

	logger.Info("Successfully connected to MongoDB (%s.%s)", m.config.DatabaseName, m.config.CollectionName)
	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}

// Ping checks the database connection
func (m *MongoDB) Ping(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("not connected to database")
	}
	return m.client.Ping(ctx, nil)
}

// IndexModels returns the indexes the rescue queries rely on
func IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "animal_type", Value: 1},
				{Key: "breed", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "age_upon_outcome_in_weeks", Value: 1},
			},
		},
	}
}

func createIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, IndexModels())
	return err
}

// Collection returns the animals collection handle. It is nil until
// Connect succeeds.
func (m *MongoDB) Collection() *mongo.Collection {
	return m.collection
}
