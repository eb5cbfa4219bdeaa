package notify

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/bubblechart/pkg/errors"
)

// MongoConfig configures a [MongoNotifier].
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Defaults for MongoConfig.
const (
	DefaultMongoDatabase   = "bubblechart"
	DefaultMongoCollection = "selection_events"
)

// MongoNotifier appends every emission to a collection as an [Event]
// document, giving the host an audit trail of selections.
type MongoNotifier struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// DialMongo connects to MongoDB and verifies the connection with a ping.
func DialMongo(ctx context.Context, cfg MongoConfig) (*MongoNotifier, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	return &MongoNotifier{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Emit inserts the event document.
func (n *MongoNotifier) Emit(ctx context.Context, key, value string, opts Options) error {
	if _, err := n.collection.InsertOne(ctx, NewEvent(key, value, opts)); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "insert event %s", key)
	}
	return nil
}

// Close disconnects the client.
func (n *MongoNotifier) Close(ctx context.Context) error {
	return n.client.Disconnect(ctx)
}

var _ Notifier = (*MongoNotifier)(nil)
