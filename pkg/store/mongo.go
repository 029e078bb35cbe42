package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hyperhive/hivegraph/pkg/catalog"
	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// MongoOptions configures [OpenMongo].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps one document per catalog, keyed by name in _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to MongoDB and pings the primary.
func OpenMongo(ctx context.Context, o MongoOptions) (*MongoStore, error) {
	if o.URI == "" {
		return nil, herrors.New(herrors.ErrCodeInvalidConfig, "mongo store needs a URI")
	}
	if o.Database == "" {
		o.Database = "hivegraph"
	}
	if o.Collection == "" {
		o.Collection = "catalogs"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(o.URI))
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, herrors.Wrap(herrors.ErrCodeNetwork, err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(o.Database).Collection(o.Collection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, name string, c *catalog.Catalog) (Info, error) {
	rec, err := newRecord(name, c)
	if err != nil {
		return Info{}, err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": name}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return Info{}, fmt.Errorf("save %s: %w", name, err)
	}
	return rec.info(), nil
}

func (s *MongoStore) Load(ctx context.Context, name string, opts ...catalog.Option) (*catalog.Catalog, error) {
	if err := herrors.ValidateName(name); err != nil {
		return nil, err
	}
	var rec record
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return rec.catalog(opts...)
}

// List fetches only the summary fields, not the documents.
func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "digest": 1, "features": 1, "saved_at": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	var out []Info
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := herrors.ValidateName(name); err != nil {
		return err
	}
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	return err
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
