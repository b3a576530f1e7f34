package report

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/terrrybug/pyninja/pkg/errors"
)

// Store persists run reports in MongoDB, one document per run, keyed by
// the run identifier.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewStore connects to MongoDB and binds the reports collection.
func NewStore(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "connecting to report store")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "report store unreachable")
	}
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Save inserts one report document.
func (s *Store) Save(ctx context.Context, r Report) error {
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "saving report %s", r.ID)
	}
	return nil
}

// Recent returns up to limit reports, newest first.
func (s *Store) Recent(ctx context.Context, limit int64) ([]Report, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "generated_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "listing reports")
	}
	defer cur.Close(ctx)

	var reports []Report
	if err := cur.All(ctx, &reports); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "decoding reports")
	}
	return reports, nil
}

// Close tears down the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
