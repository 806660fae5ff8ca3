package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/codecity/pkg/tree"
)

// CollectionSnapshots is the MongoDB collection holding snapshots.
const CollectionSnapshots = "snapshots"

// mongoDoc is the stored document. IDs are kept as strings so they stay
// readable in the shell.
type mongoDoc struct {
	ID        string     `bson:"_id"`
	Name      string     `bson:"name"`
	Source    string     `bson:"source"`
	CreatedAt time.Time  `bson:"created_at"`
	Stats     tree.Stats `bson:"stats"`
	Scene     []byte     `bson:"scene,omitempty"`
}

func toDoc(s *Snapshot) mongoDoc {
	return mongoDoc{
		ID: s.ID.String(), Name: s.Name, Source: s.Source,
		CreatedAt: s.CreatedAt, Stats: s.Stats, Scene: s.Scene,
	}
}

func (d mongoDoc) snapshot() (*Snapshot, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt snapshot id %q: %w", d.ID, err)
	}
	return &Snapshot{
		ID: id, Name: d.Name, Source: d.Source,
		CreatedAt: d.CreatedAt.UTC(), Stats: d.Stats, Scene: d.Scene,
	}, nil
}

// MongoStore keeps snapshots in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and prepares the snapshots collection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	coll := client.Database(database).Collection(CollectionSnapshots)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Save upserts a snapshot.
func (s *MongoStore) Save(ctx context.Context, snap *Snapshot) error {
	doc := toDoc(snap)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Load returns the snapshot with id.
func (s *MongoStore) Load(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	return doc.snapshot()
}

// List returns the newest snapshots first, without scenes.
func (s *MongoStore) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"scene": 0})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer cur.Close(ctx)

	var out []Summary
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		snap, err := doc.snapshot()
		if err != nil {
			return nil, err
		}
		out = append(out, snap.Summary())
	}
	return out, cur.Err()
}

// Delete removes the snapshot with id.
func (s *MongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
