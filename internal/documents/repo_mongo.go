package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repo on a single MongoDB collection. Each record
// carries its namespace collection path so one collection serves every user.
type MongoRepo struct {
	Coll *mongo.Collection
	now  func() time.Time
}

// NewMongoRepo constructs a MongoRepo over coll.
func NewMongoRepo(coll *mongo.Collection) *MongoRepo {
	return &MongoRepo{Coll: coll, now: time.Now}
}

type mongoDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Namespace          string             `bson:"namespace"`
	Name               string             `bson:"name"`
	Type               string             `bson:"type"`
	OriginalURL        string             `bson:"original_url"`
	DigitalCopyContent string             `bson:"digital_copy_content"`
	Category           string             `bson:"category"`
	Size               int64              `bson:"size"`
	Timestamp          *time.Time         `bson:"timestamp,omitempty"`
}

func (m mongoDocument) toDocument() Document {
	doc := Document{
		ID:              m.ID.Hex(),
		Name:            m.Name,
		MimeType:        m.Type,
		OriginalLocator: m.OriginalURL,
		DigitalCopyText: m.DigitalCopyContent,
		Category:        m.Category,
		SizeBytes:       m.Size,
	}
	if doc.Category == "" {
		doc.Category = CategoryOther
	}
	if m.Timestamp != nil {
		doc.CreatedAt = m.Timestamp.UTC()
	}
	return doc
}

// EnsureIndexes creates the namespace listing index.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.Coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "namespace", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("namespace_timestamp"),
	})
	return err
}

// Create inserts doc; the timestamp is taken at millisecond precision.
func (r *MongoRepo) Create(ctx context.Context, ns Namespace, doc Document) (Document, error) {
	now := r.clock().UTC().Truncate(time.Millisecond)
	rec := mongoDocument{
		Namespace:          ns.CollectionPath(),
		Name:               doc.Name,
		Type:               doc.MimeType,
		OriginalURL:        doc.OriginalLocator,
		DigitalCopyContent: doc.DigitalCopyText,
		Category:           doc.Category,
		Size:               doc.SizeBytes,
		Timestamp:          &now,
	}
	res, err := r.Coll.InsertOne(ctx, rec)
	if err != nil {
		return Document{}, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return Document{}, fmt.Errorf("mongo: unexpected inserted id %T", res.InsertedID)
	}
	doc.ID = id.Hex()
	doc.CreatedAt = now
	return doc, nil
}

// List returns the namespace's documents, newest first.
func (r *MongoRepo) List(ctx context.Context, ns Namespace) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.Coll.Find(ctx, bson.M{"namespace": ns.CollectionPath()}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Document{}
	for cur.Next(ctx) {
		var rec mongoDocument
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, rec.toDocument())
	}
	return out, cur.Err()
}

// Get fetches a document by its hex ObjectID.
func (r *MongoRepo) Get(ctx context.Context, ns Namespace, id string) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Document{}, ErrNotFound
	}
	var rec mongoDocument
	err = r.Coll.FindOne(ctx, bson.M{"_id": oid, "namespace": ns.CollectionPath()}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return rec.toDocument(), nil
}

// Delete removes a document by its hex ObjectID.
func (r *MongoRepo) Delete(ctx context.Context, ns Namespace, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.Coll.DeleteOne(ctx, bson.M{"_id": oid, "namespace": ns.CollectionPath()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}

var _ Repo = (*MongoRepo)(nil)
