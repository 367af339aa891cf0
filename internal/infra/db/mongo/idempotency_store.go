package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookingengine/internal/app/middleware"
)

// IdempotencyStore keeps replayable command results; a TTL index expires them.
type IdempotencyStore struct {
	col *mongo.Collection
	ttl time.Duration
}

func NewIdempotencyStore(ctx context.Context, db *mongo.Database, ttl time.Duration) (*IdempotencyStore, error) {
	col := db.Collection("app_idempotency")
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
	}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, err
	}
	return &IdempotencyStore{col: col, ttl: ttl}, nil
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var doc idempotencyDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return middleware.IdempotencyRecord{}, false, nil
		}
		return middleware.IdempotencyRecord{}, false, err
	}
	return doc.toRecord(), true, nil
}

// Reserve upserts the pending record only over an expired one. A live
// record makes the upsert collide on _id, which means the key is taken.
func (s *IdempotencyStore) Reserve(ctx context.Context, rec middleware.IdempotencyRecord) (bool, error) {
	now := time.Now().UTC()
	doc := newIdempotencyDocument(rec, now)
	filter := bson.M{"_id": doc.Key, "created_at": bson.M{"$lte": now.Add(-s.ttl)}}
	if _, err := s.col.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	doc := newIdempotencyDocument(rec, time.Now().UTC())
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, options.Replace().SetUpsert(true))
	return err
}

type idempotencyDocument struct {
	Key         string    `bson:"_id"`
	CommandKey  string    `bson:"command_key"`
	Fingerprint string    `bson:"fingerprint"`
	Payload     []byte    `bson:"payload"`
	Error       string    `bson:"error"`
	Pending     bool      `bson:"pending"`
	OccurredAt  time.Time `bson:"occurred_at"`
	CreatedAt   time.Time `bson:"created_at"`
}

func newIdempotencyDocument(rec middleware.IdempotencyRecord, now time.Time) idempotencyDocument {
	return idempotencyDocument{
		Key:         rec.Key,
		CommandKey:  rec.CommandKey,
		Fingerprint: rec.Fingerprint,
		Payload:     rec.Payload,
		Error:       rec.Error,
		Pending:     rec.Pending,
		OccurredAt:  rec.OccurredAt,
		CreatedAt:   now,
	}
}

func (d idempotencyDocument) toRecord() middleware.IdempotencyRecord {
	return middleware.IdempotencyRecord{
		Key:         d.Key,
		CommandKey:  d.CommandKey,
		Fingerprint: d.Fingerprint,
		Payload:     d.Payload,
		Error:       d.Error,
		Pending:     d.Pending,
		OccurredAt:  d.OccurredAt,
	}
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
