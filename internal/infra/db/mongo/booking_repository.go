package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "bookingengine/internal/domain/booking"
	"bookingengine/internal/infra/db/records"
)

// BookingRepository keeps bookings in agg_booking and one capacity counter
// per resource, date and slot in slot_capacity.
type BookingRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		col:      db.Collection("agg_booking"),
		counters: db.Collection("slot_capacity"),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc records.Booking
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.ToDomain()
}

// Save writes the booking when its stored version still matches.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := records.FromBooking(b)
	doc.Version = b.Version + 1
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	res, err := r.col.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(b.Version == 0))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// A fresh booking collides only with an existing id; a stale
			// version collides through the upsert.
			if b.Version == 0 {
				return errors.Join(domainbooking.ErrDuplicate, err)
			}
			return domainbooking.ErrConcurrentModified
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainbooking.ErrConcurrentModified
	}
	b.Version = doc.Version
	return nil
}

type counterDocument struct {
	ID         string `bson:"_id"`
	ResourceID string `bson:"resource_id"`
	Date       string `bson:"date"`
	SlotID     string `bson:"slot_id"`
	Booked     int    `bson:"booked"`
}

func (r *BookingRepository) CountForSlot(ctx context.Context, key domainbooking.SlotKey) (int, error) {
	var doc counterDocument
	if err := r.counters.FindOne(ctx, bson.M{"_id": key.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return doc.Booked, nil
}

// ReserveSlot makes sure the counter exists, then increments it only while
// it is below maxBookings. Neither step raises a write error on a full slot,
// so the surrounding transaction stays usable.
func (r *BookingRepository) ReserveSlot(ctx context.Context, key domainbooking.SlotKey, maxBookings int) error {
	id := key.String()
	ensure := bson.M{"$setOnInsert": bson.M{
		"resource_id": string(key.ResourceID),
		"date":        key.Date,
		"slot_id":     string(key.SlotID),
		"booked":      0,
	}}
	if _, err := r.counters.UpdateOne(ctx, bson.M{"_id": id}, ensure, options.Update().SetUpsert(true)); err != nil {
		return mapTxnError(err)
	}
	res, err := r.counters.UpdateOne(ctx,
		bson.M{"_id": id, "booked": bson.M{"$lt": maxBookings}},
		bson.M{"$inc": bson.M{"booked": 1}})
	if err != nil {
		return mapTxnError(err)
	}
	if res.MatchedCount == 0 {
		return domainbooking.ErrCapacityExhausted
	}
	return nil
}

func (r *BookingRepository) ReleaseSlot(ctx context.Context, key domainbooking.SlotKey) error {
	_, err := r.counters.UpdateOne(ctx,
		bson.M{"_id": key.String(), "booked": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"booked": -1}})
	return mapTxnError(err)
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
