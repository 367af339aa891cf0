package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainresource "bookingengine/internal/domain/resource"
	"bookingengine/internal/infra/db/records"
)

type ResourceRepository struct {
	col *mongo.Collection
}

func NewResourceRepository(db *mongo.Database) *ResourceRepository {
	return &ResourceRepository{col: db.Collection("agg_resource")}
}

func (r *ResourceRepository) ByID(ctx context.Context, id domainresource.ID) (*domainresource.Resource, error) {
	var doc records.Resource
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainresource.ErrNotFound
		}
		return nil, err
	}
	return doc.ToDomain()
}

func (r *ResourceRepository) Save(ctx context.Context, res *domainresource.Resource) error {
	if err := res.Validate(); err != nil {
		return err
	}
	doc := records.FromResource(res)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *ResourceRepository) List(ctx context.Context) ([]*domainresource.Resource, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainresource.Resource
	for cur.Next(ctx) {
		var doc records.Resource
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		res, err := doc.ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, cur.Err()
}

var _ domainresource.Repository = (*ResourceRepository)(nil)
