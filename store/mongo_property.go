package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/search"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProperties struct {
	coll *mongo.Collection
}

func (s *mongoProperties) Count(ctx context.Context, q search.Query) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, q.Filter())
	if err != nil {
		return 0, fmt.Errorf("counting properties: %w", err)
	}
	return n, nil
}

func (s *mongoProperties) Find(ctx context.Context, q search.Query) ([]models.Property, error) {
	cursor, err := s.coll.Find(ctx, q.Filter(), q.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("finding properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("decoding properties: %w", err)
	}
	return properties, nil
}

func (s *mongoProperties) FindByLandlord(ctx context.Context, landlord primitive.ObjectID) ([]models.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"landlord": landlord}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding landlord properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("decoding properties: %w", err)
	}
	return properties, nil
}

func (s *mongoProperties) Get(ctx context.Context, id primitive.ObjectID) (models.Property, error) {
	var p models.Property
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	return p, translate(err)
}

func (s *mongoProperties) Insert(ctx context.Context, p *models.Property) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, p)
	return translate(err)
}

func (s *mongoProperties) Update(ctx context.Context, id primitive.ObjectID, u models.PropertyUpdate, now time.Time) (models.Property, error) {
	set := bson.M{"updatedAt": now}
	for k, v := range u.Fields() {
		set[k] = v
	}
	return s.findOneAndSet(ctx, id, set)
}

func (s *mongoProperties) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool, now time.Time) (models.Property, error) {
	return s.findOneAndSet(ctx, id, bson.M{"verified": verified, "updatedAt": now})
}

func (s *mongoProperties) findOneAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Property, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Property
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	return p, translate(err)
}

func (s *mongoProperties) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
