package store

import (
	"context"
	"fmt"

	"github.com/dcode-github/cozycorner/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoFavorites struct {
	coll *mongo.Collection
}

func (s *mongoFavorites) Insert(ctx context.Context, f *models.Favorite) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, f)
	return translate(err)
}

func (s *mongoFavorites) Delete(ctx context.Context, user, property primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"user": user, "property": property})
	if err != nil {
		return fmt.Errorf("deleting favorite: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoFavorites) Exists(ctx context.Context, user, property primitive.ObjectID) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"user": user, "property": property})
	if err != nil {
		return false, fmt.Errorf("checking favorite: %w", err)
	}
	return n > 0, nil
}

func (s *mongoFavorites) ListProperties(ctx context.Context, user primitive.ObjectID) ([]models.Property, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": user}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         PropertiesCollection,
			"localField":   "property",
			"foreignField": "_id",
			"as":           "propertyDetails",
		}}},
		{{Key: "$unwind", Value: "$propertyDetails"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$propertyDetails"}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating favorites: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("decoding favorite properties: %w", err)
	}
	return properties, nil
}

type mongoRecommendations struct {
	coll *mongo.Collection
}

func (s *mongoRecommendations) Insert(ctx context.Context, r *models.Recommendation) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, r)
	return translate(err)
}

func (s *mongoRecommendations) ListProperties(ctx context.Context, toUser primitive.ObjectID) ([]models.RecommendedProperty, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"toUser": toUser}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         PropertiesCollection,
			"localField":   "property",
			"foreignField": "_id",
			"as":           "propertyDetails",
		}}},
		{{Key: "$unwind", Value: "$propertyDetails"}},
		{{Key: "$replaceWith", Value: bson.M{
			"$mergeObjects": bson.A{
				"$propertyDetails",
				bson.M{"recommendedBy": "$fromUser"},
			},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating recommendations: %w", err)
	}
	defer cursor.Close(ctx)

	recommended := []models.RecommendedProperty{}
	if err := cursor.All(ctx, &recommended); err != nil {
		return nil, fmt.Errorf("decoding recommendations: %w", err)
	}
	return recommended, nil
}
