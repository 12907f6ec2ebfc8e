package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection           = "users"
	PropertiesCollection      = "properties"
	AppointmentsCollection    = "appointments"
	NotificationsCollection   = "notifications"
	FavoritesCollection       = "favorites"
	RecommendationsCollection = "recommendations"
	ContactsCollection        = "contacts"
)

func NewMongo(db *mongo.Database) *Store {
	return &Store{
		Properties:      &mongoProperties{coll: db.Collection(PropertiesCollection)},
		Users:           &mongoUsers{coll: db.Collection(UsersCollection)},
		Appointments:    &mongoAppointments{coll: db.Collection(AppointmentsCollection)},
		Notifications:   &mongoNotifications{coll: db.Collection(NotificationsCollection)},
		Favorites:       &mongoFavorites{coll: db.Collection(FavoritesCollection)},
		Recommendations: &mongoRecommendations{coll: db.Collection(RecommendationsCollection)},
		Contacts:        &mongoContacts{coll: db.Collection(ContactsCollection)},
	}
}

// EnsureIndexes creates the indexes the search sort keys and the
// per-user lookups rely on. Creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		PropertiesCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "propertyType", Value: 1}}},
			{Keys: bson.D{{Key: "landlord", Value: 1}}},
		},
		AppointmentsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}},
			{Keys: bson.D{{Key: "landlord", Value: 1}}},
		},
		NotificationsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		FavoritesCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "property", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		RecommendationsCollection: {
			{Keys: bson.D{{Key: "toUser", Value: 1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", name, err)
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
