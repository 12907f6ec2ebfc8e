package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dcode-github/cozycorner/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAppointments struct {
	coll *mongo.Collection
}

func (s *mongoAppointments) Insert(ctx context.Context, a *models.Appointment) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, a)
	return translate(err)
}

func (s *mongoAppointments) Get(ctx context.Context, id primitive.ObjectID) (models.Appointment, error) {
	var a models.Appointment
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	return a, translate(err)
}

func (s *mongoAppointments) SetStatus(ctx context.Context, id primitive.ObjectID, status models.AppointmentStatus, now time.Time) (models.Appointment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now}}

	var before models.Appointment
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&before)
	return before, translate(err)
}

func (s *mongoAppointments) ListForUser(ctx context.Context, user primitive.ObjectID) ([]models.Appointment, error) {
	filter := bson.M{"$or": bson.A{bson.M{"user": user}, bson.M{"landlord": user}}}
	return s.list(ctx, filter)
}

func (s *mongoAppointments) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return s.list(ctx, bson.M{})
}

func (s *mongoAppointments) list(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("finding appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := []models.Appointment{}
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("decoding appointments: %w", err)
	}
	return appointments, nil
}

type mongoNotifications struct {
	coll *mongo.Collection
}

func (s *mongoNotifications) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, n)
	return translate(err)
}

func (s *mongoNotifications) ListForUser(ctx context.Context, user primitive.ObjectID, limit int64) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).SetLimit(limit)
	cursor, err := s.coll.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("decoding notifications: %w", err)
	}
	return notifications, nil
}
