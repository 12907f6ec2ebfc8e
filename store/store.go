// Package store persists the marketplace documents. Every collection has a
// MongoDB implementation and an in-memory one with identical semantics.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/search"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
)

type PropertyStore interface {
	Count(ctx context.Context, q search.Query) (int64, error)
	Find(ctx context.Context, q search.Query) ([]models.Property, error)
	FindByLandlord(ctx context.Context, landlord primitive.ObjectID) ([]models.Property, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Property, error)
	Insert(ctx context.Context, p *models.Property) error
	Update(ctx context.Context, id primitive.ObjectID, u models.PropertyUpdate, now time.Time) (models.Property, error)
	SetVerified(ctx context.Context, id primitive.ObjectID, verified bool, now time.Time) (models.Property, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type AppointmentStore interface {
	Insert(ctx context.Context, a *models.Appointment) error
	Get(ctx context.Context, id primitive.ObjectID) (models.Appointment, error)
	// SetStatus updates the status and returns the document as it was
	// before the write, so callers can tell whether a transition happened.
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.AppointmentStatus, now time.Time) (before models.Appointment, err error)
	ListForUser(ctx context.Context, user primitive.ObjectID) ([]models.Appointment, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, user primitive.ObjectID, limit int64) ([]models.Notification, error)
}

type FavoriteStore interface {
	Insert(ctx context.Context, f *models.Favorite) error
	Delete(ctx context.Context, user, property primitive.ObjectID) error
	Exists(ctx context.Context, user, property primitive.ObjectID) (bool, error)
	ListProperties(ctx context.Context, user primitive.ObjectID) ([]models.Property, error)
}

type RecommendationStore interface {
	Insert(ctx context.Context, r *models.Recommendation) error
	ListProperties(ctx context.Context, toUser primitive.ObjectID) ([]models.RecommendedProperty, error)
}

type ContactStore interface {
	Insert(ctx context.Context, c *models.Contact) error
}

// Store bundles one implementation of every collection.
type Store struct {
	Properties      PropertyStore
	Users           UserStore
	Appointments    AppointmentStore
	Notifications   NotificationStore
	Favorites       FavoriteStore
	Recommendations RecommendationStore
	Contacts        ContactStore
}
