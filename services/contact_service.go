package services

import (
	"context"
	"strings"
	"time"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/logger"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContactService struct {
	contacts store.ContactStore
	now      func() time.Time
}

func NewContactService(contacts store.ContactStore) *ContactService {
	return &ContactService{contacts: contacts, now: time.Now}
}

// Send stores a contact-form message. It may reference a property and its
// landlord but does not have to.
func (s *ContactService) Send(ctx context.Context, c models.Contact) (models.Contact, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Message = strings.TrimSpace(c.Message)
	if err := validateStruct(c); err != nil {
		return models.Contact{}, err
	}

	c.ID = primitive.NilObjectID
	c.CreatedAt = s.now()
	if err := s.contacts.Insert(ctx, &c); err != nil {
		return models.Contact{}, apperrors.Store(err, "Error sending message")
	}
	logger.FromContext(ctx).Info("contact message stored", "contact_id", c.ID.Hex())
	return c, nil
}
