package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/notify"
	"github.com/dcode-github/cozycorner/store"
)

type RecommendInput struct {
	PropertyID     string `json:"propertyId" validate:"required"`
	RecipientEmail string `json:"recipientEmail" validate:"required,email"`
}

type RecommendationService struct {
	recommendations store.RecommendationStore
	users           store.UserStore
	properties      store.PropertyStore
	hook            notify.Hook
	now             func() time.Time
}

func NewRecommendationService(recommendations store.RecommendationStore, users store.UserStore, properties store.PropertyStore, hook notify.Hook) *RecommendationService {
	return &RecommendationService{
		recommendations: recommendations,
		users:           users,
		properties:      properties,
		hook:            hook,
		now:             time.Now,
	}
}

// Recommend shares a property with another registered user, looked up by
// email. The recipient gets a notification once the recommendation is saved.
func (s *RecommendationService) Recommend(ctx context.Context, caller models.Session, in RecommendInput) (models.Recommendation, error) {
	in.RecipientEmail = strings.ToLower(strings.TrimSpace(in.RecipientEmail))
	if err := validateStruct(in); err != nil {
		return models.Recommendation{}, err
	}
	oid, err := parseID(in.PropertyID, "Property")
	if err != nil {
		return models.Recommendation{}, err
	}

	property, err := s.properties.Get(ctx, oid)
	if err != nil {
		return models.Recommendation{}, storeErr(err, "Property", "Error recommending property")
	}
	recipient, err := s.users.GetByEmail(ctx, in.RecipientEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Recommendation{}, apperrors.NotFound("Recipient")
		}
		return models.Recommendation{}, apperrors.Store(err, "Error recommending property")
	}
	if recipient.ID == caller.ID {
		return models.Recommendation{}, apperrors.Validation("You cannot recommend a property to yourself")
	}

	sender := "Someone"
	if u, err := s.users.Get(ctx, caller.ID); err == nil && u.Name != "" {
		sender = u.Name
	}

	r := models.Recommendation{
		FromUser:  caller.ID,
		ToUser:    recipient.ID,
		Property:  property.ID,
		CreatedAt: s.now(),
	}
	if err := s.recommendations.Insert(ctx, &r); err != nil {
		return models.Recommendation{}, apperrors.Store(err, "Error recommending property")
	}

	s.hook.AfterCommit(ctx, notify.Event{
		Recipient: recipient.ID,
		Type:      models.NotificationRecommendation,
		Message:   fmt.Sprintf("%s recommended %s to you", sender, property.Title),
	})
	return r, nil
}

func (s *RecommendationService) List(ctx context.Context, caller models.Session) ([]models.RecommendedProperty, error) {
	recommended, err := s.recommendations.ListProperties(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.Store(err, "Error fetching recommendations")
	}
	return recommended, nil
}
