package services

import (
	"context"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/store"
)

const notificationPageSize = 50

type NotificationService struct {
	notifications store.NotificationStore
}

func NewNotificationService(notifications store.NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns the caller's most recent notifications, newest first.
func (s *NotificationService) List(ctx context.Context, caller models.Session) ([]models.Notification, error) {
	notifications, err := s.notifications.ListForUser(ctx, caller.ID, notificationPageSize)
	if err != nil {
		return nil, apperrors.Store(err, "Error fetching notifications")
	}
	return notifications, nil
}
