package services

import (
	"context"
	"time"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/store"
)

type FavoriteService struct {
	favorites  store.FavoriteStore
	properties store.PropertyStore
	now        func() time.Time
}

func NewFavoriteService(favorites store.FavoriteStore, properties store.PropertyStore) *FavoriteService {
	return &FavoriteService{favorites: favorites, properties: properties, now: time.Now}
}

func (s *FavoriteService) Add(ctx context.Context, caller models.Session, propertyID string) (models.Favorite, error) {
	oid, err := parseID(propertyID, "Property")
	if err != nil {
		return models.Favorite{}, err
	}
	if _, err := s.properties.Get(ctx, oid); err != nil {
		return models.Favorite{}, storeErr(err, "Property", "Error adding favorite")
	}

	f := models.Favorite{User: caller.ID, Property: oid, CreatedAt: s.now()}
	if err := s.favorites.Insert(ctx, &f); err != nil {
		return models.Favorite{}, storeErr(err, "Favorite", "Error adding favorite")
	}
	return f, nil
}

func (s *FavoriteService) Remove(ctx context.Context, caller models.Session, propertyID string) error {
	oid, err := parseID(propertyID, "Property")
	if err != nil {
		return err
	}
	if err := s.favorites.Delete(ctx, caller.ID, oid); err != nil {
		return storeErr(err, "Favorite", "Error removing favorite")
	}
	return nil
}

func (s *FavoriteService) IsFavorited(ctx context.Context, caller models.Session, propertyID string) (bool, error) {
	oid, err := parseID(propertyID, "Property")
	if err != nil {
		return false, err
	}
	ok, err := s.favorites.Exists(ctx, caller.ID, oid)
	if err != nil {
		return false, apperrors.Store(err, "Error checking favorite")
	}
	return ok, nil
}

// List returns the caller's favorited properties, most recently added
// first. Favorites of deleted properties are skipped.
func (s *FavoriteService) List(ctx context.Context, caller models.Session) ([]models.Property, error) {
	properties, err := s.favorites.ListProperties(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.Store(err, "Error fetching favorites")
	}
	return properties, nil
}
