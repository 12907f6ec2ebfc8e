package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/logger"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/search"
	"github.com/dcode-github/cozycorner/store"
)

// SearchCache caches result pages keyed by generation and normalised
// filters. Invalidate must move to a new generation before it returns.
type SearchCache interface {
	Generation(ctx context.Context) (int64, bool)
	Get(ctx context.Context, gen int64, f search.Filters) (models.ResultPage, bool)
	Set(ctx context.Context, gen int64, f search.Filters, page models.ResultPage)
	Invalidate(ctx context.Context)
}

type CreatePropertyInput struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description"`
	Price        int64    `json:"price" validate:"required,gt=0"`
	Location     string   `json:"location" validate:"required"`
	PropertyType string   `json:"propertyType" validate:"required,propertytype"`
	Size         *float64 `json:"size" validate:"omitempty,gt=0"`
	Bedrooms     *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms    *int     `json:"bathrooms" validate:"omitempty,gte=0"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
	Document     string   `json:"document"`
}

type PropertyService struct {
	properties store.PropertyStore
	users      store.UserStore
	cache      SearchCache
	now        func() time.Time
}

// NewPropertyService wires the listing service. cache may be nil.
func NewPropertyService(properties store.PropertyStore, users store.UserStore, cache SearchCache) *PropertyService {
	return &PropertyService{properties: properties, users: users, cache: cache, now: time.Now}
}

// Search returns one page of listings matching f. Filters are validated
// before the store is touched.
func (s *PropertyService) Search(ctx context.Context, f search.Filters) (models.ResultPage, error) {
	q, err := search.Build(f)
	if err != nil {
		return models.ResultPage{}, err
	}

	// The generation is read before the store so a page computed from
	// data older than a concurrent write is stored under a retired key.
	var gen int64
	cacheable := false
	if s.cache != nil {
		gen, cacheable = s.cache.Generation(ctx)
	}
	if cacheable {
		if page, ok := s.cache.Get(ctx, gen, q.Filters()); ok {
			return page, nil
		}
	}

	total, err := s.properties.Count(ctx, q)
	if err != nil {
		return models.ResultPage{}, apperrors.Store(err, "Error searching properties")
	}

	var properties []models.Property
	if !q.Beyond(total) {
		properties, err = s.properties.Find(ctx, q)
		if err != nil {
			return models.ResultPage{}, apperrors.Store(err, "Error searching properties")
		}
	}

	page := q.Page(properties, total)
	if cacheable {
		s.cache.Set(ctx, gen, q.Filters(), page)
	}
	return page, nil
}

func (s *PropertyService) Create(ctx context.Context, caller models.Session, in CreatePropertyInput) (models.Property, error) {
	if caller.Role != models.RoleLandlord {
		return models.Property{}, apperrors.Authorization("Only landlords can create listings")
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	if err := validateStruct(in); err != nil {
		return models.Property{}, err
	}
	propertyType, _ := models.ParsePropertyType(in.PropertyType)

	landlord, err := s.users.Get(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Property{}, apperrors.Authorization("Landlord account not found")
		}
		return models.Property{}, apperrors.Store(err, "Error creating property")
	}
	if landlord.Role != models.RoleLandlord {
		return models.Property{}, apperrors.Authorization("Only landlords can create listings")
	}

	now := s.now()
	p := models.Property{
		Title:        in.Title,
		Description:  in.Description,
		Price:        in.Price,
		Location:     in.Location,
		PropertyType: propertyType,
		Size:         in.Size,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		Amenities:    normalizeStrings(in.Amenities),
		Images:       normalizeStrings(in.Images),
		Document:     strings.TrimSpace(in.Document),
		Landlord:     landlord.ID,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.properties.Insert(ctx, &p); err != nil {
		return models.Property{}, apperrors.Store(err, "Error creating property")
	}

	logger.FromContext(ctx).Info("property created", "property_id", p.ID.Hex())
	s.invalidate(ctx)
	return p, nil
}

func (s *PropertyService) Get(ctx context.Context, id string) (models.Property, error) {
	oid, err := parseID(id, "Property")
	if err != nil {
		return models.Property{}, err
	}
	p, err := s.properties.Get(ctx, oid)
	if err != nil {
		return models.Property{}, storeErr(err, "Property", "Error fetching property")
	}
	return p, nil
}

func (s *PropertyService) ListByLandlord(ctx context.Context, caller models.Session) ([]models.Property, error) {
	properties, err := s.properties.FindByLandlord(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.Store(err, "Error fetching properties")
	}
	return properties, nil
}

func (s *PropertyService) Update(ctx context.Context, caller models.Session, id string, u models.PropertyUpdate) (models.Property, error) {
	p, err := s.owned(ctx, caller, id, "update")
	if err != nil {
		return models.Property{}, err
	}

	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		u.Title = &title
	}
	if u.Location != nil {
		location := strings.TrimSpace(*u.Location)
		u.Location = &location
	}
	if err := validateStruct(u); err != nil {
		return models.Property{}, err
	}
	if u.PropertyType != nil {
		t, ok := models.ParsePropertyType(string(*u.PropertyType))
		if !ok {
			return models.Property{}, apperrors.Validation("Invalid value for: propertyType")
		}
		u.PropertyType = &t
	}
	if u.Amenities != nil {
		u.Amenities = normalizeStrings(u.Amenities)
	}
	if u.Images != nil {
		u.Images = normalizeStrings(u.Images)
	}

	updated, err := s.properties.Update(ctx, p.ID, u, s.now())
	if err != nil {
		return models.Property{}, storeErr(err, "Property", "Error updating property")
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *PropertyService) Delete(ctx context.Context, caller models.Session, id string) error {
	p, err := s.owned(ctx, caller, id, "delete")
	if err != nil {
		return err
	}
	if err := s.properties.Delete(ctx, p.ID); err != nil {
		return storeErr(err, "Property", "Error deleting property")
	}
	logger.FromContext(ctx).Info("property deleted", "property_id", p.ID.Hex())
	s.invalidate(ctx)
	return nil
}

// Approve sets the admin verification flag.
func (s *PropertyService) Approve(ctx context.Context, caller models.Session, id string, verified bool) (models.Property, error) {
	if !caller.IsAdmin() {
		return models.Property{}, apperrors.Authorization("Only admins can verify listings")
	}
	oid, err := parseID(id, "Property")
	if err != nil {
		return models.Property{}, err
	}
	p, err := s.properties.SetVerified(ctx, oid, verified, s.now())
	if err != nil {
		return models.Property{}, storeErr(err, "Property", "Error verifying property")
	}
	s.invalidate(ctx)
	return p, nil
}

// owned loads the property and checks that caller is its landlord or an
// admin.
func (s *PropertyService) owned(ctx context.Context, caller models.Session, id, action string) (models.Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return models.Property{}, err
	}
	if !caller.IsAdmin() && caller.ID != p.Landlord {
		return models.Property{}, apperrors.Authorization("Not authorized to " + action + " this property")
	}
	return p, nil
}

func (s *PropertyService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
