package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/search"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memDB holds every collection behind one lock. Slices keep insertion
// order, which stands in for Mongo's natural order.
type memDB struct {
	mu              sync.RWMutex
	users           []models.User
	properties      []models.Property
	appointments    []models.Appointment
	notifications   []models.Notification
	favorites       []models.Favorite
	recommendations []models.Recommendation
	contacts        []models.Contact
}

// NewMemory returns a Store kept entirely in process memory.
func NewMemory() *Store {
	db := &memDB{}
	return &Store{
		Properties:      &memProperties{db},
		Users:           &memUsers{db},
		Appointments:    &memAppointments{db},
		Notifications:   &memNotifications{db},
		Favorites:       &memFavorites{db},
		Recommendations: &memRecommendations{db},
		Contacts:        &memContacts{db},
	}
}

func (db *memDB) propertyIndex(id primitive.ObjectID) int {
	for i := range db.properties {
		if db.properties[i].ID == id {
			return i
		}
	}
	return -1
}

// clone copies the slice fields so callers never alias stored documents.
func clone(p models.Property) models.Property {
	if p.Amenities != nil {
		p.Amenities = append([]string{}, p.Amenities...)
	}
	if p.Images != nil {
		p.Images = append([]string{}, p.Images...)
	}
	return p
}

type memProperties struct{ db *memDB }

func (s *memProperties) matching(q search.Query) []models.Property {
	var out []models.Property
	for _, p := range s.db.properties {
		if q.Matches(p) {
			out = append(out, clone(p))
		}
	}
	return out
}

func (s *memProperties) Count(_ context.Context, q search.Query) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return int64(len(s.matching(q))), nil
}

func (s *memProperties) Find(_ context.Context, q search.Query) ([]models.Property, error) {
	s.db.mu.RLock()
	matched := s.matching(q)
	s.db.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return q.Less(matched[i], matched[j]) })
	if q.Beyond(int64(len(matched))) {
		return []models.Property{}, nil
	}
	end := q.Skip + q.Limit
	if end > int64(len(matched)) {
		end = int64(len(matched))
	}
	return matched[q.Skip:end], nil
}

func (s *memProperties) FindByLandlord(_ context.Context, landlord primitive.ObjectID) ([]models.Property, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := []models.Property{}
	for _, p := range s.db.properties {
		if p.Landlord == landlord {
			out = append(out, clone(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memProperties) Get(_ context.Context, id primitive.ObjectID) (models.Property, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if i := s.db.propertyIndex(id); i >= 0 {
		return clone(s.db.properties[i]), nil
	}
	return models.Property{}, ErrNotFound
}

func (s *memProperties) Insert(_ context.Context, p *models.Property) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if s.db.propertyIndex(p.ID) >= 0 {
		return ErrDuplicate
	}
	s.db.properties = append(s.db.properties, clone(*p))
	return nil
}

func (s *memProperties) Update(_ context.Context, id primitive.ObjectID, u models.PropertyUpdate, now time.Time) (models.Property, error) {
	return s.mutate(id, func(p *models.Property) {
		u.Apply(p)
		p.UpdatedAt = now
	})
}

func (s *memProperties) SetVerified(_ context.Context, id primitive.ObjectID, verified bool, now time.Time) (models.Property, error) {
	return s.mutate(id, func(p *models.Property) {
		p.Verified = verified
		p.UpdatedAt = now
	})
}

func (s *memProperties) mutate(id primitive.ObjectID, fn func(*models.Property)) (models.Property, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i := s.db.propertyIndex(id)
	if i < 0 {
		return models.Property{}, ErrNotFound
	}
	fn(&s.db.properties[i])
	s.db.properties[i] = clone(s.db.properties[i])
	return clone(s.db.properties[i]), nil
}

func (s *memProperties) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i := s.db.propertyIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.db.properties = append(s.db.properties[:i], s.db.properties[i+1:]...)
	return nil
}

type memUsers struct{ db *memDB }

func (s *memUsers) Insert(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.db.users = append(s.db.users, *u)
	return nil
}

func (s *memUsers) Get(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, u := range s.db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range s.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

type memAppointments struct{ db *memDB }

func (s *memAppointments) Insert(_ context.Context, a *models.Appointment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.db.appointments = append(s.db.appointments, *a)
	return nil
}

func (s *memAppointments) Get(_ context.Context, id primitive.ObjectID) (models.Appointment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, a := range s.db.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Appointment{}, ErrNotFound
}

func (s *memAppointments) SetStatus(_ context.Context, id primitive.ObjectID, status models.AppointmentStatus, now time.Time) (models.Appointment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.appointments {
		if s.db.appointments[i].ID == id {
			before := s.db.appointments[i]
			s.db.appointments[i].Status = status
			s.db.appointments[i].UpdatedAt = now
			return before, nil
		}
	}
	return models.Appointment{}, ErrNotFound
}

func (s *memAppointments) ListForUser(_ context.Context, user primitive.ObjectID) ([]models.Appointment, error) {
	return s.list(func(a models.Appointment) bool { return a.User == user || a.Landlord == user }), nil
}

func (s *memAppointments) ListAll(_ context.Context) ([]models.Appointment, error) {
	return s.list(func(models.Appointment) bool { return true }), nil
}

func (s *memAppointments) list(keep func(models.Appointment) bool) []models.Appointment {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := []models.Appointment{}
	for _, a := range s.db.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

type memNotifications struct{ db *memDB }

func (s *memNotifications) Insert(_ context.Context, n *models.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	s.db.notifications = append(s.db.notifications, *n)
	return nil
}

func (s *memNotifications) ListForUser(_ context.Context, user primitive.ObjectID, limit int64) ([]models.Notification, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := []models.Notification{}
	for i := len(s.db.notifications) - 1; i >= 0; i-- {
		if s.db.notifications[i].User == user {
			out = append(out, s.db.notifications[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memFavorites struct{ db *memDB }

func (s *memFavorites) Insert(_ context.Context, f *models.Favorite) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.favorites {
		if existing.User == f.User && existing.Property == f.Property {
			return ErrDuplicate
		}
	}
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	s.db.favorites = append(s.db.favorites, *f)
	return nil
}

func (s *memFavorites) Delete(_ context.Context, user, property primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, f := range s.db.favorites {
		if f.User == user && f.Property == property {
			s.db.favorites = append(s.db.favorites[:i], s.db.favorites[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *memFavorites) Exists(_ context.Context, user, property primitive.ObjectID) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, f := range s.db.favorites {
		if f.User == user && f.Property == property {
			return true, nil
		}
	}
	return false, nil
}

// ListProperties mirrors the $lookup + $unwind join: favorites whose
// property no longer exists are dropped.
func (s *memFavorites) ListProperties(_ context.Context, user primitive.ObjectID) ([]models.Property, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := []models.Property{}
	for i := len(s.db.favorites) - 1; i >= 0; i-- {
		f := s.db.favorites[i]
		if f.User != user {
			continue
		}
		if j := s.db.propertyIndex(f.Property); j >= 0 {
			out = append(out, clone(s.db.properties[j]))
		}
	}
	return out, nil
}

type memRecommendations struct{ db *memDB }

func (s *memRecommendations) Insert(_ context.Context, r *models.Recommendation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.db.recommendations = append(s.db.recommendations, *r)
	return nil
}

func (s *memRecommendations) ListProperties(_ context.Context, toUser primitive.ObjectID) ([]models.RecommendedProperty, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := []models.RecommendedProperty{}
	for i := len(s.db.recommendations) - 1; i >= 0; i-- {
		r := s.db.recommendations[i]
		if r.ToUser != toUser {
			continue
		}
		if j := s.db.propertyIndex(r.Property); j >= 0 {
			out = append(out, models.RecommendedProperty{Property: clone(s.db.properties[j]), RecommendedBy: r.FromUser})
		}
	}
	return out, nil
}

type memContacts struct{ db *memDB }

func (s *memContacts) Insert(_ context.Context, c *models.Contact) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.db.contacts = append(s.db.contacts, *c)
	return nil
}
