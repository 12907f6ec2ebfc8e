package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/notify"
	"github.com/dcode-github/cozycorner/store"
)

const appointmentDateLayout = "Jan 2, 2006 3:04 PM"

type CreateAppointmentInput struct {
	PropertyID string    `json:"propertyId" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
}

// AppointmentService books viewings. Every committed state change fires the
// notification hook exactly once; the hook is not part of the write and its
// failure never fails the request.
type AppointmentService struct {
	appointments store.AppointmentStore
	properties   store.PropertyStore
	hook         notify.Hook
	now          func() time.Time
}

func NewAppointmentService(appointments store.AppointmentStore, properties store.PropertyStore, hook notify.Hook) *AppointmentService {
	return &AppointmentService{appointments: appointments, properties: properties, hook: hook, now: time.Now}
}

func (s *AppointmentService) Create(ctx context.Context, caller models.Session, in CreateAppointmentInput) (models.Appointment, error) {
	if err := validateStruct(in); err != nil {
		return models.Appointment{}, err
	}
	now := s.now()
	if !in.Date.After(now) {
		return models.Appointment{}, apperrors.Validation("Appointment date must be in the future")
	}

	propertyID, err := parseID(in.PropertyID, "Property")
	if err != nil {
		return models.Appointment{}, err
	}
	property, err := s.properties.Get(ctx, propertyID)
	if err != nil {
		return models.Appointment{}, storeErr(err, "Property", "Error creating appointment")
	}
	if property.Landlord == caller.ID {
		return models.Appointment{}, apperrors.Validation("You cannot book a viewing of your own property")
	}

	a := models.Appointment{
		User:      caller.ID,
		Property:  property.ID,
		Landlord:  property.Landlord,
		Date:      in.Date,
		Status:    models.AppointmentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.appointments.Insert(ctx, &a); err != nil {
		return models.Appointment{}, apperrors.Store(err, "Error creating appointment")
	}

	s.hook.AfterCommit(ctx, notify.Event{
		Recipient: property.Landlord,
		Type:      models.NotificationAppointment,
		Message:   fmt.Sprintf("New appointment requested for %s on %s", property.Title, in.Date.Format(appointmentDateLayout)),
	})
	return a, nil
}

// UpdateStatus lets the appointment's landlord (or an admin) move it to a
// new status. Setting the current status again is not a transition and
// sends nothing.
func (s *AppointmentService) UpdateStatus(ctx context.Context, caller models.Session, id string, status models.AppointmentStatus) (models.Appointment, error) {
	if !status.Valid() {
		return models.Appointment{}, apperrors.Validation("Invalid appointment status %q", status)
	}
	oid, err := parseID(id, "Appointment")
	if err != nil {
		return models.Appointment{}, err
	}
	a, err := s.appointments.Get(ctx, oid)
	if err != nil {
		return models.Appointment{}, storeErr(err, "Appointment", "Error updating appointment")
	}
	if a.Landlord != caller.ID && !caller.IsAdmin() {
		return models.Appointment{}, apperrors.Authorization("Access denied")
	}

	now := s.now()
	before, err := s.appointments.SetStatus(ctx, oid, status, now)
	if err != nil {
		return models.Appointment{}, storeErr(err, "Appointment", "Error updating appointment")
	}
	after := before
	after.Status = status
	after.UpdatedAt = now

	if before.Status != status {
		title := "your property viewing"
		if p, err := s.properties.Get(ctx, a.Property); err == nil {
			title = p.Title
		}
		s.hook.AfterCommit(ctx, notify.Event{
			Recipient: a.User,
			Type:      models.NotificationAppointment,
			Message:   fmt.Sprintf("Your appointment for %s has been %s", title, status),
		})
	}
	return after, nil
}

func (s *AppointmentService) ListMine(ctx context.Context, caller models.Session) ([]models.Appointment, error) {
	appointments, err := s.appointments.ListForUser(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.Store(err, "Error fetching appointments")
	}
	return appointments, nil
}

func (s *AppointmentService) ListAll(ctx context.Context, caller models.Session) ([]models.Appointment, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Authorization("Access denied")
	}
	appointments, err := s.appointments.ListAll(ctx)
	if err != nil {
		return nil, apperrors.Store(err, "Error fetching appointments")
	}
	return appointments, nil
}
