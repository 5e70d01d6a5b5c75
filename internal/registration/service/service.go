package registration

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/errs"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
	"eventdesk/internal/utils"
)

type RegistrationDBLayer interface {
	CreateRegistration(reg models.Registration) error
	GetRegistrationByID(id string) (*models.Registration, error)
	UpdateRegistration(reg models.Registration) error
	UpdateRegistrationStatus(id string, status models.RegistrationStatus) error
	DeleteRegistration(id string) error
	GetRegistrationsByEvent(eventID string) ([]models.Registration, error)
	GetEventByID(id string) (*models.Event, error)
	ListEvents() ([]models.Event, error)
	GetExpiredEvents(now time.Time) ([]models.Event, error)
	MarkEventEnded(id string) error
}

type StatusPublisher interface {
	PublishRegistrationStatus(evt models.RegistrationStatusEvent) error
}

// Service owns registration records and their status transitions.
// All three states are reachable from each other: rejected registrations
// can be approved later and vice versa (admin override).
type Service struct {
	DB     RegistrationDBLayer
	Kafka  StatusPublisher
	Logger *logger.Logger
}

func NewService(db RegistrationDBLayer, kafka StatusPublisher, log *logger.Logger) *Service {
	return &Service{DB: db, Kafka: kafka, Logger: log}
}

// SubmitRequest is a participant's application to an event.
type SubmitRequest struct {
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Role      string               `json:"role"`
	Responses models.FormResponses `json:"responses"`
}

// Submit validates the submission against the event's form schema and
// creates the registration. The initial status is approved when the event
// auto-approves, pending otherwise.
func (s *Service) Submit(eventID string, req SubmitRequest) (*models.Registration, error) {
	event, err := s.DB.GetEventByID(eventID)
	if err != nil {
		return nil, errs.Validation("event %s not found", eventID)
	}

	if req.Name == "" || req.Email == "" {
		return nil, errs.Validation("name and email are required")
	}

	if ok, reason := models.ValidateResponses(event.FormSchema, req.Responses); !ok {
		return nil, &errs.ValidationError{Reason: reason}
	}

	status := models.RegistrationPending
	if event.AutoApprove {
		status = models.RegistrationApproved
	}

	reg := models.Registration{
		ID:            uuid.NewString(),
		EventID:       eventID,
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		Status:        status,
		FormResponses: req.Responses,
		TicketToken:   utils.GenerateTicketToken(),
		CreatedAt:     time.Now(),
	}

	if err := s.DB.CreateRegistration(reg); err != nil {
		return nil, errs.Store("create registration", err)
	}

	s.logf("SUBMIT", reg.ID, fmt.Sprintf("registration created with status %s", reg.Status))
	s.publishStatus(reg)

	return &reg, nil
}

// SetStatus is an unconditional, idempotent overwrite of the approval
// status. Concurrent operators race; last write wins.
func (s *Service) SetStatus(id string, status models.RegistrationStatus) error {
	if !status.IsValid() {
		return errs.Validation("unknown status %q", status)
	}

	if err := s.DB.UpdateRegistrationStatus(id, status); err != nil {
		return errs.Store("update registration status", err)
	}

	s.logf("SET_STATUS", id, fmt.Sprintf("status set to %s", status))

	// Best-effort publish; the status write already succeeded.
	if reg, err := s.DB.GetRegistrationByID(id); err == nil {
		s.publishStatus(*reg)
	}

	return nil
}

// Edit overwrites operator-editable fields directly. It deliberately does
// not re-validate against the event's form schema.
func (s *Service) Edit(id string, edit models.RegistrationEdit) (*models.Registration, error) {
	reg, err := s.DB.GetRegistrationByID(id)
	if err != nil {
		return nil, errs.Store("load registration", err)
	}

	if edit.Name != nil {
		reg.Name = *edit.Name
	}
	if edit.Email != nil {
		reg.Email = *edit.Email
	}
	if edit.Role != nil {
		reg.Role = *edit.Role
	}
	if edit.Status != nil {
		if !edit.Status.IsValid() {
			return nil, errs.Validation("unknown status %q", *edit.Status)
		}
		reg.Status = *edit.Status
	}

	if err := s.DB.UpdateRegistration(*reg); err != nil {
		return nil, errs.Store("update registration", err)
	}

	s.logf("EDIT", id, "registration fields overwritten")
	return reg, nil
}

// Delete hard-deletes a registration. Badge download audit rows written
// for it are never retracted.
func (s *Service) Delete(id string) error {
	if err := s.DB.DeleteRegistration(id); err != nil {
		return errs.Store("delete registration", err)
	}
	s.logf("DELETE", id, "registration deleted")
	return nil
}

func (s *Service) Get(id string) (*models.Registration, error) {
	return s.DB.GetRegistrationByID(id)
}

func (s *Service) ListByEvent(eventID string) ([]models.Registration, error) {
	return s.DB.GetRegistrationsByEvent(eventID)
}

func (s *Service) ListEvents() ([]models.Event, error) {
	return s.DB.ListEvents()
}

func (s *Service) publishStatus(reg models.Registration) {
	if s.Kafka == nil {
		return
	}
	evt := models.RegistrationStatusEvent{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		Email:          reg.Email,
		Status:         reg.Status,
		OccurredAt:     time.Now(),
	}
	if err := s.Kafka.PublishRegistrationStatus(evt); err != nil {
		if s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish status event for %s: %v", reg.ID, err))
		}
	}
}

func (s *Service) logf(action, id, message string) {
	if s.Logger != nil {
		s.Logger.LogRegistration(action, id, message)
	}
}
