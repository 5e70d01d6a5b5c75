package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RegistrationStatus is the approval state of a registration.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// IsValid reports whether the status is one of the three known states.
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
		return true
	}
	return false
}

type Registration struct {
	bun.BaseModel `bun:"table:registrations"`

	ID            string             `bun:"id,pk" json:"id"`
	EventID       string             `bun:"event_id" json:"event_id"`
	Name          string             `bun:"name" json:"name"`
	Email         string             `bun:"email" json:"email"`
	Role          string             `bun:"role" json:"role"`
	Status        RegistrationStatus `bun:"status" json:"status"`
	FormResponses FormResponses      `bun:"form_responses,type:jsonb" json:"form_responses"`
	TicketToken   string             `bun:"ticket_token" json:"ticket_token"`
	CreatedAt     time.Time          `bun:"created_at" json:"created_at"`
}

// RegistrationEdit carries the operator-editable fields. A nil field is
// left untouched. Edits bypass form schema validation on purpose.
type RegistrationEdit struct {
	Name   *string             `json:"name,omitempty"`
	Email  *string             `json:"email,omitempty"`
	Role   *string             `json:"role,omitempty"`
	Status *RegistrationStatus `json:"status,omitempty"`
}

// TicketPayload is the scannable proof-of-approval record. It carries no
// signature and no expiry: display/scan data only, authoritative
// verification happens outside this service.
type TicketPayload struct {
	RegistrationID string `json:"registration_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	EventID        string `json:"event_id"`
}

// RegistrationStatusEvent is published to Kafka whenever a registration is
// created or its status changes.
type RegistrationStatusEvent struct {
	RegistrationID string             `json:"registration_id"`
	EventID        string             `json:"event_id"`
	Email          string             `json:"email"`
	Status         RegistrationStatus `json:"status"`
	OccurredAt     time.Time          `json:"occurred_at"`
}
