package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EventStatus tracks the lifecycle of an event. The reconciliation sweep
// only cares about the transition into "ended".
type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventEnded    EventStatus = "ended"
)

// RegistrationType distinguishes events whose registration is handled on an
// external platform from events managed through this dashboard.
type RegistrationType string

const (
	RegistrationExternal RegistrationType = "external"
	RegistrationManaged  RegistrationType = "managed"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID               string           `bun:"id,pk" json:"id"`
	Name             string           `bun:"name,notnull" json:"name"`
	RegistrationType RegistrationType `bun:"registration_type" json:"registration_type"`
	AutoApprove      bool             `bun:"auto_approve" json:"auto_approve"`
	BadgeEnabled     bool             `bun:"badge_enabled" json:"badge_enabled"`
	BadgeImageURL    string           `bun:"badge_image_url" json:"badge_image_url,omitempty"`
	AllowComments    bool             `bun:"allow_comments" json:"allow_comments"`
	Status           EventStatus      `bun:"status" json:"status"`
	FormSchema       []FormField      `bun:"form_schema,type:jsonb" json:"form_schema,omitempty"`
	StartDate        time.Time        `bun:"start_date" json:"start_date"`
	EndDate          *time.Time       `bun:"end_date,nullzero" json:"end_date,omitempty"`
	CreatedAt        time.Time        `bun:"created_at,notnull" json:"created_at"`
}
