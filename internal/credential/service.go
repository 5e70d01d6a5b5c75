package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventdesk/internal/credential/qr"
	"eventdesk/internal/errs"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
)

// ErrNotAvailable is returned when a ticket or badge is requested for a
// registration that does not qualify for it.
var ErrNotAvailable = errors.New("credential not available for this registration")

type CredentialDBLayer interface {
	GetRegistrationByID(id string) (*models.Registration, error)
	GetEventByID(id string) (*models.Event, error)
	AppendBadgeDownloadLog(entry models.BadgeDownloadLog) error
}

// Service derives ticket and badge availability from registration status
// and event flags, and audits badge downloads.
type Service struct {
	DB       CredentialDBLayer
	Resolver IPResolver
	QR       *qr.Generator
	Logger   *logger.Logger
}

func NewService(db CredentialDBLayer, resolver IPResolver, log *logger.Logger) *Service {
	return &Service{DB: db, Resolver: resolver, QR: qr.NewGenerator(), Logger: log}
}

// Ticket returns the entry ticket for a registration: the plain payload
// plus its QR rendering. Available if and only if the registration is
// approved.
func (s *Service) Ticket(registrationID string) (*models.TicketPayload, []byte, error) {
	reg, err := s.DB.GetRegistrationByID(registrationID)
	if err != nil {
		return nil, nil, fmt.Errorf("registration %s not found: %w", registrationID, err)
	}

	if reg.Status != models.RegistrationApproved {
		return nil, nil, ErrNotAvailable
	}

	payload := models.TicketPayload{
		RegistrationID: reg.ID,
		Name:           reg.Name,
		Email:          reg.Email,
		EventID:        reg.EventID,
	}

	png, err := s.QR.GenerateTicketQR(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render ticket QR: %w", err)
	}

	return &payload, png, nil
}

// BadgeAvailable reports whether the registration qualifies for the
// completion badge: approved, and the event has badges enabled.
func (s *Service) BadgeAvailable(registrationID string) (bool, *models.Event, error) {
	reg, err := s.DB.GetRegistrationByID(registrationID)
	if err != nil {
		return false, nil, fmt.Errorf("registration %s not found: %w", registrationID, err)
	}

	event, err := s.DB.GetEventByID(reg.EventID)
	if err != nil {
		return false, nil, fmt.Errorf("event %s not found: %w", reg.EventID, err)
	}

	return reg.Status == models.RegistrationApproved && event.BadgeEnabled, event, nil
}

// AuthorizeBadgeDownload gates a badge download and writes the audit row.
// It returns the event carrying the badge asset URL.
//
// Auditing fails open: when the IP lookup (or the append itself) fails,
// the row is skipped and the download still proceeds. The skip is
// reported as a non-fatal *errs.AuditWriteSkipped so the caller can log
// it; it must not block the download.
func (s *Service) AuthorizeBadgeDownload(ctx context.Context, registrationID, userID, userAgent string) (*models.Event, *errs.AuditWriteSkipped, error) {
	available, event, err := s.BadgeAvailable(registrationID)
	if err != nil {
		return nil, nil, err
	}
	if !available {
		return nil, nil, ErrNotAvailable
	}

	ip, err := s.Resolver.ResolvePublicIP(ctx)
	if err != nil {
		s.logBadge("AUDIT_SKIPPED", event.ID, fmt.Sprintf("ip lookup failed, download proceeds unaudited: %v", err))
		return event, &errs.AuditWriteSkipped{Err: err}, nil
	}

	entry := models.BadgeDownloadLog{
		UserID:    userID,
		EventID:   event.ID,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	}
	if err := s.DB.AppendBadgeDownloadLog(entry); err != nil {
		s.logBadge("AUDIT_SKIPPED", event.ID, fmt.Sprintf("audit append failed, download proceeds unaudited: %v", err))
		return event, &errs.AuditWriteSkipped{Err: err}, nil
	}

	s.logBadge("DOWNLOAD", event.ID, fmt.Sprintf("badge download audited for user %s from %s", userID, ip))
	return event, nil, nil
}

func (s *Service) logBadge(action, eventID, message string) {
	if s.Logger != nil {
		s.Logger.LogBadge(action, eventID, message)
	}
}
