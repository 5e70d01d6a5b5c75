package moderation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/errs"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
)

type ModerationDBLayer interface {
	CreateAnnouncement(ann models.Announcement) error
	GetAnnouncementByID(id string) (*models.Announcement, error)
	UpdateAnnouncement(ann models.Announcement) error
	DeleteAnnouncementCascade(id string) error
	GetCommentByID(id string) (*models.Comment, error)
	SetCommentBlocked(id string, blocked bool) error
	DeleteComment(id string) error
	GetInteractionByID(id string) (*models.Interaction, error)
	DeleteInteraction(id string) error
}

type ChangePublisher interface {
	PublishChange(evt models.ChangeEvent) error
}

// Service is the operator-facing mutation layer over the engagement
// store. Every successful write announces itself on the table's change
// channel so connected hubs re-read the affected aggregate.
type Service struct {
	DB     ModerationDBLayer
	Notify ChangePublisher
	Logger *logger.Logger
}

func NewService(db ModerationDBLayer, notify ChangePublisher, log *logger.Logger) *Service {
	return &Service{DB: db, Notify: notify, Logger: log}
}

// CreateAnnouncement publishes an operator-authored broadcast for an event.
func (s *Service) CreateAnnouncement(eventID, title, content string, allowComments bool) (*models.Announcement, error) {
	if title == "" {
		return nil, errs.Validation("announcement title is required")
	}

	ann := models.Announcement{
		ID:            uuid.NewString(),
		EventID:       eventID,
		Title:         title,
		Content:       content,
		AllowComments: allowComments,
		CreatedAt:     time.Now(),
	}

	if err := s.DB.CreateAnnouncement(ann); err != nil {
		return nil, errs.Store("create announcement", err)
	}

	s.logf("CREATE_ANNOUNCEMENT", ann.ID, "announcement created")
	s.publish(models.TableAnnouncements, models.ChangeInsert, ann.ID, eventID)
	return &ann, nil
}

// ToggleAnnouncementComments flips allowComments. Turning it off only
// blocks new submissions on the public intake path; existing comments
// stay stored, visible to moderators, and manageable. A double toggle
// restores the original value.
func (s *Service) ToggleAnnouncementComments(id string) (*models.Announcement, error) {
	ann, err := s.DB.GetAnnouncementByID(id)
	if err != nil {
		return nil, errs.Store("load announcement", err)
	}

	ann.AllowComments = !ann.AllowComments
	if err := s.DB.UpdateAnnouncement(*ann); err != nil {
		return nil, errs.Store("toggle announcement comments", err)
	}

	s.logf("TOGGLE_COMMENTS", id, fmt.Sprintf("allow_comments set to %t", ann.AllowComments))
	s.publish(models.TableAnnouncements, models.ChangeUpdate, id, ann.EventID)
	return ann, nil
}

// BlockComment hides a comment from public display. The row is never
// physically removed; moderators keep seeing it, de-emphasized.
func (s *Service) BlockComment(id string) error {
	return s.setCommentBlocked(id, true)
}

// UnblockComment restores a comment to public display.
func (s *Service) UnblockComment(id string) error {
	return s.setCommentBlocked(id, false)
}

func (s *Service) setCommentBlocked(id string, blocked bool) error {
	comment, err := s.DB.GetCommentByID(id)
	if err != nil {
		return errs.Store("load comment", err)
	}

	if err := s.DB.SetCommentBlocked(id, blocked); err != nil {
		return errs.Store("set comment blocked", err)
	}

	s.logf("BLOCK_COMMENT", id, fmt.Sprintf("is_blocked set to %t", blocked))
	s.publish(models.TableComments, models.ChangeUpdate, id, comment.AnnouncementID)
	return nil
}

// DeleteComment hard-deletes a comment and its likes.
func (s *Service) DeleteComment(id string) error {
	comment, err := s.DB.GetCommentByID(id)
	if err != nil {
		return errs.Store("load comment", err)
	}

	if err := s.DB.DeleteComment(id); err != nil {
		return errs.Store("delete comment", err)
	}

	s.logf("DELETE_COMMENT", id, "comment deleted")
	s.publish(models.TableComments, models.ChangeDelete, id, comment.AnnouncementID)
	return nil
}

// DeleteAnnouncement hard-deletes an announcement and cascades to its
// comments, their likes, and its interactions.
func (s *Service) DeleteAnnouncement(id string) error {
	ann, err := s.DB.GetAnnouncementByID(id)
	if err != nil {
		return errs.Store("load announcement", err)
	}

	if err := s.DB.DeleteAnnouncementCascade(id); err != nil {
		return errs.Store("delete announcement", err)
	}

	s.logf("DELETE_ANNOUNCEMENT", id, "announcement and children deleted")
	s.publish(models.TableAnnouncements, models.ChangeDelete, id, ann.EventID)
	return nil
}

// DeleteInteraction hard-deletes a single like.
func (s *Service) DeleteInteraction(id string) error {
	interaction, err := s.DB.GetInteractionByID(id)
	if err != nil {
		return errs.Store("load interaction", err)
	}

	if err := s.DB.DeleteInteraction(id); err != nil {
		return errs.Store("delete interaction", err)
	}

	s.logf("DELETE_INTERACTION", id, "interaction deleted")
	s.publish(models.TableInteractions, models.ChangeDelete, id, interaction.AnnouncementID)
	return nil
}

func (s *Service) publish(table, op, id, parentID string) {
	if s.Notify == nil {
		return
	}
	evt := models.ChangeEvent{Table: table, Op: op, ID: id, ParentID: parentID}
	if err := s.Notify.PublishChange(evt); err != nil && s.Logger != nil {
		// The write is already committed; the hub will catch up on its
		// next full re-read of the aggregate.
		s.Logger.Warn("MODERATION", fmt.Sprintf("change notification for %s %s failed: %v", table, id, err))
	}
}

func (s *Service) logf(action, id, message string) {
	if s.Logger != nil {
		s.Logger.LogModeration(action, id, message)
	}
}
