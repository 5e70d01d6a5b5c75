package db

import (
	"context"

	"github.com/uptrace/bun"

	"eventdesk/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- ANNOUNCEMENTS ----------------

func (d *DB) CreateAnnouncement(ann models.Announcement) error {
	_, err := d.Bun.NewInsert().Model(&ann).Exec(context.Background())
	return err
}

func (d *DB) GetAnnouncementByID(id string) (*models.Announcement, error) {
	var ann models.Announcement
	err := d.Bun.NewSelect().
		Model(&ann).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &ann, nil
}

func (d *DB) UpdateAnnouncement(ann models.Announcement) error {
	_, err := d.Bun.NewUpdate().
		Model(&ann).
		Column("title", "content", "allow_comments").
		Where("id = ?", ann.ID).
		Exec(context.Background())
	return err
}

// GetAnnouncementsByEvent returns announcements most-recent-first.
func (d *DB) GetAnnouncementsByEvent(eventID string) ([]models.Announcement, error) {
	var anns []models.Announcement
	err := d.Bun.NewSelect().
		Model(&anns).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return anns, nil
}

// DeleteAnnouncementCascade removes an announcement together with its
// comments, their likes, and its interactions in one transaction. The
// store itself defines no cascade, so the cleanup is explicit here.
func (d *DB) DeleteAnnouncementCascade(id string) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.CommentLike)(nil)).
			Where("comment_id IN (SELECT id FROM comments WHERE announcement_id = ?)", id).
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = tx.NewDelete().
			Model((*models.Comment)(nil)).
			Where("announcement_id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = tx.NewDelete().
			Model((*models.Interaction)(nil)).
			Where("announcement_id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = tx.NewDelete().
			Model((*models.Announcement)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}

// ---------------- COMMENTS ----------------

func (d *DB) CreateComment(comment models.Comment) error {
	_, err := d.Bun.NewInsert().Model(&comment).Exec(context.Background())
	return err
}

func (d *DB) GetCommentByID(id string) (*models.Comment, error) {
	var comment models.Comment
	err := d.Bun.NewSelect().
		Model(&comment).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByAnnouncement returns comments in conversation order.
// Blocked comments are included; hiding them is the public renderer's job.
func (d *DB) GetCommentsByAnnouncement(announcementID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := d.Bun.NewSelect().
		Model(&comments).
		Where("announcement_id = ?", announcementID).
		Order("created_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (d *DB) SetCommentBlocked(id string, blocked bool) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Comment)(nil)).
		Set("is_blocked = ?", blocked).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// DeleteComment removes a comment and its likes in one transaction.
func (d *DB) DeleteComment(id string) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.CommentLike)(nil)).
			Where("comment_id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = tx.NewDelete().
			Model((*models.Comment)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}

// ---------------- INTERACTIONS ----------------

func (d *DB) CreateInteraction(interaction models.Interaction) error {
	_, err := d.Bun.NewInsert().Model(&interaction).Exec(context.Background())
	return err
}

func (d *DB) GetInteractionByID(id string) (*models.Interaction, error) {
	var interaction models.Interaction
	err := d.Bun.NewSelect().
		Model(&interaction).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

// GetInteractionsByAnnouncement returns likes most-recent-first. Repeat
// likes by the same author are separate rows and all of them count.
func (d *DB) GetInteractionsByAnnouncement(announcementID string) ([]models.Interaction, error) {
	var interactions []models.Interaction
	err := d.Bun.NewSelect().
		Model(&interactions).
		Where("announcement_id = ?", announcementID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return interactions, nil
}

func (d *DB) DeleteInteraction(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Interaction)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// ---------------- COMMENT LIKES ----------------

func (d *DB) CreateCommentLike(like models.CommentLike) error {
	_, err := d.Bun.NewInsert().Model(&like).Exec(context.Background())
	return err
}

func (d *DB) DeleteCommentLike(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.CommentLike)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// CountCommentLikes re-aggregates from the rows every time it is called.
// The count is never cached or incremented in place.
func (d *DB) CountCommentLikes(commentID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.CommentLike)(nil)).
		Where("comment_id = ?", commentID).
		Count(context.Background())
}

// ---------------- EVENTS ----------------

func (d *DB) GetEventByID(id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &event, nil
}
