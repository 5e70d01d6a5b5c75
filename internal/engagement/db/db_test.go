package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"eventdesk/internal/engagement/db"
	"eventdesk/internal/models"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.Event)(nil),
		(*models.Announcement)(nil),
		(*models.Comment)(nil),
		(*models.Interaction)(nil),
		(*models.CommentLike)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func seedAnnouncement(t *testing.T, engDB *db.DB, eventID string) models.Announcement {
	ann := models.Announcement{
		ID:            uuid.New().String(),
		EventID:       eventID,
		Title:         "Doors open at 6",
		Content:       "See you there",
		AllowComments: true,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, engDB.CreateAnnouncement(ann))
	return ann
}

func TestAnnouncementOrdering(t *testing.T) {
	engDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	eventID := uuid.New().String()
	base := time.Now()
	for i, title := range []string{"first", "second", "third"} {
		err := engDB.CreateAnnouncement(models.Announcement{
			ID:        uuid.New().String(),
			EventID:   eventID,
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	anns, err := engDB.GetAnnouncementsByEvent(eventID)
	assert.NoError(t, err)
	require.Len(t, anns, 3)
	assert.Equal(t, "third", anns[0].Title)
	assert.Equal(t, "first", anns[2].Title)
}

func TestBlockedCommentsStayInList(t *testing.T) {
	engDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	ann := seedAnnouncement(t, engDB, uuid.New().String())

	commentID := uuid.New().String()
	require.NoError(t, engDB.CreateComment(models.Comment{
		ID:             commentID,
		AnnouncementID: ann.ID,
		AuthorName:     "troll",
		Content:        "spam spam spam",
		CreatedAt:      time.Now(),
	}))
	require.NoError(t, engDB.CreateComment(models.Comment{
		ID:             uuid.New().String(),
		AnnouncementID: ann.ID,
		AuthorName:     "ada",
		Content:        "looking forward to it",
		CreatedAt:      time.Now().Add(time.Second),
	}))

	require.NoError(t, engDB.SetCommentBlocked(commentID, true))

	// Blocking flags the row, it does not remove it
	comments, err := engDB.GetCommentsByAnnouncement(ann.ID)
	assert.NoError(t, err)
	require.Len(t, comments, 2)
	assert.True(t, comments[0].IsBlocked)
	assert.False(t, comments[1].IsBlocked)

	require.NoError(t, engDB.SetCommentBlocked(commentID, false))
	comments, err = engDB.GetCommentsByAnnouncement(ann.ID)
	assert.NoError(t, err)
	assert.False(t, comments[0].IsBlocked)
}

func TestRepeatLikesAllCount(t *testing.T) {
	engDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	ann := seedAnnouncement(t, engDB, uuid.New().String())

	// The same author likes twice; both rows stand
	for i := 0; i < 2; i++ {
		err := engDB.CreateInteraction(models.Interaction{
			ID:             uuid.New().String(),
			AnnouncementID: ann.ID,
			AuthorName:     "ada",
			Kind:           models.InteractionLike,
			CreatedAt:      time.Now().Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	likes, err := engDB.GetInteractionsByAnnouncement(ann.ID)
	assert.NoError(t, err)
	assert.Len(t, likes, 2)
}

func TestCountCommentLikesReaggregates(t *testing.T) {
	engDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	ann := seedAnnouncement(t, engDB, uuid.New().String())
	commentID := uuid.New().String()
	require.NoError(t, engDB.CreateComment(models.Comment{
		ID:             commentID,
		AnnouncementID: ann.ID,
		AuthorName:     "ada",
		Content:        "nice",
		CreatedAt:      time.Now(),
	}))

	likeID := uuid.New().String()
	require.NoError(t, engDB.CreateCommentLike(models.CommentLike{ID: likeID, CommentID: commentID, CreatedAt: time.Now()}))
	require.NoError(t, engDB.CreateCommentLike(models.CommentLike{ID: uuid.New().String(), CommentID: commentID, CreatedAt: time.Now()}))

	count, err := engDB.CountCommentLikes(commentID)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	// Removing a like is reflected on the next count, nothing is cached
	require.NoError(t, engDB.DeleteCommentLike(likeID))
	count, err = engDB.CountCommentLikes(commentID)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteAnnouncementCascade(t *testing.T) {
	engDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	eventID := uuid.New().String()
	ann := seedAnnouncement(t, engDB, eventID)
	other := seedAnnouncement(t, engDB, eventID)

	commentID := uuid.New().String()
	require.NoError(t, engDB.CreateComment(models.Comment{ID: commentID, AnnouncementID: ann.ID, AuthorName: "ada", Content: "hi", CreatedAt: time.Now()}))
	require.NoError(t, engDB.CreateCommentLike(models.CommentLike{ID: uuid.New().String(), CommentID: commentID, CreatedAt: time.Now()}))
	require.NoError(t, engDB.CreateInteraction(models.Interaction{ID: uuid.New().String(), AnnouncementID: ann.ID, AuthorName: "ada", Kind: models.InteractionLike, CreatedAt: time.Now()}))

	otherCommentID := uuid.New().String()
	require.NoError(t, engDB.CreateComment(models.Comment{ID: otherCommentID, AnnouncementID: other.ID, AuthorName: "bob", Content: "hello", CreatedAt: time.Now()}))

	require.NoError(t, engDB.DeleteAnnouncementCascade(ann.ID))

	_, err := engDB.GetAnnouncementByID(ann.ID)
	assert.Error(t, err)

	comments, err := engDB.GetCommentsByAnnouncement(ann.ID)
	assert.NoError(t, err)
	assert.Len(t, comments, 0)

	interactions, err := engDB.GetInteractionsByAnnouncement(ann.ID)
	assert.NoError(t, err)
	assert.Len(t, interactions, 0)

	count, err := engDB.CountCommentLikes(commentID)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	// The sibling announcement is untouched
	comments, err = engDB.GetCommentsByAnnouncement(other.ID)
	assert.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestDeleteCommentRemovesItsLikes(t *testing.T) {
	engDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	ann := seedAnnouncement(t, engDB, uuid.New().String())
	commentID := uuid.New().String()
	require.NoError(t, engDB.CreateComment(models.Comment{ID: commentID, AnnouncementID: ann.ID, AuthorName: "ada", Content: "hi", CreatedAt: time.Now()}))
	require.NoError(t, engDB.CreateCommentLike(models.CommentLike{ID: uuid.New().String(), CommentID: commentID, CreatedAt: time.Now()}))

	require.NoError(t, engDB.DeleteComment(commentID))

	_, err := engDB.GetCommentByID(commentID)
	assert.Error(t, err)

	count, err := engDB.CountCommentLikes(commentID)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}
