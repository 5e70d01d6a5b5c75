package moderation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"eventdesk/internal/errs"
	"eventdesk/internal/models"
	"eventdesk/internal/moderation"
)

// MockDBLayer is a mock implementation of ModerationDBLayer
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateAnnouncement(ann models.Announcement) error {
	args := m.Called(ann)
	return args.Error(0)
}

func (m *MockDBLayer) GetAnnouncementByID(id string) (*models.Announcement, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Announcement), args.Error(1)
}

func (m *MockDBLayer) UpdateAnnouncement(ann models.Announcement) error {
	args := m.Called(ann)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteAnnouncementCascade(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDBLayer) GetCommentByID(id string) (*models.Comment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockDBLayer) SetCommentBlocked(id string, blocked bool) error {
	args := m.Called(id, blocked)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteComment(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDBLayer) GetInteractionByID(id string) (*models.Interaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interaction), args.Error(1)
}

func (m *MockDBLayer) DeleteInteraction(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockChangePublisher is a mock implementation of ChangePublisher
type MockChangePublisher struct {
	mock.Mock
}

func (m *MockChangePublisher) PublishChange(evt models.ChangeEvent) error {
	args := m.Called(evt)
	return args.Error(0)
}

func TestCreateAnnouncement(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockPub := new(MockChangePublisher)
	service := moderation.NewService(mockDB, mockPub, nil)

	mockDB.On("CreateAnnouncement", mock.AnythingOfType("models.Announcement")).Return(nil)
	mockPub.On("PublishChange", mock.MatchedBy(func(evt models.ChangeEvent) bool {
		return evt.Table == models.TableAnnouncements &&
			evt.Op == models.ChangeInsert &&
			evt.ParentID == "event-1"
	})).Return(nil)

	ann, err := service.CreateAnnouncement("event-1", "Doors open at 6", "See you there", true)

	assert.NoError(t, err)
	assert.NotEmpty(t, ann.ID)
	assert.True(t, ann.AllowComments)
	mockDB.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestCreateAnnouncementRequiresTitle(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := moderation.NewService(mockDB, nil, nil)

	_, err := service.CreateAnnouncement("event-1", "", "content", true)

	var vErr *errs.ValidationError
	assert.ErrorAs(t, err, &vErr)
	mockDB.AssertNotCalled(t, "CreateAnnouncement", mock.Anything)
}

func TestToggleAnnouncementCommentsDoubleToggleRestores(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockPub := new(MockChangePublisher)
	service := moderation.NewService(mockDB, mockPub, nil)

	stored := models.Announcement{ID: "ann-1", EventID: "event-1", Title: "Doors", AllowComments: true}
	mockDB.On("GetAnnouncementByID", "ann-1").Return(&stored, nil).Once()
	mockDB.On("UpdateAnnouncement", mock.MatchedBy(func(ann models.Announcement) bool {
		return !ann.AllowComments
	})).Return(nil).Once()
	mockPub.On("PublishChange", mock.Anything).Return(nil)

	ann, err := service.ToggleAnnouncementComments("ann-1")
	assert.NoError(t, err)
	assert.False(t, ann.AllowComments)

	// Second toggle restores the original value
	mockDB.On("GetAnnouncementByID", "ann-1").Return(ann, nil).Once()
	mockDB.On("UpdateAnnouncement", mock.MatchedBy(func(a models.Announcement) bool {
		return a.AllowComments
	})).Return(nil).Once()

	ann, err = service.ToggleAnnouncementComments("ann-1")
	assert.NoError(t, err)
	assert.True(t, ann.AllowComments)
	mockDB.AssertExpectations(t)
}

func TestBlockAndUnblockComment(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockPub := new(MockChangePublisher)
	service := moderation.NewService(mockDB, mockPub, nil)

	comment := models.Comment{ID: "comment-1", AnnouncementID: "ann-1", AuthorName: "troll"}
	mockDB.On("GetCommentByID", "comment-1").Return(&comment, nil)
	mockDB.On("SetCommentBlocked", "comment-1", true).Return(nil).Once()
	mockDB.On("SetCommentBlocked", "comment-1", false).Return(nil).Once()
	mockPub.On("PublishChange", mock.MatchedBy(func(evt models.ChangeEvent) bool {
		return evt.Table == models.TableComments &&
			evt.Op == models.ChangeUpdate &&
			evt.ParentID == "ann-1"
	})).Return(nil).Twice()

	assert.NoError(t, service.BlockComment("comment-1"))
	assert.NoError(t, service.UnblockComment("comment-1"))
	mockDB.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestDeleteAnnouncementCascades(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockPub := new(MockChangePublisher)
	service := moderation.NewService(mockDB, mockPub, nil)

	stored := models.Announcement{ID: "ann-1", EventID: "event-1", Title: "Doors"}
	mockDB.On("GetAnnouncementByID", "ann-1").Return(&stored, nil)
	mockDB.On("DeleteAnnouncementCascade", "ann-1").Return(nil)
	mockPub.On("PublishChange", mock.MatchedBy(func(evt models.ChangeEvent) bool {
		return evt.Table == models.TableAnnouncements && evt.Op == models.ChangeDelete
	})).Return(nil)

	assert.NoError(t, service.DeleteAnnouncement("ann-1"))
	mockDB.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestWriteSurvivesNotificationFailure(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockPub := new(MockChangePublisher)
	service := moderation.NewService(mockDB, mockPub, nil)

	comment := models.Comment{ID: "comment-1", AnnouncementID: "ann-1"}
	mockDB.On("GetCommentByID", "comment-1").Return(&comment, nil)
	mockDB.On("DeleteComment", "comment-1").Return(nil)
	mockPub.On("PublishChange", mock.Anything).Return(errors.New("redis down"))

	// The notification is best effort; the committed delete stands
	assert.NoError(t, service.DeleteComment("comment-1"))
}

func TestDeleteInteraction(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockPub := new(MockChangePublisher)
	service := moderation.NewService(mockDB, mockPub, nil)

	interaction := models.Interaction{ID: "like-1", AnnouncementID: "ann-1", Kind: models.InteractionLike}
	mockDB.On("GetInteractionByID", "like-1").Return(&interaction, nil)
	mockDB.On("DeleteInteraction", "like-1").Return(nil)
	mockPub.On("PublishChange", mock.MatchedBy(func(evt models.ChangeEvent) bool {
		return evt.Table == models.TableInteractions && evt.Op == models.ChangeDelete && evt.ParentID == "ann-1"
	})).Return(nil)

	assert.NoError(t, service.DeleteInteraction("like-1"))
	mockPub.AssertExpectations(t)
}
