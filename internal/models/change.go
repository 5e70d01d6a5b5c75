package models

// Tables with a change-notification channel.
const (
	TableAnnouncements = "announcements"
	TableComments      = "comments"
	TableInteractions  = "interactions"
	TableCommentLikes  = "comment_likes"
)

// Change operations carried on the notification channels.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// ChangeEvent is the compact message published on a table's notification
// channel after every mutation. Subscribers do not patch from it; they
// re-read the affected parent aggregate in full.
type ChangeEvent struct {
	Table    string `json:"table"`
	Op       string `json:"op"`
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
}
