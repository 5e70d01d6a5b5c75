package engagement

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"eventdesk/internal/engagement/stream"
	"eventdesk/internal/logger"
	"eventdesk/internal/models"
)

type HubDBLayer interface {
	GetAnnouncementsByEvent(eventID string) ([]models.Announcement, error)
	GetCommentsByAnnouncement(announcementID string) ([]models.Comment, error)
	GetInteractionsByAnnouncement(announcementID string) ([]models.Interaction, error)
	CountCommentLikes(commentID string) (int, error)
	GetEventByID(id string) (*models.Event, error)
}

type ChangeSubscriber interface {
	Subscribe(table, filter string, onChange func(models.ChangeEvent)) (func(), error)
}

// CommentView is a comment with its like count re-aggregated from the
// comment_likes rows at refresh time.
type CommentView struct {
	models.Comment
	LikeCount int `json:"like_count"`
}

// AnnouncementView is an announcement with counts derived from the child
// collections held by the hub, never from stored counters.
type AnnouncementView struct {
	models.Announcement
	EventName    string `json:"event_name"`
	CommentCount int    `json:"comment_count"`
	LikeCount    int    `json:"like_count"`
}

// Hub keeps in-memory views of announcements, comments and likes in sync
// with the backing store. Every change notification triggers a full
// re-read of the affected parent aggregate; nothing is patched
// incrementally. Refreshes triggered by overlapping notifications are
// serialized behind a mutex and a per-aggregate sequence number so a slow,
// stale re-fetch can never overwrite a fresher one.
type Hub struct {
	DB      HubDBLayer
	Notify  ChangeSubscriber
	Emitter *stream.Emitter
	Logger  *logger.Logger

	mu     sync.RWMutex
	closed bool
	// seq is the last issued fetch sequence per aggregate, applied the
	// last one whose result was accepted.
	seq     map[string]uint64
	applied map[string]uint64

	eventNames    map[string]string                  // eventID -> name, for search
	announcements map[string][]models.Announcement   // eventID -> list (desc)
	comments      map[string][]CommentView           // announcementID -> list (asc)
	interactions  map[string][]models.Interaction    // announcementID -> list (desc)
	annOwner      map[string]string                  // announcementID -> eventID
	commentOwner  map[string]string                  // commentID -> announcementID

	unsubs []func()
}

func NewHub(db HubDBLayer, notify ChangeSubscriber, emitter *stream.Emitter, log *logger.Logger) *Hub {
	return &Hub{
		DB:            db,
		Notify:        notify,
		Emitter:       emitter,
		Logger:        log,
		seq:           make(map[string]uint64),
		applied:       make(map[string]uint64),
		eventNames:    make(map[string]string),
		announcements: make(map[string][]models.Announcement),
		comments:      make(map[string][]CommentView),
		interactions:  make(map[string][]models.Interaction),
		annOwner:      make(map[string]string),
		commentOwner:  make(map[string]string),
	}
}

// Start wires the subscriptions that are not scoped to a single parent.
// Comment like events carry the comment id as parent, so the subscription
// is unfiltered and the owning announcement is resolved here.
func (h *Hub) Start() error {
	unsub, err := h.Notify.Subscribe(models.TableCommentLikes, "", func(evt models.ChangeEvent) {
		h.mu.RLock()
		announcementID, watched := h.commentOwner[evt.ParentID]
		h.mu.RUnlock()
		if !watched {
			return
		}
		h.refreshComments(announcementID)
	})
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.unsubs = append(h.unsubs, unsub)
	h.mu.Unlock()
	return nil
}

// WatchEvent loads an event's announcement list and keeps it synchronized.
// Each announcement the event carries (now or later) is watched too, so
// counts are always derivable from held child collections. Watching an
// already-watched event is a no-op: the standing subscription keeps the
// view current, so repeated list requests must not stack up more.
func (h *Hub) WatchEvent(eventID string) error {
	h.mu.RLock()
	_, watched := h.eventNames[eventID]
	h.mu.RUnlock()
	if watched {
		return nil
	}

	event, err := h.DB.GetEventByID(eventID)
	if err != nil {
		return fmt.Errorf("event %s not found: %w", eventID, err)
	}

	h.mu.Lock()
	if _, watched := h.eventNames[eventID]; watched {
		// Another request won the race to watch this event.
		h.mu.Unlock()
		return nil
	}
	h.eventNames[eventID] = event.Name
	h.mu.Unlock()

	unsub, err := h.Notify.Subscribe(models.TableAnnouncements, eventID, func(evt models.ChangeEvent) {
		h.refreshAnnouncements(eventID)
	})
	if err != nil {
		h.mu.Lock()
		delete(h.eventNames, eventID)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		unsub()
		return nil
	}
	h.unsubs = append(h.unsubs, unsub)
	h.mu.Unlock()

	h.refreshAnnouncements(eventID)
	return nil
}

// Announcements returns the held view for an event, most-recent-first,
// with counts computed from the child collections.
func (h *Hub) Announcements(eventID string) []AnnouncementView {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.announcementViewsLocked(eventID)
}

// Comments returns the held conversation for an announcement, oldest
// first. Blocked comments are included with IsBlocked set; the moderator
// UI de-emphasizes them rather than hiding them.
func (h *Hub) Comments(announcementID string) []CommentView {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]CommentView, len(h.comments[announcementID]))
	copy(out, h.comments[announcementID])
	return out
}

// Interactions returns the held likes for an announcement, newest first.
func (h *Hub) Interactions(announcementID string) []models.Interaction {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.Interaction, len(h.interactions[announcementID]))
	copy(out, h.interactions[announcementID])
	return out
}

// Search is a pure in-memory substring match over title, content and
// event name of already-fetched announcements. No server-side indexing.
func (h *Hub) Search(query string) []AnnouncementView {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	var results []AnnouncementView
	for eventID := range h.announcements {
		eventName := h.eventNames[eventID]
		eventMatches := strings.Contains(strings.ToLower(eventName), q)
		for _, view := range h.announcementViewsLocked(eventID) {
			if eventMatches ||
				strings.Contains(strings.ToLower(view.Title), q) ||
				strings.Contains(strings.ToLower(view.Content), q) {
				results = append(results, view)
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results
}

// Close detaches the hub: subscriptions are torn down and any still
// in-flight refresh is discarded when it completes. This is the only
// cancellation primitive; the fetches themselves are not interrupted.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	unsubs := h.unsubs
	h.unsubs = nil
	h.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// ---------------- refresh machinery ----------------

func aggregateKey(table, parentID string) string {
	return table + "/" + parentID
}

// beginFetch issues a new sequence number for an aggregate refresh.
// ok is false when the hub is already closed.
func (h *Hub) beginFetch(key string) (seq uint64, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, false
	}
	h.seq[key]++
	return h.seq[key], true
}

// commit reports whether a fetch tagged seq may be applied. A fetch loses
// when the hub closed while it was in flight or when a younger fetch for
// the same aggregate already landed. Callers must hold mu.
func (h *Hub) commitLocked(key string, seq uint64) bool {
	if h.closed {
		return false
	}
	if seq < h.applied[key] {
		return false
	}
	h.applied[key] = seq
	return true
}

func (h *Hub) refreshAnnouncements(eventID string) {
	key := aggregateKey(models.TableAnnouncements, eventID)
	seq, ok := h.beginFetch(key)
	if !ok {
		return
	}

	anns, err := h.DB.GetAnnouncementsByEvent(eventID)
	if err != nil {
		h.logError(fmt.Sprintf("announcement refresh for event %s failed: %v", eventID, err))
		return
	}

	h.mu.Lock()
	if !h.commitLocked(key, seq) {
		h.mu.Unlock()
		return
	}

	h.announcements[eventID] = anns

	// Watch announcements seen for the first time, drop state for ones
	// that no longer exist.
	current := make(map[string]bool, len(anns))
	var newcomers []string
	for _, ann := range anns {
		current[ann.ID] = true
		if _, known := h.annOwner[ann.ID]; !known {
			h.annOwner[ann.ID] = eventID
			newcomers = append(newcomers, ann.ID)
		}
	}
	for annID, owner := range h.annOwner {
		if owner == eventID && !current[annID] {
			delete(h.annOwner, annID)
			delete(h.comments, annID)
			delete(h.interactions, annID)
			for commentID, commentOwner := range h.commentOwner {
				if commentOwner == annID {
					delete(h.commentOwner, commentID)
				}
			}
		}
	}
	views := h.announcementViewsLocked(eventID)
	h.mu.Unlock()

	for _, annID := range newcomers {
		if err := h.watchAnnouncement(eventID, annID); err != nil {
			h.logError(fmt.Sprintf("failed to watch announcement %s: %v", annID, err))
		}
	}

	h.emit(stream.Update{EventID: eventID, Table: models.TableAnnouncements, Payload: views})
}

func (h *Hub) watchAnnouncement(eventID, announcementID string) error {
	commentsUnsub, err := h.Notify.Subscribe(models.TableComments, announcementID, func(evt models.ChangeEvent) {
		h.refreshComments(announcementID)
	})
	if err != nil {
		return err
	}

	interactionsUnsub, err := h.Notify.Subscribe(models.TableInteractions, announcementID, func(evt models.ChangeEvent) {
		h.refreshInteractions(announcementID)
	})
	if err != nil {
		commentsUnsub()
		return err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		commentsUnsub()
		interactionsUnsub()
		return nil
	}
	h.unsubs = append(h.unsubs, commentsUnsub, interactionsUnsub)
	h.mu.Unlock()

	h.refreshComments(announcementID)
	h.refreshInteractions(announcementID)
	return nil
}

func (h *Hub) refreshComments(announcementID string) {
	key := aggregateKey(models.TableComments, announcementID)
	seq, ok := h.beginFetch(key)
	if !ok {
		return
	}

	comments, err := h.DB.GetCommentsByAnnouncement(announcementID)
	if err != nil {
		h.logError(fmt.Sprintf("comment refresh for announcement %s failed: %v", announcementID, err))
		return
	}

	// Like counts are re-aggregated from the rows on every refresh.
	views := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		likeCount, err := h.DB.CountCommentLikes(comment.ID)
		if err != nil {
			h.logError(fmt.Sprintf("like count for comment %s failed: %v", comment.ID, err))
			likeCount = 0
		}
		views = append(views, CommentView{Comment: comment, LikeCount: likeCount})
	}

	h.mu.Lock()
	if !h.commitLocked(key, seq) {
		h.mu.Unlock()
		return
	}
	h.comments[announcementID] = views
	for commentID, owner := range h.commentOwner {
		if owner == announcementID {
			delete(h.commentOwner, commentID)
		}
	}
	for _, comment := range comments {
		h.commentOwner[comment.ID] = announcementID
	}
	eventID := h.annOwner[announcementID]
	h.mu.Unlock()

	h.emit(stream.Update{
		EventID:        eventID,
		AnnouncementID: announcementID,
		Table:          models.TableComments,
		Payload:        views,
	})
}

func (h *Hub) refreshInteractions(announcementID string) {
	key := aggregateKey(models.TableInteractions, announcementID)
	seq, ok := h.beginFetch(key)
	if !ok {
		return
	}

	interactions, err := h.DB.GetInteractionsByAnnouncement(announcementID)
	if err != nil {
		h.logError(fmt.Sprintf("interaction refresh for announcement %s failed: %v", announcementID, err))
		return
	}

	h.mu.Lock()
	if !h.commitLocked(key, seq) {
		h.mu.Unlock()
		return
	}
	h.interactions[announcementID] = interactions
	eventID := h.annOwner[announcementID]
	h.mu.Unlock()

	h.emit(stream.Update{
		EventID:        eventID,
		AnnouncementID: announcementID,
		Table:          models.TableInteractions,
		Payload:        interactions,
	})
}

func (h *Hub) announcementViewsLocked(eventID string) []AnnouncementView {
	anns := h.announcements[eventID]
	views := make([]AnnouncementView, 0, len(anns))
	for _, ann := range anns {
		views = append(views, AnnouncementView{
			Announcement: ann,
			EventName:    h.eventNames[eventID],
			CommentCount: len(h.comments[ann.ID]),
			LikeCount:    len(h.interactions[ann.ID]),
		})
	}
	return views
}

func (h *Hub) emit(update stream.Update) {
	if h.Emitter != nil {
		h.Emitter.Emit(update)
	}
}

func (h *Hub) logError(message string) {
	if h.Logger != nil {
		h.Logger.Error("HUB", message)
	}
}
