package engagement_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventdesk/internal/engagement"
	"eventdesk/internal/engagement/stream"
	"eventdesk/internal/errs"
	"eventdesk/internal/logger"
	"eventdesk/internal/moderation"
	"eventdesk/internal/utils"
)

type Handler struct {
	Hub        *engagement.Hub
	Moderation *moderation.Service
	Emitter    *stream.Emitter
	Logger     *logger.Logger
}

func NewHandler(hub *engagement.Hub, mod *moderation.Service, emitter *stream.Emitter, log *logger.Logger) *Handler {
	return &Handler{Hub: hub, Moderation: mod, Emitter: emitter, Logger: log}
}

// ---------------- hub views ----------------

func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	if err := h.Hub.WatchEvent(eventID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAnnouncements: %v", err))
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("could not load announcements", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("announcements loaded", h.Hub.Announcements(eventID)))
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	announcementID := chi.URLParam(r, "announcementID")
	writeJSON(w, http.StatusOK, utils.SuccessResponse("comments loaded", h.Hub.Comments(announcementID)))
}

func (h *Handler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	announcementID := chi.URLParam(r, "announcementID")
	writeJSON(w, http.StatusOK, utils.SuccessResponse("interactions loaded", h.Hub.Interactions(announcementID)))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, utils.SuccessResponse("search complete", h.Hub.Search(query)))
}

// ---------------- moderation ----------------

func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req struct {
		Title         string `json:"title"`
		Content       string `json:"content"`
		AllowComments *bool  `json:"allow_comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	// Comments default to allowed.
	allowComments := true
	if req.AllowComments != nil {
		allowComments = *req.AllowComments
	}

	ann, err := h.Moderation.CreateAnnouncement(eventID, req.Title, req.Content, allowComments)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateAnnouncement: %v", err))
		writeJSON(w, statusFor(err), utils.ErrorResponse("could not create announcement", err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("announcement created", ann))
}

func (h *Handler) ToggleAnnouncementComments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "announcementID")

	ann, err := h.Moderation.ToggleAnnouncementComments(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ToggleAnnouncementComments: %v", err))
		writeJSON(w, statusFor(err), utils.ErrorResponse("toggle failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("comments toggled", ann))
}

func (h *Handler) BlockComment(w http.ResponseWriter, r *http.Request) {
	h.setCommentBlocked(w, r, true)
}

func (h *Handler) UnblockComment(w http.ResponseWriter, r *http.Request) {
	h.setCommentBlocked(w, r, false)
}

func (h *Handler) setCommentBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	id := chi.URLParam(r, "commentID")

	var err error
	if blocked {
		err = h.Moderation.BlockComment(id)
	} else {
		err = h.Moderation.UnblockComment(id)
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("setCommentBlocked: %v", err))
		writeJSON(w, statusFor(err), utils.ErrorResponse("moderation failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("comment updated", nil))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "commentID")

	if err := h.Moderation.DeleteComment(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteComment: %v", err))
		writeJSON(w, statusFor(err), utils.ErrorResponse("delete failed", err.Error()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "announcementID")

	if err := h.Moderation.DeleteAnnouncement(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteAnnouncement: %v", err))
		writeJSON(w, statusFor(err), utils.ErrorResponse("delete failed", err.Error()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteInteraction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "interactionID")

	if err := h.Moderation.DeleteInteraction(id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteInteraction: %v", err))
		writeJSON(w, statusFor(err), utils.ErrorResponse("delete failed", err.Error()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------------- live streams ----------------

// StreamEvent pushes engagement updates for one event to a connected
// session over SSE until the client disconnects.
func (h *Handler) StreamEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		http.Error(w, "Event ID is required", http.StatusBadRequest)
		return
	}

	h.setupSSEHeaders(w)

	// Context cancels when the client disconnects; that is what removes
	// the subscriber from the emitter.
	ctx := r.Context()
	updates := h.Emitter.SubscribeToEvent(ctx, eventID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"eventID\":\"%s\"}\n\n", eventID)
	w.(http.Flusher).Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to engagement updates for event: %s", eventID))
	h.streamUpdates(ctx, w, updates, eventID)
}

// StreamAnnouncement pushes updates scoped to one announcement.
func (h *Handler) StreamAnnouncement(w http.ResponseWriter, r *http.Request) {
	announcementID := chi.URLParam(r, "announcementID")
	if announcementID == "" {
		http.Error(w, "Announcement ID is required", http.StatusBadRequest)
		return
	}

	h.setupSSEHeaders(w)

	ctx := r.Context()
	updates := h.Emitter.SubscribeToAnnouncement(ctx, announcementID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"announcementID\":\"%s\"}\n\n", announcementID)
	w.(http.Flusher).Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to engagement updates for announcement: %s", announcementID))
	h.streamUpdates(ctx, w, updates, announcementID)
}

func (h *Handler) streamUpdates(ctx context.Context, w http.ResponseWriter, updates chan stream.Update, scope string) {
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for: %s", scope))
				return
			}

			jsonData, err := json.Marshal(update)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize update: %v", err))
				continue
			}

			fmt.Fprintf(w, "event: engagement\ndata: %s\n\n", jsonData)
			w.(http.Flusher).Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from: %s", scope))
			return
		}
	}
}

func (h *Handler) setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func statusFor(err error) int {
	var validation *errs.ValidationError
	var conflict *errs.ConflictError
	var transient *errs.TransientIOError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &transient):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
