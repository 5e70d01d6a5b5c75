package credential_api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventdesk/internal/auth"
	"eventdesk/internal/credential"
	"eventdesk/internal/logger"
	"eventdesk/internal/utils"
)

type Handler struct {
	Service    *credential.Service
	HTTPClient *http.Client
	Logger     *logger.Logger
}

func NewHandler(service *credential.Service, httpClient *http.Client, log *logger.Logger) *Handler {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Handler{Service: service, HTTPClient: httpClient, Logger: log}
}

// GetTicket returns the scannable entry ticket for an approved
// registration: the plain payload plus a base64 PNG QR rendering.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	registrationID := chi.URLParam(r, "registrationID")
	h.Logger.Info("API", fmt.Sprintf("GetTicket: registrationID=%s", registrationID))

	payload, png, err := h.Service.Ticket(registrationID)
	if err != nil {
		if errors.Is(err, credential.ErrNotAvailable) {
			writeJSON(w, http.StatusForbidden, utils.ErrorResponse("ticket not available", err.Error()))
			return
		}
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("ticket lookup failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("ticket ready", map[string]interface{}{
		"payload": payload,
		"qr_png":  base64.StdEncoding.EncodeToString(png),
	}))
}

// DownloadBadge gates the badge behind approval + the event flag, audits
// the download, then streams the asset. A failed IP lookup skips the
// audit row but never blocks the download.
func (h *Handler) DownloadBadge(w http.ResponseWriter, r *http.Request) {
	registrationID := chi.URLParam(r, "registrationID")
	h.Logger.Info("API", fmt.Sprintf("DownloadBadge: registrationID=%s", registrationID))

	// Operator identity for the audit row comes from the bearer token.
	userID := "anonymous"
	if tokenString, err := auth.ExtractTokenFromRequest(r); err == nil {
		if sub, err := auth.ExtractUserIDFromJWT(tokenString); err == nil {
			userID = sub
		}
	}

	event, skipped, err := h.Service.AuthorizeBadgeDownload(r.Context(), registrationID, userID, r.UserAgent())
	if err != nil {
		if errors.Is(err, credential.ErrNotAvailable) {
			writeJSON(w, http.StatusForbidden, utils.ErrorResponse("badge not available", err.Error()))
			return
		}
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("badge lookup failed", err.Error()))
		return
	}
	if skipped != nil {
		h.Logger.Warn("BADGE", fmt.Sprintf("DownloadBadge: %v", skipped))
	}

	if event.BadgeImageURL == "" {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("badge not available", "event has no badge image"))
		return
	}

	h.streamAsset(w, event.BadgeImageURL)
}

// streamAsset proxies the badge image to the client.
func (h *Handler) streamAsset(w http.ResponseWriter, assetURL string) {
	resp, err := h.HTTPClient.Get(assetURL)
	if err != nil {
		h.Logger.Error("BADGE", fmt.Sprintf("failed to fetch badge asset: %v", err))
		writeJSON(w, http.StatusBadGateway, utils.ErrorResponse("badge asset unavailable", err.Error()))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.Logger.Error("BADGE", fmt.Sprintf("badge asset returned status %d", resp.StatusCode))
		writeJSON(w, http.StatusBadGateway, utils.ErrorResponse("badge asset unavailable", fmt.Sprintf("upstream status %d", resp.StatusCode)))
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "image/png")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.Logger.Error("BADGE", fmt.Sprintf("failed to stream badge asset: %v", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
