package httpapi

import (
	"net/http"
	"strings"

	"github.com/e-motion/backend/internal/audit"
	"github.com/e-motion/backend/internal/auth"
	"github.com/e-motion/backend/internal/emotions"
)

type emotionLogRequest struct {
	DetectedEmotion string   `json:"detectedEmotion"`
	Confidence      *float64 `json:"confidence"`
	AudioFileURI    string   `json:"audioFileUri"`
	Feedback        string   `json:"feedback"`
	Notes           string   `json:"notes"`
	ModelVersion    string   `json:"modelVersion"`
	DeviceInfo      string   `json:"deviceInfo"`
	InputLanguage   string   `json:"inputLanguage"`
}

type feedbackUpdateRequest struct {
	Feedback *string `json:"feedback"`
	Notes    *string `json:"notes"`
}

func (a *API) handleEmotionLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.methodNotAllowed(w, r, http.MethodPost)
		return
	}

	// Either a bearer identity or the device API key got the request
	// this far; without an identity the log is owned by the anonymous
	// sentinel.
	var identity *auth.Identity
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		identity = &id
	} else if !auth.IsAPICaller(r.Context()) {
		a.handleDomainError(w, r, auth.ErrUnauthenticated)
		return
	}

	var req emotionLogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	log, err := a.emotions.Log(r.Context(), identity, emotions.LogInput{
		DetectedEmotion: req.DetectedEmotion,
		Confidence:      req.Confidence,
		AudioFileURI:    req.AudioFileURI,
		Feedback:        emotions.Feedback(req.Feedback),
		Notes:           req.Notes,
		ModelVersion:    req.ModelVersion,
		DeviceInfo:      req.DeviceInfo,
		InputLanguage:   req.InputLanguage,
	})
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "emotion.log.create", map[string]any{
		"log_id":   log.ID,
		"owner_id": log.UserID,
	})

	respond(w, http.StatusCreated, "Emotion detection logged successfully.", log, nil)
}

func (a *API) handleEmotionLogsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.methodNotAllowed(w, r, http.MethodGet)
		return
	}

	var identity *auth.Identity
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		identity = &id
	}

	page, err := parsePositiveInt(r.URL.Query().Get("page"), 1, 1, 1<<30)
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, "page "+err.Error())
		return
	}
	limit, err := parsePositiveInt(r.URL.Query().Get("limit"), 10, 1, 100)
	if err != nil {
		a.writeError(w, r, http.StatusBadRequest, "limit "+err.Error())
		return
	}

	logs, total, err := a.emotions.List(r.Context(), identity, r.URL.Query().Get("userId"), page, limit)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	p := paginate(page, limit, total)
	respond(w, http.StatusOK, "Emotion logs retrieved successfully.", logs, map[string]any{
		"pagination": map[string]any{
			"currentPage": p.CurrentPage,
			"totalPages":  p.TotalPages,
			"totalLogs":   total,
			"hasNextPage": p.HasNextPage,
			"hasPrevPage": p.HasPrevPage,
		},
	})
}

func (a *API) handleEmotionLogResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/emotions/logs/")
	if path == "" {
		a.writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	var identity *auth.Identity
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		identity = &id
	}

	if strings.HasSuffix(path, "/feedback") {
		id := strings.TrimSuffix(strings.TrimSuffix(path, "/feedback"), "/")
		if id == "" || strings.Contains(id, "/") {
			a.writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodPatch {
			a.methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.updateFeedback(w, r, identity, id)
		return
	}

	if strings.Contains(path, "/") {
		a.writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if r.Method != http.MethodGet {
		a.methodNotAllowed(w, r, http.MethodGet)
		return
	}

	log, err := a.emotions.Get(r.Context(), identity, path)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Emotion log retrieved successfully.", log, nil)
}

func (a *API) updateFeedback(w http.ResponseWriter, r *http.Request, identity *auth.Identity, id string) {
	var req feedbackUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	upd := emotions.FeedbackUpdate{Notes: req.Notes}
	if req.Feedback != nil {
		fb := emotions.Feedback(*req.Feedback)
		upd.Feedback = &fb
	}

	log, err := a.emotions.UpdateFeedback(r.Context(), identity, id, upd)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "emotion.feedback.update", map[string]any{
		"log_id": log.ID,
	})

	respond(w, http.StatusOK, "Emotion log feedback updated successfully.", log, nil)
}
