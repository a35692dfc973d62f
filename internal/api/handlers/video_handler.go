package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/videoflow/videoflow-be/internal/models"
	"github.com/videoflow/videoflow-be/internal/services"
)

// VideoHandler handles HTTP requests for video catalog management.
type VideoHandler struct {
	service services.VideoServiceProvider
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(service services.VideoServiceProvider) *VideoHandler {
	return &VideoHandler{service: service}
}

// Create handles adding a new video to the catalog.
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.VideoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	video, err := h.service.Create(input)
	if err != nil {
		if ve, ok := services.AsValidationError(err); ok {
			writeValidationErrors(w, ve.Fields)
			return
		}
		log.Error().Err(err).Msg("Failed to save video")
		writeMessage(w, http.StatusInternalServerError, "Failed to save video")
		return
	}

	writeJSON(w, http.StatusCreated, video)
}

// List handles retrieving videos with filters, pagination and search.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := services.ListFilter{
		Genre:  strings.TrimSpace(q.Get("genre")),
		Title:  strings.TrimSpace(q.Get("title")),
		Search: strings.TrimSpace(q.Get("search")),
	}
	if tags := strings.TrimSpace(q.Get("tags")); tags != "" {
		filter.Tags = splitTags(tags)
	}

	var fields []services.FieldError
	var err error
	if filter.Page, err = positiveIntParam(q.Get("page"), 1); err != nil {
		fields = append(fields, services.FieldError{Field: "page", Message: "page must be a positive integer"})
	}
	if filter.Limit, err = positiveIntParam(q.Get("limit"), 10); err != nil {
		fields = append(fields, services.FieldError{Field: "limit", Message: "limit must be a positive integer"})
	}
	if len(fields) > 0 {
		writeValidationErrors(w, fields)
		return
	}

	result, err := h.service.List(filter)
	if err != nil {
		if ve, ok := services.AsValidationError(err); ok {
			writeValidationErrors(w, ve.Fields)
			return
		}
		log.Error().Err(err).Msg("Failed to retrieve videos")
		writeMessage(w, http.StatusInternalServerError, "Failed to retrieve videos")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Update handles a partial update of a video by its ID.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := videoIDParam(w, r)
	if !ok {
		return
	}

	var patch models.VideoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	video, err := h.service.Update(id, patch)
	if err != nil {
		if ve, ok := services.AsValidationError(err); ok {
			writeValidationErrors(w, ve.Fields)
			return
		}
		if errors.Is(err, services.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Video not found")
			return
		}
		log.Error().Err(err).Int64("video_id", id).Msg("Failed to update video")
		writeMessage(w, http.StatusInternalServerError, "Failed to update video")
		return
	}

	writeJSON(w, http.StatusOK, video)
}

// Delete handles removing a video by its ID.
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := videoIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Video not found")
			return
		}
		log.Error().Err(err).Int64("video_id", id).Msg("Failed to delete video")
		writeMessage(w, http.StatusInternalServerError, "Failed to delete video")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// videoIDParam parses the {id} route parameter, responding with 400 itself
// when the value is not a number.
func videoIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeValidationErrors(w, []services.FieldError{{Field: "id", Message: "id must be an integer"}})
		return 0, false
	}
	return id, true
}

// positiveIntParam parses an optional positive integer query parameter.
func positiveIntParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("must be a positive integer")
	}
	return n, nil
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
