package note

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/VoidMesh/randint/internal/editor"
)

// NoteHandlers contains all HTTP handlers for note operations
type NoteHandlers struct {
	noteManager *Manager
}

// NewNoteHandlers creates a new note handlers instance
func NewNoteHandlers(noteManager *Manager) *NoteHandlers {
	return &NoteHandlers{
		noteManager: noteManager,
	}
}

// RegisterRoutes registers all note routes
func (h *NoteHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/notes", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{noteID}", h.Get)
		r.Delete("/{noteID}", h.Delete)
		r.Put("/{noteID}/body", h.UpdateBody)
		r.Put("/{noteID}/cursor", h.MoveCursor)
	})
}

// Create handles note creation
func (h *NoteHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode create note request", "error", err)
		writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	n, err := h.noteManager.Create(r.Context(), req)
	if err != nil {
		h.handleError(w, err, "Failed to create note")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, n)
}

// List returns recent notes
func (h *NoteHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			writeErrorResponse(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	notes, err := h.noteManager.List(r.Context(), limit)
	if err != nil {
		h.handleError(w, err, "Failed to list notes")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"notes": notes,
		"count": len(notes),
	})
}

// Get returns a single note
func (h *NoteHandlers) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.noteManager.Get(r.Context(), chi.URLParam(r, "noteID"))
	if err != nil {
		h.handleError(w, err, "Failed to get note")
		return
	}

	render.JSON(w, r, n)
}

// Delete removes a note
func (h *NoteHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")
	if err := h.noteManager.Delete(r.Context(), noteID); err != nil {
		h.handleError(w, err, "Failed to delete note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateBody replaces a note's text
func (h *NoteHandlers) UpdateBody(w http.ResponseWriter, r *http.Request) {
	var req UpdateBodyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode update body request", "error", err)
		writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	n, err := h.noteManager.UpdateBody(r.Context(), chi.URLParam(r, "noteID"), req)
	if err != nil {
		h.handleError(w, err, "Failed to update note")
		return
	}

	render.JSON(w, r, n)
}

// MoveCursor places a note's cursor
func (h *NoteHandlers) MoveCursor(w http.ResponseWriter, r *http.Request) {
	var pos editor.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		log.Error("Failed to decode cursor request", "error", err)
		writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	n, err := h.noteManager.MoveCursor(r.Context(), chi.URLParam(r, "noteID"), pos)
	if err != nil {
		h.handleError(w, err, "Failed to move cursor")
		return
	}

	render.JSON(w, r, n)
}

func (h *NoteHandlers) handleError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidTitle):
		writeErrorResponse(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error(message, "error", err)
		// Don't expose internal errors to the client
		writeErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   message,
		Code:    statusCode,
		Message: message,
	}

	json.NewEncoder(w).Encode(response)
}
