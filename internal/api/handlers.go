package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/hashicorp/go-multierror"

	"github.com/VoidMesh/randint/internal/editor"
	"github.com/VoidMesh/randint/internal/note"
	"github.com/VoidMesh/randint/internal/plugin"
	"github.com/VoidMesh/randint/internal/settings"
)

type Handler struct {
	plugin      *plugin.Plugin
	noteManager *note.Manager
}

func NewHandler(p *plugin.Plugin, noteManager *note.Manager) *Handler {
	return &Handler{
		plugin:      p,
		noteManager: noteManager,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "randint",
		"version":   plugin.Version,
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.plugin.Settings())
}

func (h *Handler) ReplaceSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	updated, err := h.plugin.ReplaceSettings(ctx, req)
	if err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			problems := make([]string, 0, len(merr.Errors))
			for _, e := range merr.Errors {
				problems = append(problems, e.Error())
			}
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]interface{}{
				"error":    "invalid settings",
				"code":     http.StatusUnprocessableEntity,
				"problems": problems,
			})
			return
		}
		log.Error("failed to replace settings", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "failed to save settings", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, updated)
}

// UpdateSettingsField applies free text typed into one settings field.
func (h *Handler) UpdateSettingsField(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	updated, result, err := h.plugin.UpdateField(ctx, field, req.Value)
	if err != nil {
		if errors.Is(err, settings.ErrUnknownField) {
			h.renderError(w, r, http.StatusNotFound, "unknown settings field", nil)
			return
		}
		log.Error("failed to update settings field", "error", err, "field", field)
		h.renderError(w, r, http.StatusInternalServerError, "failed to save settings", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"settings":  updated,
		"field":     result.Field,
		"display":   result.Display,
		"recovered": result.Recovered != nil,
	})
}

func (h *Handler) ListCommands(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"commands": h.plugin.Commands(),
	})
}

// RunCommand executes a plugin command. Editor commands run against the note
// named in the body and store the edited note.
func (h *Handler) RunCommand(w http.ResponseWriter, r *http.Request) {
	commandID := chi.URLParam(r, "commandID")

	var req struct {
		NoteID string `json:"note_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	cmd, ok := h.plugin.Command(commandID)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "unknown command", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if !cmd.Editor {
		result, err := h.plugin.Execute(ctx, commandID, nil)
		if err != nil {
			h.renderError(w, r, http.StatusInternalServerError, "command failed", err)
			return
		}
		render.Status(r, http.StatusOK)
		render.JSON(w, r, result)
		return
	}

	if req.NoteID == "" {
		h.renderError(w, r, http.StatusBadRequest, "note_id is required for editor commands", nil)
		return
	}

	var result *plugin.CommandResult
	updated, err := h.noteManager.Edit(ctx, req.NoteID, func(ed editor.Editor) error {
		var err error
		result, err = h.plugin.Execute(ctx, commandID, ed)
		return err
	})
	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "note not found", nil)
			return
		}
		log.Error("failed to run command", "error", err, "command", commandID, "note_id", req.NoteID)
		h.renderError(w, r, http.StatusInternalServerError, "command failed", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"command":   result.Command,
		"insertion": result.Insertion,
		"note":      updated,
	})
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	errorResponse := note.ErrorResponse{
		Error:   message,
		Code:    status,
		Message: message,
	}

	if err != nil {
		log.Error("API error", "error", err, "message", message, "status", status)
		// Don't expose internal errors to the client
		if status >= 500 {
			errorResponse.Error = "Internal server error"
		}
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse)
}
