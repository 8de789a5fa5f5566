package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wcrave/wellesley-crave/internal/auth"
	"github.com/wcrave/wellesley-crave/internal/service"
)

// JournalHandler exposes the food journal under /api/journal. Every route
// resolves the session email to a user row first, so entries are always
// scoped to the caller — there is no way to address another user's journal.
type JournalHandler struct {
	journal *service.JournalService
	users   *service.UserService
	logger  *slog.Logger
}

func NewJournalHandler(journal *service.JournalService, users *service.UserService, logger *slog.Logger) *JournalHandler {
	return &JournalHandler{
		journal: journal,
		users:   users,
		logger:  logger,
	}
}

// journalRequest accepts either one entry or a batch. The menu page submits
// batches (everything ticked for a meal); the manual form submits one.
type journalRequest struct {
	service.EntryInput
	Entries []service.EntryInput `json:"entries"`
}

// HandleList returns the caller's entries, optionally for one day.
//
// HTTP: GET /api/journal?date=YYYY-MM-DD
func (h *JournalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.journal.ListEntries(r.Context(), user.ID, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// HandleCreate logs one entry or a batch.
//
// HTTP: POST /api/journal
// BODY: {"date":"2026-08-27","mealType":"Breakfast","foodItem":"Oatmeal","calories":250}
// or:   {"entries":[{...},{...}]}
func (h *JournalHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req journalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if len(req.Entries) > 0 {
		entries, err := h.journal.AddEntries(r.Context(), user.ID, req.Entries)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"entries": entries})
		return
	}

	entry, err := h.journal.AddEntry(r.Context(), user.ID, req.EntryInput)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// HandleDelete removes one entry by ID. Responds 200 with deleted:false for
// IDs that no longer exist, matching the idempotent store semantics.
//
// HTTP: DELETE /api/journal/{entryID}
func (h *JournalHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.currentUser(r); err != nil {
		writeError(w, err)
		return
	}

	deleted, err := h.journal.DeleteEntry(r.Context(), r.PathValue("entryID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// HandleSummary returns one day's entries with per-meal macro totals.
//
// HTTP: GET /api/journal/summary?date=YYYY-MM-DD
func (h *JournalHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.journal.DailySummary(r.Context(), user.ID, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// currentUser resolves the session email to a user row (creating it on a
// first visit, same as every page of the old app did).
func (h *JournalHandler) currentUser(r *http.Request) (*userIdentity, error) {
	email, _ := auth.EmailFromContext(r.Context())
	user, err := h.users.GetOrCreate(r.Context(), email)
	if err != nil {
		return nil, err
	}
	return &userIdentity{ID: user.ID, Email: user.Email}, nil
}

type userIdentity struct {
	ID    string
	Email string
}
