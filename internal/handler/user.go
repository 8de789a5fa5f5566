package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wcrave/wellesley-crave/internal/auth"
	"github.com/wcrave/wellesley-crave/internal/service"
)

// UserHandler exposes the profile and preference operations under /api/me.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleMe returns the caller's profile and preferences. Because the lookup
// is get-or-create, a first-ever request after login still succeeds.
//
// HTTP: GET /api/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())

	user, err := h.users.GetOrCreate(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateDiningHall sets the go-to dining hall.
//
// HTTP: PUT /api/me/dining-hall
// BODY: {"diningHall": "Tower"}
func (h *UserHandler) HandleUpdateDiningHall(w http.ResponseWriter, r *http.Request) {
	email, err := h.ensureUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		DiningHall string `json:"diningHall"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.users.UpdateHomeDiningHall(r.Context(), email, req.DiningHall); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"diningHall": req.DiningHall})
}

// HandleUpdateDietProfile replaces allergens and dietary restrictions.
//
// HTTP: PUT /api/me/diet-profile
// BODY: {"allergens": ["Peanut"], "dietaryRestrictions": ["Vegan"]}
func (h *UserHandler) HandleUpdateDietProfile(w http.ResponseWriter, r *http.Request) {
	email, err := h.ensureUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Allergens           []string `json:"allergens"`
		DietaryRestrictions []string `json:"dietaryRestrictions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.users.UpdateDietProfile(r.Context(), email, req.Allergens, req.DietaryRestrictions); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListFavorites returns the favorites list.
//
// HTTP: GET /api/me/favorites
func (h *UserHandler) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())

	user, err := h.users.GetOrCreate(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"favorites": user.FavoriteDishes})
}

// HandleAddFavorite adds a favorite dish. 201 when added, 200 with
// added:false when it was already on the list — the client tells the user
// "already in your favorites" instead of pretending it just saved.
//
// HTTP: POST /api/me/favorites
// BODY: {"dish": "Mac and Cheese"}
func (h *UserHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	email, err := h.ensureUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Dish string `json:"dish"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	added, err := h.users.AddFavoriteDish(r.Context(), email, req.Dish)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"dish": req.Dish, "added": added})
}

// HandleRemoveFavorite removes a favorite dish. Always 200; removed:false
// means the dish wasn't on the list.
//
// HTTP: DELETE /api/me/favorites/{dish}
func (h *UserHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	email, err := h.ensureUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// The router hands over the path segment already URL-decoded, so a
	// dish like "Mac and Cheese" (or one containing a literal %) arrives
	// as plain text. Unescaping again here would corrupt names with %.
	dish := r.PathValue("dish")

	removed, err := h.users.RemoveFavoriteDish(r.Context(), email, dish)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"dish": dish, "removed": removed})
}

// ensureUser resolves the session email to a user row, creating it on
// first contact. The mutating routes need this just like the read routes:
// a freshly logged-in session may hit a settings update before any page
// view has materialized the row, and that must not 404.
func (h *UserHandler) ensureUser(r *http.Request) (string, error) {
	email, _ := auth.EmailFromContext(r.Context())
	user, err := h.users.GetOrCreate(r.Context(), email)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
