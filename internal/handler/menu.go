package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wcrave/wellesley-crave/internal/apperror"
	"github.com/wcrave/wellesley-crave/internal/auth"
	"github.com/wcrave/wellesley-crave/internal/menu"
	"github.com/wcrave/wellesley-crave/internal/model"
	"github.com/wcrave/wellesley-crave/internal/service"
)

// MenuHandler serves fetched-and-normalized vendor menus plus the static
// hall/meal vocabulary, and runs the favorites matcher.
type MenuHandler struct {
	fetcher   menu.Fetcher
	favorites *service.FavoritesService
	users     *service.UserService
	logger    *slog.Logger
}

func NewMenuHandler(
	fetcher menu.Fetcher,
	favorites *service.FavoritesService,
	users *service.UserService,
	logger *slog.Logger,
) *MenuHandler {
	return &MenuHandler{
		fetcher:   fetcher,
		favorites: favorites,
		users:     users,
		logger:    logger,
	}
}

// HandleMenu returns the normalized menu for one (date, hall, meal) triple.
// date defaults to today. An empty items list means the vendor published no
// menu for that day; a 503 means the vendor call itself failed.
//
// HTTP: GET /api/menu?date=YYYY-MM-DD&hall=Tower&meal=Lunch
func (h *MenuHandler) HandleMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date := time.Now()
	if ds := q.Get("date"); ds != "" {
		parsed, err := time.Parse("2006-01-02", ds)
		if err != nil {
			writeError(w, apperror.ValidationFailed("date", "date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	hall := q.Get("hall")
	meal := model.MealType(q.Get("meal"))

	combo, ok := menu.LookupCombo(hall, meal)
	if !ok {
		writeError(w, apperror.ValidationFailed("hall",
			"unknown dining hall / meal combination"))
		return
	}

	items, err := h.fetcher.FetchDay(r.Context(), date, combo)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":  date.Format("2006-01-02"),
		"hall":  combo.Hall,
		"meal":  combo.Meal,
		"items": items,
	})
}

// HandleHalls returns the static configuration the UI needs to render
// pickers: halls, meals, vocabularies, and the vendor code table.
//
// HTTP: GET /api/menu/halls
func (h *MenuHandler) HandleHalls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"halls":               menu.Halls,
		"hallAliases":         menu.HallAliases,
		"meals":               model.MealTypes,
		"allergens":           menu.Allergens,
		"dietaryRestrictions": menu.DietaryRestrictions,
		"combos":              menu.Combos,
	})
}

// HandleFavoriteMatches runs the favorites matcher over today's menus.
// Always 200: vendor failures for individual hall/meal combinations are
// skipped inside the matcher, and a user with no favorites gets an empty
// list.
//
// HTTP: GET /api/me/favorites/matches
func (h *MenuHandler) HandleFavoriteMatches(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())
	user, err := h.users.GetOrCreate(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	matches := h.favorites.AvailableToday(r.Context(), user.FavoriteDishes)
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}
