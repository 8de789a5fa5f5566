package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/wcrave/wellesley-crave/internal/menu"
)

// DishLocation is one place a matched dish is being served today.
type DishLocation struct {
	Location string `json:"location"`
	Meal     string `json:"meal"`
	Station  string `json:"station"`
}

// DishMatch is one favorite found on today's menus, with every hall/meal/
// station serving it. Locations carry no ordering guarantee.
type DishMatch struct {
	DishName  string         `json:"dishName"`
	Locations []DishLocation `json:"locations"`
}

// FavoritesService checks a user's favorite dishes against today's menus
// across every dining hall and meal.
type FavoritesService struct {
	fetcher menu.Fetcher
	logger  *slog.Logger
	now     func() time.Time // injectable clock for tests
}

func NewFavoritesService(fetcher menu.Fetcher, logger *slog.Logger) *FavoritesService {
	return &FavoritesService{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// AvailableToday fetches today's menu for all twelve (hall, meal)
// combinations and reports which favorites are being served where.
//
// Matching is a bidirectional case-insensitive substring test: the favorite
// "Mac and Cheese" matches the menu item "Baked Mac and Cheese", and the
// favorite "Baked Mac and Cheese Casserole" matches the item "Mac and
// Cheese". This intentionally over-matches ("Pizza" also hits "Pizzazz
// Salad"); it is the established notification behavior and stays until
// someone decides the false positives actually bother users.
//
// The result is best-effort: if the vendor call for one combination fails,
// that combination is logged and skipped, and matches from the remaining
// combinations are still returned. A day where every call fails yields an
// empty result, never an error.
func (s *FavoritesService) AvailableToday(ctx context.Context, favorites []string) []DishMatch {
	if len(favorites) == 0 {
		return []DishMatch{}
	}

	today := s.now()
	grouped := make(map[string][]DishLocation)

	for _, combo := range menu.Combos {
		items, err := s.fetcher.FetchDay(ctx, today, combo)
		if err != nil {
			s.logger.Warn("skipping menu for favorites check",
				slog.String("hall", combo.Hall),
				slog.String("meal", string(combo.Meal)),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, item := range items {
			if !matchesAny(item.Name, favorites) {
				continue
			}
			grouped[item.Name] = append(grouped[item.Name], DishLocation{
				Location: combo.Hall,
				Meal:     string(combo.Meal),
				Station:  item.Station,
			})
		}
	}

	matches := make([]DishMatch, 0, len(grouped))
	for dish, locations := range grouped {
		matches = append(matches, DishMatch{DishName: dish, Locations: locations})
	}
	// Stable response order for the UI; the grouping itself is the contract.
	sort.Slice(matches, func(i, j int) bool { return matches[i].DishName < matches[j].DishName })

	return matches
}

// matchesAny applies the loose substring policy against every favorite.
// A nameless item matches nothing: the reversed Contains would otherwise
// make the empty string a substring of every favorite.
func matchesAny(itemName string, favorites []string) bool {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return false
	}
	for _, fav := range favorites {
		f := strings.ToLower(strings.TrimSpace(fav))
		if f == "" {
			continue
		}
		if strings.Contains(name, f) || strings.Contains(f, name) {
			return true
		}
	}
	return false
}
