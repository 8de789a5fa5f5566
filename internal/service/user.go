// Package service contains the business logic layer: validation, vocabulary
// enforcement, and orchestration. Services accept primitives and return
// domain errors; they know nothing about HTTP, and the handlers that call
// them know nothing about SQL.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wcrave/wellesley-crave/internal/apperror"
	"github.com/wcrave/wellesley-crave/internal/menu"
	"github.com/wcrave/wellesley-crave/internal/model"
	"github.com/wcrave/wellesley-crave/internal/repository"
)

// MaxFavoriteDishLength bounds free-text dish names; the vendor's longest
// real dish names run well under this.
const MaxFavoriteDishLength = 120

// UserService is the user directory: get-or-create identity plus the
// preference operations behind the settings page.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// GetOrCreate resolves an email to a user, creating the row on first login.
// Idempotent — it runs on every authenticated request.
func (s *UserService) GetOrCreate(ctx context.Context, email string) (*model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetOrCreate(ctx, email)
	if err != nil {
		s.logger.Error("failed to get or create user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	return user, nil
}

// UpdateHomeDiningHall sets the user's go-to hall for the home page.
func (s *UserService) UpdateHomeDiningHall(ctx context.Context, email, hall string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	hall = strings.TrimSpace(hall)
	if !menu.ValidHall(hall) {
		return apperror.ValidationFailed("diningHall",
			fmt.Sprintf("unknown dining hall %q; valid halls are %s", hall, strings.Join(menu.Halls, ", ")))
	}

	if err := s.repo.UpdateHomeDiningHall(ctx, email, hall); err != nil {
		return err
	}

	s.logger.Info("dining hall updated", slog.String("email", email), slog.String("hall", hall))
	return nil
}

// UpdateDietProfile replaces the user's allergens and dietary restrictions.
// Both lists are validated against the fixed vocabularies and deduplicated;
// the old store accepted any string and let typos poison menu filtering.
func (s *UserService) UpdateDietProfile(ctx context.Context, email string, allergens, restrictions []string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	allergens, err = checkVocabulary("allergens", allergens, menu.Allergens)
	if err != nil {
		return err
	}
	restrictions, err = checkVocabulary("dietaryRestrictions", restrictions, menu.DietaryRestrictions)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateDietProfile(ctx, email, allergens, restrictions); err != nil {
		return err
	}

	s.logger.Info("diet profile updated",
		slog.String("email", email),
		slog.Int("allergens", len(allergens)),
		slog.Int("restrictions", len(restrictions)),
	)
	return nil
}

// AddFavoriteDish records a dish to be matched against daily menus.
// Returns false when the dish was already a favorite.
func (s *UserService) AddFavoriteDish(ctx context.Context, email, dish string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}

	dish = strings.TrimSpace(dish)
	if dish == "" {
		return false, apperror.ValidationFailed("dish", "dish name is required")
	}
	if len(dish) > MaxFavoriteDishLength {
		return false, apperror.ValidationFailed("dish",
			fmt.Sprintf("dish name must be %d characters or less", MaxFavoriteDishLength))
	}

	added, err := s.repo.AddFavorite(ctx, email, dish)
	if err != nil {
		return false, err
	}
	if added {
		s.logger.Info("favorite added", slog.String("email", email), slog.String("dish", dish))
	}
	return added, nil
}

// RemoveFavoriteDish drops a dish from the favorites list. Returns false
// when the dish wasn't there.
func (s *UserService) RemoveFavoriteDish(ctx context.Context, email, dish string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}

	dish = strings.TrimSpace(dish)
	if dish == "" {
		return false, apperror.ValidationFailed("dish", "dish name is required")
	}

	removed, err := s.repo.RemoveFavorite(ctx, email, dish)
	if err != nil {
		return false, err
	}
	if removed {
		s.logger.Info("favorite removed", slog.String("email", email), slog.String("dish", dish))
	}
	return removed, nil
}

// normalizeEmail trims and lower-cases the identity and rejects anything
// that can't be an address. The auth layer normally guarantees a real
// email, but the directory is also called from non-HTTP paths.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperror.ValidationFailed("email", "email is required")
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return "", apperror.ValidationFailed("email", fmt.Sprintf("%q is not a valid email address", email))
	}
	return email, nil
}

// checkVocabulary verifies every value is in the allowed list, preserving
// input order and dropping duplicates. Matching is exact: the vocabularies
// are presented as pick-lists, not typed in.
func checkVocabulary(field string, values, allowed []string) ([]string, error) {
	valid := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		valid[a] = true
	}

	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if !valid[v] {
			return nil, apperror.ValidationFailed(field,
				fmt.Sprintf("%q is not a recognized value; valid values are %s", v, strings.Join(allowed, ", ")))
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}
