package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wcrave/wellesley-crave/internal/apperror"
	"github.com/wcrave/wellesley-crave/internal/model"
	"github.com/wcrave/wellesley-crave/internal/repository"
)

// EntryInput is one meal the user is logging. Nutrition values are whatever
// the caller captured at log time — usually copied off a fetched menu item,
// sometimes typed in by hand for off-menu food.
type EntryInput struct {
	Date       string  `json:"date"` // "YYYY-MM-DD"
	MealType   string  `json:"mealType"`
	FoodItem   string  `json:"foodItem"`
	DiningHall string  `json:"diningHall"`
	Notes      string  `json:"notes"`
	Calories   float64 `json:"calories"`
	ProteinG   float64 `json:"proteinG"`
	CarbsG     float64 `json:"carbsG"`
	FatG       float64 `json:"fatG"`
}

// DaySummary is a journal day: its entries plus per-meal totals.
type DaySummary struct {
	Date    string                             `json:"date"`
	Entries []model.JournalEntry               `json:"entries"`
	ByMeal  map[model.MealType]model.MealTotals `json:"byMeal"`
}

// JournalService owns the food journal: immutable per-entry writes,
// ordered reads, idempotent deletes, and the macro aggregation.
type JournalService struct {
	repo   repository.JournalRepository
	logger *slog.Logger
}

func NewJournalService(repo repository.JournalRepository, logger *slog.Logger) *JournalService {
	return &JournalService{
		repo:   repo,
		logger: logger,
	}
}

// AddEntry validates and inserts one journal entry, returning it with the
// freshly issued ID.
func (s *JournalService) AddEntry(ctx context.Context, userID string, input EntryInput) (*model.JournalEntry, error) {
	entry, err := buildEntry(userID, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to create journal entry",
			slog.String("userId", userID),
			slog.String("foodItem", entry.FoodItem),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating journal entry: %w", err)
	}

	s.logger.Info("journal entry created",
		slog.String("entryId", entry.ID),
		slog.String("userId", userID),
		slog.String("mealType", string(entry.MealType)),
	)
	return entry, nil
}

// AddEntries logs several dishes in one action — the menu page lets a user
// tick off everything they ate in a meal and submit once. Entries share
// whatever date/meal/notes the caller put in each input; the write is a
// single transaction so a failure logs nothing rather than half a meal.
func (s *JournalService) AddEntries(ctx context.Context, userID string, inputs []EntryInput) ([]model.JournalEntry, error) {
	if len(inputs) == 0 {
		return nil, apperror.ValidationFailed("entries", "at least one entry is required")
	}

	entries := make([]*model.JournalEntry, 0, len(inputs))
	for _, input := range inputs {
		entry, err := buildEntry(userID, input)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := s.repo.CreateBatch(ctx, entries); err != nil {
		s.logger.Error("failed to create journal batch",
			slog.String("userId", userID),
			slog.Int("count", len(entries)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating journal entries: %w", err)
	}

	s.logger.Info("journal batch created",
		slog.String("userId", userID),
		slog.Int("count", len(entries)),
	)

	out := make([]model.JournalEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	return out, nil
}

// ListEntries returns the user's entries; date ("YYYY-MM-DD") narrows to a
// single day, empty returns the full journal newest-first.
func (s *JournalService) ListEntries(ctx context.Context, userID, date string) ([]model.JournalEntry, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, apperror.ValidationFailed("date", fmt.Sprintf("%q is not a valid date (want YYYY-MM-DD)", date))
		}
	}

	entries, err := s.repo.ListByUser(ctx, userID, date)
	if err != nil {
		s.logger.Error("failed to list journal entries",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing journal entries: %w", err)
	}
	return entries, nil
}

// DeleteEntry removes one entry by ID. Returns false when no entry had that
// ID — a double-click on the delete button is not an error.
func (s *JournalService) DeleteEntry(ctx context.Context, entryID string) (bool, error) {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return false, apperror.ValidationFailed("entryId", "entry ID is required")
	}

	deleted, err := s.repo.Delete(ctx, entryID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("journal entry deleted", slog.String("entryId", entryID))
	}
	return deleted, nil
}

// DailySummary lists one day's entries and aggregates them per meal.
func (s *JournalService) DailySummary(ctx context.Context, userID, date string) (*DaySummary, error) {
	if date == "" {
		return nil, apperror.ValidationFailed("date", "date is required")
	}

	entries, err := s.ListEntries(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	return &DaySummary{
		Date:    date,
		Entries: entries,
		ByMeal:  AggregateByMeal(entries),
	}, nil
}

// AggregateByMeal sums the stored nutrition snapshots of entries sharing a
// meal type. Pure function over the snapshot values — nothing is re-fetched
// from menu data. Meal types with no entries are absent from the map, not
// present with zeros.
func AggregateByMeal(entries []model.JournalEntry) map[model.MealType]model.MealTotals {
	byMeal := make(map[model.MealType]model.MealTotals)
	for _, e := range entries {
		t := byMeal[e.MealType]
		t.TotalCalories += e.Calories
		t.TotalProteinG += e.ProteinG
		t.TotalCarbsG += e.CarbsG
		t.TotalFatG += e.FatG
		t.Count++
		byMeal[e.MealType] = t
	}
	return byMeal
}

// buildEntry validates one input and shapes it into a model row. The ID is
// left empty; the repository issues it on insert.
func buildEntry(userID string, input EntryInput) (*model.JournalEntry, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		return nil, apperror.ValidationFailed("date", fmt.Sprintf("%q is not a valid date (want YYYY-MM-DD)", input.Date))
	}

	if !model.ValidMealType(input.MealType) {
		return nil, apperror.ValidationFailed("mealType",
			fmt.Sprintf("%q is not a meal type; use Breakfast, Lunch, Dinner or Snack", input.MealType))
	}

	foodItem := strings.TrimSpace(input.FoodItem)
	if foodItem == "" {
		return nil, apperror.ValidationFailed("foodItem", "food item is required")
	}

	// Negative macros would silently corrupt every aggregate downstream.
	for field, v := range map[string]float64{
		"calories": input.Calories,
		"proteinG": input.ProteinG,
		"carbsG":   input.CarbsG,
		"fatG":     input.FatG,
	} {
		if v < 0 {
			return nil, apperror.ValidationFailed(field, field+" must not be negative")
		}
	}

	return &model.JournalEntry{
		UserID:     userID,
		Date:       input.Date,
		MealType:   model.MealType(input.MealType),
		FoodItem:   foodItem,
		DiningHall: strings.TrimSpace(input.DiningHall),
		Notes:      strings.TrimSpace(input.Notes),
		Calories:   input.Calories,
		ProteinG:   input.ProteinG,
		CarbsG:     input.CarbsG,
		FatG:       input.FatG,
	}, nil
}
