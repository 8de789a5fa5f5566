// Package repository declares the storage interfaces the service layer is
// written against. The sqlite subpackage is the only implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/wcrave/wellesley-crave/internal/model"
)

// UserRepository manages the users table: one row per email, created lazily
// on first login, preference columns mutated in place.
type UserRepository interface {
	// GetOrCreate returns the user with the given email, inserting a fresh
	// row with empty preferences if none exists. Safe to call on every
	// request: repeated calls (including concurrent ones) yield the same
	// row and never a duplicate.
	GetOrCreate(ctx context.Context, email string) (*model.User, error)

	// GetByEmail returns the user or apperror.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// UpdateHomeDiningHall overwrites the user's go-to dining hall.
	UpdateHomeDiningHall(ctx context.Context, email, hall string) error

	// UpdateDietProfile overwrites allergens and dietary restrictions in a
	// single statement.
	UpdateDietProfile(ctx context.Context, email string, allergens, restrictions []string) error

	// AddFavorite appends a dish to the favorites list. Returns false when
	// the dish was already present (no-op).
	AddFavorite(ctx context.Context, email, dish string) (bool, error)

	// RemoveFavorite deletes a dish from the favorites list. Returns false
	// when the dish was not present (no-op).
	RemoveFavorite(ctx context.Context, email, dish string) (bool, error)
}

// JournalRepository manages food_journal rows. Entries are insert-only;
// the sole mutation is delete-by-ID.
type JournalRepository interface {
	Create(ctx context.Context, entry *model.JournalEntry) error

	// CreateBatch inserts several entries in one transaction — all or
	// nothing, so a half-logged meal never survives a failure.
	CreateBatch(ctx context.Context, entries []*model.JournalEntry) error

	// ListByUser returns the user's entries. With a date ("YYYY-MM-DD") it
	// returns that day's entries in canonical meal order; with an empty
	// date it returns everything, newest day first, then meal order.
	ListByUser(ctx context.Context, userID, date string) ([]model.JournalEntry, error)

	// Delete removes one entry. Returns false (and no error) when no row
	// had that ID — deleting twice is not a failure.
	Delete(ctx context.Context, entryID string) (bool, error)
}
