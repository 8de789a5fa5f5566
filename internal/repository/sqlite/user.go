package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/wcrave/wellesley-crave/internal/apperror"
	"github.com/wcrave/wellesley-crave/internal/model"
	"github.com/wcrave/wellesley-crave/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// GetOrCreate looks up a user by email, inserting a fresh row when none
// exists. This runs on every authenticated request, so it has to be
// idempotent even when two requests for a brand-new user race:
//
//	INSERT ... ON CONFLICT(email) DO NOTHING
//
// lets the loser of the race fall through to the SELECT and read the row
// the winner created. A check-then-insert would occasionally create two
// rows for the same email under concurrent first logins.
func (db *DB) GetOrCreate(ctx context.Context, email string) (*model.User, error) {
	now := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(email) DO NOTHING`,
		xid.New().String(), email, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting user %s: %w", email, err)
	}

	return db.GetByEmail(ctx, email)
}

// GetByEmail returns the user or apperror.ErrNotFound.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var (
		u                                  model.User
		allergens, restrictions, favorites string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, home_dining_hall, allergens, dietary_restrictions,
		        favorites, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(
		&u.ID,
		&u.Email,
		&u.HomeDiningHall,
		&allergens,
		&restrictions,
		&favorites,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", email, err)
	}

	if err := decodeStrings(allergens, &u.Allergens); err != nil {
		return nil, fmt.Errorf("sqlite: decoding allergens for %s: %w", email, err)
	}
	if err := decodeStrings(restrictions, &u.DietaryRestrictions); err != nil {
		return nil, fmt.Errorf("sqlite: decoding restrictions for %s: %w", email, err)
	}
	if err := decodeStrings(favorites, &u.FavoriteDishes); err != nil {
		return nil, fmt.Errorf("sqlite: decoding favorites for %s: %w", email, err)
	}

	return &u, nil
}

// UpdateHomeDiningHall overwrites the user's go-to hall.
func (db *DB) UpdateHomeDiningHall(ctx context.Context, email, hall string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET home_dining_hall = ?, updated_at = ? WHERE email = ?`,
		hall, time.Now(), email,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating dining hall for %s: %w", email, err)
	}
	return requireRow(result, "user", email)
}

// UpdateDietProfile overwrites both preference lists in one statement, so a
// settings save is atomic even though it touches two columns.
func (db *DB) UpdateDietProfile(ctx context.Context, email string, allergens, restrictions []string) error {
	allergensJSON, err := encodeStrings(allergens)
	if err != nil {
		return fmt.Errorf("sqlite: encoding allergens: %w", err)
	}
	restrictionsJSON, err := encodeStrings(restrictions)
	if err != nil {
		return fmt.Errorf("sqlite: encoding restrictions: %w", err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET allergens = ?, dietary_restrictions = ?, updated_at = ?
		 WHERE email = ?`,
		allergensJSON, restrictionsJSON, time.Now(), email,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating diet profile for %s: %w", email, err)
	}
	return requireRow(result, "user", email)
}

// AddFavorite appends a dish to the favorites list if it isn't already
// there. Returns false for a dish that was already present.
func (db *DB) AddFavorite(ctx context.Context, email, dish string) (bool, error) {
	return db.mutateFavorites(ctx, email, func(favorites []string) ([]string, bool) {
		for _, f := range favorites {
			if f == dish {
				return favorites, false
			}
		}
		return append(favorites, dish), true
	})
}

// RemoveFavorite deletes a dish from the favorites list. Returns false for
// a dish that wasn't there.
func (db *DB) RemoveFavorite(ctx context.Context, email, dish string) (bool, error) {
	return db.mutateFavorites(ctx, email, func(favorites []string) ([]string, bool) {
		for i, f := range favorites {
			if f == dish {
				return append(favorites[:i], favorites[i+1:]...), true
			}
		}
		return favorites, false
	})
}

// mutateFavorites runs a read-modify-write over the favorites column inside
// a single transaction. Without the transaction, two overlapping updates in
// one process could both read the old list and one write would silently
// swallow the other (the lost-update anomaly of the old file-based store).
// Concurrent writers in *separate* processes sharing the file remain
// last-write-wins; SQLite serializes the writes but the reads aren't fenced.
func (db *DB) mutateFavorites(ctx context.Context, email string, mutate func([]string) ([]string, bool)) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning favorites tx: %w", err)
	}
	defer tx.Rollback() // no-op after a successful Commit

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT favorites FROM users WHERE email = ?`, email,
	).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, apperror.NotFound("user", email)
		}
		return false, fmt.Errorf("sqlite: reading favorites for %s: %w", email, err)
	}

	var favorites []string
	if err := decodeStrings(raw, &favorites); err != nil {
		return false, fmt.Errorf("sqlite: decoding favorites for %s: %w", email, err)
	}

	updated, changed := mutate(favorites)
	if !changed {
		return false, nil
	}

	encoded, err := encodeStrings(updated)
	if err != nil {
		return false, fmt.Errorf("sqlite: encoding favorites: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET favorites = ?, updated_at = ? WHERE email = ?`,
		encoded, time.Now(), email,
	); err != nil {
		return false, fmt.Errorf("sqlite: writing favorites for %s: %w", email, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing favorites for %s: %w", email, err)
	}
	return true, nil
}

// requireRow converts "UPDATE matched nothing" into a NotFound.
func requireRow(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

// encodeStrings renders a string slice as a JSON array, treating nil as [].
func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeStrings parses a JSON array column, treating "" like [].
func decodeStrings(raw string, dest *[]string) error {
	if raw == "" {
		*dest = []string{}
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return err
	}
	if *dest == nil {
		*dest = []string{}
	}
	return nil
}
