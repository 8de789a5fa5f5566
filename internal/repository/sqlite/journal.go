package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"github.com/wcrave/wellesley-crave/internal/model"
	"github.com/wcrave/wellesley-crave/internal/repository"
)

// compile-time check that *DB implements repository.JournalRepository
var _ repository.JournalRepository = (*DB)(nil)

// mealOrder sorts meal types in their canonical order. SQLite would
// otherwise sort the TEXT column alphabetically, which puts Dinner before
// Lunch — the journal page wants the day laid out Breakfast → Snack.
const mealOrder = `CASE meal_type
	WHEN 'Breakfast' THEN 0
	WHEN 'Lunch' THEN 1
	WHEN 'Dinner' THEN 2
	WHEN 'Snack' THEN 3
	ELSE 4 END`

const insertEntrySQL = `INSERT INTO food_journal
	(entry_id, user_id, date, meal_type, food_item, dining_hall, notes,
	 calories, protein, carbs, fat)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Create inserts one journal entry, generating its ID. The caller's entry
// is modified in place so it carries the issued ID back up the stack.
func (db *DB) Create(ctx context.Context, entry *model.JournalEntry) error {
	entry.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx, insertEntrySQL,
		entry.ID,
		entry.UserID,
		entry.Date,
		string(entry.MealType),
		entry.FoodItem,
		entry.DiningHall,
		entry.Notes,
		entry.Calories,
		entry.ProteinG,
		entry.CarbsG,
		entry.FatG,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating journal entry: %w", err)
	}

	return nil
}

// CreateBatch inserts several entries in one transaction. Logging a meal
// from the menu page creates one entry per selected dish; either the whole
// meal lands in the journal or none of it does.
func (db *DB) CreateBatch(ctx context.Context, entries []*model.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning batch tx: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		entry.ID = xid.New().String()
		if _, err := tx.ExecContext(ctx, insertEntrySQL,
			entry.ID,
			entry.UserID,
			entry.Date,
			string(entry.MealType),
			entry.FoodItem,
			entry.DiningHall,
			entry.Notes,
			entry.Calories,
			entry.ProteinG,
			entry.CarbsG,
			entry.FatG,
		); err != nil {
			return fmt.Errorf("sqlite: creating journal entry %q: %w", entry.FoodItem, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing batch: %w", err)
	}
	return nil
}

// ListByUser returns entries for one user. date filters to a single day
// ("YYYY-MM-DD") in canonical meal order; an empty date returns the full
// journal, newest day first.
func (db *DB) ListByUser(ctx context.Context, userID, date string) ([]model.JournalEntry, error) {
	query := `SELECT entry_id, user_id, date, meal_type, food_item,
	                 dining_hall, notes, calories, protein, carbs, fat
	          FROM food_journal WHERE user_id = ?`
	args := []any{userID}

	if date != "" {
		query += ` AND date = ? ORDER BY ` + mealOrder
		args = append(args, date)
	} else {
		query += ` ORDER BY date DESC, ` + mealOrder
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.JournalEntry, 0, 16)
	for rows.Next() {
		var (
			e        model.JournalEntry
			mealType string
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Date, &mealType, &e.FoodItem,
			&e.DiningHall, &e.Notes, &e.Calories, &e.ProteinG, &e.CarbsG, &e.FatG,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning journal row: %w", err)
		}
		e.MealType = model.MealType(mealType)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating journal rows: %w", err)
	}

	return entries, nil
}

// Delete removes one entry by ID. A missing row is not an error — the
// delete button may be clicked twice — so the result is a boolean.
func (db *DB) Delete(ctx context.Context, entryID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM food_journal WHERE entry_id = ?`, entryID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting journal entry %s: %w", entryID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}
