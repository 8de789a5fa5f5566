package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/wcrave/wellesley-crave/internal/apperror"
)

// newTestDB returns a DB backed by an in-memory SQLite database, migrated
// and ready. Each test gets its own; it disappears on close.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// =========================================================================
// GET OR CREATE TESTS
// =========================================================================

func TestGetOrCreate_NewUser(t *testing.T) {
	db := newTestDB(t)

	user, err := db.GetOrCreate(context.Background(), "a@wellesley.edu")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	if user.ID == "" {
		t.Error("GetOrCreate() did not issue an ID")
	}
	if user.Email != "a@wellesley.edu" {
		t.Errorf("Email = %q, want %q", user.Email, "a@wellesley.edu")
	}
	if user.HomeDiningHall != "" {
		t.Errorf("HomeDiningHall = %q, want empty", user.HomeDiningHall)
	}
	if len(user.Allergens) != 0 || len(user.DietaryRestrictions) != 0 || len(user.FavoriteDishes) != 0 {
		t.Error("new user should have empty preference lists")
	}
	if user.Allergens == nil || user.DietaryRestrictions == nil || user.FavoriteDishes == nil {
		t.Error("preference lists should be empty slices, not nil (they serialize as [])")
	}
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	first, err := db.GetOrCreate(context.Background(), "a@wellesley.edu")
	if err != nil {
		t.Fatalf("first GetOrCreate() error = %v", err)
	}

	second, err := db.GetOrCreate(context.Background(), "a@wellesley.edu")
	if err != nil {
		t.Fatalf("second GetOrCreate() error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second call issued a new ID: %q != %q", second.ID, first.ID)
	}

	// No duplicate row either.
	var count int
	if err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM users WHERE email = ?`, "a@wellesley.edu",
	).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByEmail(context.Background(), "nobody@wellesley.edu")
	if err == nil {
		t.Fatal("GetByEmail() should fail for an unknown email")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// PREFERENCE TESTS
// =========================================================================

func TestUpdateHomeDiningHall(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.GetOrCreate(ctx, "a@wellesley.edu"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := db.UpdateHomeDiningHall(ctx, "a@wellesley.edu", "Tower"); err != nil {
		t.Fatalf("UpdateHomeDiningHall() error = %v", err)
	}

	user, err := db.GetByEmail(ctx, "a@wellesley.edu")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if user.HomeDiningHall != "Tower" {
		t.Errorf("HomeDiningHall = %q, want %q", user.HomeDiningHall, "Tower")
	}
}

func TestUpdateHomeDiningHall_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateHomeDiningHall(context.Background(), "nobody@wellesley.edu", "Tower")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateDietProfile_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.GetOrCreate(ctx, "a@wellesley.edu"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	allergens := []string{"Peanut", "Sesame"}
	restrictions := []string{"Vegan"}
	if err := db.UpdateDietProfile(ctx, "a@wellesley.edu", allergens, restrictions); err != nil {
		t.Fatalf("UpdateDietProfile() error = %v", err)
	}

	user, err := db.GetByEmail(ctx, "a@wellesley.edu")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	assertStrings(t, "Allergens", user.Allergens, allergens)
	assertStrings(t, "DietaryRestrictions", user.DietaryRestrictions, restrictions)
}

// =========================================================================
// FAVORITES TESTS
// =========================================================================

func TestFavorites_SetSemantics(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	email := "a@wellesley.edu"

	if _, err := db.GetOrCreate(ctx, email); err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Adds report true, duplicate add reports false.
	added, err := db.AddFavorite(ctx, email, "Mac and Cheese")
	if err != nil || !added {
		t.Fatalf("AddFavorite() = (%v, %v), want (true, nil)", added, err)
	}
	added, err = db.AddFavorite(ctx, email, "Pizza")
	if err != nil || !added {
		t.Fatalf("AddFavorite() = (%v, %v), want (true, nil)", added, err)
	}
	added, err = db.AddFavorite(ctx, email, "Mac and Cheese")
	if err != nil {
		t.Fatalf("duplicate AddFavorite() error = %v", err)
	}
	if added {
		t.Error("duplicate AddFavorite() should report false")
	}

	user, err := db.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	assertStrings(t, "FavoriteDishes", user.FavoriteDishes, []string{"Mac and Cheese", "Pizza"})

	// Remove reports true once, false after.
	removed, err := db.RemoveFavorite(ctx, email, "Mac and Cheese")
	if err != nil || !removed {
		t.Fatalf("RemoveFavorite() = (%v, %v), want (true, nil)", removed, err)
	}
	removed, err = db.RemoveFavorite(ctx, email, "Mac and Cheese")
	if err != nil {
		t.Fatalf("second RemoveFavorite() error = %v", err)
	}
	if removed {
		t.Error("removing an absent dish should report false")
	}

	user, err = db.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	assertStrings(t, "FavoriteDishes", user.FavoriteDishes, []string{"Pizza"})
}

func TestFavorites_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	_, err := db.AddFavorite(context.Background(), "nobody@wellesley.edu", "Pizza")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// assertStrings compares two string slices in order.
func assertStrings(t *testing.T, name string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s = %v, want %v", name, got, want)
		}
	}
}
