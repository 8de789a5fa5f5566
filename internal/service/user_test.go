package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/wcrave/wellesley-crave/internal/apperror"
	"github.com/wcrave/wellesley-crave/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory implementation of repository.UserRepository.
// A hand-written fake (not a mock framework) keeps the tests readable — you
// can see exactly what the fake does.
type fakeUserRepo struct {
	users  map[string]*model.User // keyed by email
	nextID int
	// set to a non-nil error to simulate a database failure
	failWith error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepo) GetOrCreate(ctx context.Context, email string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	u := &model.User{
		ID:                  "user-" + string(rune('0'+f.nextID)),
		Email:               email,
		Allergens:           []string{},
		DietaryRestrictions: []string{},
		FavoriteDishes:      []string{},
	}
	f.nextID++
	f.users[email] = u
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	return u, nil
}

func (f *fakeUserRepo) UpdateHomeDiningHall(ctx context.Context, email, hall string) error {
	u, ok := f.users[email]
	if !ok {
		return apperror.NotFound("user", email)
	}
	u.HomeDiningHall = hall
	return nil
}

func (f *fakeUserRepo) UpdateDietProfile(ctx context.Context, email string, allergens, restrictions []string) error {
	u, ok := f.users[email]
	if !ok {
		return apperror.NotFound("user", email)
	}
	u.Allergens = allergens
	u.DietaryRestrictions = restrictions
	return nil
}

func (f *fakeUserRepo) AddFavorite(ctx context.Context, email, dish string) (bool, error) {
	u, ok := f.users[email]
	if !ok {
		return false, apperror.NotFound("user", email)
	}
	for _, d := range u.FavoriteDishes {
		if d == dish {
			return false, nil
		}
	}
	u.FavoriteDishes = append(u.FavoriteDishes, dish)
	return true, nil
}

func (f *fakeUserRepo) RemoveFavorite(ctx context.Context, email, dish string) (bool, error) {
	u, ok := f.users[email]
	if !ok {
		return false, apperror.NotFound("user", email)
	}
	for i, d := range u.FavoriteDishes {
		if d == dish {
			u.FavoriteDishes = append(u.FavoriteDishes[:i], u.FavoriteDishes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// testLogger discards everything below ERROR so test output stays quiet.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestUserService(repo *fakeUserRepo) *UserService {
	return NewUserService(repo, testLogger())
}

// =========================================================================
// GET OR CREATE
// =========================================================================

func TestUserGetOrCreate_NormalizesEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, "  A@Wellesley.EDU ")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	second, err := svc.GetOrCreate(ctx, "a@wellesley.edu")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	// Case and whitespace variants must resolve to the same user.
	if first.ID != second.ID {
		t.Errorf("IDs differ: %q vs %q", first.ID, second.ID)
	}
	if len(repo.users) != 1 {
		t.Errorf("repo holds %d users, want 1", len(repo.users))
	}
}

func TestUserGetOrCreate_RejectsBadEmails(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo())

	for _, email := range []string{"", "   ", "nodomain", "@wellesley.edu", "a@"} {
		_, err := svc.GetOrCreate(context.Background(), email)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("GetOrCreate(%q) error = %v, want ErrValidation", email, err)
		}
	}
}

// =========================================================================
// PREFERENCES
// =========================================================================

func TestUpdateHomeDiningHall_ValidatesHall(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, "a@wellesley.edu"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := svc.UpdateHomeDiningHall(ctx, "a@wellesley.edu", "Tower"); err != nil {
		t.Fatalf("UpdateHomeDiningHall(Tower) error = %v", err)
	}

	// "Lulu" is the informal name for Bae; aliases pass validation.
	if err := svc.UpdateHomeDiningHall(ctx, "a@wellesley.edu", "Lulu"); err != nil {
		t.Errorf("UpdateHomeDiningHall(Lulu) error = %v", err)
	}

	err := svc.UpdateHomeDiningHall(ctx, "a@wellesley.edu", "Olin")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("UpdateHomeDiningHall(Olin) error = %v, want ErrValidation", err)
	}
}

func TestUpdateDietProfile_EnforcesVocabulary(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, "a@wellesley.edu"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	err := svc.UpdateDietProfile(ctx, "a@wellesley.edu",
		[]string{"Peanut", "Sesame"}, []string{"Vegan"})
	if err != nil {
		t.Fatalf("UpdateDietProfile() error = %v", err)
	}

	// Unknown allergen: exact vocabulary matching, no fuzzy acceptance.
	err = svc.UpdateDietProfile(ctx, "a@wellesley.edu", []string{"peanut"}, nil)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("lowercase allergen error = %v, want ErrValidation", err)
	}

	err = svc.UpdateDietProfile(ctx, "a@wellesley.edu", nil, []string{"Paleo"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("unknown restriction error = %v, want ErrValidation", err)
	}
}

func TestUpdateDietProfile_Deduplicates(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, "a@wellesley.edu"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := svc.UpdateDietProfile(ctx, "a@wellesley.edu",
		[]string{"Dairy", "Egg", "Dairy"}, nil); err != nil {
		t.Fatalf("UpdateDietProfile() error = %v", err)
	}

	u := repo.users["a@wellesley.edu"]
	want := []string{"Dairy", "Egg"}
	if len(u.Allergens) != len(want) {
		t.Fatalf("Allergens = %v, want %v", u.Allergens, want)
	}
	for i := range want {
		if u.Allergens[i] != want[i] {
			t.Fatalf("Allergens = %v, want %v", u.Allergens, want)
		}
	}
}

// =========================================================================
// FAVORITES
// =========================================================================

func TestAddFavoriteDish_Validation(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, "a@wellesley.edu"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := svc.AddFavoriteDish(ctx, "a@wellesley.edu", "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank dish error = %v, want ErrValidation", err)
	}

	long := make([]byte, MaxFavoriteDishLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.AddFavoriteDish(ctx, "a@wellesley.edu", string(long))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("oversized dish error = %v, want ErrValidation", err)
	}
}

func TestFavoriteDishes_SetSemantics(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserService(repo)
	ctx := context.Background()
	email := "a@wellesley.edu"

	if _, err := svc.GetOrCreate(ctx, email); err != nil {
		t.Fatalf("setup: %v", err)
	}

	added, err := svc.AddFavoriteDish(ctx, email, " Mac and Cheese ")
	if err != nil || !added {
		t.Fatalf("AddFavoriteDish() = (%v, %v), want (true, nil)", added, err)
	}
	// Trimmed duplicate.
	added, err = svc.AddFavoriteDish(ctx, email, "Mac and Cheese")
	if err != nil {
		t.Fatalf("duplicate AddFavoriteDish() error = %v", err)
	}
	if added {
		t.Error("duplicate add should report false")
	}

	removed, err := svc.RemoveFavoriteDish(ctx, email, "Mac and Cheese")
	if err != nil || !removed {
		t.Fatalf("RemoveFavoriteDish() = (%v, %v), want (true, nil)", removed, err)
	}
	removed, err = svc.RemoveFavoriteDish(ctx, email, "Mac and Cheese")
	if err != nil {
		t.Fatalf("second RemoveFavoriteDish() error = %v", err)
	}
	if removed {
		t.Error("removing an absent dish should report false")
	}
}

func TestUserService_PropagatesRepoFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.failWith = errors.New("disk on fire")
	svc := newTestUserService(repo)

	_, err := svc.GetOrCreate(context.Background(), "a@wellesley.edu")
	if err == nil {
		t.Fatal("GetOrCreate() should surface the repository failure")
	}
	if errors.Is(err, apperror.ErrValidation) {
		t.Error("a database failure must not look like a validation error")
	}
}
