package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wcrave/wellesley-crave/internal/auth"
	"github.com/wcrave/wellesley-crave/internal/repository/sqlite"
	"github.com/wcrave/wellesley-crave/internal/service"
)

// testEnv wires real services over an in-memory database. Handler tests run
// against the same stack production runs, minus the router and the vendor.
type testEnv struct {
	users   *service.UserService
	journal *service.JournalService
	logger  *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		users:   service.NewUserService(db, logger),
		journal: service.NewJournalService(db, logger),
		logger:  logger,
	}
}

// authedRequest builds a request that already passed the auth middleware,
// carrying email in its context the way RequireAuth would put it there.
func authedRequest(method, target, body, email string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(auth.WithEmail(req.Context(), email))
}
