package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirasaad/ledger/infra"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory SQLite store with the ledger schema.
// A single connection keeps the in-memory database alive and serializes
// transactions, which matches the store's serializable guarantee.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	cfg := &config.DB{
		Url:          "sqlite://file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		AutoMigrate:  true,
		Retry:        &config.Retry{MaxAttempts: 1},
	}
	db, err := infra.NewDBConnection(context.Background(), cfg, "test", DiscardLogger())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// DiscardLogger returns a logger that drops all records.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MakeRequestWithApp performs an in-process request against a Fiber app.
// headers are given as alternating key/value pairs.
func MakeRequestWithApp(app *fiber.App, method, path, body string, headers ...string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		panic(err)
	}
	return resp
}
