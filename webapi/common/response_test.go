package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/customer"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{customer.ErrInvalidIdentification, fiber.StatusBadRequest},
		{account.ErrAccountNotFound, fiber.StatusNotFound},
		{fmt.Errorf("origin 7: %w", account.ErrAccountNotFound), fiber.StatusNotFound},
		{customer.ErrDuplicateIdentification, fiber.StatusConflict},
		{domain.ErrConcurrencyConflict, fiber.StatusConflict},
		{account.ErrSameAccount, fiber.StatusUnprocessableEntity},
		{account.ErrInactiveAccount, fiber.StatusUnprocessableEntity},
		{account.ErrInsufficientFunds, fiber.StatusUnprocessableEntity},
		{account.ErrInvalidAmount, fiber.StatusUnprocessableEntity},
		{domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable},
		{fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ErrorToStatusCode(tc.err), "%v", tc.err)
	}
}

func problemFor(t *testing.T, handler fiber.Handler) (int, ProblemDetails, string) {
	t.Helper()
	app := fiber.New()
	app.Get("/x", handler)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/x", nil))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var pd ProblemDetails
	require.NoError(t, json.Unmarshal(body, &pd))
	return resp.StatusCode, pd, resp.Header.Get(fiber.HeaderContentType)
}

func TestProblemDetailsJSON(t *testing.T) {
	status, pd, ct := problemFor(t, func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Transfer failed", domain.ErrConcurrencyConflict)
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "application/problem+json", ct)
	assert.Equal(t, "Transfer failed", pd.Title)
	assert.Equal(t, "concurrency_conflict", pd.Kind)
	assert.True(t, pd.Retryable)
	assert.Equal(t, "/x", pd.Instance)

	status, pd, _ = problemFor(t, func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Oops", errors.New("pq: password authentication failed"))
	})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal Server Error", pd.Detail)
	assert.Equal(t, "internal", pd.Kind)

	status, pd, _ = problemFor(t, func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Bad", nil, "custom detail", fiber.StatusBadRequest)
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "custom detail", pd.Detail)
	assert.False(t, pd.Retryable)
}

type sample struct {
	Name string `json:"name" validate:"required"`
}

func TestBindAndValidate(t *testing.T) {
	app := fiber.New()
	app.Post("/x", func(c *fiber.Ctx) error {
		input, err := BindAndValidate[sample](c)
		if input == nil {
			return err
		}
		return c.SendString(input.Name)
	})

	send := func(body string) (int, string) {
		req := httptest.NewRequest(fiber.MethodPost, "/x", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close() //nolint: errcheck
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}

	status, body := send(`{"name":"ok"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body)

	status, body = send(`{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, `"Name":"required"`)
	assert.Contains(t, body, `"kind":"validation"`)

	status, _ = send(`{`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
