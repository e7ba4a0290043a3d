package common

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	// Kind is the domain error kind, e.g. "business_rule" or "not_found".
	Kind string `json:"kind,omitempty"`
	// Retryable tells the client the same request may succeed if sent again.
	Retryable bool `json:"retryable,omitempty"`
	Errors    any  `json:"errors,omitempty"`
}

// ErrorToStatusCode maps domain error kinds to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrConcurrencyConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidOperation),
		errors.Is(err, domain.ErrBusinessRule),
		errors.Is(err, domain.ErrInvalidReference):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe.Code
		}
		return fiber.StatusInternalServerError
	}
}

// ProblemDetailsJSON writes an application/problem+json response for err.
// Optional args override the defaults: a string replaces the detail and an
// int replaces the status derived from err. Server-side failures never echo
// the underlying error text.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	status := ErrorToStatusCode(err)
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			detail = v
		case int:
			status = v
		}
	}
	if status >= fiber.StatusInternalServerError && len(args) == 0 {
		detail = http.StatusText(status)
	}

	pd := ProblemDetails{
		Type:      "about:blank",
		Title:     title,
		Status:    status,
		Detail:    detail,
		Instance:  c.OriginalURL(),
		Kind:      domain.KindOf(err),
		Retryable: domain.IsRetryable(err),
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		pd.Errors = fields
	}
	if pd.Kind == "internal" && status < fiber.StatusInternalServerError {
		pd.Kind = ""
		if status == fiber.StatusBadRequest {
			pd.Kind = "validation"
		}
	}
	return c.Status(status).JSON(pd, "application/problem+json")
}

// SuccessResponseJSON writes a Response envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// BindAndValidate parses the request body into T and validates it using go-playground/validator.
// On failure the problem response is already written and the returned pointer is nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		return nil, ProblemDetailsJSON(c, "Validation failed", err, "request body failed validation", fiber.StatusBadRequest)
	}
	return &input, nil
}

// ParseIDParam reads a positive integer route parameter. On failure the
// problem response is already written and ok is false.
func ParseIDParam(c *fiber.Ctx, name string) (id int64, ok bool, err error) {
	id, perr := strconv.ParseInt(c.Params(name), 10, 64)
	if perr != nil || id <= 0 {
		return 0, false, ProblemDetailsJSON(c, "Invalid "+name, perr, name+" must be a positive integer", fiber.StatusBadRequest)
	}
	return id, true, nil
}
