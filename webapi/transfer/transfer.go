package transfer

import (
	"errors"

	"github.com/amirasaad/ledger/pkg/domain"
	transfersvc "github.com/amirasaad/ledger/pkg/service/transfer"
	"github.com/amirasaad/ledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// HeaderIdempotencyKey carries the client-chosen key that makes a transfer request safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

//revive:disable

// TransferRequest represents the request body for moving funds between accounts.
type TransferRequest struct {
	OriginAccountID      int64            `json:"origin_account_id" validate:"required,gt=0"`
	DestinationAccountID int64            `json:"destination_account_id" validate:"required,gt=0"`
	Amount               *decimal.Decimal `json:"amount" validate:"required"`
}

// TransferResponse wraps the ledger entry of a committed transfer.
type TransferResponse struct {
	Transaction common.TransactionDTO `json:"transaction"`
	// Replayed is true when the response repeats an earlier request with the same idempotency key.
	Replayed bool `json:"replayed"`
}

// Routes registers transfer endpoints.
func Routes(app *fiber.App, svc *transfersvc.Service) {
	app.Post("/transfers", Transfer(svc))
}

// Transfer returns a Fiber handler that moves funds between two accounts.
// With an Idempotency-Key header, repeating the request returns the original
// transaction with status 200 instead of transferring again.
// @Summary Transfer funds
// @Tags transfers
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body TransferRequest true "Transfer details"
// @Success 201 {object} common.Response "Transfer committed"
// @Success 200 {object} common.Response "Transfer replayed"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Failure 404 {object} common.ProblemDetails "Account not found"
// @Failure 409 {object} common.ProblemDetails "Concurrent conflict, retry"
// @Failure 422 {object} common.ProblemDetails "Business rule violated"
// @Failure 503 {object} common.ProblemDetails "Store unavailable"
// @Router /transfers [post]
func Transfer(svc *transfersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		key := c.Get(HeaderIdempotencyKey)
		if len(key) > 255 {
			return common.ProblemDetailsJSON(c, "Invalid idempotency key", nil, "Idempotency-Key must be at most 255 characters", fiber.StatusBadRequest)
		}

		tx, replayed, err := svc.TransferOnce(c.UserContext(), key, input.OriginAccountID, input.DestinationAccountID, *input.Amount)
		if err != nil {
			if errors.Is(err, transfersvc.ErrIdempotencyUnavailable) {
				return common.ProblemDetailsJSON(c, "Idempotency not supported", err, err.Error(), fiber.StatusNotImplemented)
			}
			if !errors.Is(err, domain.ErrBusinessRule) {
				log.Errorf("Transfer failed: %v", err)
			}
			return common.ProblemDetailsJSON(c, "Transfer failed", err)
		}

		status, message := fiber.StatusCreated, "Transfer committed"
		if replayed {
			status, message = fiber.StatusOK, "Transfer replayed"
		}
		return common.SuccessResponseJSON(c, status, message, TransferResponse{
			Transaction: common.ToTransactionDTO(tx),
			Replayed:    replayed,
		})
	}
}
