package account

import (
	"time"

	"github.com/amirasaad/ledger/pkg/dto"
	accountsvc "github.com/amirasaad/ledger/pkg/service/account"
	"github.com/amirasaad/ledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

//revive:disable

// AccountWithOwnerDTO is an active account together with its owner's name.
type AccountWithOwnerDTO struct {
	common.AccountDTO
	CustomerName string `json:"customer_name"`
}

// DeactivateResponse echoes the account state after deactivation.
type DeactivateResponse struct {
	ID            int64     `json:"id"`
	Active        bool      `json:"active"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}

func toAccountWithOwnerDTO(a *dto.AccountWithOwner) AccountWithOwnerDTO {
	return AccountWithOwnerDTO{
		AccountDTO:   common.FromAccountRead(a.AccountRead),
		CustomerName: a.CustomerName,
	}
}

// Routes registers account endpoints.
//
// Routes:
//   - GET  /accounts                  : List active accounts with owner name.
//   - GET  /accounts/:id              : Get one account in any state.
//   - POST /accounts/:id/deactivate   : Deactivate an account.
//   - GET  /accounts/:id/transactions : List ledger entries for an account, newest first.
func Routes(app *fiber.App, svc *accountsvc.Service) {
	app.Get("/accounts", ListAccounts(svc))
	app.Get("/accounts/:id", GetAccount(svc))
	app.Post("/accounts/:id/deactivate", Deactivate(svc))
	app.Get("/accounts/:id/transactions", GetTransactions(svc))
}

// ListAccounts returns a Fiber handler listing active accounts.
// @Summary List active accounts
// @Tags accounts
// @Produce json
// @Success 200 {object} common.Response "Accounts"
// @Router /accounts [get]
func ListAccounts(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accounts, err := svc.ListActiveAccountsWithOwner(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		out := make([]AccountWithOwnerDTO, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, toAccountWithOwnerDTO(a))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", out)
	}
}

// GetAccount returns a Fiber handler for a single account.
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} common.Response "Account"
// @Failure 404 {object} common.ProblemDetails "Account not found"
// @Router /accounts/{id} [get]
func GetAccount(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseIDParam(c, "id")
		if !ok {
			return err
		}
		a, err := svc.GetAccount(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", common.ToAccountDTO(a))
	}
}

// Deactivate returns a Fiber handler that deactivates an account.
// Deactivating an inactive account succeeds.
// @Summary Deactivate an account
// @Tags accounts
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} common.Response "Account deactivated"
// @Failure 404 {object} common.ProblemDetails "Account not found"
// @Router /accounts/{id}/deactivate [post]
func Deactivate(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseIDParam(c, "id")
		if !ok {
			return err
		}
		if err := svc.DeactivateAccount(c.UserContext(), id); err != nil {
			log.Errorf("Failed to deactivate account %d: %v", id, err)
			return common.ProblemDetailsJSON(c, "Failed to deactivate account", err)
		}
		a, err := svc.GetAccount(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account deactivated", DeactivateResponse{
			ID:            a.ID,
			Active:        a.Active,
			DeactivatedAt: a.UpdatedAt,
		})
	}
}

// GetTransactions returns a Fiber handler listing the account's ledger entries.
// @Summary List account transactions
// @Tags accounts
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} common.Response "Transactions"
// @Failure 404 {object} common.ProblemDetails "Account not found"
// @Router /accounts/{id}/transactions [get]
func GetTransactions(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.ParseIDParam(c, "id")
		if !ok {
			return err
		}
		txs, err := svc.ListTransactions(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		out := make([]common.TransactionDTO, 0, len(txs))
		for _, tx := range txs {
			out = append(out, common.ToTransactionDTO(tx))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", out)
	}
}
