package customer

import (
	accountsvc "github.com/amirasaad/ledger/pkg/service/account"
	"github.com/amirasaad/ledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// Routes registers customer endpoints.
//
// Routes:
//   - POST /customers              : Register a customer.
//   - GET  /customers              : List customers with their active accounts.
//   - POST /customers/:id/accounts : Open an account for the customer.
func Routes(app *fiber.App, svc *accountsvc.Service) {
	app.Post("/customers", CreateCustomer(svc))
	app.Get("/customers", ListCustomers(svc))
	app.Post("/customers/:id/accounts", CreateAccount(svc))
}

// CreateCustomer returns a Fiber handler that registers a customer.
// @Summary Register a customer
// @Tags customers
// @Accept json
// @Produce json
// @Param request body CreateCustomerRequest true "Customer details"
// @Success 201 {object} common.Response "Customer created"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Failure 409 {object} common.ProblemDetails "Identification already registered"
// @Router /customers [post]
func CreateCustomer(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateCustomerRequest](c)
		if input == nil {
			return err
		}
		cust, err := svc.CreateCustomer(c.UserContext(), input.Name, input.Identification)
		if err != nil {
			log.Errorf("Failed to create customer: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create customer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Customer created", ToCustomerDTO(cust))
	}
}

// ListCustomers returns a Fiber handler listing every customer with its active accounts.
// @Summary List customers
// @Tags customers
// @Produce json
// @Success 200 {object} common.Response "Customers"
// @Router /customers [get]
func ListCustomers(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customers, err := svc.ListCustomersWithAccounts(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list customers", err)
		}
		out := make([]CustomerDTO, 0, len(customers))
		for _, cust := range customers {
			out = append(out, FromCustomerWithAccounts(cust))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Customers fetched", out)
	}
}

// CreateAccount returns a Fiber handler that opens an account for the customer in the path.
// @Summary Open an account
// @Tags customers
// @Accept json
// @Produce json
// @Param id path int true "Customer ID"
// @Param request body CreateAccountRequest true "Account details"
// @Success 201 {object} common.Response "Account created"
// @Failure 404 {object} common.ProblemDetails "Customer not found"
// @Failure 409 {object} common.ProblemDetails "Account number already exists"
// @Failure 422 {object} common.ProblemDetails "Invalid initial balance"
// @Router /customers/{id}/accounts [post]
func CreateAccount(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, ok, err := common.ParseIDParam(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err
		}
		balance := decimal.Zero
		if input.InitialBalance != nil {
			balance = *input.InitialBalance
		}
		a, err := svc.CreateAccount(c.UserContext(), customerID, input.Number, balance)
		if err != nil {
			log.Errorf("Failed to create account: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", common.ToAccountDTO(a))
	}
}
