package account

import (
	"context"

	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/amirasaad/banksim/pkg/dto"
	accountsvc "github.com/amirasaad/banksim/pkg/service/account"
	"github.com/amirasaad/banksim/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// ActorHeader names the caller on whose behalf a deposit or withdrawal runs.
const ActorHeader = "X-Actor"

const (
	defaultActor     = "api"
	defaultListLimit = 50
)

// Routes registers HTTP routes for account-related operations.
//
// Routes:
//   - POST /accounts               : Seed a new account.
//   - GET  /accounts/:id           : Committed balance of the account.
//   - POST /accounts/:id/deposit   : Deposit into the account.
//   - POST /accounts/:id/withdraw  : Withdraw from the account.
//   - POST /accounts/:id/simulate  : Run a batch of operations concurrently.
//   - GET  /accounts/:id/transactions : Journaled transactions, newest first.
func Routes(app *fiber.App, accountSvc *accountsvc.Service) {
	app.Post("/accounts", CreateAccount(accountSvc))
	app.Get("/accounts/:id", GetAccount(accountSvc))
	app.Post("/accounts/:id/deposit", Deposit(accountSvc))
	app.Post("/accounts/:id/withdraw", Withdraw(accountSvc))
	app.Post("/accounts/:id/simulate", Simulate(accountSvc))
	app.Get("/accounts/:id/transactions", GetTransactions(accountSvc))
}

// CreateAccount returns a Fiber handler that seeds an account with an
// initial balance. An existing account number is a conflict.
func CreateAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err
		}
		a, err := accountSvc.CreateAccount(c.UserContext(), dto.AccountCreate{
			ID:      input.ID,
			Owner:   input.Owner,
			Balance: input.Balance,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		log.Infof("Account created: %s", a.ID)
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", toAccountResponse(a))
	}
}

// GetAccount returns a Fiber handler that reports the committed balance.
func GetAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := accountSvc.GetAccount(c.UserContext(), c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", toAccountResponse(a))
	}
}

// Deposit returns a Fiber handler that adds the requested amount.
func Deposit(accountSvc *accountsvc.Service) fiber.Handler {
	return transact(accountSvc.Deposit, "Deposit")
}

// Withdraw returns a Fiber handler that removes the requested amount.
func Withdraw(accountSvc *accountsvc.Service) fiber.Handler {
	return transact(accountSvc.Withdraw, "Withdrawal")
}

type transactFunc func(ctx context.Context, id, actor string, amount decimal.Decimal) (*account.Transaction, error)

func transact(fn transactFunc, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[AmountRequest](c)
		if input == nil {
			return err
		}
		actor := c.Get(ActorHeader, defaultActor)
		ctx := account.WithActor(c.UserContext(), actor)
		tx, err := fn(ctx, c.Params("id"), actor, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, name+" failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, name+" successful", toTransactionResponse(tx))
	}
}

// Simulate returns a Fiber handler that runs every listed operation
// concurrently against one account and reports each outcome along with the
// final committed balance. Individual rejections do not fail the request.
func Simulate(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SimulateRequest](c)
		if input == nil {
			return err
		}
		workers := -1
		if input.Workers != nil {
			workers = *input.Workers
		}
		reqs := make([]accountsvc.TransactionRequest, len(input.Transactions))
		for i, t := range input.Transactions {
			reqs[i] = accountsvc.TransactionRequest{
				Actor:     t.Actor,
				Operation: account.ParseOperation(t.Operation),
				Amount:    t.Amount,
			}
		}
		report, err := accountSvc.Simulate(c.UserContext(), c.Params("id"), workers, reqs)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Simulation failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Simulation finished", toSimulateResponse(report))
	}
}

// GetTransactions returns a Fiber handler that lists journaled transactions.
// The optional limit query parameter defaults to 50.
func GetTransactions(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", defaultListLimit)
		if limit < 0 {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid limit", "limit must not be negative")
		}
		txs, err := accountSvc.ListTransactions(c.UserContext(), c.Params("id"), limit)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		out := make([]TransactionResponse, 0, len(txs))
		for _, tx := range txs {
			out = append(out, toJournalResponse(tx))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", out)
	}
}
