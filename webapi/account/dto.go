package account

import (
	"time"

	"github.com/amirasaad/banksim/pkg/dispatcher"
	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/amirasaad/banksim/pkg/task"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//revive:disable

// CreateAccountRequest represents the request body for seeding an account.
type CreateAccountRequest struct {
	ID      string          `json:"id" validate:"required,max=64"`
	Owner   string          `json:"owner" validate:"max=255"`
	Balance decimal.Decimal `json:"balance"`
}

// AmountRequest represents the request body for a deposit or a withdrawal.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransactionRequest is one entry of a simulation.
type TransactionRequest struct {
	Actor     string          `json:"actor" validate:"required,max=64"`
	Operation string          `json:"operation" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

// SimulateRequest represents the request body for a concurrent simulation.
// A missing Workers uses the server default; 0 runs every entry at once.
type SimulateRequest struct {
	Workers      *int                 `json:"workers" validate:"omitempty,gte=0"`
	Transactions []TransactionRequest `json:"transactions" validate:"required,min=1,dive"`
}

// AccountResponse is the committed state of an account.
type AccountResponse struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TransactionResponse describes one confirmed balance change.
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       string          `json:"account_id"`
	Actor           string          `json:"actor,omitempty"`
	Operation       string          `json:"operation"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Balance         decimal.Decimal `json:"balance"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ResultResponse is the outcome of one simulated task.
type ResultResponse struct {
	Actor         string           `json:"actor"`
	Operation     string           `json:"operation"`
	Amount        decimal.Decimal  `json:"amount"`
	Outcome       string           `json:"outcome"`
	Error         string           `json:"error,omitempty"`
	TransactionID *uuid.UUID       `json:"transaction_id,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	DurationMs    int64            `json:"duration_ms"`
}

// SimulateResponse summarizes a simulation.
type SimulateResponse struct {
	AccountID      string           `json:"account_id"`
	InitialBalance decimal.Decimal  `json:"initial_balance"`
	FinalBalance   decimal.Decimal  `json:"final_balance"`
	Succeeded      int              `json:"succeeded"`
	Failed         int              `json:"failed"`
	ElapsedMs      int64            `json:"elapsed_ms"`
	Results        []ResultResponse `json:"results"`
}

func toAccountResponse(a *dto.AccountRead) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Owner:     a.Owner,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toTransactionResponse(tx *account.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              tx.ID,
		AccountID:       tx.AccountID,
		Operation:       tx.Operation.String(),
		Amount:          tx.Amount,
		PreviousBalance: tx.PreviousBalance,
		Balance:         tx.Balance,
		CreatedAt:       tx.CreatedAt,
	}
}

func toJournalResponse(tx *dto.TransactionRead) TransactionResponse {
	return TransactionResponse{
		ID:              tx.ID,
		AccountID:       tx.AccountID,
		Actor:           tx.Actor,
		Operation:       tx.Operation,
		Amount:          tx.Amount,
		PreviousBalance: tx.PreviousBalance,
		Balance:         tx.Balance,
		CreatedAt:       tx.CreatedAt,
	}
}

func toResultResponse(r task.Result) ResultResponse {
	out := ResultResponse{
		Actor:      r.Label,
		Operation:  r.Operation.String(),
		Amount:     r.Amount,
		Outcome:    r.Reason,
		DurationMs: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	if tx := r.Transaction; tx != nil {
		out.TransactionID = &tx.ID
		out.Balance = &tx.Balance
	}
	return out
}

func toSimulateResponse(r dispatcher.Report) SimulateResponse {
	out := SimulateResponse{
		AccountID:      r.AccountID,
		InitialBalance: r.InitialBalance,
		FinalBalance:   r.FinalBalance,
		Succeeded:      r.Succeeded,
		Failed:         r.Failed,
		ElapsedMs:      r.Elapsed.Milliseconds(),
		Results:        make([]ResultResponse, len(r.Results)),
	}
	for i, res := range r.Results {
		out.Results[i] = toResultResponse(res)
	}
	return out
}
