package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/amirasaad/banksim/infra/initializer"
	"github.com/amirasaad/banksim/pkg/config"
	"github.com/amirasaad/banksim/pkg/dispatcher"
	"github.com/amirasaad/banksim/pkg/domain/account"
	"github.com/amirasaad/banksim/pkg/dto"
	"github.com/amirasaad/banksim/pkg/repository"
	accountsvc "github.com/amirasaad/banksim/pkg/service/account"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  demo                                   seed account 111 and race two withdrawals
  seed <account_id> <owner> <balance>
  balance <account_id>
  deposit <account_id> <amount> [actor]
  withdraw <account_id> <amount> [actor]
  simulate <account_id> <actor:operation:amount>...`

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	infoColor = color.New(color.FgCyan, color.Bold)
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		failColor.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		failColor.Fprintln(os.Stderr, "Failed to initialize dependencies:", err)
		os.Exit(1)
	}
	err = run(context.Background(), accountsvc.NewService(*deps), os.Args[1:], os.Stdout)
	if cerr := deps.Close(); cerr != nil {
		failColor.Fprintln(os.Stderr, "Failed to release dependencies:", cerr)
	}
	if err != nil {
		failColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *accountsvc.Service, args []string, out io.Writer) error {
	cmd := "demo"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "demo":
		return demo(ctx, svc, out)
	case "seed":
		if len(args) < 3 {
			return errors.New("usage: seed <account_id> <owner> <balance>")
		}
		balance, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("invalid balance: %w", err)
		}
		a, err := svc.CreateAccount(ctx, dto.AccountCreate{ID: args[0], Owner: args[1], Balance: balance})
		if err != nil {
			return err
		}
		okColor.Fprintf(out, "Account %s created for %s with balance %s\n", a.ID, a.Owner, a.Balance)
	case "balance":
		if len(args) < 1 {
			return errors.New("usage: balance <account_id>")
		}
		a, err := svc.GetAccount(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Account %s balance: %s\n", a.ID, a.Balance)
	case "deposit", "withdraw":
		if len(args) < 2 {
			return fmt.Errorf("usage: %s <account_id> <amount> [actor]", cmd)
		}
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		actor := "cli"
		if len(args) > 2 {
			actor = args[2]
		}
		res, err := svc.Execute(ctx, args[0], accountsvc.TransactionRequest{
			Actor:     actor,
			Operation: account.ParseOperation(cmd),
			Amount:    amount,
		})
		if err != nil {
			return err
		}
		if res.Err != nil {
			failColor.Fprintf(out, "%s %s %s failed: %v\n", actor, cmd, amount, res.Err)
			return nil
		}
		okColor.Fprintf(out, "%s %s %s ok. New balance: %s\n", actor, cmd, amount, res.Transaction.Balance)
	case "simulate":
		if len(args) < 2 {
			return errors.New("usage: simulate <account_id> <actor:operation:amount>...")
		}
		reqs, err := parseRequests(args[1:])
		if err != nil {
			return err
		}
		report, err := svc.Simulate(ctx, args[0], -1, reqs)
		if err != nil {
			return err
		}
		printReport(out, report)
	default:
		fmt.Fprintln(out, usage)
		return fmt.Errorf("unknown command: %s", cmd)
	}
	return nil
}

// demo seeds account 111 with 1,000,000 unless it exists, then races an
// 800,000 and a 700,000 withdrawal against it.
func demo(ctx context.Context, svc *accountsvc.Service, out io.Writer) error {
	_, err := svc.CreateAccount(ctx, dto.AccountCreate{
		ID:      "111",
		Owner:   "Budi",
		Balance: decimal.NewFromInt(1_000_000),
	})
	if err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
		return err
	}
	report, err := svc.Simulate(ctx, "111", 0, []accountsvc.TransactionRequest{
		{Actor: "Adi", Operation: account.OperationWithdraw, Amount: decimal.NewFromInt(800_000)},
		{Actor: "Caca", Operation: account.OperationWithdraw, Amount: decimal.NewFromInt(700_000)},
	})
	if err != nil {
		return err
	}
	printReport(out, report)
	return nil
}

func parseRequests(args []string) ([]accountsvc.TransactionRequest, error) {
	reqs := make([]accountsvc.TransactionRequest, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid transaction %q, want actor:operation:amount", arg)
		}
		amount, err := decimal.NewFromString(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid amount in %q: %w", arg, err)
		}
		reqs = append(reqs, accountsvc.TransactionRequest{
			Actor:     parts[0],
			Operation: account.ParseOperation(parts[1]),
			Amount:    amount,
		})
	}
	return reqs, nil
}

func printReport(out io.Writer, r dispatcher.Report) {
	infoColor.Fprintf(out, "Account %s initial balance: %s\n", r.AccountID, r.InitialBalance)
	for _, res := range r.Results {
		if res.Succeeded() {
			okColor.Fprintf(out, "  %-8s %-8s %12s  ok       balance %s\n",
				res.Label, res.Operation, res.Amount, res.Transaction.Balance)
			continue
		}
		failColor.Fprintf(out, "  %-8s %-8s %12s  %s\n", res.Label, res.Operation, res.Amount, res.Reason)
	}
	infoColor.Fprintf(out, "Final balance: %s (%d succeeded, %d failed in %s)\n",
		r.FinalBalance, r.Succeeded, r.Failed, r.Elapsed.Round(time.Millisecond))
}
