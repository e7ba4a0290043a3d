package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	headerColor  = color.New(color.FgCyan, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
)

type command struct {
	usage string
	nargs int
	run   func(c *cli, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"create-customer": {"create-customer <name> <identification>", 2, (*cli).createCustomer},
	"create-account":  {"create-account <customer_id> <number> <initial_balance>", 3, (*cli).createAccount},
	"deactivate":      {"deactivate <account_id>", 1, (*cli).deactivate},
	"transfer":        {"transfer <origin_id> <destination_id> <amount>", 3, (*cli).transfer},
	"customers":       {"customers", 0, (*cli).customers},
	"accounts":        {"accounts", 0, (*cli).accounts},
	"transactions":    {"transactions <account_id>", 1, (*cli).transactions},
}

var commandOrder = []string{
	"create-customer", "create-account", "deactivate", "transfer",
	"customers", "accounts", "transactions",
}

// ErrUsage is returned for unknown commands and wrong argument counts.
var ErrUsage = errors.New("usage")

type cli struct {
	app *app.App
	out io.Writer
}

func usage(w io.Writer) {
	_, _ = headerColor.Fprintln(w, "Usage: cli <command> [arguments]")
	for _, name := range commandOrder {
		_, _ = fmt.Fprintln(w, "  "+commands[name].usage)
	}
}

func (c *cli) exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage(c.out)
		return ErrUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		usage(c.out)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	if len(args)-1 != cmd.nargs {
		return fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
	}
	return cmd.run(c, ctx, args[1:])
}

func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return id, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func (c *cli) createCustomer(ctx context.Context, args []string) error {
	cust, err := c.app.AccountService.CreateCustomer(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	_, _ = successColor.Fprintf(c.out, "Customer created: ID=%d Name=%s Identification=%s\n", cust.ID, cust.Name, cust.Identification)
	return nil
}

func (c *cli) createAccount(ctx context.Context, args []string) error {
	customerID, err := parseID("customer_id", args[0])
	if err != nil {
		return err
	}
	balance, err := parseAmount(args[2])
	if err != nil {
		return err
	}
	a, err := c.app.AccountService.CreateAccount(ctx, customerID, args[1], balance)
	if err != nil {
		return err
	}
	_, _ = successColor.Fprintf(c.out, "Account created: ID=%d Number=%s Balance=%s\n", a.ID, a.Number, a.Balance.StringFixed(account.Scale))
	return nil
}

func (c *cli) deactivate(ctx context.Context, args []string) error {
	id, err := parseID("account_id", args[0])
	if err != nil {
		return err
	}
	if err := c.app.AccountService.DeactivateAccount(ctx, id); err != nil {
		return err
	}
	_, _ = successColor.Fprintf(c.out, "Account %d deactivated\n", id)
	return nil
}

func (c *cli) transfer(ctx context.Context, args []string) error {
	origin, err := parseID("origin_id", args[0])
	if err != nil {
		return err
	}
	dest, err := parseID("destination_id", args[1])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		return err
	}
	tx, err := c.app.TransferService.Transfer(ctx, origin, dest, amount)
	if err != nil {
		return err
	}
	_, _ = successColor.Fprintf(c.out, "Transferred %s from %d to %d. Reference=%s\n",
		tx.Amount.StringFixed(account.Scale), origin, dest, tx.Reference)
	return nil
}

func (c *cli) customers(ctx context.Context, _ []string) error {
	list, err := c.app.AccountService.ListCustomersWithAccounts(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = headerColor.Fprintln(tw, "ID\tNAME\tIDENTIFICATION\tACCOUNTS")
	for _, cust := range list {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", cust.ID, cust.Name, cust.Identification, len(cust.Accounts))
		for _, a := range cust.Accounts {
			_, _ = mutedColor.Fprintf(tw, "\t  %s\t%s\t\n", a.Number, a.Balance.StringFixed(account.Scale))
		}
	}
	return tw.Flush()
}

func (c *cli) accounts(ctx context.Context, _ []string) error {
	list, err := c.app.AccountService.ListActiveAccountsWithOwner(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = headerColor.Fprintln(tw, "ID\tNUMBER\tBALANCE\tOWNER")
	for _, a := range list {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, a.Number, a.Balance.StringFixed(account.Scale), a.CustomerName)
	}
	return tw.Flush()
}

func (c *cli) transactions(ctx context.Context, args []string) error {
	id, err := parseID("account_id", args[0])
	if err != nil {
		return err
	}
	list, err := c.app.AccountService.ListTransactions(ctx, id)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	_, _ = headerColor.Fprintln(tw, "REFERENCE\tTIMESTAMP\tAMOUNT\tDESCRIPTION")
	for _, tx := range list {
		sign := "+"
		if tx.OriginAccountID == id {
			sign = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s%s\t%s\n",
			tx.Reference, tx.Timestamp.Format("2006-01-02 15:04:05"), sign, tx.Amount.StringFixed(account.Scale), tx.Description)
	}
	return tw.Flush()
}
