// Command cli runs operator tasks against the configured database.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/amirasaad/fintechflow/infra/initializer"
	"github.com/amirasaad/fintechflow/pkg/app"
	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain/kyc"
	"github.com/amirasaad/fintechflow/pkg/money"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/term"
)

var (
	okf   = color.New(color.FgGreen).PrintfFunc()
	errf  = color.New(color.FgRed).FprintfFunc()
	infof = color.New(color.FgCyan).PrintfFunc()
)

type command struct {
	usage string
	args  int
	run   func(ctx context.Context, a *app.App, args []string) error
}

var commands = map[string]command{
	"promote":      {"promote <email>", 1, promote},
	"create-admin": {"create-admin <email> <full name>", 2, createAdmin},
	"deposit":      {"deposit <pix_key> <amount>", 2, deposit},
	"charge":       {"charge <card_id> <amount> <merchant>", 3, charge},
	"approve-kyc":  {"approve-kyc <kyc_id> [reviewer_email]", 1, approveKYC},
}

func usage() {
	fmt.Println("Usage: cli <command> [arguments]")
	fmt.Println("Commands:")
	for _, name := range []string{"promote", "create-admin", "deposit", "charge", "approve-kyc"} {
		fmt.Println("  " + commands[name].usage)
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		errf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	args := os.Args[2:]
	if len(args) < cmd.args {
		errf(os.Stderr, "Usage: %s\n", cmd.usage)
		os.Exit(2)
	}
	if err := run(cmd, args); err != nil {
		errf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer cleanup()
	a, err := app.New(deps, cfg)
	if err != nil {
		return err
	}
	return cmd.run(context.Background(), a, args)
}

func promote(ctx context.Context, a *app.App, args []string) error {
	u, err := a.UserService.Promote(ctx, args[0])
	if err != nil {
		return err
	}
	okf("%s is now %s\n", u.Email, u.Role)
	return nil
}

func createAdmin(ctx context.Context, a *app.App, args []string) error {
	email := args[0]
	fullName := strings.Join(args[1:], " ")
	password, err := readPassword()
	if err != nil {
		return err
	}
	u, err := a.UserService.Register(ctx, email, password, fullName, "")
	if err != nil {
		return err
	}
	if u, err = a.UserService.Promote(ctx, u.Email); err != nil {
		return err
	}
	okf("Created admin %s (%s)\n", u.Email, u.ID)
	return nil
}

// readPassword reads without echo from a terminal and a plain line otherwise.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Print("Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func deposit(ctx context.Context, a *app.App, args []string) error {
	amount, err := money.Parse(args[1])
	if err != nil {
		return err
	}
	tx, err := a.PixService.Deposit(ctx, args[0], amount, "cli deposit")
	if err != nil {
		return err
	}
	acc, err := a.PixService.GetAccount(ctx, tx.ToUserID)
	if err != nil {
		return err
	}
	okf("Deposited %s to %s\n", amount, args[0])
	infof("Transaction %s, new balance %s\n", tx.ID, acc.Balance)
	return nil
}

func charge(ctx context.Context, a *app.App, args []string) error {
	cardID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid card id: %w", err)
	}
	amount, err := money.Parse(args[1])
	if err != nil {
		return err
	}
	tx, err := a.CardService.Charge(ctx, cardID, amount, strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	okf("Charge approved: %s %s at %s\n", tx.Amount, tx.Currency, tx.MerchantName)
	infof("Transaction %s\n", tx.ID)
	return nil
}

func approveKYC(ctx context.Context, a *app.App, args []string) error {
	kycID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid kyc id: %w", err)
	}
	reviewer := uuid.Nil
	if len(args) > 1 {
		u, err := a.UserService.GetByEmail(ctx, args[1])
		if err != nil {
			return err
		}
		reviewer = u.ID
	}
	doc, err := a.KYCService.Review(ctx, kycID, reviewer, kyc.StatusApproved, "approved from cli")
	if err != nil {
		return err
	}
	okf("KYC %s is %s\n", doc.ID, doc.Status)
	return nil
}
