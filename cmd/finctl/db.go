package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/MShkut/personal-finance-tracker/internal/config"
	"github.com/MShkut/personal-finance-tracker/internal/database"
	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply database migrations" }
func (*migrateCmd) Usage() string {
	return `finctl migrate

  Applies the embedded migrations for the driver selected by DB_DRIVER.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := database.Migrate(cfg.Database); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("migrations applied (%s)\n", cfg.Database.Driver)
	return subcommands.ExitSuccess
}

type showCmd struct {
	email string
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "print the saved onboarding record of a user" }
func (*showCmd) Usage() string {
	return `finctl show -email <email>

  Prints the stored onboarding record as indented JSON.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email of the user.")
}

func (c *showCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, user, closeStores, err := openUser(ctx, c.email)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	defer closeStores()

	data, err := store.LoadUserData(ctx, user.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if data == nil {
		fmt.Printf("%s has no saved onboarding data\n", user.Email)
		return subcommands.ExitSuccess
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type resetCmd struct {
	email string
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "delete the saved onboarding record of a user" }
func (*resetCmd) Usage() string {
	return `finctl reset -email <email>

  Deletes the onboarding record. The next visit starts the wizard again.
  Transactions and theme are kept.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email of the user.")
}

func (c *resetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, user, closeStores, err := openUser(ctx, c.email)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	defer closeStores()

	if err := store.ResetUserData(ctx, user.ID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("onboarding data of %s deleted\n", user.Email)
	return subcommands.ExitSuccess
}

// openUser подключается к базе и находит пользователя по email.
func openUser(ctx context.Context, email string) (*userdata.Store, models.User, func(), error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, models.User{}, nil, fmt.Errorf("-email is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, models.User{}, nil, err
	}

	stores, err := database.OpenStores(ctx, cfg.Database, slog.Default())
	if err != nil {
		return nil, models.User{}, nil, err
	}

	user, err := stores.Users.GetByEmail(ctx, email)
	if err != nil {
		stores.Close()
		return nil, models.User{}, nil, fmt.Errorf("find user %s: %w", email, err)
	}

	return userdata.NewStore(stores.Records), user, stores.Close, nil
}
