package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/MShkut/personal-finance-tracker/internal/forms"
	"github.com/MShkut/personal-finance-tracker/internal/repository/memory"
	"github.com/MShkut/personal-finance-tracker/internal/review"
	"github.com/MShkut/personal-finance-tracker/internal/theme"
	"github.com/MShkut/personal-finance-tracker/internal/transactions"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

type reviewCmd struct {
	sort     string
	filter   string
	currency string
}

func (*reviewCmd) Name() string     { return "review" }
func (*reviewCmd) Synopsis() string { return "categorize a bank statement offline and print the review table" }
func (*reviewCmd) Usage() string {
	return `finctl review [-sort date|amount|confidence] [-filter all|low-confidence|unconfirmed] <file.csv>

  Imports the CSV into a throwaway in-memory store, runs the rule based
  categorizer and prints the review surface as a table. Nothing is saved.
`
}

func (c *reviewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sort, "sort", review.SortDate, "Sort key.")
	f.StringVar(&c.filter, "filter", review.FilterAll, "Filter key.")
	f.StringVar(&c.currency, "currency", forms.DefaultCurrency, "Currency code for amounts.")
}

func (c *reviewCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one CSV file")
		return subcommands.ExitUsageError
	}

	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	if err := c.run(ctx, os.Stdout, file); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// run импортирует выписку во временное хранилище и печатает таблицу проверки в out.
func (c *reviewCmd) run(ctx context.Context, out io.Writer, statement io.Reader) error {
	service := transactions.NewService(userdata.NewStore(memory.NewRecordStore()), nil, nil, slog.Default(), c.currency)
	userID := uuid.New()

	imported, err := service.Import(ctx, userID, statement)
	if err != nil {
		return err
	}

	result, err := service.Review(ctx, userID, review.Options{SortBy: c.sort, FilterBy: c.filter}, theme.Light)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDESCRIPTION\tAMOUNT\tCATEGORY\tCONFIDENCE\tSTATUS\tSPLIT")
	for _, item := range result.Items {
		split := ""
		if item.SplitWorthy {
			split = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.DateDisplay,
			item.Transaction.Description,
			item.AmountDisplay,
			item.CategoryName,
			item.ConfidenceLabel,
			item.Status,
			split,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if result.EmptyMessage != "" {
		fmt.Fprintln(out, result.EmptyMessage)
	}
	if result.Summary != "" {
		fmt.Fprintln(out, result.Summary)
	}
	fmt.Fprintf(out, "imported %d, low confidence %d, uncategorized %d\n",
		imported.Imported, imported.LowConfidence, imported.Uncategorized)
	for _, name := range sortedKeys(result.Stats.Display) {
		fmt.Fprintf(out, "  %s: %s\n", name, result.Stats.Display[name])
	}
	return nil
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
