// Command finctl обслуживает базу трекера: миграции, просмотр и сброс данных
// пользователя, офлайн-проверку банковской выписки.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&migrateCmd{}, "database")
	commander.Register(&showCmd{}, "users")
	commander.Register(&resetCmd{}, "users")
	commander.Register(&reviewCmd{}, "transactions")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
