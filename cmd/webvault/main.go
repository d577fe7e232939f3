package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/solvang/webvault/cmd/webvault/commands"
	"github.com/solvang/webvault/internal/version"
)

func main() {
	// Optional .env for NATS credentials and similar local overrides.
	_ = godotenv.Load()

	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("webvault"),
		kong.Description("Export a markdown vault as a static site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	if err := ctx.Run(&commands.Global{Logger: slog.Default()}); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
