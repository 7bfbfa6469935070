// Command bulk-create creates one marksheet per student of a class from a
// template file, without going through the web form.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/stemsi/marksheet-builder/internal/backend"
	"github.com/stemsi/marksheet-builder/internal/config"
	"github.com/stemsi/marksheet-builder/internal/logger"
	"github.com/stemsi/marksheet-builder/internal/service"
	"github.com/stemsi/marksheet-builder/internal/validator"
)

func main() {
	cfg := config.Load()

	// Pretty logs and colors only when a person is watching.
	format := cfg.LogFormat
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		format = "json"
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
	log := logger.New(os.Stderr, cfg.LogLevel, format)

	validator.Setup()

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, log)
	cli := &commandLine{
		defaults:    cfg.Defaults,
		templates:   service.NewTemplateService(client, nil, log),
		submissions: service.NewSubmissionService(client, service.NewStatusTracker(), log),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}

	// Interrupting stops before the next student; created marksheets stay.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, errHelp) {
			log.Error().Err(err).Msg("bulk-create failed")
		}
		stop()
		os.Exit(1)
	}
}
