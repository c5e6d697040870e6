package main

import (
	"context"

	"github.com/abiosoft/ishell/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aegis/internal/journal"
	"aegis/internal/logger"
	"aegis/internal/output"
	"aegis/internal/projects"
	"aegis/internal/services"
	"aegis/internal/shell"
	"aegis/internal/testutils"
	"aegis/internal/version"
	"aegis/internal/workspace"
)

// newPrinter builds the shell printer: deterministic plain text in test mode,
// the selected theme otherwise. A wrap width of zero keeps the default.
func newPrinter(themeName string, width int, test bool) (*output.Printer, error) {
	if test {
		return output.NewPrinter(output.TestMode(), output.WithWrapWidth(width)), nil
	}
	provider, err := output.NewThemeStyleProvider(themeName)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(output.WithStyles(provider), output.WithWrapWidth(width)), nil
}

// buildRegistry opens the journal, constructs the model capability and registers
// every service the shell needs.
func buildRegistry(cfg *services.Config, printer *output.Printer, test bool) (*services.Registry, error) {
	store := projects.NewStore(cfg.Root)
	if err := store.EnsureLayout(); err != nil {
		return nil, err
	}

	model, err := services.NewChatModel(cfg.Provider)
	if err != nil {
		return nil, err
	}

	var j *journal.Journal
	if cfg.JournalPath != "" {
		j, err = journal.Open(cfg.JournalPath,
			journal.WithClock(testutils.ClockFunc(test)),
			journal.WithIDGenerator(testutils.UUIDFunc(test)))
		if err != nil {
			return nil, err
		}
	}
	journalService := services.NewJournalService(j)

	ws := workspace.New()
	sessions := services.NewSessionService(ws, model)
	sessions.SetRecorder(journalService)
	sessions.SetProgressIndicator(output.NewSpinner(printer))

	registry := services.NewRegistry()
	for _, svc := range []services.Service{
		journalService,
		sessions,
		services.NewForwardingService(ws, sessions),
		services.NewProjectService(ws, store, sessions),
	} {
		if err := registry.RegisterService(svc); err != nil {
			_ = journalService.Shutdown()
			return nil, err
		}
	}
	return registry, nil
}

func loadConfig() (*services.Config, error) {
	return services.NewConfigurationService(viper.GetViper(), services.ConfigurationOptions{TestMode: testMode}).Load()
}

func runShell(_ *cobra.Command, _ []string) error {
	logger.Info("Starting Aegis", "version", version.String(), "development", version.IsDevelopment())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printer, err := newPrinter(theme, wrapWidth, testMode)
	if err != nil {
		return err
	}
	output.SetGlobalPrinter(printer)

	registry, err := buildRegistry(cfg, printer, testMode)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sh, err := shell.New(ctx, registry, printer)
	if err != nil {
		_ = registry.ShutdownAll()
		return err
	}
	logger.Info("Services initialized", "services", registry.Names(), "root", cfg.Root, "provider", cfg.Provider.Provider)

	interactive := ishell.New()
	sh.Attach(interactive)
	sh.Welcome()
	interactive.Run()

	cancel()
	shutdownErr := sh.Shutdown()
	if shutdownErr != nil {
		logger.Error("Shutdown failed", "error", shutdownErr)
	}
	printer.Println(shell.ExitMessage)
	return shutdownErr
}
