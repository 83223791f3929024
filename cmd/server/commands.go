package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/grover/internal/config"
	"github.com/phrazzld/grover/internal/generation"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/platform/postgres"
	"github.com/phrazzld/grover/internal/prompts"
	"github.com/phrazzld/grover/internal/usage"
)

// errGenerationFailed is returned by the generate command when the loop ends
// without a valid payload. The outcome is still printed.
var errGenerationFailed = errors.New("generation failed")

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "grover",
		Short:        "Generate and tailor long-form articles with an LLM",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newGenerateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|reset|version]",
		Short:     "Run database migrations",
		Long:      "Run a goose command against the embedded migrations. The default command is up.",
		Args:      migrateArgs,
		ValidArgs: postgres.MigrationCommands,
		RunE:      runMigrate,
	}
}

func migrateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return err
	}
	if len(args) == 1 && !slices.Contains(postgres.MigrationCommands, args[0]) {
		return fmt.Errorf("unknown migration command %q (expected one of %v)", args[0], postgres.MigrationCommands)
	}
	return nil
}

// generateFlags are the options of the generate command.
type generateFlags struct {
	prompt      string
	minWords    int
	keywords    []string
	maxAttempts int
	model       string
}

func newGenerateCommand() *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one generation loop and print the outcome as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.prompt, "prompt", "", "prompt sent on the first attempt")
	cmd.Flags().IntVar(&flags.minWords, "min-words", 0, "minimum word count of the payload")
	cmd.Flags().StringSliceVar(&flags.keywords, "keywords", nil, "keywords the payload must mention")
	cmd.Flags().IntVar(&flags.maxAttempts, "max-attempts", 0, "attempt budget (defaults to generation.max_attempts)")
	cmd.Flags().StringVar(&flags.model, "model", "", "model name (defaults to llm.model_name)")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

// Configuration groups each command validates.
var (
	serveGroups    = config.AllGroups
	migrateGroups  = []config.Group{config.GroupServer, config.GroupDatabase}
	generateGroups = []config.Group{config.GroupServer, config.GroupLLM, config.GroupGeneration}
)

// loadRuntime loads the configuration, validating groups, and the logger.
func loadRuntime(groups ...config.Group) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFor(groups...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, l, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, l, err := loadRuntime(serveGroups...)
	if err != nil {
		return err
	}
	l.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	l.Info("Database connection established")

	if err := postgres.Migrate(ctx, db, "up", l); err != nil {
		_ = db.Close()
		return err
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) == 1 {
		command = args[0]
	}

	cfg, l, err := loadRuntime(migrateGroups...)
	if err != nil {
		return err
	}

	db, err := postgres.Open(cmd.Context(), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	return postgres.Migrate(cmd.Context(), db, command, l)
}

func runGenerate(cmd *cobra.Command, flags generateFlags) error {
	cfg, l, err := loadRuntime(generateGroups...)
	if err != nil {
		return err
	}
	if flags.maxAttempts <= 0 {
		flags.maxAttempts = cfg.Generation.MaxAttempts
	}

	source, err := newGeneratorSource(cfg.LLM, l)
	if err != nil {
		return err
	}
	gen, err := source.Generator(flags.model)
	if err != nil {
		return err
	}

	return generateOnce(cmd.Context(), cmd.OutOrStdout(), gen, flags, generationSettings(cfg).Pricing, l)
}

// generateReport is the JSON printed by the generate command.
type generateReport struct {
	Outcome generation.Outcome `json:"outcome"`
	Usage   []usage.Entry      `json:"usage"`
	Cost    usage.Costs        `json:"cost"`
}

// generateOnce runs the controller against gen and writes the report to out.
func generateOnce(
	ctx context.Context,
	out io.Writer,
	gen generation.Generator,
	flags generateFlags,
	pricing usage.Pricing,
	l *slog.Logger,
) error {
	validators := []generation.Validator{generation.NonEmpty()}
	if flags.minWords > 0 {
		validators = append(validators, generation.MinWordCount(flags.minWords))
	}
	if len(flags.keywords) > 0 {
		validators = append(validators, generation.KeywordCoverage(flags.keywords...))
	}

	outcome := generation.NewController(l).Run(ctx, generation.Request{
		Name:        "cli",
		Prompt:      flags.prompt,
		Validators:  validators,
		MaxAttempts: flags.maxAttempts,
		Expand:      prompts.Default().Expansion(flags.prompt),
	}, gen)

	report := generateReport{
		Outcome: outcome,
		Usage:   usage.EntriesFromOutcome("cli", outcome, pricing, time.Now()),
		Cost:    pricing.Cost(outcome.Usage),
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write outcome: %w", err)
	}

	if !outcome.Succeeded {
		return fmt.Errorf("%w: %s", errGenerationFailed, outcome.FailureReason())
	}
	return nil
}
