// Package cli is the personaswap command line: one-shot transforms, the
// HTTP and MCP servers, history tools and an interactive TUI.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/apresai/personaswap/internal/config"
	"github.com/apresai/personaswap/internal/embellish"
	"github.com/apresai/personaswap/internal/history"
	"github.com/apresai/personaswap/internal/ingest"
	"github.com/apresai/personaswap/internal/observability"
	"github.com/apresai/personaswap/internal/persona"
	"github.com/apresai/personaswap/internal/progress"
	"github.com/apresai/personaswap/internal/transformer"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "personaswap",
	Short:         "Rewrite messages in the voice of a famous persona",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "personaswap %s\n", Version)
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform [text...]",
	Short: "Transform a message in a persona's voice",
	Example: `  personaswap transform -p yoda "I am going to the store."
  personaswap transform -p sherlock -i notes.txt
  echo "hello friend" | personaswap transform -p bard -i -`,
	RunE: runTransform,
}

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List available personas and their aliases",
	RunE:  runPersonas,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transformations from the configured history store",
	RunE:  runHistory,
}

var (
	flagConfig   string
	flagEnvFile  string
	flagLogLevel string

	flagPersona string
	flagInput   string
	flagSeed    uint64
	flagLines   bool
	flagJSON    bool

	flagHistoryLimit int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "YAML config file (environment variables override it)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Env file to load before reading the environment (default .env when present)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(historyCmd)

	transformCmd.Flags().StringVarP(&flagPersona, "persona", "p", "", "Persona name or alias (e.g. yoda, bard, elon, holmes)")
	transformCmd.Flags().StringVarP(&flagInput, "input", "i", "", "Read the message from a text file, PDF, URL, or - for stdin")
	transformCmd.Flags().Uint64Var(&flagSeed, "seed", 0, "Seed the embellishment choices for reproducible output")
	transformCmd.Flags().BoolVarP(&flagLines, "lines", "l", false, "Transform each non-empty line of the input separately")
	transformCmd.Flags().BoolVar(&flagJSON, "json", false, "Print results as JSON")
	_ = transformCmd.MarkFlagRequired("persona")

	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", history.DefaultLimit, "Number of records to show")
	historyCmd.Flags().BoolVar(&flagJSON, "json", false, "Print records as JSON")
}

func Execute() error {
	return rootCmd.Execute()
}

// app is the wired service stack shared by every command.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	svc     *transformer.Service
	closers []func(context.Context) error
}

func loadConfig() (config.Config, error) {
	var envFiles []string
	if flagEnvFile != "" {
		envFiles = append(envFiles, flagEnvFile)
	}
	cfg, err := config.Load(flagConfig, envFiles...)
	if err != nil {
		return config.Config{}, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger := observability.InitLogger(cfg.Log.Level)
	slog.SetDefault(logger)
	a := &app{cfg: cfg, log: logger}

	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Tracing.ServiceName, Version, cfg.Server.Env)
		if err != nil {
			logger.Warn("Failed to init tracer, continuing without tracing", "error", err)
		} else {
			a.closers = append(a.closers, tp.Shutdown)
		}
	}

	store, err := history.Open(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open history: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return store.Close() })

	a.svc = transformer.New(persona.Default(selectorFor(cfg.Engine)), store, logger)
	return a, nil
}

func selectorFor(e config.Engine) embellish.Selector {
	if e.Seed == 0 {
		return embellish.Global()
	}
	return embellish.NewSeeded(e.Seed)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Error("Shutdown error", "error", err)
		}
	}
	a.closers = nil
}

func runTransform(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text := strings.Join(args, " ")
	switch {
	case flagInput == "" && strings.TrimSpace(text) == "":
		return errors.New("a message argument or --input (-i) is required")
	case flagInput != "" && len(args) > 0:
		return errors.New("message arguments and --input are mutually exclusive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Engine.Seed = flagSeed
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagInput != "" {
		content, err := ingest.Load(ctx, flagInput, cmd.InOrStdin())
		if err != nil {
			return err
		}
		a.log.Debug("Loaded input", "source", content.Source, "words", content.WordCount)
		text = content.Text
	}

	messages := []string{text}
	if lines := splitLines(text); flagLines && len(lines) > 0 {
		messages = lines
	}

	cb, finish := batchProgress(len(messages))
	results, err := transformAll(ctx, a.svc, messages, flagPersona, cb, finish)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, results)
	}
	styled := isTerminal(out)
	for _, res := range results {
		fmt.Fprintln(out, renderResult(res, styled))
	}
	return nil
}

// batchProgress shows a bar on stderr for multi-message runs.
func batchProgress(n int) (progress.Callback, func()) {
	if n < 2 {
		return progress.NopCallback, func() {}
	}
	r := progress.NewBarRenderer(os.Stderr)
	return r.Handle, r.Finish
}

func transformAll(ctx context.Context, svc *transformer.Service, messages []string, key string, cb progress.Callback, finish func()) ([]*transformer.Result, error) {
	defer finish()
	start := time.Now()
	results := make([]*transformer.Result, 0, len(messages))
	for i, msg := range messages {
		res, err := svc.Transform(ctx, msg, key)
		if err != nil {
			ev := progress.NewEvent(i, len(messages), msg, start)
			ev.Error = err
			cb(ev)
			return nil, err
		}
		results = append(results, res)
		cb(progress.NewEvent(i+1, len(messages), res.Transformed, start))
	}
	return results, nil
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func runPersonas(cmd *cobra.Command, args []string) error {
	registry := persona.Default(nil)
	fmt.Fprintln(cmd.OutOrStdout(), renderPersonas(registry))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.svc.History(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, records)
	}
	if len(records) == 0 {
		fmt.Fprintf(out, "No transformations recorded in the %s store.\n", cfg.History.Backend)
		return nil
	}
	fmt.Fprintln(out, renderHistory(records))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
