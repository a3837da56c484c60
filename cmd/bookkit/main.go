// Package main provides the CLI entrypoint for bookkit.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/bookkit/internal/config"
	"github.com/verte-zerg/bookkit/internal/fsutil"
	"github.com/verte-zerg/bookkit/internal/logging"
	"github.com/verte-zerg/bookkit/internal/manuscript"
	"github.com/verte-zerg/bookkit/internal/model"
	"github.com/verte-zerg/bookkit/internal/progress"
	"github.com/verte-zerg/bookkit/internal/progressui"
	"github.com/verte-zerg/bookkit/internal/stats"
	"github.com/verte-zerg/bookkit/internal/store"
	"github.com/verte-zerg/bookkit/internal/zenn"
)

const (
	defaultReportFile   = "progress-report.json"
	defaultCharsPerPage = 400
	defaultTextWeight   = 0.7
	defaultLagging      = 0
	defaultHistoryLast  = 10
)

var verbose bool

var (
	progressOutput       string
	progressBarWidth     int
	progressCharsPerPage int
	progressTextWeight   float64
	progressLagging      int
	progressRecord       bool
	progressDescriptors  []string
)

var (
	convertOutput    string
	convertImageBase string
)

var historyLast int

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bookkit",
		Short:         "Manuscript progress and publishing toolkit",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// bookRootArg requires exactly one book root and prints usage otherwise.
func bookRootArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		if err := cmd.Usage(); err != nil {
			return err
		}
		return fmt.Errorf("expected exactly one book root directory, got %d arguments", len(args))
	}
	return nil
}

// environment carries the resolved env, config file and logger for a command.
type environment struct {
	env    config.Env
	file   config.FileConfig
	logger *zap.Logger
}

func loadEnvironment() (environment, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return environment{}, err
	}
	level := env.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level)
	if err != nil {
		return environment{}, err
	}
	fileCfg, err := config.LoadConfig(env.ConfigPath)
	if err != nil {
		return environment{}, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Debug("loaded configuration",
		zap.String("config", env.ConfigPath),
		zap.String("db", env.DBPath))
	return environment{env: env, file: fileCfg, logger: logger}, nil
}

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress <root>",
		Short: "Print and save the manuscript progress report",
		Args:  bookRootArg,
		RunE:  runProgressCmd,
	}
	cmd.Flags().StringVarP(&progressOutput, "output", "o", defaultReportFile, "report path (.json or .yaml), relative to the book root")
	cmd.Flags().IntVar(&progressBarWidth, "bar-width", stats.DefaultBarWidth, "progress bar width")
	cmd.Flags().IntVar(&progressCharsPerPage, "chars-per-page", defaultCharsPerPage, "characters counted as one page")
	cmd.Flags().Float64Var(&progressTextWeight, "text-weight", defaultTextWeight, "weight of text progress (0-1); exercises get the rest")
	cmd.Flags().IntVar(&progressLagging, "lagging", defaultLagging, "list the N least advanced chapters")
	cmd.Flags().BoolVar(&progressRecord, "record", false, "record the report in the history database")
	cmd.Flags().StringSliceVar(&progressDescriptors, "descriptor", manuscript.DefaultDescriptors, "build descriptor file names counted as code examples")
	return cmd
}

func runProgressCmd(cmd *cobra.Command, args []string) error {
	root := args[0]
	envr, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer syncLogger(envr.logger)

	if err := applyProgressConfig(cmd, envr.file.Progress); err != nil {
		return err
	}
	scoring := model.Scoring{CharsPerPage: progressCharsPerPage, TextWeight: progressTextWeight}

	analyzer := manuscript.NewAnalyzer(root, progressDescriptors, envr.logger)
	report, err := progress.NewGenerator(analyzer, scoring).Generate()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := stats.RenderOptions{
		BarWidth: progressBarWidth,
		Lagging:  progressLagging,
		Color:    stats.ShouldUseColor(out, envr.env.ColorDisabled()),
	}
	if err := stats.RenderReport(out, report, opts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	path := config.ResolvePath(root, progressOutput)
	if err := progress.Save(path, report); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "\nReport saved to: %s\n", path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if !progressRecord {
		return nil
	}
	runID, err := recordRun(cmd.Context(), envr.env.DBPath, root, report)
	if err != nil {
		return err
	}
	envr.logger.Info("recorded progress run", zap.String("run_id", runID), zap.String("db", envr.env.DBPath))
	return nil
}

func applyProgressConfig(cmd *cobra.Command, cfg config.ProgressConfig) error {
	applyStringConfig(cmd, "output", &progressOutput, cfg.ReportFile)
	applyIntConfig(cmd, "bar-width", &progressBarWidth, cfg.BarWidth)
	applyIntConfig(cmd, "chars-per-page", &progressCharsPerPage, cfg.CharsPerPage)
	applyFloatConfig(cmd, "text-weight", &progressTextWeight, cfg.TextWeight)
	applyIntConfig(cmd, "lagging", &progressLagging, cfg.Lagging)
	applyBoolConfig(cmd, "record", &progressRecord, cfg.Record)
	applyStringSliceConfig(cmd, "descriptor", &progressDescriptors, cfg.Descriptors)
	return validateProgressConfig()
}

func validateProgressConfig() error {
	scoring := model.Scoring{CharsPerPage: progressCharsPerPage, TextWeight: progressTextWeight}
	if err := validateScoring(scoring); err != nil {
		return err
	}
	if progressBarWidth <= 0 {
		return fmt.Errorf("--bar-width must be > 0")
	}
	if progressLagging < 0 {
		return fmt.Errorf("--lagging must be >= 0")
	}
	if strings.TrimSpace(progressOutput) == "" {
		return fmt.Errorf("--output must not be empty")
	}
	if len(progressDescriptors) == 0 {
		return fmt.Errorf("--descriptor must name at least one file")
	}
	return nil
}

func validateScoring(scoring model.Scoring) error {
	if scoring.CharsPerPage <= 0 {
		return fmt.Errorf("--chars-per-page must be > 0")
	}
	if scoring.TextWeight < 0 || scoring.TextWeight > 1 {
		return fmt.Errorf("--text-weight must be between 0 and 1")
	}
	return nil
}

func recordRun(ctx context.Context, dbPath, root string, report model.Report) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	runID, err := st.InsertRun(ctx, absRoot, report)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return runID, nil
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <root>",
		Short: "Convert chapters into Zenn articles",
		Args:  bookRootArg,
		RunE:  runConvertCmd,
	}
	cmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output directory, relative to the book root (default build/output/zenn)")
	cmd.Flags().StringVar(&convertImageBase, "image-base", "", "base URL for relative image paths")
	return cmd
}

func runConvertCmd(cmd *cobra.Command, args []string) error {
	root := args[0]
	envr, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer syncLogger(envr.logger)

	cfg := envr.file.Convert
	applyStringConfig(cmd, "output", &convertOutput, cfg.OutputDir)
	applyStringConfig(cmd, "image-base", &convertImageBase, cfg.ImageBase)
	outputDir := config.DefaultArticleDir(root)
	if strings.TrimSpace(convertOutput) != "" {
		outputDir = config.ResolvePath(root, convertOutput)
	}

	opts := convertOptions(cfg)
	opts.ImageBase = convertImageBase

	analyzer := manuscript.NewAnalyzer(root, manuscript.DefaultDescriptors, envr.logger)
	results, err := zenn.NewConverter(analyzer, outputDir, opts, envr.logger).ConvertAll()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, res := range results {
		if _, err := fmt.Fprintf(out, "Converted: %s -> %s\n", res.Source, res.Output); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(out, "Converted %d chapters into %s\n", len(results), outputDir); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func convertOptions(cfg config.ConvertConfig) zenn.Options {
	opts := zenn.DefaultOptions()
	if cfg.Emoji != nil {
		opts.Emoji = *cfg.Emoji
	}
	if cfg.Type != nil {
		opts.Type = *cfg.Type
	}
	if cfg.Topics != nil {
		opts.Topics = cfg.Topics
	}
	if cfg.Published != nil {
		opts.Published = *cfg.Published
	}
	if cfg.PublicationName != nil {
		opts.PublicationName = *cfg.PublicationName
	}
	return opts
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <root>",
		Short: "Show recorded progress runs",
		Args:  bookRootArg,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N runs (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	envr, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer syncLogger(envr.logger)

	h, err := loadHistory(cmd.Context(), envr.env.DBPath, args[0], historyLast)
	if err != nil {
		return err
	}
	return stats.RenderHistory(cmd.OutOrStdout(), h)
}

// loadHistory reads recorded runs for root. A missing database yields an
// empty history without creating the file.
func loadHistory(ctx context.Context, dbPath, root string, last int) (stats.History, error) {
	exists, err := fsutil.FileExists(dbPath)
	if err != nil {
		return stats.History{}, fmt.Errorf("failed to stat db: %w", err)
	}
	if !exists {
		return stats.History{}, nil
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return stats.History{}, fmt.Errorf("failed to resolve root: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return stats.History{}, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return stats.BuildHistory(ctx, st, absRoot, last)
}

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <root>",
		Short: "Browse progress and history interactively",
		Args:  bookRootArg,
		RunE:  runBrowseCmd,
	}
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	root := args[0]
	envr, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer syncLogger(envr.logger)

	scoring, descriptors, err := browseSettings(envr.file.Progress)
	if err != nil {
		return err
	}

	analyzer := manuscript.NewAnalyzer(root, descriptors, envr.logger)
	report, err := progress.NewGenerator(analyzer, scoring).Generate()
	if err != nil {
		return err
	}
	h, herr := loadHistory(cmd.Context(), envr.env.DBPath, root, 0)
	if herr != nil {
		envr.logger.Warn("history unavailable", zap.Error(herr))
	}

	m := progressui.NewModel(report, h, herr)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run progress TUI: %w", err)
	}
	return nil
}

// browseSettings resolves scoring and descriptors from the config file alone;
// browse has no scoring flags.
func browseSettings(cfg config.ProgressConfig) (model.Scoring, []string, error) {
	scoring := model.DefaultScoring()
	if cfg.CharsPerPage != nil {
		scoring.CharsPerPage = *cfg.CharsPerPage
	}
	if cfg.TextWeight != nil {
		scoring.TextWeight = *cfg.TextWeight
	}
	if err := validateScoring(scoring); err != nil {
		return model.Scoring{}, nil, fmt.Errorf("invalid [progress] config: %w", err)
	}
	descriptors := manuscript.DefaultDescriptors
	if len(cfg.Descriptors) > 0 {
		descriptors = cfg.Descriptors
	}
	return scoring, descriptors, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	path := env.ConfigPath
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless path already exists.
func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		err := fsutil.WriteFileAtomic(path, func(w io.Writer) error {
			_, werr := io.WriteString(w, defaultConfigTemplate())
			return werr
		})
		if err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringSliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if len(value) == 0 {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), value...)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# bookkit configuration
# Uncomment a value to enable it. CLI flags override config values.

[progress]
# report-file = %q  # Report path (.json or .yaml), relative to the book root
# chars-per-page = %d              # Characters counted as one page
# text-weight = %.1f               # Weight of text progress (0-1)
# bar-width = %d                   # Progress bar width
# lagging = %d                      # Number of lagging chapters to list
# record = false                   # Record every report in the history database
# descriptors = ["Cargo.toml"]     # Build descriptor names counted as code examples

[convert]
# output-dir = "build/output/zenn" # Article output directory, relative to the book root
# emoji = "🦀"
# type = "tech"
# topics = ["rust", "programming", "systems"]
# published = false
# publication-name = "rust_professional_book"
# image-base = "https://example.com/images"
`,
		defaultReportFile,
		defaultCharsPerPage,
		defaultTextWeight,
		stats.DefaultBarWidth,
		defaultLagging,
	)
}

func syncLogger(logger *zap.Logger) {
	// Sync on stderr reports EINVAL on some platforms.
	_ = logger.Sync()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
