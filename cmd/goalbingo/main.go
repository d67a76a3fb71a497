// Package main provides the CLI entrypoint for goalbingo.
package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/goalbingo/internal/config"
	"github.com/verte-zerg/goalbingo/internal/export"
	"github.com/verte-zerg/goalbingo/internal/logging"
	"github.com/verte-zerg/goalbingo/internal/model"
	"github.com/verte-zerg/goalbingo/internal/report"
	"github.com/verte-zerg/goalbingo/internal/share"
	"github.com/verte-zerg/goalbingo/internal/state"
	"github.com/verte-zerg/goalbingo/internal/store"
	"github.com/verte-zerg/goalbingo/internal/tui"
)

const (
	defaultBaseURL     = "https://goal-bingo.example.com/"
	defaultHistoryRows = 10
	minCellWidth       = 4
	maxCellWidth       = 60
	maxCellHeight      = 10
)

var (
	boardCard       string
	boardBaseURL    string
	boardCellWidth  int
	boardCellHeight int
	boardLogLevel   string

	shareTokenOnly bool
	statusLast     int
	exportOut      string
	resetKeepLog   bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "goalbingo",
		Short:         "TUI goal bingo",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runBoardCmd,
	}

	rootCmd.Flags().StringVar(&boardCard, "card", "", "open a shared card (share URL or token)")
	rootCmd.PersistentFlags().StringVar(&boardBaseURL, "base-url", defaultBaseURL, "base URL for share links")
	rootCmd.PersistentFlags().IntVar(&boardCellWidth, "cell-width", tui.DefaultCellWidth, "inner width of a board cell")
	rootCmd.PersistentFlags().IntVar(&boardCellHeight, "cell-height", tui.DefaultCellHeight, "inner height of a board cell")
	rootCmd.PersistentFlags().StringVar(&boardLogLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newShareCmd())
	rootCmd.AddCommand(newOpenCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

// runtimeEnv is the merged config plus the resources every command needs.
type runtimeEnv struct {
	cfg    model.Config
	store  *store.Store
	logger io.Closer
}

func (e *runtimeEnv) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			logErrf("failed to close db: %v\n", err)
		}
	}
	if e.logger != nil {
		_ = e.logger.Close()
	}
}

func setup(cmd *cobra.Command) (*runtimeEnv, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "base-url", &boardBaseURL, fileCfg.Share.BaseURL)
	applyIntConfig(cmd, "cell-width", &boardCellWidth, fileCfg.Board.CellWidth)
	applyIntConfig(cmd, "cell-height", &boardCellHeight, fileCfg.Board.CellHeight)
	applyStringConfig(cmd, "log-level", &boardLogLevel, fileCfg.Log.Level)

	cfg := model.Config{
		BaseURL:    boardBaseURL,
		CellWidth:  boardCellWidth,
		CellHeight: boardCellHeight,
		LogLevel:   boardLogLevel,
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	env := &runtimeEnv{cfg: cfg}
	closer, err := logging.Setup(config.DefaultLogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	env.logger = closer

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	env.store = st
	log.Debug().Str("command", cmd.Name()).Msg("started")
	return env, nil
}

func runBoardCmd(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	st, err := startupState(ctx, env.store, boardCard)
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	m := tui.NewModel(env.cfg, state.New(st), env.store, wd)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// startupState picks the shared card first, then the stored state, then a
// fresh card. A shared card opens in play mode and replaces the stored one.
func startupState(ctx context.Context, st *store.Store, cardArg string) (model.AppState, error) {
	if strings.TrimSpace(cardArg) != "" {
		card, ok := share.ParseCardArg(cardArg)
		if ok {
			shared := model.AppState{Card: card, Mode: model.ModePlay}
			if err := st.SaveState(ctx, shared); err != nil {
				return model.AppState{}, fmt.Errorf("failed to save shared card: %w", err)
			}
			log.Info().Str("source", redactShareArg(cardArg)).Msg("opened shared card")
			return shared, nil
		}
		log.Warn().Msg("ignoring invalid shared card")
		logErrln("ignoring invalid shared card; falling back to the saved card")
	}
	saved, ok, err := st.LoadState(ctx)
	if err != nil {
		return model.AppState{}, fmt.Errorf("failed to load saved card: %w", err)
	}
	if ok {
		return saved, nil
	}
	return model.InitialState(), nil
}

// redactShareArg strips the card payload for logging.
func redactShareArg(arg string) string {
	if !strings.Contains(arg, "://") {
		return "token"
	}
	cleared, err := share.ClearShareParam(strings.TrimSpace(arg))
	if err != nil {
		return "url"
	}
	return cleared
}

func loadCard(ctx context.Context, st *store.Store) (model.AppState, error) {
	saved, ok, err := st.LoadState(ctx)
	if err != nil {
		return model.AppState{}, fmt.Errorf("failed to load saved card: %w", err)
	}
	if !ok {
		return model.InitialState(), nil
	}
	return saved, nil
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
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
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

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the board",
		Args:  cobra.NoArgs,
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	st, err := loadCard(context.Background(), env.store)
	if err != nil {
		return err
	}
	opts := tui.BoardOptions{
		CellWidth:  env.cfg.CellWidth,
		CellHeight: env.cfg.CellHeight,
		Cursor:     -1,
	}
	if w, ok := stdoutWidth(); ok {
		opts.CellWidth = fitCellWidth(w, opts.CellWidth)
	}
	if st.Mode == model.ModePlay {
		opts.Highlight = state.Summarize(st.Card).HighlightedCells
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, tui.RenderBoard(st.Card, opts)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return report.RenderSummary(out, st.Card)
}

func stdoutWidth() (int, bool) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 0, false
	}
	return width, true
}

// fitCellWidth shrinks the cell width so five bordered cells fit in total.
func fitCellWidth(total, want int) int {
	fit := total/model.GridSize - 2
	if fit < want {
		want = fit
	}
	if want < minCellWidth {
		want = minCellWidth
	}
	return want
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show progress and recent toggles",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
	cmd.Flags().IntVar(&statusLast, "last", defaultHistoryRows, "number of recent toggles to show (0 for all)")
	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	st, err := loadCard(ctx, env.store)
	if err != nil {
		return err
	}
	events, err := env.store.ListToggles(ctx, statusLast)
	if err != nil {
		return fmt.Errorf("failed to load toggle history: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := report.RenderSummary(out, st.Card); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.RenderHistory(out, events); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newShareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Print a share link for the saved card",
		Args:  cobra.NoArgs,
		RunE:  runShareCmd,
	}
	cmd.Flags().BoolVar(&shareTokenOnly, "token", false, "print only the token")
	return cmd
}

func runShareCmd(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	st, err := loadCard(context.Background(), env.store)
	if err != nil {
		return err
	}
	line := share.EncodeCard(st.Card)
	if !shareTokenOnly {
		line, err = share.ShareURL(env.cfg.BaseURL, st.Card)
		if err != nil {
			return fmt.Errorf("failed to build share url: %w", err)
		}
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <url|token>",
		Short: "Replace the saved card with a shared one",
		Args:  cobra.ExactArgs(1),
		RunE:  runOpenCmd,
	}
}

func runOpenCmd(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	card, ok := share.ParseCardArg(args[0])
	if !ok {
		return fmt.Errorf("not a valid share link or token")
	}
	if err := env.store.SaveState(context.Background(), model.AppState{Card: card, Mode: model.ModePlay}); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	log.Info().Str("source", redactShareArg(args[0])).Msg("opened shared card")
	return report.RenderSummary(cmd.OutOrStdout(), card)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export goals as Markdown",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "output file ('-' for stdout, default goal-bingo-<time>.md)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	st, err := loadCard(context.Background(), env.store)
	if err != nil {
		return err
	}
	now := time.Now()
	content := export.GoalsToMarkdown(st.Card.Goals, now)
	if exportOut == "-" {
		if _, err := io.WriteString(cmd.OutOrStdout(), content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	path := exportOut
	if path == "" {
		path = export.Filename(now)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logErrf("Wrote %s\n", path)
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.md>",
		Short: "Import goals from a Markdown export",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	goals, ok := export.ParseMarkdown(string(data))
	if !ok {
		return fmt.Errorf("no goals found in %s", args[0])
	}

	ctx := context.Background()
	st, err := loadCard(ctx, env.store)
	if err != nil {
		return err
	}
	board := state.New(st)
	board.SetGoals(goals)
	board.SetMode(model.ModeInput)
	if err := env.store.SaveState(ctx, board.State()); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	log.Info().Str("path", args[0]).Int("goals", state.FilledCount(goals)).Msg("imported goals")
	logErrf("Imported %d/%d goals from %s\n", state.FilledCount(goals), model.CellCount, args[0])
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the saved card",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetKeepLog, "keep-history", false, "keep the toggle history")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	if err := env.store.ClearState(ctx); err != nil {
		return fmt.Errorf("failed to clear card: %w", err)
	}
	if !resetKeepLog {
		if err := env.store.ClearToggles(ctx); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
	}
	log.Info().Bool("keep_history", resetKeepLog).Msg("card reset")
	logErrln("Card reset.")
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# goalbingo configuration
# Uncomment a value to enable it. CLI flags override config values.

[share]
# base-url = %q   # Page that share links point at

[board]
# cell-width = %d              # Inner width of a board cell
# cell-height = %d             # Inner height of a board cell

[log]
# level = %q                # debug, info, warn or error
`,
		defaultBaseURL,
		tui.DefaultCellWidth,
		tui.DefaultCellHeight,
		logging.DefaultLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.CellWidth < minCellWidth || cfg.CellWidth > maxCellWidth {
		return fmt.Errorf("--cell-width must be between %d and %d", minCellWidth, maxCellWidth)
	}
	if cfg.CellHeight < 1 || cfg.CellHeight > maxCellHeight {
		return fmt.Errorf("--cell-height must be between 1 and %d", maxCellHeight)
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("--base-url must be an absolute URL")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
