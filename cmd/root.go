package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"mycelica/patchscan/internal/config"
	"mycelica/patchscan/internal/db"
	"mycelica/patchscan/internal/patch"
	"mycelica/patchscan/internal/report"
)

var (
	configPath string
	dbPath     string
	logLevel   string
	logFormat  string

	outputFormat string
	resolve      bool
)

// cfg is filled in by loadConfig before any command runs
var cfg = config.DefaultConfig()

var errUsage = errors.New("Usage: patchscan <file.pd>")

var rootCmd = &cobra.Command{
	Use:   "patchscan <file.pd>",
	Short: "Inventory the objects and connections of a patch file",
	Long: "Reads a line-oriented patch file and lists every #X object record with its\n" +
		"sequential id, followed by every #X connect record.",
	Args:              cobra.MatchAll(requireFile, cobra.MaximumNArgs(1)),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadPatch(args[0])
		if err != nil {
			return err
		}

		return writeResult(cmd.OutOrStdout(), res, formatFlag(cmd), resolveFlag(cmd))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file (default ./"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the scan database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")

	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: text, json or yaml")
	rootCmd.Flags().BoolVar(&resolve, "resolve", false, "Append connections with both endpoints resolved to object text")
}

// requireFile runs before config loading so a bare invocation always gets
// the usage message
func requireFile(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	return nil
}

// loadConfig reads the config file, applies persistent flag overrides and
// installs the process logger
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	for _, w := range config.Validate(cfg) {
		logger.Warn("config", "warning", w)
	}
	return nil
}

// loadPatch scans path. Open and read errors are returned untouched.
func loadPatch(path string) (*patch.Result, error) {
	res, err := patch.ScanFile(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("patch scanned", "path", path, "nodes", len(res.Nodes), "connections", len(res.Connections))
	return res, nil
}

// OpenDatabase opens the configured scan database
func OpenDatabase() (*db.DB, error) {
	return db.OpenDB(cfg.Database.Path, slog.Default())
}

func writeResult(w io.Writer, res *patch.Result, format string, withResolved bool) error {
	if err := report.Encode(w, res, format); err != nil {
		return err
	}
	if withResolved && (format == "" || strings.EqualFold(format, report.FormatText)) {
		return report.WriteResolved(w, res)
	}
	return nil
}

// formatFlag returns --format when given, else the configured format
func formatFlag(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		return f.Value.String()
	}
	return cfg.Output.Format
}

func resolveFlag(cmd *cobra.Command) bool {
	if f := cmd.Flags().Lookup("resolve"); f != nil && f.Changed {
		return f.Value.String() == "true"
	}
	return cfg.Output.Resolve
}
