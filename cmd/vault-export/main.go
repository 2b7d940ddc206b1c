package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	vaultexport "github.com/goliatone/go-vault-export"
	"github.com/goliatone/go-vault-export/internal/commands/exportcmd"
)

var version = "dev"

var moduleBuilder = vaultexport.New

type globalFlags struct {
	configPath  string
	source      string
	dest        string
	owner       string
	maxRuns     int
	logLevel    string
	logFormat   string
	logProvider string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "vault-export: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}
	var dryRun bool

	root := &cobra.Command{
		Use:   "vault-export",
		Short: "Export a markdown vault into a flat, tagged staging tree",
		Long: `vault-export copies every note of a markdown vault into a flat staging
directory, strips wiki link syntax, stamps a copyright notice, rebuilds the
tag index and records the run in a bounded pipeline log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, flags, dryRun, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	persistent := root.PersistentFlags()
	persistent.StringVar(&flags.configPath, "config", "", "Path to a YAML config file")
	persistent.StringVar(&flags.source, "source", "", "Vault source root")
	persistent.StringVar(&flags.dest, "dest", "", "Export destination root")
	persistent.StringVar(&flags.owner, "owner", "", "Copyright owner stamped on exported files")
	persistent.IntVar(&flags.maxRuns, "max-runs", vaultexport.DefaultConfig().MaxRuns, "Number of runs kept in the pipeline log")
	persistent.StringVar(&flags.logLevel, "log-level", "", "Log level: trace|debug|info|warn|error")
	persistent.StringVar(&flags.logFormat, "log-format", "", "go-logger format: console|json|pretty")
	persistent.StringVar(&flags.logProvider, "log-provider", "", "Logger provider: console|gologger")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be exported without writing files")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the export, index and log pipeline once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, flags, dryRun, stdout, stderr)
		},
	}
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be exported without writing files")

	var debounce time.Duration
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Run once, then re-run the pipeline whenever notes change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, flags, debounce, stdout, stderr)
		},
	}
	watchCmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period before a triggered run (default from config)")

	var outDir string
	var safe bool
	previewCmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render an exported note, the tag index or the log to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := buildModule(cmd, flags, stdout, stderr)
			if err != nil {
				return err
			}
			return module.PreviewHandler().Execute(cmd.Context(), exportcmd.PreviewCommand{
				Path:      args[0],
				OutputDir: outDir,
				Safe:      safe,
			})
		},
	}
	previewCmd.Flags().StringVar(&outDir, "out", "", "Write <slug>.html into this directory instead of stdout")
	previewCmd.Flags().BoolVar(&safe, "safe", false, "Drop raw HTML found in the document")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List the runs retained in the pipeline log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := buildModule(cmd, flags, stdout, stderr)
			if err != nil {
				return err
			}
			return module.HistoryHandler().Execute(cmd.Context(), exportcmd.HistoryCommand{})
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the vault-export version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(stdout, "vault-export %s\n", version)
		},
	}

	root.AddCommand(runCmd, watchCmd, previewCmd, historyCmd, versionCmd)
	return root
}

func runExport(cmd *cobra.Command, flags *globalFlags, dryRun bool, stdout, stderr io.Writer) error {
	module, err := buildModule(cmd, flags, stdout, stderr)
	if err != nil {
		return err
	}
	result, err := module.Run(cmd.Context(), dryRun)
	if err != nil {
		return err
	}
	printResult(stdout, result)
	return nil
}

func runWatch(cmd *cobra.Command, flags *globalFlags, debounce time.Duration, stdout, stderr io.Writer) error {
	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return err
	}
	if debounce > 0 {
		cfg.Watch.Debounce = debounce
	}
	module, err := moduleBuilder(cfg, vaultexport.WithOutput(stdout), vaultexport.WithLogWriter(stderr))
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	result, err := module.Run(cmd.Context(), false)
	if err != nil {
		return err
	}
	printResult(stdout, result)

	watcher, err := module.Watcher(func(result *vaultexport.RunResult) {
		printResult(stdout, result)
	})
	if err != nil {
		return err
	}
	return watcher.Run(cmd.Context())
}

func buildModule(cmd *cobra.Command, flags *globalFlags, stdout, stderr io.Writer) (*vaultexport.Module, error) {
	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return nil, err
	}
	module, err := moduleBuilder(cfg, vaultexport.WithOutput(stdout), vaultexport.WithLogWriter(stderr))
	if err != nil {
		return nil, fmt.Errorf("bootstrap module: %w", err)
	}
	return module, nil
}

// resolveConfig layers explicitly set flags over the config file, which is
// itself layered over the defaults.
func resolveConfig(cmd *cobra.Command, flags *globalFlags) (vaultexport.Config, error) {
	cfg := vaultexport.DefaultConfig()
	if flags.configPath != "" {
		loaded, err := vaultexport.LoadConfig(flags.configPath)
		if err != nil {
			return vaultexport.Config{}, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("source") {
		cfg.SourceRoot = flags.source
	}
	if changed("dest") {
		cfg.DestinationRoot = flags.dest
	}
	if changed("owner") {
		cfg.Owner = flags.owner
	}
	if changed("max-runs") {
		cfg.MaxRuns = flags.maxRuns
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = flags.logFormat
	}
	if changed("log-provider") {
		cfg.Logging.Provider = flags.logProvider
	}
	return cfg, nil
}

func printResult(w io.Writer, result *vaultexport.RunResult) {
	if result == nil {
		return
	}
	if !result.DryRun {
		fmt.Fprintln(w, result.Message)
		return
	}
	fmt.Fprintf(w, "Dry run: %d files would be exported, %d tags indexed.\n", len(result.Files), len(result.Tags))
	for _, file := range result.Files {
		fmt.Fprintf(w, "- %s\n", file)
	}
	fmt.Fprintf(w, "\nRun record:\n%s\n", result.Record.Text())
}
