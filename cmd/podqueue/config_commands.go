package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podqueue/internal/config"
	"podqueue/internal/queue"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	cmd.AddCommand(newConfigInitCommand(ctx), newConfigValidateCommand(ctx))
	return cmd
}

// configTarget picks --path, then the global --config, then the default location.
func configTarget(ctx *commandContext, pathFlag string) (string, error) {
	target := strings.TrimSpace(pathFlag)
	if target == "" && ctx.configFlag != nil {
		target = strings.TrimSpace(*ctx.configFlag)
	}
	if target == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(target)
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var pathFlag string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(ctx, pathFlag)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			sample, _, _, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("reload sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintf(out, "The queue database will be created at %s\n", sample.DatabasePath())
			return nil
		},
	}
	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Destination for the configuration file (defaults to --config)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}

// configReport is the effective configuration as printed by config validate.
type configReport struct {
	ConfigPath   string `json:"configPath"`
	ConfigExists bool   `json:"configExists"`
	Database     string `json:"database"`
	LockFile     string `json:"lockFile"`
	StorageDir   string `json:"storageDir"`
	LogDir       string `json:"logDir"`
	APIBind      string `json:"apiBind"`
	OutOfRange   string `json:"outOfRange"`
	LockTimeout  int    `json:"lockTimeoutSeconds"`
	BusyTimeout  int    `json:"busyTimeoutMillis"`
	LogLevel     string `json:"logLevel"`
	LogFormat    string `json:"logFormat"`
	// Queue is nil until the database has been created.
	Queue *queueSummary `json:"queue,omitempty"`
}

type queueSummary struct {
	Length     int   `json:"length"`
	Duplicates []int `json:"duplicates"`
	Gaps       []int `json:"gaps"`
}

func (q *queueSummary) String() string {
	if q == nil {
		return "no database yet"
	}
	if len(q.Duplicates) == 0 && len(q.Gaps) == 0 {
		return fmt.Sprintf("%d queued, consistent", q.Length)
	}
	return fmt.Sprintf("%d queued, %d duplicate ranks, %d gaps (run `podqueue queue repair`)",
		q.Length, len(q.Duplicates), len(q.Gaps))
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration and summarize the queue it points at",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			report := configReport{
				ConfigPath:   resolved,
				ConfigExists: exists,
				Database:     cfg.DatabasePath(),
				LockFile:     cfg.QueueLockPath(),
				StorageDir:   cfg.Paths.StorageDir,
				LogDir:       cfg.Paths.LogDir,
				APIBind:      cfg.Paths.APIBind,
				OutOfRange:   cfg.Queue.OutOfRange,
				LockTimeout:  cfg.Queue.LockTimeout,
				BusyTimeout:  cfg.Store.BusyTimeoutMillis,
				LogLevel:     cfg.Logging.Level,
				LogFormat:    cfg.Logging.Format,
			}
			// Only inspect an existing database; validate must not create one.
			if _, err := os.Stat(report.Database); err == nil {
				summary, err := summarizeQueue(cmd, cfg)
				if err != nil {
					return err
				}
				report.Queue = summary
			}

			if asJSON {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			source := report.ConfigPath
			if !report.ConfigExists {
				source += " (missing, defaults used)"
			}
			rows := [][]string{
				{"config", source},
				{"database", report.Database},
				{"lock file", report.LockFile},
				{"storage_dir", valueOrDash(report.StorageDir)},
				{"log_dir", valueOrDash(report.LogDir)},
				{"api_bind", report.APIBind},
				{"queue.out_of_range", report.OutOfRange},
				{"queue.lock_timeout", strconv.Itoa(report.LockTimeout) + "s"},
				{"store.busy_timeout_ms", strconv.Itoa(report.BusyTimeout)},
				{"logging", report.LogLevel + "/" + report.LogFormat},
				{"queue", report.Queue.String()},
			}
			fmt.Fprint(out, renderTable(out, []string{"Setting", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the effective configuration as JSON")
	return cmd
}

func summarizeQueue(cmd *cobra.Command, cfg *config.Config) (*queueSummary, error) {
	store, err := queue.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	report, err := store.Check(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("check queue: %w", err)
	}
	summary := &queueSummary{Length: report.Length, Duplicates: report.Duplicates, Gaps: report.Gaps}
	if summary.Duplicates == nil {
		summary.Duplicates = []int{}
	}
	if summary.Gaps == nil {
		summary.Gaps = []int{}
	}
	return summary, nil
}
