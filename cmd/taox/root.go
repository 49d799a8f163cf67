package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/DanielDerefaka/tao-cli/internal/cli"
	"github.com/DanielDerefaka/tao-cli/internal/config"
	"github.com/DanielDerefaka/tao-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
)

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"network":       "network",
	"program":       "program",
	"timeout":       "timeout",
	"dry_run":       "dry-run",
	"demo":          "demo",
	"log.level":     "log-level",
	"log.format":    "log-format",
	"state.backend": "backend",
	"state.dir":     "state-dir",
	"redis.addr":    "redis-addr",
	"server.addr":   "addr",
}

var rootCmd = &cobra.Command{
	Use:   "taox",
	Short: "taox turns plain-language requests into btcli commands",
	Long: `taox is a conversational front end for the Bittensor CLI. It asks for
whatever a command still needs, shows the exact command and waits for your
confirmation before anything that moves funds, then runs it and answers
wallet password prompts without ever echoing or storing the password.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := config.New(cfgFile)
		if err := config.BindFlags(v, cmd.Flags(), flagKeys); err != nil {
			return err
		}
		c, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = c
		logger = logging.NewWithFormat(os.Stderr, logging.ParseLevel(cfg.Log.Level), logging.Format(cfg.Log.Format))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newApp wires the loaded configuration. Callers must Close the result.
func newApp(cmd *cobra.Command) (*cli.App, error) {
	return cli.NewApp(cmd.Context(), cfg, logger)
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ~/.taox/config.yaml)")
	pf.String("network", "finney", "Network passed to btcli")
	pf.String("program", "btcli", "Path or name of the wrapped CLI")
	pf.Duration("timeout", 0, "Per-command timeout (default 2m)")
	pf.Bool("dry-run", false, "Show commands without running them")
	pf.Bool("demo", false, "Answer with sample data instead of running btcli")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")
	pf.String("backend", "file", "Session backend (memory, file, redis)")
	pf.String("state-dir", "", "Directory for the file session backend")
	pf.String("redis-addr", "", "Redis address for the redis backend")
}
