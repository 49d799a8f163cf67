package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/DanielDerefaka/tao-cli/internal/cli"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <request>...",
	Short: "Run a single request without a conversation",
	Long: `Processes one request to completion. Confirmations are asked on stdin
unless --yes is given. The command fails when information is missing or the
wrapped tool reports a failure.`,
	Example: `  taox exec "what's my balance"
  taox exec --yes --dry-run "stake 10 TAO to Taostats on subnet 1"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		yes, _ := cmd.Flags().GetBool("yes")
		jsonMode, _ := cmd.Flags().GetBool("json")

		_, err = cli.RunExec(ctx, app, cli.ExecOptions{
			Utterance: strings.Join(args, " "),
			SessionID: sessionID,
			Yes:       yes,
			JSON:      jsonMode,
			In:        os.Stdin,
			Out:       os.Stdout,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().StringP("session", "s", "", "Session to run in (default: a throwaway session)")
	execCmd.Flags().BoolP("yes", "y", false, "Approve confirmations without asking")
	execCmd.Flags().Bool("json", false, "Print the response as JSON")
}
