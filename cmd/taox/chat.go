package main

import (
	"os"

	"github.com/DanielDerefaka/tao-cli/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Starts the conversational loop. Ctrl+C during a command cancels that command;
Ctrl+C at the prompt leaves. With --json, each input line is a JSON string or
{"text": "..."} object and each reply is one JSON object.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		jsonMode, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")
		fresh, _ := cmd.Flags().GetBool("fresh")

		return cli.RunChat(cmd.Context(), app, cli.ChatOptions{
			SessionID: sessionID,
			JSON:      jsonMode,
			Plain:     plain,
			Fresh:     fresh,
			Version:   version,
			In:        os.Stdin,
			Out:       os.Stdout,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", cli.DefaultSessionID, "Session to resume or create")
	chatCmd.Flags().Bool("json", false, "Read and write JSON lines")
	chatCmd.Flags().Bool("plain", false, "Print replies without markdown rendering")
	chatCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
}
