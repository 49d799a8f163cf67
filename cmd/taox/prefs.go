package main

import (
	"fmt"
	"sort"

	"github.com/DanielDerefaka/tao-cli/internal/cli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage remembered defaults",
	Long:  `Get, set and list the defaults (wallet, hotkey, subnet) used when a request leaves them out.`,
}

var prefsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		v, ok, err := cli.GetPreference(cmd.Context(), app, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("preference %q is not set", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Remember a default",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		v, err := cli.SetPreference(cmd.Context(), app, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], v)
		return nil
	},
}

var prefsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		all, err := app.Prefs.List(cmd.Context())
		if err != nil {
			return err
		}

		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(all)
		}

		if len(all) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No preferences set. Known keys: %v\n", cli.PreferenceKeys())
			return nil
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, all[k])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	prefsCmd.AddCommand(prefsListCmd)
	prefsListCmd.Flags().Bool("yaml", false, "Print as YAML")
}
