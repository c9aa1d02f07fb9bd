package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatrelay/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetConfigFilePath()
		}
		if err := config.WriteTemplate(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", config.ExpandPath(path))
		fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("Add API keys with `chatrelay credentials set <provider> <key>` or the provider env vars."))
		return nil
	},
}
