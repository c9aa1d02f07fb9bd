package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chatrelay/config"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage stored provider API keys",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <provider> <api-key>",
	Short: "Store an API key for a provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		id := strings.TrimSpace(args[0])
		if err := config.ValidateProviders([]config.ProviderConfig{{ID: id}}); err != nil {
			return err
		}

		if err := cfg.CredentialStore.Set(id, strings.TrimSpace(args[1])); err != nil {
			return err
		}
		if err := cfg.CredentialStore.Save(cfg.Dir()); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Stored key for %s (%s)\n", config.ProviderDisplayName(id), cfg.CredentialStore.GetMethod())
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete <provider>",
	Short: "Remove a stored API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.CredentialStore.Delete(args[0]); err != nil {
			return err
		}
		if err := cfg.CredentialStore.Save(cfg.Dir()); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed key for %s\n", config.ProviderDisplayName(args[0]))
		return nil
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsDeleteCmd)
}
