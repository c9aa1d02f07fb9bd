// Package cli defines the Cobra commands for the chatrelay binary.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"chatrelay/config"
)

var (
	configPath string
	debug      bool
	logFormat  string
	envFile    string
	version    = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "chatrelay",
	Short: "Chat relay with provider fallback and session history",
	Long: `chatrelay forwards chat messages to a fixed chain of LLM providers
(Gemini, Anthropic, OpenAI, OpenRouter, Ollama), falling over to the next
provider when one is rate limited or failing, and keeps per-session
conversation history in memory.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}
		config.InitLogging(os.Stderr, debug, logFormat)
		return nil
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadEnvFile loads KEY=VALUE pairs from path without overriding variables
// that are already set. A missing file is ignored.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/chatrelay/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (same as CHATRELAY_DEBUG=1)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(credentialsCmd)
}
