package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"chatrelay/config"
	"chatrelay/model"
	"chatrelay/provider"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show the provider chain in priority order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		chain := provider.InitializeProviders(cfg)
		fmt.Fprintln(cmd.OutOrStdout(), renderProviderList(cfg, chain))
		return nil
	},
}

// renderProviderList lists every configured entry. chain holds the built
// providers for the enabled entries, in the same order.
func renderProviderList(cfg *config.Config, chain []model.Provider) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Provider chain"))
	b.WriteString("\n\n")

	nameCol := lipgloss.NewStyle().Width(16)
	modelCol := lipgloss.NewStyle().Width(36)
	timeoutCol := lipgloss.NewStyle().Width(9)

	built := make(map[string]model.Provider, len(chain))
	for _, p := range chain {
		built[p.Name()] = p
	}

	position := 0
	for _, entry := range cfg.Providers {
		display := config.ProviderDisplayName(entry.ID)
		timeout := entry.Timeout
		if timeout == 0 {
			timeout = provider.DefaultTimeout(provider.MapProviderIDToType(entry.ID))
		}

		var prefix, modelName, status string
		p, ok := built[entry.ID]
		switch {
		case !entry.Enabled || !ok:
			prefix = "  -"
			modelName = entry.Model
			status = DimStyle.Render("disabled")
		case p.Available():
			position++
			prefix = fmt.Sprintf("%3d", position)
			modelName = p.Model()
			status = OKStyle.Render("ready")
		default:
			position++
			prefix = fmt.Sprintf("%3d", position)
			modelName = p.Model()
			status = WarnStyle.Render("unavailable")
			if u, ok := p.(*provider.UnavailableProvider); ok && u.Reason() != nil {
				status += DimStyle.Render(" (" + unavailableHint(entry.ID) + ")")
			}
		}
		if modelName == "" {
			modelName = DimStyle.Render("default")
		}

		b.WriteString(prefix + "  ")
		b.WriteString(nameCol.Render(display))
		b.WriteString(modelCol.Render(modelName))
		b.WriteString(timeoutCol.Render(timeout.String()))
		b.WriteString(status)
		b.WriteString("\n")
	}

	if position == 0 {
		b.WriteString("\n")
		b.WriteString(DimStyle.Render("No providers enabled."))
	}

	return strings.TrimRight(b.String(), "\n")
}

func unavailableHint(id string) string {
	if env := config.ProviderEnvVar(id); env != "" {
		return "set " + env
	}
	if id == "ollama" {
		return "set OLLAMA_HOST"
	}
	return "missing credentials"
}
