package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"chatrelay/config"
	"chatrelay/storage"
)

var (
	attemptsLimit   int
	attemptsSummary bool
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "Show recent provider attempts from the attempt log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.AttemptLog.Path == "" {
			return fmt.Errorf("attempt log is disabled; set [attempt_log] path in %s", config.GetConfigFilePath())
		}

		log, err := storage.OpenAttemptLog(cfg.AttemptLog.Path)
		if err != nil {
			return err
		}
		defer log.Close()

		out := cmd.OutOrStdout()
		if attemptsSummary {
			counts, err := log.OutcomeCounts(cmd.Context())
			if err != nil {
				return err
			}
			writeOutcomeSummary(out, counts)
			return nil
		}

		attempts, err := log.Recent(cmd.Context(), attemptsLimit)
		if err != nil {
			return err
		}
		writeAttempts(out, attempts)
		return nil
	},
}

func writeAttempts(w io.Writer, attempts []storage.Attempt) {
	if len(attempts) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No attempts recorded yet."))
		return
	}

	for _, a := range attempts {
		outcome := a.Outcome
		if a.Kind != "" {
			outcome += "/" + a.Kind
		}
		switch a.Outcome {
		case "success":
			outcome = OKStyle.Render(outcome)
		case "failure":
			outcome = ErrorStyle.Render(outcome)
		default:
			outcome = WarnStyle.Render(outcome)
		}

		line := fmt.Sprintf("%s  %-10s %-22s %7s  %s",
			a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			a.Provider,
			outcome,
			a.Latency.String(),
			DimStyle.Render("session="+a.SessionID),
		)
		if a.Error != "" {
			line += "  " + config.Preview(a.Error, 80)
		}
		fmt.Fprintln(w, line)
	}
}

func writeOutcomeSummary(w io.Writer, counts map[string]map[string]int) {
	if len(counts) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No attempts recorded yet."))
		return
	}

	providers := make([]string, 0, len(counts))
	for p := range counts {
		providers = append(providers, p)
	}
	sort.Strings(providers)

	for _, p := range providers {
		outcomes := make([]string, 0, len(counts[p]))
		for outcome, n := range counts[p] {
			outcomes = append(outcomes, fmt.Sprintf("%s=%d", outcome, n))
		}
		sort.Strings(outcomes)
		fmt.Fprintf(w, "%-12s %s\n", p, strings.Join(outcomes, " "))
	}
}

func init() {
	attemptsCmd.Flags().IntVarP(&attemptsLimit, "limit", "n", 20, "Number of attempts to show")
	attemptsCmd.Flags().BoolVar(&attemptsSummary, "summary", false, "Show outcome counts per provider")
}
