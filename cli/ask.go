package cli

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"chatrelay/config"
	"chatrelay/relay"
)

var (
	askSession string
	askRaw     bool
	askCopy    bool
	askWidth   int
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message through the provider chain and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		message := strings.Join(args, " ")
		res, err := a.service.Chat(cmd.Context(), askSession, message)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if askRaw {
			fmt.Fprintln(out, res.Reply)
		} else {
			fmt.Fprintln(out, renderMarkdown(res.Reply, askWidth))
			fmt.Fprintln(cmd.ErrOrStderr(), DimStyle.Render("via "+res.Provider))
		}

		if askCopy && !res.Exhausted {
			if err := clipboard.WriteAll(res.Reply); err != nil {
				config.Logger.Warn("[CLI] failed to copy reply", "error", err)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", relay.DefaultSessionID, "Session id")
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "Print the reply without markdown rendering")
	askCmd.Flags().BoolVar(&askCopy, "copy", false, "Copy the reply to the clipboard")
	askCmd.Flags().IntVar(&askWidth, "width", 100, "Render width")
}
