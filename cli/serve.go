package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chatrelay/config"
	"chatrelay/server"
)

var (
	serveListen string
	serveGrace  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP relay (POST /chat, POST /reset, GET /health)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.cfg.Listen
		if serveListen != "" {
			addr = serveListen
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		config.Logger.Info("[Server] starting",
			"providers", a.service.AvailableProviders(),
			"strict", a.cfg.Strict,
			"config", a.cfg.Path)

		return server.ListenAndServe(ctx, addr, server.Server{Chat: a.service}.Handler(), serveGrace)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides config and PORT)")
	serveCmd.Flags().DurationVar(&serveGrace, "shutdown-timeout", 10*time.Second, "How long to wait for in-flight requests on shutdown")
}
