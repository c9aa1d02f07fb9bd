package cli

import (
	"fmt"

	"chatrelay/config"
	"chatrelay/model"
	"chatrelay/provider"
	"chatrelay/relay"
	"chatrelay/storage"
)

// app is the wired relay shared by serve, ask and chat.
type app struct {
	cfg       *config.Config
	providers []model.Provider
	service   *relay.Service
	attempts  *storage.AttemptLog
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	providers := provider.InitializeProviders(cfg)

	opts := []relay.Option{relay.WithMaxTurns(cfg.History.MaxTurns)}

	var attempts *storage.AttemptLog
	if cfg.AttemptLog.Path != "" {
		attempts, err = storage.OpenAttemptLog(cfg.AttemptLog.Path)
		if err != nil {
			return nil, fmt.Errorf("attempt log: %w", err)
		}
		opts = append(opts, relay.WithRecorder(attempts))
	}

	orch := relay.NewOrchestrator(providers, opts...)
	svc := relay.NewService(storage.NewSessionStore(), orch, cfg.Strict)

	if len(orch.Available()) == 0 {
		config.Logger.Warn("[Relay] no provider has credentials; every chat will get the fallback reply")
	}

	return &app{
		cfg:       cfg,
		providers: providers,
		service:   svc,
		attempts:  attempts,
	}, nil
}

func (a *app) Close() error {
	if a.attempts != nil {
		return a.attempts.Close()
	}
	return nil
}
