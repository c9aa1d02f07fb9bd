// Package server is the HTTP front end for the relay.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chatrelay/config"
	"chatrelay/relay"

	"github.com/google/uuid"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

var errBodyTooLarge = errors.New("request body too large")

// Server is the HTTP transport adapter for relay.Service.
type Server struct {
	Chat *relay.Service
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	Provider  string `json:"provider"`
	SessionID string `json:"session_id"`
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

type resetResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

type healthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
}

func (s Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /health", s.handleHealth)

	return withCORS(withRequestID(mux))
}

func (s Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := readJSON(w, r, &body); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	res, err := s.Chat.Chat(r.Context(), body.SessionID, body.Message)
	switch {
	case errors.Is(err, relay.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "message is required")
		return
	case errors.Is(err, relay.ErrConfigurationMissing):
		config.Logger.Error("[Server] no provider configured", "request_id", relay.RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "no AI provider is configured")
		return
	case err != nil:
		config.Logger.Error("[Server] chat failed", "request_id", relay.RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:     res.Reply,
		Provider:  res.Provider,
		SessionID: res.SessionID,
	})
}

func (s Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var body resetRequest
	// A missing or unreadable body resets the default session.
	if err := readJSON(w, r, &body); err != nil && config.Debug {
		config.Logger.Debug("[Server] reset body ignored", "error", err)
	}

	id := s.Chat.Reset(body.SessionID)
	writeJSON(w, http.StatusOK, resetResponse{Status: "reset", SessionID: id})
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Providers: s.Chat.AvailableProviders(),
	})
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully, waiting up to grace for in-flight requests.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		config.Logger.Info("[Server] listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	config.Logger.Info("[Server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(relay.WithRequestID(r.Context(), id)))

		if config.Debug {
			config.Logger.Debug("[Server] request",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start).Round(time.Millisecond))
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Expose-Headers", RequestIDHeader)

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

////////////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////////////

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r == nil || r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	defer r.Body.Close()

	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return fmt.Errorf("failed reading request body: %v", err)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		b = []byte("{}")
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("invalid json: %v", err)
	}
	return nil
}

func statusFor(err error) int {
	if errors.Is(err, errBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	b, err := json.Marshal(v)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"failed to marshal json"}`))
		return
	}
	_, _ = w.Write(append(b, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
