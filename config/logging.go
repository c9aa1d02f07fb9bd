package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

var Debug = false

// Logger is the process-wide structured logger. InitLogging replaces it.
var Logger = slog.Default()

func CheckDebug() bool {
	debug := os.Getenv("CHATRELAY_DEBUG")
	return debug == "true" || debug == "1"
}

// InitLogging configures Logger. format is "text" (default) or "json".
// Debug level is enabled when debug is set or CHATRELAY_DEBUG is truthy.
func InitLogging(w io.Writer, debug bool, format string) {
	Debug = debug || CheckDebug()

	level := slog.LevelInfo
	if Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// Preview shortens user or model text for log lines.
func Preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "...")
}
