// Package logging sets up structured logging and masks secrets before they are logged.
package logging

import (
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// sensitiveParams are query parameters whose values never reach the logs
var sensitiveParams = []string{"api_key", "apikey", "token", "password"}

// Setup builds the application logger and installs it as the slog default.
// level is one of debug, info, warn, error; format is text or json.
func Setup(appName, level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler).With(slog.String("app", appName))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a config string to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MaskToken keeps the first and last four characters of a secret.
// Secrets shorter than eight characters are fully masked.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) < 8 {
		return "***"
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// RedactURL masks the values of sensitive query parameters in rawURL.
// Unparsable input is returned fully masked.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "***"
	}

	q := u.Query()
	changed := false
	for _, key := range sensitiveParams {
		if v := q.Get(key); v != "" {
			q.Set(key, MaskToken(v))
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
