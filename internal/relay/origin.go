// Package relay normalizes and validates HTTP origins for WebSocket upgrade
// requests to enforce the configured access control.
package relay

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// newOriginChecker builds the CheckOrigin callback for the upgrader from the
// configured allow-list. A single "*" entry allows every origin. Requests
// without an Origin header are accepted; non-browser clients do not send one
// and the header is trivial to forge anyway, so rejecting them adds nothing.
func newOriginChecker(origins []string, logger *zap.Logger) func(r *http.Request) bool {
	allowed, allowAll := normalizeOrigins(origins, logger)

	return func(r *http.Request) bool {
		originHeader := r.Header.Get("Origin")
		if originHeader == "" || allowAll {
			return true
		}

		normalized, ok := normalizeOrigin(originHeader)
		if ok {
			if _, exists := allowed[normalized]; exists {
				return true
			}
		}

		logger.Warn("blocked websocket upgrade from disallowed origin",
			zap.String("origin", originHeader),
		)
		return false
	}
}

func normalizeOrigins(origins []string, logger *zap.Logger) (map[string]struct{}, bool) {
	allowed := make(map[string]struct{}, len(origins))
	allowAll := false

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			allowAll = true
			continue
		}

		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			logger.Warn("ignoring invalid origin in configuration", zap.String("origin", origin))
			continue
		}
		allowed[normalized] = struct{}{}
	}

	return allowed, allowAll
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}
