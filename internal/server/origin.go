package server

import (
	"net/http"
	"net/url"
	"strings"
)

// OriginChecker validates websocket upgrade origins against a configured
// allowlist. An empty allowlist allows everything, matching the permissive
// CORS setup the debug endpoint uses.
type OriginChecker struct {
	allowAll bool
	allowed  map[string]struct{}
}

func NewOriginChecker(origins []string) *OriginChecker {
	allowed := make(map[string]struct{})

	for _, origin := range origins {
		normalized, ok := normalizeOrigin(strings.TrimSpace(origin))
		if !ok {
			continue
		}

		allowed[normalized] = struct{}{}
	}

	return &OriginChecker{
		allowAll: len(allowed) == 0,
		allowed:  allowed,
	}
}

func (c *OriginChecker) Check(r *http.Request) bool {
	if c.allowAll {
		return true
	}

	origin, ok := normalizeOrigin(r.Header.Get("Origin"))
	if !ok {
		return false
	}

	_, ok = c.allowed[origin]

	return ok
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
