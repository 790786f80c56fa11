package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func requestWithOrigin(origin string) *http.Request {
	r, _ := http.NewRequest("GET", "/websocket", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}

	return r
}

func TestOriginChecker(t *testing.T) {
	t.Run("empty allowlist allows everything", func(t *testing.T) {
		checker := NewOriginChecker(nil)

		assert.True(t, checker.Check(requestWithOrigin("https://evil.example")))
		assert.True(t, checker.Check(requestWithOrigin("")))
	})

	t.Run("allowlist is exact match", func(t *testing.T) {
		checker := NewOriginChecker([]string{"https://app.example.com", " https://ops.example.com "})

		assert.True(t, checker.Check(requestWithOrigin("https://app.example.com")))
		assert.True(t, checker.Check(requestWithOrigin("https://ops.example.com")))
		assert.True(t, checker.Check(requestWithOrigin("HTTPS://APP.EXAMPLE.COM")))
		assert.False(t, checker.Check(requestWithOrigin("https://evil.example")))
		assert.False(t, checker.Check(requestWithOrigin("")))
	})
}
