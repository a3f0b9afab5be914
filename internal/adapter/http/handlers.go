package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency /health reports on.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct{ deps map[string]Pinger }

func NewHandler() *Handler { return &Handler{deps: map[string]Pinger{}} }

// WithDependency adds a named check to /health.
func (h *Handler) WithDependency(name string, p Pinger) *Handler {
	h.deps[name] = p
	return h
}

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(h.deps))
	for name, p := range h.deps {
		if err := p.PingContext(ctx); err != nil {
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	return c.JSON(code, map[string]any{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}
