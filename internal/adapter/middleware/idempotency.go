package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// captureWriter tees the response so it can be stored for replay.
type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func reject(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg, "code": "idempotency"})
}

// Idempotency makes mutating requests safe to retry. A finished response is
// replayed for ttl under method + route + actor + request id, and a reused
// request id with a different body is refused. Server errors are not kept,
// so the caller can retry them.
func Idempotency(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	store := replayStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			rr, err := parseRetryHeaders(req.Header, time.Now().UTC())
			if err != nil {
				return reject(c, http.StatusBadRequest, err.Error())
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					slog.WarnContext(req.Context(), "idempotency body unreadable", "error", err)
					return reject(c, http.StatusBadRequest, "unreadable request body")
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := rr.key(req.Method, c.Path())
			entry := storedResponse{
				Digest:      digest(body),
				RequestAtMS: rr.At.UnixMilli(),
				StoredAt:    time.Now().UTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			fresh, err := store.reserve(ctx, key, entry)
			if err != nil {
				slog.WarnContext(ctx, "idempotency store unavailable", "key", key, "error", err)
				return reject(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !fresh {
				prev, err := store.lookup(ctx, key)
				if err != nil {
					slog.WarnContext(ctx, "idempotency entry unreadable", "key", key, "error", err)
				}
				switch {
				case prev.Digest != "" && prev.Digest != entry.Digest:
					return reject(c, http.StatusConflict, HeaderRequestID+" reused with different body")
				case prev.replayable():
					c.Response().Header().Set(HeaderReplay, "true")
					return c.Blob(prev.Status, echo.MIMEApplicationJSON, prev.Body)
				default:
					return reject(c, http.StatusConflict, "request is already in progress")
				}
			}

			w := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				c.Error(err)
			}

			bg := context.WithoutCancel(ctx)
			if w.status >= http.StatusInternalServerError {
				if err := store.release(bg, key); err != nil {
					slog.WarnContext(ctx, "idempotency release failed", "key", key, "error", err)
				}
				return nil
			}
			entry.Status = w.status
			entry.Body = w.buf.Bytes()
			entry.StoredAt = time.Now().UTC()
			if err := store.commit(bg, key, entry); err != nil {
				slog.WarnContext(ctx, "idempotency save failed", "key", key, "error", err)
			}
			return nil
		}
	}
}
