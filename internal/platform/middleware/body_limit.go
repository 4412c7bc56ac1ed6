package middleware

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// IngestPathPrefix is where the admin coverage, claims and EOB uploads live.
const IngestPathPrefix = "/api/v1/admin/members/"

// BodyLimit caps request bodies. ingestLimit applies to PUTs under
// IngestPathPrefix, which carry coverage bundles, claim batches and EOB
// PDFs; defaultLimit applies everywhere else.
//
// Limits are strings such as "512K", "1M" or "1G". A bare number is bytes.
// Oversized requests get 413, either up front from Content-Length or once
// a handler reads past the limit.
func BodyLimit(defaultLimit, ingestLimit string) echo.MiddlewareFunc {
	defaultBytes := parseLimit(defaultLimit)
	ingestBytes := parseLimit(ingestLimit)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}

			limit := defaultBytes
			if req.Method == http.MethodPut && strings.HasPrefix(req.URL.Path, IngestPathPrefix) {
				limit = ingestBytes
			}

			if req.ContentLength > limit {
				return tooLarge(limit)
			}

			body := &limitedReadCloser{ReadCloser: req.Body, remaining: limit}
			req.Body = body

			err := next(c)
			// Bind turns the reader error into a 400; report the real cause.
			if body.exceeded && !c.Response().Committed {
				return tooLarge(limit)
			}
			return err
		}
	}
}

type limitedReadCloser struct {
	io.ReadCloser
	remaining int64
	exceeded  bool
}

func (r *limitedReadCloser) Read(p []byte) (int, error) {
	if r.exceeded {
		return 0, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}

	// One byte past the limit is enough to detect overflow.
	if int64(len(p)) > r.remaining+1 {
		p = p[:r.remaining+1]
	}
	n, err := r.ReadCloser.Read(p)
	r.remaining -= int64(n)
	if r.remaining < 0 {
		r.exceeded = true
		return 0, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	return n, err
}

func tooLarge(limit int64) error {
	return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
		fmt.Sprintf("request body exceeds maximum allowed size of %d bytes", limit))
}

// parseLimit parses "1M", "512K", "10MB" and similar into bytes. Empty or
// malformed values fall back to 1 MB.
func parseLimit(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 1 << 20
	}

	var multiplier int64 = 1
	s = strings.TrimSuffix(s, "B")
	switch {
	case strings.HasSuffix(s, "G"):
		multiplier = 1 << 30
	case strings.HasSuffix(s, "M"):
		multiplier = 1 << 20
	case strings.HasSuffix(s, "K"):
		multiplier = 1 << 10
	}
	if multiplier > 1 {
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 1 << 20
	}
	return n * multiplier
}
