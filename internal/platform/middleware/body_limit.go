package middleware

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// defaultBodyLimit is used when the configured limit cannot be parsed.
const defaultBodyLimit int64 = 1 << 20

// errBodyTooLarge is returned by the capped reader once a request body
// overruns the limit mid-read.
var errBodyTooLarge = echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")

// BodyLimit caps the request body size. The limit is a human-readable
// string such as "1M" or "512K"; a bare number means bytes. Requests
// that declare a larger Content-Length are rejected with 413 before the
// handler runs, and bodies that overrun the cap mid-read fail with the
// same status.
func BodyLimit(limit string) echo.MiddlewareFunc {
	maxBytes := parseLimit(limit)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}

			if req.ContentLength > maxBytes {
				return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
					"message": fmt.Sprintf("request body exceeds maximum allowed size of %d bytes", maxBytes),
				})
			}

			// Content-Length can be absent or wrong, so the body itself
			// is capped as well.
			req.Body = &cappedBody{ReadCloser: req.Body, limit: maxBytes}
			return next(c)
		}
	}
}

// cappedBody counts bytes as the handler reads and fails the read that
// crosses the limit.
type cappedBody struct {
	io.ReadCloser
	limit int64
	read  int64
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if b.read > b.limit {
		return 0, errBodyTooLarge
	}

	// Read at most one byte past the limit so overflow is observable.
	if allowed := b.limit - b.read + 1; int64(len(p)) > allowed {
		p = p[:allowed]
	}

	n, err := b.ReadCloser.Read(p)
	b.read += int64(n)
	if b.read > b.limit {
		return 0, errBodyTooLarge
	}
	return n, err
}

var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"GB", 1 << 30}, {"G", 1 << 30},
	{"MB", 1 << 20}, {"M", 1 << 20},
	{"KB", 1 << 10}, {"K", 1 << 10},
}

// parseLimit converts a size string like "10M" or "1024" into bytes.
// Unparseable input falls back to 1 MB.
func parseLimit(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	factor := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			factor = u.factor
			s = strings.TrimSuffix(s, u.suffix)
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return defaultBodyLimit
	}
	return n * factor
}
