package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// maxHeaderValueSize caps any single header value at 8KB.
const maxHeaderValueSize = 8192

var (
	// sqlPattern flags classic injection probes. Matches are logged, not
	// blocked: the repo layer parameterizes every query, so a hit only
	// signals someone poking at the API.
	sqlPattern = regexp.MustCompile(`(?i)('+\s*;\s*DROP\b|UNION\s+SELECT\b|'\s+OR\s+1\s*=\s*1|1\s*=\s*1)`)

	// scriptPattern blocks markup and event-handler injection in query
	// strings.
	scriptPattern = regexp.MustCompile(`(?i)(<script|javascript\s*:|on\w+\s*=)`)
)

// Sanitize returns request screening middleware with warnings discarded.
func Sanitize() echo.MiddlewareFunc {
	return SanitizeWithLogger(zerolog.Nop())
}

// SanitizeWithLogger returns request screening middleware. The path and
// query are checked for traversal, null bytes and script injection, and
// header values are bounded and must be newline-free. A failing request
// gets a 400 and never reaches a handler.
func SanitizeWithLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if reason := screenPath(req.URL.Path, req.URL.RawPath); reason != "" {
				return rejectRequest(c, reason)
			}
			if reason := screenHeaders(req.Header); reason != "" {
				return rejectRequest(c, reason)
			}
			if reason := screenQuery(c, logger); reason != "" {
				return rejectRequest(c, reason)
			}

			return next(c)
		}
	}
}

func screenPath(path, rawPath string) string {
	if rawPath == "" {
		rawPath = path
	}
	for _, s := range []string{path, rawPath} {
		if hasTraversal(s) {
			return "path traversal detected"
		}
		if hasNullByte(s) {
			return "null byte injection detected"
		}
	}
	return ""
}

func screenHeaders(h http.Header) string {
	for name, values := range h {
		for _, v := range values {
			if len(v) > maxHeaderValueSize {
				return "header value exceeds maximum size: " + name
			}
			if strings.ContainsAny(v, "\r\n") {
				return "header injection detected: " + name
			}
		}
	}
	return ""
}

func screenQuery(c echo.Context, logger zerolog.Logger) string {
	for key, values := range c.Request().URL.Query() {
		if hasNullByte(key) {
			return "null byte injection detected in query parameter"
		}
		if scriptPattern.MatchString(key) {
			return "script injection detected in query parameter"
		}
		for _, v := range values {
			if hasNullByte(v) {
				return "null byte injection detected in query parameter"
			}
			if sqlPattern.MatchString(v) {
				logger.Warn().
					Str("param", key).
					Str("path", c.Request().URL.Path).
					Str("remote_ip", c.RealIP()).
					Msg("sql injection pattern in query parameter")
			}
			if scriptPattern.MatchString(v) {
				return "script injection detected in query parameter"
			}
		}
	}
	return ""
}

// hasTraversal reports dot-dot sequences in raw or percent-encoded form,
// including the double-encoded variant.
func hasTraversal(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(s, "..") ||
		strings.Contains(lower, "%2e%2e") ||
		strings.Contains(lower, "%252e")
}

// hasNullByte reports NUL in raw or percent-encoded form.
func hasNullByte(s string) bool {
	return strings.ContainsRune(s, '\x00') ||
		strings.Contains(strings.ToLower(s), "%00")
}

func rejectRequest(c echo.Context, reason string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"message": reason})
}

// SanitizeString strips NUL and control characters (keeping \n, \r and
// \t) from a field value and trims surrounding whitespace. Handlers use
// it for free-text fields such as names and appointment types.
func SanitizeString(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\x00' {
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(cleaned)
}
