package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

// runWithTimeout sends one request through RequestTimeout(d) into h.
func runWithTimeout(d time.Duration, h echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := RequestTimeout(d)(h)(c)
	return rec, err
}

func TestRequestTimeout_FastHandlerUnaffected(t *testing.T) {
	called := false
	rec, err := runWithTimeout(5*time.Second, func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to run")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequestTimeout_SlowHandlerGets504(t *testing.T) {
	rec, err := runWithTimeout(50*time.Millisecond, func(c echo.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return c.NoContent(http.StatusOK)
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	})

	// The middleware writes the 504 itself rather than returning an error.
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["message"] == "" {
		t.Error("expected a timeout message")
	}
}

func TestRequestTimeout_DeadlineVisibleToHandler(t *testing.T) {
	_, err := runWithTimeout(30*time.Second, func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); !ok {
			t.Error("expected the request context to carry a deadline")
		}
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestTimeout_HandlerErrorPropagates(t *testing.T) {
	_, err := runWithTimeout(5*time.Second, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	})
	if err == nil {
		t.Fatal("expected handler error")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", he.Code)
	}
}
