package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"
)

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":  "abc",
		"bearer abc ": "abc",
		"Basic abc":   "",
		"Bearer ":     "",
		"":            "",
	}
	for header, want := range cases {
		if got := BearerToken(header); got != want {
			t.Errorf("Expected %q for %q, got %q", want, header, got)
		}
	}
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokenService("signing-secret", "client-secret", time.Hour)
	e := echo.New()
	e.GET("/private", func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return c.String(http.StatusInternalServerError, "no claims")
		}
		return c.String(http.StatusOK, claims.ClientID)
	}, Middleware(tokens, zaptest.NewLogger(t)))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with garbage token, got %d", rec.Code)
	}

	token, _, err := tokens.IssueToken("kiosk-1", "client-secret")
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "kiosk-1" {
		t.Errorf("Expected 200 kiosk-1, got %d %q", rec.Code, rec.Body.String())
	}
}
