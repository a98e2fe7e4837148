package staff

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/practicewell/practicewell/internal/platform/auth"
)

func loginContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLogin(t *testing.T) {
	svc := NewService(newMockRepo())
	member := newClinician(t, svc, "alex@example.com")
	secret := []byte("0123456789abcdef0123456789abcdef")
	h := NewHandler(svc, secret, time.Hour, "demo")

	c, rec := loginContext(t, `{"email":"alex@example.com","password":"correct horse battery"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}

	claims, err := auth.ParseToken(secret, resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != member.ID.String() {
		t.Errorf("unexpected subject %s", claims.Subject)
	}
	if claims.TenantID != "demo" {
		t.Errorf("unexpected tenant %s", claims.TenantID)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != RoleClinician {
		t.Errorf("unexpected roles %v", claims.Roles)
	}
}

func TestLogin_BadPassword(t *testing.T) {
	svc := NewService(newMockRepo())
	newClinician(t, svc, "alex@example.com")
	h := NewHandler(svc, []byte("secret"), time.Hour, "demo")

	c, _ := loginContext(t, `{"email":"alex@example.com","password":"wrong"}`)
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 HTTPError, got %v", err)
	}
}
