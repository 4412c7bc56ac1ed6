package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequireRole_Allowed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserRolesKey, []string{"content-editor"}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireRole("content-editor")(okHandler)(c)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserRolesKey, []string{"member"}))
	c := e.NewContext(req, httptest.NewRecorder())

	err := RequireRole("content-editor")(okHandler)(c)
	expectStatus(t, err, http.StatusForbidden)
}

func TestRequireRole_AdminBypass(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserRolesKey, []string{"admin"}))
	c := e.NewContext(req, httptest.NewRecorder())

	if err := RequireRole("content-editor")(okHandler)(c); err != nil {
		t.Error("admin should bypass role checks")
	}
}

func TestRequireMember(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	expectStatus(t, RequireMember()(okHandler)(c), http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithMember(req.Context(), "m1", "p1", nil))
	c = e.NewContext(req, httptest.NewRecorder())
	if err := RequireMember()(okHandler)(c); err != nil {
		t.Errorf("expected member to pass, got %v", err)
	}
}

func TestUserIDFromContext_Empty(t *testing.T) {
	if uid := UserIDFromContext(context.Background()); uid != "" {
		t.Errorf("expected empty user id, got %q", uid)
	}
	if pid := PlanIDFromContext(context.Background()); pid != "" {
		t.Errorf("expected empty plan id, got %q", pid)
	}
}
