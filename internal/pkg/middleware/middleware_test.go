package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CreditFox/internal/pkg/identity"
	"github.com/ManuelReschke/CreditFox/internal/pkg/logging"
	"github.com/ManuelReschke/CreditFox/internal/pkg/usercontext"
)

type resolverFunc func(*fiber.Ctx) (identity.Identity, error)

func (f resolverFunc) Resolve(c *fiber.Ctx) (identity.Identity, error) { return f(c) }

func newApp(r identity.Resolver) *fiber.App {
	return newLoggedApp(r, logging.Discard())
}

func newLoggedApp(r identity.Resolver, log *slog.Logger) *fiber.App {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(UserContextMiddleware(r, log))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(usercontext.GetSubjectID(c))
	})
	app.Get("/protected", RequireSubject(log), func(c *fiber.Ctx) error {
		return c.SendString("ok " + usercontext.GetSubjectID(c))
	})
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestUserContextMiddleware_Resolved(t *testing.T) {
	app := newApp(resolverFunc(func(*fiber.Ctx) (identity.Identity, error) {
		return identity.Identity{SubjectID: "user_1", Method: identity.MethodSession}, nil
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok user_1", body(t, resp))
}

func TestUserContextMiddleware_Anonymous(t *testing.T) {
	app := newApp(resolverFunc(func(*fiber.Ctx) (identity.Identity, error) {
		return identity.Identity{}, identity.ErrUnauthenticated
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "", body(t, resp))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"unauthorized"}`, body(t, resp))
}

func TestUserContextMiddleware_BackendFailure(t *testing.T) {
	app := newApp(resolverFunc(func(*fiber.Ctx) (identity.Identity, error) {
		return identity.Identity{}, errors.New("session store unavailable")
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"internal server error"}`, body(t, resp))
}

func TestRequireSubject_LogsRejection(t *testing.T) {
	var logs bytes.Buffer
	log := logging.New(logging.Config{Level: "info", Format: "json", Output: &logs})
	app := newLoggedApp(resolverFunc(func(*fiber.Ctx) (identity.Identity, error) {
		return identity.Identity{}, identity.ErrUnauthenticated
	}), log)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	out := logs.String()
	assert.Contains(t, out, `"msg":"unauthorized"`)
	assert.Contains(t, out, `"path":"/protected"`)
	assert.Contains(t, out, `"request_id":"req-123"`)
}
