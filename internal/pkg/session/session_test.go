package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CreditFox/internal/pkg/env"
)

func TestNewStoreWithStorageUsesConfiguredCookie(t *testing.T) {
	saved := env.Env
	t.Cleanup(func() { env.Env = saved })
	env.Env = map[string]string{"APP_ENV": "dev", "SESSION_COOKIE": "cf_session"}

	store := NewStoreWithStorage(nil)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		sess.Set(KeySubjectID, "user_1")
		return sess.Save()
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	require.Len(t, resp.Cookies(), 1)
	cookie := resp.Cookies()[0]
	assert.Equal(t, "cf_session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
}
