package blockpress

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionExpiresAfterMaxAge(t *testing.T) {
	app := newTestApp(t, newFakeAPI())
	clock := newFakeClock()
	app.clock = clock.Now

	b := newBrowser(t, app)
	b.login()

	rec := b.get("/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "New post")

	clock.Advance(sessionMaxAge + time.Minute)
	rec = b.get("/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)
}

func TestLoginIssuesFreshSessionID(t *testing.T) {
	app := newTestApp(t, newFakeAPI())
	var ids []string
	app.Echo.GET("/whoami/", func(c echo.Context) error {
		ids = append(ids, SessionFrom(c).ID)
		return c.NoContent(http.StatusOK)
	})

	b := newBrowser(t, app)
	b.login()
	b.get("/whoami/")
	b.post("/admin/logout/", nil)
	b.get("/whoami/")
	b.login()
	b.get("/whoami/")

	require.Len(t, ids, 3)
	assert.NotEmpty(t, ids[0])
	assert.Empty(t, ids[1])
	assert.NotEmpty(t, ids[2])
	assert.NotEqual(t, ids[0], ids[2])
}
