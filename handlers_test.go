package blockpress

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, api *fakeAPI) *App {
	t.Helper()
	dir := t.TempDir()
	clock := newFakeClock()
	cfg := SiteConfig{
		Name:          "Test Blog",
		URL:           "https://blog.example.com",
		APIBaseURL:    "http://api.invalid",
		AdminPassword: "pw",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		DatabasePath:  filepath.Join(dir, "data", "blockpress.db"),
		StaticDir:     filepath.Join(dir, "public"),
	}
	app := New(cfg,
		WithAPI(api),
		WithLogger(zerolog.Nop()),
		// zero TTL: every read reaches the API
		WithCache(NewMemoryCache(0)),
		WithClock(clock.Now),
	)
	require.NoError(t, app.Init())
	t.Cleanup(func() { app.Close() })
	return app
}

// browser keeps cookies between requests and adds the CSRF token to posts.
type browser struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, app *App) *browser {
	return &browser{t: t, app: app, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		if c, ok := b.cookies["_csrf"]; ok {
			form.Set("_csrf", c.Value)
		}
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.app.Echo.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, path, form)
}

func (b *browser) login() {
	b.t.Helper()
	b.get("/admin/")
	rec := b.post("/admin/login/", url.Values{"password": {"pw"}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code)
}

func TestBlogPostLive(t *testing.T) {
	app := newTestApp(t, newFakeAPI(liveDocs()...))
	rec := newBrowser(t, app).get("/blog/a/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Post a")
	assert.Contains(t, body, "Body of a")
	assert.Contains(t, body, "Related posts")
	assert.Contains(t, body, "/blog/b/")
}

func TestBlogPostNotFoundStates(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		err    error
		status int
	}{
		{name: "missing document", id: "missing", status: http.StatusNotFound},
		{name: "api refused", id: "a", err: errRefused, status: http.StatusNotFound},
		{name: "unreachable without copy", id: "a", err: errUnreachable, status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(liveDocs()...)
			api.fail(tt.err, nil)
			rec := newBrowser(t, newTestApp(t, api)).get("/blog/" + tt.id + "/")

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), "Post not found")
			assert.Contains(t, rec.Body.String(), `href="/blog/"`)
		})
	}
}

func TestBlogPostUnreachableServesSnapshot(t *testing.T) {
	api := newFakeAPI(liveDocs()...)
	b := newBrowser(t, newTestApp(t, api))
	require.Equal(t, http.StatusOK, b.get("/blog/a/").Code)

	api.fail(errUnreachable, nil)
	rec := b.get("/blog/a/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Body of a")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestBlogListFallsBackToSamples(t *testing.T) {
	api := newFakeAPI(liveDocs()...)
	api.fail(errRefused, nil)
	rec := newBrowser(t, newTestApp(t, api)).get("/blog/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Designing for trust")
	assert.Contains(t, body, "Showing saved posts")
	assert.NotContains(t, body, "Post a")
}

func TestBlogListLive(t *testing.T) {
	rec := newBrowser(t, newTestApp(t, newFakeAPI(liveDocs()...))).get("/blog/?page=abc")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Post c")
	assert.NotContains(t, body, "Showing saved posts")
}

func TestPublicAuxiliaryRoutes(t *testing.T) {
	b := newBrowser(t, newTestApp(t, newFakeAPI(liveDocs()...)))

	rec := b.get("/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog/", rec.Header().Get("Location"))

	rec = b.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = b.get("/robots.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: https://blog.example.com/sitemap.xml")

	rec = b.get("/feed.xml")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<link>https://blog.example.com/blog/a/</link>")
	assert.Contains(t, rec.Body.String(), "<category>go</category>")

	rec = b.get("/sitemap.xml")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://blog.example.com/blog/c/</loc>")
	assert.Contains(t, rec.Body.String(), "<lastmod>2025-03-03</lastmod>")

	rec = b.get("/nowhere/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post not found")
}

func TestAdminRequiresLogin(t *testing.T) {
	b := newBrowser(t, newTestApp(t, newFakeAPI()))

	rec := b.get("/admin/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)

	for _, path := range []string{"/admin/images/", "/admin/blogs/a/edit/", "/admin/drafts/nope/"} {
		rec := b.get(path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/admin/", rec.Header().Get("Location"), path)
	}

	rec = b.post("/admin/drafts/", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get("Location"))
}

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	b := newBrowser(t, newTestApp(t, newFakeAPI()))
	b.get("/admin/")

	rec := b.post("/admin/login/", url.Values{"password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong password.")
}

func TestAdminPostWithoutCSRFIsForbidden(t *testing.T) {
	app := newTestApp(t, newFakeAPI())
	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader("password=pw"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func openDraft(t *testing.T, b *browser) string {
	t.Helper()
	rec := b.post("/admin/drafts/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/admin/drafts/"), loc)
	return loc
}

func TestAdminCreatePost(t *testing.T) {
	api := newFakeAPI()
	b := newBrowser(t, newTestApp(t, api))
	b.login()
	draft := openDraft(t, b)

	rec := b.get(draft)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="block.0.0.type"`)

	rec = b.post(draft, url.Values{
		"mainHeading":       {"Hello world"},
		"author":            {"Nora"},
		"block.0.0.content": {"First paragraph"},
		"action":            {"add-block:0"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="block.0.1.type"`)
	assert.Contains(t, rec.Body.String(), `value="Hello world"`)

	rec = b.post(draft, url.Values{
		"block.0.1.type": {"bullet"},
		"action":         {"apply"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="bullet.0.1.0"`)

	rec = b.post(draft, url.Values{
		"bullet.0.1.0": {"one"},
		"action":       {"save"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "msg=")

	doc, ok := api.doc("new-1")
	require.True(t, ok)
	assert.Equal(t, "Hello world", doc.MainHeading)
	require.Len(t, doc.Sections[0].Blocks, 2)

	// the draft is closed once saved
	rec = b.get(draft)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = b.get("/blog/new-1/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "First paragraph")
	assert.Contains(t, rec.Body.String(), "<li>one</li>")
}

func TestAdminSaveFailureKeepsEdits(t *testing.T) {
	api := newFakeAPI()
	b := newBrowser(t, newTestApp(t, api))
	b.login()
	draft := openDraft(t, b)

	api.fail(nil, errUnreachable)
	rec := b.post(draft, url.Values{
		"mainHeading": {"Unsaved heading"},
		"action":      {"save"},
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not save")
	assert.Contains(t, rec.Body.String(), `value="Unsaved heading"`)

	api.fail(nil, nil)
	rec = b.post(draft, url.Values{"action": {"save"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	doc, ok := api.doc("new-1")
	require.True(t, ok)
	assert.Equal(t, "Unsaved heading", doc.MainHeading)
}

func TestAdminEditAndDelete(t *testing.T) {
	api := newFakeAPI(liveDocs()...)
	b := newBrowser(t, newTestApp(t, api))
	b.login()

	rec := b.get("/admin/blogs/a/edit/")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	draft := rec.Header().Get("Location")

	rec = b.get(draft)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Post a"`)
	assert.Contains(t, rec.Body.String(), `value="delete"`)

	rec = b.post(draft, url.Values{"action": {"delete"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	_, ok := api.doc("a")
	assert.False(t, ok)

	rec = b.get("/admin/blogs/missing/edit/")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "err=")

	rec = b.post("/admin/blogs/b/delete/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	_, ok = api.doc("b")
	assert.False(t, ok)
}

func TestAdminRejectsUnknownAction(t *testing.T) {
	b := newBrowser(t, newTestApp(t, newFakeAPI()))
	b.login()
	draft := openDraft(t, b)

	rec := b.post(draft, url.Values{"action": {"explode"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown action")
}

func TestLogoutDisposesDrafts(t *testing.T) {
	b := newBrowser(t, newTestApp(t, newFakeAPI()))
	b.login()
	draft := openDraft(t, b)

	rec := b.post("/admin/logout/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	b.login()
	rec = b.get(draft)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "err=")
}
