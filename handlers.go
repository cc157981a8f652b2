package blockpress

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blockpress/blogapi"
	"github.com/eringen/blockpress/render"
	"github.com/eringen/blockpress/views"
)

const relatedLimit = 3

func (a *App) handleBlogList(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	l, err := a.Source.List(c.Request().Context(), blogapi.Page{Page: page, Limit: a.Config.PageSize})
	if err != nil {
		return err
	}
	return Render(c, a.Views.BlogList(a.Config.View(), views.Listing{
		Posts:      views.PostCards(l.Blogs),
		Page:       l.Page,
		TotalPages: l.TotalPages,
		Stale:      l.Served != ServedLive,
	}))
}

func (a *App) handleBlogPost(c echo.Context) error {
	ctx := c.Request().Context()
	doc, served, err := a.Source.Get(ctx, c.Param("id"))
	if err != nil {
		var apiErr *blogapi.APIError
		switch {
		case errors.As(err, &apiErr):
			return a.renderNotFound(c)
		case blogapi.IsTransport(err):
			a.Log.Warn().Err(err).Str("id", c.Param("id")).Msg("no copy of unreachable document")
			return a.renderUnavailable(c)
		}
		return err
	}
	if served != ServedLive {
		c.Response().Header().Set("Cache-Control", "no-store")
	}

	article := render.Project(doc, a.now())
	related := a.Source.Related(ctx, doc, relatedLimit)
	return Render(c, a.Views.BlogPage(a.Config.View(), article, views.PostCards(related)))
}

func (a *App) handleSitemap(c echo.Context) error {
	l, err := a.Source.List(c.Request().Context(), blogapi.Page{Page: 1, Limit: blogapi.MaxLimit})
	if err != nil {
		return err
	}
	return a.renderSitemap(c, l.Blogs)
}

func (a *App) handleFeed(c echo.Context) error {
	l, err := a.Source.List(c.Request().Context(), blogapi.Page{Page: 1, Limit: blogapi.MaxLimit})
	if err != nil {
		return err
	}
	return a.renderRSS(c, l.Blogs)
}

func handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/blog/")
}

func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\nDisallow: /admin/\n")
	b.WriteString("Sitemap: " + strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config.View()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
