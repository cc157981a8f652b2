package blockpress

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blockpress/blogapi"
	"github.com/eringen/blockpress/editor"
	"github.com/eringen/blockpress/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"), c.QueryParam("err"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		a.Log.Warn().Str("ip", ip).Msg("login rate limited")
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) != 1 {
		a.loginLimiter.Record(ip)
		return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
	}
	if _, err := a.startAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminLogout(c echo.Context) error {
	if s := SessionFrom(c); s.Authenticated {
		if n := a.Drafts.CloseAll(s.ID); n > 0 {
			a.Log.Info().Int("drafts", n).Msg("discarded drafts on logout")
		}
	}
	if err := a.endAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminDashboard(c echo.Context, msg, errText string) error {
	d := views.Dashboard{
		Drafts:  a.Drafts.List(SessionFrom(c).ID),
		Message: msg,
		Error:   errText,
		CSRF:    CsrfToken(c),
	}
	l, err := a.Source.List(c.Request().Context(), blogapi.Page{Page: 1, Limit: blogapi.MaxLimit})
	if err != nil {
		return err
	}
	d.Posts = views.PostCards(l.Blogs)
	if l.Served != ServedLive && d.Error == "" {
		d.Error = "The blog API is unavailable. Posts shown are " + l.Served.String() + " copies."
	}
	return Render(c, a.Views.AdminDashboard(d))
}

// toDashboard redirects to the dashboard with a flash message under key
// ("msg" or "err").
func toDashboard(c echo.Context, key, text string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?"+url.Values{key: {text}}.Encode())
}

func (a *App) handleDraftNew(c echo.Context) error {
	id := a.Drafts.Open(SessionFrom(c).ID, editor.New(a.API))
	return c.Redirect(http.StatusSeeOther, "/admin/drafts/"+url.PathEscape(id)+"/")
}

func (a *App) handleBlogEdit(c echo.Context) error {
	id := c.Param("id")
	doc, err := a.API.GetBlog(c.Request().Context(), id)
	if err != nil {
		a.Log.Warn().Err(err).Str("id", id).Msg("load document for editing")
		if errors.Is(err, blogapi.ErrNotFound) {
			return toDashboard(c, "err", "That post no longer exists.")
		}
		return toDashboard(c, "err", "Could not load the post: "+err.Error())
	}
	draftID := a.Drafts.Open(SessionFrom(c).ID, editor.Load(a.API, doc))
	return c.Redirect(http.StatusSeeOther, "/admin/drafts/"+url.PathEscape(draftID)+"/")
}

func (a *App) draft(c echo.Context) (string, *editor.Editor, bool) {
	id := c.Param("draft")
	ed, ok := a.Drafts.Get(SessionFrom(c).ID, id)
	return id, ed, ok
}

func (a *App) handleDraftForm(c echo.Context) error {
	id, ed, ok := a.draft(c)
	if !ok {
		return toDashboard(c, "err", "That draft has expired.")
	}
	return a.renderEditor(c, http.StatusOK, id, ed, c.QueryParam("msg"), "")
}

func (a *App) handleDraftPost(c echo.Context) error {
	id, ed, ok := a.draft(c)
	if !ok {
		return toDashboard(c, "err", "That draft has expired.")
	}
	form, err := c.FormParams()
	if err != nil {
		return err
	}
	if err := applyForm(ed, form); err != nil {
		return a.renderEditor(c, http.StatusUnprocessableEntity, id, ed, "", err.Error())
	}
	act, err := parseAction(form.Get("action"))
	if err != nil {
		return a.renderEditor(c, http.StatusBadRequest, id, ed, "", err.Error())
	}
	handled, err := act.applyStructural(ed)
	if err != nil {
		return a.renderEditor(c, http.StatusUnprocessableEntity, id, ed, "", err.Error())
	}
	if handled {
		return a.renderEditor(c, http.StatusOK, id, ed, "", "")
	}

	ctx := c.Request().Context()
	owner := SessionFrom(c).ID
	switch act.kind {
	case "save":
		doc, err := ed.Submit(ctx)
		if err != nil {
			return a.editorFailure(c, id, ed, "Could not save", err)
		}
		a.Source.Remember(ctx, doc)
		a.Drafts.Close(owner, id)
		a.Log.Info().Str("id", doc.ID).Msg("document saved")
		return toDashboard(c, "msg", "Saved "+quoted(doc.MainHeading)+".")
	case "delete":
		docID := ed.Draft().ID
		if err := ed.Delete(ctx); err != nil {
			return a.editorFailure(c, id, ed, "Could not delete", err)
		}
		a.Source.Forget(ctx, docID)
		a.Drafts.Close(owner, id)
		a.Log.Info().Str("id", docID).Msg("document deleted")
		return toDashboard(c, "msg", "Deleted.")
	case "discard":
		a.Drafts.Close(owner, id)
		return toDashboard(c, "msg", "Draft discarded.")
	}
	return a.renderEditor(c, http.StatusOK, id, ed, "", "")
}

// editorFailure re-renders the form with the operator's edits so the action
// can be retried.
func (a *App) editorFailure(c echo.Context, id string, ed *editor.Editor, what string, err error) error {
	if errors.Is(err, editor.ErrDisposed) {
		return toDashboard(c, "err", "That draft was closed.")
	}
	a.Log.Warn().Err(err).Str("draft", id).Msg(what)
	status := http.StatusUnprocessableEntity
	if blogapi.IsTransport(err) {
		status = http.StatusBadGateway
	}
	return a.renderEditor(c, status, id, ed, "", what+": "+err.Error())
}

func (a *App) renderEditor(c echo.Context, status int, id string, ed *editor.Editor, msg, errText string) error {
	images, err := a.Store.ListImages()
	if err != nil {
		a.Log.Warn().Err(err).Msg("list images for editor")
	}
	return RenderStatus(c, status, a.Views.EditorForm(views.EditorPage{
		DraftID: id,
		Draft:   ed.Draft(),
		Error:   errText,
		Message: msg,
		CSRF:    CsrfToken(c),
		Images:  images,
	}))
}

func (a *App) handleBlogDelete(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()
	if err := a.API.DeleteBlog(ctx, id); err != nil {
		a.Log.Warn().Err(err).Str("id", id).Msg("delete document")
		return toDashboard(c, "err", "Could not delete: "+err.Error())
	}
	a.Source.Forget(ctx, id)
	a.Log.Info().Str("id", id).Msg("document deleted")
	return toDashboard(c, "msg", "Deleted.")
}

func quoted(s string) string {
	if s == "" {
		return "untitled post"
	}
	return "“" + s + "”"
}
