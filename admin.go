package monk

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/monk/pageagent"
)

// TitleFunc looks up the title of the page at url.
type TitleFunc func(ctx context.Context, url string) (string, error)

var titleClient = &http.Client{Timeout: 10 * time.Second}

func fetchPageTitle(ctx context.Context, url string) (string, error) {
	doc, err := pageagent.FetchDocument(ctx, titleClient, url)
	if err != nil {
		return "", err
	}
	return doc.Title(), nil
}

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}
	a.loginLimiter.Record(ip)
	c.Logger().Warnf("failed admin login from %s", ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleAdder(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.Adder(CsrfToken(c), c.QueryParam("msg")))
}

func (a *App) handleAdderSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	url := strings.TrimSpace(c.FormValue("url"))
	if !validArticleURL(url) {
		return redirectWithMsg(c, "/add/", "Enter an absolute http(s) URL.")
	}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
		title, err := a.fetchTitle(ctx, url)
		cancel()
		if err != nil {
			c.Logger().Warnf("fetch title for %s: %v", url, err)
		}
		name = title
	}

	article := NewArticle(name, url, SplitTags(c.FormValue("tags")))
	article.Description = strings.TrimSpace(c.FormValue("description"))
	if err := a.Store.AddArticle(article); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/articles/"+article.ID+"/")
}

func (a *App) handleArticleEdit(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")
	article, err := a.Store.GetArticle(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		article.Name = name
	}
	article.Description = strings.TrimSpace(c.FormValue("description"))
	article.Tags = SplitTags(c.FormValue("tags"))
	if err := a.Store.UpdateArticle(article); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/articles/"+id+"/")
}

func (a *App) handleArticleDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")
	article, err := a.Store.GetArticle(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	if err := a.Store.DeleteArticle(id); err != nil {
		return err
	}
	a.removeCover(article.Cover)
	a.Cache.Invalidate()
	return redirectWithMsg(c, "/", "Deleted "+article.Name)
}
