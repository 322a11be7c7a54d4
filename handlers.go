package monk

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/monk/views"
)

func (a *App) handleHome(c echo.Context) error {
	tag := normalizeTag(c.QueryParam("tag"))
	articles, err := a.Cache.ListArticles(tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(views.ListState{
		Articles:  viewList(articles),
		Tags:      tags,
		ActiveTag: tag,
		Layout:    listLayout(c),
		Admin:     IsAdmin(c),
		CSRFToken: CsrfToken(c),
		Message:   c.QueryParam("msg"),
	}))
}

func (a *App) handleArticle(c echo.Context) error {
	article, err := a.Cache.GetArticle(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	return Render(c, a.Views.Article(article.View(), IsAdmin(c), CsrfToken(c)))
}

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Cache.ListArticles("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, articles)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	// The API keeps Echo's JSON error bodies.
	if isAPIPath(c.Request().URL.Path) {
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// redirectWithMsg sends the browser to path with a flash message.
func redirectWithMsg(c echo.Context, path, msg string) error {
	if msg == "" {
		return c.Redirect(http.StatusSeeOther, path)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return c.Redirect(http.StatusSeeOther, path+sep+"msg="+url.QueryEscape(msg))
}
