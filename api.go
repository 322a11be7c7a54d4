package monk

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// itemRequest is the body of POST /items. The extension sends name, url
// and tags; description is accepted for other clients.
type itemRequest struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

// apiAuth guards writes to /items with the configured bearer token. An
// admin session is accepted in its place. Without a token writes are open.
func (a *App) apiAuth() echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Skipper: func(c echo.Context) bool {
			return a.Config.APIToken == "" || IsAdmin(c)
		},
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(a.Config.APIToken)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing API token")
		},
	})
}

// handleItemList serves GET /items. ?q= searches name, url and description;
// ?tag= filters by tag. Both may be combined.
func (a *App) handleItemList(c echo.Context) error {
	tag := c.QueryParam("tag")
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		articles, err := a.Store.ListArticles(tag)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, articles)
	}
	articles, err := a.Store.SearchArticles(q)
	if err != nil {
		return err
	}
	if tag != "" {
		articles = filterByTag(articles, tag)
	}
	return c.JSON(http.StatusOK, articles)
}

func (a *App) handleItemGet(c echo.Context) error {
	article, err := a.Store.GetArticle(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "article not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, article)
}

func (a *App) handleItemCreate(c echo.Context) error {
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	req.URL = strings.TrimSpace(req.URL)
	if !validArticleURL(req.URL) {
		return echo.NewHTTPError(http.StatusBadRequest, "url must be an absolute http(s) URL")
	}

	article := NewArticle(strings.TrimSpace(req.Name), req.URL, req.Tags)
	article.Description = req.Description
	if err := a.Store.AddArticle(article); err != nil {
		return err
	}
	a.Cache.Invalidate()
	c.Logger().Infof("saved %s as %s", article.URL, article.ID)
	return c.JSON(http.StatusCreated, article)
}

func (a *App) handleItemDelete(c echo.Context) error {
	id := c.Param("id")
	article, err := a.Store.GetArticle(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "article not found")
		}
		return err
	}
	if err := a.Store.DeleteArticle(id); err != nil {
		return err
	}
	a.removeCover(article.Cover)
	a.Cache.Invalidate()
	return c.NoContent(http.StatusNoContent)
}
