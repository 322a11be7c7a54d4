// Package monk is the remote article collection behind the monk browser
// extension. It serves the JSON API the popup uploads to (/items) and a
// small web front-end to list, add and read saved articles.
//
// Pages are templ components supplied through ViewFuncs; DefaultViews wires
// the ones in the views package.
package monk

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/monk/views"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Home        func(s views.ListState) templ.Component
	Article     func(a views.Article, admin bool, csrfToken string) templ.Component
	Adder       func(csrfToken, message string) templ.Component
	AdminLogin  func(showError bool, csrfToken string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// DefaultViews binds the views package components to site.
func DefaultViews(site views.SiteConfig) ViewFuncs {
	return ViewFuncs{
		Home: func(s views.ListState) templ.Component { return views.Home(site, s) },
		Article: func(a views.Article, admin bool, csrfToken string) templ.Component {
			return views.ArticlePage(site, a, admin, csrfToken)
		},
		Adder: func(csrfToken, message string) templ.Component {
			return views.AdderForm(site, csrfToken, message)
		},
		AdminLogin: func(showError bool, csrfToken string) templ.Component {
			return views.AdminLogin(site, showError, csrfToken)
		},
		NotFound:    func() templ.Component { return views.NotFound(site) },
		ServerError: func() templ.Component { return views.ServerError(site) },
	}
}

// App wires together the store, cache, handlers and middleware.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  ArticleStore
	Cache  *ArticleCache
	Views  ViewFuncs

	loginLimiter *LoginLimiter
	fetchTitle   TitleFunc
	customRoutes []func(*App)
	staticDir    string
	ready        bool
}

// New creates an App. Nothing is opened until Init or Start.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:     cfg,
		Echo:       echo.New(),
		staticDir:  "public",
		fetchTitle: fetchPageTitle,
	}
	a.Views = DefaultViews(cfg.Site())

	for _, opt := range opts {
		opt(a)
	}

	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(parseLogLevel(a.Config.LogLevel))
	return a
}

// Init opens the store and installs middleware and routes. Start calls it;
// tests call it directly and drive a.Echo as an http.Handler.
func (a *App) Init() error {
	if a.ready {
		return nil
	}
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("monk: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("monk: SessionSecret is required")
	}

	if a.Store == nil {
		store, err := OpenStore(a.Config)
		if err != nil {
			return fmt.Errorf("monk: init store: %w", err)
		}
		a.Store = store
	}

	a.Cache = NewArticleCache(a.Store, a.Config.CacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start initializes the app and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("monk listening on %s (%s)", a.Config.Addr, a.Config.storeName())
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/monk.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.staticDir)

	// Collection API used by the extension and the CLI.
	auth := a.apiAuth()
	e.GET("/items", a.handleItemList)
	e.GET("/items/:id", a.handleItemGet)
	e.POST("/items", a.handleItemCreate, auth)
	e.DELETE("/items/:id", a.handleItemDelete, auth)

	// Web front-end.
	e.GET("/", a.handleHome)
	e.GET("/articles/:id/", a.handleArticle)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/add/", a.handleAdder)
	e.POST("/add/", a.handleAdderSave)
	e.POST("/articles/:id/edit/", a.handleArticleEdit)
	e.POST("/articles/:id/cover/", a.handleCoverUpload)
	e.POST("/articles/:id/delete/", a.handleArticleDelete)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
}

// Close releases the store and stops background work.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
