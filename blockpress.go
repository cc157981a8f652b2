// Package blockpress serves a block-structured blog whose documents live in a
// remote blog API, and an admin CMS that edits them one block at a time.
//
// Templates are supplied through ViewFuncs; DefaultViews returns the bundled
// set. The App owns the handler logic, middleware, local snapshot store and
// the open editor drafts.
package blockpress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/blockpress/blogapi"
	"github.com/eringen/blockpress/editor"
	"github.com/eringen/blockpress/render"
	"github.com/eringen/blockpress/views"
)

// ViewFuncs holds the components the App calls when rendering pages.
type ViewFuncs struct {
	BlogList       func(site views.SiteConfig, l views.Listing) templ.Component
	BlogPage       func(site views.SiteConfig, a render.Article, related []views.PostCard) templ.Component
	AdminLogin     func(showError bool, csrf string) templ.Component
	AdminDashboard func(d views.Dashboard) templ.Component
	EditorForm     func(p views.EditorPage) templ.Component
	AdminImages    func(images []views.Image, csrf string) templ.Component
	NotFound       func(site views.SiteConfig) templ.Component
	ServerError    func(site views.SiteConfig) templ.Component
}

// DefaultViews returns the bundled templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		BlogList:       views.BlogList,
		BlogPage:       views.BlogPage,
		AdminLogin:     views.AdminLogin,
		AdminDashboard: views.AdminDashboard,
		EditorForm:     views.EditorForm,
		AdminImages:    views.AdminImages,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
	}
}

// BlogBackend is everything the App needs from the blog API: the reads the
// public site makes and the writes the editor submits.
type BlogBackend interface {
	BlogAPI
	editor.Backend
}

// App is the central blockpress application.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Source *Source
	API    BlogBackend
	Cache  Cache
	Drafts *DraftRegistry
	Views  ViewFuncs
	Log    zerolog.Logger

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	clock        func() time.Time
	stops        []func()
	initialized  bool
}

// Option configures an App.
type Option func(*App)

// WithCustomRoutes registers a function that adds extra routes after the
// built-in ones.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithViews replaces the bundled templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithLogger replaces the logger built from the config.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithAPI replaces the HTTP blog API client.
func WithAPI(api BlogBackend) Option {
	return func(a *App) {
		a.API = api
	}
}

// WithCache replaces the cache chosen from the config.
func WithCache(c Cache) Option {
	return func(a *App) {
		a.Cache = c
	}
}

// WithClock replaces time.Now for sessions, drafts and article ages.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.clock = now
	}
}

// New creates an App. Nothing is opened until Init or Start.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  DefaultViews(),
		Log:    NewLogger(cfg.LogLevel, cfg.LogFormat),
		clock:  time.Now,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) now() time.Time {
	return a.clock()
}

// Init opens the store, seeds the bundled samples, connects the cache and
// the blog API, and registers middleware and routes.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("blockpress: init store: %w", err)
	}
	a.Store = store
	if err := SeedSamples(store); err != nil {
		return fmt.Errorf("blockpress: seed samples: %w", err)
	}

	if a.Cache == nil {
		cache, err := a.newCache()
		if err != nil {
			return err
		}
		a.Cache = cache
	}

	if a.API == nil {
		client, err := blogapi.New(a.Config.APIBaseURL,
			blogapi.WithTimeout(a.Config.APITimeout),
			blogapi.WithToken(a.Config.APIToken),
		)
		if err != nil {
			return fmt.Errorf("blockpress: init api client: %w", err)
		}
		a.API = client
	}

	a.Source = NewSource(a.API, a.Cache, a.Store, a.Log)

	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.loginLimiter.now = a.now
	a.stops = append(a.stops, a.loginLimiter.StartCleanup())

	a.Drafts = NewDraftRegistry(a.Config.DraftTTL)
	a.Drafts.now = a.now
	a.stops = append(a.stops, a.Drafts.StartSweeper(time.Minute, func(n int) {
		a.Log.Info().Int("drafts", n).Msg("expired idle drafts")
	}))

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

func (a *App) newCache() (Cache, error) {
	if a.Config.RedisURL == "" {
		return NewMemoryCache(a.Config.CacheTTL), nil
	}
	rc, err := NewRedisCache(a.Config.RedisURL, a.Config.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("blockpress: init redis cache: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		a.Log.Warn().Err(err).Msg("redis unreachable, caching in memory")
		_ = rc.Close()
		return NewMemoryCache(a.Config.CacheTTL), nil
	}
	return rc, nil
}

// Start initializes the App and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Log.Info().Str("addr", a.Config.Addr).Str("api", a.Config.APIBaseURL).Msg("starting server")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", a.handleHealth)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", handleRootRedirect)
	e.GET("/blog/", a.handleBlogList)
	e.GET("/blog/:id/", a.handleBlogPost)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)

	admin := e.Group("/admin", requireAdmin)
	admin.POST("/drafts/", a.handleDraftNew)
	admin.GET("/drafts/:draft/", a.handleDraftForm)
	admin.POST("/drafts/:draft/", a.handleDraftPost)
	admin.GET("/blogs/:id/edit/", a.handleBlogEdit)
	admin.POST("/blogs/:id/delete/", a.handleBlogDelete)
	admin.GET("/images/", a.handleImageList)
	admin.POST("/images/upload/", a.handleImageUpload)
	admin.DELETE("/images/:filename/", a.handleImageDelete)
	admin.POST("/images/:filename/delete/", a.handleImageDelete)
}

// Close stops background work and releases the store and cache.
func (a *App) Close() error {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil

	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if c, ok := a.Cache.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
