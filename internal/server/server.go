package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/instalily/partsassist/config"
	"github.com/instalily/partsassist/internal/catalog"
	"github.com/instalily/partsassist/internal/dialogue"
	"github.com/instalily/partsassist/internal/guard"
	"github.com/instalily/partsassist/internal/rag"
	"github.com/instalily/partsassist/internal/telemetry"
	"github.com/instalily/partsassist/provider"
	"github.com/instalily/partsassist/session"
)

// Run wires the catalog, retriever, session store and generator together
// and serves the HTTP API until the listener stops.
func Run(cfg *config.Config) error {
	e := newEcho()
	logger := log.New(log.Writer(), "[SERVER] ", log.LstdFlags)

	cat, err := catalog.Load(cfg.Catalog.SnapshotPath, cfg.Catalog.HTMLSources, nil)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	ret := rag.LoadRetriever(cfg.Knowledge.Path, nil)

	sessions, err := newSessionStore(cfg.Session)
	if err != nil {
		return err
	}

	// a missing key disables the generator; every other turn type still works
	gen, err := provider.NewGenerator(cfg.LLM)
	if err != nil {
		logger.Printf("generative answers disabled: %v", err)
		gen = nil
	}

	router := &dialogue.Router{
		Catalog:    cat,
		Retriever:  ret,
		Sessions:   sessions,
		LLM:        gen,
		History:    dialogue.NewHistory(),
		Scope:      guard.NewScope(cat.ScopeKeywords()),
		Metrics:    telemetry.New(),
		Logger:     log.New(log.Writer(), "[ROUTER] ", log.LstdFlags),
		LLMTimeout: cfg.LLM.Timeout,
	}

	h := &Handler{
		Router:           router,
		Catalog:          cat,
		Retriever:        ret,
		LLMReady:         gen != nil,
		DefaultAppliance: cfg.General.DefaultAppliance,
		Logger:           logger,
	}
	h.Register(e)

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8000"
	}
	logger.Printf("listening on %s (catalog=%d chunks=%d llm=%t)", addr, cat.Size(), ret.Size(), gen != nil)
	return e.Start(addr)
}

func newSessionStore(cfg config.SessionConfig) (session.Store, error) {
	switch session.StoreType(cfg.StoreType) {
	case session.RedisStoreType:
		client, err := session.Conn(context.Background(), cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, 5*time.Second)
		if err != nil {
			return nil, fmt.Errorf("redis connection failed (%s): %w", cfg.Redis.Addr(), err)
		}
		return session.NewRedisStore(client, nil), nil
	case session.InMemoryStoreType, "":
		return session.NewInMemoryStore(cfg.Shards), nil
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", cfg.StoreType)
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Session-Id"},
	}))
	return e
}
