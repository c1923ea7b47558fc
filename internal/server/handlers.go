package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/instalily/partsassist/internal/catalog"
	"github.com/instalily/partsassist/internal/dialogue"
	"github.com/instalily/partsassist/internal/rag"
	"github.com/instalily/partsassist/session"
)

// ChatIn is the POST /chat request body.
type ChatIn struct {
	Message   string `json:"message"`
	Part      string `json:"part"`
	Model     string `json:"model"`
	Appliance string `json:"appliance"`
	SessionID string `json:"sessionId"`
}

// ChatOut echoes the session id so browser clients without cookies can
// thread follow-up turns.
type ChatOut struct {
	Response  string           `json:"response"`
	Intent    string           `json:"intent"`
	Memory    session.Snapshot `json:"memory"`
	SessionID string           `json:"sessionId"`
}

// Handler exposes the chat API over the shared dialogue router.
type Handler struct {
	Router           *dialogue.Router
	Catalog          *catalog.Catalog
	Retriever        *rag.Retriever
	LLMReady         bool
	DefaultAppliance string
	Logger           *log.Logger
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.alive)
	e.GET("/healthz", h.healthz)
	e.GET("/featured", h.featured)
	e.GET("/debug/lookup", h.debugLookup)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/chat", h.chat)
}

func (h *Handler) alive(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "PartsAssist API is alive."})
}

func (h *Handler) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"catalog_items": h.Catalog.Size(),
		"rag_chunks":    h.Retriever.Size(),
		"llm_ready":     h.LLMReady,
	})
}

// featured backs the landing page's suggestion chips.
func (h *Handler) featured(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"parts": h.Catalog.Featured()})
}

// debugLookup exposes raw catalog search for operator inspection.
func (h *Handler) debugLookup(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q query parameter required")
	}
	hits := h.Catalog.Search(q, "", "")
	if len(hits) > 10 {
		hits = hits[:10]
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"q":     q,
		"count": len(hits),
		"hits":  hits,
	})
}

func (h *Handler) chat(c echo.Context) error {
	var in ChatIn
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(in.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message required")
	}

	id := strings.TrimSpace(in.SessionID)
	if id == "" {
		id = strings.TrimSpace(c.Request().Header.Get("X-Session-Id"))
	}
	if id == "" {
		id = uuid.NewString()
	}

	appliance := in.Appliance
	if strings.TrimSpace(appliance) == "" {
		appliance = h.DefaultAppliance
	}

	resp := h.Router.Handle(c.Request().Context(), dialogue.Request{
		Message:   in.Message,
		Part:      in.Part,
		Model:     in.Model,
		Appliance: appliance,
		SessionID: id,
	})
	return c.JSON(http.StatusOK, ChatOut{
		Response:  resp.Response,
		Intent:    resp.Intent,
		Memory:    resp.Memory,
		SessionID: id,
	})
}
