package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/instalily/partsassist/internal/catalog"
	"github.com/instalily/partsassist/internal/dialogue"
	"github.com/instalily/partsassist/internal/guard"
	"github.com/instalily/partsassist/internal/rag"
	"github.com/instalily/partsassist/session"
)

func newTestHandler() *Handler {
	logger := log.New(io.Discard, "", 0)
	cat := catalog.New([]catalog.Entry{
		{
			PartNumber: "PS11752778",
			Name:       "Upper Dishrack Adjuster Kit",
			Brand:      "whirlpool",
			Appliance:  "dishwasher",
			Category:   "rack",
			Models:     []string{"WDT780SAEM1"},
		},
		{
			PartNumber: "PS2071928",
			Name:       "Refrigerator Water Filter",
			Brand:      "samsung",
			Appliance:  "refrigerator",
			Category:   "filter",
		},
	}, logger)
	ret := rag.NewRetriever([]string{"Dishwasher racks slide on adjusters and rollers."}, logger)
	router := &dialogue.Router{
		Catalog:   cat,
		Retriever: ret,
		Sessions:  session.NewInMemoryStore(4),
		History:   dialogue.NewHistory(),
		Scope:     guard.NewScope(cat.ScopeKeywords()),
		Logger:    logger,
	}
	return &Handler{
		Router:           router,
		Catalog:          cat,
		Retriever:        ret,
		LLMReady:         false,
		DefaultAppliance: "dishwasher",
		Logger:           logger,
	}
}

func postChat(t *testing.T, h *Handler, body string, header map[string]string) (*httptest.ResponseRecorder, ChatOut) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := h.chat(ctx); err != nil {
		t.Fatalf("chat: %v", err)
	}
	var out ChatOut
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec, out
}

func TestChatInstallationEndToEnd(t *testing.T) {
	h := newTestHandler()
	rec, out := postChat(t, h, `{"message":"How do I install PS11752778?","appliance":"dishwasher"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if out.Intent != "installation" {
		t.Fatalf("intent = %q, want installation", out.Intent)
	}
	if !strings.Contains(out.Response, "PS11752778") || !strings.Contains(out.Response, "1)") {
		t.Errorf("expected a numbered guide for the part: %q", out.Response)
	}
	if out.Memory.LastPart == nil || *out.Memory.LastPart != "PS11752778" {
		t.Errorf("memory should record the part: %+v", out.Memory)
	}
}

func TestChatGeneratesSessionID(t *testing.T) {
	h := newTestHandler()
	_, out := postChat(t, h, `{"message":"show me rack parts"}`, nil)
	if out.SessionID == "" {
		t.Fatalf("sessionId should be generated when absent")
	}
	if out.Intent != "part_search" {
		t.Errorf("intent = %q, want part_search", out.Intent)
	}
}

func TestChatUsesSessionHeader(t *testing.T) {
	h := newTestHandler()
	_, out := postChat(t, h, `{"message":"show me rack parts"}`, map[string]string{"X-Session-Id": "abc-123"})
	if out.SessionID != "abc-123" {
		t.Errorf("sessionId = %q, want abc-123", out.SessionID)
	}
}

func TestChatSessionMemoryAcrossTurns(t *testing.T) {
	h := newTestHandler()
	hdr := map[string]string{"X-Session-Id": "s-memory"}
	postChat(t, h, `{"message":"How do I install PS11752778?"}`, hdr)
	_, out := postChat(t, h, `{"message":"will it work with my WDT780SAEM1?"}`, hdr)
	if out.Intent != "compatibility" {
		t.Fatalf("intent = %q, want compatibility", out.Intent)
	}
	if !strings.Contains(out.Response, "PS11752778 fits model WDT780SAEM1") {
		t.Errorf("remembered part should drive the check: %q", out.Response)
	}
}

func TestChatMissingMessage(t *testing.T) {
	h := newTestHandler()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	err := h.chat(ctx)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	if err := h.healthz(e.NewContext(req, rec)); err != nil {
		t.Fatalf("healthz: %v", err)
	}
	var out struct {
		Status       string `json:"status"`
		CatalogItems int    `json:"catalog_items"`
		RAGChunks    int    `json:"rag_chunks"`
		LLMReady     bool   `json:"llm_ready"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Status != "ok" || out.CatalogItems != 2 || out.RAGChunks != 1 || out.LLMReady {
		t.Errorf("unexpected health payload: %+v", out)
	}
}

func TestFeatured(t *testing.T) {
	h := newTestHandler()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/featured", nil)
	rec := httptest.NewRecorder()
	if err := h.featured(e.NewContext(req, rec)); err != nil {
		t.Fatalf("featured: %v", err)
	}
	var out struct {
		Parts []catalog.Entry `json:"parts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Parts) != 2 || out.Parts[0].PartNumber != "PS11752778" {
		t.Errorf("unexpected featured payload: %+v", out.Parts)
	}
}

func TestDebugLookup(t *testing.T) {
	h := newTestHandler()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/debug/lookup?q=PS11752778", nil)
	rec := httptest.NewRecorder()
	if err := h.debugLookup(e.NewContext(req, rec)); err != nil {
		t.Fatalf("debugLookup: %v", err)
	}
	var out struct {
		Q     string          `json:"q"`
		Count int             `json:"count"`
		Hits  []catalog.Entry `json:"hits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Count != 1 || len(out.Hits) != 1 || out.Hits[0].PartNumber != "PS11752778" {
		t.Errorf("unexpected lookup payload: %+v", out)
	}
}

func TestDebugLookupRequiresQuery(t *testing.T) {
	h := newTestHandler()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/debug/lookup", nil)
	rec := httptest.NewRecorder()
	err := h.debugLookup(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
