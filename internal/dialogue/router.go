package dialogue

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/instalily/partsassist/internal/catalog"
	"github.com/instalily/partsassist/internal/guard"
	"github.com/instalily/partsassist/internal/rag"
	"github.com/instalily/partsassist/internal/telemetry"
	"github.com/instalily/partsassist/provider"
	"github.com/instalily/partsassist/session"
)

const (
	retrievalK = 6

	// emptyLLMPlaceholder replaces blank or null-ish generative output.
	emptyLLMPlaceholder = "(LLM returned no content.)"
	// llmUnavailableMsg is the fixed degradation string for upstream failures.
	llmUnavailableMsg = "The AI service is temporarily unavailable. Please try again in a moment."
	// llmMissingMsg is returned when no generator is configured at all.
	llmMissingMsg = "LLM unavailable."
)

// partSearchKeywords force the part-search branch regardless of the
// classified intent. The trigger runs before the installation and
// compatibility handlers; that precedence is deliberate.
var partSearchKeywords = []string{
	"show me", "find", "replacement", "rack", "pump", "valve", "filter",
	"tray", "basket", "drawer", "bin", "door", "crisper", "shelf", "track", "roller", "adjuster",
}

var brandRe = regexp.MustCompile(`(?i)\b(whirlpool|maytag|ge|frigidaire|samsung|lg|bosch|kitchenaid|amana|kenmore)\b`)

// categoryKeywords is scanned in order; the first hit becomes the category hint.
var categoryKeywords = []string{
	"rack", "pump", "filter", "hose", "tray", "door", "handle",
	"drawer", "basket", "bin", "valve", "crisper", "shelf", "track", "roller", "adjuster",
}

// Request is one inbound turn.
type Request struct {
	Message   string
	Part      string
	Model     string
	Appliance string
	SessionID string
}

// Response is the turn's outcome.
type Response struct {
	Response string           `json:"response"`
	Intent   string           `json:"intent"`
	Memory   session.Snapshot `json:"memory"`
}

// Router orchestrates one response per turn. It owns ordering and dispatch
// only; retrieval lives in the catalog and rag packages.
type Router struct {
	Catalog    *catalog.Catalog
	Retriever  *rag.Retriever
	Sessions   session.Store
	LLM        provider.Generator // nil when no generator is configured
	History    *History
	Scope      *guard.Scope
	Metrics    *telemetry.Telemetry
	Logger     *log.Logger
	LLMTimeout time.Duration
}

// Handle runs the turn state machine. The stage order is a precedence
// policy: refusal marker, switch suggestion, silent-proceed hint, entities
// and intent, keyword-forced part search, installation, compatibility,
// generative fallback. The part-search keyword trigger overrides an
// already-classified intent.
func (r *Router) Handle(ctx context.Context, req Request) Response {
	start := time.Now()
	logger := r.logger()

	q := strings.TrimSpace(req.Message)
	cur := strings.ToLower(strings.TrimSpace(req.Appliance))
	if cur == "" {
		cur = guard.ApplianceDishwasher
	}
	id := req.SessionID

	logger.Printf("turn [%s] appliance=%s query=%q", id, cur, q)
	r.History.Append(id, "user", q)

	finish := func(resp Response) Response {
		r.Metrics.ObserveTurn(resp.Intent, time.Since(start))
		return resp
	}

	// 1) refusal control message: terminal before everything else
	if guard.IsRefusalMarker(q) {
		r.Sessions.Update(ctx, id, map[string]string{session.FieldLastSwitchRefusedFor: cur})
		return finish(Response{
			Response: fmt.Sprintf("Got it — staying with your current %s context.", cur),
			Intent:   guard.IntentAckRefuse,
			Memory:   r.Sessions.Get(ctx, id),
		})
	}

	mem := r.Sessions.Get(ctx, id)
	refusedFor := deref(mem.LastSwitchRefusedFor)

	// 2/3) cross-appliance guard
	outcome, other := guard.DecideSwitch(q, cur, refusedFor)
	switchNote := ""
	switch outcome {
	case guard.SwitchSuggest:
		logger.Printf("cross-appliance query (%q), suggesting switch", other)
		return finish(Response{
			Response: fmt.Sprintf("It sounds like you're asking about a <strong>%[1]s</strong>. "+
				"You can say \"switch to %[1]s\" or click the switch button to change context.", other),
			Intent: guard.IntentSwitchSuggestion,
			Memory: mem,
		})
	case guard.SwitchProceedSilently:
		logger.Printf("user previously refused switching to %s; staying in %s", other, cur)
		switchNote = fmt.Sprintf("\n\n(You mentioned <strong>%s</strong> but chose to stay. "+
			"You can switch anytime with the floating toggle.)", other)
	}

	if !r.Scope.InScope(q, cur) {
		logger.Printf("question outside current context, continuing gracefully")
	}

	// 4) entities, merged with declared hints and session memory
	ent := guard.ExtractEntities(q)
	if ent.Part == "" {
		ent.Part = strings.ToUpper(strings.TrimSpace(req.Part))
	}
	if ent.Model == "" {
		ent.Model = strings.ToUpper(strings.TrimSpace(req.Model))
	}
	if ent.Part == "" {
		ent.Part = deref(mem.LastPart)
	}
	if ent.Model == "" {
		ent.Model = deref(mem.LastModel)
	}

	intent := guard.ClassifyIntent(q)
	itype := intent.Type
	logger.Printf("entities part=%q model=%q intent=%s (%.2f)", ent.Part, ent.Model, itype, intent.Confidence)

	// 5) keyword-forced part search; an internal failure falls through
	// instead of ending the turn
	if containsAny(strings.ToLower(q), partSearchKeywords) {
		itype = guard.IntentPartSearch
		resp, err := r.partSearch(ctx, q, cur, refusedFor, switchNote, id)
		if err == nil {
			return finish(resp)
		}
		logger.Printf("part search error, continuing: %v", err)
	}

	// 6) installation
	if itype == guard.IntentInstallation && ent.Part != "" {
		guide := r.Catalog.InstallGuide(ent.Part)
		r.Sessions.Update(ctx, id, map[string]string{
			session.FieldLastPart:   ent.Part,
			session.FieldLastIntent: guard.IntentInstallation,
		})
		return finish(Response{
			Response: guide + switchNote,
			Intent:   guard.IntentInstallation,
			Memory:   r.Sessions.Get(ctx, id),
		})
	}

	// 7) compatibility
	if itype == guard.IntentCompatibility && ent.Part != "" && ent.Model != "" {
		_, msg := r.Catalog.IsCompatible(ent.Part, ent.Model)
		r.Sessions.Update(ctx, id, map[string]string{
			session.FieldLastPart:   ent.Part,
			session.FieldLastModel:  ent.Model,
			session.FieldLastIntent: guard.IntentCompatibility,
		})
		return finish(Response{
			Response: msg + switchNote,
			Intent:   guard.IntentCompatibility,
			Memory:   r.Sessions.Get(ctx, id),
		})
	}

	// 8) generative fallback
	logger.Printf("falling back to retrieval+LLM for intent %s", itype)
	docs := r.Retriever.Search(q, cur, retrievalK)
	prompt := rag.BuildPrompt(q, docs, r.History.Turns(id), cur)

	reply := llmMissingMsg
	if r.LLM != nil {
		cctx := ctx
		if r.LLMTimeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(ctx, r.LLMTimeout)
			defer cancel()
		}
		text, err := r.LLM.Answer(cctx, prompt)
		if err != nil {
			logger.Printf("generative call failed: %v", err)
			r.Metrics.LLMFailure()
			reply = llmUnavailableMsg
		} else {
			reply = neverEmpty(text)
		}
	}
	reply += switchNote

	r.History.Append(id, "assistant", reply)
	r.Sessions.Update(ctx, id, map[string]string{session.FieldLastIntent: itype})

	return finish(Response{
		Response: reply,
		Intent:   itype,
		Memory:   r.Sessions.Get(ctx, id),
	})
}

// partSearch resolves the appliance hint (biasing toward a refused-but-
// mentioned appliance), extracts brand/category hints and formats the
// catalog results.
func (r *Router) partSearch(ctx context.Context, q, cur, refusedFor, switchNote, id string) (Response, error) {
	brand := ""
	if m := brandRe.FindString(q); m != "" {
		brand = strings.ToLower(m)
	}

	category := ""
	qLower := strings.ToLower(q)
	for _, w := range categoryKeywords {
		if strings.Contains(qLower, w) {
			category = w
			break
		}
	}

	hint := cur
	if other := guard.OtherApplianceHint(q, cur); other != "" && refusedFor == other {
		hint = other
	}

	results, err := r.Catalog.FindParts(hint, brand, category, q)
	if err != nil {
		return Response{}, err
	}

	mem := r.Sessions.Get(ctx, id)
	if len(results) > 0 && results[0].PartNumber != "N/A" {
		label := brand
		if label == "" {
			label = capitalize(hint)
		}
		kind := category
		if kind == "" {
			kind = "relevant"
		}
		return Response{
			Response: fmt.Sprintf("Here are some %s parts I found for %s:%s\n%s",
				kind, label, switchNote, formatPartList(results)),
			Intent: guard.IntentPartSearch,
			Memory: mem,
		}, nil
	}

	kind := category
	if kind == "" {
		kind = "replacement"
	}
	label := brand
	if label == "" {
		label = "this brand"
	}
	link := ""
	if len(results) > 0 && results[0].OfficialURL != "" {
		link = "\nTry the official catalog: " + results[0].OfficialURL
	}
	return Response{
		Response: fmt.Sprintf("I couldn't find specific %s parts locally for %s %s.%s%s",
			kind, label, cur, switchNote, link),
		Intent: guard.IntentPartSearch,
		Memory: mem,
	}, nil
}

func formatPartList(parts []catalog.Entry) string {
	var lines []string
	for _, p := range parts[:min(5, len(parts))] {
		pn := p.PartNumber
		if pn == "" {
			pn = "Unknown"
		}
		name := p.Name
		if name == "" {
			name = "Unnamed"
		}
		lines = append(lines, fmt.Sprintf("• %s – %s (%s, %s)", pn, name, capitalize(p.Appliance), p.Brand))
	}
	return strings.Join(lines, "\n")
}

// neverEmpty sanitizes null-ish generative output to a fixed placeholder.
func neverEmpty(text string) string {
	t := strings.TrimSpace(text)
	switch strings.ToLower(t) {
	case "", "none", "null", "nan":
		return emptyLLMPlaceholder
	}
	return t
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *Router) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.New(log.Writer(), "[ROUTER] ", log.LstdFlags)
}
