package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Entry is one parts-catalog record. The catalog is immutable after load.
type Entry struct {
	PartNumber   string   `json:"partNumber"`
	Name         string   `json:"name"`
	Brand        string   `json:"brand"`
	Appliance    string   `json:"appliance"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	OfficialURL  string   `json:"officialURL"`
	InstallGuide string   `json:"installGuide,omitempty"`
	Models       []string `json:"models"`
	Brands       []string `json:"brands,omitempty"`
}

type snapshot struct {
	Items []Entry `json:"items"`
}

// Catalog provides scored search, compatibility and installation lookups
// over an in-memory list of entries built once at startup.
type Catalog struct {
	items  []Entry
	logger *log.Logger
}

var partNumRe = regexp.MustCompile(`(?i)\b[A-Z]{1,3}\d{4,8}[A-Z]?\b`)

// brands is scanned in declared order; the first substring hit wins, so the
// same text always yields the same brand ("fridge" contains "ge").
var brands = []string{
	"whirlpool", "maytag", "ge", "frigidaire", "samsung",
	"lg", "bosch", "kitchenaid", "amana", "kenmore",
}

// categoryKeys clusters free-text keywords into catalog categories. The
// clusters are evaluated in declared order and the first maximum wins;
// keywords shared between clusters ("drain", "inlet", "drawer") resolve to
// the earlier cluster on ties.
var categoryKeys = []struct {
	name string
	keys []string
}{
	{"rack", []string{"rack", "dishrack", "upper", "lower", "basket", "silverware", "cutlery", "adjuster", "roller", "track", "clip", "drawer", "tray"}},
	{"pump", []string{"pump", "drain", "wash", "circulation"}},
	{"filter", []string{"filter"}},
	{"hose", []string{"hose", "inlet", "drain", "line"}},
	{"valve", []string{"valve", "inlet", "water"}},
	{"door", []string{"door", "gasket", "seal", "latch", "hinge"}},
	{"tray", []string{"tray", "shelf", "bin", "drawer", "crisper"}},
	{"ice", []string{"ice", "icemaker", "ice-maker", "auger", "bucket"}},
}

var tokenRe = regexp.MustCompile(`[a-z0-9\-]+`)

func lc(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func tokens(s string) []string { return tokenRe.FindAllString(lc(s), -1) }

// uniqueTokens keeps the first occurrence of each token, so a repeated
// query word scores an entry at most once.
func uniqueTokens(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range tokens(s) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func guessBrand(text string) string {
	tl := lc(text)
	for _, b := range brands {
		if strings.Contains(tl, b) {
			return strings.ToUpper(b[:1]) + b[1:]
		}
	}
	return ""
}

func guessAppliance(text, def string) string {
	tl := lc(text)
	if strings.Contains(tl, "dishwasher") || strings.Contains(tl, "dish washer") {
		return "dishwasher"
	}
	for _, k := range []string{"refrigerator", "fridge", "freezer"} {
		if strings.Contains(tl, k) {
			return "refrigerator"
		}
	}
	return def
}

func guessCategory(text string) string {
	tl := lc(text)
	best, hits := "", 0
	for _, cluster := range categoryKeys {
		n := 0
		for _, kw := range cluster.keys {
			if strings.Contains(tl, kw) {
				n++
			}
		}
		if n > hits {
			best, hits = cluster.name, n
		}
	}
	return best
}

func searchURL(term string) string {
	return "https://www.partselect.com/Search.aspx?SearchTerm=" + strings.ReplaceAll(strings.TrimSpace(term), " ", "+")
}

// New builds a catalog directly from entries, de-duplicated on (partNumber, name).
func New(items []Entry, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = log.New(log.Writer(), "[CATALOG] ", log.LstdFlags)
	}
	return &Catalog{items: dedupe(items), logger: logger}
}

// Load builds the catalog from the JSON snapshot at snapshotPath, falling
// back to a one-time parse of the HTML source pages when the snapshot is
// missing or empty. An empty catalog after the rebuild attempt is fatal.
func Load(snapshotPath string, htmlSources map[string]string, logger *log.Logger) (*Catalog, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[CATALOG] ", log.LstdFlags)
	}

	items := loadSnapshot(snapshotPath, logger)
	if len(items) == 0 {
		logger.Printf("snapshot %s missing or empty, rebuilding from HTML sources", snapshotPath)
		rebuilt, err := BuildFromHTML(htmlSources, logger)
		if err != nil {
			return nil, fmt.Errorf("rebuilding catalog: %w", err)
		}
		items = rebuilt
		if err := WriteSnapshot(snapshotPath, items); err != nil {
			logger.Printf("could not persist catalog snapshot: %v", err)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("catalog is empty after rebuild attempt")
	}

	logger.Printf("catalog ready with %d items", len(items))
	return &Catalog{items: items, logger: logger}, nil
}

func loadSnapshot(path string, logger *log.Logger) []Entry {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var db snapshot
	if err := json.Unmarshal(data, &db); err != nil {
		logger.Printf("snapshot %s unreadable: %v", path, err)
		return nil
	}
	return dedupe(db.Items)
}

// WriteSnapshot persists the catalog JSON snapshot, creating the data
// directory when needed.
func WriteSnapshot(path string, items []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot{Items: items}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func dedupe(items []Entry) []Entry {
	seen := make(map[string]struct{}, len(items))
	out := make([]Entry, 0, len(items))
	for _, p := range items {
		key := lc(p.PartNumber) + "\x00" + lc(p.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Size reports the number of catalog entries.
func (c *Catalog) Size() int { return len(c.items) }

// Featured returns the first entries for UI surfaces.
func (c *Catalog) Featured() []Entry {
	n := min(6, len(c.items))
	return c.items[:n]
}

// ScopeKeywords derives the lower-cased part numbers and names of every
// entry. Computed once right after load; callers treat the result as
// read-only.
func (c *Catalog) ScopeKeywords() map[string]struct{} {
	out := make(map[string]struct{}, 2*len(c.items))
	for _, p := range c.items {
		if pn := lc(p.PartNumber); pn != "" {
			out[pn] = struct{}{}
		}
		if name := lc(p.Name); name != "" {
			out[name] = struct{}{}
		}
	}
	return out
}
