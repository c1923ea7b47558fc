package rag

import (
	"log"
	"os"
	"sort"
	"strings"
)

// NoContextSentinel is returned when neither retrieval stage produces a
// document, so prompt construction always has content to work with.
const NoContextSentinel = "(No context available.)"

const applianceTermWeight = 5.0

// termWeights assigns importance to appliance names, common part names and
// known brands; any other term weighs 1.0.
var termWeights = map[string]float64{
	"dishwasher":   3.0,
	"refrigerator": 3.0,

	"rack":      1.8,
	"filter":    1.8,
	"drawer":    1.8,
	"bin":       1.8,
	"ice maker": 2.0,
	"pump":      1.5,
	"hose":      1.2,
	"basket":    1.2,

	"whirlpool": 2.5,
	"kenmore":   2.5,
	"maytag":    2.5,
	"lg":        2.5,
}

const jaccardThreshold = 0.05

// Retriever scores an immutable ordered document corpus against queries
// with weighted keyword occurrence counts, falling back to Jaccard
// similarity when nothing scores positively.
type Retriever struct {
	docs   []string
	logger *log.Logger
}

// NewRetriever wraps an already-loaded corpus.
func NewRetriever(docs []string, logger *log.Logger) *Retriever {
	if logger == nil {
		logger = log.New(log.Writer(), "[RAG] ", log.LstdFlags)
	}
	return &Retriever{docs: docs, logger: logger}
}

// LoadRetriever reads the corpus file, one document per blank-line-separated
// block. A missing or empty corpus is not fatal; retrieval degrades to the
// sentinel document.
func LoadRetriever(path string, logger *log.Logger) *Retriever {
	if logger == nil {
		logger = log.New(log.Writer(), "[RAG] ", log.LstdFlags)
	}
	var docs []string
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Printf("knowledge corpus %s unavailable: %v", path, err)
	} else {
		for _, p := range strings.Split(strings.TrimSpace(string(data)), "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				docs = append(docs, p)
			}
		}
	}
	if len(docs) == 0 {
		logger.Printf("retriever initialized with empty corpus")
	} else {
		logger.Printf("retriever ready with %d docs", len(docs))
	}
	return &Retriever{docs: docs, logger: logger}
}

// Size reports the number of knowledge documents.
func (r *Retriever) Size() int { return len(r.docs) }

// Search performs the weighted keyword retrieval of the top k documents.
// The appliance context is appended as an extra query term whose weight is
// overridden to dominate every table entry.
func (r *Retriever) Search(query, applianceContext string, k int) []string {
	if len(r.docs) == 0 {
		return []string{NoContextSentinel}
	}

	terms := strings.Fields(strings.ToLower(query))
	applianceContext = strings.ToLower(strings.TrimSpace(applianceContext))
	if applianceContext != "" {
		terms = append(terms, applianceContext)
	}

	type scored struct {
		doc   string
		score float64
	}
	var hits []scored
	for _, doc := range r.docs {
		docLower := strings.ToLower(doc)
		score := 0.0
		for _, term := range terms {
			w, ok := termWeights[term]
			if !ok {
				w = 1.0
			}
			if term == applianceContext {
				w = applianceTermWeight
			}
			score += float64(strings.Count(docLower, term)) * w
		}
		if score > 0 {
			hits = append(hits, scored{doc: doc, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if len(hits) == 0 {
		for _, h := range r.jaccardFallback(query) {
			hits = append(hits, scored{doc: h.doc, score: h.score})
		}
	}
	if len(hits) == 0 {
		return []string{NoContextSentinel}
	}

	n := min(k, len(hits))
	out := make([]string, 0, n)
	for _, h := range hits[:n] {
		out = append(out, h.doc)
	}
	return out
}

type jaccardHit struct {
	doc   string
	score float64
}

func (r *Retriever) jaccardFallback(query string) []jaccardHit {
	querySet := tokenSet(query)
	var hits []jaccardHit
	for _, doc := range r.docs {
		docSet := tokenSet(doc)
		inter := 0
		for t := range querySet {
			if _, ok := docSet[t]; ok {
				inter++
			}
		}
		union := len(querySet) + len(docSet) - inter
		if union == 0 {
			continue
		}
		sim := float64(inter) / float64(union)
		if sim > jaccardThreshold {
			hits = append(hits, jaccardHit{doc: doc, score: sim})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	return hits
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Fields(strings.ToLower(s)) {
		out[t] = struct{}{}
	}
	return out
}
