package guard

import "strings"

// coreKeywords define the assistant's purpose.
var coreKeywords = []string{
	"part", "parts", "model", "number", "serial", "replacement", "repair",
	"fix", "broken", "install", "installation", "guide", "steps",
	"compatible", "fit", "compatibility", "buy", "order", "find",
	"partselect", "oem",
}

var applianceKeywords = []string{
	"appliance", "appliances",
	"dishwasher", "dish", "washer",
	"refrigerator", "fridge", "freezer", "ice", "icemaker",
}

var outOfScopeKeywords = []string{"car", "auto", "truck", "boat", "computer", "phone", "tv"}

var contextKeywords = map[string][]string{
	ApplianceDishwasher:   {"dishwasher", "dish", "rack", "pump"},
	ApplianceRefrigerator: {"refrigerator", "fridge", "filter", "ice", "drawer", "bin"},
}

// Scope checks whether a query relates to appliance repair. The extra set
// is derived once from catalog contents (part numbers and names) right
// after load and is read-only afterwards.
type Scope struct {
	extra map[string]struct{}
}

// NewScope builds a scope checker with catalog-derived extra keywords.
func NewScope(extra map[string]struct{}) *Scope {
	if extra == nil {
		extra = map[string]struct{}{}
	}
	return &Scope{extra: extra}
}

// InScope reports whether the query relates to the declared appliance
// context or to appliance repair in general. Used for logging only; an
// out-of-scope query still continues through the turn.
func (s *Scope) InScope(query, applianceContext string) bool {
	q := strings.ToLower(query)

	for _, w := range outOfScopeKeywords {
		if strings.Contains(q, w) {
			return false
		}
	}

	ctx := []string{applianceContext, "part", "parts", "model"}
	ctx = append(ctx, contextKeywords[applianceContext]...)
	for _, w := range ctx {
		if w != "" && strings.Contains(q, w) {
			return true
		}
	}

	for _, set := range [][]string{coreKeywords, applianceKeywords, partKeywordList()} {
		for _, w := range set {
			if strings.Contains(q, w) {
				return true
			}
		}
	}
	for w := range s.extra {
		if w != "" && strings.Contains(q, w) {
			return true
		}
	}
	return false
}

func partKeywordList() []string {
	out := make([]string, 0, len(partNameVocabulary))
	for w := range partNameVocabulary {
		out = append(out, w)
	}
	return out
}
