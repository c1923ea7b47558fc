package guard

import (
	"regexp"
	"sort"
	"strings"
)

// Entities is the extraction result; empty strings mean the field is absent.
type Entities struct {
	Part  string
	Model string
}

// partRe matches brand-prefixed part codes (e.g. PS11752778, W10350376).
var partRe = regexp.MustCompile(`(?i)\b(PS|AP|WP|WR|WD|DA|W10|W11|242|530)\d{6,}\b`)

// modelRe matches generic model-like alphanumeric tokens.
var modelRe = regexp.MustCompile(`\b\w{3,}\d{3,}\w*\b`)

// ExtractEntities pulls a part number and a model number out of free text.
// Part extraction takes the first pattern match. Model extraction takes the
// longest model-like token that is not the part itself; ties break by scan
// order. Results are canonicalized upper-case.
func ExtractEntities(query string) Entities {
	part := strings.ToUpper(partRe.FindString(query))

	candidates := modelRe.FindAllString(query, -1)
	sort.SliceStable(candidates, func(i, j int) bool { return len(candidates[i]) > len(candidates[j]) })

	model := ""
	for _, cand := range candidates {
		if part == "" || !strings.EqualFold(cand, part) {
			model = strings.ToUpper(cand)
			break
		}
	}
	return Entities{Part: part, Model: model}
}
