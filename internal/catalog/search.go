package catalog

import (
	"fmt"
	"sort"
	"strings"
)

const maxResults = 5

// scoring weights for the lexical search. Reordering or changing these
// changes ranking behaviour; they are tested as a unit.
const (
	scoreBase       = 0.05
	scoreBrand      = 2.0
	scoreAppliance  = 2.5
	scoreCategory   = 2.0
	scoreNameToken  = 0.6
	scoreDescToken  = 0.3
	scoreRackBonus  = 0.8
	scoreThreshold  = 0.6
	fallbackPartNum = "N/A"
)

// Search scores every entry against the query. An exact part-number match
// (explicit or embedded in the query) bypasses scoring entirely. When no
// entry qualifies a single synthetic entry carrying an external search URL
// is returned; absence of a match is not an error.
func (c *Catalog) Search(query, part, model string) []Entry {
	q := strings.TrimSpace(part)
	if q == "" {
		q = strings.TrimSpace(query)
	}
	if q == "" {
		return nil
	}

	if m := partNumRe.FindString(q); m != "" {
		pn := lc(m)
		var exact []Entry
		for _, p := range c.items {
			if lc(p.PartNumber) == pn {
				exact = append(exact, p)
				if len(exact) == maxResults {
					break
				}
			}
		}
		if len(exact) > 0 {
			return exact
		}
	}

	brand := lc(guessBrand(q))
	appl := guessAppliance(q, "")
	cat := guessCategory(q)
	toks := uniqueTokens(q)

	type scored struct {
		score float64
		entry Entry
	}
	var hits []scored
	for _, p := range c.items {
		s := scoreBase
		if brand != "" && strings.Contains(lc(p.Brand), brand) {
			s += scoreBrand
		}
		if appl != "" && strings.Contains(lc(p.Appliance), appl) {
			s += scoreAppliance
		}
		if cat != "" && strings.Contains(lc(p.Category), cat) {
			s += scoreCategory
		}
		name, desc := lc(p.Name), lc(p.Description)
		for _, t := range toks {
			if strings.Contains(name, t) {
				s += scoreNameToken
			}
			if strings.Contains(desc, t) {
				s += scoreDescToken
			}
		}
		if cat == "rack" && strings.Contains(name, "rack") {
			s += scoreRackBonus
		}
		if s >= scoreThreshold {
			hits = append(hits, scored{score: s, entry: p})
		}
	}

	// stable: ties preserve catalog order
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	n := min(maxResults, len(hits))
	results := make([]Entry, 0, n)
	for _, h := range hits[:n] {
		results = append(results, h.entry)
	}
	if len(results) == 0 {
		// name echoes the user's wording; the URL carries the merged term
		return []Entry{{
			PartNumber:  fallbackPartNum,
			Name:        fmt.Sprintf("No local results for '%s'.", query),
			Description: "Try the official catalog.",
			OfficialURL: searchURL(q),
		}}
	}
	return results
}

// FindParts concatenates the hints into one query, delegates to Search and
// post-filters by each supplied hint. If filtering empties a non-empty
// result set the unfiltered results are returned.
func (c *Catalog) FindParts(appliance, brand, category, query string) ([]Entry, error) {
	if len(c.items) == 0 {
		return nil, fmt.Errorf("catalog has no entries")
	}

	var parts []string
	for _, x := range []string{query, brand, appliance, category} {
		if strings.TrimSpace(x) != "" {
			parts = append(parts, strings.TrimSpace(x))
		}
	}
	q := strings.Join(parts, " ")
	if q == "" {
		q = category
	}

	res := c.Search(q, "", "")
	if len(res) == 0 || res[0].PartNumber == fallbackPartNum {
		return res, nil
	}

	var out []Entry
	for _, p := range res {
		if appliance != "" && !strings.Contains(lc(p.Appliance), lc(appliance)) {
			continue
		}
		if brand != "" && !strings.Contains(lc(p.Brand), lc(brand)) {
			continue
		}
		if category != "" && !strings.Contains(lc(p.Category), lc(category)) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return res, nil
	}
	return out, nil
}

// InstallGuide returns the stored guide for the part, or a synthesized
// generic guide when none is on file. A missing part number yields a
// prompt-for-part-number message, never an error.
func (c *Catalog) InstallGuide(part string) string {
	part = strings.ToUpper(strings.TrimSpace(part))
	if part == "" {
		return "Please provide a part number (e.g., 'How to install WP2188656')."
	}
	hit := c.byPartNumber(part)
	if hit != nil && hit.InstallGuide != "" {
		return hit.InstallGuide
	}
	base := "1) Disconnect power/water\n2) Remove the faulty component\n3) Install replacement; restore and test"
	if hit != nil && strings.Contains(lc(hit.Category), "rack") {
		base = "1) Disconnect power\n2) Remove rack; release clips/rollers/adjusters\n3) Seat and align replacement; test slide"
	}
	return fmt.Sprintf("General guide for %s:\n%s", part, base)
}

// IsCompatible reports whether the normalized model appears in the part's
// compatible-model list. Absence is informational: the message carries a
// constructed lookup URL instead of an error.
func (c *Catalog) IsCompatible(part, model string) (bool, string) {
	part = strings.ToUpper(strings.TrimSpace(part))
	model = strings.ToUpper(strings.TrimSpace(model))
	if part == "" || model == "" {
		return false, "Please provide both a part number and a full model number."
	}
	hit := c.byPartNumber(part)
	if hit != nil {
		for _, m := range hit.Models {
			if strings.ToUpper(m) == model {
				return true, fmt.Sprintf("✅ %s fits model %s.", part, model)
			}
		}
	}
	url := fmt.Sprintf("https://www.partselect.com/ModelSearch.aspx?SearchTerm=%s+%s", model, part)
	tip := "Tip: model numbers are on the rating tag; include all suffix letters."
	if hit != nil {
		known := strings.Join(hit.Brands, ", ")
		if known == "" {
			known = "N/A"
		}
		return false, fmt.Sprintf("Compatibility for %s not confirmed locally (known brand(s): %s). Check: %s\n%s", model, known, url, tip)
	}
	return false, fmt.Sprintf("I couldn't find %s locally. Verify here: %s", part, url)
}

func (c *Catalog) byPartNumber(part string) *Entry {
	pn := lc(part)
	for i := range c.items {
		if lc(c.items[i].PartNumber) == pn {
			return &c.items[i]
		}
	}
	return nil
}
