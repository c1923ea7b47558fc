package catalog

import (
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var spaceRe = regexp.MustCompile(`\s+`)

// BuildFromHTML parses saved catalog list pages into entries, one source
// page per appliance kind. Sources that are missing on disk are skipped;
// parsing all sources to zero entries is left to the caller to reject.
func BuildFromHTML(sources map[string]string, logger *log.Logger) ([]Entry, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[CATALOG] ", log.LstdFlags)
	}
	var items []Entry
	for appliance, path := range sources {
		f, err := os.Open(path)
		if err != nil {
			logger.Printf("missing HTML source for %s: %s", appliance, path)
			continue
		}
		parsed, err := parsePage(f, appliance)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		logger.Printf("parsed %d parts from %s page", len(parsed), appliance)
		items = append(items, parsed...)
	}
	return dedupe(items), nil
}

func parsePage(r io.Reader, appliance string) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	pageBrand := guessBrand(doc.Text())
	if pageBrand == "" {
		pageBrand = "Generic"
	}

	var out []Entry
	doc.Find(".partlist-item, .ps-part, .product, li").Each(func(_ int, block *goquery.Selection) {
		text := squeeze(block.Text())
		if text == "" {
			return
		}

		pn := squeeze(block.Find(".part-number, .ps-part-number, .sku").First().Text())
		if pn == "" {
			if m := partNumRe.FindString(text); m != "" {
				pn = strings.ToUpper(m)
			}
		}

		name := squeeze(block.Find(".part-title, .part-name, .title, h3, h4, a").First().Text())
		if name == "" {
			words := strings.Fields(text)
			name = strings.Join(words[:min(10, len(words))], " ")
		}
		if pn == "" && name == "" {
			return
		}

		desc := squeeze(block.Find(".part-description, .ps-part-desc, .desc").First().Text())

		cat := guessCategory(name)
		if cat == "" {
			cat = guessCategory(desc)
		}
		if cat == "" {
			cat = "general"
		}

		brand := guessBrand(text)
		if brand == "" {
			brand = pageBrand
		}

		displayName := name
		if displayName == "" {
			displayName = pn
		}
		out = append(out, Entry{
			PartNumber:  pn,
			Name:        displayName,
			Brand:       brand,
			Appliance:   guessAppliance(name+" "+desc, appliance),
			Category:    cat,
			Description: desc,
			OfficialURL: searchURL(firstNonEmpty(pn, name)),
			Models:      []string{},
			Brands:      []string{brand},
		})
	})
	return out, nil
}

func squeeze(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
