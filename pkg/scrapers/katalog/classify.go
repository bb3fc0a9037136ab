package katalog

import (
	"katalog-hunter/pkg/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	cardSelector = `.product-wrapper, .product-card, .product-item, .product, .card, .item, .catalog-item, article, ` +
		`.col-md-4, .col-sm-6, .col-lg-3, .product-grid, .product-list, ` +
		`[class*="product"], [class*="item"], [class*="card"]`
	titleSelector = `h2, h3, h4, h5, .product-title, .title, .name, .product-name, strong:first-child, b:first-child, ` +
		`div[class*="title"], div[class*="name"], span[class*="title"], span[class*="name"]`
	priceClassSelector = `.price, .product-price, .harga, [class*="price"], [class*="harga"]`
)

// CandidateMatcher finds elements that may each describe one product.
type CandidateMatcher interface {
	Name() string
	Match(root *goquery.Selection) *goquery.Selection
}

// selectorMatcher looks for the class names storefront themes commonly use.
type selectorMatcher struct{}

func (selectorMatcher) Name() string { return "selector" }

func (selectorMatcher) Match(root *goquery.Selection) *goquery.Selection {
	return root.Find(cardSelector)
}

// structuralMatcher accepts blocks with a direct heading child, a price element
// or an image somewhere below.
type structuralMatcher struct{}

func (structuralMatcher) Name() string { return "structural" }

func (structuralMatcher) Match(root *goquery.Selection) *goquery.Selection {
	return root.Find("div, section, li").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ChildrenFiltered("h2, h3, h4, h5").Length() > 0 ||
			s.Find(priceClassSelector).Length() > 0 ||
			s.Find("img").Length() > 0
	})
}

// textualMatcher accepts divs mentioning both a currency marker and a duration word.
type textualMatcher struct{}

func (textualMatcher) Name() string { return "textual" }

func (textualMatcher) Match(root *goquery.Selection) *goquery.Selection {
	return root.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		text := flatText(s)
		return markerPattern.MatchString(text) && durationKeywordPattern.MatchString(text)
	})
}

func matchersFor(depth Depth) []CandidateMatcher {
	if depth <= DepthMinimal {
		return []CandidateMatcher{selectorMatcher{}}
	}
	return []CandidateMatcher{selectorMatcher{}, structuralMatcher{}, textualMatcher{}}
}

// pruneListings drops listing containers, which enclose product titles that
// differ from each other, and then keeps only the outermost of the remaining
// nested candidates so that one product block yields one record.
func pruneListings(found *goquery.Selection) *goquery.Selection {
	nodes := found.Nodes
	titles := make([]string, len(nodes))
	for i := range nodes {
		titles[i] = productTitleKey(found.Eq(i))
	}

	listing := make([]bool, len(nodes))
	for i := range nodes {
		distinct := make(map[string]bool)
		for j, n := range nodes {
			if j != i && titles[j] != "" && isAncestor(nodes[i], n) {
				distinct[titles[j]] = true
			}
		}
		listing[i] = len(distinct) >= 2
	}

	return found.FilterFunction(func(i int, _ *goquery.Selection) bool {
		if listing[i] {
			return false
		}
		for j, n := range nodes {
			if j != i && !listing[j] && isAncestor(n, nodes[i]) {
				return false
			}
		}
		return true
	})
}

// productTitleKey returns the normalized title of s, or "" when s has no
// title that could name a product.
func productTitleKey(s *goquery.Selection) string {
	title := flatText(s.Find(titleSelector).First())
	if title == "" || isLabel(title) {
		return ""
	}
	name, _ := splitTitle(title, 2, 3)
	if runeLen(stripParens(name)) < 2 {
		return ""
	}
	return models.NameKey(title)
}

// isLabel reports text that reads as a stock or price label rather than a name.
func isLabel(text string) bool {
	if _, ok := stockLabel(text); ok {
		return true
	}
	loc := markerPattern.FindStringIndex(text)
	return loc != nil && loc[0] == 0
}

func isAncestor(a, b *html.Node) bool {
	for p := b.Parent; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// classify runs the matchers in rank order; the first non-empty match wins.
func (e *Engine) classify(doc *goquery.Document) []*goquery.Selection {
	obs := e.observer()
	for _, m := range matchersFor(e.Depth) {
		found := m.Match(doc.Selection)
		if found.Length() == 0 {
			obs.ReportDebug(report_matcher_empty, m.Name())
			continue
		}
		kept := pruneListings(found)
		obs.ReportCount(report_candidates+"."+m.Name(), int64(kept.Length()))
		out := make([]*goquery.Selection, 0, kept.Length())
		kept.Each(func(_ int, s *goquery.Selection) {
			out = append(out, s)
		})
		return out
	}
	return nil
}
