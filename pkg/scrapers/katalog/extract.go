package katalog

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"katalog-hunter/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

const (
	stockClassSelector = `.stock, .stok, .inventory, .quantity, .availability, .status, ` +
		`[class*="stock"], [class*="stok"], [class*="inventory"], [class*="status"], [id*="stock"], [id*="inventory"]`
	badgeSelector   = `.badge, .label, .tag, .pill, [class*="badge"], [class*="label"], [class*="tag"]`
	packageSelector = `option, li, .package, .variant, .plan, input[type="radio"] + label, div[class*="option"], span[class*="option"]`
)

var stockKeywords = []string{
	"stok", "stock", "persediaan", "tersedia", "habis", "kosong", "sold", "out", "available",
	"sisa", "tersisa", "left", "remaining", "item", "qty",
}

// extractCard reads one candidate. A missing or too-short title rejects it.
func (e *Engine) extractCard(index int, card *goquery.Selection) (models.ProductOffer, error) {
	title := flatText(card.Find(titleSelector).First())
	if title == "" || isLabel(title) {
		return models.ProductOffer{}, &models.ValidationError{Field: "title", Value: title}
	}

	name, period := splitTitle(title, 2, 3)
	name = stripParens(name)
	if runeLen(name) < 2 {
		return models.ProductOffer{}, &models.ValidationError{Field: "name", Value: name}
	}

	return models.ProductOffer{
		ID:       index + 1,
		Name:     name,
		Period:   period,
		Price:    extractPrice(card),
		Stock:    extractStock(card),
		Packages: extractPackages(card, name, period),
		Image:    extractImage(card, e.Origin, name),
	}, nil
}

// splitTitle moves a trailing "<n> BULAN"-style suffix of the given word
// counts into the period. The suffix is only split off when words remain.
func splitTitle(title string, wordCounts ...int) (name, period string) {
	parts := strings.Fields(title)
	for _, n := range wordCounts {
		if len(parts) <= n {
			continue
		}
		suffix := strings.Join(parts[len(parts)-n:], " ")
		if titleDurationPattern.MatchString(suffix) {
			return strings.Join(parts[:len(parts)-n], " "), suffix
		}
	}
	return collapse(title), ""
}

func stripParens(name string) string {
	return collapse(parenPattern.ReplaceAllString(name, ""))
}

func extractPrice(card *goquery.Selection) float64 {
	var elems []*goquery.Selection
	card.Find(priceClassSelector).Each(func(_ int, s *goquery.Selection) {
		elems = append(elems, s)
	})
	card.Find("p, span, div, strong, b").Each(func(_ int, s *goquery.Selection) {
		if markerPattern.MatchString(flatText(s)) {
			elems = append(elems, s)
		}
	})

	for _, s := range elems {
		if v := parsePrice(flatText(s)); v > 0 {
			return v
		}
	}
	return 0
}

var (
	outOfStockPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)habis|kosong|sold\s*out|tidak tersedia|out of stock|empty|unavailable`),
		regexp.MustCompile(`(?i)\b(?:0|nol)\s*(?:stok|stock|items?)\b`),
	}
	stockCountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:stok|stock|persediaan|qty|quantity|tersedia)\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s*(?:items?|left|remaining|tersisa)`),
		regexp.MustCompile(`(?i)\b(?:ada|sisa)\s*(\d+)`),
		regexp.MustCompile(`^\s*(\d+)\s*$`),
	}
	cardOutOfStockPattern = regexp.MustCompile(`(?i)habis|kosong|sold\s*out|tidak tersedia|out of stock`)
	cardStockCountPattern = regexp.MustCompile(`(?i)(?:stok|stock|persediaan)\s*:?\s*(\d+)`)
)

// stockLabel classifies one piece of text. ok is false when nothing in it
// speaks about availability.
func stockLabel(text string) (label string, ok bool) {
	for _, re := range outOfStockPatterns {
		if re.MatchString(text) {
			return models.StockOutOfStock, true
		}
	}
	for _, re := range stockCountPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n < 10000 {
				return models.StockCount(n), true
			}
		}
	}
	return "", false
}

// extractStock checks stock-classed elements, then keyword text, then badges,
// and finally the whole card. Habis is final once seen.
func extractStock(card *goquery.Selection) string {
	var elems []*goquery.Selection
	card.Find(stockClassSelector).Each(func(_ int, s *goquery.Selection) {
		elems = append(elems, s)
	})
	card.Find("p, span, div, li, strong, b").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(flatText(s))
		for _, k := range stockKeywords {
			if strings.Contains(text, k) {
				elems = append(elems, s)
				return
			}
		}
	})
	card.Find(badgeSelector).Each(func(_ int, s *goquery.Selection) {
		elems = append(elems, s)
	})

	for _, s := range elems {
		text := flatText(s)
		if text == "" {
			continue
		}
		if label, ok := stockLabel(text); ok {
			return label
		}
	}

	text := flatText(card)
	if cardOutOfStockPattern.MatchString(text) {
		return models.StockOutOfStock
	}
	if m := cardStockCountPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n < 10000 {
			return models.StockCount(n)
		}
	}
	return models.StockAvailable
}

// packageSet keeps insertion order and compares entries case-insensitively.
type packageSet struct {
	seen  map[string]bool
	items []string
}

func (p *packageSet) add(v string) {
	v = collapse(v)
	if v == "" {
		return
	}
	if p.seen == nil {
		p.seen = make(map[string]bool)
	}
	key := models.NameKey(v)
	if p.seen[key] {
		return
	}
	p.seen[key] = true
	p.items = append(p.items, v)
}

func extractPackages(card *goquery.Selection, name, period string) []string {
	var set packageSet
	if period != "" {
		set.add(period)
	}

	card.Find(packageSelector).Each(func(_ int, s *goquery.Selection) {
		text := flatText(s)
		if text == "" {
			return
		}
		if !packageDurationPattern.MatchString(text) && !tierPattern.MatchString(text) {
			return
		}
		if l := runeLen(text); l >= 3 && l <= 29 {
			set.add(text)
		}
	})

	if len(set.items) < 3 {
		for _, m := range packageDurationPattern.FindAllString(flatText(card), -1) {
			set.add(m)
		}
	}

	switch {
	case len(set.items) == 0:
		if matchesKeyword(name, StreamingKeywords) {
			return append([]string(nil), StreamingPackages...)
		}
		return []string{models.DefaultPeriod}
	case len(set.items) == 1 && matchesKeyword(name, TopUpKeywords):
		for _, p := range TopUpPackages {
			set.add(p)
		}
	}

	if len(set.items) > MaxPackages {
		return set.items[:MaxPackages]
	}
	return set.items
}

// extractImage prefers the largest declared image, else the first usable one.
// Without any image the name is turned into a filename.
func extractImage(card *goquery.Selection, origin, name string) string {
	best, bestSize, found := "", 0, false
	card.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := ""
		for _, attr := range []string{"src", "data-src", "data-original"} {
			if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
				src = v
				break
			}
		}
		lower := strings.ToLower(src)
		if src == "" || strings.Contains(lower, "icon") || strings.Contains(lower, "placeholder") {
			return
		}
		size := leadingInt(img.AttrOr("width", "")) * leadingInt(img.AttrOr("height", ""))
		if !found || size > bestSize {
			best, bestSize, found = src, size, true
		}
	})
	if !found {
		return imageFileName(name)
	}
	return absoluteURL(origin, best)
}

func imageFileName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-") + ".png"
}

// absoluteURL resolves src against the storefront origin.
func absoluteURL(origin, src string) string {
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "http"), strings.HasPrefix(lower, "data:"):
		return src
	case origin == "":
		return src
	case strings.HasPrefix(src, "//"):
		scheme := "https"
		if u, err := url.Parse(origin); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}
		return scheme + ":" + src
	case strings.HasPrefix(src, "/"):
		return strings.TrimSuffix(origin, "/") + src
	default:
		return strings.TrimSuffix(origin, "/") + "/" + src
	}
}
