package katalog

import (
	"fmt"
	"strings"

	"katalog-hunter/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

const maxBlockRunes = 200

// headingOffers builds offers from headings followed by a marker price in the
// next sibling or the parent's next sibling.
func headingOffers(doc *goquery.Document) []models.ProductOffer {
	var out []models.ProductOffer
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(i int, h *goquery.Selection) {
		title := flatText(h)
		if runeLen(title) < 3 {
			return
		}
		name, period := splitTitle(title, 2)
		name = stripParens(name)
		if runeLen(name) < 2 {
			return
		}

		var price float64
		for _, sib := range []*goquery.Selection{h.Next(), h.Parent().Next()} {
			if sib.Length() == 0 {
				continue
			}
			if price = markerPrice(flatText(sib)); price > 0 {
				break
			}
		}
		if price <= 0 {
			return
		}

		packages := []string{period}
		if period == "" {
			packages = append([]string(nil), StreamingPackages...)
		}
		out = append(out, models.ProductOffer{
			ID:       i + 1,
			Name:     name,
			Period:   period,
			Price:    price,
			Stock:    models.StockAvailable,
			Packages: packages,
			Image:    imageFileName(name),
		})
	})
	return out
}

// blockOffers scans short text blocks carrying a currency marker. The text in
// front of the marker becomes the name.
func blockOffers(doc *goquery.Document) []models.ProductOffer {
	var out []models.ProductOffer
	n := 0
	doc.Find("div, p").Each(func(_ int, s *goquery.Selection) {
		text := flatText(s)
		loc := markerPattern.FindStringIndex(text)
		if loc == nil || runeLen(text) >= maxBlockRunes {
			return
		}
		n++
		price := markerPrice(text)
		if price <= 0 {
			return
		}

		name := strings.TrimSpace(text[:loc[0]])
		if l := runeLen(name); l < 2 || l > 50 {
			name = fmt.Sprintf("PRODUK %d", n)
		}
		out = append(out, models.ProductOffer{
			ID:       n,
			Name:     name,
			Period:   models.DefaultPeriod,
			Price:    price,
			Stock:    models.StockAvailable,
			Packages: append([]string(nil), StreamingPackages...),
			Image:    imageFileName(name),
		})
	})
	return out
}
