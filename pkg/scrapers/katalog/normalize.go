package katalog

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"katalog-hunter/pkg/models"
)

// normalize uppercases names, fills default prices and periods, merges
// duplicate names keeping the higher price and renumbers from 1.
func normalize(in []models.ProductOffer) []models.ProductOffer {
	winners := make(map[string]models.ProductOffer, len(in))
	order := make([]string, 0, len(in))

	for _, p := range in {
		p.Name = strings.ToUpper(collapse(p.Name))
		if p.Price <= 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			p.Price = defaultPrice(p.Name)
		}
		p.Period = strings.TrimSpace(p.Period)
		if p.Period == "" {
			p.Period = models.DefaultPeriod
			if len(p.Packages) > 0 {
				p.Period = p.Packages[0]
			}
		}
		if len(p.Packages) == 0 {
			p.Packages = []string{p.Period}
		}
		if p.Stock == "" {
			p.Stock = models.StockAvailable
		}

		key := models.NameKey(p.Name)
		prev, ok := winners[key]
		if !ok {
			order = append(order, key)
			winners[key] = p
			continue
		}
		if p.Price > prev.Price {
			winners[key] = p
		}
	}

	out := make([]models.ProductOffer, 0, len(order))
	for _, k := range order {
		out = append(out, winners[k])
	}
	slices.SortStableFunc(out, func(a, b models.ProductOffer) int {
		return cmp.Compare(a.ID, b.ID)
	})
	for i := range out {
		out[i].ID = i + 1
	}
	return out
}
