package katalog

import (
	"strings"

	"katalog-hunter/pkg/models"
)

// PriceDefault maps a name keyword to the price used when none could be read.
type PriceDefault struct {
	Keyword string
	Price   float64
}

var (
	DefaultPrices = []PriceDefault{
		{Keyword: "NETFLIX", Price: 45000},
		{Keyword: "SPOTIFY", Price: 25000},
		{Keyword: "YOUTUBE", Price: 30000},
	}
	FallbackPrice = 50000.0

	// StreamingKeywords get the streaming package set when no package was found.
	StreamingKeywords = []string{"NETFLIX", "DISNEY", "YOUTUBE", "AMAZON", "SPOTIFY", "APPLE"}
	// TopUpKeywords get 1 BULAN and 3 BULAN added to a single detected package.
	TopUpKeywords = []string{"NETFLIX", "DISNEY", "YOUTUBE", "SPOTIFY"}

	StreamingPackages = []string{models.DefaultPeriod, "1 BULAN", "3 BULAN"}
	TopUpPackages     = []string{"1 BULAN", "3 BULAN"}

	MaxPackages = 6
)

func defaultPrice(name string) float64 {
	upper := strings.ToUpper(name)
	for _, d := range DefaultPrices {
		if strings.Contains(upper, d.Keyword) {
			return d.Price
		}
	}
	return FallbackPrice
}

func matchesKeyword(name string, keywords []string) bool {
	upper := strings.ToUpper(name)
	for _, k := range keywords {
		if strings.Contains(upper, k) {
			return true
		}
	}
	return false
}

var staticCatalog = []models.ProductOffer{
	{ID: 1, Name: "NETFLIX", Period: "1 BULAN", Price: 42000, Stock: models.StockAvailable, Packages: []string{"1 BULAN", "3 BULAN", "6 BULAN"}, Image: "netflix.png"},
	{ID: 2, Name: "GSUITE", Period: "3 HARIAN", Price: 15000, Stock: "Stok: 10", Packages: []string{"3 HARIAN", "1 BULAN", "1 TAHUN"}, Image: "gsuite.png"},
	{ID: 3, Name: "CHATGPT", Period: "1 BULAN", Price: 45000, Stock: models.StockAvailable, Packages: []string{"1 BULAN", "3 BULAN"}, Image: "chatgpt.png"},
	{ID: 4, Name: "YOUTUBE PREMIUM", Period: "1 BULAN", Price: 30000, Stock: models.StockAvailable, Packages: []string{"1 BULAN", "6 BULAN", "1 TAHUN"}, Image: "youtube.png"},
	{ID: 5, Name: "CAPCUT PRO", Period: "Premium", Price: 50000, Stock: models.StockAvailable, Packages: []string{"Premium", "1 BULAN", "3 BULAN"}, Image: "capcut.png"},
	{ID: 6, Name: "ZOOM PRO", Period: "Premium", Price: 50000, Stock: models.StockAvailable, Packages: []string{"Premium", "1 BULAN", "1 TAHUN"}, Image: "zoom.png"},
	{ID: 7, Name: "DRAMABOX", Period: "Premium", Price: 30000, Stock: models.StockOutOfStock, Packages: []string{"Premium"}, Image: "dramabox.png"},
	{ID: 8, Name: "SPOTIFY", Period: "Premium", Price: 8000, Stock: "Stok: 5", Packages: []string{"Premium", "1 BULAN", "3 BULAN"}, Image: "spotify.png"},
	{ID: 9, Name: "CANVA PREMIUM", Period: "Premium", Price: 50000, Stock: models.StockAvailable, Packages: []string{"Premium", "1 BULAN", "1 TAHUN"}, Image: "canva.png"},
	{ID: 10, Name: "TINDER PREMIUM", Period: "Premium", Price: 35000, Stock: models.StockAvailable, Packages: []string{"Premium", "1 BULAN", "6 BULAN"}, Image: "tinder.png"},
	{ID: 11, Name: "APPLE MUSIKIN", Period: "Premium", Price: 15000, Stock: models.StockAvailable, Packages: []string{"Premium", "1 BULAN", "3 BULAN"}, Image: "apple-music.png"},
	{ID: 12, Name: "RCTI+", Period: "1 BULAN", Price: 11000, Stock: "Stok: 15", Packages: []string{"1 BULAN", "3 BULAN", "6 BULAN"}, Image: "rcti.png"},
}

// StaticCatalog returns a fresh copy of the hardcoded catalog served when
// live extraction yields nothing.
func StaticCatalog() []models.ProductOffer {
	out := make([]models.ProductOffer, len(staticCatalog))
	for i, p := range staticCatalog {
		out[i] = p.Clone()
	}
	return out
}
