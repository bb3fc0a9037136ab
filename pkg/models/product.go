package models

import (
	"strconv"
	"strings"
)

const (
	StockAvailable  = "Tersedia"
	StockOutOfStock = "Habis"
	DefaultPeriod   = "Premium"
)

// ProductOffer is one purchasable catalog entry recovered from a storefront page.
type ProductOffer struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Period   string   `json:"period"`
	Price    float64  `json:"price"`
	Stock    string   `json:"stock"`
	Packages []string `json:"packages"`
	Image    string   `json:"image"`
}

// StockCount renders the "Stok: N" label.
func StockCount(n int) string {
	return "Stok: " + strconv.Itoa(n)
}

// NameKey is the dedup key: lowercased with whitespace collapsed.
func NameKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Clone returns a deep copy so callers can renumber without touching shared tables.
func (p ProductOffer) Clone() ProductOffer {
	p.Packages = append([]string(nil), p.Packages...)
	return p
}
