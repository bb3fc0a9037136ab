package katalog

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	// marker followed by an amount, with an optional thousands suffix
	markerPricePattern = regexp.MustCompile(`(?i)(?:\b(?:Rp|IDR)|₨)\.?\s*(\d[\d.,]*)(?:\s*(ribu|rb|k)\b)?`)
	markerPattern      = regexp.MustCompile(`(?i)\b(?:Rp|IDR)(?:[^A-Za-z]|$)|₨`)
	thousandsPattern   = regexp.MustCompile(`(?i)(\d[\d.,]*)\s*(?:ribu|rb|k)\b`)
	bareNumberPattern  = regexp.MustCompile(`\d[\d.,]*`)
	leadingFloat       = regexp.MustCompile(`^(?:\d+(?:\.\d*)?|\.\d+)`)

	titleDurationPattern   = regexp.MustCompile(`(?i)(\d+)\s*(BULAN|HARIAN|HARI|TAHUN|MINGGU)`)
	packageDurationPattern = regexp.MustCompile(`(?i)\d+\s*(?:BULAN|HARIAN|HARI|TAHUN|MINGGU|MONTH|DAY|YEAR|WEEK)`)
	tierPattern            = regexp.MustCompile(`(?i)^\s*(?:PREMIUM|PRO|BASIC|STANDARD|REGULER)\s*$`)
	durationKeywordPattern = regexp.MustCompile(`(?i)bulan|hari|tahun|minggu`)
	parenPattern           = regexp.MustCompile(`\(.*\)`)
)

// flatText returns the text under s with text nodes separated by a single space.
func flatText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" || n.Data == "noscript" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return collapse(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// parseAmount drops "." thousands separators and reads "," as the decimal point.
// Unparseable input yields 0.
func parseAmount(raw string) float64 {
	clean := strings.ReplaceAll(raw, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	num := leadingFloat.FindString(clean)
	if num == "" {
		return 0
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v
}

// markerPrice reads the first marker-prefixed amount in text.
func markerPrice(text string) float64 {
	m := markerPricePattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v := parseAmount(m[1])
	if m[2] != "" {
		v *= 1000
	}
	return v
}

// parsePrice tries the marker form, then the thousands-suffix form, then any number.
func parsePrice(text string) float64 {
	if text == "" {
		return 0
	}
	if v := markerPrice(text); v > 0 {
		return v
	}
	if m := thousandsPattern.FindStringSubmatch(text); m != nil {
		if v := parseAmount(m[1]) * 1000; v > 0 {
			return v
		}
	}
	if m := bareNumberPattern.FindString(text); m != "" {
		return parseAmount(m)
	}
	return 0
}

// leadingInt reads the leading digits of s ("300px" -> 300).
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}
