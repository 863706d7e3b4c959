// Package validate turns raw JSON payloads into sanitized products.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"mercado/internal/models"
)

var (
	// ErrMissingFields is returned when name, description, category or price is absent.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidPrice is returned when price is not a finite, non-negative number.
	ErrInvalidPrice = errors.New("invalid price")
)

var requiredFields = []string{"name", "description", "category", "price"}

// Product checks raw for the required fields, parses the price and escapes
// and truncates the free-text fields. The returned product has no ID; the
// store assigns it.
func Product(raw map[string]any) (models.Product, error) {
	for _, f := range requiredFields {
		if _, ok := raw[f]; !ok {
			return models.Product{}, ErrMissingFields
		}
	}

	price, err := Price(raw["price"])
	if err != nil {
		return models.Product{}, err
	}

	return models.Product{
		Name:        Text(raw["name"], models.MaxNameLen),
		Description: Text(raw["description"], models.MaxDescriptionLen),
		Category:    Text(raw["category"], models.MaxCategoryLen),
		Price:       price,
		Image:       Text(raw["image"], models.MaxImageLen),
	}, nil
}

// maxPriceText bounds the literal a price may be written with.
const maxPriceText = 64

// Price converts a JSON number or numeric string to a float64.
// decimal only gates the syntax; the conversion itself is strconv's, which
// stays linear in the literal's length whatever its exponent.
func Price(v any) (float64, error) {
	var s string
	switch p := v.(type) {
	case json.Number:
		s = p.String()
	case float64:
		return checkPrice(p)
	case int:
		return checkPrice(float64(p))
	case int64:
		return checkPrice(float64(p))
	case string:
		s = strings.TrimSpace(p)
	default:
		return 0, ErrInvalidPrice
	}

	if s == "" || len(s) > maxPriceText {
		return 0, ErrInvalidPrice
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return 0, ErrInvalidPrice
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	return checkPrice(f)
}

func checkPrice(f float64) (float64, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) || f < 0 {
		return 0, ErrInvalidPrice
	}
	return f, nil
}

// Text stringifies v, escapes HTML-significant characters and cuts the
// result to limit characters. nil becomes "".
func Text(v any, limit int) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		// objects and arrays
		b, jerr := json.Marshal(v)
		if jerr != nil {
			s = fmt.Sprint(v)
		} else {
			s = string(b)
		}
	}
	return truncate(html.EscapeString(s), limit)
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
