// Package query derives sorted and filtered views of the product catalog.
// Every function returns a new slice and leaves its input untouched.
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/qbazz/storefront/internal/domain"
)

// SortKey selects the ordering of a product list.
type SortKey string

const (
	SortNewest      SortKey = "newest"
	SortPriceAsc    SortKey = "price-asc"
	SortPriceDesc   SortKey = "price-desc"
	SortMostVisited SortKey = "most-visited"
)

// AllCategories is the category slug that disables filtering.
const AllCategories = "all"

const (
	// RelatedLimit is the number of related products shown on a product page.
	RelatedLimit = 4
	// TrendingLimit is the number of products in the home page carousel.
	TrendingLimit = 8
)

// SortKeys lists the supported keys in display order.
var SortKeys = []SortKey{SortNewest, SortMostVisited, SortPriceDesc, SortPriceAsc}

// ParseSortKey validates a sort key. An empty key means newest.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortNewest, nil
	}
	k := SortKey(s)
	if !slices.Contains(SortKeys, k) {
		return "", fmt.Errorf("unknown sort key %q", s)
	}
	return k, nil
}

// Sort orders products by key. Newest is the reverse of arrival order since
// products carry no creation time. Most-visited sorts by Views, which the
// catalog API does not populate, so in practice it keeps arrival order.
func Sort(products []domain.Product, key SortKey) []domain.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []domain.Product{}
	}
	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmpInt64(a.Price, b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmpInt64(b.Price, a.Price)
		})
	case SortMostVisited:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return b.Views - a.Views
		})
	default:
		slices.Reverse(out)
	}
	return out
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// FilterByCategory keeps products whose category label contains the title or
// the slug of the category identified by slug. "all" and unknown slugs keep
// every product.
func FilterByCategory(products []domain.Product, categories []domain.Category, slug string) []domain.Product {
	if slug == "" || slug == AllCategories {
		return clone(products)
	}
	cat, ok := domain.FindCategory(categories, slug)
	if !ok {
		return clone(products)
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(p.Category, cat.Title) || strings.Contains(p.Category, cat.Slug) {
			out = append(out, p)
		}
	}
	return out
}

// View sorts then filters, the order the home page applies them in.
func View(products []domain.Product, categories []domain.Category, key SortKey, slug string) []domain.Product {
	return FilterByCategory(Sort(products, key), categories, slug)
}

// Related picks up to RelatedLimit products for the product page: others from
// the same store first, then any other products in list order.
func Related(products []domain.Product, current domain.Product) []domain.Product {
	out := make([]domain.Product, 0, RelatedLimit)
	seen := map[string]bool{current.ID: true}

	for _, p := range products {
		if len(out) == RelatedLimit {
			return out
		}
		if p.Store.ID == current.Store.ID && !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	for _, p := range products {
		if len(out) == RelatedLimit {
			break
		}
		if !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}

// Trending returns the first n products in arrival order.
func Trending(products []domain.Product, n int) []domain.Product {
	if n > len(products) {
		n = len(products)
	}
	if n < 0 {
		n = 0
	}
	return clone(products[:n])
}

// ByStore returns the products sold by the given store.
func ByStore(products []domain.Product, storeID string) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range products {
		if p.Store.ID == storeID {
			out = append(out, p)
		}
	}
	return out
}

// Match is the local search: a case-insensitive substring test over the
// product name, description and store name. A blank query matches nothing.
func Match(products []domain.Product, q string) []domain.Product {
	out := make([]domain.Product, 0)
	if strings.TrimSpace(q) == "" {
		return out
	}
	needle := strings.ToLower(q)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) ||
			strings.Contains(strings.ToLower(p.Store.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

func clone(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out
}
