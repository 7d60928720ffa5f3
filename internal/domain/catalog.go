package domain

// Localized placeholders substituted when the catalog API omits a value.
const (
	DefaultStoreName       = "فروشگاه"
	DefaultStoreCategory   = "بازار"
	DefaultProductCategory = "عمومی"
)

// MaxDetails caps the number of label/value pairs kept on a product.
const MaxDetails = 6

// Product is a normalized catalog product. Instances are snapshots created by
// the catalog adapter and are never mutated afterwards.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Images      []string `json:"images"`
	Colors      []string `json:"colors"`
	Details     []Detail `json:"details"`
	Store       Store    `json:"store"`
	Views       int      `json:"views"`
	Category    string   `json:"category"`
}

// Detail is a single label/value pair derived from the backend properties.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Store is a normalized vendor.
type Store struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	LogoURL      string `json:"logoUrl"`
	ProductCount int    `json:"productCount"`
}

// Category is a catalog category. Slug is the filtering key, not ID.
type Category struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Icon        *string    `json:"icon"`
	Description *string    `json:"description"`
	ParentID    *int64     `json:"parentId"`
	IsActive    bool       `json:"isActive"`
	SortOrder   int        `json:"sortOrder"`
	Children    []Category `json:"children,omitempty"`
}

// FindCategory returns the category with the given slug.
func FindCategory(categories []Category, slug string) (Category, bool) {
	for _, c := range categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// FindProduct returns the product with the given id.
func FindProduct(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// FindStore resolves a store by id from the stores embedded in products.
// ProductCount is filled with the number of products carrying that store.
func FindStore(products []Product, id string) (Store, bool) {
	var (
		store Store
		found bool
		count int
	)
	for _, p := range products {
		if p.Store.ID != id {
			continue
		}
		if !found {
			store = p.Store
			found = true
		}
		count++
	}
	if !found {
		return Store{}, false
	}
	if store.ProductCount == 0 {
		store.ProductCount = count
	}
	return store, true
}
