package catalog

import (
	"encoding/json"
	"errors"

	"github.com/qbazz/storefront/internal/domain"
)

// errNotObject is returned for list entries that are not JSON objects.
var errNotObject = errors.New("record is not a JSON object")

type apiStoreRef struct {
	ID      json.RawMessage `json:"id"`
	Title   json.RawMessage `json:"title"`
	Avatar  json.RawMessage `json:"avatar"`
	Socials json.RawMessage `json:"socials"`
}

type apiProduct struct {
	ID              json.RawMessage `json:"id"`
	StoreID         json.RawMessage `json:"storeId"`
	Title           json.RawMessage `json:"title"`
	Description     json.RawMessage `json:"description"`
	LongDescription json.RawMessage `json:"longDescription"`
	Images          json.RawMessage `json:"images"`
	Properties      json.RawMessage `json:"properties"`
	Pricing         json.RawMessage `json:"pricing"`
	Colors          json.RawMessage `json:"colors"`
	Tags            json.RawMessage `json:"tags"`
	Store           json.RawMessage `json:"store"`
}

type apiStore struct {
	ID       json.RawMessage `json:"id"`
	Title    json.RawMessage `json:"title"`
	Avatar   json.RawMessage `json:"avatar"`
	Socials  json.RawMessage `json:"socials"`
	Tags     json.RawMessage `json:"tags"`
	Identity json.RawMessage `json:"identity"`
	Count    json.RawMessage `json:"_count"`
}

// NormalizeProduct converts a raw product record into a domain.Product.
// Malformed optional fields fall back to empty values; only a record that is
// not an object is rejected.
func NormalizeProduct(raw json.RawMessage) (domain.Product, error) {
	if kindOf(raw) != kindObject {
		return domain.Product{}, errNotObject
	}
	var p apiProduct
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Product{}, err
	}

	description := looseString(p.Description)
	if description == "" {
		description = looseString(p.LongDescription)
	}

	category := domain.DefaultProductCategory
	if tags := looseStrings(p.Tags); len(tags) > 0 {
		category = tags[0]
	}

	return domain.Product{
		ID:          looseString(p.ID),
		Name:        looseString(p.Title),
		Description: description,
		Price:       productPrice(p.Pricing),
		Images:      looseStrings(p.Images),
		Colors:      looseStrings(p.Colors),
		Details:     productDetails(p.Properties),
		Store:       productStore(p),
		Views:       0,
		Category:    category,
	}, nil
}

// productPrice prefers base_price over price and defaults to zero.
func productPrice(raw json.RawMessage) int64 {
	pricing := looseObject(raw)
	for _, key := range []string{"base_price", "price"} {
		if d, ok := looseNumber(field(pricing, key)); ok {
			return toAmount(d)
		}
	}
	return 0
}

func productDetails(raw json.RawMessage) []domain.Detail {
	props := looseObject(raw)
	if len(props) > domain.MaxDetails {
		props = props[:domain.MaxDetails]
	}
	details := make([]domain.Detail, 0, len(props))
	for _, m := range props {
		details = append(details, domain.Detail{Label: m.key, Value: displayValue(m.value)})
	}
	return details
}

func productStore(p apiProduct) domain.Store {
	var ref apiStoreRef
	hasRef := kindOf(p.Store) == kindObject && json.Unmarshal(p.Store, &ref) == nil

	id := looseString(p.StoreID)
	if id == "" && hasRef {
		id = looseString(ref.ID)
	}

	store := domain.Store{
		ID:       id,
		Name:     domain.DefaultStoreName,
		Category: domain.DefaultStoreCategory,
	}
	if hasRef {
		store.Name = storeName(ref.Title, ref.Socials)
		store.LogoURL = looseString(ref.Avatar)
	}
	return store
}

// storeName resolves a display name: the title, then the Telegram username
// or id from the socials document, then a placeholder.
func storeName(title, socials json.RawMessage) string {
	if name := looseString(title); name != "" {
		return name
	}
	if name := looseString(path(socials, "telegram", "username")); name != "" {
		return name
	}
	if name := looseString(path(socials, "telegram", "id")); name != "" {
		return name
	}
	return domain.DefaultStoreName
}

// NormalizeStore converts a raw store record into a domain.Store.
func NormalizeStore(raw json.RawMessage) (domain.Store, error) {
	if kindOf(raw) != kindObject {
		return domain.Store{}, errNotObject
	}
	var s apiStore
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Store{}, err
	}

	category := domain.DefaultStoreCategory
	if tags := looseStrings(s.Tags); len(tags) > 0 {
		category = tags[0]
	}

	var count int
	if d, ok := looseNumber(path(s.Count, "products")); ok {
		count = int(toAmount(d))
	}

	return domain.Store{
		ID:           looseString(s.ID),
		Name:         storeName(s.Title, s.Socials),
		Category:     category,
		Location:     looseString(path(s.Identity, "location", "city")),
		LogoURL:      looseString(s.Avatar),
		ProductCount: count,
	}, nil
}

// NormalizeCategory decodes a category record. Inactive categories are
// reported with ok set to false.
func NormalizeCategory(raw json.RawMessage) (domain.Category, bool, error) {
	if kindOf(raw) != kindObject {
		return domain.Category{}, false, errNotObject
	}
	var c domain.Category
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Category{}, false, err
	}
	return c, c.IsActive, nil
}
