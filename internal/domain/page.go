package domain

import (
	"encoding/json"
	"fmt"
)

// PageName identifies a page variant.
type PageName string

const (
	PageHome          PageName = "home"
	PageProduct       PageName = "product"
	PageStore         PageName = "store"
	PageRegisterStore PageName = "registerStore"
)

// ParsePageName validates a page name coming from a request.
func ParsePageName(s string) (PageName, error) {
	switch n := PageName(s); n {
	case PageHome, PageProduct, PageStore, PageRegisterStore:
		return n, nil
	case "":
		return PageHome, nil
	default:
		return "", fmt.Errorf("unknown page %q", s)
	}
}

// Page is the view state shown to a visitor. The set of implementations is
// closed: HomePage, ProductPage, StorePage and RegisterStorePage.
type Page interface {
	Name() PageName
	// ChatContext describes the page for the assistant's system instruction.
	ChatContext() string
	sealed()
}

type HomePage struct{}

func (HomePage) Name() PageName      { return PageHome }
func (HomePage) ChatContext() string { return string(PageHome) }
func (HomePage) sealed()             {}

func (p HomePage) MarshalJSON() ([]byte, error) {
	return marshalPage(p, nil)
}

// ProductPage carries the product that was current at navigation time.
type ProductPage struct {
	Product Product
}

func (ProductPage) Name() PageName { return PageProduct }
func (p ProductPage) ChatContext() string {
	return fmt.Sprintf("%s:%s %s", PageProduct, p.Product.ID, p.Product.Name)
}
func (ProductPage) sealed() {}

func (p ProductPage) MarshalJSON() ([]byte, error) {
	return marshalPage(p, p.Product)
}

// StorePage carries the store that was current at navigation time.
type StorePage struct {
	Store Store
}

func (StorePage) Name() PageName { return PageStore }
func (p StorePage) ChatContext() string {
	return fmt.Sprintf("%s:%s %s", PageStore, p.Store.ID, p.Store.Name)
}
func (StorePage) sealed() {}

func (p StorePage) MarshalJSON() ([]byte, error) {
	return marshalPage(p, p.Store)
}

type RegisterStorePage struct{}

func (RegisterStorePage) Name() PageName      { return PageRegisterStore }
func (RegisterStorePage) ChatContext() string { return string(PageRegisterStore) }
func (RegisterStorePage) sealed()             {}

func (p RegisterStorePage) MarshalJSON() ([]byte, error) {
	return marshalPage(p, nil)
}

type pageJSON struct {
	Name PageName `json:"name"`
	Data any      `json:"data,omitempty"`
}

func marshalPage(p Page, data any) ([]byte, error) {
	return json.Marshal(pageJSON{Name: p.Name(), Data: data})
}
