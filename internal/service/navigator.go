package service

import (
	"fmt"

	"github.com/qbazz/storefront/internal/domain"
	"github.com/qbazz/storefront/internal/query"
	"github.com/qbazz/storefront/internal/registration"
	apperrors "github.com/qbazz/storefront/pkg/errors"
)

// RenderOptions are the visitor's list controls.
type RenderOptions struct {
	Sort     query.SortKey
	Category string
}

// HomeView is the data behind the home page.
type HomeView struct {
	Trending       []domain.Product  `json:"trending"`
	Categories     []domain.Category `json:"categories"`
	Products       []domain.Product  `json:"products"`
	Sort           query.SortKey     `json:"sort"`
	SortKeys       []query.SortKey   `json:"sortKeys"`
	ActiveCategory string            `json:"activeCategory"`
}

// ProductView is the data behind a product page.
type ProductView struct {
	Product domain.Product   `json:"product"`
	Related []domain.Product `json:"related"`
}

// StoreView is the data behind a store page.
type StoreView struct {
	Store    domain.Store     `json:"store"`
	Products []domain.Product `json:"products"`
	Sort     query.SortKey    `json:"sort"`
	SortKeys []query.SortKey  `json:"sortKeys"`
}

// RegistrationView describes the registration wizard.
type RegistrationView struct {
	Steps       []registration.Step `json:"steps"`
	MapImageURL string              `json:"mapImageUrl"`
}

// PageView is a rendered page. Exactly one of the variant fields is set,
// matching Page.
type PageView struct {
	Page         domain.Page       `json:"page"`
	Loading      bool              `json:"loading"`
	ChatContext  string            `json:"chatContext"`
	Home         *HomeView         `json:"home,omitempty"`
	Product      *ProductView      `json:"product,omitempty"`
	Store        *StoreView        `json:"store,omitempty"`
	Registration *RegistrationView `json:"registration,omitempty"`
}

// Navigator resolves and renders pages against the current catalog snapshot.
type Navigator struct {
	catalog *CatalogService
}

func NewNavigator(catalog *CatalogService) *Navigator {
	return &Navigator{catalog: catalog}
}

// Navigate resolves a page. Product and store pages carry the object as it is
// in the snapshot now; it is not refreshed if the catalog reloads later.
func (n *Navigator) Navigate(name domain.PageName, id string) (domain.Page, error) {
	switch name {
	case domain.PageHome:
		return domain.HomePage{}, nil
	case domain.PageRegisterStore:
		return domain.RegisterStorePage{}, nil
	case domain.PageProduct:
		if id == "" {
			return nil, apperrors.InvalidInput("product page requires an id")
		}
		p, err := n.catalog.Product(id)
		if err != nil {
			return nil, err
		}
		return domain.ProductPage{Product: p}, nil
	case domain.PageStore:
		if id == "" {
			return nil, apperrors.InvalidInput("store page requires an id")
		}
		s, err := n.catalog.Store(id)
		if err != nil {
			return nil, err
		}
		return domain.StorePage{Store: s}, nil
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown page %q", name))
	}
}

// Render builds the view model for page.
func (n *Navigator) Render(page domain.Page, opts RenderOptions) (PageView, error) {
	snap := n.catalog.Snapshot()
	if opts.Sort == "" {
		opts.Sort = query.SortNewest
	}
	if opts.Category == "" {
		opts.Category = query.AllCategories
	}

	view := PageView{
		Page:        page,
		Loading:     snap.Loading,
		ChatContext: page.ChatContext(),
	}

	switch p := page.(type) {
	case domain.HomePage:
		view.Home = &HomeView{
			Trending:       query.Trending(snap.Products, query.TrendingLimit),
			Categories:     snap.Categories,
			Products:       query.View(snap.Products, snap.Categories, opts.Sort, opts.Category),
			Sort:           opts.Sort,
			SortKeys:       query.SortKeys,
			ActiveCategory: opts.Category,
		}
	case domain.ProductPage:
		view.Product = &ProductView{
			Product: p.Product,
			Related: query.Related(snap.Products, p.Product),
		}
	case domain.StorePage:
		view.Store = &StoreView{
			Store:    p.Store,
			Products: query.Sort(query.ByStore(snap.Products, p.Store.ID), opts.Sort),
			Sort:     opts.Sort,
			SortKeys: query.SortKeys,
		}
	case domain.RegisterStorePage:
		view.Registration = &RegistrationView{
			Steps:       registration.Steps,
			MapImageURL: registration.MapImageURL,
		}
	default:
		return PageView{}, fmt.Errorf("render: unsupported page %T", page)
	}
	return view, nil
}
