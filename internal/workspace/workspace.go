// Package workspace holds one admin session's screens: an independent list
// controller per management screen plus the onboarding wizard. Workspaces
// live in a Registry keyed by session id.
package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/listing"
	"github.com/dinehub/admin-console/internal/onboarding"
	"github.com/dinehub/admin-console/internal/session"
)

// Screen names, also used on the wire and in metrics.
const (
	ScreenRestaurants   = "restaurants"
	ScreenCustomers     = "customers"
	ScreenOrders        = "orders"
	ScreenCategories    = "menu-categories"
	ScreenSubcategories = "menu-subcategories"
	ScreenItems         = "menu-items"
)

// Screens lists every list screen of a workspace.
func Screens() []string {
	return []string{ScreenRestaurants, ScreenCustomers, ScreenOrders, ScreenCategories, ScreenSubcategories, ScreenItems}
}

// Workspace is one admin's set of screens.
type Workspace struct {
	Session session.Session
	API     *backend.API

	Restaurants   *listing.Controller[backend.Restaurant, backend.RestaurantFilter]
	Customers     *listing.Controller[backend.Customer, backend.CustomerFilter]
	Orders        *listing.Controller[backend.Order, backend.OrderFilter]
	Categories    *listing.Controller[backend.Category, backend.CategoryFilter]
	Subcategories *listing.Controller[backend.Subcategory, backend.SubcategoryFilter]
	Items         *listing.Controller[backend.MenuItem, backend.ItemFilter]

	Onboarding *onboarding.Wizard

	cancel  context.CancelFunc
	closers []func()
}

// deps is what every controller of a workspace shares.
type deps struct {
	ctx         context.Context
	notifier    listing.Notifier
	recorder    listing.Recorder
	log         logrus.FieldLogger
	searchDelay time.Duration
	onState     func(state any)
}

func newController[T any, F comparable](w *Workspace, d deps, name, noun string, fetch listing.Fetcher[T, F]) *listing.Controller[T, F] {
	c := listing.New(listing.Options[T, F]{
		Name:        name,
		Noun:        noun,
		Fetch:       fetch,
		SearchDelay: d.searchDelay,
		Notifier:    d.notifier,
		Recorder:    d.recorder,
		Log:         d.log,
		Context:     d.ctx,
	})
	unsubscribe := c.Subscribe(func(s listing.State[T, F]) { d.onState(s) })
	w.closers = append(w.closers, unsubscribe, c.Close)
	return c
}

func build(parent context.Context, s session.Session, api *backend.API, v *validator.Validate, d deps) *Workspace {
	ctx, cancel := context.WithCancel(parent)
	d.ctx = ctx
	w := &Workspace{
		Session:    s,
		API:        api,
		Onboarding: onboarding.NewWizard(v),
		cancel:     cancel,
	}

	w.Restaurants = newController(w, d, ScreenRestaurants, "restaurants", api.ListRestaurants)
	w.Customers = newController(w, d, ScreenCustomers, "customers", api.ListCustomers)
	w.Orders = newController(w, d, ScreenOrders, "orders", api.ListOrders)
	w.Categories = newController(w, d, ScreenCategories, "categories", api.ListCategories)
	w.Subcategories = newController(w, d, ScreenSubcategories, "subcategories", api.ListSubcategories)
	w.Items = newController(w, d, ScreenItems, "menu items", api.ListItems)
	return w
}

// Search feeds raw search input to a screen's debounced search.
func (w *Workspace) Search(screen, value string) error {
	switch screen {
	case ScreenRestaurants:
		w.Restaurants.SetSearch(value)
	case ScreenCustomers:
		w.Customers.SetSearch(value)
	case ScreenOrders:
		w.Orders.SetSearch(value)
	case ScreenCategories:
		w.Categories.SetSearch(value)
	case ScreenSubcategories:
		w.Subcategories.SetSearch(value)
	case ScreenItems:
		w.Items.SetSearch(value)
	default:
		return fmt.Errorf("unknown screen %q", screen)
	}
	return nil
}

// Close stops every controller and cancels in-flight requests.
func (w *Workspace) Close() {
	for _, c := range w.closers {
		c()
	}
	w.cancel()
}
