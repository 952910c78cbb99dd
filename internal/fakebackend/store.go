package fakebackend

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/enum"
)

// Seeded admin credentials.
const (
	SeedEmail    = "admin@dinehub.test"
	SeedPassword = "password123"
)

type adminRecord struct {
	backend.Admin
	hashedPassword []byte
}

// hashPassword uses the minimum cost; these are development credentials.
func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
}

func (a *adminRecord) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(a.hashedPassword, []byte(password)) == nil
}

// store holds every platform entity. All access goes through Server's mutex.
type store struct {
	mu sync.Mutex

	admins map[string]*adminRecord // keyed by email
	tokens map[string]int64        // bearer token -> admin ID
	otps   map[string]string       // email -> reset OTP

	restaurants   []*backend.Restaurant
	customers     []*backend.Customer
	orders        []*backend.Order
	categories    []*backend.Category
	subcategories []*backend.Subcategory
	items         []*backend.MenuItem

	nextID int64
}

func newStore() *store {
	return &store{
		admins: make(map[string]*adminRecord),
		tokens: make(map[string]int64),
		otps:   make(map[string]string),
		nextID: 1000,
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

var (
	cities   = []string{"Kochi", "Bengaluru", "Pune", "Jaipur", "Chennai"}
	cuisines = []string{"South Indian", "Punjabi", "Italian", "Chinese", "Mughlai"}
	names    = []string{"Spice Route", "Tandoor House", "Pizza Place", "Dragon Bowl", "Biryani Junction",
		"Dosa Corner", "Curry Leaf", "Pasta Street", "Wok Express", "Kebab Stop", "Thali Ghar", "Chaat Bazaar"}
)

// seed fills the store with a deterministic data set large enough to page through.
func (s *store) seed(now time.Time) {
	hashed, err := hashPassword(SeedPassword)
	if err != nil {
		panic(fmt.Sprintf("fakebackend: hash seed password: %v", err))
	}
	s.admins[SeedEmail] = &adminRecord{
		Admin:          backend.Admin{ID: 1, Name: "Platform Admin", Email: SeedEmail, Role: enum.AdminRoleSuper},
		hashedPassword: hashed,
	}

	statuses := []string{"Pending", "Approved", "Approved", "Rejected"}
	for i := 0; i < 25; i++ {
		r := &backend.Restaurant{
			ID:        int64(i + 1),
			Name:      fmt.Sprintf("%s %d", names[i%len(names)], i/len(names)+1),
			OwnerName: fmt.Sprintf("Owner %d", i+1),
			Email:     fmt.Sprintf("owner%d@restaurants.test", i+1),
			Phone:     fmt.Sprintf("98%08d", i+1),
			City:      cities[i%len(cities)],
			Cuisine:   cuisines[i%len(cuisines)],
			Status:    statuses[i%len(statuses)],
			CreatedAt: now.Add(-time.Duration(i) * 24 * time.Hour),
		}
		if r.Status == "Rejected" {
			reason := "Incomplete FSSAI documents"
			r.RejectionReason = &reason
		}
		s.restaurants = append(s.restaurants, r)
	}

	for i := 0; i < 32; i++ {
		s.customers = append(s.customers, &backend.Customer{
			ID:          int64(i + 1),
			Name:        fmt.Sprintf("Customer %d", i+1),
			Email:       fmt.Sprintf("customer%d@mail.test", i+1),
			Phone:       fmt.Sprintf("97%08d", i+1),
			IsActive:    i%5 != 0,
			TotalOrders: i % 9,
			CreatedAt:   now.Add(-time.Duration(i) * 36 * time.Hour),
		})
	}

	orderStatuses := enum.OrderStatuses()
	payments := []string{"paid", "paid", "pending", "failed", "refunded"}
	for i := 0; i < 40; i++ {
		price := decimal.NewFromInt(int64(120 + 15*(i%7))).Add(decimal.RequireFromString("0.50"))
		items := []backend.OrderItem{
			{Name: "Masala Dosa", Quantity: 1 + i%3, Price: price},
			{Name: "Filter Coffee", Quantity: 2, Price: decimal.RequireFromString("45.00")},
		}
		total := decimal.Zero
		for _, it := range items {
			total = total.Add(it.Subtotal())
		}
		s.orders = append(s.orders, &backend.Order{
			ID:             int64(i + 1),
			OrderNumber:    fmt.Sprintf("ORD-%05d", 10000+i),
			CustomerName:   s.customers[i%len(s.customers)].Name,
			RestaurantName: s.restaurants[i%len(s.restaurants)].Name,
			Status:         orderStatuses[i%len(orderStatuses)].Wire(),
			PaymentStatus:  payments[i%len(payments)],
			TotalAmount:    total,
			Items:          items,
			CreatedAt:      now.Add(-time.Duration(i) * 5 * time.Hour),
		})
	}

	for i, name := range []string{"Starters", "Main Course", "Breads", "Desserts", "Beverages"} {
		s.categories = append(s.categories, &backend.Category{
			ID: int64(i + 1), Name: name, SortOrder: i, IsActive: i != 3,
		})
	}
	subs := []struct {
		category int64
		name     string
	}{
		{1, "Veg Starters"}, {1, "Non-Veg Starters"}, {2, "Curries"}, {2, "Rice"}, {3, "Naan"}, {5, "Hot Drinks"},
	}
	for i, sc := range subs {
		s.subcategories = append(s.subcategories, &backend.Subcategory{
			ID: int64(i + 1), CategoryID: sc.category, CategoryName: s.categories[sc.category-1].Name,
			Name: sc.name, IsActive: true,
		})
	}
	menu := []struct {
		sub   int64
		name  string
		price string
		veg   bool
	}{
		{1, "Paneer Tikka", "240.00", true}, {1, "Hara Bhara Kebab", "190.00", true},
		{2, "Chicken 65", "260.00", false}, {3, "Paneer Butter Masala", "280.00", true},
		{3, "Butter Chicken", "320.00", false}, {4, "Veg Biryani", "220.00", true},
		{5, "Garlic Naan", "60.00", true}, {6, "Masala Chai", "40.00", true},
	}
	for i, m := range menu {
		sub := s.subcategories[m.sub-1]
		item := &backend.MenuItem{
			ID: int64(i + 1), CategoryID: sub.CategoryID, SubcategoryID: sub.ID, Name: m.name,
			Price: decimal.RequireFromString(m.price), IsVeg: m.veg, IsAvailable: i != 2,
		}
		if i == 0 {
			item.Variations = []backend.ItemExtra{{ID: s.id(), Name: "Full", Price: decimal.RequireFromString("240.00"), IsRequired: true}}
			item.Addons = []backend.ItemExtra{{ID: s.id(), Name: "Extra Mint Chutney", Price: decimal.RequireFromString("20.00")}}
		}
		s.items = append(s.items, item)
	}
}
