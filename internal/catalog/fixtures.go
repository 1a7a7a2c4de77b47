package catalog

import (
	"fmt"
	"strconv"

	"posctl/internal/domain"
)

var demoCategories = []string{
	"Beverages", "Bakery", "Dairy", "Frozen", "Household", "Personal Care", "Snacks", "Produce",
}

var demoManufacturers = []string{
	"Acme Foods", "Blue Ridge Dairy", "Northwind Traders", "Contoso Home", "Fabrikam Bakeries",
	"Globex Beverages", "Initech Snacks", "Umbrella Frozen", "Wayne Farms", "Stark Hygiene",
	"Tyrell Produce", "Cyberdyne Cleaning",
}

var demoUnits = []string{"pcs", "kg", "g", "l", "ml", "box", "pack", "dozen"}

var demoProductStems = []string{
	"Sparkling Water", "Rye Bread", "Greek Yogurt", "Ice Cream", "Dish Soap", "Shampoo",
	"Potato Chips", "Bananas", "Orange Juice", "Croissant", "Cheddar", "Frozen Peas",
}

// DemoCatalog builds deterministic fixture data for every resource
func DemoCatalog() map[string]*MemorySource {
	return map[string]*MemorySource{
		domain.ResourceCategories:    NewMemorySource(named(demoCategories)),
		domain.ResourceManufacturers: NewMemorySource(named(demoManufacturers)),
		domain.ResourceUnits:         NewMemorySource(named(demoUnits)),
		domain.ResourceProducts:      NewMemorySource(demoProducts()),
	}
}

func named(names []string) []domain.Option {
	out := make([]domain.Option, len(names))
	for i, n := range names {
		out[i] = domain.Option{ID: strconv.Itoa(i + 1), Name: n, Extra: map[string]any{}}
	}
	return out
}

// demoProducts spreads several variants of each stem across categories
func demoProducts() []domain.Option {
	var out []domain.Option
	id := 1
	for variant := 1; variant <= 6; variant++ {
		for i, stem := range demoProductStems {
			out = append(out, domain.Option{
				ID:   strconv.Itoa(id),
				Name: fmt.Sprintf("%s #%d", stem, variant),
				Extra: map[string]any{
					"categoryId":     strconv.Itoa(i%len(demoCategories) + 1),
					"manufacturerId": strconv.Itoa((i+variant)%len(demoManufacturers) + 1),
					"unitId":         strconv.Itoa(variant%len(demoUnits) + 1),
					"sku":            fmt.Sprintf("SKU-%03d", id),
				},
			})
			id++
		}
	}
	return out
}
