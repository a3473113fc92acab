package domain

import "github.com/shopspring/decimal"

// Service is an entry in the salon's price list.
type Service struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// DefaultCatalog is the price list seeded into an empty store.
func DefaultCatalog() []Service {
	return []Service{
		{Name: "Eyelashes", Price: decimal.NewFromInt(25)},
		{Name: "Manicure", Price: decimal.NewFromInt(20)},
		{Name: "Physiotherapy", Price: decimal.NewFromInt(35)},
		{Name: "Massage", Price: decimal.NewFromInt(30)},
		{Name: "Facial Care", Price: decimal.NewFromInt(28)},
		{Name: "Body Care", Price: decimal.NewFromInt(32)},
		{Name: "Depilation", Price: decimal.NewFromInt(15)},
		{Name: "Laser Depilation", Price: decimal.NewFromInt(50)},
	}
}
