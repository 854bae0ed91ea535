package models

// Transaction is one observed home sale.
// Transactions are created in bulk by the loader and never mutated afterwards;
// filtering always produces new slices.
type Transaction struct {
	ID        string
	GEOID     string
	Date      string
	County    string
	SubGeo    string
	Price     float64
	PriceSF   float64
	Size      *float64
	YearBuilt *int
	SaleYear  int
	SaleMonth int
}
