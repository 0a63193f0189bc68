// internal/models/listing.go
package models

// ListingFacts holds the structured attributes of a property obtained from the
// listing-data provider. Absence is represented by zero values, never by nil.
type ListingFacts struct {
	Price        float64 `json:"price"`
	Beds         float64 `json:"beds"`
	Baths        float64 `json:"baths"`
	Sqft         float64 `json:"sqft"`
	DaysOnMarket float64 `json:"daysOnMarket"`
	PropertyType string  `json:"propertyType"`
}

// HasRealData reports whether the provider returned anything usable.
func (f ListingFacts) HasRealData() bool {
	return f.Price > 0 || f.Beds > 0 || f.Sqft > 0
}

// DefaultListingFacts returns the all-zero facts used when the provider is
// absent or returns nothing. PropertyType stays empty so a model-supplied
// type can still win during reconciliation.
func DefaultListingFacts() ListingFacts {
	return ListingFacts{}
}
