// internal/handlers/analysis/prompt_test.go
package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"listing-analytics/internal/models"
)

func factsWithDOM(dom float64) models.ListingFacts {
	return models.ListingFacts{
		Price:        500000,
		Beds:         3,
		Baths:        2,
		Sqft:         2000,
		DaysOnMarket: dom,
		PropertyType: "Single Family",
	}
}

// ==========================
// DOM Banding Tests
// ==========================

func TestDomContextBands(t *testing.T) {
	tests := []struct {
		name string
		dom  float64
		want string
	}{
		{"stale listing", 61, "URGENT"},
		{"above urgent boundary", 90, "URGENT"},
		{"warning band", 31, "WARNING"},
		{"upper warning band", 60, "WARNING"},
		{"monitor band", 16, "Monitor closely"},
		{"healthy band", 10, "within healthy range"},
		{"fresh listing", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domContext(tt.dom)
			if tt.want == "" {
				assert.Empty(t, got)
			} else {
				assert.Contains(t, got, tt.want)
			}
		})
	}
}

func TestDomContextBoundaries(t *testing.T) {
	// Thresholds are strict: exactly 30 is not yet a warning, exactly 60 is
	// not yet urgent.
	assert.NotContains(t, domContext(30), "WARNING")
	assert.Contains(t, domContext(31), "WARNING")
	assert.NotContains(t, domContext(60), "URGENT")
	assert.Contains(t, domContext(61), "URGENT")
	assert.NotContains(t, domContext(15), "Monitor closely")
	assert.Contains(t, domContext(16), "Monitor closely")
}

// ==========================
// Pricing Context Tests
// ==========================

func TestPricingContextHighDOM(t *testing.T) {
	got := pricingContext(factsWithDOM(45))

	assert.Contains(t, got, "Current price: $500,000")
	assert.Contains(t, got, "reducing price by 5% ($25,000) to $475,000")
	assert.Contains(t, got, "typically reduces DOM by 40-50% in similar markets")
	assert.Contains(t, got, "Price per sqft: $250/sqft")
}

func TestPricingContextHealthyDOM(t *testing.T) {
	got := pricingContext(factsWithDOM(10))

	assert.Contains(t, got, "Current price: $500,000")
	assert.Contains(t, got, "Price per sqft: $250/sqft")
	assert.NotContains(t, got, "reducing price")
}

func TestPricingContextNoData(t *testing.T) {
	assert.Empty(t, pricingContext(models.ListingFacts{}))
}

// ==========================
// Full Prompt Tests
// ==========================

func TestBuildPromptWithListingData(t *testing.T) {
	prompt := BuildPrompt(factsWithDOM(45), "123 Main St, Austin, TX")

	assert.Contains(t, prompt, "elite-level real estate analysis engine")
	assert.Contains(t, prompt, "LISTING DATA (from RentCast API):")
	assert.Contains(t, prompt, "Current List Price: $500,000")
	assert.Contains(t, prompt, "Address: 123 Main St, Austin, TX")
	assert.Contains(t, prompt, "WARNING: Property has been on market 45 days")
	assert.Contains(t, prompt, "Since DOM > 30 days, you MUST provide a specific price reduction")
	assert.Contains(t, prompt, `"propertyType": "Single Family"`)
	assert.Contains(t, prompt, `"estimatedValue": 500000`)
	assert.Contains(t, prompt, "Return ONLY valid JSON")
	assert.NotContains(t, prompt, "No listing data available")
}

func TestBuildPromptWithoutListingData(t *testing.T) {
	prompt := BuildPrompt(models.DefaultListingFacts(), "456 Oak Ave")

	assert.Contains(t, prompt, "No listing data available")
	assert.Contains(t, prompt, "Address: 456 Oak Ave")
	assert.Contains(t, prompt, `"propertyType": "Residential"`)
	assert.Contains(t, prompt, `"estimatedValue": 0`)
	assert.NotContains(t, prompt, "LISTING DATA (from RentCast API):")
	assert.NotContains(t, prompt, "URGENT")
	assert.NotContains(t, prompt, "WARNING")
}

func TestBuildPromptFractionalBaths(t *testing.T) {
	facts := factsWithDOM(10)
	facts.Baths = 2.5

	prompt := BuildPrompt(facts, "789 Pine Rd")
	assert.Contains(t, prompt, "- Baths: 2.5")
}

// ==========================
// Formatting Tests
// ==========================

func TestFormatComma(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{25000, "25,000"},
		{475000, "475,000"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatComma(tt.in))
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "3", formatNumber(3))
	assert.Equal(t, "2.5", formatNumber(2.5))
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "500000", formatNumber(500000))
}

func TestPromptHasNoTemplateLeftovers(t *testing.T) {
	prompt := BuildPrompt(factsWithDOM(45), "123 Main St")
	assert.False(t, strings.Contains(prompt, "%!"), "format verb leaked into prompt")
}
