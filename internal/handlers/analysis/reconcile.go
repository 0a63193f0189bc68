// internal/handlers/analysis/reconcile.go
package analysis

import (
	"strconv"
	"strings"

	"listing-analytics/internal/common/metrics"
	"listing-analytics/internal/models"
)

// Reconcile merges provider facts with model output into the final result.
// Provider data always wins when present; model values fill the gaps; hard
// defaults guarantee the frontend never sees a zero where a number is
// expected.
func Reconcile(facts models.ListingFacts, parsed map[string]interface{}, photoURL string) *models.AnalysisResult {
	result := &models.AnalysisResult{
		PropertyType:           firstString(facts.PropertyType, asString(parsed["propertyType"]), "Residential"),
		EstimatedValue:         firstFloat(facts.Price, asFloat(parsed["estimatedValue"]), asFloat(parsed["estimatedPrice"])),
		EstimatedPrice:         firstFloat(facts.Price, asFloat(parsed["estimatedPrice"]), asFloat(parsed["estimatedValue"])),
		Beds:                   firstFloat(facts.Beds, asFloat(parsed["beds"])),
		Baths:                  firstFloat(facts.Baths, asFloat(parsed["baths"])),
		Sqft:                   firstFloat(facts.Sqft, asFloat(parsed["sqft"])),
		DaysOnMarket:           firstFloat(facts.DaysOnMarket, asFloat(parsed["daysOnMarket"])),
		MarketTrend:            firstString(asString(parsed["marketTrend"]), "Stable Market"),
		KeyFeatures:            orStrings(parsed["keyFeatures"], []string{"Standard property features", "Modern amenities"}),
		Recommendations:        orStrings(parsed["recommendations"], []string{"Review property details", "Check market conditions"}),
		RiskFactors:            orStrings(parsed["riskFactors"], []string{}),
		PricingInsight:         asStringPtr(parsed["pricingInsight"]),
		SellingSpeedPrediction: asStringPtr(parsed["sellingSpeedPrediction"]),
	}

	applyDefaults(result)

	if photoURL != "" {
		result.PropertyImageURL = photoURL
	}

	return result
}

// applyDefaults fills remaining zeros with type-based estimates.
func applyDefaults(result *models.AnalysisResult) {
	if result.EstimatedPrice == 0 || result.EstimatedValue == 0 {
		propertyType := strings.ToLower(result.PropertyType)
		var estimate float64
		switch {
		case strings.Contains(propertyType, "condo") || strings.Contains(propertyType, "apartment"):
			estimate = 250000
		case strings.Contains(propertyType, "townhouse"):
			estimate = 350000
		default:
			estimate = 400000
		}
		result.EstimatedPrice = estimate
		result.EstimatedValue = estimate
		metrics.AnalysisFallbacksTotal.WithLabelValues("price").Inc()
	}

	if result.Beds == 0 {
		result.Beds = 3
		metrics.AnalysisFallbacksTotal.WithLabelValues("beds").Inc()
	}

	if result.Baths == 0 {
		result.Baths = 2
		metrics.AnalysisFallbacksTotal.WithLabelValues("baths").Inc()
	}

	if result.Sqft == 0 {
		result.Sqft = result.Beds * 800
		metrics.AnalysisFallbacksTotal.WithLabelValues("sqft").Inc()
	}
}

// ==========================
// Loose Value Accessors
// ==========================

// asFloat reads a numeric field the model may have emitted as a number or a
// numeric string.
func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return 0
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// asStringPtr keeps absent, null, and empty all as nil so the response field
// serializes as JSON null.
func asStringPtr(v interface{}) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}

// orStrings coerces a model array field to strings, falling back when the
// field is missing or the wrong shape.
func orStrings(v interface{}, fallback []string) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return fallback
	}

	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstFloat(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
