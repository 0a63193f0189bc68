// internal/models/analysis.go
package models

// AnalysisResult is the canonical output of a listing analysis. It is built
// once per request and persisted as returned.
type AnalysisResult struct {
	PropertyType           string   `json:"propertyType"`
	EstimatedValue         float64  `json:"estimatedValue"`
	EstimatedPrice         float64  `json:"estimatedPrice"`
	Beds                   float64  `json:"beds"`
	Baths                  float64  `json:"baths"`
	Sqft                   float64  `json:"sqft"`
	DaysOnMarket           float64  `json:"daysOnMarket"`
	MarketTrend            string   `json:"marketTrend"`
	KeyFeatures            []string `json:"keyFeatures"`
	Recommendations        []string `json:"recommendations"`
	RiskFactors            []string `json:"riskFactors"`
	PricingInsight         *string  `json:"pricingInsight"`
	SellingSpeedPrediction *string  `json:"sellingSpeedPrediction"`
	PropertyImageURL       string   `json:"propertyImageUrl,omitempty"`
}

// CachedAnalysis is the record written under ai-analysis:<address>. It is a
// write-only audit record; nothing reads it back.
type CachedAnalysis struct {
	Result    *AnalysisResult `json:"result"`
	CreatedAt string          `json:"createdAt"`
}
