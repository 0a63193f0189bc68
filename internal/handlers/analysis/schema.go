// internal/handlers/analysis/schema.go
package analysis

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"listing-analytics/internal/common/logger"
)

// resultSchema describes the shape the model is asked for. Validation is
// diagnostic only: reconciliation repairs whatever the model got wrong, so a
// schema miss is logged, never returned to the caller.
const resultSchema = `{
  "type": "object",
  "properties": {
    "propertyType": {"type": "string"},
    "estimatedValue": {"type": "number"},
    "estimatedPrice": {"type": "number"},
    "beds": {"type": "number"},
    "baths": {"type": "number"},
    "sqft": {"type": "number"},
    "daysOnMarket": {"type": "number"},
    "marketTrend": {"type": "string"},
    "keyFeatures": {"type": "array", "items": {"type": "string"}},
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "riskFactors": {"type": "array", "items": {"type": "string"}},
    "pricingInsight": {"type": ["string", "null"]},
    "sellingSpeedPrediction": {"type": ["string", "null"]}
  },
  "required": ["marketTrend", "keyFeatures", "recommendations"]
}`

var compiledSchema = func() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(resultSchema))
	if err != nil {
		return nil
	}
	return schema
}()

// checkModelOutput logs deviations between the model's output and the
// requested shape.
func checkModelOutput(parsed map[string]interface{}, log logger.Logger) {
	if compiledSchema == nil {
		return
	}

	validation, err := compiledSchema.Validate(gojsonschema.NewGoLoader(parsed))
	if err != nil || validation.Valid() {
		return
	}

	issues := make([]string, 0, len(validation.Errors()))
	for _, desc := range validation.Errors() {
		issues = append(issues, desc.String())
	}

	log.Warn("Model output deviates from requested shape", map[string]interface{}{
		"issues": strings.Join(issues, "; "),
	})
}
