package internal

import "fmt"

// EstimateCost returns the USD cost of usage at the given model rates.
// Full precision is kept; rounding happens only in FormatCost.
func EstimateCost(usage UsageCounters, pricing ModelPricing) float64 {
	return (float64(usage.TotalPromptTokens)/1000)*pricing.PromptRatePer1K +
		(float64(usage.TotalCompletionTokens)/1000)*pricing.CompletionRatePer1K
}

// FormatCost renders a cost for display with 4 decimal places
func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.4f", cost)
}
