package stats

import (
	"sort"
	"strings"
)

// ModelPricing is per-million-token list pricing for one model family.
type ModelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// outputToInputRatio is the assumed output volume when the cache only
// records input tokens. Cost figures derived from it are estimates.
const outputToInputRatio = 3.0

var pricingTable = []struct {
	pattern string
	price   ModelPricing
}{
	{"claude-sonnet-4-5", ModelPricing{InputPerMillion: 3.0, OutputPerMillion: 15.0}},
	{"claude-opus-4-5", ModelPricing{InputPerMillion: 15.0, OutputPerMillion: 75.0}},
	{"claude-haiku-4-5", ModelPricing{InputPerMillion: 0.80, OutputPerMillion: 4.0}},
	{"claude-haiku-3-5", ModelPricing{InputPerMillion: 0.25, OutputPerMillion: 1.25}},
}

// PricingFor returns the pricing for a model id, matching by substring so
// dated ids like claude-sonnet-4-5-20250929 resolve to their family.
// Unknown models get sonnet-tier pricing as a middle-of-the-road guess.
func PricingFor(model string) ModelPricing {
	for _, entry := range pricingTable {
		if strings.Contains(model, entry.pattern) {
			return entry.price
		}
	}
	return ModelPricing{InputPerMillion: 3.0, OutputPerMillion: 15.0}
}

// ModelCost is the estimated spend for one model.
type ModelCost struct {
	Model       string
	InputTokens uint64
	InputCost   float64
	OutputCost  float64
	TotalCost   float64
}

// EstimateCosts converts per-model input token counts into estimated costs,
// assuming outputToInputRatio output tokens per input token. Results are
// sorted by total cost, highest first.
func EstimateCosts(tokensByModel map[string]uint64) []ModelCost {
	costs := make([]ModelCost, 0, len(tokensByModel))
	for model, inputTokens := range tokensByModel {
		price := PricingFor(model)
		inputCost := float64(inputTokens) / 1_000_000 * price.InputPerMillion
		outputTokens := float64(inputTokens) * outputToInputRatio
		outputCost := outputTokens / 1_000_000 * price.OutputPerMillion
		costs = append(costs, ModelCost{
			Model:       model,
			InputTokens: inputTokens,
			InputCost:   inputCost,
			OutputCost:  outputCost,
			TotalCost:   inputCost + outputCost,
		})
	}
	sort.Slice(costs, func(i, j int) bool { return costs[i].TotalCost > costs[j].TotalCost })
	return costs
}

// TotalEstimated sums the total cost across models.
func TotalEstimated(costs []ModelCost) float64 {
	var sum float64
	for _, c := range costs {
		sum += c.TotalCost
	}
	return sum
}
