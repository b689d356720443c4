package provider

import "strings"

// Price is the cost in USD per 1K input and output tokens.
type Price struct {
	Input  float64
	Output float64
}

// defaultRate is charged per 1K tokens for models missing from prices.
const defaultRate = 0.002

// inputShare is the assumed share of input tokens when only a total is known.
const inputShare = 0.7

var prices = map[string]Price{
	"gpt-4":             {0.03, 0.06},
	"gpt-4-turbo":       {0.01, 0.03},
	"gpt-4o":            {0.0025, 0.01},
	"gpt-4o-mini":       {0.00015, 0.0006},
	"gpt-3.5-turbo":     {0.0005, 0.0015},
	"claude-3-opus":     {0.015, 0.075},
	"claude-3-sonnet":   {0.003, 0.015},
	"claude-3-haiku":    {0.00025, 0.00125},
	"claude-3-5-sonnet": {0.003, 0.015},
	"claude-3-5-haiku":  {0.0008, 0.004},
	"gemini-pro":        {0.00025, 0.0005},
	"gemini-ultra":      {0.001, 0.002},
	"gemini-1.5-flash":  {0.000075, 0.0003},
	"gemini-1.5-pro":    {0.00125, 0.005},
}

// LookupPrice returns the price of the longest model family contained in model.
func LookupPrice(model string) (Price, bool) {
	lower := strings.ToLower(model)
	best := ""
	for family := range prices {
		if strings.Contains(lower, family) && len(family) > len(best) {
			best = family
		}
	}
	if best == "" {
		return Price{}, false
	}
	return prices[best], true
}

// Cost returns the price of a request with known input and output tokens.
func Cost(model string, input, output int) float64 {
	if isFree(model) {
		return 0
	}
	p, ok := LookupPrice(model)
	if !ok {
		return float64(input+output) * defaultRate / 1000
	}
	return float64(input)*p.Input/1000 + float64(output)*p.Output/1000
}

// CostFromTotal prices a request when only the total token count is known,
// assuming 70% input and 30% output.
func CostFromTotal(model string, total int) float64 {
	if isFree(model) {
		return 0
	}
	if _, ok := LookupPrice(model); !ok {
		return float64(total) * defaultRate / 1000
	}
	input := int(float64(total) * inputShare)
	output := int(float64(total) * (1 - inputShare))
	return Cost(model, input, output)
}

// isFree reports OpenRouter's zero-cost model variants such as "...:free".
func isFree(model string) bool {
	return strings.Contains(strings.ToLower(model), "free")
}
