// Package scoring computes the qualification tier of a lead from its attributes.
// The engine is pure: it performs no I/O and always returns a result.
package scoring

import (
	"encoding/json"
	"strconv"

	"nuvra_crm_backend/internal/leads/domain"
)

// Tier thresholds. Lower bounds are inclusive.
const (
	HotThreshold  = 70
	WarmThreshold = 40
)

// Result is the outcome of scoring one lead.
type Result struct {
	Qualification string   `json:"qualification"`
	Score         int      `json:"score"`
	Reasons       []string `json:"reasons"`
}

type originBonus struct {
	points int
	reason string
}

var originBonuses = map[string]originBonus{
	domain.OriginReferral: {30, "Referred lead (+30)"},
	domain.OriginWebsite:  {20, "Website lead (+20)"},
	domain.OriginSocial:   {15, "Social media lead (+15)"},
	domain.OriginAPI:      {10, "API lead (+10)"},
}

// tier is one step of a highest-tier-wins ladder. Tiers are ordered from highest min down.
type tier struct {
	min    float64
	points int
	format func(n string) string
}

var usageTiers = []tier{
	{10, 30, func(n string) string { return "High usage: " + n + " uses (+30)" }},
	{5, 20, func(n string) string { return "Medium usage: " + n + " uses (+20)" }},
	{1, 10, func(n string) string { return "Low usage: " + n + " uses (+10)" }},
}

var budgetTiers = []tier{
	{10000, 25, func(n string) string { return "Large budget: $" + n + " (+25)" }},
	{5000, 15, func(n string) string { return "Medium budget: $" + n + " (+15)" }},
	{1000, 5, func(n string) string { return "Small budget: $" + n + " (+5)" }},
}

// Score evaluates the additive point rules in fixed order and maps the total to a tier.
func Score(lead domain.Draft) Result {
	score := 0
	reasons := make([]string, 0, 6)

	add := func(points int, reason string) {
		score += points
		reasons = append(reasons, reason)
	}

	if bonus, ok := originBonuses[lead.Origin]; ok {
		add(bonus.points, bonus.reason)
	}

	if n, ok := number(lead.Metadata["usos"]); ok {
		if t, hit := pickTier(usageTiers, n); hit {
			add(t.points, t.format(formatNumber(n)))
		}
	}

	if n, ok := number(lead.Metadata["budget"]); ok {
		if t, hit := pickTier(budgetTiers, n); hit {
			add(t.points, t.format(formatNumber(n)))
		}
	}

	if urgency, _ := lead.Metadata["urgency"].(string); urgency == "high" {
		add(15, "High urgency (+15)")
	}

	if lead.Company != "" {
		add(10, "Has company info (+10)")
	}
	if lead.Phone != "" {
		add(5, "Has phone number (+5)")
	}

	return Result{
		Qualification: Tier(score),
		Score:         score,
		Reasons:       reasons,
	}
}

// Tier maps a score to its qualification.
func Tier(score int) string {
	switch {
	case score >= HotThreshold:
		return domain.QualificationHot
	case score >= WarmThreshold:
		return domain.QualificationWarm
	default:
		return domain.QualificationCold
	}
}

// AsMetadata renders the result the way it is folded into lead metadata.
func (r Result) AsMetadata() map[string]any {
	return map[string]any{
		"score":   r.Score,
		"reasons": r.Reasons,
	}
}

func pickTier(tiers []tier, n float64) (tier, bool) {
	for _, t := range tiers {
		if n >= t.min {
			return t, true
		}
	}
	return tier{}, false
}

// number accepts JSON numbers only. Numeric strings do not count.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
