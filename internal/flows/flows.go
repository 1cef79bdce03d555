package flows

import (
	"strings"

	"casegraph/internal/behavior"
	"casegraph/internal/config"
	"casegraph/internal/model"
)

const (
	CategoryGeneral = "general"

	ImpactHigh     = "high"
	ImpactModerate = "moderate"
	ImpactLow      = "low"
)

// Fixed dimension weights for non-financial consequences of a flow.
const (
	operationalWeight = 0.6
	strategicWeight   = 0.7
)

var operationalCategories = []string{"material", "information", "legal_power"}

// Evaluator assesses resource flows. Every method is a pure function of the
// flow and its endpoint entities.
type Evaluator struct {
	rules *config.Rules
}

func New(rules *config.Rules) *Evaluator {
	return &Evaluator{rules: rules}
}

// Categorize picks the first category whose keywords appear in the
// description, falling back to the category mapped from the flow kind.
func (e *Evaluator) Categorize(flow *model.Flow) string {
	desc := strings.ToLower(flow.Description)
	for _, group := range e.rules.Flows.Categories {
		if config.ContainsAny(desc, group.Keywords) {
			return group.Name
		}
	}
	if category, ok := e.rules.Flows.KindCategories[string(flow.Kind)]; ok {
		return category
	}
	return CategoryGeneral
}

// Legitimacy scores a flow from 0 (illegitimate) to 1 (fully legitimate).
// The first matching tier sets the base. Concealment wording, a large
// concealed payment and a source flagged as a likely fraudster lower it.
func (e *Evaluator) Legitimacy(flow *model.Flow, src, dst *model.Entity) float64 {
	lr := e.rules.Flows.Legitimacy
	desc := strings.ToLower(flow.Description)

	score := tierScore(desc, lr.Tiers, lr.Default)
	concealed := config.CountMatches(desc, lr.Concealment)
	score -= float64(concealed) * lr.ConcealmentPenalty
	if concealed > 0 && e.isLarge(flow) {
		score -= lr.LargeFlowPenalty
	}
	if src.Indicator(model.CommercialPrefix+model.RoleFraudster) >= e.rules.Flows.SuspectIndicator {
		score -= lr.SuspectEndpointPenalty
	}
	return behavior.Clamp(score)
}

// LegalSignificance scores how much a flow matters to the legal case.
func (e *Evaluator) LegalSignificance(flow *model.Flow, src, dst *model.Entity) float64 {
	fs := e.rules.Flows.Significance
	desc := strings.ToLower(flow.Description)

	score := tierScore(desc, fs.Tiers, fs.Default)
	if e.isLarge(flow) {
		score += fs.LargeFlowBonus
	}
	if e.suspect(src) || e.suspect(dst) {
		score += fs.SuspectEndpointBonus
	}
	return behavior.Clamp(score)
}

// Impact labels a flow high, moderate or low from the larger of its
// magnitude score and its legal significance.
func (e *Evaluator) Impact(flow *model.Flow, legalSignificance float64) string {
	ir := e.rules.Flows.Impact
	level := max(e.magnitudeScore(flow), legalSignificance)
	switch {
	case level >= ir.High:
		return ImpactHigh
	case level >= ir.Moderate:
		return ImpactModerate
	default:
		return ImpactLow
	}
}

// Dimensions spreads a flow's impact over the five assessment dimensions.
func (e *Evaluator) Dimensions(flow *model.Flow, category string, legitimacy, legalSignificance float64) model.ImpactDimensions {
	var d model.ImpactDimensions
	if flow.Kind == model.FlowFinancial {
		d.Financial = e.magnitudeScore(flow)
	}
	d.Legal = legalSignificance
	for _, c := range operationalCategories {
		if c == category {
			d.Operational = operationalWeight
		}
	}
	d.Reputational = behavior.Clamp(1 - legitimacy)
	if flow.Kind == model.FlowInfluence {
		d.Strategic = strategicWeight
	}
	return d
}

// Evaluate runs every assessment and bundles the results.
func (e *Evaluator) Evaluate(flow *model.Flow, src, dst *model.Entity) model.FlowAssessment {
	category := e.Categorize(flow)
	legitimacy := e.Legitimacy(flow, src, dst)
	significance := e.LegalSignificance(flow, src, dst)
	return model.FlowAssessment{
		Category:          category,
		Legitimacy:        legitimacy,
		LegalSignificance: significance,
		Impact:            e.Impact(flow, significance),
		Dimensions:        e.Dimensions(flow, category, legitimacy, significance),
	}
}

func (e *Evaluator) isLarge(flow *model.Flow) bool {
	return flow.Kind == model.FlowFinancial && flow.Magnitude >= e.rules.Flows.LargeMagnitude
}

// magnitudeScore normalises money against the large-flow threshold. Other
// kinds carry a relative intensity that is used as is.
func (e *Evaluator) magnitudeScore(flow *model.Flow) float64 {
	if flow.Kind == model.FlowFinancial {
		return behavior.Clamp(flow.Magnitude / e.rules.Flows.LargeMagnitude)
	}
	return behavior.Clamp(flow.Magnitude)
}

func (e *Evaluator) suspect(entity *model.Entity) bool {
	threshold := e.rules.Flows.SuspectIndicator
	return entity.Indicator(model.CriminalPrefix+model.RolePerpetrator) >= threshold ||
		entity.Indicator(model.CommercialPrefix+model.RoleFraudster) >= threshold
}

func tierScore(desc string, tiers []config.ScoreTier, fallback float64) float64 {
	for _, tier := range tiers {
		if config.ContainsAny(desc, tier.Keywords) {
			return tier.Score
		}
	}
	return fallback
}
