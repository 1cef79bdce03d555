package framework

import (
	"fmt"

	"casegraph/internal/flows"
	"casegraph/internal/model"
	"casegraph/internal/store"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

var severityRank = map[string]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

const (
	// indicators at or above this count as a role attribution risk
	roleRiskIndicator = 0.5
	strongIndicator   = 0.7
	// legitimacy at or below this flags a flow
	lowLegitimacy   = 0.3
	traitConcerning = 0.7
)

// assessRisk expects every enrichment to have been applied to st.
func (a *Analyzer) assessRisk(st *store.Store) RiskAssessment {
	out := RiskAssessment{
		Criminal:   []Risk{},
		Commercial: []Risk{},
		Procedural: []Risk{},
		Behavioral: []Risk{},
	}
	entities := st.Entities()
	events := st.Events()

	for _, e := range events {
		if e.CriminalSignificance > a.rules.Significance.Threshold {
			out.Criminal = append(out.Criminal, Risk{
				Description: fmt.Sprintf("Event %s carries criminal significance %.2f", e.ID, e.CriminalSignificance),
				Severity:    a.graded(e.CriminalSignificance),
			})
		}
		if e.CommercialSignificance > a.rules.Significance.Threshold {
			out.Commercial = append(out.Commercial, Risk{
				Description: fmt.Sprintf("Event %s carries commercial significance %.2f", e.ID, e.CommercialSignificance),
				Severity:    a.graded(e.CommercialSignificance),
			})
		}
		if e.Status == model.StatusSpeculative || e.Status == model.StatusMissing {
			severity := SeverityLow
			if max(e.CriminalSignificance, e.CommercialSignificance) >= a.opts.SignificantThreshold {
				severity = SeverityMedium
			}
			out.Procedural = append(out.Procedural, Risk{
				Description: fmt.Sprintf("Event %s rests on %s information", e.ID, e.Status),
				Severity:    severity,
			})
		}
	}

	for _, e := range entities {
		if score := e.Indicator(model.CriminalPrefix + model.RolePerpetrator); score >= roleRiskIndicator {
			out.Criminal = append(out.Criminal, Risk{
				Description: fmt.Sprintf("%s indicated as perpetrator (%.2f)", e.Name, score),
				Severity:    indicatorSeverity(score),
			})
		}
		if score := e.Indicator(model.CommercialPrefix + model.RoleFraudster); score >= roleRiskIndicator {
			out.Commercial = append(out.Commercial, Risk{
				Description: fmt.Sprintf("%s indicated as fraudster (%.2f)", e.Name, score),
				Severity:    indicatorSeverity(score),
			})
		}
		traits, ok := e.Traits()
		if !ok || traits.EthicalCompliance >= a.opts.LowEthicsThreshold {
			continue
		}
		severity := SeverityMedium
		if traits.LegalAggression > traitConcerning || traits.ControlSeeking > traitConcerning {
			severity = SeverityHigh
		}
		out.Behavioral = append(out.Behavioral, Risk{
			Description: fmt.Sprintf("%s shows low ethical compliance (%.2f)", e.Name, traits.EthicalCompliance),
			Severity:    severity,
		})
	}

	for _, f := range st.Flows() {
		if f.Assessment == nil || f.Assessment.Legitimacy > lowLegitimacy {
			continue
		}
		severity := SeverityMedium
		if f.Assessment.Impact == flows.ImpactHigh {
			severity = SeverityHigh
		}
		out.Commercial = append(out.Commercial, Risk{
			Description: fmt.Sprintf("Flow %s from %s to %s has low legitimacy (%.2f)", f.ID, f.Source, f.Target, f.Assessment.Legitimacy),
			Severity:    severity,
		})
	}

	out.Overall = a.overall(out, entities, events)
	return out
}

func (a *Analyzer) graded(significance float64) string {
	if significance >= a.opts.CriticalThreshold {
		return SeverityHigh
	}
	return SeverityMedium
}

func indicatorSeverity(score float64) string {
	if score >= strongIndicator {
		return SeverityHigh
	}
	return SeverityMedium
}

// overall is critical when a criminally significant event involves an
// entity of low ethical compliance, otherwise the highest severity found.
func (a *Analyzer) overall(ra RiskAssessment, entities []*model.Entity, events []*model.Event) string {
	for _, ev := range events {
		if ev.CriminalSignificance < a.opts.CriticalThreshold {
			continue
		}
		for _, en := range entities {
			traits, ok := en.Traits()
			if ok && traits.EthicalCompliance < a.opts.LowEthicsThreshold && ev.Involves(en) {
				return SeverityCritical
			}
		}
	}

	level := SeverityLow
	for _, list := range [][]Risk{ra.Criminal, ra.Commercial, ra.Procedural, ra.Behavioral} {
		for _, r := range list {
			if severityRank[r.Severity] > severityRank[level] {
				level = r.Severity
			}
		}
	}
	return level
}
