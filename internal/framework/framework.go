package framework

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"casegraph/internal/config"
	"casegraph/internal/flows"
	"casegraph/internal/logger"
	"casegraph/internal/metrics"
	"casegraph/internal/model"
	"casegraph/internal/relations"
	"casegraph/internal/roles"
	"casegraph/internal/significance"
	"casegraph/internal/store"
)

// Analyzer runs every enrichment step over a case and assembles the report.
type Analyzer struct {
	rules    *config.Rules
	opts     config.AnalysisConfig
	roles    *roles.Classifier
	scorer   *significance.Scorer
	relation *relations.Inferencer
	flows    *flows.Evaluator
}

func New(rules *config.Rules, opts config.AnalysisConfig) *Analyzer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Analyzer{
		rules:    rules,
		opts:     opts,
		roles:    roles.New(rules),
		scorer:   significance.New(rules),
		relation: relations.New(rules),
		flows:    flows.New(rules),
	}
}

// RulesRevision identifies the rule table the analyzer scores with.
func (a *Analyzer) RulesRevision() string {
	return fmt.Sprintf("v%d/%s", a.rules.Version, a.rules.Revision)
}

type eventResult struct {
	sig      significance.Significance
	causal   []string
	temporal []string
}

type entityResult struct {
	criminal   map[string]float64
	commercial map[string]float64
	timeline   map[string]float64
	highlights roles.Highlights
}

// Analyze enriches every record in st and returns the case report. Scoring
// fans out across events and entities; results are written back to st
// only from the calling goroutine. Running it again over the same records
// yields the same store contents and report.
func (a *Analyzer) Analyze(ctx context.Context, st *store.Store) (*Report, error) {
	events := st.Events()
	entities := st.Entities()

	start := time.Now()
	eventResults, err := fanOut(ctx, a.opts.Concurrency, events, func(e *model.Event) eventResult {
		return eventResult{
			sig:      a.scorer.Categorize(e),
			causal:   a.relation.InferCausal(e, events),
			temporal: a.relation.InferTemporalDependencies(e, events),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scoring events: %w", err)
	}
	for i, e := range events {
		r := eventResults[i]
		if err := st.SetSignificance(e.ID, r.sig.Criminal, r.sig.Commercial, r.sig.Categories); err != nil {
			return nil, fmt.Errorf("applying significance: %w", err)
		}
		if err := st.SetEventEdges(e.ID, r.causal, r.temporal); err != nil {
			return nil, fmt.Errorf("applying event edges: %w", err)
		}
	}
	metrics.ObserveStage("events", start)
	logger.Debug("events scored", "count", len(events))

	start = time.Now()
	entityResults, err := fanOut(ctx, a.opts.Concurrency, entities, func(e *model.Entity) entityResult {
		return entityResult{
			criminal:   a.roles.ScoreCriminal(e, events),
			commercial: a.roles.ScoreCommercial(e, events),
			timeline:   a.scorer.Timeline(e, events),
			highlights: a.roles.ExtractHighlights(e, events),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scoring entities: %w", err)
	}
	highlights := roles.NewHighlights()
	for i, e := range entities {
		r := entityResults[i]
		if err := st.SetRoleScores(e.ID, model.CriminalPrefix, r.criminal); err != nil {
			return nil, fmt.Errorf("applying criminal roles: %w", err)
		}
		if err := st.SetRoleScores(e.ID, model.CommercialPrefix, r.commercial); err != nil {
			return nil, fmt.Errorf("applying commercial roles: %w", err)
		}
		if err := st.SetTimelineSignificance(e.ID, r.timeline); err != nil {
			return nil, fmt.Errorf("applying timeline significance: %w", err)
		}
		highlights.Merge(r.highlights)
	}
	metrics.ObserveStage("entities", start)
	logger.Debug("entities scored", "count", len(entities))

	// Flow assessment reads endpoint role indicators, so it runs after them.
	start = time.Now()
	for _, f := range st.Flows() {
		src, _ := st.Entity(f.Source)
		dst, _ := st.Entity(f.Target)
		if err := st.SetFlowAssessment(f.ID, a.flows.Evaluate(f, src, dst)); err != nil {
			return nil, fmt.Errorf("applying flow assessment: %w", err)
		}
	}
	metrics.ObserveStage("flows", start)

	start = time.Now()
	report := a.assemble(st, entityResults, highlights)
	metrics.ObserveStage("report", start)
	metrics.RecordReport(report.RiskAssessment.Overall)
	logger.Info("case analyzed",
		"entities", len(entities),
		"events", len(events),
		"risk", report.RiskAssessment.Overall,
	)
	return report, nil
}

// fanOut applies fn to every item with at most limit calls in flight. Each
// result lands in the slot of its input.
func fanOut[T, R any](ctx context.Context, limit int, items []T, fn func(T) R) ([]R, error) {
	out := make([]R, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = fn(item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Analyzer) assemble(st *store.Store, results []entityResult, highlights roles.Highlights) *Report {
	events := st.Events()
	entities := st.Entities()

	report := &Report{
		AgentRoles:      make(map[string]AgentRoles, len(entities)),
		EventAnalysis:   make(map[string]EventAnalysis, len(events)),
		LegalHighlights: highlights,
		CausalChains:    []CausalChain{},
		ResourceFlows:   make(map[string][]*model.Flow),
	}
	for i, e := range entities {
		report.AgentRoles[e.ID] = AgentRoles{
			Name:       e.Name,
			Kind:       e.Kind,
			Criminal:   results[i].criminal,
			Commercial: results[i].commercial,
		}
	}

	byID := make(map[string]*model.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	for _, e := range events {
		report.EventAnalysis[e.ID] = EventAnalysis{
			Date:                   e.Date,
			CriminalSignificance:   e.CriminalSignificance,
			CommercialSignificance: e.CommercialSignificance,
			LegalCategories:        e.LegalCategories,
			CausalRelations:        e.CausalRelations,
			TemporalDependencies:   e.TemporalDependencies,
		}
		if len(e.CausalRelations) > 0 {
			report.CausalChains = append(report.CausalChains, CausalChain{
				EventID:     e.ID,
				Date:        e.Date,
				Description: e.Description,
				Causes:      e.CausalRelations,
				Reach:       relations.TraceChain(e.ID, byID),
			})
		}
	}

	for _, f := range st.Flows() {
		category := flows.CategoryGeneral
		if f.Assessment != nil {
			category = f.Assessment.Category
		}
		report.ResourceFlows[category] = append(report.ResourceFlows[category], f.Clone())
	}

	report.TimelineAnalysis = a.timeline(events)
	report.RiskAssessment = a.assessRisk(st)
	return report
}
