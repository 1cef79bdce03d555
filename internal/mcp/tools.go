package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"casegraph/internal/behavior"
	"casegraph/internal/framework"
	"casegraph/internal/metrics"
	"casegraph/internal/model"
	"casegraph/internal/relations"
)

type AnalyzeCaseInput struct {
	Archive bool `json:"archive,omitempty" jsonschema:"store the report in the archive"`
}

type GetEntityRolesInput struct {
	ID string `json:"id" jsonschema:"entity identifier"`
}

type GetEventRelationsInput struct {
	ID string `json:"id" jsonschema:"event identifier"`
}

type ListEntitiesInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"entity kind filter"`
}

type MotiveMeansOpportunityInput struct {
	Entity string `json:"entity" jsonschema:"entity identifier"`
	Event  string `json:"event" jsonschema:"event identifier"`
}

type SignalInput struct {
	Kind   string `json:"kind" jsonschema:"signal kind such as challenged or evidence_presented"`
	Detail string `json:"detail,omitempty" jsonschema:"free text qualifying the signal"`
}

type LatestReportInput struct{}

type DecideInput struct {
	Entity  string        `json:"entity" jsonschema:"entity identifier"`
	Event   string        `json:"event,omitempty" jsonschema:"event the decision responds to"`
	Signals []SignalInput `json:"signals" jsonschema:"observed conditions"`
}

type AnalyzeCaseOutput struct {
	CaseID    string         `json:"case_id"`
	ArchiveID string         `json:"archive_id,omitempty"`
	Report    map[string]any `json:"report"`
}

type EntityRolesOutput struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Kind                 string             `json:"kind"`
	Criminal             map[string]float64 `json:"criminal_roles"`
	Commercial           map[string]float64 `json:"commercial_roles"`
	TimelineSignificance map[string]float64 `json:"timeline_significance"`
}

type EventRelationsOutput struct {
	ID                     string   `json:"id"`
	Date                   string   `json:"date"`
	Description            string   `json:"description"`
	CriminalSignificance   float64  `json:"criminal_significance"`
	CommercialSignificance float64  `json:"commercial_significance"`
	LegalCategories        []string `json:"legal_categories"`
	CausalRelations        []string `json:"causal_relations"`
	TemporalDependencies   []string `json:"temporal_dependencies"`
	Reach                  []string `json:"reach"`
}

type EntitySummaryOutput struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Status     string   `json:"status"`
	HasProfile bool     `json:"has_profile"`
	Ethics     *float64 `json:"ethical_compliance,omitempty"`
}

type ListEntitiesOutput struct {
	Entities []EntitySummaryOutput `json:"entities"`
}

type ArchivedReportOutput struct {
	ID            string         `json:"id"`
	CaseID        string         `json:"case_id"`
	RulesRevision string         `json:"rules_revision"`
	Overall       string         `json:"overall_risk_level"`
	CreatedAt     string         `json:"created_at"`
	Report        map[string]any `json:"report"`
}

type DecisionOutput struct {
	Decision  string   `json:"decision"`
	Reasoning []string `json:"reasoning"`
	EventID   string   `json:"event_id,omitempty"`
	Timestamp string   `json:"timestamp"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "analyze_case",
		Description: "Run the full analysis over the loaded case and return the report",
	}, s.handleAnalyzeCase)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_entities",
		Description: "List the entities of the case with optional kind filter",
	}, s.handleListEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_entity_roles",
		Description: "Return the criminal and commercial role indicators of an entity",
	}, s.handleGetEntityRoles)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_event_relations",
		Description: "Return the significance and causal relations of an event",
	}, s.handleGetEventRelations)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "motive_means_opportunity",
		Description: "Assess motive, means and opportunity of an entity for an event",
	}, s.handleMotiveMeansOpportunity)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "decide",
		Description: "Ask an entity's behavioral profile how it would respond to a situation",
	}, s.handleDecide)

	if s.opts.Archive != nil {
		sdk.AddTool(s.mcp, &sdk.Tool{
			Name:        "latest_report",
			Description: "Return the most recently archived report for the case",
		}, s.handleLatestReport)
	}
}

func (s *Server) handleAnalyzeCase(ctx context.Context, req *sdk.CallToolRequest, input AnalyzeCaseInput) (out *sdk.CallToolResult, output AnalyzeCaseOutput, err error) {
	defer func() { metrics.RecordToolCall("analyze_case", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.ensureAnalyzed(ctx)
	if err != nil {
		return nil, AnalyzeCaseOutput{}, err
	}
	output = AnalyzeCaseOutput{CaseID: s.opts.CaseID}
	if input.Archive {
		if s.opts.Archive == nil {
			return nil, AnalyzeCaseOutput{}, fmt.Errorf("no report archive configured")
		}
		archived, err := s.opts.Archive.SaveReport(ctx, s.opts.CaseID, s.analyzer.RulesRevision(), report)
		if err != nil {
			return nil, AnalyzeCaseOutput{}, err
		}
		output.ArchiveID = archived.ID.String()
	}
	if output.Report, err = asMap(report); err != nil {
		return nil, AnalyzeCaseOutput{}, err
	}
	return nil, output, nil
}

func (s *Server) handleListEntities(ctx context.Context, req *sdk.CallToolRequest, input ListEntitiesInput) (out *sdk.CallToolResult, output ListEntitiesOutput, err error) {
	defer func() { metrics.RecordToolCall("list_entities", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := strings.TrimSpace(input.Kind)
	output.Entities = make([]EntitySummaryOutput, 0)
	for _, e := range s.store.Entities() {
		if kind != "" && !strings.EqualFold(string(e.Kind), kind) {
			continue
		}
		summary := EntitySummaryOutput{ID: e.ID, Name: e.Name, Kind: string(e.Kind), Status: string(e.Status)}
		if traits, ok := e.Traits(); ok {
			summary.HasProfile = true
			ethics := traits.EthicalCompliance
			summary.Ethics = &ethics
		}
		output.Entities = append(output.Entities, summary)
	}
	return nil, output, nil
}

func (s *Server) handleGetEntityRoles(ctx context.Context, req *sdk.CallToolRequest, input GetEntityRolesInput) (out *sdk.CallToolResult, output EntityRolesOutput, err error) {
	defer func() { metrics.RecordToolCall("get_entity_roles", err) }()
	if input.ID == "" {
		return nil, EntityRolesOutput{}, fmt.Errorf("id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.analyzed {
		if _, err := s.ensureAnalyzed(ctx); err != nil {
			return nil, EntityRolesOutput{}, err
		}
	}
	entity, ok := s.store.Entity(input.ID)
	if !ok {
		return nil, EntityRolesOutput{}, fmt.Errorf("%s: %w", input.ID, framework.ErrEntityNotFound)
	}
	return nil, EntityRolesOutput{
		ID:                   entity.ID,
		Name:                 entity.Name,
		Kind:                 string(entity.Kind),
		Criminal:             indicators(entity.RoleIndicators, model.CriminalPrefix),
		Commercial:           indicators(entity.RoleIndicators, model.CommercialPrefix),
		TimelineSignificance: maps.Clone(entity.TimelineSignificance),
	}, nil
}

func (s *Server) handleGetEventRelations(ctx context.Context, req *sdk.CallToolRequest, input GetEventRelationsInput) (out *sdk.CallToolResult, output EventRelationsOutput, err error) {
	defer func() { metrics.RecordToolCall("get_event_relations", err) }()
	if input.ID == "" {
		return nil, EventRelationsOutput{}, fmt.Errorf("id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.analyzed {
		if _, err := s.ensureAnalyzed(ctx); err != nil {
			return nil, EventRelationsOutput{}, err
		}
	}
	event, ok := s.store.Event(input.ID)
	if !ok {
		return nil, EventRelationsOutput{}, fmt.Errorf("%s: %w", input.ID, framework.ErrEventNotFound)
	}

	byID := make(map[string]*model.Event)
	for _, e := range s.store.Events() {
		byID[e.ID] = e
	}
	return nil, EventRelationsOutput{
		ID:                     event.ID,
		Date:                   event.Date.Format(time.DateOnly),
		Description:            event.Description,
		CriminalSignificance:   event.CriminalSignificance,
		CommercialSignificance: event.CommercialSignificance,
		LegalCategories:        orEmpty(event.LegalCategories),
		CausalRelations:        orEmpty(event.CausalRelations),
		TemporalDependencies:   orEmpty(event.TemporalDependencies),
		Reach:                  orEmpty(relations.TraceChain(event.ID, byID)),
	}, nil
}

func (s *Server) handleMotiveMeansOpportunity(ctx context.Context, req *sdk.CallToolRequest, input MotiveMeansOpportunityInput) (out *sdk.CallToolResult, output framework.MMO, err error) {
	defer func() { metrics.RecordToolCall("motive_means_opportunity", err) }()
	if input.Entity == "" || input.Event == "" {
		return nil, framework.MMO{}, fmt.Errorf("entity and event are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.analyzed {
		if _, err := s.ensureAnalyzed(ctx); err != nil {
			return nil, framework.MMO{}, err
		}
	}
	result, err := s.analyzer.MotiveMeansOpportunity(s.store, input.Entity, input.Event)
	if err != nil {
		return nil, framework.MMO{}, err
	}
	return nil, *result, nil
}

func (s *Server) handleDecide(ctx context.Context, req *sdk.CallToolRequest, input DecideInput) (out *sdk.CallToolResult, output DecisionOutput, err error) {
	defer func() { metrics.RecordToolCall("decide", err) }()
	if input.Entity == "" {
		return nil, DecisionOutput{}, fmt.Errorf("entity is required")
	}

	signals := make([]behavior.Signal, 0, len(input.Signals))
	for _, in := range input.Signals {
		kind, err := behavior.ParseSignalKind(in.Kind)
		if err != nil {
			return nil, DecisionOutput{}, err
		}
		signals = append(signals, behavior.Signal{Kind: kind, Detail: in.Detail})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	decision, err := framework.Decide(s.store, input.Entity, behavior.NewContext(input.Event, signals...), s.opts.Now())
	if err != nil {
		return nil, DecisionOutput{}, err
	}
	return nil, DecisionOutput{
		Decision:  decision.Action,
		Reasoning: decision.Reasoning,
		EventID:   decision.EventID,
		Timestamp: decision.At.Format(time.RFC3339),
	}, nil
}

func (s *Server) handleLatestReport(ctx context.Context, req *sdk.CallToolRequest, input LatestReportInput) (out *sdk.CallToolResult, output ArchivedReportOutput, err error) {
	defer func() { metrics.RecordToolCall("latest_report", err) }()
	if s.opts.Archive == nil {
		return nil, ArchivedReportOutput{}, fmt.Errorf("no report archive configured")
	}
	archived, err := s.opts.Archive.LatestReport(ctx, s.opts.CaseID)
	if err != nil {
		return nil, ArchivedReportOutput{}, err
	}
	report, err := asMap(archived.Report)
	if err != nil {
		return nil, ArchivedReportOutput{}, err
	}
	return nil, ArchivedReportOutput{
		ID:            archived.ID.String(),
		CaseID:        archived.CaseID,
		RulesRevision: archived.RulesRevision,
		Overall:       archived.Overall,
		CreatedAt:     archived.CreatedAt.Format(time.RFC3339),
		Report:        report,
	}, nil
}

// indicators strips prefix from the matching keys of scores.
func indicators(scores map[string]float64, prefix string) map[string]float64 {
	out := make(map[string]float64)
	for key, value := range scores {
		if role, ok := strings.CutPrefix(key, prefix); ok {
			out[role] = value
		}
	}
	return out
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return slices.Clone(items)
}

func asMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return out, nil
}
