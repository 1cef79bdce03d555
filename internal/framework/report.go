package framework

import (
	"time"

	"casegraph/internal/model"
	"casegraph/internal/roles"
)

// Report is the comprehensive analysis of one case. Its JSON form is the
// contract with downstream reporting tools.
type Report struct {
	AgentRoles       map[string]AgentRoles    `json:"agent_roles"`
	EventAnalysis    map[string]EventAnalysis `json:"event_analysis"`
	LegalHighlights  roles.Highlights         `json:"legal_highlights"`
	CausalChains     []CausalChain            `json:"causal_chains"`
	TimelineAnalysis TimelineAnalysis         `json:"timeline_analysis"`
	ResourceFlows    map[string][]*model.Flow `json:"resource_flows"`
	RiskAssessment   RiskAssessment           `json:"risk_assessment"`
}

type AgentRoles struct {
	Name       string             `json:"name"`
	Kind       model.EntityKind   `json:"kind"`
	Criminal   map[string]float64 `json:"criminal_roles"`
	Commercial map[string]float64 `json:"commercial_roles"`
}

type EventAnalysis struct {
	Date                   time.Time `json:"date"`
	CriminalSignificance   float64   `json:"criminal_significance"`
	CommercialSignificance float64   `json:"commercial_significance"`
	LegalCategories        []string  `json:"legal_categories"`
	CausalRelations        []string  `json:"causal_relations"`
	TemporalDependencies   []string  `json:"temporal_dependencies"`
}

// CausalChain lists the direct consequences of one event and everything
// reachable from it through further causal edges.
type CausalChain struct {
	EventID     string    `json:"event_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Causes      []string  `json:"causes"`
	Reach       []string  `json:"reach"`
}

// TimelineAnalysis summarises the case chronology. SignificantEvents counts
// events whose higher significance score reaches the configured threshold,
// the threshold itself included.
type TimelineAnalysis struct {
	Earliest          *time.Time `json:"earliest"`
	Latest            *time.Time `json:"latest"`
	SpanDays          int        `json:"span_days"`
	TotalEvents       int        `json:"total_events"`
	SignificantEvents int        `json:"significant_events"`
	Clusters          []Cluster  `json:"clusters"`
}

// Cluster is a run of events each no more than the cluster window apart
// from its predecessor.
type Cluster struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Events []string  `json:"events"`
}

type Risk struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type RiskAssessment struct {
	Criminal   []Risk `json:"criminal_risks"`
	Commercial []Risk `json:"commercial_risks"`
	Procedural []Risk `json:"procedural_risks"`
	Behavioral []Risk `json:"behavioral_risks"`
	Overall    string `json:"overall_risk_level"`
}
