package model

import (
	"maps"
	"slices"
	"strings"
	"time"

	"casegraph/internal/behavior"
)

const (
	CategoryCriminal   = "criminal"
	CategoryCommercial = "commercial"
	CategoryGeneral    = "general"
)

const (
	CriminalPrefix   = "criminal_"
	CommercialPrefix = "commercial_"
)

type Entity struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Kind         EntityKind         `json:"kind"`
	Roles        []string           `json:"roles"`
	Attributes   map[string]string  `json:"attributes,omitempty"`
	Status       VerificationStatus `json:"status"`
	EvidenceRefs []string           `json:"evidence_refs,omitempty"`
	Profile      *behavior.Profile  `json:"profile,omitempty"`

	RoleIndicators       map[string]float64 `json:"role_indicators,omitempty"`
	TimelineSignificance map[string]float64 `json:"timeline_significance,omitempty"`
}

// Traits returns the entity's behavioral traits, or the zero value when it
// has no profile so that trait-driven rules contribute nothing.
func (e *Entity) Traits() (behavior.Traits, bool) {
	if e == nil || e.Profile == nil {
		return behavior.Traits{}, false
	}
	return e.Profile.Traits, true
}

func (e *Entity) Indicator(key string) float64 {
	if e == nil {
		return 0
	}
	return e.RoleIndicators[key]
}

// MentionedIn reports whether the entity's name occurs in text, ignoring case.
func (e *Entity) MentionedIn(text string) bool {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(name))
}

func (e *Entity) Clone() *Entity {
	out := *e
	out.Roles = slices.Clone(e.Roles)
	out.Attributes = maps.Clone(e.Attributes)
	out.EvidenceRefs = slices.Clone(e.EvidenceRefs)
	out.Profile = e.Profile.Clone()
	out.RoleIndicators = maps.Clone(e.RoleIndicators)
	out.TimelineSignificance = maps.Clone(e.TimelineSignificance)
	return &out
}

type Event struct {
	ID           string             `json:"id"`
	Date         time.Time          `json:"date"`
	Description  string             `json:"description"`
	Participants []string           `json:"participants"`
	EvidenceRefs []string           `json:"evidence_refs,omitempty"`
	Status       VerificationStatus `json:"status"`
	Kind         EventKind          `json:"kind"`

	CriminalSignificance   float64  `json:"criminal_significance"`
	CommercialSignificance float64  `json:"commercial_significance"`
	LegalCategories        []string `json:"legal_categories"`
	CausalRelations        []string `json:"causal_relations"`
	TemporalDependencies   []string `json:"temporal_dependencies"`
}

func (e *Event) HasParticipant(entityID string) bool {
	return slices.Contains(e.Participants, entityID)
}

// Involves reports whether the entity takes part in the event or is named
// in its description.
func (e *Event) Involves(entity *Entity) bool {
	return e.HasParticipant(entity.ID) || entity.MentionedIn(e.Description)
}

func (e *Event) Clone() *Event {
	out := *e
	out.Participants = slices.Clone(e.Participants)
	out.EvidenceRefs = slices.Clone(e.EvidenceRefs)
	out.LegalCategories = slices.Clone(e.LegalCategories)
	out.CausalRelations = slices.Clone(e.CausalRelations)
	out.TemporalDependencies = slices.Clone(e.TemporalDependencies)
	return &out
}

type ImpactDimensions struct {
	Financial    float64 `json:"financial"`
	Legal        float64 `json:"legal"`
	Operational  float64 `json:"operational"`
	Reputational float64 `json:"reputational"`
	Strategic    float64 `json:"strategic"`
}

// FlowAssessment is the derived part of a flow, replaced as a unit.
type FlowAssessment struct {
	Category          string           `json:"category"`
	Legitimacy        float64          `json:"legitimacy"`
	LegalSignificance float64          `json:"legal_significance"`
	Impact            string           `json:"impact"`
	Dimensions        ImpactDimensions `json:"impact_dimensions"`
}

type Flow struct {
	ID           string    `json:"id"`
	Kind         FlowKind  `json:"kind"`
	Source       string    `json:"source"`
	Target       string    `json:"target"`
	Timestamp    time.Time `json:"timestamp"`
	Magnitude    float64   `json:"magnitude"`
	Description  string    `json:"description"`
	EvidenceRefs []string  `json:"evidence_refs,omitempty"`

	Assessment *FlowAssessment `json:"assessment,omitempty"`
}

func (f *Flow) Clone() *Flow {
	out := *f
	out.EvidenceRefs = slices.Clone(f.EvidenceRefs)
	if f.Assessment != nil {
		a := *f.Assessment
		out.Assessment = &a
	}
	return &out
}
