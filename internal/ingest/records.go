package ingest

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"casegraph/internal/behavior"
	"casegraph/internal/config"
	"casegraph/internal/model"
)

// recordValidate checks decoded frontmatter before it reaches the store.
var recordValidate *validator.Validate

func init() {
	recordValidate = validator.New()
}

type entityRecord struct {
	ID           string            `yaml:"id" validate:"required"`
	Name         string            `yaml:"name" validate:"required"`
	Kind         string            `yaml:"kind" validate:"required"`
	Roles        []string          `yaml:"roles"`
	Status       string            `yaml:"status"`
	Attributes   map[string]string `yaml:"attributes"`
	EvidenceRefs []string          `yaml:"evidence_refs" validate:"dive,required"`
	Profile      *profileRecord    `yaml:"profile"`
}

type profileRecord struct {
	Preset        string              `yaml:"preset"`
	Traits        map[string]float64  `yaml:"traits" validate:"dive,keys,oneof=legal_aggression control_seeking evidence_dismissal vulnerability_to_pressure ethical_compliance,endkeys"`
	Rules         []behavior.RuleSpec `yaml:"rules" validate:"dive"`
	Goals         []string            `yaml:"goals" validate:"dive,required"`
	Relationships map[string]float64  `yaml:"relationships" validate:"dive,keys,required,endkeys"`
}

type eventRecord struct {
	ID           string   `yaml:"id" validate:"required"`
	Date         string   `yaml:"date" validate:"required"`
	Description  string   `yaml:"description"`
	Participants []string `yaml:"participants" validate:"dive,required"`
	EvidenceRefs []string `yaml:"evidence_refs" validate:"dive,required"`
	Status       string   `yaml:"status"`
	Kind         string   `yaml:"kind"`
}

type flowRecord struct {
	ID           string   `yaml:"id" validate:"required"`
	Kind         string   `yaml:"kind" validate:"required"`
	Source       string   `yaml:"source" validate:"required"`
	Target       string   `yaml:"target" validate:"required"`
	Timestamp    string   `yaml:"timestamp"`
	Magnitude    float64  `yaml:"magnitude" validate:"gte=0"`
	Description  string   `yaml:"description"`
	EvidenceRefs []string `yaml:"evidence_refs" validate:"dive,required"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

func (r entityRecord) toEntity(rules *config.Rules, asOf time.Time) (*model.Entity, error) {
	kind, err := model.ParseEntityKind(r.Kind)
	if err != nil {
		return nil, err
	}
	status, err := model.ParseVerificationStatus(r.Status)
	if err != nil {
		return nil, err
	}
	entity := &model.Entity{
		ID:           strings.TrimSpace(r.ID),
		Name:         strings.TrimSpace(r.Name),
		Kind:         kind,
		Roles:        slices.Clone(r.Roles),
		Attributes:   maps.Clone(r.Attributes),
		Status:       status,
		EvidenceRefs: slices.Clone(r.EvidenceRefs),
	}
	if r.Profile != nil {
		profile, err := r.Profile.build(rules, asOf)
		if err != nil {
			return nil, fmt.Errorf("profile for %s: %w", entity.ID, err)
		}
		entity.Profile = profile
	}
	return entity, nil
}

// build starts from the named preset, or neutral traits when there is none,
// and layers the record's own traits, rules and goals on top.
func (r profileRecord) build(rules *config.Rules, asOf time.Time) (*behavior.Profile, error) {
	preset := behavior.Preset{Traits: behavior.DefaultTraits()}
	if name := strings.TrimSpace(r.Preset); name != "" {
		p, ok := rules.Profile(name)
		if !ok {
			return nil, fmt.Errorf("unknown profile preset %q", name)
		}
		preset = p
	}
	for _, name := range slices.Sorted(maps.Keys(r.Traits)) {
		if err := preset.Traits.Set(name, r.Traits[name]); err != nil {
			return nil, err
		}
	}

	profile := preset.Build(asOf)
	for _, rule := range r.Rules {
		profile.AddRule(rule.When, rule.Then)
	}
	for _, goal := range r.Goals {
		profile.AddGoal(goal)
	}
	for other, strength := range r.Relationships {
		profile.State.Relationships[other] = behavior.Clamp(strength)
	}
	return profile, nil
}

func (r eventRecord) toEvent() (*model.Event, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return nil, err
	}
	status, err := model.ParseVerificationStatus(r.Status)
	if err != nil {
		return nil, err
	}
	kind, err := model.ParseEventKind(r.Kind)
	if err != nil {
		return nil, err
	}
	return &model.Event{
		ID:           strings.TrimSpace(r.ID),
		Date:         date,
		Description:  strings.TrimSpace(r.Description),
		Participants: slices.Clone(r.Participants),
		EvidenceRefs: slices.Clone(r.EvidenceRefs),
		Status:       status,
		Kind:         kind,
	}, nil
}

func (r flowRecord) toFlow() (*model.Flow, error) {
	kind, err := model.ParseFlowKind(r.Kind)
	if err != nil {
		return nil, err
	}
	flow := &model.Flow{
		ID:           strings.TrimSpace(r.ID),
		Kind:         kind,
		Source:       strings.TrimSpace(r.Source),
		Target:       strings.TrimSpace(r.Target),
		Magnitude:    r.Magnitude,
		Description:  strings.TrimSpace(r.Description),
		EvidenceRefs: slices.Clone(r.EvidenceRefs),
	}
	if strings.TrimSpace(r.Timestamp) != "" {
		ts, err := parseDate(r.Timestamp)
		if err != nil {
			return nil, err
		}
		flow.Timestamp = ts
	}
	return flow, nil
}
