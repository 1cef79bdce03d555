package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"casegraph/internal/behavior"
	"casegraph/internal/model"
)

//go:embed default_rules.yaml
var defaultRules []byte

// Rules is the versioned table of keyword patterns and weights every scorer
// reads from. It is loaded once and treated as read-only afterwards.
type Rules struct {
	Version          int                        `yaml:"version"`
	Revision         string                     `yaml:"revision"`
	Roles            RoleRules                  `yaml:"roles"`
	TraitAdjustments []TraitAdjustment          `yaml:"trait_adjustments"`
	Highlights       HighlightRules             `yaml:"highlights"`
	Significance     SignificanceRules          `yaml:"significance"`
	Timeline         TimelineRules              `yaml:"timeline"`
	Causal           CausalRules                `yaml:"causal"`
	Dependencies     []DependencyPattern        `yaml:"dependencies"`
	Flows            FlowRules                  `yaml:"flows"`
	MMO              MMORules                   `yaml:"mmo"`
	Profiles         map[string]behavior.Preset `yaml:"profiles"`
}

type RoleRules struct {
	Criminal   []RoleRule `yaml:"criminal"`
	Commercial []RoleRule `yaml:"commercial"`
}

type RoleRule struct {
	Role     string   `yaml:"role"`
	Weight   float64  `yaml:"weight"`
	Keywords []string `yaml:"keywords"`
}

type TraitCondition struct {
	Trait string   `yaml:"trait"`
	Above *float64 `yaml:"above"`
	Below *float64 `yaml:"below"`
}

func (c TraitCondition) Holds(traits behavior.Traits) bool {
	value, err := traits.Value(c.Trait)
	if err != nil {
		return false
	}
	if c.Above != nil && !(value > *c.Above) {
		return false
	}
	if c.Below != nil && !(value < *c.Below) {
		return false
	}
	return true
}

type TraitAdjustment struct {
	Domain model.RoleDomain   `yaml:"domain"`
	When   []TraitCondition   `yaml:"when"`
	Add    map[string]float64 `yaml:"add"`
}

func (a TraitAdjustment) Applies(traits behavior.Traits) bool {
	for _, cond := range a.When {
		if !cond.Holds(traits) {
			return false
		}
	}
	return len(a.When) > 0
}

type HighlightRules struct {
	Excerpt    int      `yaml:"excerpt"`
	Criminal   []string `yaml:"criminal"`
	Commercial []string `yaml:"commercial"`
}

type SignificanceRules struct {
	Weight     float64  `yaml:"weight"`
	Threshold  float64  `yaml:"threshold"`
	Criminal   []string `yaml:"criminal"`
	Commercial []string `yaml:"commercial"`
}

type TimelineRules struct {
	Participant float64        `yaml:"participant"`
	Mention     float64        `yaml:"mention"`
	Groups      []KeywordGroup `yaml:"groups"`
}

type KeywordGroup struct {
	Name     string   `yaml:"name"`
	Weight   float64  `yaml:"weight"`
	Keywords []string `yaml:"keywords"`
}

type CausalRules struct {
	LeadTokens int             `yaml:"lead_tokens"`
	Phrases    []string        `yaml:"phrases"`
	Patterns   []CausalPattern `yaml:"patterns"`
}

type CausalPattern struct {
	Trigger      string   `yaml:"trigger"`
	Consequences []string `yaml:"consequences"`
}

type DependencyPattern struct {
	Pattern       string   `yaml:"pattern"`
	Prerequisites []string `yaml:"prerequisites"`
}

type FlowRules struct {
	LargeMagnitude   float64           `yaml:"large_magnitude"`
	SuspectIndicator float64           `yaml:"suspect_indicator"`
	Categories       []KeywordGroup    `yaml:"categories"`
	KindCategories   map[string]string `yaml:"kind_categories"`
	Legitimacy       LegitimacyRules   `yaml:"legitimacy"`
	Significance     FlowSignificance  `yaml:"significance"`
	Impact           ImpactThresholds  `yaml:"impact"`
}

type ScoreTier struct {
	Name     string   `yaml:"name"`
	Score    float64  `yaml:"score"`
	Keywords []string `yaml:"keywords"`
}

type LegitimacyRules struct {
	Default                float64     `yaml:"default"`
	Tiers                  []ScoreTier `yaml:"tiers"`
	ConcealmentPenalty     float64     `yaml:"concealment_penalty"`
	Concealment            []string    `yaml:"concealment"`
	LargeFlowPenalty       float64     `yaml:"large_flow_penalty"`
	SuspectEndpointPenalty float64     `yaml:"suspect_endpoint_penalty"`
}

type FlowSignificance struct {
	Default              float64     `yaml:"default"`
	Tiers                []ScoreTier `yaml:"tiers"`
	LargeFlowBonus       float64     `yaml:"large_flow_bonus"`
	SuspectEndpointBonus float64     `yaml:"suspect_endpoint_bonus"`
}

type ImpactThresholds struct {
	High     float64 `yaml:"high"`
	Moderate float64 `yaml:"moderate"`
}

type MMORules struct {
	TraitThreshold     float64  `yaml:"trait_threshold"`
	LegalKeywords      []string `yaml:"legal_keywords"`
	EvidenceKeywords   []string `yaml:"evidence_keywords"`
	WindowHours        int      `yaml:"window_hours"`
	StrongRelationship float64  `yaml:"strong_relationship"`
	RoleIndicator      float64  `yaml:"role_indicator"`
}

func DefaultRules() (*Rules, error) {
	rules, err := ParseRules(defaultRules)
	if err != nil {
		return nil, fmt.Errorf("loading default rules: %w", err)
	}
	return rules, nil
}

// DefaultRulesYAML returns a copy of the built-in rule table source.
func DefaultRulesYAML() []byte {
	return bytes.Clone(defaultRules)
}

func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("loading rules %s: %w", path, err)
	}
	return rules, nil
}

// RulesFor loads the project's rule table, or the built-in one when the
// project does not name a file.
func RulesFor(cfg *ProjectConfig) (*Rules, error) {
	if cfg == nil || strings.TrimSpace(cfg.Rules) == "" {
		return DefaultRules()
	}
	return LoadRules(cfg.Rules)
}

func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	if err := validateRules(&rules); err != nil {
		return nil, err
	}
	normalizeRules(&rules)
	return &rules, nil
}

func (r *Rules) RolesFor(domain model.RoleDomain) []RoleRule {
	switch domain {
	case model.DomainCriminal:
		return r.Roles.Criminal
	case model.DomainCommercial:
		return r.Roles.Commercial
	default:
		return nil
	}
}

func (r *Rules) Profile(name string) (behavior.Preset, bool) {
	preset, ok := r.Profiles[strings.ToLower(strings.TrimSpace(name))]
	return preset, ok
}

func validateRules(r *Rules) error {
	if r.Version != 1 {
		return fmt.Errorf("unsupported rules version: %d", r.Version)
	}

	for _, domain := range []model.RoleDomain{model.DomainCriminal, model.DomainCommercial} {
		seen := make(map[string]struct{})
		for i, rule := range r.RolesFor(domain) {
			if !domain.Has(rule.Role) {
				return fmt.Errorf("%s role %d: unknown role %q", domain, i, rule.Role)
			}
			if _, exists := seen[rule.Role]; exists {
				return fmt.Errorf("%s role %q declared twice", domain, rule.Role)
			}
			seen[rule.Role] = struct{}{}
			if err := checkWeight(rule.Weight); err != nil {
				return fmt.Errorf("%s role %q: %w", domain, rule.Role, err)
			}
			if err := checkKeywords(rule.Keywords); err != nil {
				return fmt.Errorf("%s role %q: %w", domain, rule.Role, err)
			}
		}
	}

	for i, adj := range r.TraitAdjustments {
		if adj.Domain != model.DomainCriminal && adj.Domain != model.DomainCommercial {
			return fmt.Errorf("trait adjustment %d: unknown domain %q", i, adj.Domain)
		}
		if len(adj.When) == 0 {
			return fmt.Errorf("trait adjustment %d: at least one condition is required", i)
		}
		for _, cond := range adj.When {
			if !behavior.IsTrait(cond.Trait) {
				return fmt.Errorf("trait adjustment %d: unknown trait %q", i, cond.Trait)
			}
			if cond.Above == nil && cond.Below == nil {
				return fmt.Errorf("trait adjustment %d: condition on %s needs above or below", i, cond.Trait)
			}
		}
		for role, weight := range adj.Add {
			if !adj.Domain.Has(role) {
				return fmt.Errorf("trait adjustment %d: unknown %s role %q", i, adj.Domain, role)
			}
			if err := checkWeight(weight); err != nil {
				return fmt.Errorf("trait adjustment %d: %w", i, err)
			}
		}
	}

	if err := checkWeight(r.Significance.Weight); err != nil {
		return fmt.Errorf("significance: %w", err)
	}
	if err := checkWeight(r.Significance.Threshold); err != nil {
		return fmt.Errorf("significance threshold: %w", err)
	}
	if err := checkKeywords(r.Significance.Criminal); err != nil {
		return fmt.Errorf("significance criminal: %w", err)
	}
	if err := checkKeywords(r.Significance.Commercial); err != nil {
		return fmt.Errorf("significance commercial: %w", err)
	}
	if err := checkKeywords(r.Highlights.Criminal); err != nil {
		return fmt.Errorf("highlights criminal: %w", err)
	}
	if err := checkKeywords(r.Highlights.Commercial); err != nil {
		return fmt.Errorf("highlights commercial: %w", err)
	}

	for _, w := range []float64{r.Timeline.Participant, r.Timeline.Mention} {
		if err := checkWeight(w); err != nil {
			return fmt.Errorf("timeline: %w", err)
		}
	}
	if err := checkGroups("timeline group", r.Timeline.Groups, true); err != nil {
		return err
	}

	if r.Causal.LeadTokens < 0 {
		return fmt.Errorf("causal lead_tokens must not be negative")
	}
	triggers := make(map[string]struct{})
	for i, p := range r.Causal.Patterns {
		key := strings.ToLower(strings.TrimSpace(p.Trigger))
		if key == "" {
			return fmt.Errorf("causal pattern %d trigger is required", i)
		}
		if _, exists := triggers[key]; exists {
			return fmt.Errorf("duplicate causal trigger: %s", p.Trigger)
		}
		triggers[key] = struct{}{}
		if err := checkKeywords(p.Consequences); err != nil {
			return fmt.Errorf("causal pattern %s: %w", p.Trigger, err)
		}
	}

	patterns := make(map[string]struct{})
	for i, d := range r.Dependencies {
		key := strings.ToLower(strings.TrimSpace(d.Pattern))
		if key == "" {
			return fmt.Errorf("dependency %d pattern is required", i)
		}
		if _, exists := patterns[key]; exists {
			return fmt.Errorf("duplicate dependency pattern: %s", d.Pattern)
		}
		patterns[key] = struct{}{}
		if err := checkKeywords(d.Prerequisites); err != nil {
			return fmt.Errorf("dependency %s: %w", d.Pattern, err)
		}
	}

	if r.Flows.LargeMagnitude <= 0 {
		return fmt.Errorf("flows large_magnitude must be positive")
	}
	if err := checkGroups("flow category", r.Flows.Categories, false); err != nil {
		return err
	}
	for kind := range r.Flows.KindCategories {
		if _, err := model.ParseFlowKind(kind); err != nil {
			return fmt.Errorf("flows kind_categories: %w", err)
		}
	}
	for _, tier := range append(append([]ScoreTier{}, r.Flows.Legitimacy.Tiers...), r.Flows.Significance.Tiers...) {
		if err := checkWeight(tier.Score); err != nil {
			return fmt.Errorf("flow tier %s: %w", tier.Name, err)
		}
		if err := checkKeywords(tier.Keywords); err != nil {
			return fmt.Errorf("flow tier %s: %w", tier.Name, err)
		}
	}
	if r.Flows.Impact.Moderate > r.Flows.Impact.High {
		return fmt.Errorf("flows impact moderate threshold exceeds high")
	}
	if r.Flows.SuspectIndicator <= 0 || r.Flows.SuspectIndicator > 1 {
		return fmt.Errorf("flows suspect_indicator must be within (0,1], got %v", r.Flows.SuspectIndicator)
	}
	if err := checkKeywords(r.Flows.Legitimacy.Concealment); err != nil {
		return fmt.Errorf("flows concealment: %w", err)
	}

	if err := checkKeywords(r.MMO.LegalKeywords); err != nil {
		return fmt.Errorf("mmo legal_keywords: %w", err)
	}
	if err := checkKeywords(r.MMO.EvidenceKeywords); err != nil {
		return fmt.Errorf("mmo evidence_keywords: %w", err)
	}

	for name, preset := range r.Profiles {
		for _, rule := range preset.Rules {
			if strings.TrimSpace(rule.When) == "" || strings.TrimSpace(rule.Then) == "" {
				return fmt.Errorf("profile %s has an incomplete rule", name)
			}
		}
	}

	return nil
}

func normalizeRules(r *Rules) {
	if r.Highlights.Excerpt <= 0 {
		r.Highlights.Excerpt = 100
	}
	if r.Causal.LeadTokens == 0 {
		r.Causal.LeadTokens = 5
	}
	if r.MMO.WindowHours <= 0 {
		r.MMO.WindowHours = 24
	}
	for i := range r.Roles.Criminal {
		lowerAll(r.Roles.Criminal[i].Keywords)
	}
	for i := range r.Roles.Commercial {
		lowerAll(r.Roles.Commercial[i].Keywords)
	}
	lowerAll(r.Highlights.Criminal)
	lowerAll(r.Highlights.Commercial)
	lowerAll(r.Significance.Criminal)
	lowerAll(r.Significance.Commercial)
	for i := range r.Timeline.Groups {
		lowerAll(r.Timeline.Groups[i].Keywords)
	}
	lowerAll(r.Causal.Phrases)
	for i := range r.Causal.Patterns {
		r.Causal.Patterns[i].Trigger = strings.ToLower(strings.TrimSpace(r.Causal.Patterns[i].Trigger))
		lowerAll(r.Causal.Patterns[i].Consequences)
	}
	for i := range r.Dependencies {
		r.Dependencies[i].Pattern = strings.ToLower(strings.TrimSpace(r.Dependencies[i].Pattern))
		lowerAll(r.Dependencies[i].Prerequisites)
	}
	for i := range r.Flows.Categories {
		lowerAll(r.Flows.Categories[i].Keywords)
	}
	for i := range r.Flows.Legitimacy.Tiers {
		lowerAll(r.Flows.Legitimacy.Tiers[i].Keywords)
	}
	for i := range r.Flows.Significance.Tiers {
		lowerAll(r.Flows.Significance.Tiers[i].Keywords)
	}
	lowerAll(r.Flows.Legitimacy.Concealment)
	lowerAll(r.MMO.LegalKeywords)
	lowerAll(r.MMO.EvidenceKeywords)

	profiles := make(map[string]behavior.Preset, len(r.Profiles))
	for name, preset := range r.Profiles {
		profiles[strings.ToLower(name)] = preset
	}
	r.Profiles = profiles
}

func lowerAll(keywords []string) {
	for i, k := range keywords {
		keywords[i] = strings.ToLower(strings.TrimSpace(k))
	}
}

// ContainsAny reports whether any keyword occurs in text. Text is expected
// to be lowercased already.
func ContainsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// CountMatches counts the keywords that occur in text at least once.
func CountMatches(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

func checkWeight(w float64) error {
	if w < 0 || w > 1 {
		return fmt.Errorf("weight %v outside [0,1]", w)
	}
	return nil
}

func checkKeywords(keywords []string) error {
	if len(keywords) == 0 {
		return fmt.Errorf("keywords are required")
	}
	for _, k := range keywords {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("empty keyword")
		}
	}
	return nil
}

func checkGroups(label string, groups []KeywordGroup, weighted bool) error {
	seen := make(map[string]struct{})
	for i, g := range groups {
		key := strings.ToLower(strings.TrimSpace(g.Name))
		if key == "" {
			return fmt.Errorf("%s %d name is required", label, i)
		}
		if _, exists := seen[key]; exists {
			return fmt.Errorf("duplicate %s: %s", label, g.Name)
		}
		seen[key] = struct{}{}
		if weighted {
			if err := checkWeight(g.Weight); err != nil {
				return fmt.Errorf("%s %s: %w", label, g.Name, err)
			}
		}
		if err := checkKeywords(g.Keywords); err != nil {
			return fmt.Errorf("%s %s: %w", label, g.Name, err)
		}
	}
	return nil
}
