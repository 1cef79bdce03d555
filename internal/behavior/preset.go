package behavior

import "time"

type RuleSpec struct {
	When string `yaml:"when" json:"when"`
	Then string `yaml:"then" json:"then"`
}

// Preset is a named starting profile referenced from entity records.
type Preset struct {
	Traits Traits     `yaml:"traits" json:"traits"`
	Rules  []RuleSpec `yaml:"rules" json:"rules"`
	Goals  []string   `yaml:"goals" json:"goals"`
}

func (p Preset) Build(at time.Time) *Profile {
	profile := New(p.Traits, at)
	for _, rule := range p.Rules {
		profile.AddRule(rule.When, rule.Then)
	}
	for _, goal := range p.Goals {
		profile.AddGoal(goal)
	}
	return profile
}
