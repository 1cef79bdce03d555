package roles

import (
	"slices"
	"strings"

	"casegraph/internal/behavior"
	"casegraph/internal/config"
	"casegraph/internal/model"
)

const dateLayout = "2006-01-02"

// Classifier scores how strongly an entity fits each role of the criminal
// and commercial role sets. It never mutates its inputs.
type Classifier struct {
	rules *config.Rules
}

func New(rules *config.Rules) *Classifier {
	return &Classifier{rules: rules}
}

func (c *Classifier) ScoreCriminal(entity *model.Entity, events []*model.Event) map[string]float64 {
	return c.Score(model.DomainCriminal, entity, events)
}

func (c *Classifier) ScoreCommercial(entity *model.Entity, events []*model.Event) map[string]float64 {
	return c.Score(model.DomainCommercial, entity, events)
}

// Score returns a confidence in [0,1] for every role of domain. Each role
// gains its weight once per involving event whose description hits one of
// its keywords; trait adjustments are applied after all events.
func (c *Classifier) Score(domain model.RoleDomain, entity *model.Entity, events []*model.Event) map[string]float64 {
	scores := make(map[string]float64)
	for _, role := range domain.Roles() {
		scores[role] = 0
	}
	if entity == nil {
		return scores
	}

	rules := c.rules.RolesFor(domain)
	for _, event := range events {
		if !event.Involves(entity) {
			continue
		}
		desc := strings.ToLower(event.Description)
		for _, rule := range rules {
			if config.ContainsAny(desc, rule.Keywords) {
				scores[rule.Role] += rule.Weight
			}
		}
	}

	if traits, ok := entity.Traits(); ok {
		for _, adj := range c.rules.TraitAdjustments {
			if adj.Domain != domain || !adj.Applies(traits) {
				continue
			}
			for role, weight := range adj.Add {
				scores[role] += weight
			}
		}
	}

	for role, score := range scores {
		scores[role] = behavior.Clamp(score)
	}
	return scores
}

type Highlights struct {
	Criminal   []string `json:"criminal"`
	Commercial []string `json:"commercial"`
}

func NewHighlights() Highlights {
	return Highlights{Criminal: []string{}, Commercial: []string{}}
}

// Merge appends the highlights of other that are not already present.
func (h *Highlights) Merge(other Highlights) {
	h.Criminal = appendUnique(h.Criminal, other.Criminal...)
	h.Commercial = appendUnique(h.Commercial, other.Commercial...)
}

// ExtractHighlights lists, per category, the involving events whose
// description carries one of the category's indicator keywords.
func (c *Classifier) ExtractHighlights(entity *model.Entity, events []*model.Event) Highlights {
	out := NewHighlights()
	if entity == nil {
		return out
	}
	hr := c.rules.Highlights
	for _, event := range events {
		if !event.Involves(entity) {
			continue
		}
		desc := strings.ToLower(event.Description)
		if config.ContainsAny(desc, hr.Criminal) {
			out.Criminal = appendUnique(out.Criminal, formatHighlight("Criminal", event, hr.Excerpt))
		}
		if config.ContainsAny(desc, hr.Commercial) {
			out.Commercial = appendUnique(out.Commercial, formatHighlight("Commercial", event, hr.Excerpt))
		}
	}
	return out
}

func formatHighlight(category string, event *model.Event, excerpt int) string {
	return category + ": " + event.Date.Format(dateLayout) + " - " + truncate(event.Description, excerpt) + "..."
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		if !slices.Contains(list, item) {
			list = append(list, item)
		}
	}
	return list
}
