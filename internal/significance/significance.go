package significance

import (
	"strings"

	"casegraph/internal/behavior"
	"casegraph/internal/config"
	"casegraph/internal/model"
)

// Significance is the legal weight of a single event.
type Significance struct {
	Criminal   float64  `json:"criminal_significance"`
	Commercial float64  `json:"commercial_significance"`
	Categories []string `json:"legal_categories"`
}

// Max returns the larger of the two significance values.
func (s Significance) Max() float64 {
	return max(s.Criminal, s.Commercial)
}

type Scorer struct {
	rules *config.Rules
}

func New(rules *config.Rules) *Scorer {
	return &Scorer{rules: rules}
}

// Categorize scores an event against the criminal and commercial keyword
// lists. Each distinct keyword found adds the configured weight. An event
// that clears neither threshold is tagged general.
func (s *Scorer) Categorize(event *model.Event) Significance {
	sr := s.rules.Significance
	out := Significance{Categories: []string{}}
	if event == nil {
		out.Categories = append(out.Categories, model.CategoryGeneral)
		return out
	}

	desc := strings.ToLower(event.Description)
	out.Criminal = behavior.Clamp(float64(config.CountMatches(desc, sr.Criminal)) * sr.Weight)
	out.Commercial = behavior.Clamp(float64(config.CountMatches(desc, sr.Commercial)) * sr.Weight)

	if out.Criminal > sr.Threshold {
		out.Categories = append(out.Categories, model.CategoryCriminal)
	}
	if out.Commercial > sr.Threshold {
		out.Categories = append(out.Categories, model.CategoryCommercial)
	}
	if len(out.Categories) == 0 {
		out.Categories = append(out.Categories, model.CategoryGeneral)
	}
	return out
}

// Timeline scores how significant every event is for entity. Participation,
// a name mention and each matching keyword group add their weights.
func (s *Scorer) Timeline(entity *model.Entity, events []*model.Event) map[string]float64 {
	tr := s.rules.Timeline
	scores := make(map[string]float64, len(events))
	for _, event := range events {
		var score float64
		if entity != nil {
			if event.HasParticipant(entity.ID) {
				score += tr.Participant
			}
			if entity.MentionedIn(event.Description) {
				score += tr.Mention
			}
		}
		desc := strings.ToLower(event.Description)
		for _, group := range tr.Groups {
			if config.ContainsAny(desc, group.Keywords) {
				score += group.Weight
			}
		}
		scores[event.ID] = behavior.Clamp(score)
	}
	return scores
}
