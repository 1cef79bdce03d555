package behavior

import (
	"maps"
	"slices"
	"strings"
	"time"
)

const (
	defaultRelationship = 0.5
	fallbackThreshold   = 0.7
)

const (
	ActionEscalateLegally = "escalate_legally"
	ActionSeekControl     = "seek_control"
	ActionMonitor         = "monitor"
)

type Decision struct {
	Action    string    `json:"decision"`
	Reasoning []string  `json:"reasoning"`
	EventID   string    `json:"event_id,omitempty"`
	At        time.Time `json:"timestamp"`
}

type State struct {
	Active        bool               `json:"active"`
	Timestamp     time.Time          `json:"timestamp"`
	Events        []string           `json:"events_participated"`
	Decisions     []Decision         `json:"decisions_made"`
	Relationships map[string]float64 `json:"relationships"`
	Attributes    map[string]string  `json:"attributes,omitempty"`
}

func (s State) clone() State {
	out := State{
		Active:        s.Active,
		Timestamp:     s.Timestamp,
		Events:        slices.Clone(s.Events),
		Relationships: maps.Clone(s.Relationships),
		Attributes:    maps.Clone(s.Attributes),
	}
	if s.Decisions != nil {
		out.Decisions = make([]Decision, len(s.Decisions))
		for i, d := range s.Decisions {
			d.Reasoning = slices.Clone(d.Reasoning)
			out.Decisions[i] = d
		}
	}
	return out
}

// Snapshot is the state as it was immediately before EventID changed it.
type Snapshot struct {
	EventID string    `json:"event_id"`
	At      time.Time `json:"timestamp"`
	State   State     `json:"state"`
}

// StateChange is a typed patch for UpdateState. Nil or empty fields leave
// the current value untouched.
type StateChange struct {
	Active        *bool
	Relationships map[string]float64
	Attributes    map[string]string
}

type Profile struct {
	Traits  Traits     `json:"traits"`
	Rules   []string   `json:"behavioral_rules"`
	Goals   []string   `json:"strategic_goals"`
	State   State      `json:"current_state"`
	History []Snapshot `json:"state_history"`
}

func New(traits Traits, at time.Time) *Profile {
	p := &Profile{}
	p.Initialize(traits, at)
	return p
}

// Initialize clamps traits into [0,1] and resets the current state.
// Rules, goals and history are left as they are.
func (p *Profile) Initialize(traits Traits, at time.Time) {
	p.Traits = traits.Clamped()
	p.State = State{
		Active:        true,
		Timestamp:     at,
		Events:        []string{},
		Decisions:     []Decision{},
		Relationships: map[string]float64{},
	}
}

func FormatRule(condition, action string) string {
	return "IF " + strings.TrimSpace(condition) + " THEN " + strings.TrimSpace(action)
}

func (p *Profile) AddRule(condition, action string) bool {
	rule := FormatRule(condition, action)
	if slices.Contains(p.Rules, rule) {
		return false
	}
	p.Rules = append(p.Rules, rule)
	return true
}

func (p *Profile) AddGoal(goal string) bool {
	goal = strings.TrimSpace(goal)
	if goal == "" || slices.Contains(p.Goals, goal) {
		return false
	}
	p.Goals = append(p.Goals, goal)
	return true
}

func (p *Profile) UpdateState(eventID string, change StateChange, at time.Time) {
	p.History = append(p.History, Snapshot{
		EventID: eventID,
		At:      at,
		State:   p.State.clone(),
	})

	if change.Active != nil {
		p.State.Active = *change.Active
	}
	for other, strength := range change.Relationships {
		if p.State.Relationships == nil {
			p.State.Relationships = map[string]float64{}
		}
		p.State.Relationships[other] = Clamp(strength)
	}
	for key, value := range change.Attributes {
		if p.State.Attributes == nil {
			p.State.Attributes = map[string]string{}
		}
		p.State.Attributes[key] = value
	}

	p.State.Timestamp = at
	if eventID != "" && !slices.Contains(p.State.Events, eventID) {
		p.State.Events = append(p.State.Events, eventID)
	}
}

// Decide returns the action of the first rule whose condition shares a
// token with the context, falling back to trait thresholds. The decision is
// recorded in the current state.
func (p *Profile) Decide(ctx Context, at time.Time) Decision {
	decision := p.match(ctx)
	decision.EventID = ctx.EventID
	decision.At = at
	p.State.Decisions = append(p.State.Decisions, decision)
	return decision
}

func (p *Profile) match(ctx Context) Decision {
	text := ctx.Text()
	for _, rule := range p.Rules {
		condition, action, ok := splitRule(rule)
		if !ok {
			continue
		}
		for _, token := range strings.Fields(strings.ToLower(condition)) {
			if strings.Contains(text, token) {
				return Decision{Action: action, Reasoning: []string{"Applied rule: " + rule}}
			}
		}
	}

	switch {
	case p.Traits.LegalAggression > fallbackThreshold:
		return Decision{Action: ActionEscalateLegally, Reasoning: []string{"High legal aggression level"}}
	case p.Traits.ControlSeeking > fallbackThreshold:
		return Decision{Action: ActionSeekControl, Reasoning: []string{"High control-seeking behavior"}}
	default:
		return Decision{Action: ActionMonitor, Reasoning: []string{"No specific action triggered"}}
	}
}

func splitRule(rule string) (string, string, bool) {
	condition, action, ok := strings.Cut(rule, " THEN ")
	if !ok {
		return "", "", false
	}
	condition = strings.TrimSpace(strings.TrimPrefix(condition, "IF "))
	return condition, strings.TrimSpace(action), true
}

func (p *Profile) RelationshipStrength(other string) float64 {
	return p.State.Relationships[other]
}

func (p *Profile) AdjustRelationship(other string, delta float64) float64 {
	if p.State.Relationships == nil {
		p.State.Relationships = map[string]float64{}
	}
	current, ok := p.State.Relationships[other]
	if !ok {
		current = defaultRelationship
	}
	next := Clamp(current + delta)
	p.State.Relationships[other] = next
	return next
}

func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := &Profile{
		Traits: p.Traits,
		Rules:  slices.Clone(p.Rules),
		Goals:  slices.Clone(p.Goals),
		State:  p.State.clone(),
	}
	if p.History != nil {
		out.History = make([]Snapshot, len(p.History))
		for i, snap := range p.History {
			snap.State = snap.State.clone()
			out.History[i] = snap
		}
	}
	return out
}
