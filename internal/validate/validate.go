package validate

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"casegraph/internal/model"
	"casegraph/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDanglingParticipant = "dangling_participant"
	codeUnknownEndpoint     = "unknown_flow_endpoint"
	codeSelfFlow            = "self_flow"
	codeUndatedEvent        = "undated_event"
	codeNoParticipants      = "event_without_participants"
	codeOrphanedEntity      = "orphaned_entity"
	codeDuplicateName       = "duplicate_name"
	codeNegativeMagnitude   = "negative_magnitude"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Kind     string   `json:"kind"`
	Record   string   `json:"record"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) HasErrors() bool {
	return slices.ContainsFunc(r.Issues, func(i Issue) bool { return i.Severity == SeverityError })
}

// Run checks the referential integrity of a loaded case. It never modifies
// st.
func Run(st *store.Store) (*Report, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}

	issues := make([]Issue, 0)
	issues = append(issues, validateEvents(st)...)
	issues = append(issues, validateFlows(st)...)
	issues = append(issues, validateEntities(st)...)

	slices.SortStableFunc(issues, func(a, b Issue) int {
		return cmp.Compare(severityRank(a.Severity), severityRank(b.Severity))
	})
	return &Report{Issues: issues}, nil
}

func validateEvents(st *store.Store) []Issue {
	var issues []Issue
	for _, event := range st.Events() {
		if event.Date.IsZero() {
			issues = append(issues, eventIssue(event, SeverityError, codeUndatedEvent, "event has no date"))
		}
		if len(event.Participants) == 0 {
			issues = append(issues, eventIssue(event, SeverityWarn, codeNoParticipants, "event has no participants"))
		}
		for _, id := range event.Participants {
			if _, ok := st.Entity(id); !ok {
				issues = append(issues, eventIssue(event, SeverityError, codeDanglingParticipant,
					fmt.Sprintf("participant %s is not a known entity", id)))
			}
		}
	}
	return issues
}

func validateFlows(st *store.Store) []Issue {
	var issues []Issue
	for _, flow := range st.Flows() {
		for _, id := range []string{flow.Source, flow.Target} {
			if _, ok := st.Entity(id); !ok {
				issues = append(issues, flowIssue(flow, SeverityError, codeUnknownEndpoint,
					fmt.Sprintf("endpoint %s is not a known entity", id)))
			}
		}
		if flow.Source == flow.Target {
			issues = append(issues, flowIssue(flow, SeverityWarn, codeSelfFlow, "flow source and target are the same entity"))
		}
		if flow.Magnitude < 0 {
			issues = append(issues, flowIssue(flow, SeverityError, codeNegativeMagnitude,
				fmt.Sprintf("magnitude %.2f is negative", flow.Magnitude)))
		}
	}
	return issues
}

func validateEntities(st *store.Store) []Issue {
	events := st.Events()
	flows := st.Flows()

	var issues []Issue
	byName := make(map[string][]string)
	for _, entity := range st.Entities() {
		name := strings.ToLower(strings.TrimSpace(entity.Name))
		if name != "" {
			byName[name] = append(byName[name], entity.ID)
		}
		if !referenced(entity, events, flows) {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeOrphanedEntity,
				Message:  "entity takes part in no event or flow",
				Kind:     "entity",
				Record:   entity.ID,
			})
		}
	}

	names := make([]string, 0, len(byName))
	for name, ids := range byName {
		if len(ids) > 1 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		for _, id := range byName[name] {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeDuplicateName,
				Message:  fmt.Sprintf("name %q is shared by %s", name, strings.Join(byName[name], ", ")),
				Kind:     "entity",
				Record:   id,
			})
		}
	}
	return issues
}

func referenced(entity *model.Entity, events []*model.Event, flows []*model.Flow) bool {
	for _, event := range events {
		if event.Involves(entity) {
			return true
		}
	}
	for _, flow := range flows {
		if flow.Source == entity.ID || flow.Target == entity.ID {
			return true
		}
	}
	return false
}

func eventIssue(event *model.Event, severity Severity, code, message string) Issue {
	return Issue{Severity: severity, Code: code, Message: message, Kind: "event", Record: event.ID}
}

func flowIssue(flow *model.Flow, severity Severity, code, message string) Issue {
	return Issue{Severity: severity, Code: code, Message: message, Kind: "flow", Record: flow.ID}
}

func severityRank(s Severity) int {
	if s == SeverityError {
		return 0
	}
	return 1
}
