package validate

import (
	"testing"
	"time"

	"casegraph/internal/model"
	"casegraph/internal/store"
)

var when = time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC)

func newStore(t *testing.T, entities []*model.Entity, events []*model.Event, flows []*model.Flow) *store.Store {
	t.Helper()
	st := store.New()
	for _, e := range entities {
		if err := st.AddEntity(e); err != nil {
			t.Fatalf("add entity: %v", err)
		}
	}
	for _, e := range events {
		if err := st.AddEvent(e); err != nil {
			t.Fatalf("add event: %v", err)
		}
	}
	for _, f := range flows {
		if err := st.AddFlow(f); err != nil {
			t.Fatalf("add flow: %v", err)
		}
	}
	return st
}

func TestRun_CleanCase(t *testing.T) {
	st := newStore(t,
		[]*model.Entity{{ID: "daniel", Name: "Daniel"}, {ID: "regima", Name: "RegimA"}},
		[]*model.Event{{ID: "report", Date: when, Description: "Daniel filed report", Participants: []string{"daniel"}}},
		[]*model.Flow{{ID: "f1", Source: "daniel", Target: "regima", Magnitude: 10}},
	)

	report, err := Run(st)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
	if report.HasErrors() {
		t.Fatalf("expected no errors")
	}
}

func TestRun_DanglingParticipant(t *testing.T) {
	st := newStore(t,
		nil,
		[]*model.Event{{ID: "report", Date: when, Description: "filed", Participants: []string{"ghost"}}},
		nil,
	)

	report, err := Run(st)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	issue, ok := findIssue(report.Issues, codeDanglingParticipant)
	if !ok {
		t.Fatalf("expected dangling participant issue")
	}
	if issue.Record != "report" || issue.Severity != SeverityError {
		t.Fatalf("unexpected issue %+v", issue)
	}
	if !report.HasErrors() {
		t.Fatalf("expected errors")
	}
}

func TestRun_FlowChecks(t *testing.T) {
	st := newStore(t,
		[]*model.Entity{{ID: "peter", Name: "Peter"}},
		nil,
		[]*model.Flow{
			{ID: "loop", Source: "peter", Target: "peter", Magnitude: 5},
			{ID: "out", Source: "peter", Target: "offshore", Magnitude: -1},
		},
	)

	report, err := Run(st)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, code := range []string{codeSelfFlow, codeUnknownEndpoint, codeNegativeMagnitude} {
		if _, ok := findIssue(report.Issues, code); !ok {
			t.Fatalf("expected %s issue, got %+v", code, report.Issues)
		}
	}
	if report.Issues[0].Severity != SeverityError {
		t.Fatalf("expected errors sorted first, got %+v", report.Issues)
	}
}

func TestRun_EventWarnings(t *testing.T) {
	st := newStore(t,
		nil,
		[]*model.Event{{ID: "note", Description: "undated note"}},
		nil,
	)

	report, err := Run(st)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := findIssue(report.Issues, codeUndatedEvent); !ok {
		t.Fatalf("expected undated event issue")
	}
	issue, ok := findIssue(report.Issues, codeNoParticipants)
	if !ok || issue.Severity != SeverityWarn {
		t.Fatalf("expected no participants warning, got %+v", report.Issues)
	}
}

func TestRun_EntityWarnings(t *testing.T) {
	st := newStore(t,
		[]*model.Entity{
			{ID: "kayla", Name: "Kayla"},
			{ID: "kayla_2", Name: "kayla "},
			{ID: "bystander", Name: "Bystander"},
		},
		[]*model.Event{{ID: "murder", Date: when, Description: "Kayla murdered", Participants: []string{"kayla"}}},
		nil,
	)

	report, err := Run(st)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var orphans, duplicates []string
	for _, issue := range report.Issues {
		switch issue.Code {
		case codeOrphanedEntity:
			orphans = append(orphans, issue.Record)
		case codeDuplicateName:
			duplicates = append(duplicates, issue.Record)
		}
	}
	if len(orphans) != 1 || orphans[0] != "bystander" {
		t.Fatalf("expected bystander orphaned, got %v", orphans)
	}
	if len(duplicates) != 2 {
		t.Fatalf("expected two duplicate name issues, got %v", duplicates)
	}
	if report.HasErrors() {
		t.Fatalf("expected warnings only")
	}
}

func TestRun_NilStore(t *testing.T) {
	if _, err := Run(nil); err == nil {
		t.Fatalf("expected error")
	}
}

func findIssue(issues []Issue, code string) (Issue, bool) {
	for _, issue := range issues {
		if issue.Code == code {
			return issue, true
		}
	}
	return Issue{}, false
}
