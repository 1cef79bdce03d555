package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"casegraph/internal/config"
	"casegraph/internal/framework"
	"casegraph/internal/store"
)

var asOf = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRun_LoadsRecords(t *testing.T) {
	st := store.New()
	result, err := Run(context.Background(), testProjectConfig(t), testRules(t), st, Options{AsOf: asOf})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := store.Counts{Entities: 3, Events: 2, Flows: 1}
	if result.Loaded != want {
		t.Fatalf("expected %+v loaded, got %+v", want, result.Loaded)
	}

	court, ok := st.Event("court")
	if !ok {
		t.Fatalf("expected court event")
	}
	if court.Description != "Filed coercive court application demanding medical testing." {
		t.Fatalf("expected body as description, got %q", court.Description)
	}
	if court.Status != "speculative" {
		t.Fatalf("expected speculative status, got %q", court.Status)
	}
	if !court.Date.Equal(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", court.Date)
	}

	regima, _ := st.Entity("regima")
	if regima.Kind != "organization" {
		t.Fatalf("expected organization, got %q", regima.Kind)
	}
	daniel, _ := st.Entity("daniel")
	if daniel.Status != "partial" || daniel.Profile != nil {
		t.Fatalf("unexpected daniel: %+v", daniel)
	}

	payment, ok := st.Flow("payment")
	if !ok {
		t.Fatalf("expected payment flow")
	}
	if payment.Magnitude != 250000 || payment.Source != "peter" {
		t.Fatalf("unexpected flow: %+v", payment)
	}
}

func TestRun_BuildsProfiles(t *testing.T) {
	st := store.New()
	if _, err := Run(context.Background(), testProjectConfig(t), testRules(t), st, Options{AsOf: asOf}); err != nil {
		t.Fatalf("run: %v", err)
	}

	peter, _ := st.Entity("peter")
	if peter.Profile == nil {
		t.Fatalf("expected profile")
	}
	p := peter.Profile
	if p.Traits.EthicalCompliance != 0.2 {
		t.Fatalf("expected trait override, got %v", p.Traits.EthicalCompliance)
	}
	if p.Traits.LegalAggression != 0.9 {
		t.Fatalf("expected preset trait, got %v", p.Traits.LegalAggression)
	}
	if len(p.Rules) != 3 {
		t.Fatalf("expected preset rules, got %v", p.Rules)
	}
	if p.Goals[len(p.Goals)-1] != "Recover control of the trust accounts" {
		t.Fatalf("expected extra goal, got %v", p.Goals)
	}
	if p.RelationshipStrength("regima") != 0.9 {
		t.Fatalf("expected relationship, got %v", p.State.Relationships)
	}

	if !reflect.DeepEqual(p.State.Events, []string{"court"}) {
		t.Fatalf("expected participation, got %v", p.State.Events)
	}
	if len(p.History) != 1 || p.History[0].EventID != "court" || !p.History[0].At.Equal(asOf.AddDate(0, 3, 9)) {
		t.Fatalf("unexpected history %+v", p.History)
	}
	if !p.History[0].State.Timestamp.Equal(asOf) {
		t.Fatalf("expected initial timestamp in history, got %v", p.History[0].State.Timestamp)
	}
}

func TestRun_SkipsMalformedRecords(t *testing.T) {
	st := store.New()
	result, err := Run(context.Background(), testProjectConfig(t), testRules(t), st, Options{AsOf: asOf})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	skipped := make(map[string]string)
	for _, s := range result.Skipped {
		skipped[filepath.Base(s.Path)] = s.Kind
	}
	want := map[string]string{
		"bad_flow.md":       "flow",
		"bad_trait.md":      "entity",
		"unknown_preset.md": "entity",
		"notes.md":          "document",
	}
	if !reflect.DeepEqual(skipped, want) {
		t.Fatalf("expected skips %v, got %v", want, skipped)
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %v", result.Errors)
	}
	for _, id := range []string{"bad_flow", "bad_trait", "unknown_preset", "draft"} {
		if _, ok := st.Entity(id); ok {
			t.Fatalf("did not expect entity %s", id)
		}
		if _, ok := st.Flow(id); ok {
			t.Fatalf("did not expect flow %s", id)
		}
	}
}

func TestRun_ExtractsFromText(t *testing.T) {
	st := store.New()
	result, err := Run(context.Background(), testProjectConfig(t), testRules(t), st, Options{AsOf: asOf})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Extracted != (store.Counts{Entities: 1, Events: 2}) {
		t.Fatalf("unexpected extraction counts %+v", result.Extracted)
	}
	event, ok := st.Event("event_0_20250325")
	if !ok {
		t.Fatalf("expected extracted event")
	}
	if !reflect.DeepEqual(event.Participants, []string{"daniel_faucitt"}) {
		t.Fatalf("unexpected participants %v", event.Participants)
	}
	if _, ok := st.Event("event_1_20250410"); !ok {
		t.Fatalf("expected second extracted event")
	}
	if _, ok := st.Entity("daniel_faucitt"); !ok {
		t.Fatalf("expected extracted entity")
	}
}

func TestRun_RecordsSourceHashes(t *testing.T) {
	result, err := Run(context.Background(), testProjectConfig(t), testRules(t), store.New(), Options{AsOf: asOf})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Sources) != 11 {
		t.Fatalf("expected 11 sources, got %d", len(result.Sources))
	}
	path := filepath.Join("testdata", "case", "peter.md")
	hash, err := computeHash(path)
	if err != nil {
		t.Fatalf("compute hash: %v", err)
	}
	if result.Sources[path] != hash {
		t.Fatalf("expected hash for %s", path)
	}
	for path := range result.Sources {
		if strings.Contains(path, "drafts") {
			t.Fatalf("expected drafts to be excluded, got %s", path)
		}
	}
}

func TestRun_LoadsEventWithoutDescription(t *testing.T) {
	dir := t.TempDir()
	bare := "---\ntype: event\nid: bare\ndate: 2025-02-01\nparticipants: [peter]\n---\n"
	if err := os.WriteFile(filepath.Join(dir, "bare.md"), []byte(bare), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg := testProjectConfig(t)
	cfg.Case.Paths = []string{dir}
	cfg.Case.Exclude = nil

	st := store.New()
	result, err := Run(context.Background(), cfg, testRules(t), st, Options{AsOf: asOf})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Errors) != 0 || len(result.Skipped) != 0 {
		t.Fatalf("expected clean load, got skipped=%v errors=%v", result.Skipped, result.Errors)
	}
	event, ok := st.Event("bare")
	if !ok {
		t.Fatalf("expected bare event loaded")
	}
	if event.Description != "" {
		t.Fatalf("expected empty description, got %q", event.Description)
	}

	analyzer := framework.New(testRules(t), config.DefaultAnalysis())
	if _, err := analyzer.Analyze(context.Background(), st); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	event, _ = st.Event("bare")
	if !reflect.DeepEqual(event.LegalCategories, []string{"general"}) {
		t.Fatalf("expected general category, got %v", event.LegalCategories)
	}
	if event.CriminalSignificance != 0 || event.CommercialSignificance != 0 {
		t.Fatalf("expected zero significance, got %v/%v", event.CriminalSignificance, event.CommercialSignificance)
	}
}

func TestRun_DuplicateIdentifier(t *testing.T) {
	st := store.New()
	if _, err := Run(context.Background(), testProjectConfig(t), testRules(t), st, Options{AsOf: asOf}); err != nil {
		t.Fatalf("run: %v", err)
	}
	result, err := Run(context.Background(), testProjectConfig(t), testRules(t), st, Options{AsOf: asOf})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Loaded != (store.Counts{}) {
		t.Fatalf("expected nothing loaded twice, got %+v", result.Loaded)
	}
	found := false
	for _, err := range result.Errors {
		if errors.Is(err, store.ErrDuplicateID) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected duplicate identifier errors, got %v", result.Errors)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, testProjectConfig(t), testRules(t), store.New(), Options{AsOf: asOf})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestRun_MissingPath(t *testing.T) {
	cfg := testProjectConfig(t)
	cfg.Case.Paths = []string{filepath.Join(t.TempDir(), "missing")}
	if _, err := Run(context.Background(), cfg, testRules(t), store.New(), Options{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		value string
		want  time.Time
	}{
		{value: "2025-04-10", want: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)},
		{value: "2025-04-10T09:30:00Z", want: time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)},
		{value: "2025-04-10 09:30:00", want: time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			got, err := parseDate(tc.value)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
	if _, err := parseDate("next Tuesday"); err == nil {
		t.Fatalf("expected error")
	}
}

func testProjectConfig(t *testing.T) *config.ProjectConfig {
	t.Helper()
	root := filepath.Join("testdata", "case")
	return &config.ProjectConfig{
		Project: "test",
		Version: 1,
		Case: config.CaseConfig{
			ID:      "test",
			Paths:   []string{root},
			Exclude: []string{filepath.Join(root, "drafts")},
		},
	}
}

func testRules(t *testing.T) *config.Rules {
	t.Helper()
	rules, err := config.DefaultRules()
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	return rules
}
