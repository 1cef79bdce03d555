package parser

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	t.Run("valid event with full frontmatter", func(t *testing.T) {
		content := []byte("---\ntype: event\nid: court_app\ndate: 2025-04-10\nparticipants: [peter]\nstatus: verified\n---\n\nFiled coercive court application.\n")
		doc, err := Parse(content)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Kind != KindEvent {
			t.Fatalf("expected event, got %q", doc.Kind)
		}
		if doc.ID != "court_app" {
			t.Fatalf("expected id, got %q", doc.ID)
		}
		if doc.Body != "Filed coercive court application." {
			t.Fatalf("unexpected body %q", doc.Body)
		}
		if _, ok := doc.Frontmatter["participants"]; !ok {
			t.Fatalf("expected participants in frontmatter")
		}
	})

	t.Run("type is case insensitive", func(t *testing.T) {
		doc, err := Parse([]byte("---\ntype: Flow\nid: f1\n---\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Kind != KindFlow {
			t.Fatalf("expected flow, got %q", doc.Kind)
		}
		if doc.Body != "" {
			t.Fatalf("expected empty body, got %q", doc.Body)
		}
	})

	t.Run("numeric id", func(t *testing.T) {
		doc, err := Parse([]byte("---\ntype: entity\nid: 42\n---\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.ID != "42" {
			t.Fatalf("expected id 42, got %q", doc.ID)
		}
	})

	t.Run("no frontmatter", func(t *testing.T) {
		_, err := Parse([]byte("Just text"))
		if !errors.Is(err, ErrNoFrontmatter) {
			t.Fatalf("expected ErrNoFrontmatter, got %v", err)
		}
	})

	t.Run("missing closing marker", func(t *testing.T) {
		_, err := Parse([]byte("---\nid: missing\n"))
		if !errors.Is(err, ErrNoFrontmatter) {
			t.Fatalf("expected ErrNoFrontmatter, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("---\nid: [\n---\n"))
		if !errors.Is(err, ErrInvalidYAML) {
			t.Fatalf("expected ErrInvalidYAML, got %v", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := Parse([]byte("---\ntype: entity\n---\n"))
		if !errors.Is(err, ErrMissingID) {
			t.Fatalf("expected ErrMissingID, got %v", err)
		}
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := Parse([]byte("---\nid: something\n---\n"))
		if !errors.Is(err, ErrMissingType) {
			t.Fatalf("expected ErrMissingType, got %v", err)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := Parse([]byte("---\ntype: npc\nid: x\n---\n"))
		if !errors.Is(err, ErrUnknownType) {
			t.Fatalf("expected ErrUnknownType, got %v", err)
		}
	})
}

func TestDecode(t *testing.T) {
	doc, err := Parse([]byte("---\ntype: flow\nid: f1\nsource: peter\nmagnitude: 2500.5\n---\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var rec struct {
		Source    string  `yaml:"source"`
		Magnitude float64 `yaml:"magnitude"`
	}
	if err := doc.Decode(&rec); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Source != "peter" || rec.Magnitude != 2500.5 {
		t.Fatalf("unexpected decode: %+v", rec)
	}
}

func TestParseFile(t *testing.T) {
	doc, err := ParseFile(filepath.Join("testdata", "valid_entity.md"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.ID != "peter" || doc.Kind != KindEntity {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.SourceFile == "" {
		t.Fatalf("expected source file set")
	}
}

func TestParseFile_NoFrontmatter(t *testing.T) {
	_, err := ParseFile(filepath.Join("testdata", "no_frontmatter.md"))
	if !errors.Is(err, ErrNoFrontmatter) {
		t.Fatalf("expected ErrNoFrontmatter, got %v", err)
	}
}

func TestParseFile_MissingType(t *testing.T) {
	_, err := ParseFile(filepath.Join("testdata", "missing_type.md"))
	if !errors.Is(err, ErrMissingType) {
		t.Fatalf("expected ErrMissingType, got %v", err)
	}
}

func TestParse_BOMTrim(t *testing.T) {
	doc, err := Parse([]byte("\uFEFF---\ntype: entity\nid: bom\n---\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.ID != "bom" {
		t.Fatalf("expected id, got %q", doc.ID)
	}
}

func TestParseFile_ReadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected missing file")
	}
	if _, err := ParseFile(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestExtract(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "correspondence.txt"))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	x := NewExtractor([]string{"RegimA Group"})
	got := x.Extract(string(data))

	wantEntities := []Candidate{
		{ID: "regima_group", Name: "RegimA Group", Kind: CandidateOrganization},
		{ID: "daniel_faucitt", Name: "Daniel Faucitt", Kind: CandidatePerson},
		{ID: "peter_faucitt", Name: "Peter Faucitt", Kind: CandidatePerson},
		{ID: "daniel@example.com", Name: "daniel@example.com", Kind: CandidateEmail},
	}
	if !reflect.DeepEqual(got.Entities, wantEntities) {
		t.Fatalf("unexpected entities: %+v", got.Entities)
	}

	wantIDs := []string{"event_0_20250115", "event_1_20250325", "event_2_20250410", "event_3_20250502"}
	if len(got.Events) != len(wantIDs) {
		t.Fatalf("expected %d events, got %+v", len(wantIDs), got.Events)
	}
	for i, id := range wantIDs {
		if got.Events[i].ID != id {
			t.Fatalf("event %d: expected %s, got %s", i, id, got.Events[i].ID)
		}
	}
	if !got.Events[1].Date.Equal(time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got.Events[1].Date)
	}
	if !reflect.DeepEqual(got.Events[1].Mentions, []string{"daniel_faucitt"}) {
		t.Fatalf("unexpected mentions %v", got.Events[1].Mentions)
	}
	if !reflect.DeepEqual(got.Events[2].Mentions, []string{"regima_group", "peter_faucitt"}) {
		t.Fatalf("unexpected mentions %v", got.Events[2].Mentions)
	}
	if got.Events[0].Text != "On 2025-01-15 Kayla was found murdered at the family home." {
		t.Fatalf("unexpected text %q", got.Events[0].Text)
	}

	again := x.Extract("Hearing on 2025-06-01.")
	if len(again.Events) != 1 || again.Events[0].ID != "event_4_20250601" {
		t.Fatalf("expected numbering to continue, got %+v", again.Events)
	}
}

func TestExtractSkipsImpossibleDates(t *testing.T) {
	got := NewExtractor(nil).Extract("Filed on February 30, 2025 and 13/45/2025.")
	if len(got.Events) != 0 {
		t.Fatalf("expected no events, got %+v", got.Events)
	}
	if len(got.Entities) != 0 {
		t.Fatalf("expected no entities, got %+v", got.Entities)
	}
}

func TestSlug(t *testing.T) {
	if got := Slug("  Peter Andrew Faucitt "); got != "peter_andrew_faucitt" {
		t.Fatalf("unexpected slug %q", got)
	}
}
