package parser

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Candidate kinds produced by text extraction.
const (
	CandidatePerson       = "person"
	CandidateOrganization = "organization"
	CandidateEmail        = "communication_channel"
)

type Candidate struct {
	ID   string
	Name string
	Kind string
}

// DatedLine is a line of raw text that carries a recognisable date.
type DatedLine struct {
	ID       string
	Date     time.Time
	Text     string
	Mentions []string
}

type Extraction struct {
	Entities []Candidate
	Events   []DatedLine
}

var (
	namePattern  = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+){1,2}\b`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

type datePattern struct {
	re     *regexp.Regexp
	layout string
}

var datePatterns = []datePattern{
	{re: regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), layout: "2006-01-02"},
	{re: regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), layout: "1/2/2006"},
	{re: regexp.MustCompile(`\b[A-Z][a-z]+ \d{1,2}, \d{4}\b`), layout: "January 2, 2006"},
	{re: regexp.MustCompile(`\b\d{1,2} [A-Z][a-z]+ \d{4}\b`), layout: "2 January 2006"},
}

// Extractor pulls candidate entities and dated events out of unstructured
// text. Event numbering continues across calls so that identifiers stay
// unique within one ingest run.
type Extractor struct {
	organizations []string
	next          int
}

func NewExtractor(organizations []string) *Extractor {
	return &Extractor{organizations: slices.Clone(organizations)}
}

func (x *Extractor) Extract(content string) Extraction {
	out := Extraction{}
	seen := make(map[string]bool)
	add := func(name, kind string) {
		id := Slug(name)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out.Entities = append(out.Entities, Candidate{ID: id, Name: name, Kind: kind})
	}

	for _, org := range x.organizations {
		if org != "" && strings.Contains(content, org) {
			add(org, CandidateOrganization)
		}
	}
	for _, name := range namePattern.FindAllString(content, -1) {
		if isMonthPhrase(name) {
			continue
		}
		add(name, CandidatePerson)
	}
	for _, email := range emailPattern.FindAllString(content, -1) {
		add(email, CandidateEmail)
	}

	for line := range strings.SplitSeq(content, "\n") {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		for _, p := range datePatterns {
			for _, match := range p.re.FindAllString(text, -1) {
				date, err := time.Parse(p.layout, match)
				if err != nil {
					continue
				}
				out.Events = append(out.Events, DatedLine{
					ID:       fmt.Sprintf("event_%d_%s", x.next, date.Format("20060102")),
					Date:     date,
					Text:     text,
					Mentions: mentions(text, out.Entities),
				})
				x.next++
			}
		}
	}
	return out
}

// Slug turns a display name into an identifier.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func mentions(text string, candidates []Candidate) []string {
	var ids []string
	for _, c := range candidates {
		if strings.Contains(text, c.Name) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// isMonthPhrase rejects capitalised runs such as "On January" that belong
// to a written date rather than a name.
func isMonthPhrase(name string) bool {
	for word := range strings.FieldsSeq(name) {
		if _, err := time.Parse("January", word); err == nil {
			return true
		}
	}
	return false
}
