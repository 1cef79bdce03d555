package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type RecordKind string

const (
	KindEntity RecordKind = "entity"
	KindEvent  RecordKind = "event"
	KindFlow   RecordKind = "flow"
)

// Document is a case record written as markdown with YAML frontmatter.
type Document struct {
	Frontmatter map[string]any
	Kind        RecordKind
	ID          string
	Body        string
	SourceFile  string

	raw []byte
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingID     = errors.New("frontmatter missing required 'id' field")
	ErrMissingType   = errors.New("frontmatter missing required 'type' field")
	ErrUnknownType   = errors.New("frontmatter 'type' must be entity, event or flow")
)

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

func Parse(content []byte) (*Document, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return nil, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("---\n"))
	if end == -1 {
		return nil, ErrNoFrontmatter
	}

	yamlBytes := rest[:end]
	body := strings.TrimSpace(string(rest[end+len("---\n"):]))

	var frontmatter map[string]any
	if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
		return nil, ErrInvalidYAML
	}

	kind, ok := frontmatter["type"].(string)
	if !ok || strings.TrimSpace(kind) == "" {
		return nil, ErrMissingType
	}
	recordKind, err := parseKind(kind)
	if err != nil {
		return nil, err
	}

	id, err := scalarString(frontmatter["id"])
	if err != nil || strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}

	return &Document{
		Frontmatter: frontmatter,
		Kind:        recordKind,
		ID:          strings.TrimSpace(id),
		Body:        body,
		raw:         yamlBytes,
	}, nil
}

// Decode unmarshals the frontmatter into v.
func (d *Document) Decode(v any) error {
	if err := yaml.Unmarshal(d.raw, v); err != nil {
		return fmt.Errorf("decoding %s frontmatter: %w", d.Kind, err)
	}
	return nil
}

func parseKind(value string) (RecordKind, error) {
	switch RecordKind(strings.ToLower(strings.TrimSpace(value))) {
	case KindEntity:
		return KindEntity, nil
	case KindEvent:
		return KindEvent, nil
	case KindFlow:
		return KindFlow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, value)
	}
}

// scalarString accepts numeric identifiers as well as strings.
func scalarString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int, int64, uint64, float64:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("identifier must be a scalar")
	}
}
