package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"casegraph/internal/behavior"
	"casegraph/internal/config"
	"casegraph/internal/logger"
	"casegraph/internal/metrics"
	"casegraph/internal/model"
	"casegraph/internal/parser"
	"casegraph/internal/store"
)

const kindDocument = "document"

// Skip records a file or record left out of the store and why.
type Skip struct {
	Path   string
	Kind   string
	Reason string
}

type Result struct {
	Loaded    store.Counts
	Extracted store.Counts
	Skipped   []Skip
	Sources   map[string]string
	Errors    []error
}

type Options struct {
	// AsOf stamps the initial state of every profile built during the run.
	AsOf time.Time
}

type loaded struct {
	entities []*model.Entity
	events   []*model.Event
	flows    []*model.Flow
	text     []parser.Extraction
}

// Run walks the case paths and loads every record into st. Malformed records
// are skipped and counted; the run only fails when the case paths cannot be
// walked or ctx is cancelled.
func Run(ctx context.Context, cfg *config.ProjectConfig, rules *config.Rules, st *store.Store, options Options) (*Result, error) {
	files, err := walkCaseFiles(cfg.Case.Paths, cfg.Case.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking case files: %w", err)
	}

	result := &Result{Sources: make(map[string]string, len(files))}
	extractor := parser.NewExtractor(cfg.Case.Organizations)
	var batch loaded

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hash, err := computeHash(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("hashing %s: %w", path, err))
			continue
		}
		result.Sources[path] = hash

		if isText(path) {
			data, err := os.ReadFile(path)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", path, err))
				continue
			}
			batch.text = append(batch.text, extractor.Extract(string(data)))
			continue
		}

		doc, err := parser.ParseFile(path)
		if err != nil {
			result.skip(path, kindDocument, err.Error())
			if errors.Is(err, parser.ErrNoFrontmatter) || errors.Is(err, parser.ErrMissingType) {
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}

		if err := batch.add(doc, rules, options.AsOf); err != nil {
			result.skip(path, string(doc.Kind), err.Error())
			result.Errors = append(result.Errors, fmt.Errorf("loading %s: %w", path, err))
		}
	}

	result.apply(st, batch)
	RecordParticipation(st)

	logger.Info("ingest complete",
		"entities", result.Loaded.Entities,
		"events", result.Loaded.Events,
		"flows", result.Loaded.Flows,
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func (b *loaded) add(doc *parser.Document, rules *config.Rules, asOf time.Time) error {
	switch doc.Kind {
	case parser.KindEntity:
		var rec entityRecord
		if err := decodeValid(doc, &rec); err != nil {
			return err
		}
		entity, err := rec.toEntity(rules, asOf)
		if err != nil {
			return err
		}
		b.entities = append(b.entities, entity)
	case parser.KindEvent:
		var rec eventRecord
		if err := decodeValid(doc, &rec); err != nil {
			return err
		}
		event, err := rec.toEvent()
		if err != nil {
			return err
		}
		if event.Description == "" {
			event.Description = strings.TrimSpace(doc.Body)
		}
		b.events = append(b.events, event)
	case parser.KindFlow:
		var rec flowRecord
		if err := decodeValid(doc, &rec); err != nil {
			return err
		}
		flow, err := rec.toFlow()
		if err != nil {
			return err
		}
		b.flows = append(b.flows, flow)
	}
	return nil
}

func decodeValid(doc *parser.Document, v any) error {
	if err := doc.Decode(v); err != nil {
		return err
	}
	if err := recordValidate.Struct(v); err != nil {
		return fmt.Errorf("validating %s %s: %w", doc.Kind, doc.ID, err)
	}
	return nil
}

// apply writes structured records first so that text extraction never
// shadows an identifier a record file declares.
func (r *Result) apply(st *store.Store, b loaded) {
	for _, e := range b.entities {
		r.addRecord(string(parser.KindEntity), e.ID, st.AddEntity(e), &r.Loaded.Entities)
	}
	for _, e := range b.events {
		r.addRecord(string(parser.KindEvent), e.ID, st.AddEvent(e), &r.Loaded.Events)
	}
	for _, f := range b.flows {
		r.addRecord(string(parser.KindFlow), f.ID, st.AddFlow(f), &r.Loaded.Flows)
	}

	for _, x := range b.text {
		for _, c := range x.Entities {
			if _, exists := st.Entity(c.ID); exists {
				continue
			}
			kind, err := model.ParseEntityKind(c.Kind)
			if err != nil {
				continue
			}
			entity := &model.Entity{ID: c.ID, Name: c.Name, Kind: kind, Status: model.DefaultStatus}
			if err := st.AddEntity(entity); err == nil {
				r.Extracted.Entities++
				metrics.RecordLoaded(string(parser.KindEntity))
			}
		}
		for _, line := range x.Events {
			if _, exists := st.Event(line.ID); exists {
				continue
			}
			event := &model.Event{
				ID:           line.ID,
				Date:         line.Date,
				Description:  line.Text,
				Participants: slices.Clone(line.Mentions),
				Status:       model.DefaultStatus,
				Kind:         model.EventGeneral,
			}
			if err := st.AddEvent(event); err == nil {
				r.Extracted.Events++
				metrics.RecordLoaded(string(parser.KindEvent))
			}
		}
	}
}

func (r *Result) addRecord(kind, id string, err error, counter *int) {
	if err != nil {
		r.skip(id, kind, err.Error())
		r.Errors = append(r.Errors, fmt.Errorf("adding %s %s: %w", kind, id, err))
		return
	}
	*counter++
	metrics.RecordLoaded(kind)
	logger.Debug("record loaded", "kind", kind, "id", id)
}

func (r *Result) skip(path, kind, reason string) {
	r.Skipped = append(r.Skipped, Skip{Path: path, Kind: kind, Reason: reason})
	metrics.RecordSkipped(kind)
	logger.Warn("record skipped", "path", path, "kind", kind, "reason", reason)
}

// RecordParticipation replays every event, in date order, into the profile
// of each participant that has one.
func RecordParticipation(st *store.Store) {
	for _, event := range st.Events() {
		for _, id := range event.Participants {
			entity, ok := st.Entity(id)
			if !ok || entity.Profile == nil {
				continue
			}
			entity.Profile.UpdateState(event.ID, behavior.StateChange{}, event.Date)
		}
	}
}

func isText(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}

func walkCaseFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(d.Name())) {
			case ".md", ".txt":
			default:
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func computeHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
