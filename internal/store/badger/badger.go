package badger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"casegraph/internal/model"
	"casegraph/internal/store"
)

var ErrCaseNotFound = errors.New("case not found")

type Config struct {
	Path       string
	InMemory   bool
	SyncWrites bool
}

// Snapshots persists store snapshots, one key per record, so that a case can
// be analyzed again without re-ingesting its sources.
type Snapshots struct {
	db *badger.DB
}

type meta struct {
	CaseID string       `json:"case_id"`
	Counts store.Counts `json:"counts"`
}

func Open(cfg Config) (*Snapshots, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent snapshots")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create snapshot directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Snapshots{db: db}, nil
}

func (s *Snapshots) Close() error {
	return s.db.Close()
}

func casePrefix(caseID string) []byte {
	return []byte("case/" + caseID + "/")
}

func recordKey(caseID, kind, id string) []byte {
	return []byte("case/" + caseID + "/" + kind + "/" + id)
}

func metaKey(caseID string) []byte {
	return []byte("case/" + caseID + "/meta")
}

// Save replaces everything stored for the snapshot's case.
func (s *Snapshots) Save(ctx context.Context, snap store.Snapshot) error {
	if strings.TrimSpace(snap.CaseID) == "" || strings.Contains(snap.CaseID, "/") {
		return fmt.Errorf("invalid case id %q", snap.CaseID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, casePrefix(snap.CaseID)); err != nil {
			return err
		}

		m := meta{CaseID: snap.CaseID, Counts: store.Counts{
			Entities: len(snap.Entities),
			Events:   len(snap.Events),
			Flows:    len(snap.Flows),
		}}
		if err := setJSON(txn, metaKey(snap.CaseID), m); err != nil {
			return err
		}
		for _, e := range snap.Entities {
			if err := setJSON(txn, recordKey(snap.CaseID, "entity", e.ID), e); err != nil {
				return err
			}
		}
		for _, e := range snap.Events {
			if err := setJSON(txn, recordKey(snap.CaseID, "event", e.ID), e); err != nil {
				return err
			}
		}
		for _, f := range snap.Flows {
			if err := setJSON(txn, recordKey(snap.CaseID, "flow", f.ID), f); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Snapshots) Load(ctx context.Context, caseID string) (store.Snapshot, error) {
	snap := store.Snapshot{CaseID: caseID}
	if err := ctx.Err(); err != nil {
		return snap, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(metaKey(caseID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%s: %w", caseID, ErrCaseNotFound)
			}
			return err
		}

		prefix := casePrefix(caseID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			kind, _, ok := strings.Cut(string(bytes.TrimPrefix(item.Key(), prefix)), "/")
			if !ok {
				continue
			}
			var err error
			switch kind {
			case "entity":
				var e model.Entity
				if err = readJSON(item, &e); err == nil {
					snap.Entities = append(snap.Entities, &e)
				}
			case "event":
				var e model.Event
				if err = readJSON(item, &e); err == nil {
					snap.Events = append(snap.Events, &e)
				}
			case "flow":
				var f model.Flow
				if err = readJSON(item, &f); err == nil {
					snap.Flows = append(snap.Flows, &f)
				}
			}
			if err != nil {
				return fmt.Errorf("decoding %s: %w", item.Key(), err)
			}
		}
		return nil
	})
	return snap, err
}

// Cases lists every case with a saved snapshot.
func (s *Snapshots) Cases() ([]string, error) {
	var cases []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte("case/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			caseID, ok := strings.CutSuffix(strings.TrimPrefix(key, "case/"), "/meta")
			if ok && !strings.Contains(caseID, "/") {
				cases = append(cases, caseID)
			}
		}
		return nil
	})
	return cases, err
}

func (s *Snapshots) Delete(ctx context.Context, caseID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return deletePrefix(txn, casePrefix(caseID))
	})
}

func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return txn.Set(key, data)
}

func readJSON(item *badger.Item, v any) error {
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}
