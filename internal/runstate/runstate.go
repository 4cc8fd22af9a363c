// Package runstate records bookkeeping about the CLI's previous invocation
// across process runs: when it ran, what graph it built, and which
// non-fatal check errors it saw. It is deliberately separate from the
// engine's own in-memory state (piebuild.Pie keeps no disk footprint) —
// this package exists only so `piebuild watch` can warn about check errors
// a prior run already surfaced, grounded on the teacher's
// internal/recovery/state.Store ("persistent storage for execution state")
// generalized from an atomic-JSON-file store to bbolt.
package runstate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var runsBucket = []byte("runs")

// Record is one CLI invocation's bookkeeping entry.
type Record struct {
	RunID       string    `json:"run_id"`
	Timestamp   time.Time `json:"timestamp"`
	GraphHash   string    `json:"graph_hash"`
	CheckErrors []string  `json:"check_errors,omitempty"`
}

// Store persists Records in a bbolt database at path.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the run-state database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("runstate: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("runstate: init bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error { return s.db.Close() }

// RecordRun stores a new Record, stamping it with a fresh run ID and the
// current time, and returns the stamped record.
func (s *Store) RecordRun(graphHash string, checkErrors []string) (Record, error) {
	rec := Record{
		RunID:       uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		GraphHash:   graphHash,
		CheckErrors: checkErrors,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("runstate: marshal record: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		return b.Put([]byte(rec.RunID), data)
	})
	if err != nil {
		return Record{}, fmt.Errorf("runstate: put record: %w", err)
	}
	return rec, nil
}

// LastRun returns the most recently recorded Record, or ok=false if the
// store has never recorded a run.
func (s *Store) LastRun() (rec Record, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		c := b.Cursor()
		var latest Record
		found := false
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var r Record
			if jerr := json.Unmarshal(v, &r); jerr != nil {
				continue
			}
			if !found || r.Timestamp.After(latest.Timestamp) {
				latest = r
				found = true
			}
		}
		if found {
			rec = latest
			ok = true
		}
		return nil
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("runstate: scan records: %w", err)
	}
	return rec, ok, nil
}
