package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketSessions = "sessions"

// Lifecycle events recorded in the journal.
const (
	EventConnected     = "connected"
	EventDisconnected  = "disconnected"
	EventEngineStarted = "engine_started"
	EventEngineStopped = "engine_stopped"
)

// Entry is one journaled lifecycle event.
type Entry struct {
	Time   time.Time `json:"time"`
	Event  string    `json:"event"`
	Detail string    `json:"detail,omitempty"`
}

// Journal is an append-only record of supervisor and engine lifecycle
// events, kept so connect/disconnect churn can be inspected after the
// fact.
type Journal struct {
	db *bolt.DB
}

// Open opens the journal database, creating it and its bucket if
// needed.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(txn *bolt.Tx) error {
		_, err := txn.CreateBucketIfNotExists([]byte(bucketSessions))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Append records one event. Keys are nanosecond timestamps so entries
// iterate in order.
func (j *Journal) Append(event, detail string) error {
	entry := Entry{Time: time.Now(), Event: event, Detail: detail}
	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := []byte(fmt.Sprintf("%020d", entry.Time.UnixNano()))

	return j.db.Update(func(txn *bolt.Tx) error {
		return txn.Bucket([]byte(bucketSessions)).Put(key, value)
	})
}

// List returns every journaled event, oldest first.
func (j *Journal) List() ([]Entry, error) {
	var entries []Entry
	err := j.db.View(func(txn *bolt.Tx) error {
		return txn.Bucket([]byte(bucketSessions)).ForEach(func(_, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	})
	return entries, err
}
