// Package snapshot persists parsed configuration snapshots so that what a
// process read from a file can be audited later.
package snapshot

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/flatyml/pkg/flatyml"
)

// Store persists snapshots keyed by a generated ID.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores snap for source and returns its metadata.
	// Each save creates a new snapshot; nothing is overwritten.
	Save(source string, snap flatyml.Snapshot) (Info, error)

	// Load retrieves a snapshot by ID.
	// Returns ErrNotFound if the ID is unknown.
	Load(id string) (flatyml.Snapshot, error)

	// List returns all snapshots of source, ordered by sequence.
	// Returns empty slice (not error) if source has no snapshots.
	List(source string) ([]Info, error)

	// Delete removes a snapshot.
	// Returns nil if the snapshot doesn't exist.
	Delete(id string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes a stored snapshot without loading it.
type Info struct {
	ID        string
	Source    string
	Sequence  int
	Timestamp time.Time
	Entries   int
}

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound indicates a snapshot doesn't exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("snapshot store closed")
)

func newID() string {
	return uuid.NewString()
}

// encode serializes a snapshot as a flat YAML mapping, which keeps value
// kinds and entry order.
func encode(snap flatyml.Snapshot) ([]byte, error) {
	return yaml.Marshal(snap)
}

func decode(data []byte) (flatyml.Snapshot, error) {
	var snap flatyml.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}
