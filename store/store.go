// Package store holds analysis results keyed by reference id. The
// detectors never touch it; the API layer reads and writes snapshots
// around each operation.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stemscope/stemscope/structure"
)

// Snapshot is everything known about one analyzed reference. Raw
// holds the pre-clustering motif instances so a re-cluster with a new
// sensitivity works from this run's own copy and never aliases
// another run's records.
type Snapshot struct {
	ReferenceID string `json:"reference_id"`
	RunID       string `json:"run_id"`

	StemSet *structure.StemSet `json:"-"`

	Regions   []*structure.Region           `json:"regions,omitempty"`
	Instances []*structure.MotifInstance    `json:"motif_instances,omitempty"`
	Groups    []*structure.MotifGroup       `json:"motif_groups,omitempty"`
	Raw       []*structure.MotifInstance    `json:"-"`
	Pairs     []*structure.CallResponsePair `json:"call_response_pairs,omitempty"`
	Fills     []*structure.Fill             `json:"fills,omitempty"`

	Sensitivity structure.SensitivityConfig `json:"sensitivity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRunID mints an identifier for one analysis run.
func NewRunID() string {
	return uuid.NewString()
}

// Store is the caller-managed result map behind the API layer.
type Store interface {
	Get(referenceID string) (*Snapshot, bool)
	Put(snapshot *Snapshot)
	Has(referenceID string) bool
	Delete(referenceID string)
	List() []string
}

// MemoryStore is an in-memory Store safe for concurrent analysis
// runs.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*Snapshot)}
}

func (s *MemoryStore) Get(referenceID string) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[referenceID]
	return snapshot, ok
}

func (s *MemoryStore) Put(snapshot *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.snapshots[snapshot.ReferenceID]; ok {
		snapshot.CreatedAt = existing.CreatedAt
	} else {
		snapshot.CreatedAt = now
	}
	snapshot.UpdatedAt = now
	s.snapshots[snapshot.ReferenceID] = snapshot
}

func (s *MemoryStore) Has(referenceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.snapshots[referenceID]
	return ok
}

func (s *MemoryStore) Delete(referenceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, referenceID)
}

func (s *MemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
