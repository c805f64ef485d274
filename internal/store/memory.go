package store

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"property-hierarchy/internal/common"
	"property-hierarchy/internal/hierarchy"
)

// MemoryStore keeps the node collection in a mutex-guarded map. A single
// mutation lock serializes every Mutate call, which makes the capacity
// check and the following insert/update one atomic unit; operations on the
// same parent can never race each other. Snapshots are written through the
// attached persister on every successful commit.
type MemoryStore struct {
	mu        sync.RWMutex
	nodes     map[string]*hierarchy.Node
	persister SnapshotPersister
}

// NewMemoryStore creates an empty store. persister may be nil, in which
// case the store is purely in-memory.
func NewMemoryStore(persister SnapshotPersister) *MemoryStore {
	return &MemoryStore{
		nodes:     make(map[string]*hierarchy.Node),
		persister: persister,
	}
}

// Load hydrates the store from the persisted snapshot, if one exists.
func (s *MemoryStore) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	records, found, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}
	if !found {
		log.Println("store: no snapshot found, starting empty")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*hierarchy.Node, len(records))
	for _, r := range records {
		n, err := r.Node()
		if err != nil {
			return err
		}
		s.nodes[n.ID] = n
	}
	log.Printf("store: loaded %d nodes from snapshot", len(s.nodes))
	return nil
}

// FindByID returns the node with the given id.
func (s *MemoryStore) FindByID(id string) (*hierarchy.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findByID(s.nodes, nil, id)
}

// CountWhere counts nodes matching (parent_id, type) and, when active is
// non-nil, the tenancy-active flag.
func (s *MemoryStore) CountWhere(parentID string, t hierarchy.NodeType, active *bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countWhere(s.nodes, nil, parentID, t, active)
}

// ExistsWhere reports whether any node other than excludeID matches
// (parent_id, type, active).
func (s *MemoryStore) ExistsWhere(parentID string, t hierarchy.NodeType, active bool, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return existsWhere(s.nodes, nil, parentID, t, active, excludeID)
}

// Children returns the direct children of parentID ordered by name.
func (s *MemoryStore) Children(parentID string) []*hierarchy.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var children []*hierarchy.Node
	for _, n := range s.nodes {
		if n.ParentID == parentID {
			children = append(children, n.Clone())
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children
}

// All returns a copy of every node in the store.
func (s *MemoryStore) All() []*hierarchy.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*hierarchy.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		all = append(all, n.Clone())
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Height != all[j].Height {
			return all[i].Height < all[j].Height
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// Mutate runs fn under the store's write lock against a staged transaction.
// The merged snapshot is persisted before the staged writes reach the live
// map, so a persistence failure leaves the store untouched.
func (s *MemoryStore) Mutate(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{base: s.nodes, staged: make(map[string]*hierarchy.Node)}
	if err := fn(tx); err != nil {
		return err
	}

	if s.persister != nil {
		records := make([]Record, 0, len(s.nodes)+len(tx.staged))
		for id, n := range s.nodes {
			if _, shadowed := tx.staged[id]; shadowed {
				continue
			}
			records = append(records, RecordFromNode(n))
		}
		for _, n := range tx.staged {
			records = append(records, RecordFromNode(n))
		}
		if err := s.persister.Save(ctx, records); err != nil {
			return common.NewErrorWithCause(common.ErrSnapshotUnavailable,
				"failed to persist snapshot", err)
		}
	}

	for id, n := range tx.staged {
		s.nodes[id] = n
	}
	return nil
}

// memoryTx stages writes on top of the live map. Reads see staged state
// first so a mutation observes its own writes.
type memoryTx struct {
	base   map[string]*hierarchy.Node
	staged map[string]*hierarchy.Node
}

func (tx *memoryTx) FindByID(id string) (*hierarchy.Node, bool) {
	return findByID(tx.base, tx.staged, id)
}

func (tx *memoryTx) CountWhere(parentID string, t hierarchy.NodeType, active *bool) int {
	return countWhere(tx.base, tx.staged, parentID, t, active)
}

func (tx *memoryTx) ExistsWhere(parentID string, t hierarchy.NodeType, active bool, excludeID string) bool {
	return existsWhere(tx.base, tx.staged, parentID, t, active, excludeID)
}

// Insert stages a new node. The uniqueness backstop for active tenancy
// periods lives here as the last line of defense: even if a caller skipped
// engine validation, a second active period under the same property is
// rejected with the same error kind the capacity rule produces.
func (tx *memoryTx) Insert(n *hierarchy.Node) error {
	if _, ok := tx.FindByID(n.ID); ok {
		return common.NewError(common.ErrAlreadyExists,
			fmt.Sprintf("node already exists: %s", n.ID))
	}
	if err := tx.checkActivePeriodBackstop(n); err != nil {
		return err
	}
	tx.staged[n.ID] = n.Clone()
	return nil
}

// Update stages a replacement for an existing node.
func (tx *memoryTx) Update(n *hierarchy.Node) error {
	if _, ok := tx.FindByID(n.ID); !ok {
		return common.ErrNotFoundError(fmt.Sprintf("node not found: %s", n.ID))
	}
	if err := tx.checkActivePeriodBackstop(n); err != nil {
		return err
	}
	tx.staged[n.ID] = n.Clone()
	return nil
}

func (tx *memoryTx) checkActivePeriodBackstop(n *hierarchy.Node) error {
	if !n.ActiveTenancy() {
		return nil
	}
	if tx.ExistsWhere(n.ParentID, hierarchy.TypeTenancyPeriod, true, n.ID) {
		return common.NewError(common.ErrExclusiveActiveTenancy,
			"Only one active tenancy period is allowed per property")
	}
	return nil
}

// Shared query implementations over a base map plus an optional staged
// overlay. Staged entries shadow base entries with the same id.

func findByID(base, staged map[string]*hierarchy.Node, id string) (*hierarchy.Node, bool) {
	if n, ok := staged[id]; ok {
		return n.Clone(), true
	}
	if n, ok := base[id]; ok {
		return n.Clone(), true
	}
	return nil, false
}

func matches(n *hierarchy.Node, parentID string, t hierarchy.NodeType, active *bool) bool {
	if n.ParentID != parentID || n.Type != t {
		return false
	}
	if active != nil && n.ActiveTenancy() != *active {
		return false
	}
	return true
}

func countWhere(base, staged map[string]*hierarchy.Node, parentID string, t hierarchy.NodeType, active *bool) int {
	count := 0
	for id, n := range base {
		if _, shadowed := staged[id]; shadowed {
			continue
		}
		if matches(n, parentID, t, active) {
			count++
		}
	}
	for _, n := range staged {
		if matches(n, parentID, t, active) {
			count++
		}
	}
	return count
}

func existsWhere(base, staged map[string]*hierarchy.Node, parentID string, t hierarchy.NodeType, active bool, excludeID string) bool {
	flag := active
	for id, n := range base {
		if id == excludeID {
			continue
		}
		if _, shadowed := staged[id]; shadowed {
			continue
		}
		if matches(n, parentID, t, &flag) {
			return true
		}
	}
	for id, n := range staged {
		if id == excludeID {
			continue
		}
		if matches(n, parentID, t, &flag) {
			return true
		}
	}
	return false
}
