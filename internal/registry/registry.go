// Package registry holds the hub's set of registered peers.
package registry

import (
	"maps"
	"net"
	"sync"
	"time"
)

// PeerID is the integer identifier a peer puts in its control messages.
type PeerID int64

// PeerRecord is what the hub knows about a registered peer. Addr is the source address of the most
// recent registration datagram, not anything the peer claimed in the payload.
type PeerRecord struct {
	Addr         net.Addr
	RegisteredAt time.Time
}

// Registry maps peer IDs to their records. Every method holds the same mutex for the duration of a
// map copy or mutation and nothing else, so no I/O ever happens under the lock.
type Registry struct {
	mu    sync.Mutex
	peers map[PeerID]PeerRecord
	now   func() time.Time
}

func New() *Registry {
	return &Registry{
		peers: make(map[PeerID]PeerRecord),
		now:   time.Now,
	}
}

// Register inserts the peer or overwrites its address (last write wins).
func (r *Registry) Register(id PeerID, addr net.Addr) {
	r.mu.Lock()
	r.peers[id] = PeerRecord{Addr: addr, RegisteredAt: r.now()}
	r.mu.Unlock()
}

// Unregister removes the peer and reports whether it was registered.
func (r *Registry) Unregister(id PeerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.peers[id]; !ok {
		return false
	}
	delete(r.peers, id)
	return true
}

// Snapshot returns a copy of the registry that the caller owns and can iterate without locking.
func (r *Registry) Snapshot() map[PeerID]PeerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.peers)
}

func (r *Registry) Lookup(id PeerID) (PeerRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.peers[id]
	return record, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}
