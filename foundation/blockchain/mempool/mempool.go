// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Snapshot is a copy of the pool taken at a point in time. The epoch
// identifies which version of the pool the copy came from.
type Snapshot struct {
	Trans []database.Tx
	Epoch uint64
}

// Mempool represents a cache of transactions kept in the order they were
// added. Duplicates are allowed. The epoch moves forward every time
// transactions leave the pool, so between two reads with the same epoch the
// pool has only grown.
type Mempool struct {
	mu    sync.RWMutex
	pool  []database.Tx
	epoch uint64
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{
		pool: []database.Tx{},
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends the transaction to the end of the pool and returns the
// new size of the pool.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns a copy of the transactions in the pool.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}

// Snapshot returns a copy of the pool with the epoch it belongs to.
func (mp *Mempool) Snapshot() Snapshot {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)

	return Snapshot{
		Trans: cpy,
		Epoch: mp.epoch,
	}
}

// Drain removes and returns every transaction in the pool.
func (mp *Mempool) Drain() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	mp.pool = []database.Tx{}
	mp.epoch++

	return trans
}

// DrainSnapshot removes the transactions held by the snapshot from the front
// of the pool. Anything added after the snapshot was taken stays in the pool.
// It fails when transactions left the pool since the snapshot was taken.
func (mp *Mempool) DrainSnapshot(snap Snapshot) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.epoch != snap.Epoch || len(mp.pool) < len(snap.Trans) {
		return false
	}

	rest := make([]database.Tx, len(mp.pool)-len(snap.Trans))
	copy(rest, mp.pool[len(snap.Trans):])

	mp.pool = rest
	mp.epoch++

	return true
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = []database.Tx{}
	mp.epoch++
}
