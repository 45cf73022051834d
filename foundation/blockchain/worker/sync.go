package worker

import (
	"errors"

	"github.com/ardanlabs/powchain/foundation/blockchain/state"
)

// syncOperations handles refreshing the set of neighbours.
func (w *Worker) syncOperations() {
	w.evHandler("worker: syncOperations: G started")
	defer w.evHandler("worker: syncOperations: G completed")

	for {
		select {
		case <-w.syncTicker.Ticks():
			if !w.isShutdown() {
				w.runSyncOperation()
			}
		case <-w.shut:
			w.evHandler("worker: syncOperations: received shut signal")
			return
		}
	}
}

// runSyncOperation updates the neighbour list.
func (w *Worker) runSyncOperation() {
	w.evHandler("worker: runSyncOperation: started")
	defer w.evHandler("worker: runSyncOperation: completed")

	if _, err := w.state.SyncNeighbours(w.ctx); err != nil {
		switch {
		case errors.Is(err, state.ErrSyncBusy):
			w.evHandler("worker: runSyncOperation: WARNING: already syncing")
		default:
			w.evHandler("worker: runSyncOperation: ERROR: %s", err)
		}
		return
	}

	w.evHandler("worker: runSyncOperation: neighbours[%v]", w.state.RetrieveKnownPeers())
}
