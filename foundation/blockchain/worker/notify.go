package worker

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// maxTxShareRequests represents the max number of pending tx network share
// requests that can be outstanding before share requests are dropped. To keep
// this simple, a buffered channel of this arbitrary number is being used. If
// the channel does become full, requests for new transactions to be shared
// will not be accepted.
const maxTxShareRequests = 100

// =============================================================================

// shareTxOperations handles sharing new transactions.
func (w *Worker) shareTxOperations() {
	w.evHandler("worker: shareTxOperations: G started")
	defer w.evHandler("worker: shareTxOperations: G completed")

	for {
		select {
		case tx := <-w.txSharing:
			if !w.isShutdown() {
				w.runShareTxOperation(tx)
			}
		case <-w.shut:
			w.evHandler("worker: shareTxOperations: received shut signal")
			return
		}
	}
}

// runShareTxOperation shares a new transaction with the known peers.
func (w *Worker) runShareTxOperation(tx database.SignedTx) {
	w.evHandler("worker: runShareTxOperation: started")
	defer w.evHandler("worker: runShareTxOperation: completed")

	w.state.NetSendTxToPeers(w.ctx, tx)
}

// notifyOperations handles telling peers a block was mined.
func (w *Worker) notifyOperations() {
	w.evHandler("worker: notifyOperations: G started")
	defer w.evHandler("worker: notifyOperations: G completed")

	for {
		select {
		case <-w.clearPool:
			if !w.isShutdown() {
				w.state.NetSendClearPool(w.ctx)
			}
		case <-w.consensus:
			if !w.isShutdown() {
				w.state.NetRequestConsensus(w.ctx)
			}
		case <-w.shut:
			w.evHandler("worker: notifyOperations: received shut signal")
			return
		}
	}
}
