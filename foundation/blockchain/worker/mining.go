package worker

import (
	"context"
	"errors"

	"github.com/ardanlabs/powchain/foundation/blockchain/state"
)

// miningOperations handles mining. When auto mining is on, a cycle runs
// right away and then on every tick.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	if w.autoMine {
		w.runMiningOperation()
	}

	for {
		select {
		case <-w.miningTicker.Ticks():
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case result := <-w.startMining:
			result <- w.runMiningOperation()
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation mines one block on top of the current chain.
func (w *Worker) runMiningOperation() error {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	_, err := w.state.Mine(w.ctx)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrMiningBusy):
			w.evHandler("worker: runMiningOperation: MINING: WARNING: already mining")
		case errors.Is(err, state.ErrChainChanged):
			w.evHandler("worker: runMiningOperation: MINING: WARNING: %s", err)
		case errors.Is(err, context.Canceled):
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
		default:
			w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		}
		return err
	}

	return nil
}
