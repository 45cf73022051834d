// Package worker implements mining, neighbour sync, and peer notifications
// for the blockchain.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/lightningnetwork/lnd/ticker"
)

// Default intervals for re-running the mining and neighbour sync cycles.
const (
	DefaultMiningInterval = 20 * time.Second
	DefaultSyncInterval   = 20 * time.Second
)

// ErrShutdown is returned when work is requested from a worker that is
// shutting down.
var ErrShutdown = errors.New("worker is shutting down")

// Config represents the settings for the background cycles. The tickers
// can be provided to take control of when the cycles run.
type Config struct {
	MiningInterval time.Duration
	SyncInterval   time.Duration
	AutoMine       bool
	MiningTicker   ticker.Ticker
	SyncTicker     ticker.Ticker
}

// =============================================================================

// Worker manages the POW workflows for the blockchain.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	miningTicker ticker.Ticker
	syncTicker   ticker.Ticker
	autoMine     bool
	shut         chan struct{}
	startMining  chan chan error
	clearPool    chan bool
	consensus    chan bool
	txSharing    chan database.SignedTx
	evHandler    state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes. Before the cycles start the node
// finds its neighbours and adopts the longest valid chain among them.
func Run(st *state.State, evHandler state.EventHandler, cfg Config) *Worker {
	if cfg.MiningInterval <= 0 {
		cfg.MiningInterval = DefaultMiningInterval
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = DefaultSyncInterval
	}
	if cfg.MiningTicker == nil {
		cfg.MiningTicker = ticker.New(cfg.MiningInterval)
	}
	if cfg.SyncTicker == nil {
		cfg.SyncTicker = ticker.New(cfg.SyncInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		state:        st,
		ctx:          ctx,
		cancel:       cancel,
		miningTicker: cfg.MiningTicker,
		syncTicker:   cfg.SyncTicker,
		autoMine:     cfg.AutoMine,
		shut:         make(chan struct{}),
		startMining:  make(chan chan error),
		clearPool:    make(chan bool, 1),
		consensus:    make(chan bool, 1),
		txSharing:    make(chan database.SignedTx, maxTxShareRequests),
		evHandler:    evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.runSyncOperation()
	w.state.ResolveConflicts(w.ctx)

	// The tickers must be running before the G's ask them for their channel.
	w.syncTicker.Resume()
	if w.autoMine {
		w.miningTicker.Resume()
	}

	// Load the set of operations we need to run.
	operations := []func(){
		w.syncOperations,
		w.miningOperations,
		w.shareTxOperations,
		w.notifyOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop tickers")
	w.miningTicker.Stop()
	w.syncTicker.Stop()

	w.evHandler("worker: shutdown: cancel mining and peer requests")
	w.cancel()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// RunMining asks the mining G to run a cycle now and waits for the result.
// When the G is already busy with a cycle, state.ErrMiningBusy is returned
// right away. The proof of work keeps running if the caller stops waiting.
func (w *Worker) RunMining(ctx context.Context) (bool, error) {
	if w.isShutdown() {
		return false, ErrShutdown
	}

	result := make(chan error, 1)

	select {
	case w.startMining <- result:
	default:
		return false, state.ErrMiningBusy
	}

	select {
	case err := <-result:
		return err == nil, err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// SignalClearPool signals the peers need to clear their pools. If there is
// already a signal pending, the peers will be told anyway.
func (w *Worker) SignalClearPool() {
	select {
	case w.clearPool <- true:
		w.evHandler("worker: SignalClearPool: clear pool signaled")
	default:
	}
}

// SignalConsensus signals the peers need to run conflict resolution.
func (w *Worker) SignalConsensus() {
	select {
	case w.consensus <- true:
		w.evHandler("worker: SignalConsensus: consensus signaled")
	default:
	}
}

// SignalShareTx signals a share transaction operation. If
// maxTxShareRequests signals exist in the channel, we won't send these.
func (w *Worker) SignalShareTx(tx database.SignedTx) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: SignalShareTx: share Tx signaled")
	default:
		w.evHandler("worker: SignalShareTx: queue full, transactions won't be shared.")
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
