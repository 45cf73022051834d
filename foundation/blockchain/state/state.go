// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
	"github.com/lightningnetwork/lnd/clock"
)

// Set of errors returned by the state API.
var (
	ErrMiningBusy          = errors.New("mining already in progress")
	ErrSyncBusy            = errors.New("neighbour sync already in progress")
	ErrChainChanged        = errors.New("chain changed while mining")
	ErrMissingSignature    = errors.New("public key and signature are required")
	ErrInvalidSignature    = errors.New("signature doesn't match the transaction")
	ErrInvalidValue        = errors.New("value must be a positive finite number")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoWorker            = errors.New("no worker is running")
)

// DefaultPeerTimeout is how long a request to a peer can take when no
// timeout is configured.
const DefaultPeerTimeout = 3 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the blockchain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for telling peers about changes on this node.
// The signals never block, the work happens in the background.
type Worker interface {
	Shutdown()
	RunMining(ctx context.Context) (bool, error)
	SignalShareTx(tx database.SignedTx)
	SignalClearPool()
	SignalConsensus()
}

// nopWorker is used until a worker registers itself.
type nopWorker struct{}

func (nopWorker) Shutdown()                               {}
func (nopWorker) RunMining(context.Context) (bool, error) { return false, ErrNoWorker }
func (nopWorker) SignalShareTx(database.SignedTx)         {}
func (nopWorker) SignalClearPool()                        {}
func (nopWorker) SignalConsensus()                        {}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	MinerAddress   string
	Host           string
	Genesis        genesis.Genesis
	EnforceBalance bool
	AcceptSHA1Sigs bool // Also accept signatures over SHA-1(SHA-256(tx)).
	KnownPeers     *peer.PeerSet
	Discovery      *peer.DiscoveryConfig
	PeerTimeout    time.Duration
	Clock          clock.Clock
	EvHandler      EventHandler
}

// State manages the blockchain held in memory.
type State struct {
	minerAddress   string
	host           string
	genesis        genesis.Genesis
	enforceBalance bool
	stamps         []signature.Digest
	staticPeers    []peer.Peer
	discovery      *peer.DiscoveryConfig
	clock          clock.Clock
	client         *http.Client
	evHandler      EventHandler

	mu           sync.Mutex
	chain        []database.Block
	miningCancel context.CancelFunc

	miningMu sync.Mutex
	syncMu   sync.Mutex

	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool

	Worker Worker
}

// New constructs a new blockchain holding only the genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.MinerAddress == "" {
		return nil, errors.New("miner address is required")
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}

	stamps := []signature.Digest{signature.StampSHA256}
	if cfg.AcceptSHA1Sigs {
		stamps = append(stamps, signature.StampSHA1)
	}

	timeout := cfg.PeerTimeout
	if timeout <= 0 {
		timeout = DefaultPeerTimeout
	}

	state := State{
		minerAddress:   cfg.MinerAddress,
		host:           cfg.Host,
		genesis:        cfg.Genesis,
		enforceBalance: cfg.EnforceBalance,
		stamps:         stamps,
		staticPeers:    knownPeers.Copy(cfg.Host),
		discovery:      cfg.Discovery,
		clock:          clk,
		client:         &http.Client{Timeout: timeout},
		evHandler:      ev,

		chain:      []database.Block{database.Genesis()},
		knownPeers: knownPeers,
		mempool:    mempool.New(),

		Worker: nopWorker{},
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.CancelMining()
	s.Worker.Shutdown()

	return nil
}

// =============================================================================

// RetrieveChain returns a copy of the current chain.
func (s *State) RetrieveChain() []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpy := make([]database.Block, len(s.chain))
	copy(cpy, s.chain)

	return cpy
}

// RetrieveLatestBlock returns the last block in the chain.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain[len(s.chain)-1]
}

// RetrievePendingTransactions returns a copy of the pool and its size.
func (s *State) RetrievePendingTransactions() ([]database.Tx, int) {
	trans := s.mempool.Copy()
	return trans, len(trans)
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveHost returns the host this node answers peers on.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveMinerAddress returns the address mining rewards are paid to.
func (s *State) RetrieveMinerAddress() string {
	return s.minerAddress
}

// RetrieveGenesis returns the chain parameters.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// CalculateTotalAmount walks the chain and returns the balance of the address.
func (s *State) CalculateTotalAmount(address string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return database.Balance(s.chain, address)
}
