package state

import (
	"context"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// ValidChain reports whether every block of the chain links to the block
// before it and solves the puzzle at this node's difficulty.
func (s *State) ValidChain(chain []database.Block) bool {
	if err := database.ValidateChain(chain, s.genesis.Difficulty); err != nil {
		s.evHandler("state: ValidChain: WARNING: %s", err)
		return false
	}

	return true
}

// ResolveConflicts asks every known peer for its chain and replaces the
// local chain with the longest valid one, as long as it is longer than the
// local chain. Peers that can't be reached are skipped. It reports whether
// the chain was replaced.
func (s *State) ResolveConflicts(ctx context.Context) bool {
	s.evHandler("state: ResolveConflicts: started")
	defer s.evHandler("state: ResolveConflicts: completed")

	var longest []database.Block
	maxLength := len(s.RetrieveChain())

	for _, pr := range s.RetrieveKnownPeers() {
		chain, err := s.NetRequestPeerChain(ctx, pr)
		if err != nil {
			s.evHandler("state: ResolveConflicts: peer[%s]: WARNING: %s", pr, err)
			continue
		}

		if len(chain) <= maxLength {
			continue
		}

		if !s.ValidChain(chain) {
			s.evHandler("state: ResolveConflicts: peer[%s]: WARNING: invalid chain discarded: length[%d]", pr, len(chain))
			continue
		}

		longest = chain
		maxLength = len(chain)
	}

	if longest == nil {
		return false
	}

	s.mu.Lock()
	if len(longest) <= len(s.chain) {
		s.mu.Unlock()
		return false
	}
	s.chain = longest
	if s.miningCancel != nil {
		s.miningCancel()
	}
	s.mu.Unlock()

	s.evHandler("viewer: state: ResolveConflicts: chain replaced: length[%d]", len(longest))

	return true
}

// SyncNeighbours rebuilds the set of known peers from the configured peers
// and the peers found on the local network. Only one sync can run at a time,
// a second call gets ErrSyncBusy.
func (s *State) SyncNeighbours(ctx context.Context) (bool, error) {
	if !s.syncMu.TryLock() {
		return false, ErrSyncBusy
	}
	defer s.syncMu.Unlock()

	s.evHandler("state: SyncNeighbours: started")
	defer s.evHandler("state: SyncNeighbours: completed")

	peers := make([]peer.Peer, len(s.staticPeers))
	copy(peers, s.staticPeers)

	if s.discovery != nil {
		found, err := peer.Discover(ctx, *s.discovery)
		if err != nil {
			return false, err
		}
		peers = append(peers, found...)
	}

	s.knownPeers.Replace(peers)
	s.evHandler("state: SyncNeighbours: peers[%v]", s.RetrieveKnownPeers())

	return true, nil
}
