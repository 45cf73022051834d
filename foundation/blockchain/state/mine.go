package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool"
)

// Proof is the result of a proof of work. It holds everything needed to
// append the block it was computed for.
type Proof struct {
	Nonce        int64
	PreviousHash string
	Trans        []database.Tx
	Snapshot     mempool.Snapshot
}

// =============================================================================

// CreateBlock moves every transaction in the pool into a new block and
// appends it to the chain. Peers are told to clear their pools.
func (s *State) CreateBlock(nonce int64, previousHash string) database.Block {
	s.mu.Lock()

	block := database.Block{
		TimeStamp:    s.timeStamp(),
		Transactions: s.mempool.Drain(),
		Nonce:        nonce,
		PreviousHash: previousHash,
	}
	s.chain = append(s.chain, block)
	length := len(s.chain)

	s.mu.Unlock()

	s.evHandler("viewer: state: CreateBlock: block[%d] hash[%s] trans[%d]", length-1, block.Hash(), len(block.Transactions))
	s.Worker.SignalClearPool()

	return block
}

// ProofOfWork snapshots the pool and the hash of the last block and searches
// for the nonce that solves the puzzle for them.
func (s *State) ProofOfWork(ctx context.Context) (Proof, error) {
	return s.proofOfWork(ctx)
}

// Mine runs one mining cycle. The reward for this node is added to the
// transactions in the pool, the puzzle is solved and the block appended.
// Only one cycle can run at a time, a second call gets ErrMiningBusy. If the
// chain is replaced or the pool cleared while searching, nothing is
// appended and ErrChainChanged is returned.
func (s *State) Mine(ctx context.Context) (bool, error) {
	if !s.miningMu.TryLock() {
		return false, ErrMiningBusy
	}
	defer s.miningMu.Unlock()

	s.evHandler("state: Mine: MINING: started")
	defer s.evHandler("state: Mine: MINING: completed")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.miningCancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.miningCancel = nil
		s.mu.Unlock()
	}()

	reward := database.NewRewardTx(s.minerAddress, s.genesis.MiningReward)

	t := s.clock.Now()
	proof, err := s.proofOfWork(ctx, reward)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.evHandler("state: Mine: MINING: CANCEL: complete")
		}
		return false, err
	}
	s.evHandler("state: Mine: MINING: nonce[%d] duration[%v]", proof.Nonce, s.clock.Now().Sub(t))

	block, err := s.appendProof(proof)
	if err != nil {
		s.evHandler("state: Mine: MINING: WARNING: %s", err)
		return false, err
	}

	s.evHandler("viewer: state: Mine: block mined: hash[%s] trans[%d]", block.Hash(), len(block.Transactions))

	s.Worker.SignalClearPool()
	s.Worker.SignalConsensus()

	return true, nil
}

// CancelMining stops the proof of work of the running mining cycle, if any.
func (s *State) CancelMining() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.miningCancel != nil {
		s.evHandler("state: CancelMining: MINING: CANCEL: signaled")
		s.miningCancel()
	}
}

// =============================================================================

// proofOfWork snapshots the pool, adds the extra transactions after the
// pooled ones and solves the puzzle on top of the current last block.
func (s *State) proofOfWork(ctx context.Context, extra ...database.Tx) (Proof, error) {
	snap := s.mempool.Snapshot()

	trans := make([]database.Tx, 0, len(snap.Trans)+len(extra))
	trans = append(trans, snap.Trans...)
	trans = append(trans, extra...)

	previousHash := s.RetrieveLatestBlock().Hash()

	s.evHandler("state: proofOfWork: MINING: perform POW: trans[%d] difficulty[%d]", len(trans), s.genesis.Difficulty)

	nonce, err := database.POW(ctx, trans, previousHash, s.genesis.Difficulty, s.evHandler)
	if err != nil {
		return Proof{}, err
	}

	proof := Proof{
		Nonce:        nonce,
		PreviousHash: previousHash,
		Trans:        trans,
		Snapshot:     snap,
	}

	return proof, nil
}

// appendProof appends the block the proof was computed for. It fails when
// the last block or the pool changed since the proof was started.
func (s *State) appendProof(proof Proof) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tip := s.chain[len(s.chain)-1].Hash(); tip != proof.PreviousHash {
		return database.Block{}, fmt.Errorf("%w: last block is now %s", ErrChainChanged, tip)
	}

	if !s.mempool.DrainSnapshot(proof.Snapshot) {
		return database.Block{}, fmt.Errorf("%w: pool was cleared", ErrChainChanged)
	}

	block := database.Block{
		TimeStamp:    s.timeStamp(),
		Transactions: proof.Trans,
		Nonce:        proof.Nonce,
		PreviousHash: proof.PreviousHash,
	}
	s.chain = append(s.chain, block)

	return block, nil
}

// timeStamp returns the current time as fractional unix seconds.
func (s *State) timeStamp() float64 {
	now := s.clock.Now()
	return float64(now.Unix()) + float64(now.Nanosecond())/1e9
}
