package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

const baseURL = "http://%s"

// NetSendTxToPeers shares a signed transaction with the known peers.
func (s *State) NetSendTxToPeers(ctx context.Context, tx database.SignedTx) {
	s.evHandler("state: NetSendTxToPeers: started")
	defer s.evHandler("state: NetSendTxToPeers: completed")

	for _, pr := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/update_transactions", fmt.Sprintf(baseURL, pr.Host))
		if err := s.send(ctx, http.MethodPost, url, tx, nil); err != nil {
			s.evHandler("state: NetSendTxToPeers: peer[%s]: WARNING: %s", pr, err)
		}
	}
}

// NetSendClearPool tells the known peers to clear their pools.
func (s *State) NetSendClearPool(ctx context.Context) {
	s.evHandler("state: NetSendClearPool: started")
	defer s.evHandler("state: NetSendClearPool: completed")

	for _, pr := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/delete_transaction", fmt.Sprintf(baseURL, pr.Host))
		if err := s.send(ctx, http.MethodDelete, url, nil, nil); err != nil {
			s.evHandler("state: NetSendClearPool: peer[%s]: WARNING: %s", pr, err)
		}
	}
}

// NetRequestConsensus asks the known peers to run conflict resolution.
func (s *State) NetRequestConsensus(ctx context.Context) {
	s.evHandler("state: NetRequestConsensus: started")
	defer s.evHandler("state: NetRequestConsensus: completed")

	for _, pr := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/consensus", fmt.Sprintf(baseURL, pr.Host))
		if err := s.send(ctx, http.MethodPost, url, nil, nil); err != nil {
			s.evHandler("state: NetRequestConsensus: peer[%s]: WARNING: %s", pr, err)
		}
	}
}

// NetRequestPeerChain asks the peer for its full chain.
func (s *State) NetRequestPeerChain(ctx context.Context, pr peer.Peer) ([]database.Block, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr)

	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var resp struct {
		Chain []database.Block `json:"chain"`
	}
	if err := s.send(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerChain: peer[%s]: length[%d]", pr, len(resp.Chain))

	return resp.Chain, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func (s *State) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
