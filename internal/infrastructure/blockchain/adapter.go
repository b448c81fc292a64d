package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"problem-hunt.backend/internal/domain/entities"
)

// Transfer is a value movement observed in a finalized transaction.
// TokenAddress is empty for the chain's native asset. Amount is in raw
// on-chain units (wei, lamports, or token base units).
type Transfer struct {
	TokenAddress string
	From         string
	To           string
	Amount       *big.Int
}

// TxResult is the finalized view of an on-chain transaction.
type TxResult struct {
	Hash          string
	Transfers     []Transfer
	Confirmations uint64
}

// ChainAdapter abstracts signature verification and transaction lookup for
// one chain. FetchTransaction returns ErrTransactionPending for transactions
// that are absent or not yet finalized, ErrTransactionReverted for failed
// ones, and ErrRpcUnavailable on provider trouble.
type ChainAdapter interface {
	Chain() entities.Chain
	VerifySignature(statement, signature, claimedAddress string) bool
	FetchTransaction(ctx context.Context, txHash string) (*TxResult, error)
}

// Registry maps chains to their adapters. Populated once at startup so
// business logic never branches on chain names.
type Registry struct {
	mu       sync.RWMutex
	adapters map[entities.Chain]ChainAdapter
}

// NewRegistry creates an empty adapter registry
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[entities.Chain]ChainAdapter)}
}

// Register adds an adapter, replacing any previous one for the same chain
func (r *Registry) Register(adapter ChainAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Chain()] = adapter
}

// Get returns the adapter for a chain
func (r *Registry) Get(chain entities.Chain) (ChainAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[chain]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for chain %s", chain)
	}
	return adapter, nil
}

// Chains returns the registered chains
func (r *Registry) Chains() []entities.Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chains := make([]entities.Chain, 0, len(r.adapters))
	for chain := range r.adapters {
		chains = append(chains, chain)
	}
	return chains
}
