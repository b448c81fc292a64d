package blockchain

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"problem-hunt.backend/internal/config"
	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
	"problem-hunt.backend/pkg/metrics"
)

// transferEventTopic is keccak256("Transfer(address,address,uint256)").
var transferEventTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

var dialEVMClient = func(rpcURL string) (evmRPC, error) {
	return ethclient.Dial(rpcURL)
}

// evmRPC is the subset of ethclient used by the adapter, injectable in tests.
type evmRPC interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// EVMAdapter implements ChainAdapter for EVM-family chains.
type EVMAdapter struct {
	chain         entities.Chain
	client        evmRPC
	confirmations uint64
	rpcTimeout    time.Duration
}

// NewEVMAdapter dials the configured RPC endpoint and returns an adapter.
func NewEVMAdapter(chain entities.Chain, cfg config.ChainConfig) (*EVMAdapter, error) {
	client, err := dialEVMClient(cfg.RPCURL)
	if err != nil {
		return nil, err
	}
	return &EVMAdapter{
		chain:         chain,
		client:        client,
		confirmations: cfg.Confirmations,
		rpcTimeout:    cfg.RPCTimeout,
	}, nil
}

// NewEVMAdapterWithClient creates an adapter around an injected RPC client.
// Intended for unit tests where network sockets are unavailable.
func NewEVMAdapterWithClient(chain entities.Chain, client evmRPC, confirmations uint64, rpcTimeout time.Duration) *EVMAdapter {
	return &EVMAdapter{
		chain:         chain,
		client:        client,
		confirmations: confirmations,
		rpcTimeout:    rpcTimeout,
	}
}

// Chain returns the chain this adapter serves
func (a *EVMAdapter) Chain() entities.Chain {
	return a.chain
}

// VerifySignature recovers the signer of an EIP-191 personal-sign message and
// compares it case-insensitively against the claimed address. Pure
// cryptography, no network call.
func (a *EVMAdapter) VerifySignature(statement, signature, claimedAddress string) bool {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil || len(sig) != 65 {
		return false
	}

	// wallets emit V as 27/28, go-ethereum expects 0/1
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	digest := accounts.TextHash([]byte(statement))
	pubKey, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return false
	}

	recovered := crypto.PubkeyToAddress(*pubKey)
	return strings.EqualFold(recovered.Hex(), claimedAddress)
}

// FetchTransaction looks up the receipt for txHash and extracts every value
// transfer in it. Not-found and under-confirmed transactions are reported as
// pending, never as failures.
func (a *EVMAdapter) FetchTransaction(ctx context.Context, txHash string) (*TxResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.rpcTimeout)
	defer cancel()

	hash := common.HexToHash(txHash)

	start := time.Now()
	receipt, err := a.client.TransactionReceipt(ctx, hash)
	metrics.ObserveRPC(string(a.chain), "TransactionReceipt", start)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, domainerrors.ErrTransactionPending
		}
		return nil, domainerrors.NewError("fetching receipt", domainerrors.ErrRpcUnavailable)
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return nil, domainerrors.ErrTransactionReverted
	}

	start = time.Now()
	head, err := a.client.BlockNumber(ctx)
	metrics.ObserveRPC(string(a.chain), "BlockNumber", start)
	if err != nil {
		return nil, domainerrors.NewError("fetching block number", domainerrors.ErrRpcUnavailable)
	}

	blockNum := receipt.BlockNumber.Uint64()
	if head < blockNum {
		return nil, domainerrors.ErrTransactionPending
	}
	confirmations := head - blockNum + 1
	if confirmations < a.confirmations {
		return nil, domainerrors.ErrTransactionPending
	}

	start = time.Now()
	tx, isPending, err := a.client.TransactionByHash(ctx, hash)
	metrics.ObserveRPC(string(a.chain), "TransactionByHash", start)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, domainerrors.ErrTransactionPending
		}
		return nil, domainerrors.NewError("fetching transaction", domainerrors.ErrRpcUnavailable)
	}
	if isPending {
		return nil, domainerrors.ErrTransactionPending
	}

	result := &TxResult{
		Hash:          txHash,
		Confirmations: confirmations,
	}

	// native value movement from the transaction envelope
	if tx.To() != nil && tx.Value().Sign() > 0 {
		result.Transfers = append(result.Transfers, Transfer{
			To:     strings.ToLower(tx.To().Hex()),
			Amount: new(big.Int).Set(tx.Value()),
		})
	}

	// ERC-20 movements come from Transfer event logs, not from to/value,
	// which for a token send point at the contract with zero value
	for _, log := range receipt.Logs {
		if len(log.Topics) != 3 || log.Topics[0] != transferEventTopic {
			continue
		}
		result.Transfers = append(result.Transfers, Transfer{
			TokenAddress: strings.ToLower(log.Address.Hex()),
			From:         strings.ToLower(common.HexToAddress(log.Topics[1].Hex()).Hex()),
			To:           strings.ToLower(common.HexToAddress(log.Topics[2].Hex()).Hex()),
			Amount:       new(big.Int).SetBytes(log.Data),
		})
	}

	return result, nil
}
