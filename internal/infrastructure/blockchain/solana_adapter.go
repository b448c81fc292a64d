package blockchain

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"problem-hunt.backend/internal/config"
	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
	"problem-hunt.backend/pkg/metrics"
)

// solanaRPC is the subset of the solana-go RPC client used by the adapter.
type solanaRPC interface {
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

var newSolanaClient = func(rpcURL string) solanaRPC {
	return rpc.New(rpcURL)
}

// SolanaAdapter implements ChainAdapter for Solana.
type SolanaAdapter struct {
	client     solanaRPC
	rpcTimeout time.Duration
}

// NewSolanaAdapter creates an adapter against the configured RPC endpoint.
func NewSolanaAdapter(cfg config.ChainConfig) *SolanaAdapter {
	return &SolanaAdapter{
		client:     newSolanaClient(cfg.RPCURL),
		rpcTimeout: cfg.RPCTimeout,
	}
}

// NewSolanaAdapterWithClient creates an adapter around an injected RPC
// client. Intended for unit tests.
func NewSolanaAdapterWithClient(client solanaRPC, rpcTimeout time.Duration) *SolanaAdapter {
	return &SolanaAdapter{client: client, rpcTimeout: rpcTimeout}
}

// Chain returns the chain this adapter serves
func (a *SolanaAdapter) Chain() entities.Chain {
	return entities.ChainSolana
}

// VerifySignature checks the ed25519 signature over the UTF-8 statement. On
// Solana the claimed address is itself the base58 public key, so there is no
// recovery step. Addresses are case-sensitive.
func (a *SolanaAdapter) VerifySignature(statement, signature, claimedAddress string) bool {
	pubKey, err := solana.PublicKeyFromBase58(claimedAddress)
	if err != nil {
		return false
	}

	sigBytes := decodeSolanaSignature(signature)
	if len(sigBytes) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pubKey.Bytes()), []byte(statement), sigBytes)
}

// decodeSolanaSignature accepts base58 (wallet standard) or base64 encodings.
func decodeSolanaSignature(signature string) []byte {
	if sig, err := solana.SignatureFromBase58(signature); err == nil {
		return sig[:]
	}
	if raw, err := base64.StdEncoding.DecodeString(signature); err == nil {
		return raw
	}
	return nil
}

// FetchTransaction looks up a finalized transaction by its signature and
// extracts balance movements. A null result means not yet finalized, which is
// retryable, not a failure.
func (a *SolanaAdapter) FetchTransaction(ctx context.Context, txHash string) (*TxResult, error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid transaction signature")
	}

	ctx, cancel := context.WithTimeout(ctx, a.rpcTimeout)
	defer cancel()

	maxVersion := uint64(0)
	start := time.Now()
	out, err := a.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentFinalized,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	metrics.ObserveRPC(string(entities.ChainSolana), "GetTransaction", start)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, domainerrors.ErrTransactionPending
		}
		return nil, domainerrors.NewError("fetching transaction", domainerrors.ErrRpcUnavailable)
	}
	if out == nil || out.Meta == nil {
		return nil, domainerrors.ErrTransactionPending
	}

	if out.Meta.Err != nil {
		return nil, domainerrors.ErrTransactionReverted
	}

	result := &TxResult{
		Hash: txHash,
		// finalized commitment already implies supermajority confirmation
		Confirmations: 1,
	}

	// native SOL: positive post-pre balance deltas per account
	if tx, err := out.Transaction.GetTransaction(); err == nil && tx != nil {
		keys := tx.Message.AccountKeys
		for i, post := range out.Meta.PostBalances {
			if i >= len(out.Meta.PreBalances) || i >= len(keys) {
				break
			}
			pre := out.Meta.PreBalances[i]
			if post > pre {
				result.Transfers = append(result.Transfers, Transfer{
					To:     keys[i].String(),
					Amount: new(big.Int).SetUint64(post - pre),
				})
			}
		}
	}

	// SPL tokens: post/pre token balance deltas, attributed to the owner
	// wallet rather than the associated token account
	for _, post := range out.Meta.PostTokenBalances {
		if post.UiTokenAmount == nil || post.Owner == nil {
			continue
		}
		postAmount, ok := new(big.Int).SetString(post.UiTokenAmount.Amount, 10)
		if !ok {
			continue
		}

		preAmount := big.NewInt(0)
		for _, pre := range out.Meta.PreTokenBalances {
			if pre.AccountIndex == post.AccountIndex && pre.Mint.Equals(post.Mint) && pre.UiTokenAmount != nil {
				if v, ok := new(big.Int).SetString(pre.UiTokenAmount.Amount, 10); ok {
					preAmount = v
				}
				break
			}
		}

		delta := new(big.Int).Sub(postAmount, preAmount)
		if delta.Sign() > 0 {
			result.Transfers = append(result.Transfers, Transfer{
				TokenAddress: post.Mint.String(),
				To:           post.Owner.String(),
				Amount:       delta,
			})
		}
	}

	return result, nil
}
