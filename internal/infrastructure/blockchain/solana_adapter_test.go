package blockchain

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "problem-hunt.backend/internal/domain/errors"
)

type mockSolanaRPC struct {
	getTxFn func(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

func (m *mockSolanaRPC) GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	return m.getTxFn(ctx, txSig, opts)
}

func TestSolanaAdapter_VerifySignature(t *testing.T) {
	adapter := NewSolanaAdapterWithClient(nil, time.Second)
	statement := "Sign in to Problem Hunt\nNonce: abc123"

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	address := solana.PublicKeyFromBytes(pub).String()
	sigBytes := ed25519.Sign(priv, []byte(statement))
	sig := solana.SignatureFromBytes(sigBytes)

	assert.True(t, adapter.VerifySignature(statement, sig.String(), address))

	// base64-encoded signature is accepted too
	assert.True(t, adapter.VerifySignature(statement, base64.StdEncoding.EncodeToString(sigBytes), address))

	// tampered statement
	assert.False(t, adapter.VerifySignature(statement+" ", sig.String(), address))

	// substituted address
	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	assert.False(t, adapter.VerifySignature(statement, sig.String(), solana.PublicKeyFromBytes(otherPub).String()))

	// malformed inputs
	assert.False(t, adapter.VerifySignature(statement, "!!!", address))
	assert.False(t, adapter.VerifySignature(statement, sig.String(), "not-base58!!"))
}

// buildGetTransactionResult fabricates an RPC response the way the node
// returns it, so the envelope decoding path is exercised for real.
func buildGetTransactionResult(t *testing.T, accountKeys []solana.PublicKey, meta string) *rpc.GetTransactionResult {
	t.Helper()

	tx := solana.Transaction{
		Signatures: []solana.Signature{{}},
		Message: solana.Message{
			Header:      solana.MessageHeader{NumRequiredSignatures: 1},
			AccountKeys: accountKeys,
		},
	}
	bin, err := tx.MarshalBinary()
	require.NoError(t, err)

	payload := fmt.Sprintf(`{
		"slot": 12345,
		"transaction": [%q, "base64"],
		"meta": %s
	}`, base64.StdEncoding.EncodeToString(bin), meta)

	var out rpc.GetTransactionResult
	require.NoError(t, json.Unmarshal([]byte(payload), &out))
	return &out
}

func TestSolanaAdapter_FetchTransactionNativeSOL(t *testing.T) {
	sender := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()

	// recipient gained 2 SOL (2e9 lamports)
	result := buildGetTransactionResult(t, []solana.PublicKey{sender, recipient},
		`{"err": null, "fee": 5000, "preBalances": [5000000000, 1000000000], "postBalances": [2999995000, 3000000000], "preTokenBalances": [], "postTokenBalances": []}`)

	client := &mockSolanaRPC{
		getTxFn: func(context.Context, solana.Signature, *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
			return result, nil
		},
	}

	adapter := NewSolanaAdapterWithClient(client, time.Second)
	sig := solana.SignatureFromBytes(make([]byte, 64))
	out, err := adapter.FetchTransaction(context.Background(), sig.String())
	require.NoError(t, err)
	require.Len(t, out.Transfers, 1)
	assert.Equal(t, recipient.String(), out.Transfers[0].To)
	assert.Equal(t, "2000000000", out.Transfers[0].Amount.String())
	assert.Equal(t, "", out.Transfers[0].TokenAddress)
}

func TestSolanaAdapter_FetchTransactionSPLToken(t *testing.T) {
	sender := solana.NewWallet().PublicKey()
	recipientATA := solana.NewWallet().PublicKey()
	recipientOwner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	meta := fmt.Sprintf(`{
		"err": null, "fee": 5000,
		"preBalances": [1000000000, 2039280], "postBalances": [999995000, 2039280],
		"preTokenBalances": [
			{"accountIndex": 1, "mint": %q, "owner": %q,
			 "uiTokenAmount": {"amount": "1000000", "decimals": 6, "uiAmountString": "1"}}
		],
		"postTokenBalances": [
			{"accountIndex": 1, "mint": %q, "owner": %q,
			 "uiTokenAmount": {"amount": "6000000", "decimals": 6, "uiAmountString": "6"}}
		]
	}`, mint, recipientOwner, mint, recipientOwner)

	result := buildGetTransactionResult(t, []solana.PublicKey{sender, recipientATA}, meta)

	client := &mockSolanaRPC{
		getTxFn: func(context.Context, solana.Signature, *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
			return result, nil
		},
	}

	adapter := NewSolanaAdapterWithClient(client, time.Second)
	sig := solana.SignatureFromBytes(make([]byte, 64))
	out, err := adapter.FetchTransaction(context.Background(), sig.String())
	require.NoError(t, err)

	var tokenTransfer *Transfer
	for i := range out.Transfers {
		if out.Transfers[i].TokenAddress != "" {
			tokenTransfer = &out.Transfers[i]
		}
	}
	require.NotNil(t, tokenTransfer)
	assert.Equal(t, mint.String(), tokenTransfer.TokenAddress)
	// attributed to the owner wallet, not the token account
	assert.Equal(t, recipientOwner.String(), tokenTransfer.To)
	assert.Equal(t, "5000000", tokenTransfer.Amount.String())
}

func TestSolanaAdapter_FetchTransactionNotFinalized(t *testing.T) {
	client := &mockSolanaRPC{
		getTxFn: func(context.Context, solana.Signature, *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
			return nil, rpc.ErrNotFound
		},
	}

	adapter := NewSolanaAdapterWithClient(client, time.Second)
	sig := solana.SignatureFromBytes(make([]byte, 64))
	_, err := adapter.FetchTransaction(context.Background(), sig.String())
	assert.ErrorIs(t, err, domainerrors.ErrTransactionPending)
	assert.True(t, domainerrors.IsRetryable(err))
}

func TestSolanaAdapter_FetchTransactionFailedOnChain(t *testing.T) {
	sender := solana.NewWallet().PublicKey()
	result := buildGetTransactionResult(t, []solana.PublicKey{sender},
		`{"err": {"InstructionError": [0, "Custom"]}, "fee": 5000, "preBalances": [1], "postBalances": [1], "preTokenBalances": [], "postTokenBalances": []}`)

	client := &mockSolanaRPC{
		getTxFn: func(context.Context, solana.Signature, *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
			return result, nil
		},
	}

	adapter := NewSolanaAdapterWithClient(client, time.Second)
	sig := solana.SignatureFromBytes(make([]byte, 64))
	_, err := adapter.FetchTransaction(context.Background(), sig.String())
	assert.ErrorIs(t, err, domainerrors.ErrTransactionReverted)
}

func TestSolanaAdapter_FetchTransactionBadSignatureEncoding(t *testing.T) {
	adapter := NewSolanaAdapterWithClient(&mockSolanaRPC{}, time.Second)
	_, err := adapter.FetchTransaction(context.Background(), "0xdeadbeef")
	assert.Error(t, err)
}
