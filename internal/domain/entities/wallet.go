package entities

import (
	"time"

	"github.com/google/uuid"
)

// Wallet represents a user's linked wallet. Addresses are stored lower-cased
// for EVM chains and verbatim base58 for Solana. (chain, address) is globally
// unique and at most one wallet per (user, chain) is primary.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Chain     Chain     `json:"chain"`
	Address   string    `json:"address"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

// LinkWalletInput represents input for linking a wallet to the current user
type LinkWalletInput struct {
	Chain   string `json:"chain" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// WalletAuthInput represents a signed sign-in challenge
type WalletAuthInput struct {
	Chain     string `json:"chain" binding:"required"`
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	Statement string `json:"statement" binding:"required"`
}

// WalletAuthResponse represents a successful wallet sign-in
type WalletAuthResponse struct {
	AccessToken   string    `json:"accessToken"`
	RefreshToken  string    `json:"refreshToken"`
	UserID        uuid.UUID `json:"userId"`
	WalletAddress string    `json:"walletAddress"`
	Chain         Chain     `json:"chain"`
}

// AuthChallenge is the ephemeral sign-in challenge handed to the client.
type AuthChallenge struct {
	Nonce     string    `json:"nonce"`
	Statement string    `json:"statement"`
	ExpiresAt time.Time `json:"expiresAt"`
}
