package usecases

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
)

var (
	evmAddressRe    = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	solanaAddressRe = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

	timeNow = time.Now
)

// normalizeAddress validates an address for the chain and returns its
// canonical form: lower-cased for EVM, verbatim base58 for Solana.
func normalizeAddress(chain entities.Chain, address string) (string, error) {
	if chain.IsEVM() {
		if !evmAddressRe.MatchString(address) {
			return "", domainerrors.BadRequest("invalid EVM address")
		}
		return strings.ToLower(address), nil
	}
	if !solanaAddressRe.MatchString(address) {
		return "", domainerrors.BadRequest("invalid Solana address")
	}
	return address, nil
}

// sameAddress compares two addresses with chain-appropriate sensitivity.
func sameAddress(chain entities.Chain, a, b string) bool {
	if chain.IsEVM() {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// parseChain validates a chain name from user input.
func parseChain(raw string) (entities.Chain, error) {
	chain := entities.Chain(strings.ToLower(raw))
	if !chain.IsValid() {
		return "", domainerrors.NewError(fmt.Sprintf("unsupported chain %q", raw), domainerrors.ErrUnsupportedChain)
	}
	return chain, nil
}

// buildStatement renders the sign-in challenge the client must sign.
func buildStatement(address, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf(
		"Problem Hunt wants you to sign in with your wallet:\n%s\n\nNonce: %s\nIssued At: %s",
		address, nonce, issuedAt.UTC().Format(time.RFC3339),
	)
}

// parsedStatement holds the fields extracted from a signed challenge.
type parsedStatement struct {
	Address  string
	Nonce    string
	IssuedAt time.Time
}

// parseStatement extracts address, nonce and timestamp from a challenge
// statement. Returns ErrMalformedChallenge when any field is missing or
// unparseable.
func parseStatement(statement string) (*parsedStatement, error) {
	lines := strings.Split(statement, "\n")
	if len(lines) < 2 {
		return nil, domainerrors.ErrMalformedChallenge
	}

	out := &parsedStatement{Address: strings.TrimSpace(lines[1])}
	for _, line := range lines[2:] {
		switch {
		case strings.HasPrefix(line, "Nonce: "):
			out.Nonce = strings.TrimSpace(strings.TrimPrefix(line, "Nonce: "))
		case strings.HasPrefix(line, "Issued At: "):
			ts, err := time.Parse(time.RFC3339, strings.TrimSpace(strings.TrimPrefix(line, "Issued At: ")))
			if err != nil {
				return nil, domainerrors.ErrMalformedChallenge
			}
			out.IssuedAt = ts
		}
	}

	if out.Address == "" || out.Nonce == "" || out.IssuedAt.IsZero() {
		return nil, domainerrors.ErrMalformedChallenge
	}
	return out, nil
}
