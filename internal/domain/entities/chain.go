package entities

// Chain identifies a supported blockchain.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
	ChainArbitrum Chain = "arbitrum"
	ChainSolana   Chain = "solana"
)

// AllChains lists every supported chain.
var AllChains = []Chain{ChainEthereum, ChainPolygon, ChainArbitrum, ChainSolana}

// IsValid reports whether the chain is supported.
func (c Chain) IsValid() bool {
	switch c {
	case ChainEthereum, ChainPolygon, ChainArbitrum, ChainSolana:
		return true
	}
	return false
}

// IsEVM reports whether the chain belongs to the EVM family.
func (c Chain) IsEVM() bool {
	return c == ChainEthereum || c == ChainPolygon || c == ChainArbitrum
}

// NativeDecimals returns the decimals of the chain's native asset.
func (c Chain) NativeDecimals() int32 {
	if c == ChainSolana {
		return 9
	}
	return 18
}

// NativeSymbol returns the ticker of the chain's native asset.
func (c Chain) NativeSymbol() string {
	switch c {
	case ChainEthereum, ChainArbitrum:
		return "ETH"
	case ChainPolygon:
		return "POL"
	case ChainSolana:
		return "SOL"
	}
	return ""
}
