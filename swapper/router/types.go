package router

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amberdex/swap-portal/swapper/models"
)

// MaxHops is the hard bound on route depth. Each extra hop costs gas and
// compounds the pool fee, so nothing past three pools is ever considered.
const MaxHops = 3

// SwapChain is the per-chain routing configuration.
type SwapChain struct {
	Name string
	ID   models.ChainID

	// RouterAddress and FactoryAddress identify the v2 periphery contracts.
	RouterAddress  string
	FactoryAddress string
	// PairInitCodeHash feeds the deterministic pool address derivation.
	PairInitCodeHash string

	// Bases are the chain's high-liquidity tokens used as candidate
	// intermediate hops.
	Bases []models.Token

	// AdditionalBases adds extra bases when a specific token (by lowercase
	// address) is one side of the trade.
	AdditionalBases map[string][]models.Token

	// CustomBases restricts a token (by lowercase address) to an allow-list
	// of counter-tokens; candidate pairs outside the list are dropped.
	CustomBases map[string][]models.Token
}

// TradeRouter finds the best trade for a token pair through a TradeEngine.
// It holds no mutable state; every request computes from its own snapshot.
type TradeRouter struct {
	chainsMap map[models.ChainID]SwapChain
	engine    TradeEngine
	// lessHopsDelta is the price improvement a deeper route must exceed to
	// displace a shallower incumbent.
	lessHopsDelta decimal.Decimal
}

// DefaultLessHopsDelta prefers fewer hops unless a deeper route improves the
// execution price by more than 0.5%.
func DefaultLessHopsDelta() decimal.Decimal {
	return decimal.New(5, -3)
}

// NewTradeRouter creates a TradeRouter over the given chains and engine.
func NewTradeRouter(chains []SwapChain, engine TradeEngine) *TradeRouter {
	chainsMap := make(map[models.ChainID]SwapChain, len(chains))
	for _, chain := range chains {
		chainsMap[chain.ID] = chain
	}
	return &TradeRouter{
		chainsMap:     chainsMap,
		engine:        engine,
		lessHopsDelta: DefaultLessHopsDelta(),
	}
}

// Engine exposes the engine handle for callers that need raw operations
// (gas estimation, submission).
func (r *TradeRouter) Engine() TradeEngine {
	return r.engine
}

// Chain returns the configuration for a chain, if known.
func (r *TradeRouter) Chain(chainID models.ChainID) (SwapChain, bool) {
	chain, ok := r.chainsMap[chainID]
	return chain, ok
}

// Chains returns every configured chain.
func (r *TradeRouter) Chains() []SwapChain {
	chains := make([]SwapChain, 0, len(r.chainsMap))
	for _, chain := range r.chainsMap {
		chains = append(chains, chain)
	}
	return chains
}

func addressKey(token models.Token) string {
	return strings.ToLower(token.Address)
}
