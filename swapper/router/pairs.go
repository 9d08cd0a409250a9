package router

import (
	"context"
	"fmt"

	"github.com/amberdex/swap-portal/swapper/models"
)

type tokenPair struct {
	a models.Token
	b models.Token
}

func (tp tokenPair) key() string {
	a, b := addressKey(tp.a), addressKey(tp.b)
	if a > b {
		a, b = b, a
	}
	return a + "-" + b
}

// CommonPairs assembles the candidate pool set for a token pair: the direct
// pair, each token against the chain's bases, and every base against every
// other base. Candidates are deduped by unordered identity and filtered
// through the custom-bases allow-list before the engine is asked for
// reserves. An empty result means no liquidity, not a failure.
func (r *TradeRouter) CommonPairs(ctx context.Context, chainID models.ChainID, currencyA, currencyB models.Token) ([]models.Pair, error) {
	chain, ok := r.chainsMap[chainID]
	if !ok {
		return nil, fmt.Errorf("chain %d is not configured", chainID)
	}

	tokenA, err := WrapToken(currencyA, chainID)
	if err != nil {
		return nil, err
	}
	tokenB, err := WrapToken(currencyB, chainID)
	if err != nil {
		return nil, err
	}

	bases := make([]models.Token, 0, len(chain.Bases))
	bases = append(bases, chain.Bases...)
	bases = append(bases, chain.AdditionalBases[addressKey(tokenA)]...)
	bases = append(bases, chain.AdditionalBases[addressKey(tokenB)]...)

	candidates := make([]tokenPair, 0, 1+2*len(bases)+len(bases)*len(bases))
	candidates = append(candidates, tokenPair{tokenA, tokenB})
	for _, base := range bases {
		candidates = append(candidates, tokenPair{tokenA, base})
		candidates = append(candidates, tokenPair{tokenB, base})
	}
	for _, base := range bases {
		for _, other := range bases {
			candidates = append(candidates, tokenPair{base, other})
		}
	}

	seen := make(map[string]bool, len(candidates))
	surviving := candidates[:0]
	for _, candidate := range candidates {
		// self-pairs carry no liquidity
		if addressKey(candidate.a) == addressKey(candidate.b) {
			continue
		}
		if seen[candidate.key()] {
			continue
		}
		if !r.allowedByCustomBases(chain, candidate.a, candidate.b) {
			continue
		}
		seen[candidate.key()] = true
		surviving = append(surviving, candidate)
	}

	pairs := make([]models.Pair, 0, len(surviving))
	for _, candidate := range surviving {
		pair, err := r.engine.PairReserves(ctx, candidate.a, candidate.b)
		if err != nil {
			return nil, fmt.Errorf("pair reserves query failed: %w", err)
		}
		if pair == nil {
			continue
		}
		pairs = append(pairs, *pair)
	}

	routerLog.Debug().
		Int("candidates", len(surviving)).
		Int("pools", len(pairs)).
		Msg("Resolved candidate pools")
	return pairs, nil
}

// allowedByCustomBases drops a candidate pair when either side is restricted
// to a counter-token allow-list the other side is not on.
func (r *TradeRouter) allowedByCustomBases(chain SwapChain, tokenA, tokenB models.Token) bool {
	if len(chain.CustomBases) == 0 {
		return true
	}
	customA, restrictedA := chain.CustomBases[addressKey(tokenA)]
	customB, restrictedB := chain.CustomBases[addressKey(tokenB)]
	if !restrictedA && !restrictedB {
		return true
	}
	if restrictedA && !containsToken(customA, tokenB) {
		return false
	}
	if restrictedB && !containsToken(customB, tokenA) {
		return false
	}
	return true
}

func containsToken(tokens []models.Token, token models.Token) bool {
	for _, candidate := range tokens {
		if candidate.Equals(token) {
			return true
		}
	}
	return false
}
