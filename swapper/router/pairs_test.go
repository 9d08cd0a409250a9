package router_test

import (
	"context"
	"strings"
	"testing"

	"github.com/zeebo/assert"

	"github.com/amberdex/swap-portal/swapper/models"
	"github.com/amberdex/swap-portal/swapper/router"
)

func TestCommonPairs_QueriesDedupedCandidates(t *testing.T) {
	queried := make(map[string]int)
	engine := &stubEngine{
		pairReserves: func(tokenA, tokenB models.Token) (*models.Pair, error) {
			a := strings.ToLower(tokenA.Address)
			b := strings.ToLower(tokenB.Address)
			if a > b {
				a, b = b, a
			}
			queried[a+"-"+b]++
			return nil, nil
		},
	}
	r := router.NewTradeRouter([]router.SwapChain{testChain()}, engine)

	_, err := r.CommonPairs(context.Background(), models.Mainnet, tokenDAI, tokenUSDC)
	assert.NoError(t, err)

	// Bases are WETH, DAI, USDC: after dropping self-pairs and duplicates
	// only the three distinct pairings remain.
	assert.Equal(t, 3, len(queried))
	for key, count := range queried {
		if count != 1 {
			t.Fatalf("pair %s queried %d times", key, count)
		}
	}
}

func TestCommonPairs_KeepsOnlyPoolsWithLiquidity(t *testing.T) {
	engine := &stubEngine{
		pairReserves: func(tokenA, tokenB models.Token) (*models.Pair, error) {
			if tokenA.Equals(tokenDAI) && tokenB.Equals(tokenUSDC) || tokenA.Equals(tokenUSDC) && tokenB.Equals(tokenDAI) {
				p := pool(tokenDAI, "1000000000000000000000", tokenUSDC, "1000000000")
				return &p, nil
			}
			return nil, nil
		},
	}
	r := router.NewTradeRouter([]router.SwapChain{testChain()}, engine)

	pairs, err := r.CommonPairs(context.Background(), models.Mainnet, tokenDAI, tokenUSDC)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(pairs))
	assert.True(t, pairs[0].Involves(tokenDAI))
	assert.True(t, pairs[0].Involves(tokenUSDC))
}

func TestCommonPairs_CustomBasesRestrictCandidates(t *testing.T) {
	var queriedUSDCWithAMPL bool
	engine := &stubEngine{
		pairReserves: func(tokenA, tokenB models.Token) (*models.Pair, error) {
			pairHas := func(tok models.Token) bool {
				return tokenA.Equals(tok) || tokenB.Equals(tok)
			}
			if pairHas(tokenAMPL) && pairHas(tokenUSDC) {
				queriedUSDCWithAMPL = true
			}
			return nil, nil
		},
	}
	r := router.NewTradeRouter([]router.SwapChain{testChain()}, engine)

	// AMPL is restricted to DAI and WETH; the AMPL-USDC candidate must be
	// dropped before the engine sees it.
	_, err := r.CommonPairs(context.Background(), models.Mainnet, tokenAMPL, tokenUSDC)
	assert.NoError(t, err)
	assert.False(t, queriedUSDCWithAMPL)
}

func TestCommonPairs_WrapsNativeEndpoint(t *testing.T) {
	var sawNative, sawWrapped bool
	engine := &stubEngine{
		pairReserves: func(tokenA, tokenB models.Token) (*models.Pair, error) {
			for _, tok := range []models.Token{tokenA, tokenB} {
				if tok.IsEther() {
					sawNative = true
				}
				if tok.Equals(tokenWETH) {
					sawWrapped = true
				}
			}
			return nil, nil
		},
	}
	r := router.NewTradeRouter([]router.SwapChain{testChain()}, engine)

	native := models.NativeToken(models.Mainnet)
	_, err := r.CommonPairs(context.Background(), models.Mainnet, native, tokenDAI)
	assert.NoError(t, err)
	assert.False(t, sawNative)
	assert.True(t, sawWrapped)
}

func TestCommonPairs_UnknownChain(t *testing.T) {
	r := router.NewTradeRouter([]router.SwapChain{testChain()}, &stubEngine{})

	_, err := r.CommonPairs(context.Background(), models.ChainID(999), tokenDAI, tokenUSDC)
	assert.Error(t, err)
}
