package router_test

import (
	"context"
	"testing"

	"github.com/zeebo/assert"

	"github.com/amberdex/swap-portal/swapper/models"
	"github.com/amberdex/swap-portal/swapper/router"
	"github.com/amberdex/swap-portal/swapper/router/engines/uniswapv2"
)

// newEmbeddedRouter wires the in-process engine with seeded pools so the
// whole search path runs for real.
func newEmbeddedRouter(pools ...models.Pair) (*router.TradeRouter, *uniswapv2.Engine) {
	engine := uniswapv2.New(nil)
	for _, p := range pools {
		engine.SeedPair(p)
	}
	return router.NewTradeRouter([]router.SwapChain{testChain()}, engine), engine
}

func TestBestTradeExactIn_FindsMultiHopRoute(t *testing.T) {
	ctx := context.Background()
	poolAB := pool(tokenWETH, "1000000000000000000000", tokenDAI, "1000000000000000000000")
	poolBC := pool(tokenDAI, "1000000000000000000000", tokenUSDC, "1000000000")
	r, _ := newEmbeddedRouter(poolAB, poolBC)

	amountIn := amount(tokenWETH, "10000000000000000000")
	trade, err := r.BestTradeExactIn(ctx, []models.Pair{poolAB, poolBC}, &amountIn, &tokenUSDC, false)
	assert.NoError(t, err)
	assert.NotNil(t, trade)

	assert.Equal(t, 2, trade.Route.Hops())
	assert.NoError(t, trade.Route.Validate())
	assert.True(t, trade.Route.Input.Equals(tokenWETH))
	assert.True(t, trade.Route.Output.Equals(tokenUSDC))
	assert.Equal(t, models.ExactInput, trade.TradeType)

	// Output must be positive and below the 1:1 mid rate.
	out, ok := trade.OutputAmount.Quantity()
	assert.True(t, ok)
	assert.True(t, out.Sign() > 0)
}

func TestBestTradeExactIn_NilInputsShortCircuit(t *testing.T) {
	ctx := context.Background()
	poolAB := pool(tokenWETH, "1000", tokenDAI, "1000")
	r, _ := newEmbeddedRouter(poolAB)

	amountIn := amount(tokenWETH, "10")

	trade, err := r.BestTradeExactIn(ctx, []models.Pair{poolAB}, nil, &tokenDAI, false)
	assert.NoError(t, err)
	assert.Nil(t, trade)

	trade, err = r.BestTradeExactIn(ctx, []models.Pair{poolAB}, &amountIn, nil, false)
	assert.NoError(t, err)
	assert.Nil(t, trade)

	trade, err = r.BestTradeExactIn(ctx, nil, &amountIn, &tokenDAI, false)
	assert.NoError(t, err)
	assert.Nil(t, trade)
}

func TestBestTradeExactIn_SingleHopRestriction(t *testing.T) {
	ctx := context.Background()
	// Only a two-hop route exists; single-hop mode must find nothing.
	poolAB := pool(tokenWETH, "1000000000000000000000", tokenDAI, "1000000000000000000000")
	poolBC := pool(tokenDAI, "1000000000000000000000", tokenUSDC, "1000000000")
	r, _ := newEmbeddedRouter(poolAB, poolBC)

	amountIn := amount(tokenWETH, "1000000000000000000")
	trade, err := r.BestTradeExactIn(ctx, []models.Pair{poolAB, poolBC}, &amountIn, &tokenUSDC, true)
	assert.NoError(t, err)
	assert.Nil(t, trade)
}

func TestBestTradeExactIn_PrefersFewerHopsWithinThreshold(t *testing.T) {
	ctx := context.Background()
	// The direct pool and a two-hop detour price almost identically; the
	// detour's tiny edge stays inside the 0.5% threshold so the direct
	// route must win.
	direct := pool(tokenWETH, "1000000000000000000000", tokenUSDC, "1000000000")
	poolAB := pool(tokenWETH, "2000000000000000000000", tokenDAI, "2000000000000000000000")
	poolBC := pool(tokenDAI, "2000000000000000000000", tokenUSDC, "2000000000")
	r, _ := newEmbeddedRouter(direct, poolAB, poolBC)

	amountIn := amount(tokenWETH, "1000000000000000000")
	trade, err := r.BestTradeExactIn(ctx, []models.Pair{direct, poolAB, poolBC}, &amountIn, &tokenUSDC, false)
	assert.NoError(t, err)
	assert.NotNil(t, trade)
	assert.Equal(t, 1, trade.Route.Hops())
}

func TestBestTradeExactOut_FindsRoute(t *testing.T) {
	ctx := context.Background()
	poolAB := pool(tokenWETH, "1000000000000000000000", tokenDAI, "1000000000000000000000")
	poolBC := pool(tokenDAI, "1000000000000000000000", tokenUSDC, "1000000000")
	r, _ := newEmbeddedRouter(poolAB, poolBC)

	amountOut := amount(tokenUSDC, "1000000")
	trade, err := r.BestTradeExactOut(ctx, []models.Pair{poolAB, poolBC}, &tokenWETH, &amountOut, false)
	assert.NoError(t, err)
	assert.NotNil(t, trade)

	assert.Equal(t, models.ExactOutput, trade.TradeType)
	assert.Equal(t, "1000000", trade.OutputAmount.Amount)
	assert.NoError(t, trade.Route.Validate())

	in, ok := trade.InputAmount.Quantity()
	assert.True(t, ok)
	assert.True(t, in.Sign() > 0)
}

func TestBestTradeExactOut_InsufficientLiquidity(t *testing.T) {
	ctx := context.Background()
	poolAB := pool(tokenWETH, "1000", tokenDAI, "1000")
	r, _ := newEmbeddedRouter(poolAB)

	// More output than the pool holds.
	amountOut := amount(tokenDAI, "2000")
	trade, err := r.BestTradeExactOut(ctx, []models.Pair{poolAB}, &tokenWETH, &amountOut, false)
	assert.NoError(t, err)
	assert.Nil(t, trade)
}
