package uniswapv2_test

import (
	"context"
	"testing"

	"github.com/zeebo/assert"

	"github.com/amberdex/swap-portal/swapper/models"
)

func TestBestTradeExactIn_DirectPool(t *testing.T) {
	ctx := context.Background()
	poolAB := pool(weth, "1000000000000000000000", dai, "1000000000000000000000")
	engine := seeded(poolAB)

	trades, err := engine.BestTradeExactIn(ctx, []models.Pair{poolAB},
		amount(weth, "1000000000000000000"), dai, models.BestTradeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(trades))
	assert.Equal(t, "996006981039903216", trades[0].OutputAmount.Amount)
	assert.Equal(t, 1, trades[0].Route.Hops())
	assert.NoError(t, trades[0].Route.Validate())
}

func TestBestTradeExactIn_RanksRoutesByOutput(t *testing.T) {
	ctx := context.Background()
	// Direct pool is thin; the detour through DAI pays better.
	direct := pool(weth, "10000000000000000000", usdc, "10000000")
	poolAB := pool(weth, "1000000000000000000000", dai, "1000000000000000000000")
	poolBC := pool(dai, "1000000000000000000000", usdc, "1000000000")
	engine := seeded(direct, poolAB, poolBC)

	pairs := []models.Pair{direct, poolAB, poolBC}
	trades, err := engine.BestTradeExactIn(ctx, pairs,
		amount(weth, "1000000000000000000"), usdc, models.BestTradeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(trades))
	assert.Equal(t, 2, trades[0].Route.Hops())
	assert.Equal(t, 1, trades[1].Route.Hops())

	best, _ := trades[0].OutputAmount.Quantity()
	second, _ := trades[1].OutputAmount.Quantity()
	assert.True(t, best.Cmp(second) > 0)
}

func TestBestTradeExactIn_HonorsMaxHops(t *testing.T) {
	ctx := context.Background()
	poolAB := pool(weth, "1000000000000000000000", dai, "1000000000000000000000")
	poolBC := pool(dai, "1000000000000000000000", usdc, "1000000000")
	engine := seeded(poolAB, poolBC)

	pairs := []models.Pair{poolAB, poolBC}
	trades, err := engine.BestTradeExactIn(ctx, pairs,
		amount(weth, "1000000000000000000"), usdc, models.BestTradeOptions{MaxHops: 1})
	assert.NoError(t, err)
	assert.Equal(t, 0, len(trades))
}

func TestBestTradeExactIn_HonorsMaxNumResults(t *testing.T) {
	ctx := context.Background()
	direct := pool(weth, "1000000000000000000000", usdc, "1000000000")
	poolAB := pool(weth, "1000000000000000000000", dai, "1000000000000000000000")
	poolBC := pool(dai, "1000000000000000000000", usdc, "1000000000")
	engine := seeded(direct, poolAB, poolBC)

	pairs := []models.Pair{direct, poolAB, poolBC}
	trades, err := engine.BestTradeExactIn(ctx, pairs,
		amount(weth, "1000000000000000000"), usdc, models.BestTradeOptions{MaxNumResults: 1})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(trades))
}

func TestBestTradeExactIn_NeverReusesAPool(t *testing.T) {
	ctx := context.Background()
	// Only one pool exists between the endpoints; no route may bounce
	// through it twice.
	poolAB := pool(weth, "1000000000000000000000", dai, "1000000000000000000000")
	engine := seeded(poolAB)

	trades, err := engine.BestTradeExactIn(ctx, []models.Pair{poolAB},
		amount(weth, "1000000000000000000"), weth, models.BestTradeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 0, len(trades))
}

func TestBestTradeExactOut_DirectPool(t *testing.T) {
	ctx := context.Background()
	poolAB := pool(weth, "1000000000000000000000", dai, "1000000000000000000000")
	engine := seeded(poolAB)

	trades, err := engine.BestTradeExactOut(ctx, []models.Pair{poolAB},
		weth, amount(dai, "1000000000000000000"), models.BestTradeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(trades))
	assert.Equal(t, "1004013040121365097", trades[0].InputAmount.Amount)
	assert.Equal(t, "1000000000000000000", trades[0].OutputAmount.Amount)
	assert.Equal(t, models.ExactOutput, trades[0].TradeType)
}

func TestBestTradeExactOut_MultiHopBackwardWalk(t *testing.T) {
	ctx := context.Background()
	poolAB := pool(weth, "1000000000000000000000", dai, "1000000000000000000000")
	poolBC := pool(dai, "1000000000000000000000", usdc, "1000000000")
	engine := seeded(poolAB, poolBC)

	trades, err := engine.BestTradeExactOut(ctx, []models.Pair{poolAB, poolBC},
		weth, amount(usdc, "1000000"), models.BestTradeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(trades))
	assert.Equal(t, 2, trades[0].Route.Hops())
	assert.Equal(t, "1008046234113106928", trades[0].InputAmount.Amount)
	assert.NoError(t, trades[0].Route.Validate())
}

func TestBestTradeExactOut_SkipsDrainedPools(t *testing.T) {
	ctx := context.Background()
	poolAB := pool(weth, "1000", dai, "1000")
	engine := seeded(poolAB)

	trades, err := engine.BestTradeExactOut(ctx, []models.Pair{poolAB},
		weth, amount(dai, "1000"), models.BestTradeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 0, len(trades))
}
