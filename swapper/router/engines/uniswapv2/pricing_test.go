package uniswapv2_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zeebo/assert"

	"github.com/amberdex/swap-portal/swapper/models"
)

func balancedTrade(t *testing.T) models.Trade {
	t.Helper()
	ctx := context.Background()
	poolAB := pool(weth, "1000000000000000000000", dai, "1000000000000000000000")
	engine := seeded(poolAB)

	trades, err := engine.BestTradeExactIn(ctx, []models.Pair{poolAB},
		amount(weth, "1000000000000000000"), dai, models.BestTradeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(trades))
	return trades[0]
}

func TestTradeExecutionPrice_DisplayUnits(t *testing.T) {
	ctx := context.Background()
	engine := seeded()
	trade := balancedTrade(t)

	price, err := engine.TradeExecutionPrice(ctx, trade)
	assert.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("0.996006981039903216")))
}

func TestTradeExecutionPrice_CrossesDecimalScales(t *testing.T) {
	ctx := context.Background()
	// 1 WETH (18 decimals) for 2000 USDC (6 decimals): the display price is
	// 2000, not the raw-unit ratio.
	engine := seeded()
	trade := models.Trade{
		Route: models.Route{
			Path:   []models.Token{weth, usdc},
			Pairs:  []models.Pair{pool(weth, "1000000000000000000000", usdc, "2000000000000")},
			Input:  weth,
			Output: usdc,
		},
		InputAmount:  amount(weth, "1000000000000000000"),
		OutputAmount: amount(usdc, "2000000000"),
		TradeType:    models.ExactInput,
	}

	price, err := engine.TradeExecutionPrice(ctx, trade)
	assert.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(2000)))
}

func TestTradeSlippage_BalancedPool(t *testing.T) {
	ctx := context.Background()
	engine := seeded()
	trade := balancedTrade(t)

	// The mid price of a balanced pool is 1; the whole shortfall is the fee
	// plus price impact.
	slip, err := engine.TradeSlippage(ctx, trade)
	assert.NoError(t, err)
	assert.True(t, slip.Equal(decimal.RequireFromString("0.003993018960096784")))
}

func TestTradeMaximumAmountIn(t *testing.T) {
	ctx := context.Background()
	engine := seeded()
	tolerance := decimal.RequireFromString("0.005")

	// Exact-input: the typed side passes through untouched.
	exactIn := balancedTrade(t)
	maxIn, err := engine.TradeMaximumAmountIn(ctx, exactIn, tolerance)
	assert.NoError(t, err)
	assert.Equal(t, exactIn.InputAmount.Amount, maxIn.Amount)

	// Exact-output: widened and rounded up.
	exactOut := exactIn
	exactOut.TradeType = models.ExactOutput
	exactOut.InputAmount = amount(weth, "1004013040121365097")
	maxIn, err = engine.TradeMaximumAmountIn(ctx, exactOut, tolerance)
	assert.NoError(t, err)
	assert.Equal(t, "1009033105321971923", maxIn.Amount)
	assert.True(t, maxIn.Token.Equals(weth))
}

func TestTradeMinimumAmountOut(t *testing.T) {
	ctx := context.Background()
	engine := seeded()
	tolerance := decimal.RequireFromString("0.005")

	// Exact-input: shrunk and rounded down.
	exactIn := balancedTrade(t)
	minOut, err := engine.TradeMinimumAmountOut(ctx, exactIn, tolerance)
	assert.NoError(t, err)
	assert.Equal(t, "991026946134703699", minOut.Amount)
	assert.True(t, minOut.Token.Equals(dai))

	// Exact-output: the typed side passes through untouched.
	exactOut := exactIn
	exactOut.TradeType = models.ExactOutput
	minOut, err = engine.TradeMinimumAmountOut(ctx, exactOut, tolerance)
	assert.NoError(t, err)
	assert.Equal(t, exactOut.OutputAmount.Amount, minOut.Amount)
}

func TestSlippageBounds_RejectNegativeTolerance(t *testing.T) {
	ctx := context.Background()
	engine := seeded()
	trade := balancedTrade(t)
	negative := decimal.RequireFromString("-0.01")

	_, err := engine.TradeMaximumAmountIn(ctx, trade, negative)
	assert.Error(t, err)
	_, err = engine.TradeMinimumAmountOut(ctx, trade, negative)
	assert.Error(t, err)
}

func TestSlippageBounds_ZeroToleranceIsIdentity(t *testing.T) {
	ctx := context.Background()
	engine := seeded()

	trade := balancedTrade(t)
	minOut, err := engine.TradeMinimumAmountOut(ctx, trade, decimal.Zero)
	assert.NoError(t, err)
	assert.Equal(t, trade.OutputAmount.Amount, minOut.Amount)
}
