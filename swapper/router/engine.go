package router

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/amberdex/swap-portal/swapper/models"
)

// ErrTradesNotComparable is the fail-fast error for comparing trades of
// different type or currency identity. It signals a programming bug, never a
// user-facing condition.
var ErrTradesNotComparable = errors.New("trades are not comparable")

// TradeEngine is the boundary to the external trade-computation service.
// The router never depends on a concrete transport; implementations speak
// HTTP JSON (engine_query) or run embedded (engines/uniswapv2). All numeric
// wire values are decimal strings.
type TradeEngine interface {
	// PairReserves resolves a candidate token pair to its on-chain pool.
	// A pool that does not exist, or exists with zero reserves, returns
	// (nil, nil): absence of liquidity is not an error.
	PairReserves(ctx context.Context, tokenA, tokenB models.Token) (*models.Pair, error)

	// PairAddress returns the deterministic pool contract address for an
	// unordered token pair.
	PairAddress(ctx context.Context, token0, token1 models.Token) (string, error)

	// BestTradeExactIn returns up to options.MaxNumResults trades spending
	// exactly amountIn, best first. An empty slice means no route exists
	// within options.MaxHops.
	BestTradeExactIn(ctx context.Context, pairs []models.Pair, amountIn models.TokenAmount, tokenOut models.Token, options models.BestTradeOptions) ([]models.Trade, error)

	// BestTradeExactOut is the mirror image for a fixed output amount.
	BestTradeExactOut(ctx context.Context, pairs []models.Pair, tokenIn models.Token, amountOut models.TokenAmount, options models.BestTradeOptions) ([]models.Trade, error)

	// TradeExecutionPrice returns output per unit input, fee inclusive.
	TradeExecutionPrice(ctx context.Context, trade models.Trade) (decimal.Decimal, error)

	// TradeSlippage returns the midpoint-vs-execution price delta as a
	// fraction; the per-hop pool fee is included.
	TradeSlippage(ctx context.Context, trade models.Trade) (decimal.Decimal, error)

	// TradeMaximumAmountIn returns the worst-case input for a tolerance.
	TradeMaximumAmountIn(ctx context.Context, trade models.Trade, slippageTolerance decimal.Decimal) (models.TokenAmount, error)

	// TradeMinimumAmountOut returns the worst-case output for a tolerance.
	TradeMinimumAmountOut(ctx context.Context, trade models.Trade, slippageTolerance decimal.Decimal) (models.TokenAmount, error)

	// SwapCallParameters turns a trade plus options into a router call.
	SwapCallParameters(ctx context.Context, trade models.Trade, options models.TradeOptions) (models.SwapParameters, error)

	// EstimateGas estimates the gas for a built call, as a decimal string.
	EstimateGas(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID) (string, error)

	// ExecCallStatic dry-runs a call to extract a revert reason.
	ExecCallStatic(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID) (models.StaticTxResult, error)

	// ExecCall submits the call.
	ExecCall(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID, overrides models.TxOverrides) (models.TxResponse, error)

	// Approve raises the router allowance for a token.
	Approve(ctx context.Context, token models.Token, amount string, overrides models.TxOverrides) (models.TxResponse, error)
}
