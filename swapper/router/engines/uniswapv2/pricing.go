package uniswapv2

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amberdex/swap-portal/swapper/models"
)

// pricePrecision bounds division results; raw reserves fit comfortably.
const pricePrecision = 36

// TradeExecutionPrice returns output per unit input in display units, pool
// fees included.
func (e *Engine) TradeExecutionPrice(ctx context.Context, trade models.Trade) (decimal.Decimal, error) {
	in, err := displayDecimal(trade.InputAmount)
	if err != nil {
		return decimal.Zero, err
	}
	out, err := displayDecimal(trade.OutputAmount)
	if err != nil {
		return decimal.Zero, err
	}
	if in.IsZero() {
		return decimal.Zero, fmt.Errorf("zero input amount")
	}
	return out.DivRound(in, pricePrecision), nil
}

// TradeSlippage is the relative shortfall of the execution price against the
// route's mid price. The per-hop fee is part of the shortfall.
func (e *Engine) TradeSlippage(ctx context.Context, trade models.Trade) (decimal.Decimal, error) {
	mid, err := routeMidPrice(trade.Route)
	if err != nil {
		return decimal.Zero, err
	}
	if mid.IsZero() {
		return decimal.Zero, fmt.Errorf("zero mid price")
	}
	exec, err := e.TradeExecutionPrice(ctx, trade)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(1).Sub(exec.DivRound(mid, pricePrecision)), nil
}

// TradeMaximumAmountIn bounds the input for a slippage tolerance. The fixed
// side of an exact-input trade passes through untouched; otherwise the input
// is widened and rounded up so the bound never undershoots.
func (e *Engine) TradeMaximumAmountIn(ctx context.Context, trade models.Trade, slippageTolerance decimal.Decimal) (models.TokenAmount, error) {
	if slippageTolerance.IsNegative() {
		return models.TokenAmount{}, fmt.Errorf("negative slippage tolerance %s", slippageTolerance)
	}
	if trade.TradeType == models.ExactInput {
		return trade.InputAmount, nil
	}
	in, err := mustQuantity(trade.InputAmount)
	if err != nil {
		return models.TokenAmount{}, err
	}
	widened := decimal.NewFromInt(1).Add(slippageTolerance).
		Mul(decimal.NewFromBigInt(in, 0)).
		Ceil()
	return models.TokenAmount{Token: trade.InputAmount.Token, Amount: widened.String()}, nil
}

// TradeMinimumAmountOut is the mirror bound: exact-output passes through,
// exact-input shrinks the output and rounds down.
func (e *Engine) TradeMinimumAmountOut(ctx context.Context, trade models.Trade, slippageTolerance decimal.Decimal) (models.TokenAmount, error) {
	if slippageTolerance.IsNegative() {
		return models.TokenAmount{}, fmt.Errorf("negative slippage tolerance %s", slippageTolerance)
	}
	if trade.TradeType == models.ExactOutput {
		return trade.OutputAmount, nil
	}
	out, err := mustQuantity(trade.OutputAmount)
	if err != nil {
		return models.TokenAmount{}, err
	}
	shrunk := decimal.NewFromInt(1).Sub(slippageTolerance).
		Mul(decimal.NewFromBigInt(out, 0)).
		Floor()
	return models.TokenAmount{Token: trade.OutputAmount.Token, Amount: shrunk.String()}, nil
}

// routeMidPrice chains the reserve ratios along the path, in display units.
func routeMidPrice(route models.Route) (decimal.Decimal, error) {
	price := decimal.NewFromInt(1)
	current := route.Input
	for _, pair := range route.Pairs {
		reserveIn, reserveOut, err := poolReserves(pair, current)
		if err != nil {
			return decimal.Zero, err
		}
		in, err := displayDecimal(*reserveIn)
		if err != nil {
			return decimal.Zero, err
		}
		out, err := displayDecimal(*reserveOut)
		if err != nil {
			return decimal.Zero, err
		}
		if in.IsZero() {
			return decimal.Zero, fmt.Errorf("empty reserve in pool %s", pair.Key())
		}
		price = price.Mul(out.DivRound(in, pricePrecision))
		current = reserveOut.Token
	}
	return price, nil
}

func displayDecimal(amount models.TokenAmount) (decimal.Decimal, error) {
	raw, err := decimal.NewFromString(amount.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed amount %q: %w", amount.Amount, err)
	}
	return raw.Shift(int32(-amount.Token.Currency.Decimals)), nil
}
