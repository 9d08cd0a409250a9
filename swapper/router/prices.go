package router

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amberdex/swap-portal/swapper/models"
)

var feePerSwap = decimal.New(3, -3) // 0.3% taken by each pool along the route

// TradePriceBreakdown splits a trade's total slippage into the part paid to
// liquidity providers and the part caused by moving the pool price.
type TradePriceBreakdown struct {
	// PriceImpactWithoutFee is the fraction of the input lost to price
	// movement, with the cumulative LP fee removed.
	PriceImpactWithoutFee decimal.Decimal
	// RealizedLPFee is the portion of the input amount paid as pool fees,
	// denominated in the input token.
	RealizedLPFee *models.TokenAmount
}

// ComputeTradePriceBreakdown derives the fee and impact components for a
// trade. Each hop retains 0.3% of what flows through it, so the cumulative
// fee over n hops is 1-(1-0.003)^n of the input. A nil trade yields an empty
// breakdown.
func ComputeTradePriceBreakdown(ctx context.Context, engine TradeEngine, trade *models.Trade) (TradePriceBreakdown, error) {
	if trade == nil {
		return TradePriceBreakdown{}, nil
	}

	one := decimal.NewFromInt(1)
	keepPerSwap := one.Sub(feePerSwap)
	kept := one
	for range trade.Route.Pairs {
		kept = kept.Mul(keepPerSwap)
	}
	feeFraction := one.Sub(kept)

	slippage, err := engine.TradeSlippage(ctx, *trade)
	if err != nil {
		return TradePriceBreakdown{}, fmt.Errorf("trade slippage: %w", err)
	}
	impactWithoutFee := slippage.Sub(feeFraction)

	inputQty, ok := trade.InputAmount.Quantity()
	if !ok {
		return TradePriceBreakdown{}, fmt.Errorf("malformed input amount %q", trade.InputAmount.Amount)
	}
	feeAmount := feeFraction.Mul(decimal.NewFromBigInt(inputQty, 0)).Floor()

	return TradePriceBreakdown{
		PriceImpactWithoutFee: impactWithoutFee,
		RealizedLPFee: &models.TokenAmount{
			Token:  trade.InputAmount.Token,
			Amount: feeAmount.String(),
		},
	}, nil
}

// SlippageAdjustedAmounts bounds a trade with a tolerance given in basis
// points: the most input the swap may consume and the least output it must
// produce. The fixed side of the trade passes through unadjusted.
func SlippageAdjustedAmounts(ctx context.Context, engine TradeEngine, trade models.Trade, slippageBps uint32) (maxIn models.TokenAmount, minOut models.TokenAmount, err error) {
	tolerance := basisPointsToPercent(slippageBps)
	maxIn, err = engine.TradeMaximumAmountIn(ctx, trade, tolerance)
	if err != nil {
		return maxIn, minOut, fmt.Errorf("maximum amount in: %w", err)
	}
	minOut, err = engine.TradeMinimumAmountOut(ctx, trade, tolerance)
	if err != nil {
		return maxIn, minOut, fmt.Errorf("minimum amount out: %w", err)
	}
	return maxIn, minOut, nil
}

func basisPointsToPercent(bps uint32) decimal.Decimal {
	return decimal.New(int64(bps), -4)
}

// WarningSeverity grades a price impact fraction from 0 (negligible) to 4
// (severe). The steps sit at 1%, 3%, 5% and 10%.
func WarningSeverity(priceImpactWithoutFee *decimal.Decimal) uint8 {
	if priceImpactWithoutFee == nil {
		return 0
	}
	switch {
	case priceImpactWithoutFee.LessThan(decimal.New(1, -2)):
		return 0
	case priceImpactWithoutFee.LessThan(decimal.New(3, -2)):
		return 1
	case priceImpactWithoutFee.LessThan(decimal.New(5, -2)):
		return 2
	case priceImpactWithoutFee.LessThan(decimal.New(1, -1)):
		return 3
	default:
		return 4
	}
}

// RequiresTypedConfirmation reports whether the impact is high enough that
// the caller should demand an explicitly typed confirmation before
// submitting, set at 15%.
func RequiresTypedConfirmation(priceImpactWithoutFee *decimal.Decimal) bool {
	if priceImpactWithoutFee == nil {
		return false
	}
	return !priceImpactWithoutFee.LessThan(decimal.New(15, -2))
}

// FormatExecutionPrice renders a trade's execution price as a human string,
// e.g. "1634.12 DAI / WETH". Inverted swaps the quote direction.
func FormatExecutionPrice(ctx context.Context, engine TradeEngine, trade *models.Trade, inverted bool) (string, error) {
	if trade == nil {
		return "", nil
	}
	price, err := engine.TradeExecutionPrice(ctx, *trade)
	if err != nil {
		return "", fmt.Errorf("execution price: %w", err)
	}
	inSym := trade.InputAmount.Token.Currency.Symbol
	outSym := trade.OutputAmount.Token.Currency.Symbol
	if inverted {
		if price.IsZero() {
			return "", fmt.Errorf("cannot invert zero execution price")
		}
		invPrice := decimal.NewFromInt(1).DivRound(price, 18)
		return fmt.Sprintf("%s %s / %s", significant(invPrice, 6), inSym, outSym), nil
	}
	return fmt.Sprintf("%s %s / %s", significant(price, 6), outSym, inSym), nil
}

// significant trims d to the given number of significant digits.
func significant(d decimal.Decimal, digits int32) string {
	if d.IsZero() {
		return "0"
	}
	abs := d.Abs()
	exp := int32(len(abs.Round(0).String()))
	if abs.LessThan(decimal.NewFromInt(1)) {
		exp = 0
		frac := abs
		for frac.LessThan(decimal.New(1, -1)) {
			frac = frac.Shift(1)
			exp--
		}
	}
	return d.Round(digits - exp).String()
}
