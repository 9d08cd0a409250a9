package router

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amberdex/swap-portal/swapper/models"
)

// IsTradeBetter reports whether trade b is strictly better than trade a.
// A present trade always beats an absent one; when both are absent the
// answer is nil. minimumDelta inflates a's execution price, so b must beat
// a by more than the delta to win. Trades with different trade types or
// mismatched endpoint currencies cannot be ranked and return
// ErrTradesNotComparable.
func IsTradeBetter(ctx context.Context, engine TradeEngine, a, b *models.Trade, minimumDelta decimal.Decimal) (*bool, error) {
	if a != nil && b == nil {
		return boolPtr(false), nil
	}
	if a == nil && b != nil {
		return boolPtr(true), nil
	}
	if a == nil && b == nil {
		return nil, nil
	}

	if a.TradeType != b.TradeType {
		return nil, ErrTradesNotComparable
	}
	if !a.InputAmount.Token.Currency.Equals(b.InputAmount.Token.Currency) {
		return nil, ErrTradesNotComparable
	}
	if !a.OutputAmount.Token.Currency.Equals(b.OutputAmount.Token.Currency) {
		return nil, ErrTradesNotComparable
	}

	priceA, err := engine.TradeExecutionPrice(ctx, *a)
	if err != nil {
		return nil, err
	}
	priceB, err := engine.TradeExecutionPrice(ctx, *b)
	if err != nil {
		return nil, err
	}

	if minimumDelta.IsZero() {
		return boolPtr(priceA.LessThan(priceB)), nil
	}
	threshold := priceA.Mul(decimal.NewFromInt(1).Add(minimumDelta))
	return boolPtr(threshold.LessThan(priceB)), nil
}

func boolPtr(v bool) *bool {
	return &v
}
