package router

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/amberdex/swap-portal/swapper/models"
)

var routerLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	routerLog = zerolog.New(out).With().Timestamp().Str("component", "router").Logger()
}

// BestTradeExactIn finds the best trade spending exactly amountIn for
// tokenOut over the given pools. In single-hop mode a single depth-1 query
// decides; otherwise depths 1..MaxHops are searched in order and folded with
// the comparator, so a deeper route only wins when it beats the shallower
// incumbent by more than the less-hops delta. A nil result means no route.
func (r *TradeRouter) BestTradeExactIn(ctx context.Context, pairs []models.Pair, amountIn *models.TokenAmount, tokenOut *models.Token, singleHop bool) (*models.Trade, error) {
	if amountIn == nil || tokenOut == nil || len(pairs) == 0 {
		return nil, nil
	}

	if singleHop {
		trades, err := r.engine.BestTradeExactIn(ctx, pairs, *amountIn, *tokenOut, models.BestTradeOptions{MaxHops: 1, MaxNumResults: 1})
		if err != nil {
			return nil, err
		}
		return firstTrade(trades), nil
	}

	var best *models.Trade
	for hops := 1; hops <= MaxHops; hops++ {
		trades, err := r.engine.BestTradeExactIn(ctx, pairs, *amountIn, *tokenOut, models.BestTradeOptions{MaxHops: hops, MaxNumResults: 1})
		if err != nil {
			return nil, err
		}
		current := firstTrade(trades)
		better, err := IsTradeBetter(ctx, r.engine, best, current, r.lessHopsDelta)
		if err != nil {
			return nil, err
		}
		if better != nil && *better {
			best = current
		}
	}
	if best != nil {
		routerLog.Debug().
			Int("hops", best.Route.Hops()).
			Str("amountOut", best.OutputAmount.Amount).
			Msg("Selected exact-in trade")
	}
	return best, nil
}

// BestTradeExactOut is the exact-output mirror of BestTradeExactIn.
func (r *TradeRouter) BestTradeExactOut(ctx context.Context, pairs []models.Pair, tokenIn *models.Token, amountOut *models.TokenAmount, singleHop bool) (*models.Trade, error) {
	if tokenIn == nil || amountOut == nil || len(pairs) == 0 {
		return nil, nil
	}

	if singleHop {
		trades, err := r.engine.BestTradeExactOut(ctx, pairs, *tokenIn, *amountOut, models.BestTradeOptions{MaxHops: 1, MaxNumResults: 1})
		if err != nil {
			return nil, err
		}
		return firstTrade(trades), nil
	}

	var best *models.Trade
	for hops := 1; hops <= MaxHops; hops++ {
		trades, err := r.engine.BestTradeExactOut(ctx, pairs, *tokenIn, *amountOut, models.BestTradeOptions{MaxHops: hops, MaxNumResults: 1})
		if err != nil {
			return nil, err
		}
		current := firstTrade(trades)
		better, err := IsTradeBetter(ctx, r.engine, best, current, r.lessHopsDelta)
		if err != nil {
			return nil, err
		}
		if better != nil && *better {
			best = current
		}
	}
	if best != nil {
		routerLog.Debug().
			Int("hops", best.Route.Hops()).
			Str("amountIn", best.InputAmount.Amount).
			Msg("Selected exact-out trade")
	}
	return best, nil
}

func firstTrade(trades []models.Trade) *models.Trade {
	if len(trades) == 0 {
		return nil
	}
	return &trades[0]
}
