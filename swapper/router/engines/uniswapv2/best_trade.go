package uniswapv2

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/amberdex/swap-portal/swapper/models"
)

const (
	defaultMaxNumResults = 3
	defaultMaxHops       = 3
)

// BestTradeExactIn searches the pool set for routes spending exactly
// amountIn and returns the best ones first. The search is depth-first and
// never reuses a pool or revisits a token on a route.
func (e *Engine) BestTradeExactIn(ctx context.Context, pairs []models.Pair, amountIn models.TokenAmount, tokenOut models.Token, options models.BestTradeOptions) ([]models.Trade, error) {
	maxNumResults, maxHops := searchBounds(options)

	var best []models.Trade
	err := e.searchExactIn(pairs, amountIn, amountIn, tokenOut, maxHops, nil, &best, maxNumResults)
	if err != nil {
		return nil, err
	}
	return best, nil
}

// BestTradeExactOut mirrors BestTradeExactIn for a fixed output: it walks
// backwards from tokenOut computing the required input at every hop.
func (e *Engine) BestTradeExactOut(ctx context.Context, pairs []models.Pair, tokenIn models.Token, amountOut models.TokenAmount, options models.BestTradeOptions) ([]models.Trade, error) {
	maxNumResults, maxHops := searchBounds(options)

	var best []models.Trade
	err := e.searchExactOut(pairs, tokenIn, amountOut, amountOut, maxHops, nil, &best, maxNumResults)
	if err != nil {
		return nil, err
	}
	return best, nil
}

func searchBounds(options models.BestTradeOptions) (maxNumResults, maxHops int) {
	maxNumResults = options.MaxNumResults
	if maxNumResults <= 0 {
		maxNumResults = defaultMaxNumResults
	}
	maxHops = options.MaxHops
	if maxHops <= 0 {
		maxHops = defaultMaxHops
	}
	return maxNumResults, maxHops
}

func (e *Engine) searchExactIn(pairs []models.Pair, originalAmountIn, currentAmountIn models.TokenAmount, tokenOut models.Token, maxHops int, currentPairs []models.Pair, best *[]models.Trade, maxNumResults int) error {
	inQty, ok := currentAmountIn.Quantity()
	if !ok {
		return fmt.Errorf("malformed input amount %q", currentAmountIn.Amount)
	}

	for i, pair := range pairs {
		if !pair.Involves(currentAmountIn.Token) {
			continue
		}
		reserveIn, reserveOut, err := poolReserves(pair, currentAmountIn.Token)
		if err != nil {
			return err
		}
		nextToken := reserveOut.Token
		if onPath(currentPairs, originalAmountIn.Token, nextToken) {
			continue
		}

		rIn, okIn := reserveIn.Quantity()
		rOut, okOut := reserveOut.Quantity()
		if !okIn || !okOut {
			return fmt.Errorf("malformed reserves in pool %s", pair.Key())
		}
		outQty, err := getAmountOut(inQty, rIn, rOut)
		if err != nil {
			if errors.Is(err, ErrInsufficientLiquidity) || errors.Is(err, ErrInsufficientInputAmount) {
				continue
			}
			return err
		}

		route := append(append([]models.Pair{}, currentPairs...), pair)
		if nextToken.Equals(tokenOut) {
			trade, err := buildTrade(route, originalAmountIn.Token, tokenOut, originalAmountIn, models.TokenAmount{Token: nextToken, Amount: outQty.String()}, models.ExactInput)
			if err != nil {
				return err
			}
			insertTrade(best, trade, maxNumResults)
			continue
		}

		if maxHops > 1 && len(pairs) > 1 {
			rest := excluding(pairs, i)
			nextAmount := models.TokenAmount{Token: nextToken, Amount: outQty.String()}
			if err := e.searchExactIn(rest, originalAmountIn, nextAmount, tokenOut, maxHops-1, route, best, maxNumResults); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) searchExactOut(pairs []models.Pair, tokenIn models.Token, originalAmountOut, currentAmountOut models.TokenAmount, maxHops int, currentPairs []models.Pair, best *[]models.Trade, maxNumResults int) error {
	outQty, ok := currentAmountOut.Quantity()
	if !ok {
		return fmt.Errorf("malformed output amount %q", currentAmountOut.Amount)
	}

	for i, pair := range pairs {
		if !pair.Involves(currentAmountOut.Token) {
			continue
		}
		// walking backwards: the pool pays out currentAmountOut.Token
		reserveOut, reserveIn, err := poolReserves(pair, currentAmountOut.Token)
		if err != nil {
			return err
		}
		prevToken := reserveIn.Token
		if onPathReverse(currentPairs, originalAmountOut.Token, prevToken) {
			continue
		}

		rIn, okIn := reserveIn.Quantity()
		rOut, okOut := reserveOut.Quantity()
		if !okIn || !okOut {
			return fmt.Errorf("malformed reserves in pool %s", pair.Key())
		}
		inQty, err := getAmountIn(outQty, rIn, rOut)
		if err != nil {
			if errors.Is(err, ErrInsufficientLiquidity) || errors.Is(err, ErrInsufficientOutputAmount) {
				continue
			}
			return err
		}

		route := append([]models.Pair{pair}, currentPairs...)
		if prevToken.Equals(tokenIn) {
			trade, err := buildTrade(route, tokenIn, originalAmountOut.Token, models.TokenAmount{Token: prevToken, Amount: inQty.String()}, originalAmountOut, models.ExactOutput)
			if err != nil {
				return err
			}
			insertTrade(best, trade, maxNumResults)
			continue
		}

		if maxHops > 1 && len(pairs) > 1 {
			rest := excluding(pairs, i)
			prevAmount := models.TokenAmount{Token: prevToken, Amount: inQty.String()}
			if err := e.searchExactOut(rest, tokenIn, originalAmountOut, prevAmount, maxHops-1, route, best, maxNumResults); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildTrade assembles and validates the route walked by the search.
func buildTrade(pairs []models.Pair, input, output models.Token, inputAmount, outputAmount models.TokenAmount, tradeType models.TradeType) (models.Trade, error) {
	path := make([]models.Token, 0, len(pairs)+1)
	path = append(path, input)
	current := input
	for _, pair := range pairs {
		_, other, err := poolReserves(pair, current)
		if err != nil {
			return models.Trade{}, err
		}
		path = append(path, other.Token)
		current = other.Token
	}

	route := models.Route{Path: path, Pairs: pairs, Input: input, Output: output}
	if err := route.Validate(); err != nil {
		return models.Trade{}, fmt.Errorf("assembled route: %w", err)
	}
	return models.Trade{
		Route:        route,
		InputAmount:  inputAmount,
		OutputAmount: outputAmount,
		TradeType:    tradeType,
	}, nil
}

// insertTrade keeps best sorted, better trades first, capped at max entries.
func insertTrade(best *[]models.Trade, trade models.Trade, max int) {
	pos := len(*best)
	for i := range *best {
		if tradeBeats(trade, (*best)[i]) {
			pos = i
			break
		}
	}
	*best = append(*best, models.Trade{})
	copy((*best)[pos+1:], (*best)[pos:])
	(*best)[pos] = trade

	if len(*best) > max {
		*best = (*best)[:max]
	}
}

// tradeBeats ranks two trades of the same type and amounts basis: more
// output (or less input) wins, hops break ties.
func tradeBeats(a, b models.Trade) bool {
	if a.TradeType == models.ExactInput {
		ao, _ := a.OutputAmount.Quantity()
		bo, _ := b.OutputAmount.Quantity()
		if cmp := ao.Cmp(bo); cmp != 0 {
			return cmp > 0
		}
	} else {
		ai, _ := a.InputAmount.Quantity()
		bi, _ := b.InputAmount.Quantity()
		if cmp := ai.Cmp(bi); cmp != 0 {
			return cmp < 0
		}
	}
	return a.Route.Hops() < b.Route.Hops()
}

// onPath reports whether token already appears on the forward path defined
// by start and the walked pairs.
func onPath(pairs []models.Pair, start, token models.Token) bool {
	if token.Equals(start) {
		return true
	}
	for _, pair := range pairs {
		if pair.Involves(token) {
			return true
		}
	}
	return false
}

// onPathReverse is the backwards-walk equivalent: end is the route output.
func onPathReverse(pairs []models.Pair, end, token models.Token) bool {
	if token.Equals(end) {
		return true
	}
	for _, pair := range pairs {
		if pair.Involves(token) {
			return true
		}
	}
	return false
}

func excluding(pairs []models.Pair, i int) []models.Pair {
	rest := make([]models.Pair, 0, len(pairs)-1)
	rest = append(rest, pairs[:i]...)
	rest = append(rest, pairs[i+1:]...)
	return rest
}

// big.Int helpers shared by pricing.

func mustQuantity(amount models.TokenAmount) (*big.Int, error) {
	qty, ok := amount.Quantity()
	if !ok {
		return nil, fmt.Errorf("malformed amount %q for %s", amount.Amount, strings.ToLower(amount.Token.Address))
	}
	return qty, nil
}
