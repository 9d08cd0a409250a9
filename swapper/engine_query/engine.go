package enginequery

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amberdex/swap-portal/swapper/models"
	"github.com/amberdex/swap-portal/swapper/router"
)

var _ router.TradeEngine = (*Client)(nil)

// PairReserves resolves a candidate pair to its pool; a null pair in the
// payload means the pool does not exist or holds no liquidity.
func (c *Client) PairReserves(ctx context.Context, tokenA, tokenB models.Token) (*models.Pair, error) {
	var resp pairReservesResponse
	err := c.post(ctx, "/v1/pair/reserves", pairReservesRequest{TokenA: tokenA, TokenB: tokenB}, &resp)
	if err != nil {
		return nil, fmt.Errorf("pair reserves: %w", err)
	}
	return resp.Pair, nil
}

func (c *Client) PairAddress(ctx context.Context, token0, token1 models.Token) (string, error) {
	var resp pairAddressResponse
	err := c.post(ctx, "/v1/pair/address", pairAddressRequest{Token0: token0, Token1: token1}, &resp)
	if err != nil {
		return "", fmt.Errorf("pair address: %w", err)
	}
	return resp.Address, nil
}

func (c *Client) BestTradeExactIn(ctx context.Context, pairs []models.Pair, amountIn models.TokenAmount, tokenOut models.Token, options models.BestTradeOptions) ([]models.Trade, error) {
	var resp bestTradeResponse
	req := bestTradeExactInRequest{Pairs: pairs, AmountIn: amountIn, TokenOut: tokenOut, Options: options}
	if err := c.post(ctx, "/v1/trade/best-exact-in", req, &resp); err != nil {
		return nil, fmt.Errorf("best trade exact in: %w", err)
	}
	return resp.Trades, nil
}

func (c *Client) BestTradeExactOut(ctx context.Context, pairs []models.Pair, tokenIn models.Token, amountOut models.TokenAmount, options models.BestTradeOptions) ([]models.Trade, error) {
	var resp bestTradeResponse
	req := bestTradeExactOutRequest{Pairs: pairs, TokenIn: tokenIn, AmountOut: amountOut, Options: options}
	if err := c.post(ctx, "/v1/trade/best-exact-out", req, &resp); err != nil {
		return nil, fmt.Errorf("best trade exact out: %w", err)
	}
	return resp.Trades, nil
}

func (c *Client) TradeExecutionPrice(ctx context.Context, trade models.Trade) (decimal.Decimal, error) {
	var resp priceResponse
	if err := c.post(ctx, "/v1/trade/execution-price", tradeRequest{Trade: trade}, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("execution price: %w", err)
	}
	price, err := decimal.NewFromString(resp.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed execution price %q: %w", resp.Price, err)
	}
	return price, nil
}

func (c *Client) TradeSlippage(ctx context.Context, trade models.Trade) (decimal.Decimal, error) {
	var resp slippageResponse
	if err := c.post(ctx, "/v1/trade/slippage", tradeRequest{Trade: trade}, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("trade slippage: %w", err)
	}
	slippage, err := decimal.NewFromString(resp.Slippage)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed slippage %q: %w", resp.Slippage, err)
	}
	return slippage, nil
}

func (c *Client) TradeMaximumAmountIn(ctx context.Context, trade models.Trade, slippageTolerance decimal.Decimal) (models.TokenAmount, error) {
	var resp tradeAmountResponse
	req := tradeAmountRequest{Trade: trade, SlippageTolerance: slippageTolerance.String()}
	if err := c.post(ctx, "/v1/trade/maximum-in", req, &resp); err != nil {
		return models.TokenAmount{}, fmt.Errorf("maximum amount in: %w", err)
	}
	return resp.Amount, nil
}

func (c *Client) TradeMinimumAmountOut(ctx context.Context, trade models.Trade, slippageTolerance decimal.Decimal) (models.TokenAmount, error) {
	var resp tradeAmountResponse
	req := tradeAmountRequest{Trade: trade, SlippageTolerance: slippageTolerance.String()}
	if err := c.post(ctx, "/v1/trade/minimum-out", req, &resp); err != nil {
		return models.TokenAmount{}, fmt.Errorf("minimum amount out: %w", err)
	}
	return resp.Amount, nil
}

func (c *Client) SwapCallParameters(ctx context.Context, trade models.Trade, options models.TradeOptions) (models.SwapParameters, error) {
	var resp swapParametersResponse
	req := swapParametersRequest{Trade: trade, Options: options}
	if err := c.post(ctx, "/v1/swap/parameters", req, &resp); err != nil {
		return models.SwapParameters{}, fmt.Errorf("swap call parameters: %w", err)
	}
	return resp.Parameters, nil
}

func (c *Client) EstimateGas(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID) (string, error) {
	var resp gasResponse
	req := callRequest{Parameters: parameters, ChainID: chainID}
	if err := c.post(ctx, "/v1/swap/estimate-gas", req, &resp); err != nil {
		return "", fmt.Errorf("estimate gas: %w", err)
	}
	return resp.Gas, nil
}

func (c *Client) ExecCallStatic(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID) (models.StaticTxResult, error) {
	var resp staticCallResponse
	req := callRequest{Parameters: parameters, ChainID: chainID}
	if err := c.post(ctx, "/v1/swap/static-call", req, &resp); err != nil {
		return models.StaticTxResult{}, fmt.Errorf("static call: %w", err)
	}
	return resp.Result, nil
}

func (c *Client) ExecCall(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID, overrides models.TxOverrides) (models.TxResponse, error) {
	var resp txResponse
	req := callRequest{Parameters: parameters, ChainID: chainID, Overrides: &overrides}
	if err := c.post(ctx, "/v1/swap/exec", req, &resp); err != nil {
		return models.TxResponse{}, fmt.Errorf("exec call: %w", err)
	}
	return resp.Tx, nil
}

func (c *Client) Approve(ctx context.Context, token models.Token, amount string, overrides models.TxOverrides) (models.TxResponse, error) {
	var resp txResponse
	req := approveRequest{Token: token, Amount: amount, Overrides: &overrides}
	if err := c.post(ctx, "/v1/approve", req, &resp); err != nil {
		return models.TxResponse{}, fmt.Errorf("approve: %w", err)
	}
	return resp.Tx, nil
}
