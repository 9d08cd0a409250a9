package router_test

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amberdex/swap-portal/swapper/models"
	"github.com/amberdex/swap-portal/swapper/router"
)

// Test tokens. Addresses are fake but well-formed; decimals vary so unit
// shifting is exercised.
var (
	tokenWETH = models.Token{
		ChainID: models.Mainnet,
		Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		Currency: models.Currency{
			Decimals: 18,
			Symbol:   "WETH9",
			Name:     "Wrapped Ether",
		},
	}
	tokenDAI = models.Token{
		ChainID: models.Mainnet,
		Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		Currency: models.Currency{
			Decimals: 18,
			Symbol:   "DAI",
			Name:     "Dai Stablecoin",
		},
	}
	tokenUSDC = models.Token{
		ChainID: models.Mainnet,
		Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Currency: models.Currency{
			Decimals: 6,
			Symbol:   "USDC",
			Name:     "USD Coin",
		},
	}
	tokenAMPL = models.Token{
		ChainID: models.Mainnet,
		Address: "0xD46bA6D942050d489DBd938a2C909A5d5039A161",
		Currency: models.Currency{
			Decimals: 9,
			Symbol:   "AMPL",
			Name:     "Ampleforth",
		},
	}
)

func testChain() router.SwapChain {
	return router.SwapChain{
		Name:             "mainnet",
		ID:               models.Mainnet,
		RouterAddress:    "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D",
		FactoryAddress:   "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f",
		PairInitCodeHash: "0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f",
		Bases:            []models.Token{tokenWETH, tokenDAI, tokenUSDC},
		CustomBases: map[string][]models.Token{
			"0xd46ba6d942050d489dbd938a2c909a5d5039a161": {tokenDAI, tokenWETH},
		},
	}
}

func pool(tokenA models.Token, reserveA string, tokenB models.Token, reserveB string) models.Pair {
	return models.Pair{
		TokenAmount0: models.TokenAmount{Token: tokenA, Amount: reserveA},
		TokenAmount1: models.TokenAmount{Token: tokenB, Amount: reserveB},
	}
}

func amount(token models.Token, raw string) models.TokenAmount {
	return models.TokenAmount{Token: token, Amount: raw}
}

// stubEngine implements router.TradeEngine with overridable hooks so tests
// can pin exactly the behavior under test.
type stubEngine struct {
	pairReserves   func(tokenA, tokenB models.Token) (*models.Pair, error)
	pairAddress    func(token0, token1 models.Token) (string, error)
	bestExactIn    func(pairs []models.Pair, amountIn models.TokenAmount, tokenOut models.Token, options models.BestTradeOptions) ([]models.Trade, error)
	bestExactOut   func(pairs []models.Pair, tokenIn models.Token, amountOut models.TokenAmount, options models.BestTradeOptions) ([]models.Trade, error)
	executionPrice func(trade models.Trade) (decimal.Decimal, error)
	slippage       func(trade models.Trade) (decimal.Decimal, error)
	maximumIn      func(trade models.Trade, tolerance decimal.Decimal) (models.TokenAmount, error)
	minimumOut     func(trade models.Trade, tolerance decimal.Decimal) (models.TokenAmount, error)
	swapParams     func(trade models.Trade, options models.TradeOptions) (models.SwapParameters, error)
	estimateGas    func(parameters models.SwapParameters, chainID models.ChainID) (string, error)
	execStatic     func(parameters models.SwapParameters, chainID models.ChainID) (models.StaticTxResult, error)
	execCall       func(parameters models.SwapParameters, chainID models.ChainID, overrides models.TxOverrides) (models.TxResponse, error)
}

var _ router.TradeEngine = (*stubEngine)(nil)

func (s *stubEngine) PairReserves(ctx context.Context, tokenA, tokenB models.Token) (*models.Pair, error) {
	if s.pairReserves == nil {
		return nil, nil
	}
	return s.pairReserves(tokenA, tokenB)
}

func (s *stubEngine) PairAddress(ctx context.Context, token0, token1 models.Token) (string, error) {
	if s.pairAddress == nil {
		return "0x0000000000000000000000000000000000000001", nil
	}
	return s.pairAddress(token0, token1)
}

func (s *stubEngine) BestTradeExactIn(ctx context.Context, pairs []models.Pair, amountIn models.TokenAmount, tokenOut models.Token, options models.BestTradeOptions) ([]models.Trade, error) {
	if s.bestExactIn == nil {
		return nil, nil
	}
	return s.bestExactIn(pairs, amountIn, tokenOut, options)
}

func (s *stubEngine) BestTradeExactOut(ctx context.Context, pairs []models.Pair, tokenIn models.Token, amountOut models.TokenAmount, options models.BestTradeOptions) ([]models.Trade, error) {
	if s.bestExactOut == nil {
		return nil, nil
	}
	return s.bestExactOut(pairs, tokenIn, amountOut, options)
}

func (s *stubEngine) TradeExecutionPrice(ctx context.Context, trade models.Trade) (decimal.Decimal, error) {
	if s.executionPrice == nil {
		return decimal.NewFromInt(1), nil
	}
	return s.executionPrice(trade)
}

func (s *stubEngine) TradeSlippage(ctx context.Context, trade models.Trade) (decimal.Decimal, error) {
	if s.slippage == nil {
		return decimal.Zero, nil
	}
	return s.slippage(trade)
}

func (s *stubEngine) TradeMaximumAmountIn(ctx context.Context, trade models.Trade, tolerance decimal.Decimal) (models.TokenAmount, error) {
	if s.maximumIn == nil {
		return trade.InputAmount, nil
	}
	return s.maximumIn(trade, tolerance)
}

func (s *stubEngine) TradeMinimumAmountOut(ctx context.Context, trade models.Trade, tolerance decimal.Decimal) (models.TokenAmount, error) {
	if s.minimumOut == nil {
		return trade.OutputAmount, nil
	}
	return s.minimumOut(trade, tolerance)
}

func (s *stubEngine) SwapCallParameters(ctx context.Context, trade models.Trade, options models.TradeOptions) (models.SwapParameters, error) {
	if s.swapParams == nil {
		return models.SwapParameters{MethodName: "swapExactTokensForTokens"}, nil
	}
	return s.swapParams(trade, options)
}

func (s *stubEngine) EstimateGas(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID) (string, error) {
	if s.estimateGas == nil {
		return "150000", nil
	}
	return s.estimateGas(parameters, chainID)
}

func (s *stubEngine) ExecCallStatic(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID) (models.StaticTxResult, error) {
	if s.execStatic == nil {
		return models.StaticTxResult{Result: "0"}, nil
	}
	return s.execStatic(parameters, chainID)
}

func (s *stubEngine) ExecCall(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID, overrides models.TxOverrides) (models.TxResponse, error) {
	if s.execCall == nil {
		return models.TxResponse{Hash: "0xdead"}, nil
	}
	return s.execCall(parameters, chainID, overrides)
}

func (s *stubEngine) Approve(ctx context.Context, token models.Token, amount string, overrides models.TxOverrides) (models.TxResponse, error) {
	return models.TxResponse{Hash: "0xapproved"}, nil
}

// directTrade builds a one-hop trade over a single pool for comparator and
// pricing tests.
func directTrade(in, out models.TokenAmount, tradeType models.TradeType, pools ...models.Pair) models.Trade {
	path := []models.Token{in.Token}
	current := in.Token
	for _, p := range pools {
		if p.TokenAmount0.Token.Equals(current) {
			current = p.TokenAmount1.Token
		} else {
			current = p.TokenAmount0.Token
		}
		path = append(path, current)
	}
	return models.Trade{
		Route: models.Route{
			Path:   path,
			Pairs:  pools,
			Input:  in.Token,
			Output: out.Token,
		},
		InputAmount:  in,
		OutputAmount: out,
		TradeType:    tradeType,
	}
}
