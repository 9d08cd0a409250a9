package uniswapv2_test

import (
	"github.com/amberdex/swap-portal/swapper/models"
	"github.com/amberdex/swap-portal/swapper/router/engines/uniswapv2"
)

var (
	weth = models.Token{
		ChainID:  models.Mainnet,
		Address:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		Currency: models.Currency{Decimals: 18, Symbol: "WETH9", Name: "Wrapped Ether"},
	}
	dai = models.Token{
		ChainID:  models.Mainnet,
		Address:  "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		Currency: models.Currency{Decimals: 18, Symbol: "DAI", Name: "Dai Stablecoin"},
	}
	usdc = models.Token{
		ChainID:  models.Mainnet,
		Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Currency: models.Currency{Decimals: 6, Symbol: "USDC", Name: "USD Coin"},
	}
)

func pool(tokenA models.Token, reserveA string, tokenB models.Token, reserveB string) models.Pair {
	return models.Pair{
		TokenAmount0: models.TokenAmount{Token: tokenA, Amount: reserveA},
		TokenAmount1: models.TokenAmount{Token: tokenB, Amount: reserveB},
	}
}

func amount(token models.Token, raw string) models.TokenAmount {
	return models.TokenAmount{Token: token, Amount: raw}
}

func seeded(pools ...models.Pair) *uniswapv2.Engine {
	engine := uniswapv2.New(nil)
	for _, p := range pools {
		engine.SeedPair(p)
	}
	return engine
}
