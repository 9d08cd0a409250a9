package enginequery

import (
	"github.com/amberdex/swap-portal/swapper/models"
)

// Request and response payloads for the remote engine's JSON endpoints. All
// numeric values travel as decimal strings.

type pairReservesRequest struct {
	TokenA models.Token `json:"token_a"`
	TokenB models.Token `json:"token_b"`
}

type pairReservesResponse struct {
	Pair *models.Pair `json:"pair"`
}

type pairAddressRequest struct {
	Token0 models.Token `json:"token_0"`
	Token1 models.Token `json:"token_1"`
}

type pairAddressResponse struct {
	Address string `json:"address"`
}

type bestTradeExactInRequest struct {
	Pairs    []models.Pair           `json:"pairs"`
	AmountIn models.TokenAmount      `json:"amount_in"`
	TokenOut models.Token            `json:"token_out"`
	Options  models.BestTradeOptions `json:"options"`
}

type bestTradeExactOutRequest struct {
	Pairs     []models.Pair           `json:"pairs"`
	TokenIn   models.Token            `json:"token_in"`
	AmountOut models.TokenAmount      `json:"amount_out"`
	Options   models.BestTradeOptions `json:"options"`
}

type bestTradeResponse struct {
	Trades []models.Trade `json:"trades"`
}

type tradeRequest struct {
	Trade models.Trade `json:"trade"`
}

type priceResponse struct {
	Price string `json:"price"`
}

type slippageResponse struct {
	Slippage string `json:"slippage"`
}

type tradeAmountRequest struct {
	Trade models.Trade `json:"trade"`
	// SlippageTolerance is a fraction, e.g. "0.005".
	SlippageTolerance string `json:"slippage_tolerance"`
}

type tradeAmountResponse struct {
	Amount models.TokenAmount `json:"amount"`
}

type swapParametersRequest struct {
	Trade   models.Trade        `json:"trade"`
	Options models.TradeOptions `json:"options"`
}

type swapParametersResponse struct {
	Parameters models.SwapParameters `json:"parameters"`
}

type callRequest struct {
	Parameters models.SwapParameters `json:"parameters"`
	ChainID    models.ChainID        `json:"chain_id"`
	Overrides  *models.TxOverrides   `json:"overrides,omitempty"`
}

type gasResponse struct {
	Gas string `json:"gas"`
}

type staticCallResponse struct {
	Result models.StaticTxResult `json:"result"`
}

type approveRequest struct {
	Token     models.Token        `json:"token"`
	Amount    string              `json:"amount"`
	Overrides *models.TxOverrides `json:"overrides,omitempty"`
}

type txResponse struct {
	Tx models.TxResponse `json:"tx"`
}
