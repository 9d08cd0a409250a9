package router_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zeebo/assert"

	"github.com/amberdex/swap-portal/swapper/models"
	"github.com/amberdex/swap-portal/swapper/router"
)

func exactInTrade() models.Trade {
	poolAB := pool(tokenWETH, "1000000000000000000000", tokenDAI, "1000000000000000000000")
	return directTrade(
		amount(tokenWETH, "1000000000000000000"),
		amount(tokenDAI, "996006981039903216"),
		models.ExactInput,
		poolAB,
	)
}

func TestSwapCallArguments_ExactInputAddsFeeOnTransferVariant(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{
		swapParams: func(trade models.Trade, options models.TradeOptions) (models.SwapParameters, error) {
			name := "swapExactTokensForTokens"
			if options.FeeOnTransfer {
				name += "SupportingFeeOnTransferTokens"
			}
			return models.SwapParameters{MethodName: name}, nil
		},
	}

	calls, err := router.SwapCallArguments(ctx, engine, exactInTrade(), models.TradeOptions{AllowedSlippage: "0.005"})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(calls))
	assert.Equal(t, "swapExactTokensForTokens", calls[0].MethodName)
	assert.Equal(t, "swapExactTokensForTokensSupportingFeeOnTransferTokens", calls[1].MethodName)
}

func TestSwapCallArguments_ExactOutputBuildsSingleCall(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{}

	trade := exactInTrade()
	trade.TradeType = models.ExactOutput

	calls, err := router.SwapCallArguments(ctx, engine, trade, models.TradeOptions{AllowedSlippage: "0.005"})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(calls))
}

func TestEstimateSwapCalls_AppliesGasMargin(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{
		estimateGas: func(parameters models.SwapParameters, chainID models.ChainID) (string, error) {
			return "150000", nil
		},
	}

	calls := []models.SwapParameters{{MethodName: "swapExactTokensForTokens"}}
	candidates := router.EstimateSwapCalls(ctx, engine, calls, models.Mainnet)
	assert.Equal(t, 1, len(candidates))
	assert.NoError(t, candidates[0].Err)
	assert.Equal(t, "150000", candidates[0].GasEstimate)
	assert.Equal(t, "165000", candidates[0].GasLimit)
}

func TestEstimateSwapCalls_PreservesOrder(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{
		estimateGas: func(parameters models.SwapParameters, chainID models.ChainID) (string, error) {
			if parameters.MethodName == "second" {
				return "200000", nil
			}
			return "100000", nil
		},
	}

	calls := []models.SwapParameters{{MethodName: "first"}, {MethodName: "second"}}
	candidates := router.EstimateSwapCalls(ctx, engine, calls, models.Mainnet)
	assert.Equal(t, 2, len(candidates))
	assert.Equal(t, "first", candidates[0].Parameters.MethodName)
	assert.Equal(t, "100000", candidates[0].GasEstimate)
	assert.Equal(t, "second", candidates[1].Parameters.MethodName)
	assert.Equal(t, "200000", candidates[1].GasEstimate)
}

func TestEstimateSwapCalls_SlippageRevertGetsActionableMessage(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{
		estimateGas: func(parameters models.SwapParameters, chainID models.ChainID) (string, error) {
			return "", errors.New("execution reverted")
		},
		execStatic: func(parameters models.SwapParameters, chainID models.ChainID) (models.StaticTxResult, error) {
			return models.StaticTxResult{Error: true, Result: "UniswapV2Router: INSUFFICIENT_OUTPUT_AMOUNT"}, nil
		},
	}

	candidates := router.EstimateSwapCalls(ctx, engine, []models.SwapParameters{{MethodName: "swapExactTokensForTokens"}}, models.Mainnet)
	assert.Equal(t, 1, len(candidates))
	assert.Error(t, candidates[0].Err)
	assert.True(t, strings.Contains(candidates[0].Err.Error(), "slippage tolerance"))
}

func TestEstimateSwapCalls_UnknownRevertIsSurfacedVerbatim(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{
		estimateGas: func(parameters models.SwapParameters, chainID models.ChainID) (string, error) {
			return "", errors.New("execution reverted")
		},
		execStatic: func(parameters models.SwapParameters, chainID models.ChainID) (models.StaticTxResult, error) {
			return models.StaticTxResult{Error: true, Result: "TransferHelper: TRANSFER_FROM_FAILED"}, nil
		},
	}

	candidates := router.EstimateSwapCalls(ctx, engine, []models.SwapParameters{{MethodName: "swapExactTokensForTokens"}}, models.Mainnet)
	assert.Error(t, candidates[0].Err)
	assert.True(t, strings.Contains(candidates[0].Err.Error(), "TransferHelper: TRANSFER_FROM_FAILED"))
}

func TestEstimateSwapCalls_StaticSuccessAfterFailedEstimate(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{
		estimateGas: func(parameters models.SwapParameters, chainID models.ChainID) (string, error) {
			return "", errors.New("node refused")
		},
		execStatic: func(parameters models.SwapParameters, chainID models.ChainID) (models.StaticTxResult, error) {
			return models.StaticTxResult{Result: "996006981039903216"}, nil
		},
	}

	candidates := router.EstimateSwapCalls(ctx, engine, []models.SwapParameters{{MethodName: "swapExactTokensForTokens"}}, models.Mainnet)
	assert.Error(t, candidates[0].Err)
	assert.True(t, strings.Contains(candidates[0].Err.Error(), "estimating the gas"))
}

func TestSelectSwapCall_FirstSuccessBackedBySibling(t *testing.T) {
	candidates := []router.SwapCallCandidate{
		{Parameters: models.SwapParameters{MethodName: "plain"}, GasEstimate: "100000", GasLimit: "110000"},
		{Parameters: models.SwapParameters{MethodName: "feeOnTransfer"}, GasEstimate: "120000", GasLimit: "132000"},
	}

	selected, err := router.SelectSwapCall(candidates)
	assert.NoError(t, err)
	assert.Equal(t, "plain", selected.Parameters.MethodName)
}

func TestSelectSwapCall_SkipsSuccessWithFailedSibling(t *testing.T) {
	// The plain call estimated but its fee-on-transfer sibling reverted: the
	// token likely takes a transfer fee, so only the last candidate counts.
	candidates := []router.SwapCallCandidate{
		{Parameters: models.SwapParameters{MethodName: "plain"}, GasEstimate: "100000", GasLimit: "110000"},
		{Parameters: models.SwapParameters{MethodName: "feeOnTransfer"}, Err: errors.New("reverted")},
	}

	selected, err := router.SelectSwapCall(candidates)
	assert.Error(t, err)
	assert.Equal(t, "", selected.Parameters.MethodName)
	assert.True(t, strings.Contains(err.Error(), "reverted"))
}

func TestSelectSwapCall_LastSuccessWins(t *testing.T) {
	candidates := []router.SwapCallCandidate{
		{Parameters: models.SwapParameters{MethodName: "plain"}, Err: errors.New("reverted")},
		{Parameters: models.SwapParameters{MethodName: "feeOnTransfer"}, GasEstimate: "120000", GasLimit: "132000"},
	}

	selected, err := router.SelectSwapCall(candidates)
	assert.NoError(t, err)
	assert.Equal(t, "feeOnTransfer", selected.Parameters.MethodName)
}

func TestSelectSwapCall_NoCandidates(t *testing.T) {
	_, err := router.SelectSwapCall(nil)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "could not estimate gas"))
}

func TestExecSwap_PassesGasLimitOverride(t *testing.T) {
	ctx := context.Background()
	var gotOverrides models.TxOverrides
	engine := &stubEngine{
		execCall: func(parameters models.SwapParameters, chainID models.ChainID, overrides models.TxOverrides) (models.TxResponse, error) {
			gotOverrides = overrides
			return models.TxResponse{Hash: "0xabc"}, nil
		},
	}

	candidate := router.SwapCallCandidate{
		Parameters:  models.SwapParameters{MethodName: "swapExactTokensForTokens"},
		GasEstimate: "150000",
		GasLimit:    "165000",
	}
	response, err := router.ExecSwap(ctx, engine, candidate, models.Mainnet)
	assert.NoError(t, err)
	assert.Equal(t, "0xabc", response.Hash)
	assert.Equal(t, "165000", gotOverrides.GasLimit)
}

func TestExecSwap_UserRejection(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{
		execCall: func(parameters models.SwapParameters, chainID models.ChainID, overrides models.TxOverrides) (models.TxResponse, error) {
			return models.TxResponse{}, errors.New("code 4001: user rejected the request")
		},
	}

	_, err := router.ExecSwap(ctx, engine, router.SwapCallCandidate{}, models.Mainnet)
	assert.True(t, errors.Is(err, router.ErrTransactionRejected))
}

func TestSwapSummary_ShiftsToDisplayUnits(t *testing.T) {
	trade := directTrade(
		amount(tokenWETH, "1500000000000000000"),
		amount(tokenUSDC, "2400100000"),
		models.ExactInput,
		pool(tokenWETH, "1000000000000000000000", tokenUSDC, "1000000000"),
	)

	summary := router.SwapSummary(trade)
	assert.Equal(t, "Swap 1.5 WETH9 for 2400.1 USDC", summary)
}
