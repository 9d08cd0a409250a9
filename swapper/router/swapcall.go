package router

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/amberdex/swap-portal/swapper/models"
)

// ErrTransactionRejected is returned when the signer declines to sign.
var ErrTransactionRejected = errors.New("transaction rejected")

const (
	revertInsufficientOutput = "UniswapV2Router: INSUFFICIENT_OUTPUT_AMOUNT"
	revertExcessiveInput     = "UniswapV2Router: EXCESSIVE_INPUT_AMOUNT"

	slippageHint = "This transaction will not succeed either due to price movement or fee on transfer. Try increasing your slippage tolerance."
)

// SwapCallCandidate is one buildable router call together with the result of
// its gas estimation. Exactly one of GasEstimate and Err is meaningful.
type SwapCallCandidate struct {
	Parameters models.SwapParameters
	// GasEstimate is the raw estimate as a decimal string, empty on failure.
	GasEstimate string
	// GasLimit is GasEstimate with a 10% safety margin applied.
	GasLimit string
	Err       error
}

// SwapCallArguments builds the candidate router calls for a trade. The plain
// call always comes first; exact-input trades add the fee-on-transfer
// variant, which tolerates tokens that take a cut in transit.
func SwapCallArguments(ctx context.Context, engine TradeEngine, trade models.Trade, options models.TradeOptions) ([]models.SwapParameters, error) {
	plain := options
	plain.FeeOnTransfer = false
	call, err := engine.SwapCallParameters(ctx, trade, plain)
	if err != nil {
		return nil, fmt.Errorf("swap call parameters: %w", err)
	}
	calls := []models.SwapParameters{call}

	if trade.TradeType == models.ExactInput {
		withFee := options
		withFee.FeeOnTransfer = true
		feeCall, err := engine.SwapCallParameters(ctx, trade, withFee)
		if err != nil {
			return nil, fmt.Errorf("fee-on-transfer call parameters: %w", err)
		}
		calls = append(calls, feeCall)
	}
	return calls, nil
}

// EstimateSwapCalls estimates gas for every candidate concurrently. A failed
// estimate is retried as a static call to pull out the revert reason; known
// slippage reverts are mapped to an actionable message. Order of the input
// is preserved in the output.
func EstimateSwapCalls(ctx context.Context, engine TradeEngine, calls []models.SwapParameters, chainID models.ChainID) []SwapCallCandidate {
	candidates := make([]SwapCallCandidate, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call models.SwapParameters) {
			defer wg.Done()
			candidates[i] = estimateSwapCall(ctx, engine, call, chainID)
		}(i, call)
	}
	wg.Wait()
	return candidates
}

func estimateSwapCall(ctx context.Context, engine TradeEngine, call models.SwapParameters, chainID models.ChainID) SwapCallCandidate {
	candidate := SwapCallCandidate{Parameters: call}

	estimate, err := engine.EstimateGas(ctx, call, chainID)
	if err == nil {
		candidate.GasEstimate = estimate
		limit, merr := applyGasMargin(estimate)
		if merr != nil {
			candidate.Err = merr
			candidate.GasEstimate = ""
			return candidate
		}
		candidate.GasLimit = limit
		return candidate
	}

	routerLog.Debug().
		Err(err).
		Str("method", call.MethodName).
		Msg("Gas estimate failed, falling back to static call")

	static, serr := engine.ExecCallStatic(ctx, call, chainID)
	if serr != nil {
		candidate.Err = fmt.Errorf("the transaction cannot succeed: %w", serr)
		return candidate
	}
	if !static.Error {
		candidate.Err = errors.New("unexpected issue with estimating the gas, please try again")
		return candidate
	}
	candidate.Err = classifyRevert(static.Result)
	return candidate
}

func classifyRevert(reason string) error {
	switch {
	case strings.Contains(reason, revertInsufficientOutput),
		strings.Contains(reason, revertExcessiveInput):
		return errors.New(slippageHint)
	default:
		return fmt.Errorf("the transaction cannot succeed: %s", reason)
	}
}

// applyGasMargin widens a raw gas estimate by 10%.
func applyGasMargin(estimate string) (string, error) {
	gas, ok := new(big.Int).SetString(estimate, 10)
	if !ok {
		return "", fmt.Errorf("malformed gas estimate %q", estimate)
	}
	margin := new(big.Int).Mul(gas, big.NewInt(11000))
	margin.Div(margin, big.NewInt(10000))
	return margin.String(), nil
}

// SelectSwapCall picks the candidate to submit. The winner is the first
// successful estimate that is either last in the list or followed by another
// successful one, so a plain call whose fee-on-transfer sibling also failed
// is not trusted. With no winner the last reported failure is surfaced, or
// an internal error when estimation produced nothing at all.
func SelectSwapCall(candidates []SwapCallCandidate) (SwapCallCandidate, error) {
	for i, candidate := range candidates {
		if candidate.GasEstimate == "" {
			continue
		}
		if i == len(candidates)-1 || candidates[i+1].GasEstimate != "" {
			return candidate, nil
		}
	}

	var lastErr error
	for _, candidate := range candidates {
		if candidate.Err != nil {
			lastErr = candidate.Err
		}
	}
	if lastErr != nil {
		return SwapCallCandidate{}, lastErr
	}
	return SwapCallCandidate{}, errors.New("unexpected error: could not estimate gas for any swap call")
}

// ExecSwap submits the selected call with its margined gas limit. A signer
// rejection (wallet code 4001) maps to ErrTransactionRejected; everything
// else is wrapped with the call's method name for diagnostics.
func ExecSwap(ctx context.Context, engine TradeEngine, candidate SwapCallCandidate, chainID models.ChainID) (models.TxResponse, error) {
	overrides := models.TxOverrides{GasLimit: candidate.GasLimit}
	response, err := engine.ExecCall(ctx, candidate.Parameters, chainID, overrides)
	if err != nil {
		if strings.Contains(err.Error(), "4001") {
			return models.TxResponse{}, ErrTransactionRejected
		}
		return models.TxResponse{}, fmt.Errorf("swap failed for %s: %w", candidate.Parameters.MethodName, err)
	}

	routerLog.Info().
		Str("hash", response.Hash).
		Str("method", candidate.Parameters.MethodName).
		Msg("Swap submitted")
	return response, nil
}

// SwapSummary renders a short human description of the executed trade,
// e.g. "Swap 1.5 WETH for 2400.1 DAI". Amounts are shifted from smallest
// units to display units.
func SwapSummary(trade models.Trade) string {
	return fmt.Sprintf("Swap %s %s for %s %s",
		displayAmount(trade.InputAmount), trade.InputAmount.Token.Currency.Symbol,
		displayAmount(trade.OutputAmount), trade.OutputAmount.Token.Currency.Symbol)
}

func displayAmount(amount models.TokenAmount) string {
	raw, err := decimal.NewFromString(amount.Amount)
	if err != nil {
		return amount.Amount
	}
	return raw.Shift(int32(-amount.Token.Currency.Decimals)).String()
}
