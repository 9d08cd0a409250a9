package uniswapv2

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/amberdex/swap-portal/swapper/models"
)

// Router method names, matching the v2 periphery ABI.
const (
	methodSwapExactETHForTokens    = "swapExactETHForTokens"
	methodSwapExactTokensForETH    = "swapExactTokensForETH"
	methodSwapExactTokensForTokens = "swapExactTokensForTokens"
	methodSwapTokensForExactETH    = "swapTokensForExactETH"
	methodSwapETHForExactTokens    = "swapETHForExactTokens"
	methodSwapTokensForExactTokens = "swapTokensForExactTokens"

	feeOnTransferSuffix = "SupportingFeeOnTransferTokens"
)

// SwapCallParameters builds the router invocation for a trade. The trade's
// endpoint tokens decide the native-asset variants: wrap detection relies on
// InputAmount/OutputAmount carrying the user's original tokens while the
// route path stays on wrapped addresses. Args hold decimal amount strings,
// the comma-joined path, the recipient and the deadline, in ABI order.
func (e *Engine) SwapCallParameters(ctx context.Context, trade models.Trade, options models.TradeOptions) (models.SwapParameters, error) {
	etherIn := trade.InputAmount.Token.IsEther()
	etherOut := trade.OutputAmount.Token.IsEther()
	if etherIn && etherOut {
		return models.SwapParameters{}, fmt.Errorf("cannot swap the native asset for itself")
	}

	tolerance, err := decimal.NewFromString(options.AllowedSlippage)
	if err != nil {
		return models.SwapParameters{}, fmt.Errorf("malformed slippage %q: %w", options.AllowedSlippage, err)
	}
	maxIn, err := e.TradeMaximumAmountIn(ctx, trade, tolerance)
	if err != nil {
		return models.SwapParameters{}, err
	}
	minOut, err := e.TradeMinimumAmountOut(ctx, trade, tolerance)
	if err != nil {
		return models.SwapParameters{}, err
	}

	deadline := options.Deadline
	if deadline == 0 {
		deadline = options.UnixTimestamp + options.TTL
	}
	deadlineArg := strconv.FormatInt(deadline, 10)
	pathArg := joinPath(trade.Route.Path)
	to := options.Recipient

	var params models.SwapParameters
	switch trade.TradeType {
	case models.ExactInput:
		switch {
		case etherIn:
			params = models.SwapParameters{
				MethodName: methodSwapExactETHForTokens,
				Args:       []string{minOut.Amount, pathArg, to, deadlineArg},
				Value:      maxIn.Amount,
			}
		case etherOut:
			params = models.SwapParameters{
				MethodName: methodSwapExactTokensForETH,
				Args:       []string{maxIn.Amount, minOut.Amount, pathArg, to, deadlineArg},
				Value:      "0",
			}
		default:
			params = models.SwapParameters{
				MethodName: methodSwapExactTokensForTokens,
				Args:       []string{maxIn.Amount, minOut.Amount, pathArg, to, deadlineArg},
				Value:      "0",
			}
		}
		if options.FeeOnTransfer {
			params.MethodName += feeOnTransferSuffix
		}
	case models.ExactOutput:
		if options.FeeOnTransfer {
			return models.SwapParameters{}, fmt.Errorf("fee-on-transfer cannot be used with exact-output trades")
		}
		switch {
		case etherOut:
			params = models.SwapParameters{
				MethodName: methodSwapTokensForExactETH,
				Args:       []string{minOut.Amount, maxIn.Amount, pathArg, to, deadlineArg},
				Value:      "0",
			}
		case etherIn:
			params = models.SwapParameters{
				MethodName: methodSwapETHForExactTokens,
				Args:       []string{minOut.Amount, pathArg, to, deadlineArg},
				Value:      maxIn.Amount,
			}
		default:
			params = models.SwapParameters{
				MethodName: methodSwapTokensForExactTokens,
				Args:       []string{minOut.Amount, maxIn.Amount, pathArg, to, deadlineArg},
				Value:      "0",
			}
		}
	default:
		return models.SwapParameters{}, fmt.Errorf("unknown trade type %q", trade.TradeType)
	}
	return params, nil
}

// EstimateGas returns a deterministic estimate derived from the call shape.
// The embedded engine has no node to ask, so the figure tracks typical v2
// router costs per hop.
func (e *Engine) EstimateGas(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID) (string, error) {
	call, err := parseSwapCall(parameters)
	if err != nil {
		return "", err
	}
	if static, serr := e.ExecCallStatic(ctx, parameters, chainID); serr != nil {
		return "", serr
	} else if static.Error {
		return "", fmt.Errorf("execution reverted: %s", static.Result)
	}
	hops := len(call.path) - 1
	gas := 110000 + 65000*(hops-1)
	return strconv.Itoa(gas), nil
}

// ExecCallStatic dry-runs a swap against the pool table. A bound violation
// surfaces the same revert string the on-chain router emits.
func (e *Engine) ExecCallStatic(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID) (models.StaticTxResult, error) {
	call, err := parseSwapCall(parameters)
	if err != nil {
		return models.StaticTxResult{}, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	amounts, reason, err := e.simulateLocked(call, chainID)
	if err != nil {
		return models.StaticTxResult{}, err
	}
	if reason != "" {
		return models.StaticTxResult{Result: reason, Error: true}, nil
	}
	if call.exactIn {
		return models.StaticTxResult{Result: amounts[len(amounts)-1].String()}, nil
	}
	return models.StaticTxResult{Result: amounts[0].String()}, nil
}

// ExecCall applies a swap to the pool table and returns a synthetic receipt.
// Reverts become errors, matching what a node would report on submission.
func (e *Engine) ExecCall(ctx context.Context, parameters models.SwapParameters, chainID models.ChainID, overrides models.TxOverrides) (models.TxResponse, error) {
	call, err := parseSwapCall(parameters)
	if err != nil {
		return models.TxResponse{}, err
	}
	deployment, err := e.deployment(chainID)
	if err != nil {
		return models.TxResponse{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	amounts, reason, err := e.simulateLocked(call, chainID)
	if err != nil {
		return models.TxResponse{}, err
	}
	if reason != "" {
		return models.TxResponse{}, fmt.Errorf("execution reverted: %s", reason)
	}

	for i := 0; i+1 < len(call.path); i++ {
		if err := e.settleLocked(chainID, call.path[i], call.path[i+1], amounts[i], amounts[i+1]); err != nil {
			return models.TxResponse{}, err
		}
	}

	e.nonce++
	hash := syntheticHash(parameters, e.nonce)
	engineLog.Debug().
		Str("hash", hash).
		Str("method", parameters.MethodName).
		Int("hops", len(call.path)-1).
		Msg("Applied swap to pool table")
	return models.TxResponse{
		Hash:      hash,
		To:        deployment.Router,
		From:      call.to,
		Nonce:     e.nonce,
		GasLimit:  overrides.GasLimit,
		GasPrice:  overrides.GasPrice,
		Value:     parameters.Value,
		ChainID:   chainID,
		Timestamp: time.Now().Unix(),
	}, nil
}

// Approve returns a synthetic approval receipt; the embedded engine tracks
// no allowances.
func (e *Engine) Approve(ctx context.Context, token models.Token, amount string, overrides models.TxOverrides) (models.TxResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nonce++
	params := models.SwapParameters{MethodName: "approve", Args: []string{token.Address, amount}}
	return models.TxResponse{
		Hash:      syntheticHash(params, e.nonce),
		To:        token.Address,
		Nonce:     e.nonce,
		GasLimit:  overrides.GasLimit,
		GasPrice:  overrides.GasPrice,
		Value:     "0",
		ChainID:   token.ChainID,
		Timestamp: time.Now().Unix(),
	}, nil
}

// swapCall is a decoded router invocation.
type swapCall struct {
	exactIn bool
	// fixed is the user-typed amount, bound the slippage limit on the
	// other side.
	fixed *big.Int
	bound *big.Int
	path  []string
	to    string
}

func parseSwapCall(parameters models.SwapParameters) (swapCall, error) {
	method := strings.TrimSuffix(parameters.MethodName, feeOnTransferSuffix)
	args := parameters.Args

	expectArgs := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s expects %d args, got %d", parameters.MethodName, n, len(args))
		}
		return nil
	}
	parseAmount := func(s string) (*big.Int, error) {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("malformed amount arg %q", s)
		}
		return v, nil
	}

	var call swapCall
	var err error
	switch method {
	case methodSwapExactETHForTokens:
		if err = expectArgs(4); err != nil {
			return call, err
		}
		call.exactIn = true
		if call.fixed, err = parseAmount(parameters.Value); err != nil {
			return call, err
		}
		if call.bound, err = parseAmount(args[0]); err != nil {
			return call, err
		}
		call.path, call.to = splitPath(args[1]), args[2]
	case methodSwapExactTokensForETH, methodSwapExactTokensForTokens:
		if err = expectArgs(5); err != nil {
			return call, err
		}
		call.exactIn = true
		if call.fixed, err = parseAmount(args[0]); err != nil {
			return call, err
		}
		if call.bound, err = parseAmount(args[1]); err != nil {
			return call, err
		}
		call.path, call.to = splitPath(args[2]), args[3]
	case methodSwapETHForExactTokens:
		if err = expectArgs(4); err != nil {
			return call, err
		}
		if call.fixed, err = parseAmount(args[0]); err != nil {
			return call, err
		}
		if call.bound, err = parseAmount(parameters.Value); err != nil {
			return call, err
		}
		call.path, call.to = splitPath(args[1]), args[2]
	case methodSwapTokensForExactETH, methodSwapTokensForExactTokens:
		if err = expectArgs(5); err != nil {
			return call, err
		}
		if call.fixed, err = parseAmount(args[0]); err != nil {
			return call, err
		}
		if call.bound, err = parseAmount(args[1]); err != nil {
			return call, err
		}
		call.path, call.to = splitPath(args[2]), args[3]
	default:
		return call, fmt.Errorf("unknown router method %q", parameters.MethodName)
	}

	if len(call.path) < 2 {
		return call, fmt.Errorf("path needs at least two tokens")
	}
	return call, nil
}

// simulateLocked walks the path against current reserves. It returns the
// amount at every path position, or a router revert reason when a slippage
// bound trips. Callers hold e.mu.
func (e *Engine) simulateLocked(call swapCall, chainID models.ChainID) ([]*big.Int, string, error) {
	amounts := make([]*big.Int, len(call.path))

	if call.exactIn {
		amounts[0] = call.fixed
		for i := 0; i+1 < len(call.path); i++ {
			rIn, rOut, err := e.reservesLocked(chainID, call.path[i], call.path[i+1])
			if err != nil {
				return nil, "", err
			}
			out, err := getAmountOut(amounts[i], rIn, rOut)
			if err != nil {
				return nil, "", fmt.Errorf("hop %d: %w", i, err)
			}
			amounts[i+1] = out
		}
		if amounts[len(amounts)-1].Cmp(call.bound) < 0 {
			return nil, "UniswapV2Router: INSUFFICIENT_OUTPUT_AMOUNT", nil
		}
		return amounts, "", nil
	}

	amounts[len(amounts)-1] = call.fixed
	for i := len(call.path) - 1; i > 0; i-- {
		rIn, rOut, err := e.reservesLocked(chainID, call.path[i-1], call.path[i])
		if err != nil {
			return nil, "", err
		}
		in, err := getAmountIn(amounts[i], rIn, rOut)
		if err != nil {
			return nil, "", fmt.Errorf("hop %d: %w", i-1, err)
		}
		amounts[i-1] = in
	}
	if amounts[0].Cmp(call.bound) > 0 {
		return nil, "UniswapV2Router: EXCESSIVE_INPUT_AMOUNT", nil
	}
	return amounts, "", nil
}

// reservesLocked finds a seeded pool by address pair and orders its
// reserves input-first. Callers hold e.mu.
func (e *Engine) reservesLocked(chainID models.ChainID, addrIn, addrOut string) (*big.Int, *big.Int, error) {
	key := pairKey(
		models.Token{ChainID: chainID, Address: addrIn},
		models.Token{ChainID: chainID, Address: addrOut},
	)
	pool, ok := e.pools[key]
	if !ok {
		return nil, nil, fmt.Errorf("no pool for %s", key)
	}
	r0, ok0 := pool.TokenAmount0.Quantity()
	r1, ok1 := pool.TokenAmount1.Quantity()
	if !ok0 || !ok1 {
		return nil, nil, fmt.Errorf("malformed reserves in pool %s", key)
	}
	if strings.EqualFold(pool.TokenAmount0.Token.Address, addrIn) {
		return r0, r1, nil
	}
	return r1, r0, nil
}

// settleLocked moves a hop's amounts into the pool. Callers hold e.mu.
func (e *Engine) settleLocked(chainID models.ChainID, addrIn, addrOut string, amountIn, amountOut *big.Int) error {
	key := pairKey(
		models.Token{ChainID: chainID, Address: addrIn},
		models.Token{ChainID: chainID, Address: addrOut},
	)
	pool, ok := e.pools[key]
	if !ok {
		return fmt.Errorf("no pool for %s", key)
	}
	r0, _ := pool.TokenAmount0.Quantity()
	r1, _ := pool.TokenAmount1.Quantity()
	if strings.EqualFold(pool.TokenAmount0.Token.Address, addrIn) {
		r0.Add(r0, amountIn)
		r1.Sub(r1, amountOut)
	} else {
		r1.Add(r1, amountIn)
		r0.Sub(r0, amountOut)
	}
	pool.TokenAmount0.Amount = r0.String()
	pool.TokenAmount1.Amount = r1.String()
	return nil
}

func joinPath(path []models.Token) string {
	addrs := make([]string, len(path))
	for i, token := range path {
		addrs[i] = token.Address
	}
	return strings.Join(addrs, ",")
}

func splitPath(arg string) []string {
	return strings.Split(arg, ",")
}

func syntheticHash(parameters models.SwapParameters, nonce int64) string {
	payload := fmt.Sprintf("%s|%s|%s|%d", parameters.MethodName, strings.Join(parameters.Args, "|"), parameters.Value, nonce)
	return "0x" + fmt.Sprintf("%x", crypto.Keccak256([]byte(payload)))
}
