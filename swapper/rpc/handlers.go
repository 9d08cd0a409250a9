package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amberdex/swap-portal/swapper/models"
	"github.com/amberdex/swap-portal/swapper/router"
)

const (
	defaultSlippageBps     = 50
	defaultDeadlineSeconds = 1200
)

// SwapperServer holds the handler state: one trade router shared by every
// request.
type SwapperServer struct {
	router *router.TradeRouter
}

// NewSwapperServer creates the handler set over a trade router.
func NewSwapperServer(tradeRouter *router.TradeRouter) *SwapperServer {
	return &SwapperServer{router: tradeRouter}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		Logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("malformed request: %v", err)})
		return false
	}
	return true
}

// HandleQuote computes a full quote: wrap detection, route search, slippage
// bounds, price impact and input validation, in one response.
func (s *SwapperServer) HandleQuote(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	if _, ok := s.router.Chain(req.ChainID); !ok {
		writeJSON(w, http.StatusOK, models.QuoteResponse{
			ErrorMessage: fmt.Sprintf("unsupported chain %d", req.ChainID),
		})
		return
	}

	slippageBps := uint32(defaultSlippageBps)
	if req.SlippageBps != nil {
		slippageBps = *req.SlippageBps
	}

	// Wrap and unwrap requests bypass routing: the wrapped contract swaps
	// one for one.
	if req.TokenIn != nil && req.TokenOut != nil {
		if wrapType, werr := wrapType(*req.TokenIn, *req.TokenOut, req.ChainID); werr == nil && wrapType != "" {
			writeJSON(w, http.StatusOK, models.QuoteResponse{Success: true, WrapType: wrapType})
			return
		}
	}

	input := router.SwapInput{
		Account:     req.Account,
		TypedAmount: req.TypedAmount,
		TokenIn:     req.TokenIn,
		TokenOut:    req.TokenOut,
		Recipient:   req.Recipient,
		BalanceIn:   req.BalanceIn,
	}

	trade, resp, err := s.computeTrade(r, req)
	if err != nil {
		writeJSON(w, http.StatusOK, models.QuoteResponse{ErrorMessage: err.Error()})
		return
	}

	var maxIn, minOut *models.TokenAmount
	if trade != nil {
		mi, mo, serr := router.SlippageAdjustedAmounts(ctx, s.router.Engine(), *trade, slippageBps)
		if serr != nil {
			writeJSON(w, http.StatusOK, models.QuoteResponse{ErrorMessage: serr.Error()})
			return
		}
		maxIn, minOut = &mi, &mo

		breakdown, berr := router.ComputeTradePriceBreakdown(ctx, s.router.Engine(), trade)
		if berr != nil {
			writeJSON(w, http.StatusOK, models.QuoteResponse{ErrorMessage: berr.Error()})
			return
		}
		slippage, serr := s.router.Engine().TradeSlippage(ctx, *trade)
		if serr != nil {
			writeJSON(w, http.StatusOK, models.QuoteResponse{ErrorMessage: serr.Error()})
			return
		}
		price, perr := s.router.Engine().TradeExecutionPrice(ctx, *trade)
		if perr != nil {
			writeJSON(w, http.StatusOK, models.QuoteResponse{ErrorMessage: perr.Error()})
			return
		}
		display, derr := router.FormatExecutionPrice(ctx, s.router.Engine(), trade, false)
		if derr != nil {
			writeJSON(w, http.StatusOK, models.QuoteResponse{ErrorMessage: derr.Error()})
			return
		}

		resp.Trade = trade
		resp.ExecutionPrice = price.String()
		resp.PriceDisplay = display
		resp.MaximumIn = maxIn
		resp.MinimumOut = minOut
		resp.ApprovalAmount = maxIn
		resp.RealizedLPFee = breakdown.RealizedLPFee
		resp.PriceImpact = slippage.String()
		resp.PriceImpactWithoutFee = breakdown.PriceImpactWithoutFee.String()
		resp.Severity = int(router.WarningSeverity(&breakdown.PriceImpactWithoutFee))
		resp.RequiresTypedConfirmation = router.RequiresTypedConfirmation(&breakdown.PriceImpactWithoutFee)
		resp.Success = true
	}

	inputError, verr := s.router.ValidateSwapInput(ctx, input, trade, maxIn)
	if verr != nil {
		writeJSON(w, http.StatusOK, models.QuoteResponse{ErrorMessage: verr.Error()})
		return
	}
	resp.InputError = inputError

	writeJSON(w, http.StatusOK, resp)
}

// computeTrade parses the typed amount, builds the pool graph and runs the
// route search. A quote with no route is not an error; the response carries
// the explanation instead.
func (s *SwapperServer) computeTrade(r *http.Request, req models.QuoteRequest) (*models.Trade, models.QuoteResponse, error) {
	var resp models.QuoteResponse
	ctx := r.Context()

	if req.TokenIn == nil || req.TokenOut == nil || req.TypedAmount == "" {
		return nil, resp, nil
	}

	fixedToken := *req.TokenIn
	if req.TradeType == models.ExactOutput {
		fixedToken = *req.TokenOut
	}
	rawAmount, err := humanToRaw(req.TypedAmount, fixedToken.Currency.Decimals)
	if err != nil {
		return nil, resp, nil
	}

	pairs, err := s.router.CommonPairs(ctx, req.ChainID, *req.TokenIn, *req.TokenOut)
	if err != nil {
		return nil, resp, fmt.Errorf("resolve pools: %w", err)
	}

	var trade *models.Trade
	switch req.TradeType {
	case models.ExactInput:
		wrappedIn, werr := router.WrapAmount(models.TokenAmount{Token: *req.TokenIn, Amount: rawAmount}, req.ChainID)
		if werr != nil {
			return nil, resp, werr
		}
		wrappedOut, werr := router.WrapToken(*req.TokenOut, req.ChainID)
		if werr != nil {
			return nil, resp, werr
		}
		trade, err = s.router.BestTradeExactIn(ctx, pairs, &wrappedIn, &wrappedOut, req.SingleHop)
	case models.ExactOutput:
		wrappedOut, werr := router.WrapAmount(models.TokenAmount{Token: *req.TokenOut, Amount: rawAmount}, req.ChainID)
		if werr != nil {
			return nil, resp, werr
		}
		wrappedIn, werr := router.WrapToken(*req.TokenIn, req.ChainID)
		if werr != nil {
			return nil, resp, werr
		}
		trade, err = s.router.BestTradeExactOut(ctx, pairs, &wrappedIn, &wrappedOut, req.SingleHop)
	default:
		return nil, resp, fmt.Errorf("unknown trade type %q", req.TradeType)
	}
	if err != nil {
		return nil, resp, fmt.Errorf("route search: %w", err)
	}
	if trade == nil {
		resp.ErrorMessage = "Insufficient liquidity for this trade."
		return nil, resp, nil
	}

	// Rebind the endpoints to the user's original tokens so the native
	// asset survives in the quote while the path stays wrapped.
	trade.InputAmount.Token = *req.TokenIn
	trade.OutputAmount.Token = *req.TokenOut
	return trade, resp, nil
}

// HandleBuildSwap turns a quoted trade into estimated, executable router
// calls and selects the one to submit.
func (s *SwapperServer) HandleBuildSwap(w http.ResponseWriter, r *http.Request) {
	var req models.BuildSwapRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	if req.Trade == nil {
		writeJSON(w, http.StatusOK, models.BuildSwapResponse{ErrorMessage: "trade is required"})
		return
	}

	slippageBps := uint32(defaultSlippageBps)
	if req.SlippageBps != nil {
		slippageBps = *req.SlippageBps
	}
	ttl := req.DeadlineSeconds
	if ttl <= 0 {
		ttl = defaultDeadlineSeconds
	}

	options := models.TradeOptions{
		AllowedSlippage: decimal.New(int64(slippageBps), -4).String(),
		Recipient:       req.Recipient,
		UnixTimestamp:   time.Now().Unix(),
		TTL:             ttl,
	}

	calls, err := router.SwapCallArguments(ctx, s.router.Engine(), *req.Trade, options)
	if err != nil {
		writeJSON(w, http.StatusOK, models.BuildSwapResponse{ErrorMessage: err.Error()})
		return
	}

	candidates := router.EstimateSwapCalls(ctx, s.router.Engine(), calls, req.ChainID)
	quotes := make([]models.SwapCallQuote, len(candidates))
	for i, candidate := range candidates {
		quotes[i] = models.SwapCallQuote{
			Parameters:  candidate.Parameters,
			GasEstimate: candidate.GasEstimate,
			GasLimit:    candidate.GasLimit,
		}
		if candidate.Err != nil {
			quotes[i].Error = candidate.Err.Error()
		}
	}

	selected, err := router.SelectSwapCall(candidates)
	if err != nil {
		writeJSON(w, http.StatusOK, models.BuildSwapResponse{
			ErrorMessage: err.Error(),
			Candidates:   quotes,
		})
		return
	}

	call := models.SwapCallQuote{
		Parameters:  selected.Parameters,
		GasEstimate: selected.GasEstimate,
		GasLimit:    selected.GasLimit,
	}
	writeJSON(w, http.StatusOK, models.BuildSwapResponse{
		Success:    true,
		Call:       &call,
		Candidates: quotes,
		Summary:    router.SwapSummary(*req.Trade),
	})
}

// HandleChains lists the configured chains with their wrapped token and
// routing bases.
func (s *SwapperServer) HandleChains(w http.ResponseWriter, r *http.Request) {
	chains := s.router.Chains()
	infos := make([]models.ChainInfo, 0, len(chains))
	for _, chain := range chains {
		wrapped, err := router.WrappedNative(chain.ID)
		if err != nil {
			Logger.Warn().Err(err).Str("chain", chain.Name).Msg("No wrapped native token")
			continue
		}
		infos = append(infos, models.ChainInfo{
			ChainID: chain.ID,
			Name:    chain.Name,
			Wrapped: wrapped,
			Bases:   chain.Bases,
		})
	}
	writeJSON(w, http.StatusOK, models.ChainsResponse{Chains: infos})
}

// HandleMaxSpend returns the spendable portion of a balance, keeping the
// gas reserve back from native-asset balances.
func (s *SwapperServer) HandleMaxSpend(w http.ResponseWriter, r *http.Request) {
	var req models.MaxSpendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, models.MaxSpendResponse{
		Amount: router.MaxSpendableAmount(req.Balance),
	})
}

// wrapType reports "wrap" for native -> wrapped requests, "unwrap" for the
// reverse, empty otherwise.
func wrapType(tokenIn, tokenOut models.Token, chainID models.ChainID) (string, error) {
	wrapped, err := router.WrappedNative(chainID)
	if err != nil {
		return "", err
	}
	if tokenIn.IsEther() && tokenOut.Equals(wrapped) {
		return "wrap", nil
	}
	if tokenIn.Equals(wrapped) && tokenOut.IsEther() {
		return "unwrap", nil
	}
	return "", nil
}

// humanToRaw converts a typed display amount to smallest units, truncating
// excess precision.
func humanToRaw(typed string, decimals int) (string, error) {
	value, err := decimal.NewFromString(typed)
	if err != nil {
		return "", fmt.Errorf("malformed amount %q: %w", typed, err)
	}
	if value.Sign() <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}
	return value.Shift(int32(decimals)).Floor().String(), nil
}
