package models

// QuoteRequest - POST body for /v1/quote
type QuoteRequest struct {
	ChainID      ChainID   `json:"chain_id"`
	TokenIn      *Token    `json:"token_in"`
	TokenOut     *Token    `json:"token_out"`
	TypedAmount  string    `json:"typed_amount"` // human units, e.g. "1.5"
	TradeType    TradeType `json:"trade_type"`
	SingleHop    bool      `json:"single_hop,omitempty"`
	// SlippageBps defaults to 50 (0.5%) when nil.
	SlippageBps *uint32 `json:"slippage_bps,omitempty"`
	// Account and Recipient feed input validation; Recipient defaults to Account.
	Account   string `json:"account,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	// BalanceIn, when supplied, enables the insufficient-balance check.
	BalanceIn *TokenAmount `json:"balance_in,omitempty"`
}

// QuoteResponse - unified quote for a token pair
type QuoteResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
	// InputError is a short user-facing string ("Enter an amount", ...);
	// the quote may still be present alongside it.
	InputError string `json:"input_error,omitempty"`

	// WrapType is "wrap" or "unwrap" for direct native<->wrapped requests,
	// which bypass routing entirely.
	WrapType string `json:"wrap_type,omitempty"`

	Trade          *Trade       `json:"trade,omitempty"`
	ExecutionPrice string       `json:"execution_price,omitempty"`
	PriceDisplay   string       `json:"price_display,omitempty"`
	MaximumIn      *TokenAmount `json:"maximum_in,omitempty"`
	MinimumOut     *TokenAmount `json:"minimum_out,omitempty"`
	// ApprovalAmount is the allowance target for the input token.
	ApprovalAmount *TokenAmount `json:"approval_amount,omitempty"`

	RealizedLPFee         *TokenAmount `json:"realized_lp_fee,omitempty"`
	PriceImpact           string       `json:"price_impact,omitempty"`
	PriceImpactWithoutFee string       `json:"price_impact_without_fee,omitempty"`
	// Severity: 0 none, 1 cosmetic, 2 warning, 3 confirm, 4 blocked.
	Severity int `json:"severity"`
	// RequiresTypedConfirmation is set when the impact crosses the
	// typed-word confirmation threshold.
	RequiresTypedConfirmation bool `json:"requires_typed_confirmation,omitempty"`
}

// BuildSwapRequest - POST body for /v1/swap/build
type BuildSwapRequest struct {
	ChainID     ChainID `json:"chain_id"`
	Trade       *Trade  `json:"trade"`
	SlippageBps *uint32 `json:"slippage_bps,omitempty"`
	Recipient   string  `json:"recipient"`
	// DeadlineSeconds is the TTL applied from the server clock; default 1200.
	DeadlineSeconds int64 `json:"deadline_seconds,omitempty"`
}

// SwapCallQuote is one gas-estimated call candidate.
type SwapCallQuote struct {
	Parameters  SwapParameters `json:"parameters"`
	GasEstimate string         `json:"gas_estimate,omitempty"`
	GasLimit    string         `json:"gas_limit,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// BuildSwapResponse - the selected call plus every estimated candidate
type BuildSwapResponse struct {
	Success      bool            `json:"success"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Call         *SwapCallQuote  `json:"call,omitempty"`
	Candidates   []SwapCallQuote `json:"candidates,omitempty"`
	// Summary is a human-readable description, e.g. "Swap 1.5 ETH for 320 DAI".
	Summary string `json:"summary,omitempty"`
}

// ChainInfo describes one configured chain.
type ChainInfo struct {
	ChainID ChainID `json:"chain_id"`
	Name    string  `json:"name"`
	Wrapped Token   `json:"wrapped_token"`
	Bases   []Token `json:"bases"`
}

// ChainsResponse - GET /v1/chains
type ChainsResponse struct {
	Chains []ChainInfo `json:"chains"`
}

// MaxSpendRequest - POST /v1/max-spend
type MaxSpendRequest struct {
	Balance *TokenAmount `json:"balance"`
}

// MaxSpendResponse - the spendable portion of a balance
type MaxSpendResponse struct {
	Amount *TokenAmount `json:"amount,omitempty"`
}
