package models

import (
	"fmt"
	"strings"
)

// Pair is a liquidity pool snapshot: the two reserve balances as fetched from
// chain state. Pools are read-only here; the portal re-queries instead of
// mutating reserves.
type Pair struct {
	TokenAmount0 TokenAmount `json:"token_amount_0"`
	TokenAmount1 TokenAmount `json:"token_amount_1"`
}

// Key is the pool's deterministic identity: the unordered token pair.
// Used to dedupe candidate pools before querying reserves.
func (p Pair) Key() string {
	a := strings.ToLower(p.TokenAmount0.Token.Address)
	b := strings.ToLower(p.TokenAmount1.Token.Address)
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%s-%s", p.TokenAmount0.Token.ChainID, a, b)
}

// Involves reports whether token is one of the pool's two sides.
func (p Pair) Involves(token Token) bool {
	return p.TokenAmount0.Token.Equals(token) || p.TokenAmount1.Token.Equals(token)
}

// Route is an ordered traversal of pools from an input token to an output
// token. path has one more entry than pairs; consecutive path entries are
// exactly the two tokens of the corresponding pair.
type Route struct {
	Path   []Token `json:"path"`
	Pairs  []Pair  `json:"pairs"`
	Input  Token   `json:"input"`
	Output Token   `json:"output"`
}

// Validate checks the structural route invariants: endpoint binding, pair
// adjacency and the no-revisit rule.
func (r Route) Validate() error {
	if len(r.Path) != len(r.Pairs)+1 {
		return fmt.Errorf("route has %d path tokens for %d pairs", len(r.Path), len(r.Pairs))
	}
	if len(r.Path) < 2 {
		return fmt.Errorf("route needs at least one hop")
	}
	if !r.Path[0].Equals(r.Input) {
		return fmt.Errorf("route path does not start at the input token")
	}
	if !r.Path[len(r.Path)-1].Equals(r.Output) {
		return fmt.Errorf("route path does not end at the output token")
	}
	for i, pair := range r.Pairs {
		if !pair.Involves(r.Path[i]) || !pair.Involves(r.Path[i+1]) {
			return fmt.Errorf("pair %d does not connect its adjacent path tokens", i)
		}
	}
	seen := make(map[string]bool, len(r.Path))
	for _, token := range r.Path {
		key := strings.ToLower(token.Address)
		if seen[key] {
			return fmt.Errorf("route revisits token %s", token.Address)
		}
		seen[key] = true
	}
	return nil
}

// Hops returns the number of pools the route crosses.
func (r Route) Hops() int {
	return len(r.Pairs)
}

// Trade is an immutable quote snapshot. It is not re-validated after
// construction; callers must refresh a stale trade before executing it.
type Trade struct {
	Route        Route       `json:"route"`
	InputAmount  TokenAmount `json:"input_amount"`
	OutputAmount TokenAmount `json:"output_amount"`
	TradeType    TradeType   `json:"trade_type"`
}

// BestTradeOptions bounds a best-trade search.
type BestTradeOptions struct {
	MaxNumResults int `json:"max_num_results,omitempty"`
	MaxHops       int `json:"max_hops,omitempty"`
}

// SwapParameters is an executable router call: ABI method, stringified
// arguments and the native-asset value to attach.
type SwapParameters struct {
	MethodName string   `json:"method_name"`
	Args       []string `json:"args"`
	Value      string   `json:"value"`
}

// TradeOptions carries the user's execution options for call building.
type TradeOptions struct {
	// AllowedSlippage is a fraction, e.g. "0.005" for 50 bips.
	AllowedSlippage string `json:"allowed_slippage"`
	Recipient       string `json:"recipient"`
	UnixTimestamp   int64  `json:"unix_timestamp"`
	// TTL in seconds from UnixTimestamp; ignored when Deadline is set.
	TTL           int64 `json:"ttl,omitempty"`
	Deadline      int64 `json:"deadline,omitempty"`
	FeeOnTransfer bool  `json:"fee_on_transfer,omitempty"`
}

// TxOverrides optionally pins gas settings on submission.
type TxOverrides struct {
	GasPrice string `json:"gas_price,omitempty"`
	GasLimit string `json:"gas_limit,omitempty"`
}

// TxResponse mirrors the submitted transaction as reported by the engine.
type TxResponse struct {
	Hash          string  `json:"hash"`
	To            string  `json:"to,omitempty"`
	From          string  `json:"from"`
	Nonce         int64   `json:"nonce"`
	GasLimit      string  `json:"gas_limit"`
	GasPrice      string  `json:"gas_price"`
	Data          string  `json:"data"`
	Value         string  `json:"value"`
	ChainID       ChainID `json:"chain_id"`
	BlockNumber   string  `json:"block_number,omitempty"`
	BlockHash     string  `json:"block_hash,omitempty"`
	Timestamp     int64   `json:"timestamp,omitempty"`
	Confirmations int     `json:"confirmations"`
}

// StaticTxResult is the outcome of a dry-run call: the raw result when the
// call would succeed, or the revert reason when it would not.
type StaticTxResult struct {
	Result string `json:"result"`
	Error  bool   `json:"error"`
}
