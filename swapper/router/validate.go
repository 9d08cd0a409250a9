package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/amberdex/swap-portal/swapper/models"
)

// Input errors are values, not failures: a quote request with a fixable
// problem reports the first one found, in a fixed order, so the caller can
// surface a single actionable message.
const (
	InputErrorConnectWallet    = "Connect Wallet"
	InputErrorEnterAmount      = "Enter an amount"
	InputErrorSelectToken      = "Select a token"
	InputErrorEnterRecipient   = "Enter a recipient"
	InputErrorInvalidRecipient = "Invalid recipient"
)

// badRecipientAddresses are contracts that must never receive swap output:
// the v2 factory and both router revisions. Tokens sent there are burned.
var badRecipientAddresses = map[string]bool{
	"0x5c69bee701ef814a2b6a3edd4b1652cb9cc5aa6f": true, // factory
	"0xf164fc0ec4e93095b804a4795bbe1e041497b92a": true, // router 01
	"0x7a250d5630b4cf539739df2c5dacb4c659f2488d": true, // router 02
}

// SwapInput is the user-provided state a quote validates against.
type SwapInput struct {
	Account     string
	TypedAmount string
	TokenIn     *models.Token
	TokenOut    *models.Token
	Recipient   string
	// BalanceIn is the account's balance of the input token, nil when
	// unknown.
	BalanceIn *models.TokenAmount
}

// ValidateSwapInput runs the ordered input checks and returns the first
// failing message, or empty when the input is executable. trade and
// maxAmountIn may be nil when no route was found; the balance check is then
// skipped.
func (r *TradeRouter) ValidateSwapInput(ctx context.Context, input SwapInput, trade *models.Trade, maxAmountIn *models.TokenAmount) (string, error) {
	if input.Account == "" {
		return InputErrorConnectWallet, nil
	}

	typed, err := decimal.NewFromString(input.TypedAmount)
	if input.TypedAmount == "" || err != nil || typed.IsZero() {
		return InputErrorEnterAmount, nil
	}

	if input.TokenIn == nil || input.TokenOut == nil {
		return InputErrorSelectToken, nil
	}

	recipient := input.Recipient
	if recipient == "" {
		recipient = input.Account
	}
	if recipient == "" {
		return InputErrorEnterRecipient, nil
	}
	if !common.IsHexAddress(recipient) || badRecipientAddresses[strings.ToLower(recipient)] {
		return InputErrorInvalidRecipient, nil
	}
	if trade != nil {
		involves, err := r.tradeInvolvesAddress(ctx, *trade, recipient)
		if err != nil {
			return "", err
		}
		if involves {
			return InputErrorInvalidRecipient, nil
		}
	}

	if input.BalanceIn != nil && maxAmountIn != nil {
		balance, ok := input.BalanceIn.Quantity()
		need, nok := maxAmountIn.Quantity()
		if ok && nok && balance.Cmp(need) < 0 {
			return fmt.Sprintf("Insufficient %s balance", maxAmountIn.Token.Currency.Symbol), nil
		}
	}

	return "", nil
}

// tradeInvolvesAddress reports whether address is a token on the route or
// one of the route's pool contracts.
func (r *TradeRouter) tradeInvolvesAddress(ctx context.Context, trade models.Trade, address string) (bool, error) {
	needle := strings.ToLower(address)
	for _, token := range trade.Route.Path {
		if strings.ToLower(token.Address) == needle {
			return true, nil
		}
	}
	for _, pair := range trade.Route.Pairs {
		poolAddr, err := r.engine.PairAddress(ctx, pair.TokenAmount0.Token, pair.TokenAmount1.Token)
		if err != nil {
			return false, fmt.Errorf("pair address: %w", err)
		}
		if strings.ToLower(poolAddr) == needle {
			return true, nil
		}
	}
	return false, nil
}
