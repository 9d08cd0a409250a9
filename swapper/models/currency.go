package models

import (
	"math/big"
)

// ChainID identifies an EVM network.
type ChainID int64

const (
	Mainnet ChainID = 1
	Ropsten ChainID = 3
	Rinkeby ChainID = 4
	Goerli  ChainID = 5
	Kovan   ChainID = 42
)

// TradeType fixes which side of a trade the user typed.
type TradeType string

const (
	ExactInput  TradeType = "EXACT_INPUT"
	ExactOutput TradeType = "EXACT_OUTPUT"
)

// Currency describes the display metadata of an asset. Two currencies are the
// same asset iff decimals, symbol and name all match.
type Currency struct {
	Decimals int    `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
}

// Ether is the reserved sentinel for the chain's native asset. It never has a
// contract address; pools only exist on its wrapped representation.
var Ether = Currency{
	Decimals: 18,
	Symbol:   "ETH",
	Name:     "Ether",
}

// Equals reports whether two currencies are the same asset.
func (c Currency) Equals(other Currency) bool {
	return c.Symbol == other.Symbol && c.Name == other.Name && c.Decimals == other.Decimals
}

// Token is an asset bound to a chain. The native asset is a Token with an
// empty address and the Ether currency.
type Token struct {
	ChainID  ChainID  `json:"chain_id"`
	Address  string   `json:"address"`
	Currency Currency `json:"currency"`
}

// NativeToken returns the native-asset token for a chain.
func NativeToken(chainID ChainID) Token {
	return Token{ChainID: chainID, Address: "", Currency: Ether}
}

// IsEther tests the currency against the native-asset sentinel. The address
// is deliberately not consulted; cached metadata decides.
func (t Token) IsEther() bool {
	return t.Currency.Equals(Ether)
}

// Equals compares contract identity only: two tokens are the same contract
// regardless of cached currency metadata.
func (t Token) Equals(other Token) bool {
	return t.ChainID == other.ChainID && t.Address == other.Address
}

// TokenAmount is an integer quantity of a token in its smallest unit,
// serialized as a decimal string so no precision is lost on the wire.
type TokenAmount struct {
	Token  Token  `json:"token"`
	Amount string `json:"amount"`
}

// Quantity parses the smallest-unit amount. Returns false when the amount
// string is not a valid base-10 integer.
func (ta TokenAmount) Quantity() (*big.Int, bool) {
	if ta.Amount == "" {
		return nil, false
	}
	return new(big.Int).SetString(ta.Amount, 10)
}
