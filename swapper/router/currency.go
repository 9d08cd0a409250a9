package router

import (
	"fmt"
	"math/big"

	"github.com/amberdex/swap-portal/swapper/models"
)

// minNativeReserve is kept back from native-asset balances so the account can
// still pay gas: 0.01 ETH in wei.
var minNativeReserve = new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)

// WrappedNative returns the canonical wrapped-native token for a chain.
// Pools never exist directly on the native asset, so every lookup goes
// through this mapping first.
func WrappedNative(chainID models.ChainID) (models.Token, error) {
	wrapped := models.Currency{Decimals: 18, Symbol: "WETH9", Name: "Wrapped Ether"}
	switch chainID {
	case models.Mainnet:
		return models.Token{ChainID: chainID, Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Currency: wrapped}, nil
	case models.Ropsten:
		return models.Token{ChainID: chainID, Address: "0xc778417E063141139Fce010982780140Aa0cD5Ab", Currency: wrapped}, nil
	case models.Rinkeby:
		return models.Token{ChainID: chainID, Address: "0xc778417E063141139Fce010982780140Aa0cD5Ab", Currency: wrapped}, nil
	case models.Goerli:
		return models.Token{ChainID: chainID, Address: "0xB4FBF271143F4FBf7B91A5ded31805e42b2208d6", Currency: wrapped}, nil
	case models.Kovan:
		return models.Token{ChainID: chainID, Address: "0xd0A1E359811322d97991E03f863a0C30C2cF029C", Currency: wrapped}, nil
	default:
		return models.Token{}, fmt.Errorf("no wrapped native token for chain %d", chainID)
	}
}

// WrapToken maps the native asset to its wrapped form; every other token
// passes through unchanged.
func WrapToken(token models.Token, chainID models.ChainID) (models.Token, error) {
	if token.IsEther() {
		return WrappedNative(chainID)
	}
	return token, nil
}

// WrapAmount rebinds a token amount to the wrapped form of its token.
func WrapAmount(amount models.TokenAmount, chainID models.ChainID) (models.TokenAmount, error) {
	token, err := WrapToken(amount.Token, chainID)
	if err != nil {
		return models.TokenAmount{}, err
	}
	return models.TokenAmount{Token: token, Amount: amount.Amount}, nil
}

// UnwrapToken maps the wrapped-native token back to the native sentinel for
// display purposes.
func UnwrapToken(token models.Token) models.Token {
	if token.IsEther() {
		return models.NativeToken(token.ChainID)
	}
	if wrapped, err := WrappedNative(token.ChainID); err == nil && token.Equals(wrapped) {
		return models.NativeToken(token.ChainID)
	}
	return token
}

// MaxSpendableAmount returns how much of a balance can actually go into a
// swap. Native-asset balances keep minNativeReserve back for gas.
func MaxSpendableAmount(balance *models.TokenAmount) *models.TokenAmount {
	if balance == nil {
		return nil
	}
	if !balance.Token.IsEther() {
		return balance
	}
	quantity, ok := balance.Quantity()
	if !ok {
		return nil
	}
	native := models.NativeToken(balance.Token.ChainID)
	if quantity.Cmp(minNativeReserve) > 0 {
		spendable := new(big.Int).Sub(quantity, minNativeReserve)
		return &models.TokenAmount{Token: native, Amount: spendable.String()}
	}
	return &models.TokenAmount{Token: native, Amount: "0"}
}
