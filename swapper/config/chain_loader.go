package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/amberdex/swap-portal/swapper/models"
	"github.com/amberdex/swap-portal/swapper/router"
)

// ChainConfigLoader loads chain configurations and converts them to the
// router types used by the swapper.
type ChainConfigLoader struct{}

// NewChainConfigLoader creates a new chain config loader.
func NewChainConfigLoader() *ChainConfigLoader {
	return &ChainConfigLoader{}
}

// ChainsFile is the on-disk chain configuration, TOML or JSON.
type ChainsFile struct {
	Chains []ChainEntry `toml:"chains" json:"chains"`
}

type ChainEntry struct {
	Name             string `toml:"name" json:"name"`
	ID               int64  `toml:"id" json:"id"`
	RouterAddress    string `toml:"router_address" json:"router_address"`
	FactoryAddress   string `toml:"factory_address" json:"factory_address"`
	PairInitCodeHash string `toml:"pair_init_code_hash" json:"pair_init_code_hash"`

	Bases           []TokenEntry            `toml:"bases" json:"bases"`
	AdditionalBases map[string][]TokenEntry `toml:"additional_bases" json:"additional_bases"`
	CustomBases     map[string][]TokenEntry `toml:"custom_bases" json:"custom_bases"`
}

type TokenEntry struct {
	Address  string `toml:"address" json:"address"`
	Symbol   string `toml:"symbol" json:"symbol"`
	Name     string `toml:"name" json:"name"`
	Decimals int    `toml:"decimals" json:"decimals"`
}

// LoadFromFile loads a chain config from a file and returns router-compatible types.
func (l *ChainConfigLoader) LoadFromFile(filePath string) ([]router.SwapChain, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain config file: %w", err)
	}

	var chainsFile ChainsFile

	if strings.HasSuffix(filePath, ".json") {
		if err := json.Unmarshal(data, &chainsFile); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else {
		if err := toml.Unmarshal(data, &chainsFile); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	}

	return l.ConvertToRouterTypes(&chainsFile)
}

// ConvertToRouterTypes converts a ChainsFile to router.SwapChain values. Map
// keys are normalized to lowercase addresses.
func (l *ChainConfigLoader) ConvertToRouterTypes(chainsFile *ChainsFile) ([]router.SwapChain, error) {
	if chainsFile == nil || len(chainsFile.Chains) == 0 {
		return nil, fmt.Errorf("no chains in config")
	}

	chains := make([]router.SwapChain, len(chainsFile.Chains))
	for i, entry := range chainsFile.Chains {
		chainID := models.ChainID(entry.ID)
		chains[i] = router.SwapChain{
			Name:             entry.Name,
			ID:               chainID,
			RouterAddress:    entry.RouterAddress,
			FactoryAddress:   entry.FactoryAddress,
			PairInitCodeHash: entry.PairInitCodeHash,
			Bases:            convertTokens(chainID, entry.Bases),
			AdditionalBases:  convertTokenMap(chainID, entry.AdditionalBases),
			CustomBases:      convertTokenMap(chainID, entry.CustomBases),
		}
	}
	return chains, nil
}

func convertTokens(chainID models.ChainID, entries []TokenEntry) []models.Token {
	tokens := make([]models.Token, len(entries))
	for i, entry := range entries {
		tokens[i] = models.Token{
			ChainID: chainID,
			Address: entry.Address,
			Currency: models.Currency{
				Decimals: entry.Decimals,
				Symbol:   entry.Symbol,
				Name:     entry.Name,
			},
		}
	}
	return tokens
}

func convertTokenMap(chainID models.ChainID, entries map[string][]TokenEntry) map[string][]models.Token {
	if len(entries) == 0 {
		return nil
	}
	out := make(map[string][]models.Token, len(entries))
	for address, list := range entries {
		out[strings.ToLower(address)] = convertTokens(chainID, list)
	}
	return out
}

// DefaultChains returns the built-in mainnet routing configuration, used
// when no chain config file is supplied.
func DefaultChains() []router.SwapChain {
	mainnetToken := func(address, symbol, name string, decimals int) models.Token {
		return models.Token{
			ChainID: models.Mainnet,
			Address: address,
			Currency: models.Currency{
				Decimals: decimals,
				Symbol:   symbol,
				Name:     name,
			},
		}
	}

	weth := mainnetToken("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "WETH9", "Wrapped Ether", 18)
	dai := mainnetToken("0x6B175474E89094C44Da98b954EedeAC495271d0F", "DAI", "Dai Stablecoin", 18)
	usdc := mainnetToken("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "USDC", "USD Coin", 6)
	usdt := mainnetToken("0xdAC17F958D2ee523a2206206994597C13D831ec7", "USDT", "Tether USD", 6)
	wbtc := mainnetToken("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", "WBTC", "Wrapped BTC", 8)
	comp := mainnetToken("0xc00e94Cb662C3520282E6f5717214004A7f26888", "COMP", "Compound", 18)
	mkr := mainnetToken("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2", "MKR", "Maker", 18)

	// AMPL rebases; it only trades reliably against DAI and WETH.
	ampl := "0xd46ba6d942050d489dbd938a2c909a5d5039a161"

	return []router.SwapChain{
		{
			Name:             "mainnet",
			ID:               models.Mainnet,
			RouterAddress:    "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D",
			FactoryAddress:   "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f",
			PairInitCodeHash: "0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f",
			Bases:            []models.Token{weth, dai, usdc, usdt, wbtc, comp, mkr},
			CustomBases: map[string][]models.Token{
				ampl: {dai, weth},
			},
		},
	}
}
