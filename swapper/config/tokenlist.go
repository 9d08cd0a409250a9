package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-getter"

	"github.com/amberdex/swap-portal/swapper/models"
)

// TokenList is the standard token-list document published by list
// maintainers; only the fields the swapper reads are modeled.
type TokenList struct {
	Name   string          `json:"name"`
	Tokens []TokenListItem `json:"tokens"`
}

type TokenListItem struct {
	ChainID  int64  `json:"chainId"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

/*
Download a token list to a local file.

Params:
- src: the list source, any go-getter URL (https, git, file)
- dst: the file to download the list to

Returns:
- error: if the list cannot be downloaded
*/
func GetTokenList(src, dst string) error {
	deadline := time.Now().Add(120 * time.Second)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	opts := getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Mode: getter.ClientModeFile,
		Detectors: []getter.Detector{
			&getter.GitHubDetector{},
			&getter.FileDetector{},
		},
	}
	if err := opts.Get(); err != nil {
		return fmt.Errorf("failed to download token list: %w", err)
	}
	return nil
}

// LoadTokenList parses a downloaded token list and returns the tokens for
// one chain.
func LoadTokenList(path string, chainID models.ChainID) ([]models.Token, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read token list: %w", err)
	}

	var list TokenList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse token list: %w", err)
	}

	tokens := make([]models.Token, 0, len(list.Tokens))
	for _, item := range list.Tokens {
		if models.ChainID(item.ChainID) != chainID {
			continue
		}
		tokens = append(tokens, models.Token{
			ChainID: chainID,
			Address: item.Address,
			Currency: models.Currency{
				Decimals: item.Decimals,
				Symbol:   item.Symbol,
				Name:     item.Name,
			},
		})
	}
	return tokens, nil
}
