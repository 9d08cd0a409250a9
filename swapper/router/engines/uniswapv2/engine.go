package uniswapv2

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"

	"github.com/amberdex/swap-portal/swapper/models"
	"github.com/amberdex/swap-portal/swapper/router"
)

var engineLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	engineLog = zerolog.New(out).With().Timestamp().Str("component", "uniswapv2").Logger()
}

// defaultInitCodeHash is the keccak of the v2 pair creation bytecode, the
// third CREATE2 ingredient besides factory and token pair.
const defaultInitCodeHash = "0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f"

// Deployment locates the v2 periphery on one chain.
type Deployment struct {
	Router       string
	Factory      string
	InitCodeHash string
}

// MainnetDeployment returns the canonical mainnet contracts (router 02).
func MainnetDeployment() Deployment {
	return Deployment{
		Router:       "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D",
		Factory:      "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f",
		InitCodeHash: defaultInitCodeHash,
	}
}

// Engine is the in-process trade engine. It prices trades against a local
// pool table instead of a remote compute service, which makes it both the
// "embedded" production mode and the deterministic engine the tests run on.
type Engine struct {
	mu          sync.RWMutex
	deployments map[models.ChainID]Deployment
	pools       map[string]*models.Pair
	nonce       int64
}

var _ router.TradeEngine = (*Engine)(nil)

// New creates an Engine with the given per-chain deployments. An empty map
// defaults to mainnet only.
func New(deployments map[models.ChainID]Deployment) *Engine {
	if len(deployments) == 0 {
		deployments = map[models.ChainID]Deployment{models.Mainnet: MainnetDeployment()}
	}
	return &Engine{
		deployments: deployments,
		pools:       make(map[string]*models.Pair),
	}
}

// SeedPair installs or replaces a pool snapshot in the local table.
func (e *Engine) SeedPair(pair models.Pair) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := pair
	e.pools[pair.Key()] = &p
}

// PairReserves returns the pool for an unordered token pair, or (nil, nil)
// when no pool is seeded or its reserves are empty.
func (e *Engine) PairReserves(ctx context.Context, tokenA, tokenB models.Token) (*models.Pair, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	pool, ok := e.pools[pairKey(tokenA, tokenB)]
	if !ok {
		return nil, nil
	}
	r0, ok0 := pool.TokenAmount0.Quantity()
	r1, ok1 := pool.TokenAmount1.Quantity()
	if !ok0 || !ok1 || r0.Sign() == 0 || r1.Sign() == 0 {
		return nil, nil
	}
	snapshot := *pool
	return &snapshot, nil
}

// PairAddress derives the pool contract address with CREATE2: the factory,
// the sorted token pair and the pair init code hash fully determine it.
func (e *Engine) PairAddress(ctx context.Context, token0, token1 models.Token) (string, error) {
	deployment, err := e.deployment(token0.ChainID)
	if err != nil {
		return "", err
	}
	a := common.HexToAddress(token0.Address)
	b := common.HexToAddress(token1.Address)
	if strings.ToLower(token0.Address) > strings.ToLower(token1.Address) {
		a, b = b, a
	}

	salt := crypto.Keccak256(a.Bytes(), b.Bytes())
	initCode := common.FromHex(deployment.InitCodeHash)

	payload := make([]byte, 0, 85)
	payload = append(payload, 0xff)
	payload = append(payload, common.HexToAddress(deployment.Factory).Bytes()...)
	payload = append(payload, salt...)
	payload = append(payload, initCode...)

	return common.BytesToAddress(crypto.Keccak256(payload)[12:]).Hex(), nil
}

func (e *Engine) deployment(chainID models.ChainID) (Deployment, error) {
	deployment, ok := e.deployments[chainID]
	if !ok {
		return Deployment{}, fmt.Errorf("no deployment configured for chain %d", chainID)
	}
	return deployment, nil
}

// pairKey mirrors models.Pair.Key for a token pair without reserves.
func pairKey(a, b models.Token) string {
	x := strings.ToLower(a.Address)
	y := strings.ToLower(b.Address)
	if x > y {
		x, y = y, x
	}
	return fmt.Sprintf("%d:%s-%s", a.ChainID, x, y)
}

// poolReserves orders a pool's reserves relative to tokenIn.
func poolReserves(pair models.Pair, tokenIn models.Token) (in *models.TokenAmount, out *models.TokenAmount, err error) {
	switch {
	case pair.TokenAmount0.Token.Equals(tokenIn):
		return &pair.TokenAmount0, &pair.TokenAmount1, nil
	case pair.TokenAmount1.Token.Equals(tokenIn):
		return &pair.TokenAmount1, &pair.TokenAmount0, nil
	default:
		return nil, nil, fmt.Errorf("pool %s does not involve token %s", pair.Key(), tokenIn.Address)
	}
}
