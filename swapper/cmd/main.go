package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/amberdex/swap-portal/swapper/config"
	enginequery "github.com/amberdex/swap-portal/swapper/engine_query"
	"github.com/amberdex/swap-portal/swapper/models"
	"github.com/amberdex/swap-portal/swapper/router"
	"github.com/amberdex/swap-portal/swapper/router/engines/uniswapv2"
	"github.com/amberdex/swap-portal/swapper/rpc"
)

var log zerolog.Logger

func init() {
	// Initialize zerolog with console writer
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Logger()

	// Share the logger with the RPC package
	rpc.SetLogger(log)
}

func main() {
	// Parse command line flags
	configRpc := flag.String("config-rpc", "./rpc-config.toml", "config file for the rpc server")
	configChains := flag.String("config-chains", "", "config file for the chains, built-in mainnet config when empty")
	flag.Parse()

	log.Info().
		Str("rpc_config", *configRpc).
		Str("chains_config", *configChains).
		Msg("Starting Swap Portal")

	// Load RPC server configuration
	rpcConfig, err := config.LoadRPCSwapperConfig(configRpc)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load RPC config")
	}

	// Load chain configurations
	var chains []router.SwapChain
	if *configChains != "" {
		chainLoader := config.NewChainConfigLoader()
		chains, err = chainLoader.LoadFromFile(*configChains)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load chain config")
		}
	} else {
		chains = config.DefaultChains()
	}

	log.Info().Int("count", len(chains)).Msg("Loaded chains")

	// Initialize the trade engine
	engine, engineCloser := buildEngine(rpcConfig, chains)

	// Create the trade router
	tradeRouter := router.NewTradeRouter(chains, engine)

	// Create the RPC server configuration
	serverConfig := buildServerConfig(rpcConfig)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create the RPC server
	server, err := rpc.NewServer(ctx, serverConfig, tradeRouter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create RPC server")
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
			sigCh <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}

	if engineCloser != nil {
		engineCloser()
		log.Info().Msg("Closed engine client")
	}
}

// buildEngine creates the configured trade engine: a remote HTTP engine with
// failover, or the in-process one.
func buildEngine(cfg *config.RPCSwapperConfig, chains []router.SwapChain) (router.TradeEngine, func()) {
	if cfg.EngineMode == "embedded" {
		byChain := make(map[models.ChainID]uniswapv2.Deployment, len(chains))
		for _, chain := range chains {
			byChain[chain.ID] = uniswapv2.Deployment{
				Router:       chain.RouterAddress,
				Factory:      chain.FactoryAddress,
				InitCodeHash: chain.PairInitCodeHash,
			}
		}
		log.Info().Int("chains", len(byChain)).Msg("Embedded trade engine initialized")
		return uniswapv2.New(byChain), nil
	}

	primary := cfg.EngineURLs[0]
	backups := cfg.EngineURLs[1:]
	client, err := enginequery.NewClientWithFailover(primary, backups, enginequery.DefaultFailoverConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine client")
	}
	log.Info().
		Str("primary", primary).
		Int("backups", len(backups)).
		Msg("Remote trade engine initialized")
	return client, client.Close
}

// buildServerConfig converts the loaded RPCSwapperConfig to rpc.ServerConfig
func buildServerConfig(cfg *config.RPCSwapperConfig) *rpc.ServerConfig {
	serverConfig := &rpc.ServerConfig{
		Address:        cfg.Host + ":" + itoa(cfg.Port),
		AllowedOrigins: cfg.AllowedOrigins,
		EnableMetrics:  cfg.UsePrometheus, // Enable metrics endpoint if prometheus is enabled
	}

	// Set rate limiting if configured
	if cfg.RatePerMinute > 0 {
		serverConfig.RatePerMinute = &cfg.RatePerMinute
	}
	if cfg.MaxConcurrentRequests > 0 {
		serverConfig.MaxConcurrentRequests = &cfg.MaxConcurrentRequests
	}

	// Set OpenTelemetry configuration if any telemetry is enabled
	if cfg.EnableTracing || cfg.EnableMetrics || cfg.EnableLogs || cfg.UsePrometheus {
		serverConfig.OTelConfig = &rpc.OTelConfig{
			ServiceName:     defaultString(cfg.ServiceName, "swap-portal"),
			ServiceVersion:  defaultString(cfg.ServiceVersion, "1.0.0"),
			Environment:     defaultString(cfg.Environment, "development"),
			EnableTracing:   cfg.EnableTracing,
			UseOTLPTraces:   cfg.UseOTLPTraces,
			OTLPTracesURL:   cfg.OTLPTracesURL,
			EnableMetrics:   cfg.EnableMetrics,
			UsePrometheus:   cfg.UsePrometheus,
			UseOTLPMetrics:  cfg.UseOTLPMetrics,
			OTLPMetricsURL:  cfg.OTLPMetricsURL,
			EnableLogs:      cfg.EnableLogs,
			UseOTLPLogs:     cfg.UseOTLPLogs,
			OTLPLogsURL:     cfg.OTLPLogsURL,
			InsecureOTLP:    cfg.InsecureOTLP,
			DevelopmentMode: cfg.DevelopmentMode,
		}
	}

	return serverConfig
}

// itoa converts int to string without importing strconv
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	negative := i < 0
	if negative {
		i = -i
	}
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if negative {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// defaultString returns the default value if s is empty
func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
