package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/marlinprotocol/oyster-watchdog/config"
	"github.com/marlinprotocol/oyster-watchdog/internal/chain"
)

// ChainConnection bundles the market client with the underlying RPC client
// so callers can close it on shutdown.
type ChainConnection struct {
	Market *chain.MarketClient
	rpc    *ethclient.Client
}

// Close releases the underlying RPC connection.
func (c *ChainConnection) Close() {
	if c != nil && c.rpc != nil {
		c.rpc.Close()
	}
}

// ConnectChain dials the JSON-RPC endpoint and builds the market client.
func ConnectChain(ctx context.Context, cfg config.ChainConfig, logger *slog.Logger) (*ChainConnection, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("chain rpc url is required")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid market contract address %q", cfg.ContractAddress)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rpc, err := ethclient.DialContext(dialCtx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial chain rpc: %w", err)
	}

	market, err := chain.NewMarketClient(chain.MarketClientOptions{
		Backend:  rpc,
		Contract: common.HexToAddress(cfg.ContractAddress),
		Logger:   logger,
	})
	if err != nil {
		rpc.Close()
		return nil, err
	}

	if logger != nil {
		logger.InfoContext(ctx, "chain rpc connected", "contract", cfg.ContractAddress)
	}

	return &ChainConnection{Market: market, rpc: rpc}, nil
}
