// Package chain implements the read-only market contract client the poller
// consumes. The ABI surface is deliberately small: the JobOpened event and
// the provider registry lookup.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/marlinprotocol/oyster-watchdog/internal/core"
	apperrors "github.com/marlinprotocol/oyster-watchdog/internal/errors"
	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
)

// marketABI is the subset of the market contract ABI the watchdog needs.
const marketABI = `[
  {
    "type": "event",
    "name": "JobOpened",
    "anonymous": false,
    "inputs": [
      {"name": "job", "type": "bytes32", "indexed": true},
      {"name": "metadata", "type": "string", "indexed": false},
      {"name": "owner", "type": "address", "indexed": true},
      {"name": "provider", "type": "address", "indexed": true},
      {"name": "rate", "type": "uint256", "indexed": false},
      {"name": "balance", "type": "uint256", "indexed": false},
      {"name": "timestamp", "type": "uint256", "indexed": false}
    ]
  },
  {
    "type": "function",
    "name": "providers",
    "stateMutability": "view",
    "inputs": [{"name": "", "type": "address"}],
    "outputs": [{"name": "cp", "type": "string"}]
  }
]`

// jobOpenedTopicCount is topic0 plus the three indexed fields.
const jobOpenedTopicCount = 4

// Backend is the slice of the Ethereum JSON-RPC client the market client
// uses. *ethclient.Client satisfies it.
type Backend interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// MarketClient reads JobOpened events and provider URLs from the market
// contract. It is safe for concurrent use; all state is read-only after
// construction.
type MarketClient struct {
	backend  Backend
	contract common.Address
	abi      abi.ABI
	logger   *slog.Logger
}

var _ core.ChainSource = (*MarketClient)(nil)

// MarketClientOptions groups dependencies for NewMarketClient.
type MarketClientOptions struct {
	Backend  Backend        // Required: JSON-RPC backend
	Contract common.Address // Required: market contract address
	Logger   *slog.Logger   // Optional: structured logger
}

// NewMarketClient constructs a market client for the given contract.
func NewMarketClient(opts MarketClientOptions) (*MarketClient, error) {
	if opts.Backend == nil {
		return nil, apperrors.Validation("chain backend is required")
	}
	if opts.Contract == (common.Address{}) {
		return nil, apperrors.Validation("market contract address is required")
	}

	parsed, err := abi.JSON(strings.NewReader(marketABI))
	if err != nil {
		return nil, fmt.Errorf("parse market abi: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &MarketClient{
		backend:  opts.Backend,
		contract: opts.Contract,
		abi:      parsed,
		logger:   logger.With("component", "market_client"),
	}, nil
}

// HeadBlock returns the current chain head height.
func (c *MarketClient) HeadBlock(ctx context.Context) (uint64, error) {
	head, err := c.backend.BlockNumber(ctx)
	if err != nil {
		return 0, apperrors.RPC("query head block", err)
	}
	return head, nil
}

// JobOpenedEvents returns the decoded JobOpened events in the inclusive
// range [from, to], in block order then log order within a block.
func (c *MarketClient) JobOpenedEvents(ctx context.Context, from, to uint64) ([]model.JobEvent, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{c.contract},
		Topics:    [][]common.Hash{{c.abi.Events["JobOpened"].ID}},
	}

	logs, err := c.backend.FilterLogs(ctx, query)
	if err != nil {
		return nil, apperrors.RPC(fmt.Sprintf("query JobOpened events [%d, %d]", from, to), err)
	}

	events := make([]model.JobEvent, 0, len(logs))
	for _, entry := range logs {
		event, decodeErr := c.decodeJobOpened(entry)
		if decodeErr != nil {
			// A log that matched topic0 but fails to decode is a data error;
			// skip it rather than poison the whole range.
			c.logger.WarnContext(ctx, "skipping undecodable JobOpened log",
				"block", entry.BlockNumber,
				"tx", entry.TxHash.Hex(),
				"error", decodeErr,
			)
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

// ProviderURL resolves an operator address to its control-plane base URL.
func (c *MarketClient) ProviderURL(ctx context.Context, operator common.Address) (string, error) {
	input, err := c.abi.Pack("providers", operator)
	if err != nil {
		return "", fmt.Errorf("pack providers call: %w", err)
	}

	output, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: input}, nil)
	if err != nil {
		return "", apperrors.RPC("call providers", err)
	}

	values, err := c.abi.Unpack("providers", output)
	if err != nil {
		return "", apperrors.Decode("unpack providers result", err)
	}

	cpURL, ok := values[0].(string)
	if !ok {
		return "", apperrors.Decode("providers result is not a string", nil)
	}

	return strings.TrimRight(strings.TrimSpace(cpURL), "/"), nil
}

// decodeJobOpened turns a raw log into a JobEvent. The job id and the two
// addresses are indexed topics; metadata travels in the data segment.
func (c *MarketClient) decodeJobOpened(entry types.Log) (model.JobEvent, error) {
	if len(entry.Topics) != jobOpenedTopicCount {
		return model.JobEvent{}, apperrors.Decode(
			fmt.Sprintf("expected %d topics, got %d", jobOpenedTopicCount, len(entry.Topics)), nil)
	}

	values, err := c.abi.Unpack("JobOpened", entry.Data)
	if err != nil {
		return model.JobEvent{}, apperrors.Decode("unpack JobOpened data", err)
	}

	metadata, ok := values[0].(string)
	if !ok {
		return model.JobEvent{}, apperrors.Decode("JobOpened metadata is not a string", nil)
	}

	return model.JobEvent{
		JobID:       strings.ToLower(entry.Topics[1].Hex()),
		Owner:       common.BytesToAddress(entry.Topics[2].Bytes()),
		Operator:    common.BytesToAddress(entry.Topics[3].Bytes()),
		Metadata:    metadata,
		BlockNumber: entry.BlockNumber,
	}, nil
}
