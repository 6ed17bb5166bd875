package ethereum

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chainbell/chainbell/internal/chainpoll"
	"github.com/chainbell/chainbell/internal/pkg/types"
	"github.com/chainbell/chainbell/internal/pkg/x/chflow"
)

// eventChannelBufferSize bounds the subscription channel so a slow consumer
// does not pile up an unbounded backlog of blocks.
const eventChannelBufferSize = 16

type (
	// TransactionResponse represents a raw transaction object returned by the
	// Ethereum JSON-RPC API. Only the fields the pipeline consumes are kept.
	TransactionResponse struct {
		Hash        string    `json:"hash"`
		From        string    `json:"from"`
		To          string    `json:"to"`
		Value       types.Hex `json:"value"`
		Input       string    `json:"input"`
		BlockNumber types.Hex `json:"blockNumber"`
	}

	// BlockResponse represents a block returned by eth_getBlockByNumber with
	// full transaction objects.
	BlockResponse struct {
		Hash         string                `json:"hash"`
		Number       types.Hex             `json:"number"`
		Timestamp    string                `json:"timestamp"`
		Transactions []TransactionResponse `json:"transactions"`
	}
)

// toPollerTransaction converts a TransactionResponse into the poller's view.
func (t TransactionResponse) toPollerTransaction() chainpoll.Transaction {
	return chainpoll.Transaction{
		Hash:        t.Hash,
		From:        t.From,
		To:          t.To,
		Value:       t.Value,
		Input:       t.Input,
		BlockNumber: t.BlockNumber,
	}
}

// toPollerBlock converts a BlockResponse into the poller's view, preserving
// transaction order.
func (b BlockResponse) toPollerBlock() chainpoll.Block {
	transactions := make([]chainpoll.Transaction, len(b.Transactions))
	for i, t := range b.Transactions {
		transactions[i] = t.toPollerTransaction()
	}

	return chainpoll.Block{
		Height:       b.Number,
		Hash:         b.Hash,
		Transactions: transactions,
	}
}

// getLatestBlockNumber fetches the current chain head height.
func (c *client) getLatestBlockNumber(ctx context.Context) (types.Hex, error) {
	data, err := c.conn.Fetch(ctx, "eth_blockNumber")
	if err != nil {
		return "", err
	}

	var blockNumber types.Hex
	return blockNumber, json.Unmarshal(data, &blockNumber)
}

// getBlockByNumber retrieves a full block, with transaction objects, by height.
func (c *client) getBlockByNumber(ctx context.Context, height types.Hex) (BlockResponse, error) {
	data, err := c.conn.Fetch(ctx, "eth_getBlockByNumber", height, true)
	if err != nil {
		return BlockResponse{}, err
	}

	var blockResponse BlockResponse
	return blockResponse, json.Unmarshal(data, &blockResponse)
}

// FetchBlockByHeight implements chainpoll.Blockchain.
func (c *client) FetchBlockByHeight(ctx context.Context, height types.Hex) (chainpoll.Block, error) {
	blockResponse, err := c.getBlockByNumber(ctx, height)
	if err != nil {
		return chainpoll.Block{}, err
	}

	return blockResponse.toPollerBlock(), nil
}

// pollNewBlocks emits every block from fromHeight through the current chain
// head, in ascending order, and returns the height to start from on the next
// tick. A failed head lookup is reported as a single error event and the
// range is retried unchanged on the next tick.
func (c *client) pollNewBlocks(ctx context.Context, fromHeight types.Hex, eventsCh chan<- chainpoll.BlockchainEvent) types.Hex {
	latestHeight, err := c.getLatestBlockNumber(ctx)
	if err != nil {
		chflow.Send(ctx, eventsCh, chainpoll.BlockchainEvent{Height: fromHeight, Err: err})
		return fromHeight
	}

	if fromHeight.Int() > latestHeight.Int() {
		return fromHeight
	}

	for currentHeight := fromHeight; currentHeight.Int() <= latestHeight.Int(); currentHeight = currentHeight.Add(1) {
		block, err := c.FetchBlockByHeight(ctx, currentHeight)

		if !chflow.Send(ctx, eventsCh, chainpoll.BlockchainEvent{
			Height: currentHeight,
			Block:  block,
			Err:    err,
		}) {
			return currentHeight
		}
	}

	return latestHeight.Add(1)
}

// Subscribe implements chainpoll.Blockchain. It polls the node on a fixed
// interval and streams every block from fromHeight (inclusive) onward. An
// empty fromHeight starts at the chain head observed on the first tick. The
// returned channel closes when ctx is canceled.
func (c *client) Subscribe(ctx context.Context, fromHeight types.Hex) (<-chan chainpoll.BlockchainEvent, error) {
	if fromHeight.IsEmpty() {
		latestHeight, err := c.getLatestBlockNumber(ctx)
		if err != nil {
			return nil, err
		}

		fromHeight = latestHeight
	}

	eventsCh := make(chan chainpoll.BlockchainEvent, eventChannelBufferSize)
	go func() {
		defer close(eventsCh)

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.pollInterval):
				fromHeight = c.pollNewBlocks(ctx, fromHeight, eventsCh)
			}
		}
	}()

	return eventsCh, nil
}
