package etherscan

import (
	"github.com/chainbell/chainbell/internal/pkg/types"
	"github.com/chainbell/chainbell/internal/txdetail"
)

type (
	// transactionResponse mirrors the proxy module's eth_getTransactionByHash
	// result. Only the fields the pipeline consumes are kept.
	transactionResponse struct {
		Hash        string    `json:"hash"`
		From        string    `json:"from"`
		To          string    `json:"to"`
		Value       types.Hex `json:"value"`
		Input       string    `json:"input"`
		BlockNumber types.Hex `json:"blockNumber"`
	}

	// logResponse mirrors a single receipt log entry.
	logResponse struct {
		Address string    `json:"address"`
		Topics  []string  `json:"topics"`
		Data    types.Hex `json:"data"`
	}

	// receiptResponse mirrors the proxy module's eth_getTransactionReceipt result.
	receiptResponse struct {
		Status types.Hex     `json:"status"`
		Logs   []logResponse `json:"logs"`
	}
)

func (r transactionResponse) toTransaction() txdetail.Transaction {
	return txdetail.Transaction{
		Hash:        r.Hash,
		From:        r.From,
		To:          r.To,
		Value:       r.Value,
		Input:       r.Input,
		BlockNumber: r.BlockNumber,
	}
}

func (r receiptResponse) toReceipt() txdetail.Receipt {
	logs := make([]txdetail.Log, len(r.Logs))
	for i, entry := range r.Logs {
		logs[i] = txdetail.Log(entry)
	}

	return txdetail.Receipt{
		Status: r.Status,
		Logs:   logs,
	}
}
