package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType 充提类型
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus 充提状态
type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionOK       TransactionStatus = "ok"
	TransactionFailed   TransactionStatus = "failed"
	TransactionCanceled TransactionStatus = "canceled"
)

// Transaction 充值或提现记录
type Transaction struct {
	ID        string            `json:"id"`
	TxID      string            `json:"txid,omitempty"`
	Currency  string            `json:"currency"`
	Network   string            `json:"network,omitempty"`
	Type      TransactionType   `json:"type"`
	Amount    decimal.Decimal   `json:"amount"`
	Address   string            `json:"address,omitempty"`
	Tag       string            `json:"tag,omitempty"`
	Status    TransactionStatus `json:"status"`
	Fee       *Fee              `json:"fee,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
