// Package model defines domain models for transaction processing.
package model

import "github.com/shopspring/decimal"

// ClientID identifies an account holder.
type ClientID uint16

// TxID identifies a deposit or withdrawal; never reused within a run.
type TxID uint32

// TxKind describes the kind of an input transaction record.
type TxKind string

var (
	Deposit    TxKind = "deposit"
	Withdrawal TxKind = "withdrawal"
	Dispute    TxKind = "dispute"
	Resolve    TxKind = "resolve"
	Chargeback TxKind = "chargeback"
)

// HasAmount reports whether records of this kind carry their own amount.
func (k TxKind) HasAmount() bool {
	return k == Deposit || k == Withdrawal
}

// Transaction is one normalized input record.
// Amount is meaningful only for deposit and withdrawal kinds.
type Transaction struct {
	Kind   TxKind
	Client ClientID
	TxID   TxID
	Amount decimal.Decimal
	Row    int
}

// DisputeStatus tracks the dispute lifecycle of a settleable transaction.
// It only ever moves forward: none -> disputed -> resolved or charged_back.
type DisputeStatus string

var (
	DisputeNone       DisputeStatus = "none"
	DisputeOpen       DisputeStatus = "disputed"
	DisputeResolved   DisputeStatus = "resolved"
	DisputeChargeback DisputeStatus = "charged_back"
)

// SettleableTx is a past deposit or withdrawal eligible for dispute handling.
type SettleableTx struct {
	TxID   TxID
	Client ClientID
	Kind   TxKind
	Amount decimal.Decimal
	Status DisputeStatus
}
