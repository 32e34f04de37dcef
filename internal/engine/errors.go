package engine

import "errors"

// Logical violations. Each leaves the engine state untouched; callers skip the
// offending transaction and continue with the next record.
var (
	ErrAccountLocked     = errors.New("account is locked")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrDuplicateTx       = errors.New("duplicate transaction id")
	ErrInsufficientFunds = errors.New("insufficient available funds")
	ErrUnknownTx         = errors.New("unknown transaction id")
	ErrClientMismatch    = errors.New("transaction belongs to another client")
	ErrNotDisputable     = errors.New("transaction is not disputable")
	ErrNotDisputed       = errors.New("transaction is not under dispute")
	ErrUnknownKind       = errors.New("unknown transaction kind")
)
