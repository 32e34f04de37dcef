// Package engine implements the account ledger state machine.
package engine

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ledgerworks/payengine-backend/internal/model"
)

// Engine owns the per-client account map and the settleable transaction
// history for one processing run. It is not safe for concurrent use; callers
// that shard by client run one Engine per lane.
type Engine struct {
	logger                *zap.Logger
	disputableWithdrawals bool

	accounts   map[model.ClientID]*model.Account
	settleable map[model.TxID]*model.SettleableTx
}

// New builds an empty Engine. When disputableWithdrawals is false only
// deposits can be disputed, which is the canonical model.
func New(logger *zap.Logger, disputableWithdrawals bool) *Engine {
	return &Engine{
		logger:                logger,
		disputableWithdrawals: disputableWithdrawals,
		accounts:              make(map[model.ClientID]*model.Account),
		settleable:            make(map[model.TxID]*model.SettleableTx),
	}
}

// Process applies one transaction. A returned error is a logical violation:
// the transaction had no effect and processing may continue.
func (e *Engine) Process(tx model.Transaction) error {
	switch tx.Kind {
	case model.Deposit:
		return e.deposit(tx)
	case model.Withdrawal:
		return e.withdraw(tx)
	case model.Dispute:
		return e.dispute(tx)
	case model.Resolve:
		return e.resolve(tx)
	case model.Chargeback:
		return e.chargeback(tx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, tx.Kind)
	}
}

// Snapshot returns the state of every known account, ascending by client id.
func (e *Engine) Snapshot() []model.Account {
	out := make([]model.Account, 0, len(e.accounts))
	for _, acct := range e.accounts {
		out = append(out, *acct)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Client < out[j].Client
	})
	return out
}

// account returns the client's account, creating it on first reference.
func (e *Engine) account(client model.ClientID) *model.Account {
	acct, ok := e.accounts[client]
	if !ok {
		created := model.NewAccount(client)
		acct = &created
		e.accounts[client] = acct
	}
	return acct
}

func (e *Engine) deposit(tx model.Transaction) error {
	acct := e.account(tx.Client)
	if acct.Locked {
		return ErrAccountLocked
	}
	if !tx.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if _, exists := e.settleable[tx.TxID]; exists {
		return ErrDuplicateTx
	}

	acct.Available = acct.Available.Add(tx.Amount)
	e.settleable[tx.TxID] = &model.SettleableTx{
		TxID:   tx.TxID,
		Client: tx.Client,
		Kind:   model.Deposit,
		Amount: tx.Amount,
		Status: model.DisputeNone,
	}
	return nil
}

func (e *Engine) withdraw(tx model.Transaction) error {
	acct := e.account(tx.Client)
	if acct.Locked {
		return ErrAccountLocked
	}
	if !tx.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if _, exists := e.settleable[tx.TxID]; exists {
		return ErrDuplicateTx
	}
	if acct.Available.LessThan(tx.Amount) {
		return ErrInsufficientFunds
	}

	acct.Available = acct.Available.Sub(tx.Amount)
	e.settleable[tx.TxID] = &model.SettleableTx{
		TxID:   tx.TxID,
		Client: tx.Client,
		Kind:   model.Withdrawal,
		Amount: tx.Amount,
		Status: model.DisputeNone,
	}
	return nil
}

func (e *Engine) dispute(tx model.Transaction) error {
	acct := e.account(tx.Client)
	if acct.Locked {
		return ErrAccountLocked
	}
	rec, err := e.lookup(tx)
	if err != nil {
		return err
	}
	if rec.Kind == model.Withdrawal && !e.disputableWithdrawals {
		return ErrNotDisputable
	}
	if rec.Status != model.DisputeNone {
		return ErrNotDisputable
	}

	// Funds may already have been spent; available is allowed to go negative.
	acct.Available = acct.Available.Sub(rec.Amount)
	acct.Held = acct.Held.Add(rec.Amount)
	rec.Status = model.DisputeOpen
	return nil
}

func (e *Engine) resolve(tx model.Transaction) error {
	acct := e.account(tx.Client)
	if acct.Locked {
		return ErrAccountLocked
	}
	rec, err := e.lookup(tx)
	if err != nil {
		return err
	}
	if rec.Status != model.DisputeOpen {
		return ErrNotDisputed
	}

	acct.Held = acct.Held.Sub(rec.Amount)
	acct.Available = acct.Available.Add(rec.Amount)
	rec.Status = model.DisputeResolved
	return nil
}

func (e *Engine) chargeback(tx model.Transaction) error {
	acct := e.account(tx.Client)
	if acct.Locked {
		return ErrAccountLocked
	}
	rec, err := e.lookup(tx)
	if err != nil {
		return err
	}
	if rec.Status != model.DisputeOpen {
		return ErrNotDisputed
	}

	acct.Held = acct.Held.Sub(rec.Amount)
	acct.Locked = true
	rec.Status = model.DisputeChargeback
	if e.logger != nil {
		e.logger.Info("account locked by chargeback",
			zap.Uint16("client", uint16(tx.Client)),
			zap.Uint32("tx", uint32(tx.TxID)),
		)
	}
	return nil
}

func (e *Engine) lookup(tx model.Transaction) (*model.SettleableTx, error) {
	rec, ok := e.settleable[tx.TxID]
	if !ok {
		return nil, ErrUnknownTx
	}
	if rec.Client != tx.Client {
		return nil, ErrClientMismatch
	}
	return rec, nil
}
