package engine

import (
	"context"
	"time"

	"github.com/ledgerworks/payengine-backend/internal/model"
)

type (
	// Source yields normalized transactions in arrival order and returns
	// io.EOF once the stream is exhausted.
	Source interface {
		Next() (model.Transaction, error)
	}

	// Metrics observes transaction and run outcomes.
	Metrics interface {
		ObserveTransaction(kind model.TxKind, err error, started time.Time)
		ObserveRun(err error, transactions int, started time.Time)
	}

	// Auditor records transactions the engine refused to apply.
	Auditor interface {
		Record(ctx context.Context, rejection model.Rejection) error
	}
)
