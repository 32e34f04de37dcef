package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerworks/payengine-backend/internal/model"
	"github.com/ledgerworks/payengine-backend/pkg/workerpool"
)

// Runner drains a Source through one or more Engines and produces the final
// account snapshot. With workers == 1 it is a plain ordered fold over the
// stream; with more workers the stream is partitioned into per-client lanes,
// which preserves each client's arrival order because no transaction ever
// references another client's history.
type Runner struct {
	logger                *zap.Logger
	metrics               Metrics
	audit                 Auditor
	workers               int
	disputableWithdrawals bool
}

// NewRunner builds a Runner. metrics and audit may be nil.
func NewRunner(
	metrics Metrics,
	audit Auditor,
	workers int,
	disputableWithdrawals bool,
	logger *zap.Logger,
) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		logger:                logger,
		metrics:               metrics,
		audit:                 audit,
		workers:               workers,
		disputableWithdrawals: disputableWithdrawals,
	}
}

// Run consumes the source to exhaustion and returns the resulting snapshot,
// ascending by client id. Source errors other than io.EOF abort the run.
func (r *Runner) Run(ctx context.Context, src Source) ([]model.Account, error) {
	started := time.Now()

	var (
		accounts  []model.Account
		processed int
		err       error
	)
	if r.workers > 1 {
		accounts, processed, err = r.runSharded(ctx, src)
	} else {
		accounts, processed, err = r.runOrdered(ctx, src)
	}

	if r.metrics != nil {
		r.metrics.ObserveRun(err, processed, started)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("stream processed",
		zap.Int("transactions", processed),
		zap.Int("accounts", len(accounts)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return accounts, nil
}

func (r *Runner) runOrdered(ctx context.Context, src Source) ([]model.Account, int, error) {
	eng := New(r.logger.Named("engine"), r.disputableWithdrawals)

	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, processed, err
		}
		tx, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, processed, fmt.Errorf("read transaction: %w", err)
		}
		processed++
		r.apply(ctx, eng, tx)
	}
	return eng.Snapshot(), processed, nil
}

func (r *Runner) runSharded(ctx context.Context, src Source) ([]model.Account, int, error) {
	lanes := make([][]model.Transaction, r.workers)
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, processed, err
		}
		tx, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, processed, fmt.Errorf("read transaction: %w", err)
		}
		lane := int(tx.Client) % r.workers
		lanes[lane] = append(lanes[lane], tx)
		processed++
	}

	engines := make([]*Engine, r.workers)
	active := make([]int, 0, r.workers)
	for i := range lanes {
		if len(lanes[i]) == 0 {
			continue
		}
		engines[i] = New(
			r.logger.Named("engine").With(zap.Int("lane", i)),
			r.disputableWithdrawals,
		)
		active = append(active, i)
	}

	err := workerpool.Process(ctx, r.workers, active, func(ctx context.Context, lane int) error {
		for _, tx := range lanes[lane] {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.apply(ctx, engines[lane], tx)
		}
		return nil
	})
	if err != nil {
		return nil, processed, err
	}

	var accounts []model.Account
	for _, lane := range active {
		accounts = append(accounts, engines[lane].Snapshot()...)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Client < accounts[j].Client
	})
	return accounts, processed, nil
}

// apply runs one transaction through the engine, observing and journaling
// rejections. Logical violations never abort the run.
func (r *Runner) apply(ctx context.Context, eng *Engine, tx model.Transaction) {
	started := time.Now()
	err := eng.Process(tx)
	if r.metrics != nil {
		r.metrics.ObserveTransaction(tx.Kind, err, started)
	}
	if err == nil {
		return
	}

	r.logger.Debug("transaction rejected",
		zap.Int("row", tx.Row),
		zap.String("kind", string(tx.Kind)),
		zap.Uint16("client", uint16(tx.Client)),
		zap.Uint32("tx", uint32(tx.TxID)),
		zap.Error(err),
	)
	if r.audit == nil {
		return
	}
	rejection := model.Rejection{
		Row:    tx.Row,
		Kind:   tx.Kind,
		Client: tx.Client,
		TxID:   tx.TxID,
		Reason: err.Error(),
	}
	if auditErr := r.audit.Record(ctx, rejection); auditErr != nil {
		r.logger.Warn("audit record failed", zap.Int("row", tx.Row), zap.Error(auditErr))
	}
}
