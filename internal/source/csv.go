// Package source normalizes raw input rows into typed transactions.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerworks/payengine-backend/internal/model"
	"github.com/ledgerworks/payengine-backend/pkg/safe"
)

// Metrics observes the outcome of normalizing one row.
type Metrics interface {
	ObserveRow(err error)
}

// DefaultPrecision is the canonical bound on fractional digits in amounts.
const DefaultPrecision = 4

// ErrMalformedRow wraps every per-row normalization failure.
var ErrMalformedRow = errors.New("malformed row")

// CSVSource reads `type,client,tx,amount` rows and yields typed transactions.
// In lenient mode malformed rows are logged and skipped; in strict mode the
// first malformed row aborts the stream.
type CSVSource struct {
	logger    *zap.Logger
	metrics   Metrics
	strict    bool
	precision int
	reader    *csv.Reader
	row       int
	started   bool
}

// NewCSVSource wraps r. Amounts with more than precision fractional digits
// are malformed. The first row is expected to be the header and is skipped.
// metrics may be nil.
func NewCSVSource(r io.Reader, strict bool, precision int, metrics Metrics, logger *zap.Logger) *CSVSource {
	if precision < 0 {
		precision = DefaultPrecision
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &CSVSource{
		logger:    logger,
		metrics:   metrics,
		strict:    strict,
		precision: precision,
		reader:    cr,
	}
}

// Next returns the next well-formed transaction, io.EOF at end of stream, or
// a wrapped ErrMalformedRow in strict mode.
func (s *CSVSource) Next() (model.Transaction, error) {
	for {
		record, err := s.reader.Read()
		if err == io.EOF {
			return model.Transaction{}, io.EOF
		}
		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			// Not a per-row problem; the input itself is unreadable.
			return model.Transaction{}, fmt.Errorf("read input: %w", err)
		}
		s.row++
		if err == nil && !s.started {
			s.started = true
			if isHeader(record) {
				continue
			}
		}

		var tx model.Transaction
		if err == nil {
			tx, err = s.parse(record)
		} else {
			err = fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		if s.metrics != nil {
			s.metrics.ObserveRow(err)
		}
		if err == nil {
			tx.Row = s.row
			return tx, nil
		}

		if s.strict {
			return model.Transaction{}, fmt.Errorf("row %d: %w", s.row, err)
		}
		s.logger.Warn("skipping malformed row", zap.Int("row", s.row), zap.Error(err))
	}
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "type")
}

func (s *CSVSource) parse(record []string) (model.Transaction, error) {
	if len(record) < 3 {
		return model.Transaction{}, fmt.Errorf("%w: want at least 3 fields, got %d", ErrMalformedRow, len(record))
	}

	kind := model.TxKind(strings.ToLower(strings.TrimSpace(record[0])))
	switch kind {
	case model.Deposit, model.Withdrawal, model.Dispute, model.Resolve, model.Chargeback:
	default:
		return model.Transaction{}, fmt.Errorf("%w: unknown transaction type %q", ErrMalformedRow, record[0])
	}

	client, err := parseClient(record[1])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: client: %v", ErrMalformedRow, err)
	}
	txID, err := parseTxID(record[2])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: tx: %v", ErrMalformedRow, err)
	}

	tx := model.Transaction{Kind: kind, Client: client, TxID: txID}
	if !kind.HasAmount() {
		// Dispute, resolve and chargeback reference a prior transaction's
		// amount; anything in their amount column is ignored.
		return tx, nil
	}

	if len(record) < 4 || strings.TrimSpace(record[3]) == "" {
		return model.Transaction{}, fmt.Errorf("%w: missing amount for %s", ErrMalformedRow, kind)
	}
	amount, err := parseAmount(record[3], s.precision)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: amount: %v", ErrMalformedRow, err)
	}
	tx.Amount = amount
	return tx, nil
}

func parseClient(field string) (model.ClientID, error) {
	raw, err := strconv.ParseUint(strings.TrimSpace(field), 10, 64)
	if err != nil {
		return 0, err
	}
	narrowed, err := safe.Uint16(raw)
	if err != nil {
		return 0, err
	}
	return model.ClientID(narrowed), nil
}

func parseTxID(field string) (model.TxID, error) {
	raw, err := strconv.ParseUint(strings.TrimSpace(field), 10, 64)
	if err != nil {
		return 0, err
	}
	narrowed, err := safe.Uint32(raw)
	if err != nil {
		return 0, err
	}
	return model.TxID(narrowed), nil
}

func parseAmount(field string, precision int) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(field))
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", amount)
	}
	if int(amount.Exponent()) < -precision {
		return decimal.Zero, fmt.Errorf("amount %s exceeds %d fractional digits", field, precision)
	}
	return amount, nil
}
