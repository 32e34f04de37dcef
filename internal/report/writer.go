// Package report renders final account snapshots.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ledgerworks/payengine-backend/internal/model"
)

// DefaultPrecision is the canonical number of rendered fractional digits.
const DefaultPrecision = 4

// Writer renders account snapshots as `client,available,held,total,locked`
// CSV rows. The caller supplies accounts in the order they should appear;
// the engine's snapshot is already ascending by client id.
type Writer struct {
	w         *csv.Writer
	precision int32
}

// NewWriter wraps the destination stream, rendering amounts with exactly
// precision fractional digits.
func NewWriter(w io.Writer, precision int) *Writer {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &Writer{w: csv.NewWriter(w), precision: int32(precision)}
}

// Write renders the header and one row per account, then flushes.
func (w *Writer) Write(accounts []model.Account) error {
	if err := w.w.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, acct := range accounts {
		row := []string{
			strconv.FormatUint(uint64(acct.Client), 10),
			acct.Available.StringFixed(w.precision),
			acct.Held.StringFixed(w.precision),
			acct.Total().StringFixed(w.precision),
			strconv.FormatBool(acct.Locked),
		}
		if err := w.w.Write(row); err != nil {
			return fmt.Errorf("write account %d: %w", acct.Client, err)
		}
	}
	w.w.Flush()
	return w.w.Error()
}
