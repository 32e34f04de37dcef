package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerworks/payengine-backend/internal/model"
)

func TestWriterFormatsAccounts(t *testing.T) {
	accounts := []model.Account{
		{
			Client:    1,
			Available: decimal.RequireFromString("4"),
			Held:      decimal.Zero,
		},
		{
			Client:    2,
			Available: decimal.RequireFromString("-90.5"),
			Held:      decimal.RequireFromString("100"),
			Locked:    true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, DefaultPrecision).Write(accounts))

	want := "client,available,held,total,locked\n" +
		"1,4.0000,0.0000,4.0000,false\n" +
		"2,-90.5000,100.0000,9.5000,true\n"
	assert.Equal(t, want, buf.String())
}

func TestWriterEmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, DefaultPrecision).Write(nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

func TestWriterExactFourFractionalDigits(t *testing.T) {
	accounts := []model.Account{
		{
			Client:    7,
			Available: decimal.RequireFromString("0.0001"),
			Held:      decimal.RequireFromString("1.5"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, DefaultPrecision).Write(accounts))
	assert.Contains(t, buf.String(), "7,0.0001,1.5000,1.5001,false\n")
}
