package safe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint16(t *testing.T) {
	tests := []struct {
		name    string
		in      int64
		want    uint16
		wantErr bool
	}{
		{name: "zero", in: 0, want: 0},
		{name: "max", in: math.MaxUint16, want: math.MaxUint16},
		{name: "negative", in: -1, wantErr: true},
		{name: "too large", in: math.MaxUint16 + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Uint16(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUint32(t *testing.T) {
	tests := []struct {
		name    string
		in      int64
		want    uint32
		wantErr bool
	}{
		{name: "zero", in: 0, want: 0},
		{name: "max", in: math.MaxUint32, want: math.MaxUint32},
		{name: "negative", in: -5, wantErr: true},
		{name: "too large", in: math.MaxUint32 + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Uint32(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUint16FromUnsigned(t *testing.T) {
	got, err := Uint16(uint64(42))
	require.NoError(t, err)
	assert.Equal(t, uint16(42), got)

	_, err = Uint16(uint64(math.MaxUint32))
	require.Error(t, err)
}
