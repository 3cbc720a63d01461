package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

func TestToISODate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11/12/2025", "2025-12-11"},
		{"01/01/2024", "2024-01-01"},
		{"2025-12-11", "2025-12-11"},
		{"31/02/2025", "31/02/2025"},
		{"hoje", "hoje"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToISODate(tt.in))
		})
	}
}

func TestFromISODate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-12-11", "11/12/2025"},
		{"11/12/2025", "11/12/2025"},
		{"2025-13-01", "2025-13-01"},
		{"garbage", "garbage"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FromISODate(tt.in))
		})
	}
}

func TestDueDateHelpers(t *testing.T) {
	assert.Nil(t, isoDueDate(nil))

	d, err := scanDueDate(nil)
	require.NoError(t, err)
	assert.Nil(t, d)

	empty := ""
	d, err = scanDueDate(&empty)
	require.NoError(t, err)
	assert.Nil(t, d)

	due := transaction.NewDate(2026, 1, 31)
	iso := isoDueDate(&due)
	require.NotNil(t, iso)
	assert.Equal(t, "2026-01-31", *iso)

	back, err := scanDueDate(iso)
	require.NoError(t, err)
	assert.True(t, due.Equal(*back))

	bad := "not a date"
	_, err = scanDueDate(&bad)
	assert.Error(t, err)
}
