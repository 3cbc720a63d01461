package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"-49,13", "-49.13", false},
		{"1.200,00", "1200", false},
		{"1.234.567,89", "1234567.89", false},
		{"350", "350", false},
		{" -0,01 ", "-0.01", false},
		{"", "", true},
		{".", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocale(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestFormatLocale(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-49.13", "-49,13"},
		{"1200", "1.200,00"},
		{"1234567.891", "1.234.567,89"},
		{"0.5", "0,50"},
		{"-0.004", "0,00"},
		{"999.999", "1.000,00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLocale(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestLocaleRoundTrip(t *testing.T) {
	for _, in := range []string{"-49,13", "1.200,00", "0,01", "-12.345.678,90", "7,00"} {
		d, err := ParseLocale(in)
		require.NoError(t, err)
		assert.Equal(t, in, FormatLocale(d))
	}
}
