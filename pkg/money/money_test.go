package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		want     int64
	}{
		{"positive cents", 1234, BRL, 1234},
		{"zero", 0, BRL, 0},
		{"negative cents", -5000, BRL, -5000},
		{"euro", 1000, EUR, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.cents, tt.currency)
			assert.Equal(t, tt.want, m.Amount())
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   int64
	}{
		{"two places", "49.13", 4913},
		{"negative", "-350.50", -35050},
		{"rounds half up", "10.005", 1001},
		{"rounds half away from zero", "-10.005", -1001},
		{"whole", "5000", 500000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFromDecimal(decimal.RequireFromString(tt.amount), BRL)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestNewFromDecimal_UnknownCurrencyFallsBack(t *testing.T) {
	m := NewFromDecimal(decimal.NewFromInt(1), "XXX-NOPE")
	assert.Equal(t, DefaultCurrency, m.Currency())
	assert.Equal(t, int64(100), m.Amount())
}

func TestAbsAndAdd(t *testing.T) {
	a := New(-2000, BRL)
	b := New(500, BRL)

	assert.Equal(t, int64(2000), a.Abs().Amount())

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(-1500), sum.Amount())
	assert.True(t, sum.IsNegative())

	_, err = a.Add(New(100, USD))
	assert.Error(t, err)
}

func TestNilSafety(t *testing.T) {
	var m *Money
	assert.True(t, m.IsZero())
	assert.Equal(t, int64(0), m.Amount())
	assert.Equal(t, "0.00", m.String())
	assert.True(t, m.ToDecimal().IsZero())
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "R$1.234,56", New(123456, BRL).Display())
	assert.Equal(t, "R$0,01", New(1, BRL).Display())
	assert.Equal(t, "R$1.234,56", Display(decimal.RequireFromString("1234.555")))
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"60", "60"},
		{"33.333333", "33.33"},
		{"66.666666", "66.67"},
		{"-0.004", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Round(decimal.RequireFromString(tt.in))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Value *Money `json:"valor"`
	}{Value: New(-4913, BRL)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"valor": -49.13}`, string(data))

	data, err = json.Marshal(struct {
		Value *Money `json:"valor"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"valor": null}`, string(data))
}
