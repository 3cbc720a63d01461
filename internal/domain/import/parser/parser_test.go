package parser

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	t.Run("comma export with ISO dates", func(t *testing.T) {
		data := []byte("Data,Descrição,Valor\n2025-09-05,Salário Empresa XYZ,5000.00\n")

		result, err := ParseCSV(data)
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)

		line := result.Lines[0]
		assert.Equal(t, "05/09/2025", line.Date.String())
		assert.Equal(t, "Salário Empresa XYZ", line.Description)
		assert.True(t, decimal.NewFromInt(5000).Equal(line.Amount))
		assert.Equal(t, 2, line.Row)
	})

	t.Run("semicolon export with locale amounts", func(t *testing.T) {
		data := []byte(strings.Join([]string{
			"Data;Histórico;Valor (R$)",
			"05/09/2025;Supermercado   Dia;-1.234,56",
			"06/09/2025;PIX RECEBIDO;R$ 350,00",
		}, "\n"))

		result, err := ParseCSV(data)
		require.NoError(t, err)
		require.Len(t, result.Lines, 2)

		assert.Equal(t, "Supermercado Dia", result.Lines[0].Description)
		assert.True(t, decimal.RequireFromString("-1234.56").Equal(result.Lines[0].Amount))
		assert.True(t, decimal.RequireFromString("350").Equal(result.Lines[1].Amount))
	})

	t.Run("english headers in any order", func(t *testing.T) {
		data := []byte("Amount,Reference,Date,Description\n-18.20,abc,2025-10-01,UBER TRIP\n")

		result, err := ParseCSV(data)
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, "UBER TRIP", result.Lines[0].Description)
		assert.Equal(t, "01/10/2025", result.Lines[0].Date.String())
		assert.True(t, decimal.RequireFromString("-18.20").Equal(result.Lines[0].Amount))
	})

	t.Run("preamble before header", func(t *testing.T) {
		data := []byte(strings.Join([]string{
			"Banco Exemplo",
			"Conta: 12345-6",
			"Data,Descrição,Valor",
			"2025-09-05,Padaria,-12.50",
		}, "\n"))

		result, err := ParseCSV(data)
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, 4, result.Lines[0].Row)
	})

	t.Run("windows line endings and BOM", func(t *testing.T) {
		data := []byte("\xEF\xBB\xBFData,Descrição,Valor\r\n2025-09-05,Padaria,-12.50\r\n\r\n")

		result, err := ParseCSV(data)
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, "Padaria", result.Lines[0].Description)
	})

	t.Run("windows-1252 encoding", func(t *testing.T) {
		data := []byte("Data;Descri\xe7\xe3o;Valor\n05/09/2025;Padaria S\xe3o Jo\xe3o;-12,50\n")

		result, err := ParseCSV(data)
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, "Padaria São João", result.Lines[0].Description)
	})

	t.Run("quoted cells", func(t *testing.T) {
		data := []byte("Data,Descrição,Valor\n2025-09-05,\"Padaria, Centro\",\"-12,50\"\n")

		result, err := ParseCSV(data)
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, "Padaria, Centro", result.Lines[0].Description)
		assert.True(t, decimal.RequireFromString("-12.50").Equal(result.Lines[0].Amount))
	})

	t.Run("unparseable rows are skipped", func(t *testing.T) {
		data := []byte(strings.Join([]string{
			"Data,Descrição,Valor",
			"2025-09-05,Padaria,-12.50",
			"2025-09-06,Cinema,abc",
			"2025-13-40,Farmacia,-30.00",
			"2025-09-07,Mercado,",
			"2025-09-08,Uber,-9.90",
		}, "\n"))

		result, err := ParseCSV(data)
		require.NoError(t, err)
		require.Len(t, result.Lines, 2)
		assert.Equal(t, "Padaria", result.Lines[0].Description)
		assert.Equal(t, "Uber", result.Lines[1].Description)

		assert.Equal(t, 5, result.TotalRows)
		assert.Equal(t, 2, result.ParsedRows)
		assert.Equal(t, 3, result.SkippedRows)
		require.Len(t, result.Errors, 3)
		assert.Equal(t, 3, result.Errors[0].Row)
		assert.Equal(t, "amount", result.Errors[0].Column)
		assert.Equal(t, "date", result.Errors[1].Column)
		assert.Equal(t, "amount", result.Errors[2].Column)
	})

	t.Run("header only", func(t *testing.T) {
		result, err := ParseCSV([]byte("Data,Descrição,Valor\n"))
		require.NoError(t, err)
		assert.Empty(t, result.Lines)
	})
}

func TestParseCSV_MissingColumns(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no description column", "Data,Valor\n2025-09-05,100.00\n"},
		{"no amount column", "Data,Descrição\n2025-09-05,Padaria\n"},
		{"unrelated headers", "foo,bar,baz\n1,2,3\n"},
		{"empty file", ""},
		{"whitespace only", "  \n\n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseCSV([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrMissingColumns)
		})
	}
}

func TestParseCSV_MissingColumnsMessage(t *testing.T) {
	_, err := ParseCSV([]byte("Data,Valor\n2025-09-05,100.00\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "descrição")
	assert.Contains(t, err.Error(), "found: Data, Valor")
}

func TestParseCSVAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "5000.00", want: "5000"},
		{input: "-49.13", want: "-49.13"},
		{input: "-1.234,56", want: "-1234.56"},
		{input: "1,234.56", want: "1234.56"},
		{input: "12,5", want: "12.5"},
		{input: "R$ -350,50", want: "-350.50"},
		{input: "BRL 99,90", want: "99.90"},
		{input: "$10.00", want: "10"},
		{input: "(120,00)", want: "-120"},
		{input: " 1.000,00", want: "1000"},
		{input: "  42  ", want: "42"},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
		{input: "R$", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCSVAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func BenchmarkParseCSV(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("Data;Descrição;Valor\n")
	for i := 0; i < 1000; i++ {
		sb.WriteString("05/09/2025;SUPERMERCADO DIA;-1.234,56\n")
	}
	data := []byte(sb.String())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseCSV(data); err != nil {
			b.Fatal(err)
		}
	}
}
