package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/extrato-ledger/internal/domain/categorization"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/insights"
	"github.com/FACorreiaa/extrato-ledger/internal/domain/transaction"
)

func readSheet(t *testing.T, f *excelize.File, sheet string) [][]string {
	t.Helper()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

func TestWriteWorkbook(t *testing.T) {
	due := transaction.NewDate(2025, time.December, 20)
	txs := []transaction.Transaction{
		transaction.New(transaction.NewDate(2025, time.December, 11), "PIX QRS CEN", decimal.RequireFromString("-49.13"), categorization.NeedsReview, transaction.SourcePDF),
		transaction.New(transaction.NewDate(2025, time.November, 5), "SALÁRIO EMPRESA XYZ", decimal.RequireFromString("5000"), categorization.Receita, transaction.SourceCSV),
		transaction.New(transaction.NewDate(2025, time.November, 6), "APLICACAO CDB", decimal.RequireFromString("-1000"), categorization.Investimentos, transaction.SourceManual).WithDueDate(&due),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, txs, insights.Aggregate(txs)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetTransactions, SheetMonthly, SheetSummary}, f.GetSheetList())

	rows := readSheet(t, f, SheetTransactions)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Data", "Descrição", "Valor", "Categoria", "Tipo", "Fonte", "Vencimento"}, rows[0])
	assert.Equal(t, []string{"11/12/2025", "PIX QRS CEN", "-49.13", "A Categorizar", "Despesa", "PDF"}, rows[1][:6])
	assert.Equal(t, "20/12/2025", rows[3][6])

	monthly := readSheet(t, f, SheetMonthly)
	require.Len(t, monthly, 3)
	assert.Equal(t, "2025-11", monthly[1][0])
	assert.Equal(t, "5000", monthly[1][1])
	assert.Equal(t, "2025-12", monthly[2][0])

	summary := readSheet(t, f, SheetSummary)
	require.Len(t, summary, 8)
	assert.Equal(t, []string{"Receitas", "5000"}, summary[1])
	assert.Equal(t, []string{"Despesas", "49.13"}, summary[2])
	assert.Equal(t, []string{"Saldo", "3950.87"}, summary[3])
	assert.Equal(t, []string{"Aportes em investimentos", "1000"}, summary[4])
	assert.Equal(t, []string{"Total de transações", "3"}, summary[7])
}

func TestWriteWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Len(t, readSheet(t, f, SheetTransactions), 1)
	assert.Len(t, readSheet(t, f, SheetMonthly), 1)
	assert.Equal(t, [][]string{{"Indicador", "Valor"}}, readSheet(t, f, SheetSummary))
}
